package config

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"

	"github.com/hupe1980/fashionagent/artifact"
	"github.com/hupe1980/fashionagent/artifact/s3"
	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/embedding"
	"github.com/hupe1980/fashionagent/flow"
	"github.com/hupe1980/fashionagent/imagegen"
	"github.com/hupe1980/fashionagent/logging"
	"github.com/hupe1980/fashionagent/model"
	"github.com/hupe1980/fashionagent/model/anthropic"
	"github.com/hupe1980/fashionagent/model/openai"
	"github.com/hupe1980/fashionagent/retrieval"
	"github.com/hupe1980/fashionagent/session"
	"github.com/hupe1980/fashionagent/tool"
	"github.com/hupe1980/fashionagent/vectorindex"
	"github.com/hupe1980/fashionagent/weather"
)

// Services holds the capability handles built once per process and shared
// read-only by every turn.
type Services struct {
	Config *Config
	AWS    aws.Config

	Artifacts   core.ArtifactStore
	Embedder    core.Embedder
	Synthesizer core.ImageSynthesizer
	Index       core.VectorIndex // nil when retrieval is unavailable
	Retriever   *retrieval.Engine
	Weather     *weather.Client
	Model       model.Model
	Sessions    core.SessionStore

	Logger logging.Logger

	closers []io.Closer
}

// Build validates cfg and constructs every client. The returned Services
// must be closed by the caller.
func Build(ctx context.Context, cfg *Config, logger logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return nil, core.E("config.build", core.KindConfig, fmt.Errorf("load aws config: %w", err))
	}

	svc := &Services{Config: cfg, AWS: awsCfg, Logger: logger}

	if err := svc.build(cfg, logger); err != nil {
		_ = svc.Close()
		return nil, err
	}

	logger.Info("config.services.built",
		"region", cfg.Region,
		"reasoning", cfg.Reasoning.Provider,
		"artifacts", cfg.Artifacts.Backend,
		"index", cfg.Index.Backend,
		"sessions", cfg.Session.Backend,
	)

	return svc, nil
}

func (s *Services) build(cfg *Config, logger logging.Logger) error {
	bedrockClient := bedrockruntime.NewFromConfig(s.AWS)

	switch cfg.Artifacts.Backend {
	case ArtifactS3:
		store, err := s3.New(awss3.NewFromConfig(s.AWS), s3.Config{Bucket: cfg.Bucket})
		if err != nil {
			return err
		}
		s.Artifacts = store
	default:
		s.Artifacts = artifact.NewInMemoryStore("")
	}

	embedder, err := embedding.NewTitanEmbedder(bedrockClient, func(o *embedding.Options) {
		o.ModelID = cfg.Embedding.Model
		o.Dimensions = cfg.Embedding.Dimension
		o.Logger = logging.ForComponent(logger, "embedding")
	})
	if err != nil {
		return err
	}
	s.Embedder = embedder

	s.Synthesizer = imagegen.NewTitanSynthesizer(bedrockClient, func(o *imagegen.Options) {
		o.ModelID = cfg.Image.Model
		o.Logger = logging.ForComponent(logger, "imagegen")
	})

	switch cfg.Index.Backend {
	case IndexSQLite:
		idx, err := vectorindex.OpenSQLite(cfg.Index.Path, cfg.Index.Name, cfg.Embedding.Dimension)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, idx)
		s.Index = idx
	case IndexOpenSearch:
		client, err := vectorindex.NewServerlessClient(s.AWS, cfg.Index.Host)
		if err != nil {
			return err
		}
		s.Index = vectorindex.NewOpenSearchIndex(client, cfg.Index.Name)
	}

	s.Retriever = retrieval.New(s.Embedder, s.Index, s.Artifacts, func(o *retrieval.Options) {
		o.Logger = logging.ForComponent(logger, "retrieval")
	})

	s.Weather = weather.NewClient(func(o *weather.Options) {
		o.GeocodingURL = cfg.Weather.GeocodingURL
		o.ForecastURL = cfg.Weather.ForecastURL
		o.Timeout = cfg.WeatherTimeout()
		o.Logger = logging.ForComponent(logger, "weather")
	})

	m, err := s.buildModel(cfg)
	if err != nil {
		return err
	}
	s.Model = m

	switch cfg.Session.Backend {
	case SessionSQLite:
		store, err := session.OpenSQLite(cfg.Session.Path)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, store)
		s.Sessions = store
	default:
		s.Sessions = session.NewInMemoryStore()
	}

	return nil
}

func (s *Services) buildModel(cfg *Config) (model.Model, error) {
	rc := cfg.Reasoning

	switch rc.Provider {
	case ProviderAnthropic, ProviderBedrock:
		optFns := []func(o *anthropic.Options){func(o *anthropic.Options) {
			o.Temperature = rc.Temperature
			o.MaxTokens = rc.MaxTokens
			o.APIKey = rc.APIKey
			o.ReadTimeout = cfg.ReadTimeout()
			if rc.BaseURL != "" {
				o.RequestOptions = append(o.RequestOptions, anthropicoption.WithBaseURL(rc.BaseURL))
			}
			if rc.Model != "" {
				o.Model = anthropicsdk.Model(rc.Model)
			}
		}}
		if rc.Provider == ProviderBedrock {
			return anthropic.NewBedrockModel(s.AWS, optFns...), nil
		}
		return anthropic.NewModel(optFns...), nil

	case ProviderOpenAI:
		var clientOpts []openaioption.RequestOption
		if rc.APIKey != "" {
			clientOpts = append(clientOpts, openaioption.WithAPIKey(rc.APIKey))
		}
		if rc.BaseURL != "" {
			clientOpts = append(clientOpts, openaioption.WithBaseURL(rc.BaseURL))
		}
		clientOpts = append(clientOpts, openaioption.WithRequestTimeout(cfg.ReadTimeout()))
		return openai.NewModel(clientOpts, func(o *openai.Options) {
			o.Temperature = rc.Temperature
			if rc.MaxTokens > 0 {
				o.MaxCompletionTokens = rc.MaxTokens
			}
			if rc.Model != "" {
				o.Model = rc.Model
			}
		}), nil

	case ProviderScripted:
		return model.NewScriptedModel("scripted"), nil
	}

	return nil, core.Errorf("config.build", core.KindConfig, "unknown reasoning provider %q", rc.Provider)
}

// Toolset builds the tool set over the shared capabilities.
func (s *Services) Toolset(optFns ...func(o *tool.Options)) *tool.Toolset {
	return tool.NewToolset(append([]func(o *tool.Options){func(o *tool.Options) {
		o.Artifacts = s.Artifacts
		o.Synthesizer = s.Synthesizer
		o.Retriever = s.Retriever
		o.Geocoder = s.Weather
		o.Weather = s.Weather
		o.Logger = logging.ForComponent(s.Logger, "tool")
	}}, optFns...)...)
}

// FlowOptions applies the agent section of the configuration to a Flow.
func (s *Services) FlowOptions() func(o *flow.Options) {
	return func(o *flow.Options) {
		o.MaxIterations = s.Config.Agent.MaxIterations
		o.MaxHistory = s.Config.Agent.MaxHistory
		o.Stream = s.Config.Reasoning.Stream
		o.Database = s.Retriever.Database()
		if s.Config.Agent.Instructions != "" {
			o.Instructions = s.Config.Agent.Instructions
		}
	}
}

// Close releases database handles.
func (s *Services) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

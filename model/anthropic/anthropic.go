// Package anthropic provides a model wrapper for the Anthropic Claude
// Messages API, reachable directly or through Amazon Bedrock.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/model"
)

// DefaultBedrockModel is the Claude model used on Bedrock.
const DefaultBedrockModel = "anthropic.claude-3-sonnet-20240229-v1:0"

// DefaultReadTimeout tolerates slow generation.
const DefaultReadTimeout = 1000 * time.Second

// Options configures the Anthropic model adapter (temperature, model id,
// max tokens, API key, transport). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	ReadTimeout time.Duration

	// AWSConfig routes requests through Amazon Bedrock when set.
	AWSConfig *aws.Config

	// RequestOptions are appended to the client options (base URL overrides in tests).
	RequestOptions []option.RequestOption
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client   *anthropic.Client
	opts     Options
	provider string
}

var _ model.Model = (*Model)(nil)

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0,
		MaxTokens:   4096,
		ReadTimeout: DefaultReadTimeout,
	}
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	provider := "anthropic"

	if opts.AWSConfig != nil {
		clientOpts = append(clientOpts, bedrock.WithConfig(*opts.AWSConfig))
		provider = "bedrock"
	} else if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	if opts.ReadTimeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(opts.ReadTimeout))
	}

	clientOpts = append(clientOpts, opts.RequestOptions...)

	client := anthropic.NewClient(clientOpts...)

	return &Model{
		client:   &client,
		opts:     opts,
		provider: provider,
	}
}

// NewBedrockModel creates a Claude model served by Amazon Bedrock.
func NewBedrockModel(cfg aws.Config, optFns ...func(o *Options)) *Model {
	return NewModel(append([]func(o *Options){func(o *Options) {
		o.Model = anthropic.Model(DefaultBedrockModel)
		o.AWSConfig = &cfg
	}}, optFns...)...)
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{
		client:   client,
		opts:     opts,
		provider: "anthropic",
	}
}

// Generate adapts the Messages API (with tool calling) into model.Response
// events. Streaming requests forward text deltas as partial events before
// the accumulated message.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := anthropic.MessageNewParams{
			Model:       m.opts.Model,
			Messages:    buildMessages(req.Messages),
			MaxTokens:   m.opts.MaxTokens,
			Temperature: anthropic.Float(m.opts.Temperature),
		}

		if req.Instructions != "" {
			params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
		}

		if len(req.Tools) > 0 {
			params.Tools = buildTools(req.Tools)
			if req.ToolChoice != "" {
				params.ToolChoice = anthropic.ToolChoiceParamOfTool(req.ToolChoice)
			}
		}

		if req.Stream {
			m.handleStreaming(ctx, params, out, errCh)
			return
		}

		resp, err := m.client.Messages.New(ctx, params)
		if err != nil {
			errCh <- fmt.Errorf("anthropic api error: %w", err)
			return
		}

		final, err := toResponse(resp)
		if err != nil {
			errCh <- err
			return
		}
		out <- final
	}()

	return out, errCh
}

// handleStreaming accumulates the event stream into a message.
func (m *Model) handleStreaming(
	ctx context.Context,
	params anthropic.MessageNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	stream := m.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	var acc anthropic.Message
	for stream.Next() {
		event := stream.Current()
		if err := acc.Accumulate(event); err != nil {
			errCh <- fmt.Errorf("anthropic stream error: %w", err)
			return
		}

		delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && text.Text != "" {
			out <- model.Response{Partial: true, Message: core.Message{Role: core.RoleAssistant, Content: text.Text}}
		}
	}
	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("anthropic api error: %w", err)
		return
	}

	final, err := toResponse(&acc)
	if err != nil {
		errCh <- err
		return
	}
	out <- final
}

// toResponse converts a complete message into the final model.Response.
func toResponse(resp *anthropic.Message) (model.Response, error) {
	var (
		text  string
		calls []core.ToolCall
	)

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text += block.Text
		case "tool_use":
			args, err := json.Marshal(block.Input)
			if err != nil {
				return model.Response{}, fmt.Errorf("encode tool input of %s: %w", block.Name, err)
			}
			if string(args) == "null" {
				args = []byte("{}")
			}
			calls = append(calls, core.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}

	finishReason := "stop"
	if resp.StopReason != "" {
		finishReason = string(resp.StopReason)
	}

	return model.Response{
		ID:           resp.ID,
		Message:      core.NewAssistantMessage(text, calls...),
		FinishReason: finishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// buildMessages converts conversation messages to the Messages API format.
// Tool results are sent as tool_result blocks inside user turns; consecutive
// results are merged into one user message so turns keep alternating.
func buildMessages(msgs []core.Message) []anthropic.MessageParam {
	var (
		messages []anthropic.MessageParam
		results  []anthropic.ContentBlockParamUnion
	)

	flush := func() {
		if len(results) > 0 {
			messages = append(messages, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleTool:
			if msg.Result == nil {
				continue
			}
			results = append(results, anthropic.NewToolResultBlock(msg.Result.CallID, msg.Result.Output, !msg.Result.Succeeded()))
		case core.RoleAssistant:
			flush()
			if content := buildAssistantContent(msg); len(content) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(content...))
			}
		default:
			flush()
			if msg.Content != "" {
				messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			}
		}
	}
	flush()

	return messages
}

// buildAssistantContent builds text and tool_use blocks for an assistant message.
func buildAssistantContent(msg core.Message) []anthropic.ContentBlockParamUnion {
	var content []anthropic.ContentBlockParamUnion

	if msg.Content != "" {
		content = append(content, anthropic.NewTextBlock(msg.Content))
	}

	for _, call := range msg.ToolCalls {
		var input any = map[string]any{}
		if len(call.Arguments) > 0 {
			if err := json.Unmarshal(call.Arguments, &input); err != nil {
				input = string(call.Arguments)
			}
		}
		content = append(content, anthropic.NewToolUseBlock(call.ID, input, call.Name))
	}

	return content
}

// buildTools converts tool definitions to the Anthropic tool format.
func buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(tools))

	for i, tool := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}

		if params := tool.Function.Parameters; params != nil {
			if properties, exists := params["properties"]; exists {
				inputSchema.Properties = properties
			}
			switch req := params["required"].(type) {
			case []string:
				inputSchema.Required = req
			case []any:
				for _, r := range req {
					if s, ok := r.(string); ok {
						inputSchema.Required = append(inputSchema.Required, s)
					}
				}
			}
		}

		anthropicTools[i] = anthropic.ToolUnionParamOfTool(inputSchema, tool.Function.Name)
		if tool.Function.Description != "" {
			anthropicTools[i].OfTool.Description = anthropic.String(tool.Function.Description)
		}
	}

	return anthropicTools
}

// Info returns metadata describing this model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          string(m.opts.Model),
		Provider:      m.provider,
		SupportsTools: true,
	}
}

// Command fashionagent runs the fashion assistant: an interactive chat, a
// direct action-group invocation, catalog ingestion and an HTTP endpoint.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hupe1980/fashionagent/config"
	"github.com/hupe1980/fashionagent/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fashionagent",
	Short: "Conversational fashion assistant",
	Long: `fashionagent recommends outfits, generates and edits clothing images and
finds visually similar catalog items. It reasons with a language model and
calls tools for weather, image generation, inpainting, outpainting and
catalog lookup.

Configuration is read from --config and overridden by the deployment
environment variables region_info, s3_bucket, aoss_host, index_name and
embeddingSize.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logging.LogLevelInfo
		if verbose {
			level = logging.LogLevelDebug
		}
		var err error
		logger, err = logging.NewZapProduction(level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "fashionagent.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(chatCmd, invokeCmd, ingestCmd, serveCmd)
}

// loadServices reads the configuration, applies its logging section and
// builds every client.
func loadServices(ctx context.Context) (*config.Services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if verbose {
		level = logging.LogLevelDebug
	}
	l, err := logging.NewZap(level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	_ = logger.Sync()
	logger = l

	return config.Build(ctx, cfg, logging.NewZapAdapter(logger))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

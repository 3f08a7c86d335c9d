package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shopify-product-grid/config"
	"shopify-product-grid/grid"
)

var (
	configPath string
	envFile    string
	verbose    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "product-grid",
	Short: "Render a storefront collection as a grid of product cards",
	Long: `product-grid fetches the first products of a storefront collection
through a GraphQL proxy endpoint and renders them as product cards
(image, title and price).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}

		var err error
		if configPath != "" {
			cfg, err = config.LoadConfig(configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.DefaultConfig()
		}
		if err := config.ApplyEnvOverrides(cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = newLogger(cfg.Log)
		if err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}
	// logs go to stderr, stdout carries rendered markup
	zc.OutputPaths = []string{"stderr"}

	level := zapcore.InfoLevel
	if lc.Level != "" {
		if err := level.Set(lc.Level); err != nil {
			return nil, err
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

// newClient builds the proxy client from the loaded configuration.
func newClient() (*grid.Client, error) {
	return grid.NewClient(cfg.Proxy.URL,
		grid.WithLimit(cfg.Grid.Limit),
		grid.WithTimeout(secondsToDuration(cfg.Proxy.Timeout)),
		grid.WithHeaders(cfg.Proxy.Headers),
		grid.WithClientLogger(logger),
	)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, renderCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

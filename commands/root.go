package commands

import (
	"context"
	"fmt"
	"os"

	"car-scraper/config"
	"car-scraper/utils"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "car-scraper",
	Short: "car-scraper collects vehicle listings from dynamic listing sites into one table.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logLevel != "" {
			utils.Default().SetLevel(logLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Overrides log_level from the config (debug, info, warn, error).")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	utils.Default().SetLevel(cfg.LogLevel)
	return cfg, nil
}

package main

import (
	"fmt"
	"os"
	"time"

	"finsec/internal/config"
	"finsec/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "finsec",
	Short: "finsec - financial compliance test case synthesis",
	Long: `finsec turns abstract financial-compliance use cases into structured test
cases by prompting a generative backend and parsing its answer into a fixed
schema: positive scenario, negative scenarios, validation criteria, test data,
edge cases and compliance references.

It can also watch the use-case file and regenerate the suite on every change.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			loaded.Logging.Level = "debug"
		}
		if err := logging.Initialize(loaded.Logging.ToLogging()); err != nil {
			return err
		}
		cfg = loaded
		logger = logging.Get(logging.CategoryCLI)
		logger.Debug("configuration loaded",
			zap.String("path", configPath),
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", cfg.LLM.Model))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFile, "Config file path")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Minute, "Operation timeout")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(contextCheckCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

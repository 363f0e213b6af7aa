package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"finsec/internal/config"
	"finsec/internal/export"
	"finsec/internal/generator"
	"finsec/internal/perception"
	"finsec/internal/usage"
	"finsec/internal/usecase"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newClient builds the backend client; tests replace it.
var newClient = perception.NewClientFromConfig

var (
	outputDir   string
	concurrency int
	noPerCase   bool
)

// generateCmd runs one batch over a use-case file
var generateCmd = &cobra.Command{
	Use:   "generate [use-cases.json]",
	Short: "Generate test cases for every use case in a file",
	Long: `Reads a use-case file (JSON or YAML) mapping category names to lists of use
cases, generates one test case per use case and writes the exports.

Failed use cases are reported and skipped; the command only fails on setup
errors such as a missing API key or an unreadable file.

Example:
  finsec generate config/current_config.json -o output`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: output.dir from config)")
	generateCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel backend calls (default: generation.concurrency from config)")
	generateCmd.Flags().BoolVar(&noPerCase, "no-per-case", false, "Only write the full suite file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	path := cfg.Watch.ConfigPath
	if len(args) > 0 {
		path = args[0]
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if concurrency > 0 {
		cfg.Generation.Concurrency = concurrency
	}
	if noPerCase {
		cfg.Output.PerCase = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	catalog, err := usecase.LoadCatalog(path)
	if err != nil {
		return err
	}

	tracker := usage.NewTracker()
	client, err := newClient(ctx, cfg, tracker)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	res, err := generateAndExport(ctx, cmd.OutOrStdout(), client, catalog, tracker)
	if err != nil {
		return err
	}
	printFailures(cmd.ErrOrStderr(), res)
	return nil
}

// generateAndExport runs a batch and writes its artifacts. It is shared by
// generate and watch.
func generateAndExport(ctx context.Context, out io.Writer, client perception.LLMClient, catalog usecase.Catalog, tracker *usage.Tracker) (generator.BatchResult, error) {
	logger.Info("generating test suite",
		zap.Int("use_cases", catalog.Len()),
		zap.Int("categories", len(catalog.Groups)))

	gen := newGenerator(client, cfg, out)
	res := gen.GenerateBatch(ctx, catalog)

	paths, err := export.Save(cfg.Output.Dir, res.Records, export.Options{
		PerCase:   cfg.Output.PerCase,
		SuiteFile: cfg.Output.SuiteFile,
	})
	if err != nil {
		return res, err
	}
	if cfg.Output.SaveUsage && tracker != nil {
		if err := tracker.Save(filepath.Join(cfg.Output.Dir, "usage.json")); err != nil {
			logger.Warn("failed to save usage ledger", zap.Error(err))
		}
	}

	fmt.Fprintf(out, "Generated %d/%d test cases -> %s\n", len(res.Records), res.Total, paths[len(paths)-1])
	return res, nil
}

func newGenerator(client perception.LLMClient, c *config.Config, progressOut io.Writer) *generator.Generator {
	return generator.New(client,
		generator.WithTemperature(c.Generation.Temperature),
		generator.WithMaxTokens(c.Generation.MaxTokens),
		generator.WithConcurrency(c.Generation.Concurrency),
		generator.WithItemTimeout(c.GetItemTimeout()),
		generator.WithProgress(func(done, total int) {
			fmt.Fprintf(progressOut, "[%d/%d] processed\n", done, total)
		}),
	)
}

func printFailures(w io.Writer, res generator.BatchResult) {
	for _, f := range res.Failures {
		fmt.Fprintf(w, "failed: %v\n", f)
	}
}

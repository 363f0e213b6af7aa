package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finsec/internal/usage"
	"finsec/internal/usecase"
	"finsec/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var generateOnStart bool

// watchCmd regenerates the suite whenever the use-case file changes
var watchCmd = &cobra.Command{
	Use:   "watch [use-cases.json]",
	Short: "Watch the use-case file and regenerate on change",
	Long: `Watches the use-case file's directory. Whenever the file's content changes,
the whole suite is regenerated and exported. Rewrites that leave the content
unchanged are ignored. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&generateOnStart, "generate-on-start", false, "Generate once before waiting for changes")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
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

	if len(args) > 0 {
		cfg.Watch.ConfigPath = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	detector, err := watch.NewDetector(cfg.Watch.ConfigPath,
		watch.WithDebounce(cfg.GetDebounce()),
		watch.WithContextSources(cfg.ContextSources),
		watch.WithDigestFetcher(watch.NewHTTPDigestFetcher(nil)))
	if err != nil {
		return err
	}

	tracker := usage.NewTracker()
	client, err := newClient(ctx, cfg, tracker)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	out := cmd.OutOrStdout()
	regenerate := func() {
		catalog, err := usecase.LoadCatalog(detector.Path())
		if err != nil {
			logger.Error("failed to load use cases", zap.Error(err))
			return
		}
		res, err := generateAndExport(ctx, out, client, catalog, tracker)
		if err != nil {
			logger.Error("export failed", zap.Error(err))
		}
		printFailures(cmd.ErrOrStderr(), res)
	}

	if generateOnStart {
		regenerate()
	}

	if err := detector.Start(ctx); err != nil {
		return err
	}
	defer detector.Stop()
	fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", detector.Path())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-detector.Changes():
			fmt.Fprintf(out, "Change detected in %s, regenerating\n", ev.Path)
			regenerate()
		}
	}
}

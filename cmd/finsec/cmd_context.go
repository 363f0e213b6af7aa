package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"finsec/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	acceptDigests bool
	baselineFile  string
)

// newDigestFetcher builds the context source fetcher; tests replace it.
var newDigestFetcher = func() watch.DigestFetcher { return watch.NewHTTPDigestFetcher(nil) }

// contextCheckCmd reports drift in the configured context sources
var contextCheckCmd = &cobra.Command{
	Use:   "context-check",
	Short: "Check regulatory feeds and system APIs for content drift",
	Long: `Fetches every configured context source that has a URL and compares its
digest against the recorded baseline. Drifted sources are printed with their
old and new digests. Baselines are only updated with --accept.`,
	Args: cobra.NoArgs,
	RunE: runContextCheck,
}

func init() {
	contextCheckCmd.Flags().BoolVar(&acceptDigests, "accept", false, "Record the new digests as baselines")
	contextCheckCmd.Flags().StringVar(&baselineFile, "baseline", "", "Baseline digest file (default: <output.dir>/context_digests.json)")
}

func runContextCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	path := baselineFile
	if path == "" {
		path = filepath.Join(cfg.Output.Dir, "context_digests.json")
	}
	baselines, err := loadBaselines(path)
	if err != nil {
		return err
	}

	detector, err := watch.NewDetector(cfg.Watch.ConfigPath,
		watch.WithContextSources(cfg.ContextSources),
		watch.WithDigestFetcher(newDigestFetcher()))
	if err != nil {
		return err
	}
	seed := make(map[string]watch.DigestChange, len(baselines))
	for name, d := range baselines {
		seed[name] = watch.DigestChange{New: d}
	}
	detector.AcceptContextDigests(seed)

	changes, checkErr := detector.CheckContextChanges(ctx)
	if checkErr != nil {
		logger.Warn("some context sources could not be checked", zap.Error(checkErr))
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", checkErr)
	}

	out := cmd.OutOrStdout()
	if len(changes) == 0 {
		fmt.Fprintln(out, "No context drift detected")
		return nil
	}

	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := changes[name]
		old := c.Old
		if old == "" {
			old = "(none)"
		}
		fmt.Fprintf(out, "%s: %s -> %s\n", name, old, c.New)
	}

	if !acceptDigests {
		return nil
	}
	for name, c := range changes {
		baselines[name] = c.New
	}
	if err := saveBaselines(path, baselines); err != nil {
		return err
	}
	fmt.Fprintf(out, "Accepted %d new baseline(s) -> %s\n", len(changes), path)
	return nil
}

func loadBaselines(path string) (map[string]string, error) {
	baselines := make(map[string]string)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return baselines, nil
		}
		return nil, fmt.Errorf("failed to read baselines: %w", err)
	}
	if err := json.Unmarshal(data, &baselines); err != nil {
		return nil, fmt.Errorf("failed to parse baselines %s: %w", path, err)
	}
	return baselines, nil
}

func saveBaselines(path string, baselines map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create baseline directory: %w", err)
	}
	data, err := json.MarshalIndent(baselines, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal baselines: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

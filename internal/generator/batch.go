package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"finsec/internal/usage"
	"finsec/internal/usecase"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ItemFailure reports one use case that produced no record.
type ItemFailure struct {
	Category string
	Index    int // position within the category
	UseCase  usecase.UseCase
	Err      error
}

func (f ItemFailure) Error() string {
	return fmt.Sprintf("%s[%d] %q: %v", f.Category, f.Index, f.UseCase.UseCase, f.Err)
}

func (f ItemFailure) Unwrap() error { return f.Err }

// BatchResult is the caller-owned outcome of a batch run. Records follow
// catalog order with failed items omitted.
type BatchResult struct {
	Records  []usecase.TestCaseRecord
	Failures []ItemFailure
	Total    int
}

// Err joins every item failure, or returns nil for a clean batch.
func (r BatchResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

type batchItem struct {
	category string
	index    int
	uc       usecase.UseCase
}

type itemOutcome struct {
	rec usecase.TestCaseRecord
	err error
}

// GenerateBatch generates a record for every use case in catalog. One item's
// failure is recorded in Failures and never stops the others. Each record is
// annotated with its catalog category, risk level and generation time.
func (g *Generator) GenerateBatch(ctx context.Context, catalog usecase.Catalog) BatchResult {
	var items []batchItem
	for _, group := range catalog.Groups {
		for i, uc := range group.UseCases {
			items = append(items, batchItem{category: group.Name, index: i, uc: uc})
		}
	}

	outcomes := make([]itemOutcome, len(items))
	var (
		mu   sync.Mutex
		done int
	)
	finish := func() {
		if g.progress == nil {
			return
		}
		mu.Lock()
		done++
		n := done
		mu.Unlock()
		g.progress(n, len(items))
	}

	start := time.Now()
	if g.concurrency > 1 {
		var eg errgroup.Group
		eg.SetLimit(g.concurrency)
		for i := range items {
			eg.Go(func() error {
				outcomes[i] = g.generateItem(ctx, items[i])
				finish()
				return nil
			})
		}
		_ = eg.Wait()
	} else {
		for i := range items {
			outcomes[i] = g.generateItem(ctx, items[i])
			finish()
		}
	}

	result := BatchResult{Total: len(items), Records: make([]usecase.TestCaseRecord, 0, len(items))}
	for i, o := range outcomes {
		if o.err != nil {
			it := items[i]
			result.Failures = append(result.Failures, ItemFailure{
				Category: it.category,
				Index:    it.index,
				UseCase:  it.uc,
				Err:      o.err,
			})
			continue
		}
		result.Records = append(result.Records, o.rec)
	}

	g.logger.Info("batch complete",
		zap.Int("total", result.Total),
		zap.Int("generated", len(result.Records)),
		zap.Int("failed", len(result.Failures)),
		zap.Duration("elapsed", time.Since(start)))
	return result
}

func (g *Generator) generateItem(ctx context.Context, it batchItem) itemOutcome {
	rec, err := g.Generate(usage.WithCategory(ctx, it.category), it.uc)
	if err != nil {
		g.logger.Error("test case generation failed",
			zap.String("category", it.category),
			zap.Int("index", it.index),
			zap.String("use_case", it.uc.UseCase),
			zap.Error(err))
		return itemOutcome{err: err}
	}

	rec.Category = it.category
	rec.RiskLevel = it.uc.RiskOrDefault()
	rec.LastUpdated = g.now().UTC()
	return itemOutcome{rec: rec}
}

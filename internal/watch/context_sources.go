package watch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DigestChange is the recorded and current digest of a drifted source.
// Old is empty when the source has never been accepted.
type DigestChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func sourceKey(name string) string {
	return "source:" + name
}

// CheckContextChanges fetches every configured context source and returns
// the sources whose digest differs from the recorded one, keyed by source
// name. Recorded digests are not updated; call AcceptContextDigests for
// that. Sources the fetcher cannot reach are skipped; fetch failures are
// joined into the returned error alongside any changes found.
func (d *Detector) CheckContextChanges(ctx context.Context) (map[string]DigestChange, error) {
	changes := make(map[string]DigestChange)
	if d.fetcher == nil {
		return changes, errors.New("no context digest fetcher configured")
	}

	var errs []error
	for _, group := range d.sources {
		for _, src := range group.Sources {
			if err := ctx.Err(); err != nil {
				return changes, err
			}

			current, err := d.fetcher.FetchDigest(ctx, src)
			if errors.Is(err, ErrNoSourceURL) {
				d.logger.Debug("skipping context source without URL",
					zap.String("category", group.Category),
					zap.String("source", src.Name))
				continue
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("%s/%s: %w", group.Category, src.Name, err))
				continue
			}

			old, _ := d.store.Get(sourceKey(src.Name))
			if current != old {
				changes[src.Name] = DigestChange{Old: old, New: current}
			}
		}
	}

	if len(changes) > 0 {
		d.logger.Info("context drift detected", zap.Int("sources", len(changes)))
	}
	return changes, errors.Join(errs...)
}

// AcceptContextDigests records each change's new digest as the baseline.
func (d *Detector) AcceptContextDigests(changes map[string]DigestChange) {
	for name, c := range changes {
		d.store.Set(sourceKey(name), c.New)
	}
}

// ContextDigest returns the recorded digest of a context source.
func (d *Detector) ContextDigest(name string) (string, bool) {
	return d.store.Get(sourceKey(name))
}

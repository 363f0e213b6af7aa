// Package watch decides when the use-case source needs regenerating. A
// Detector keeps a digest baseline for the watched file, listens for
// filesystem events in its directory, and posts a ChangeEvent whenever the
// content actually changes. It can also be asked to compare named context
// sources against their recorded digests.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"finsec/internal/config"
	"finsec/internal/logging"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrAlreadyWatching is returned by Start on a running detector.
var ErrAlreadyWatching = errors.New("detector is already watching")

// State is the detector lifecycle state.
type State int

const (
	StateIdle State = iota
	StateWatching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWatching:
		return "watching"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ChangeEvent reports a new accepted baseline for the watched file.
type ChangeEvent struct {
	Path      string
	OldDigest string
	NewDigest string
	At        time.Time
}

// ChangeFunc receives change notifications on the watcher goroutine.
// It must not block for long and must not call Stop.
type ChangeFunc func(ChangeEvent)

// DetectorStats tracks watcher activity.
type DetectorStats struct {
	EventsSeen      int
	ChecksRun       int
	ChangesDetected int
	Errors          int
	LastEventTime   time.Time
	LastEventPath   string
	LastChange      time.Time
}

// Detector watches one file for content changes.
type Detector struct {
	mu          sync.RWMutex
	checkMu     sync.Mutex // serializes Check
	path        string
	dir         string
	store       *HashStore
	state       State
	debounceMap map[string]time.Time
	debounceDur time.Duration
	changes     chan ChangeEvent
	subscribers []ChangeFunc
	stopCh      chan struct{}
	doneCh      chan struct{}
	stats       DetectorStats

	sources []config.ContextSourceGroup
	fetcher DigestFetcher

	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithDebounce sets how long events must settle before the file is re-hashed.
func WithDebounce(d time.Duration) Option {
	return func(dt *Detector) { dt.debounceDur = d }
}

// WithHashStore shares a store with other components.
func WithHashStore(s *HashStore) Option {
	return func(dt *Detector) { dt.store = s }
}

// WithContextSources sets the groups checked by CheckContextChanges.
func WithContextSources(groups []config.ContextSourceGroup) Option {
	return func(dt *Detector) { dt.sources = groups }
}

// WithDigestFetcher sets how context source digests are obtained.
func WithDigestFetcher(f DigestFetcher) Option {
	return func(dt *Detector) { dt.fetcher = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(dt *Detector) { dt.logger = l }
}

// NewDetector creates a Detector for path and records the file's current
// digest as the baseline. It fails if the file cannot be read.
func NewDetector(path string, opts ...Option) (*Detector, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	d := &Detector{
		path:        abs,
		dir:         filepath.Dir(abs),
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond,
		changes:     make(chan ChangeEvent, 1),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.store == nil {
		d.store = NewHashStore()
	}
	if d.logger == nil {
		d.logger = logging.Get(logging.CategoryWatch)
	}

	baseline, err := DigestFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read watched file: %w", err)
	}
	d.store.Set(abs, baseline)
	return d, nil
}

// Path returns the absolute path of the watched file.
func (d *Detector) Path() string {
	return d.path
}

// Baseline returns the current accepted digest of the watched file.
func (d *Detector) Baseline() string {
	b, _ := d.store.Get(d.path)
	return b
}

// Store returns the detector's digest table.
func (d *Detector) Store() *HashStore {
	return d.store
}

// State returns the lifecycle state.
func (d *Detector) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Stats returns a copy of the watcher statistics.
func (d *Detector) Stats() DetectorStats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

// Subscribe registers fn for every change event.
func (d *Detector) Subscribe(fn ChangeFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, fn)
}

// Changes returns the event channel. It holds at most one pending event;
// a newer event replaces an unread one. The channel is never closed.
func (d *Detector) Changes() <-chan ChangeEvent {
	return d.changes
}

// Start begins watching the file's directory. It does not block. Watching
// ends when ctx is cancelled or Stop is called.
func (d *Detector) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateWatching {
		return ErrAlreadyWatching
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(d.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", d.dir, err)
	}

	d.state = StateWatching
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.logger.Info("watching for changes",
		zap.String("path", d.path),
		zap.Duration("debounce", d.debounceDur))

	go d.run(ctx, watcher, d.stopCh, d.doneCh)
	return nil
}

// Stop stops watching and waits for the watcher goroutine to exit.
// It is a no-op on an idle detector.
func (d *Detector) Stop() {
	d.mu.Lock()
	if d.state != StateWatching {
		d.mu.Unlock()
		return
	}
	stopCh, doneCh := d.stopCh, d.doneCh
	d.mu.Unlock()

	close(stopCh)
	<-doneCh
	d.logger.Info("watcher stopped", zap.String("path", d.path))
}

func (d *Detector) run(ctx context.Context, watcher *fsnotify.Watcher, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		if err := watcher.Close(); err != nil {
			d.logger.Error("error closing watcher", zap.Error(err))
		}
		d.mu.Lock()
		if d.doneCh == doneCh {
			d.state = StateIdle
			d.debounceMap = make(map[string]time.Time)
		}
		d.mu.Unlock()
	}()

	debounceTicker := time.NewTicker(d.tickInterval())
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("context cancelled")
			return

		case <-stopCh:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			d.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			d.logger.Error("watcher error", zap.Error(err))
			d.mu.Lock()
			d.stats.Errors++
			d.mu.Unlock()

		case <-debounceTicker.C:
			d.processDebouncedEvents()
		}
	}
}

func (d *Detector) tickInterval() time.Duration {
	tick := d.debounceDur / 5
	if tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	if tick < 5*time.Millisecond {
		tick = 5 * time.Millisecond
	}
	return tick
}

// handleEvent records a JSON file event for debounced processing. Any JSON
// event in the directory triggers a re-hash of the watched file; the digest
// comparison filters out events for other files.
func (d *Detector) handleEvent(event fsnotify.Event) {
	if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	d.logger.Debug("file event", zap.String("path", event.Name), zap.String("op", event.Op.String()))

	d.mu.Lock()
	d.stats.EventsSeen++
	d.stats.LastEventTime = d.now()
	d.stats.LastEventPath = event.Name
	d.debounceMap[d.path] = time.Now()
	d.mu.Unlock()
}

// processDebouncedEvents re-hashes once events have settled.
func (d *Detector) processDebouncedEvents() {
	d.mu.Lock()
	now := time.Now()
	settled := false
	for path, eventTime := range d.debounceMap {
		if now.Sub(eventTime) >= d.debounceDur {
			delete(d.debounceMap, path)
			settled = true
		}
	}
	d.mu.Unlock()

	if settled {
		d.Check()
	}
}

// Check re-hashes the watched file and, if the digest differs from the
// baseline, accepts it and notifies subscribers. It reports whether a change
// was detected. A missing or unreadable file is logged and reported as no
// change.
func (d *Detector) Check() bool {
	d.checkMu.Lock()
	defer d.checkMu.Unlock()

	d.mu.Lock()
	d.stats.ChecksRun++
	d.mu.Unlock()

	current, err := DigestFile(d.path)
	if err != nil {
		d.logger.Warn("failed to hash watched file", zap.String("path", d.path), zap.Error(err))
		d.mu.Lock()
		d.stats.Errors++
		d.mu.Unlock()
		return false
	}

	old, _ := d.store.Get(d.path)
	if current == old {
		d.logger.Debug("content unchanged", zap.String("path", d.path))
		return false
	}
	d.store.Set(d.path, current)

	ev := ChangeEvent{Path: d.path, OldDigest: old, NewDigest: current, At: d.now()}
	d.logger.Info("change detected",
		zap.String("path", d.path),
		zap.String("old", shortDigest(old)),
		zap.String("new", shortDigest(current)))

	d.mu.Lock()
	d.stats.ChangesDetected++
	d.stats.LastChange = ev.At
	subscribers := append([]ChangeFunc(nil), d.subscribers...)
	d.mu.Unlock()

	d.post(ev)
	for _, fn := range subscribers {
		fn(ev)
	}
	return true
}

// post delivers ev without blocking, replacing an unread older event.
func (d *Detector) post(ev ChangeEvent) {
	for {
		select {
		case d.changes <- ev:
			return
		default:
		}
		select {
		case <-d.changes:
		default:
		}
	}
}

func shortDigest(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}

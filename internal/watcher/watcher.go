// Package watcher re-runs subtitle renaming whenever files arrive in a
// watched directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"subrename/internal/logging"
)

// Config contains watcher settings.
type Config struct {
	Debounce        time.Duration // quiet period before a pass (default: 2s)
	StableThreshold time.Duration // size stability window (default: 1s)
	StableTimeout   time.Duration // give up waiting for a growing file (default: 30s)
	IgnorePatterns  []string      // glob patterns; empty uses DefaultIgnorePatterns
	InitialPass     bool          // run one pass before waiting for events
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Debounce:        2 * time.Second,
		StableThreshold: time.Second,
		StableTimeout:   30 * time.Second,
		InitialPass:     true,
	}
}

// PassFunc runs one renaming pass over the watched directory.
type PassFunc func(ctx context.Context) error

// Summary contains stats from the watch session.
type Summary struct {
	Passes        int
	FailedPasses  int
	IgnoredEvents int
	Duration      time.Duration
}

// Watcher monitors one directory and runs serialized passes after activity
// settles.
type Watcher struct {
	dir       string
	config    Config
	pass      PassFunc
	filter    *FileFilter
	stability *StabilityChecker
	logger    *slog.Logger

	mu      sync.Mutex
	summary Summary
}

// New creates a Watcher for dir. Zero durations in config fall back to the
// defaults, except StableThreshold where zero disables the stability wait.
func New(dir string, config Config, pass PassFunc, logger *slog.Logger) *Watcher {
	defaults := DefaultConfig()
	if config.Debounce <= 0 {
		config.Debounce = defaults.Debounce
	}
	if config.StableTimeout <= 0 {
		config.StableTimeout = defaults.StableTimeout
	}
	interval := max(config.StableThreshold/4, 50*time.Millisecond)
	return &Watcher{
		dir:       dir,
		config:    config,
		pass:      pass,
		filter:    NewFileFilter(config.IgnorePatterns),
		stability: NewStabilityCheckerWithOptions(config.StableThreshold, config.StableTimeout, interval),
		logger:    logging.WithComponent(logger, "watcher"),
	}
}

// Run watches until ctx is cancelled and returns the session summary. It
// fails only if the directory cannot be watched.
func (w *Watcher) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	dir, err := filepath.Abs(w.dir)
	if err != nil {
		return nil, fmt.Errorf("resolve directory: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(dir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := make(chan []string, 1)
	debouncer := NewDebouncer(w.config.Debounce, func(paths []string) {
		w.enqueue(batches, paths)
	})
	defer debouncer.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx, batches, debouncer)
	}()

	if w.config.InitialPass {
		w.enqueue(batches, nil)
	}
	w.logger.Info("watching directory",
		slog.String("dir", dir),
		slog.Any("ignore", w.filter.Patterns()))

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case event, ok := <-fsw.Events:
			if !ok {
				break loop
			}
			w.handleEvent(event, debouncer)
		case err, ok := <-fsw.Errors:
			if !ok {
				break loop
			}
			w.logger.Warn("watch error", slog.Any("error", err))
		}
	}

	if n := debouncer.Pending(); n > 0 {
		w.logger.Info("discarding pending changes", slog.Int("paths", n))
	}
	debouncer.Stop()
	cancel()
	wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	summary := w.summary
	summary.Duration = time.Since(start)
	return &summary, nil
}

func (w *Watcher) handleEvent(event fsnotify.Event, debouncer *Debouncer) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	if w.filter.ShouldIgnore(event.Name) {
		w.mu.Lock()
		w.summary.IgnoredEvents++
		w.mu.Unlock()
		w.logger.Debug("ignoring temporary file", slog.String("path", event.Name))
		return
	}
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		return
	}
	debouncer.Touch(event.Name)
}

// enqueue merges paths into a batch that is already waiting, so a burst of
// quiet periods during a long pass yields a single follow-up pass.
func (w *Watcher) enqueue(batches chan []string, paths []string) {
	for {
		select {
		case batches <- paths:
			return
		case queued := <-batches:
			paths = append(queued, paths...)
		}
	}
}

func (w *Watcher) worker(ctx context.Context, batches chan []string, debouncer *Debouncer) {
	for {
		select {
		case <-ctx.Done():
			return
		case paths := <-batches:
			if !w.settle(ctx, paths, debouncer) {
				continue
			}
			w.runPass(ctx)
		}
	}
}

// settle waits for every changed file to stop growing. A file still growing
// after the timeout is handed back to the debouncer and the pass is skipped.
func (w *Watcher) settle(ctx context.Context, paths []string, debouncer *Debouncer) bool {
	for _, p := range paths {
		err := w.stability.WaitForStable(ctx, p)
		switch {
		case err == nil, errors.Is(err, ErrFileNotFound):
		case errors.Is(err, ErrFileUnstable):
			w.logger.Info("file still changing, deferring pass", slog.String("path", p))
			debouncer.Touch(p)
			return false
		case ctx.Err() != nil:
			return false
		default:
			w.logger.Warn("stability check failed", slog.String("path", p), slog.Any("error", err))
		}
	}
	return ctx.Err() == nil
}

func (w *Watcher) runPass(ctx context.Context) {
	err := w.pass(ctx)

	w.mu.Lock()
	w.summary.Passes++
	if err != nil {
		w.summary.FailedPasses++
	}
	w.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		w.logger.Warn("pass failed", slog.Any("error", err))
	}
}

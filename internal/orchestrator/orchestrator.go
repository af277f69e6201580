// Package orchestrator runs one subtitle renaming pass over a directory.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"subrename/internal/classifier"
	"subrename/internal/logging"
	"subrename/internal/matcher"
	"subrename/internal/planner"
	"subrename/internal/renamer"
	"subrename/internal/scanner"
)

// ErrDirectoryBusy is returned when another run holds the directory lock.
var ErrDirectoryBusy = errors.New("directory is being processed by another subrename run")

// Options configures a pass.
type Options struct {
	Dir                  string
	ExtraVideoExtensions []string
	SubtitleExtension    string // defaults to srt
	IgnoreMismatch       bool
	MinScore             float64
	DryRun               bool
	SymlinkPolicy        string // scanner.SymlinkPolicyFollow or scanner.SymlinkPolicySkip
	// LockDir holds per-directory lock files. Defaults to os.TempDir().
	LockDir string
}

// Orchestrator wires scanner, classifier, matcher, planner and renamer.
type Orchestrator struct {
	opts   Options
	logger *slog.Logger
}

// New creates an Orchestrator. A nil logger discards diagnostics.
func New(opts Options, logger *slog.Logger) *Orchestrator {
	if opts.SubtitleExtension == "" {
		opts.SubtitleExtension = classifier.DefaultSubtitleExtension
	}
	if opts.SymlinkPolicy == "" {
		opts.SymlinkPolicy = scanner.SymlinkPolicyFollow
	}
	if opts.LockDir == "" {
		opts.LockDir = os.TempDir()
	}
	return &Orchestrator{opts: opts, logger: logging.WithComponent(logger, "orchestrator")}
}

// Run performs one pass. Fatal conditions (unreadable directory, no
// candidates, count mismatch, busy lock) return an error before anything is
// renamed. Per-file failures are recorded in the summary instead.
func (o *Orchestrator) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(o.opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve directory: %w", err)
	}

	summary := &RunSummary{
		RunID:  uuid.NewString(),
		Dir:    dir,
		DryRun: o.opts.DryRun,
	}
	logger := o.logger.With(slog.String("run_id", summary.RunID), slog.String("dir", dir))

	unlock, err := o.lock(dir)
	if err != nil {
		return nil, err
	}
	defer unlock()

	entries, err := scanner.ScanWithOptions(dir, scanner.ScanOptions{SymlinkPolicy: o.opts.SymlinkPolicy})
	if err != nil {
		return nil, err
	}

	rules := classifier.DefaultRules(o.opts.ExtraVideoExtensions...)
	rules.Subtitle = o.opts.SubtitleExtension
	candidates := classifier.Classify(entries, rules)
	summary.Ignored = len(candidates.Ignored)
	logger.Debug("classified directory",
		slog.Int("videos", len(candidates.Videos)),
		slog.Int("subtitles", len(candidates.Subtitles)),
		slog.Int("ignored", len(candidates.Ignored)))

	result, err := matcher.Match(candidates.Videos, candidates.Subtitles, matcher.Options{
		IgnoreCountMismatch: o.opts.IgnoreMismatch,
		MinScore:            o.opts.MinScore,
	})
	if err != nil {
		logger.Debug("matching aborted", slog.Any("error", err))
		return nil, err
	}
	summary.Matches = result.Matches
	summary.UnmatchedVideos = names(result.UnmatchedVideos)
	summary.UnmatchedSubtitles = names(result.UnmatchedSubtitles)
	summary.NothingToDo = result.NothingToDo
	for _, m := range result.Matches {
		logger.Debug("matched",
			slog.String("subtitle", m.Subtitle.Name),
			slog.String("video", m.Video.Name),
			slog.Float64("score", m.Score))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plans := planner.Build(dir, result.Matches, scanner.Names(entries))
	logger.Debug("planned renames",
		slog.Int("pending", planner.Count(plans, planner.StatusPending)),
		slog.Int("noop", planner.Count(plans, planner.StatusNoOp)),
		slog.Int("conflict", planner.Count(plans, planner.StatusConflict)))
	report := renamer.Execute(plans, renamer.Options{DryRun: o.opts.DryRun})
	summary.absorb(report)
	summary.Duration = time.Since(start)

	for _, outcome := range report.Outcomes {
		if outcome.Err == nil {
			continue
		}
		attrs := []any{
			slog.String("subtitle", outcome.Plan.SourceName),
			slog.String("target", outcome.Plan.TargetName),
			slog.Any("error", outcome.Err),
		}
		if renamer.IsConflict(outcome.Err) {
			logger.Warn("rename skipped", attrs...)
		} else {
			logger.Error("rename failed", attrs...)
		}
	}
	logger.Info("pass finished",
		slog.Int("renamed", summary.Renamed),
		slog.Int("noop", summary.NoOps),
		slog.Int("errors", summary.Errors()),
		slog.Bool("dry_run", summary.DryRun),
		slog.Duration("duration", summary.Duration))

	return summary, nil
}

// lock takes a per-directory advisory lock. Dry runs take a shared lock so
// they can overlap each other but not a real run.
func (o *Orchestrator) lock(dir string) (func(), error) {
	fl := flock.New(lockPath(o.opts.LockDir, dir))
	var (
		locked bool
		err    error
	)
	if o.opts.DryRun {
		locked, err = fl.TryRLock()
	} else {
		locked, err = fl.TryLock()
	}
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrDirectoryBusy
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			o.logger.Warn("release lock", slog.String("path", fl.Path()), slog.Any("error", err))
		}
	}, nil
}

// lockPath names the lock file after a stable UUID of the directory.
func lockPath(lockDir, dir string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+dir))
	return filepath.Join(lockDir, "subrename-"+id.String()+".lock")
}

func names(cs []classifier.Candidate) []string {
	if len(cs) == 0 {
		return nil
	}
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

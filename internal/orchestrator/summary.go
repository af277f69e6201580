package orchestrator

import (
	"fmt"
	"time"

	"subrename/internal/matcher"
	"subrename/internal/renamer"
)

// RunSummary contains the results of one pass.
type RunSummary struct {
	RunID    string
	Dir      string
	DryRun   bool
	Duration time.Duration

	Matches            []matcher.MatchResult
	Outcomes           []renamer.Outcome // in subtitle order
	UnmatchedVideos    []string
	UnmatchedSubtitles []string
	Ignored            int  // files that are neither videos nor subtitles
	NothingToDo        bool // one side was empty and the count check was off

	Renamed   int // includes would-rename in dry runs
	NoOps     int
	Conflicts int
	Failed    int
}

func (s *RunSummary) absorb(r *renamer.Report) {
	s.Outcomes = r.Outcomes
	s.Renamed = r.Renamed
	s.NoOps = r.NoOps
	s.Conflicts = r.Conflicts
	s.Failed = r.Failed
}

// Errors returns the number of per-file failures.
func (s *RunSummary) Errors() int {
	return s.Conflicts + s.Failed
}

// HasErrors reports whether any file could not be renamed.
func (s *RunSummary) HasErrors() bool {
	return s.Errors() > 0
}

// String renders the one-line summary printed at the end of a pass.
func (s *RunSummary) String() string {
	if s.NothingToDo {
		return "nothing to do"
	}
	verb := "renamed"
	if s.DryRun {
		verb = "would rename"
	}
	counts := fmt.Sprintf("%s %d, skipped %d, failed %d", verb, s.Renamed, s.NoOps, s.Errors())
	if n := s.Errors(); n > 0 {
		return fmt.Sprintf("completed with %d error(s): %s", n, counts)
	}
	return counts
}

package main

import (
	"errors"
	"fmt"

	"subrename/internal/matcher"
	"subrename/internal/orchestrator"
	"subrename/internal/output"
	"subrename/internal/renamer"
)

// report prints one status line per subtitle, the unmatched files and the
// summary line.
func report(out *output.Output, s *orchestrator.RunSummary) {
	if out.IsVerbose() && len(s.Matches) > 0 {
		rows := make([][]string, 0, len(s.Matches))
		for _, m := range s.Matches {
			episode := "-"
			if sig, ok := matcher.EpisodeOf(m.Video.Base); ok {
				episode = sig.String()
			}
			rows = append(rows, []string{m.Subtitle.Name, m.Video.Name, episode, fmt.Sprintf("%.3f", m.Score)})
		}
		out.Table([]string{"Subtitle", "Video", "Episode", "Score"}, rows,
			[]output.Align{output.AlignLeft, output.AlignLeft, output.AlignLeft, output.AlignRight})
	}

	for _, o := range s.Outcomes {
		p := o.Plan
		switch o.Status {
		case renamer.StatusRenamed:
			out.Status(output.LabelRenamed, "%s -> %s", p.SourceName, p.TargetName)
		case renamer.StatusWouldRename:
			out.Status(output.LabelDryRun, "%s -> %s", p.SourceName, p.TargetName)
		case renamer.StatusNoOp:
			if out.IsVerbose() {
				out.Status(output.LabelNoOp, "%s", p.SourceName)
			}
		case renamer.StatusConflict:
			out.Status(output.LabelConflict, "%s -> %s: %s", p.SourceName, p.TargetName, conflictReason(o.Err))
		case renamer.StatusFailed:
			out.Status(output.LabelFailed, "%s -> %s: %s", p.SourceName, p.TargetName, failureReason(o.Err))
		}
	}

	for _, name := range s.UnmatchedVideos {
		out.Status(output.LabelUnmatched, "%s (video)", name)
	}
	for _, name := range s.UnmatchedSubtitles {
		out.Status(output.LabelUnmatched, "%s (subtitle)", name)
	}

	line := s.String()
	if n := len(s.UnmatchedVideos) + len(s.UnmatchedSubtitles); n > 0 && !s.NothingToDo {
		line += fmt.Sprintf(", unmatched %d", n)
	}
	out.Info("%s", line)
}

func conflictReason(err error) string {
	var conflict *renamer.RenameConflictError
	if errors.As(err, &conflict) {
		return conflict.Reason
	}
	if err == nil {
		return "target exists"
	}
	return err.Error()
}

func failureReason(err error) string {
	var ioErr *renamer.RenameIOError
	if errors.As(err, &ioErr) && ioErr.Err != nil {
		return ioErr.Err.Error()
	}
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

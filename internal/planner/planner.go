// Package planner turns subtitle/video matches into rename plans.
package planner

import (
	"path/filepath"

	"subrename/internal/matcher"
)

// Status classifies a plan before anything touches the disk.
type Status string

const (
	// StatusPending plans need a rename.
	StatusPending Status = "pending"
	// StatusNoOp plans are already correctly named.
	StatusNoOp Status = "noop"
	// StatusConflict plans would overwrite another file.
	StatusConflict Status = "conflict"
)

// Plan is the rename of one subtitle to its matched video's base name.
type Plan struct {
	SourceName string
	TargetName string
	Source     string // absolute path
	Target     string // absolute path
	VideoName  string
	Score      float64
	Status     Status
	Reason     string // set for conflicts
}

// Build computes one plan per match, in match order.
//
// The target keeps the subtitle's own extension: "<video base><subtitle ext>"
// in dir. Names are compared exactly, so a case-only rename stays pending.
// A target is a conflict when another plan already claims it, or when it
// names an existing entry that is not the source of some other plan.
// Already-named subtitles claim their name before any other plan is built.
func Build(dir string, matches []matcher.MatchResult, existing []string) []Plan {
	onDisk := make(map[string]bool, len(existing))
	for _, name := range existing {
		onDisk[name] = true
	}
	sources := make(map[string]bool, len(matches))
	for _, m := range matches {
		sources[m.Subtitle.Name] = true
	}

	plans := make([]Plan, len(matches))
	claimed := make(map[string]string, len(matches))
	for i, m := range matches {
		target := m.Video.Base + m.Subtitle.Ext
		plans[i] = Plan{
			SourceName: m.Subtitle.Name,
			TargetName: target,
			Source:     sourcePath(dir, m),
			Target:     filepath.Join(dir, target),
			VideoName:  m.Video.Name,
			Score:      m.Score,
			Status:     StatusPending,
		}
		if target == m.Subtitle.Name {
			plans[i].Status = StatusNoOp
			claimed[target] = m.Subtitle.Name
		}
	}

	for i := range plans {
		p := &plans[i]
		if p.Status != StatusPending {
			continue
		}
		if owner, ok := claimed[p.TargetName]; ok {
			p.Status = StatusConflict
			p.Reason = "target is also claimed by " + owner
			continue
		}
		if onDisk[p.TargetName] && !sources[p.TargetName] {
			p.Status = StatusConflict
			p.Reason = "target already exists"
			continue
		}
		claimed[p.TargetName] = p.SourceName
	}
	return plans
}

// Count returns how many plans carry status.
func Count(plans []Plan, status Status) int {
	n := 0
	for _, p := range plans {
		if p.Status == status {
			n++
		}
	}
	return n
}

func sourcePath(dir string, m matcher.MatchResult) string {
	if m.Subtitle.Path != "" {
		return m.Subtitle.Path
	}
	return filepath.Join(dir, m.Subtitle.Name)
}

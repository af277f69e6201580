// Package renamer executes rename plans and aggregates per-file outcomes.
package renamer

import (
	"errors"
	"os"

	"subrename/internal/planner"
)

// Through a variable so tests can simulate filesystem failures.
var renameFunc = renameNoReplace

// Status is the final outcome of one plan.
type Status string

const (
	StatusRenamed     Status = "renamed"
	StatusWouldRename Status = "would-rename"
	StatusNoOp        Status = "noop"
	StatusConflict    Status = "conflict"
	StatusFailed      Status = "failed"
)

// Outcome records what happened to one plan.
type Outcome struct {
	Plan   planner.Plan
	Status Status
	Err    error
}

// Report aggregates the outcomes of one pass, in plan order.
type Report struct {
	Outcomes  []Outcome
	Renamed   int // includes would-rename in dry runs
	NoOps     int
	Conflicts int
	Failed    int
}

// Errors returns the number of per-file failures.
func (r *Report) Errors() int {
	return r.Conflicts + r.Failed
}

// Options configures Execute.
type Options struct {
	DryRun bool
}

// Execute applies plans and never stops on a per-file error.
//
// Pending plans whose target is still held by another pending plan's source
// wait until that source has moved. Plans left blocked once no further
// progress is possible form a rename cycle and are reported as conflicts.
// Nothing is ever overwritten. With DryRun set the filesystem is only read.
func Execute(plans []planner.Plan, opts Options) *Report {
	e := &executor{
		dryRun:  opts.DryRun,
		vacated: make(map[string]bool),
		created: make(map[string]bool),
	}
	outcomes := make([]Outcome, len(plans))

	waiting := make(map[string]int) // source name -> plan index
	var queue []int
	for i, p := range plans {
		switch p.Status {
		case planner.StatusNoOp:
			outcomes[i] = Outcome{Plan: p, Status: StatusNoOp}
		case planner.StatusConflict:
			outcomes[i] = Outcome{Plan: p, Status: StatusConflict, Err: &RenameConflictError{
				Source: p.SourceName,
				Target: p.TargetName,
				Reason: p.Reason,
			}}
		default:
			queue = append(queue, i)
			waiting[p.SourceName] = i
		}
	}

	for len(queue) > 0 {
		var blocked []int
		for _, i := range queue {
			p := plans[i]
			if holder, ok := waiting[p.TargetName]; ok && holder != i {
				blocked = append(blocked, i)
				continue
			}
			outcomes[i] = e.apply(p)
			delete(waiting, p.SourceName)
		}
		if len(blocked) == len(queue) {
			for _, i := range blocked {
				p := plans[i]
				outcomes[i] = Outcome{Plan: p, Status: StatusConflict, Err: &RenameConflictError{
					Source: p.SourceName,
					Target: p.TargetName,
					Reason: "target is held by a file in a rename cycle",
				}}
			}
			break
		}
		queue = blocked
	}

	report := &Report{Outcomes: outcomes}
	for _, o := range outcomes {
		switch o.Status {
		case StatusRenamed, StatusWouldRename:
			report.Renamed++
		case StatusNoOp:
			report.NoOps++
		case StatusConflict:
			report.Conflicts++
		case StatusFailed:
			report.Failed++
		}
	}
	return report
}

type executor struct {
	dryRun bool
	// Simulated directory changes for dry runs, keyed by absolute path.
	vacated map[string]bool
	created map[string]bool
}

func (e *executor) apply(p planner.Plan) Outcome {
	srcInfo, err := os.Lstat(p.Source)
	if err != nil {
		return failed(p, err)
	}

	caseOnly := false
	if dstInfo, err := os.Lstat(p.Target); err == nil {
		switch {
		case os.SameFile(srcInfo, dstInfo):
			// Case-insensitive filesystem resolving the new name to the source.
			caseOnly = true
		case !e.vacated[p.Target]:
			return conflict(p, "target already exists")
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return failed(p, err)
	}
	if e.created[p.Target] {
		return conflict(p, "target already exists")
	}

	if e.dryRun {
		e.vacated[p.Source] = true
		delete(e.created, p.Source)
		e.created[p.Target] = true
		return Outcome{Plan: p, Status: StatusWouldRename}
	}

	if caseOnly {
		err = os.Rename(p.Source, p.Target)
	} else {
		err = renameFunc(p.Source, p.Target)
	}
	switch {
	case err == nil:
		return Outcome{Plan: p, Status: StatusRenamed}
	case errors.Is(err, errTargetExists):
		return conflict(p, "target already exists")
	default:
		return failed(p, err)
	}
}

func conflict(p planner.Plan, reason string) Outcome {
	return Outcome{Plan: p, Status: StatusConflict, Err: &RenameConflictError{
		Source: p.SourceName,
		Target: p.TargetName,
		Reason: reason,
	}}
}

func failed(p planner.Plan, err error) Outcome {
	return Outcome{Plan: p, Status: StatusFailed, Err: &RenameIOError{
		Source: p.SourceName,
		Target: p.TargetName,
		Err:    err,
	}}
}

// renameChecked refuses to replace an existing dst, then renames.
func renameChecked(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return errTargetExists
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.Rename(src, dst)
}

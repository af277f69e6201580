// Package matcher pairs subtitle files with video files by base-name similarity.
package matcher

import (
	"errors"
	"fmt"
	"sort"

	"subrename/internal/classifier"
)

// ErrNoCandidates is returned when neither videos nor subtitles were found.
var ErrNoCandidates = errors.New("no video or subtitle files found")

// ErrCountMismatch matches every CountMismatchError via errors.Is.
var ErrCountMismatch = errors.New("video and subtitle counts differ")

// CountMismatchError reports differing candidate counts while the
// count check is active.
type CountMismatchError struct {
	Videos    int
	Subtitles int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("found %d video file(s) but %d subtitle file(s)", e.Videos, e.Subtitles)
}

func (e *CountMismatchError) Is(target error) bool {
	return target == ErrCountMismatch
}

// Options configures Match.
type Options struct {
	// IgnoreCountMismatch matches the overlapping subset instead of failing
	// when the number of videos and subtitles differ.
	IgnoreCountMismatch bool
	// MinScore drops pairs scoring below it into the unmatched lists. Pairs
	// with differing episode signatures are never matched, whatever MinScore.
	MinScore float64
}

// MatchResult associates one subtitle with its chosen video.
type MatchResult struct {
	Subtitle classifier.Candidate
	Video    classifier.Candidate
	Score    float64
}

// Result is the outcome of matching one directory.
type Result struct {
	Matches            []MatchResult // ordered by subtitle name
	UnmatchedVideos    []classifier.Candidate
	UnmatchedSubtitles []classifier.Candidate
	// NothingToDo is set when one side is empty and the count check is off.
	NothingToDo bool
}

// Match pairs subtitles with videos one-to-one, maximizing total similarity.
//
// Both inputs are re-sorted by filename so the result only depends on the
// set of names. Failure modes, checked in order:
//   - neither side has candidates: ErrNoCandidates
//   - counts differ and IgnoreCountMismatch is off: *CountMismatchError
//
// With IgnoreCountMismatch on and one side empty the result is empty and
// NothingToDo is set.
func Match(videos, subtitles []classifier.Candidate, opts Options) (*Result, error) {
	if len(videos) == 0 && len(subtitles) == 0 {
		return nil, ErrNoCandidates
	}
	if len(videos) != len(subtitles) && !opts.IgnoreCountMismatch {
		return nil, &CountMismatchError{Videos: len(videos), Subtitles: len(subtitles)}
	}

	videos = sortedCopy(videos)
	subtitles = sortedCopy(subtitles)

	result := &Result{}
	if len(videos) == 0 || len(subtitles) == 0 {
		result.NothingToDo = true
		result.UnmatchedVideos = videos
		result.UnmatchedSubtitles = subtitles
		return result, nil
	}

	usedVideo := make([]bool, len(videos))
	usedSub := make([]bool, len(subtitles))
	for _, a := range Assign(classifier.Bases(subtitles), classifier.Bases(videos)) {
		if a.Score < opts.MinScore {
			continue
		}
		usedSub[a.Left] = true
		usedVideo[a.Right] = true
		result.Matches = append(result.Matches, MatchResult{
			Subtitle: subtitles[a.Left],
			Video:    videos[a.Right],
			Score:    a.Score,
		})
	}

	for i, v := range videos {
		if !usedVideo[i] {
			result.UnmatchedVideos = append(result.UnmatchedVideos, v)
		}
	}
	for i, s := range subtitles {
		if !usedSub[i] {
			result.UnmatchedSubtitles = append(result.UnmatchedSubtitles, s)
		}
	}
	return result, nil
}

func sortedCopy(in []classifier.Candidate) []classifier.Candidate {
	out := make([]classifier.Candidate, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

package matcher

import (
	"errors"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"subrename/internal/classifier"
)

func candidate(name string, kind classifier.Kind) classifier.Candidate {
	ext := filepath.Ext(name)
	return classifier.Candidate{
		Name: name,
		Base: strings.TrimSuffix(name, ext),
		Ext:  ext,
		Path: "/media/" + name,
		Kind: kind,
	}
}

func videos(names ...string) []classifier.Candidate {
	out := make([]classifier.Candidate, len(names))
	for i, n := range names {
		out[i] = candidate(n, classifier.Video)
	}
	return out
}

func subtitles(names ...string) []classifier.Candidate {
	out := make([]classifier.Candidate, len(names))
	for i, n := range names {
		out[i] = candidate(n, classifier.Subtitle)
	}
	return out
}

// pairs renders matches as "subtitle->video" for compact comparison.
func pairs(r *Result) []string {
	out := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Subtitle.Name + "->" + m.Video.Name
	}
	return out
}

func candidateNames(cs []classifier.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestMatchIdenticalBaseNames(t *testing.T) {
	r, err := Match(
		videos("B.mkv", "A.mp4", "C.avi"),
		subtitles("C.srt", "A.srt", "B.srt"),
		Options{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"A.srt->A.mp4", "B.srt->B.mkv", "C.srt->C.avi"}
	if diff := cmp.Diff(want, pairs(r)); diff != "" {
		t.Errorf("pairs mismatch (-want +got):\n%s", diff)
	}
	for _, m := range r.Matches {
		if m.Score != 1.0 {
			t.Errorf("%s scored %v, want 1.0", m.Subtitle.Name, m.Score)
		}
	}
	if len(r.UnmatchedVideos) != 0 || len(r.UnmatchedSubtitles) != 0 {
		t.Errorf("expected no leftovers, got %v / %v", candidateNames(r.UnmatchedVideos), candidateNames(r.UnmatchedSubtitles))
	}
}

func TestMatchNormalizedNames(t *testing.T) {
	r, err := Match(videos("Movie.Night.2020.mkv"), subtitles("movie night.srt"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"movie night.srt->Movie.Night.2020.mkv"}, pairs(r)); diff != "" {
		t.Errorf("pairs mismatch (-want +got):\n%s", diff)
	}
	if r.Matches[0].Score < 0.6 {
		t.Errorf("expected high similarity, got %v", r.Matches[0].Score)
	}
}

func TestMatchEpisodesBySignature(t *testing.T) {
	r, err := Match(
		videos("Show.S01E01.720p.mkv", "Show.S01E02.720p.mkv", "Show.S01E03.720p.mkv"),
		subtitles("show s01e03 web.srt", "show s01e01 web.srt", "show 1x02.srt"),
		Options{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"show 1x02.srt->Show.S01E02.720p.mkv",
		"show s01e01 web.srt->Show.S01E01.720p.mkv",
		"show s01e03 web.srt->Show.S01E03.720p.mkv",
	}
	if diff := cmp.Diff(want, pairs(r)); diff != "" {
		t.Errorf("pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchCountMismatch(t *testing.T) {
	_, err := Match(videos("a.mkv", "b.mkv", "c.mkv"), subtitles("a.srt", "b.srt"), Options{})
	if !errors.Is(err, ErrCountMismatch) {
		t.Fatalf("expected ErrCountMismatch, got %v", err)
	}
	var mismatch *CountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *CountMismatchError, got %T", err)
	}
	if mismatch.Videos != 3 || mismatch.Subtitles != 2 {
		t.Errorf("got counts (%d, %d), want (3, 2)", mismatch.Videos, mismatch.Subtitles)
	}
	if !strings.Contains(err.Error(), "3") || !strings.Contains(err.Error(), "2") {
		t.Errorf("message should carry both counts: %q", err.Error())
	}
}

func TestMatchIgnoreCountMismatch(t *testing.T) {
	r, err := Match(
		videos("a.mkv", "b.mkv", "c.mkv"),
		subtitles("a.srt", "b.srt"),
		Options{IgnoreCountMismatch: true},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %v", pairs(r))
	}
	if diff := cmp.Diff([]string{"c.mkv"}, candidateNames(r.UnmatchedVideos)); diff != "" {
		t.Errorf("unmatched videos (-want +got):\n%s", diff)
	}
	if r.NothingToDo {
		t.Error("NothingToDo should be false")
	}
}

func TestMatchNoCandidates(t *testing.T) {
	for _, ignore := range []bool{false, true} {
		_, err := Match(nil, nil, Options{IgnoreCountMismatch: ignore})
		if !errors.Is(err, ErrNoCandidates) {
			t.Errorf("ignore=%v: expected ErrNoCandidates, got %v", ignore, err)
		}
	}
}

func TestMatchOneSideEmpty(t *testing.T) {
	_, err := Match(videos("a.mkv"), nil, Options{})
	if !errors.Is(err, ErrCountMismatch) {
		t.Errorf("expected ErrCountMismatch with check active, got %v", err)
	}

	r, err := Match(nil, subtitles("a.srt", "b.srt"), Options{IgnoreCountMismatch: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.NothingToDo {
		t.Error("expected NothingToDo")
	}
	if len(r.Matches) != 0 {
		t.Errorf("expected no matches, got %v", pairs(r))
	}
	if diff := cmp.Diff([]string{"a.srt", "b.srt"}, candidateNames(r.UnmatchedSubtitles)); diff != "" {
		t.Errorf("unmatched subtitles (-want +got):\n%s", diff)
	}
}

func TestMatchMinScore(t *testing.T) {
	r, err := Match(
		videos("alpha.mkv", "Show.S02E05.mkv"),
		subtitles("qqqqq.srt", "show.s02e05.srt"),
		Options{MinScore: 0.5},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"show.s02e05.srt->Show.S02E05.mkv"}, pairs(r)); diff != "" {
		t.Errorf("pairs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"alpha.mkv"}, candidateNames(r.UnmatchedVideos)); diff != "" {
		t.Errorf("unmatched videos (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"qqqqq.srt"}, candidateNames(r.UnmatchedSubtitles)); diff != "" {
		t.Errorf("unmatched subtitles (-want +got):\n%s", diff)
	}
}

func TestMatchSignatureMismatchStaysUnmatched(t *testing.T) {
	vs := videos("Show.S01E01.mkv", "Show.S01E02.mkv")
	ss := subtitles("Show.S01E01.srt", "Show.S01E03.srt")

	for _, minScore := range []float64{0, 0.5} {
		r, err := Match(vs, ss, Options{MinScore: minScore})
		if err != nil {
			t.Fatalf("min score %v: unexpected error: %v", minScore, err)
		}
		if diff := cmp.Diff([]string{"Show.S01E01.srt->Show.S01E01.mkv"}, pairs(r)); diff != "" {
			t.Errorf("min score %v: pairs mismatch (-want +got):\n%s", minScore, diff)
		}
		if diff := cmp.Diff([]string{"Show.S01E02.mkv"}, candidateNames(r.UnmatchedVideos)); diff != "" {
			t.Errorf("min score %v: unmatched videos (-want +got):\n%s", minScore, diff)
		}
		if diff := cmp.Diff([]string{"Show.S01E03.srt"}, candidateNames(r.UnmatchedSubtitles)); diff != "" {
			t.Errorf("min score %v: unmatched subtitles (-want +got):\n%s", minScore, diff)
		}
	}
}

// Feature: subtitle-matching, Property 1: One-To-One Pairing

// genBaseNames generates 0-6 distinct lower-case base names.
func genBaseNames() gopter.Gen {
	return gen.SliceOf(gen.RegexMatch(`[a-e]{1,6}`)).Map(func(in []string) []string {
		seen := make(map[string]bool)
		var out []string
		for _, s := range in {
			if !seen[s] && len(out) < 6 {
				seen[s] = true
				out = append(out, s)
			}
		}
		return out
	})
}

func withExt(bases []string, ext string) []string {
	out := make([]string, len(bases))
	for i, b := range bases {
		out[i] = b + ext
	}
	return out
}

func TestMatchIsOneToOne(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("no video or subtitle appears in two matches", prop.ForAll(
		func(videoBases, subBases []string) bool {
			r, err := Match(videos(withExt(videoBases, ".mkv")...), subtitles(withExt(subBases, ".srt")...), Options{IgnoreCountMismatch: true})
			if len(videoBases) == 0 && len(subBases) == 0 {
				return errors.Is(err, ErrNoCandidates)
			}
			if err != nil {
				t.Logf("unexpected error: %v", err)
				return false
			}

			if len(r.Matches) != min(len(videoBases), len(subBases)) {
				t.Logf("expected %d matches, got %d", min(len(videoBases), len(subBases)), len(r.Matches))
				return false
			}
			seenVideo := map[string]bool{}
			seenSub := map[string]bool{}
			for _, m := range r.Matches {
				if seenVideo[m.Video.Name] || seenSub[m.Subtitle.Name] {
					return false
				}
				seenVideo[m.Video.Name] = true
				seenSub[m.Subtitle.Name] = true
				if m.Score < 0 || m.Score > 1 {
					return false
				}
			}
			return len(r.Matches)+len(r.UnmatchedVideos) == len(videoBases) &&
				len(r.Matches)+len(r.UnmatchedSubtitles) == len(subBases)
		},
		genBaseNames(),
		genBaseNames(),
	))

	properties.Property("identical base names always pair with score 1", prop.ForAll(
		func(bases []string) bool {
			if len(bases) == 0 {
				return true
			}
			r, err := Match(videos(withExt(bases, ".mp4")...), subtitles(withExt(bases, ".srt")...), Options{})
			if err != nil {
				return false
			}
			for _, m := range r.Matches {
				if m.Subtitle.Base != m.Video.Base || m.Score != 1 {
					t.Logf("%s paired with %s (%v)", m.Subtitle.Name, m.Video.Name, m.Score)
					return false
				}
			}
			return len(r.Matches) == len(bases)
		},
		genBaseNames(),
	))

	properties.Property("input order does not change the result", prop.ForAll(
		func(videoBases, subBases []string, seed int64) bool {
			if len(videoBases) == 0 && len(subBases) == 0 {
				return true
			}
			vs := videos(withExt(videoBases, ".mkv")...)
			ss := subtitles(withExt(subBases, ".srt")...)
			first, err := Match(vs, ss, Options{IgnoreCountMismatch: true})
			if err != nil {
				return false
			}

			rng := rand.New(rand.NewSource(seed))
			rng.Shuffle(len(vs), func(i, j int) { vs[i], vs[j] = vs[j], vs[i] })
			rng.Shuffle(len(ss), func(i, j int) { ss[i], ss[j] = ss[j], ss[i] })
			second, err := Match(vs, ss, Options{IgnoreCountMismatch: true})
			if err != nil {
				return false
			}
			return cmp.Equal(pairs(first), pairs(second))
		},
		genBaseNames(),
		genBaseNames(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

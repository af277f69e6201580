package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"

	"subrename/internal/logging"
	"subrename/internal/matcher"
	"subrename/internal/renamer"
	"subrename/internal/scanner"
)

func setupDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(n), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", n, err)
		}
	}
	return dir
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func run(t *testing.T, opts Options) (*RunSummary, error) {
	t.Helper()
	if opts.LockDir == "" {
		opts.LockDir = t.TempDir()
	}
	return New(opts, logging.NewNop()).Run(context.Background())
}

func TestRunRenamesToVideoBaseName(t *testing.T) {
	dir := setupDir(t, "Movie.Night.2020.mkv", "movie night.srt", "notes.txt")

	summary, err := run(t, Options{Dir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"Movie.Night.2020.mkv", "Movie.Night.2020.srt", "notes.txt"}
	if diff := cmp.Diff(want, listDir(t, dir)); diff != "" {
		t.Errorf("directory (-want +got):\n%s", diff)
	}
	if summary.Renamed != 1 || summary.Errors() != 0 || summary.Ignored != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if summary.RunID == "" || summary.Dir != dir {
		t.Errorf("summary identity not set: %+v", summary)
	}
	if got := summary.String(); got != "renamed 1, skipped 0, failed 0" {
		t.Errorf("String() = %q", got)
	}
}

func TestRunEpisodesPairBySignature(t *testing.T) {
	dir := setupDir(t,
		"Show.S01E01.1080p.mkv", "Show.S01E02.1080p.mkv",
		"show - 1x02 - [eng].srt", "show - 1x01 - [eng].srt",
	)

	if _, err := run(t, Options{Dir: dir}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, ep := range []string{"S01E01", "S01E02"} {
		data, err := os.ReadFile(filepath.Join(dir, "Show."+ep+".1080p.srt"))
		if err != nil {
			t.Fatalf("missing subtitle for %s: %v", ep, err)
		}
		short := strings.Replace(strings.TrimPrefix(ep, "S0"), "E", "x", 1)
		if !strings.Contains(string(data), short) {
			t.Errorf("%s got subtitle %q", ep, data)
		}
	}
}

func TestRunCountMismatch(t *testing.T) {
	names := []string{"a.mkv", "b.mkv", "c.mkv", "a.srt", "b1.srt"}

	t.Run("without ignore flag", func(t *testing.T) {
		dir := setupDir(t, names...)
		_, err := run(t, Options{Dir: dir})

		var mismatch *matcher.CountMismatchError
		if !errors.As(err, &mismatch) || mismatch.Videos != 3 || mismatch.Subtitles != 2 {
			t.Fatalf("expected CountMismatchError 3/2, got %v", err)
		}
		if diff := cmp.Diff(setupNames(names), listDir(t, dir)); diff != "" {
			t.Errorf("nothing may be renamed on a fatal error (-want +got):\n%s", diff)
		}
	})

	t.Run("with ignore flag", func(t *testing.T) {
		dir := setupDir(t, names...)
		summary, err := run(t, Options{Dir: dir, IgnoreMismatch: true})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(summary.Matches) != 2 || len(summary.UnmatchedVideos) != 1 {
			t.Errorf("expected 2 matches and 1 unmatched video, got %+v", summary)
		}
		if summary.HasErrors() {
			t.Errorf("unexpected errors %+v", summary.Outcomes)
		}
	})
}

func setupNames(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}

func TestRunFatalErrors(t *testing.T) {
	t.Run("no candidates", func(t *testing.T) {
		dir := setupDir(t, "readme.md")
		if _, err := run(t, Options{Dir: dir}); !errors.Is(err, matcher.ErrNoCandidates) {
			t.Errorf("expected ErrNoCandidates, got %v", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := run(t, Options{Dir: filepath.Join(t.TempDir(), "gone")})
		if !errors.Is(err, scanner.ErrDirectoryRead) {
			t.Errorf("expected ErrDirectoryRead, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(Options{Dir: t.TempDir(), LockDir: t.TempDir()}, nil).Run(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestRunOneSideEmptyIsNothingToDo(t *testing.T) {
	dir := setupDir(t, "a.srt", "b.srt")

	summary, err := run(t, Options{Dir: dir, IgnoreMismatch: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.NothingToDo || summary.String() != "nothing to do" {
		t.Errorf("expected nothing to do, got %+v", summary)
	}
	if diff := cmp.Diff([]string{"a.srt", "b.srt"}, summary.UnmatchedSubtitles); diff != "" {
		t.Errorf("unmatched subtitles (-want +got):\n%s", diff)
	}
}

func TestRunConflictIsPartialSuccess(t *testing.T) {
	// Both videos share the base name, so both subtitles want Film.srt.
	dir := setupDir(t, "Film.mkv", "Film.mp4", "film a.srt", "film b.srt")

	summary, err := run(t, Options{Dir: dir})
	if err != nil {
		t.Fatalf("per-file conflicts must not be fatal: %v", err)
	}
	if summary.Renamed != 1 || summary.Conflicts != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !renamer.IsConflict(summary.Outcomes[1].Err) {
		t.Errorf("expected conflict for %s, got %v", summary.Outcomes[1].Plan.SourceName, summary.Outcomes[1].Err)
	}
	if got, want := summary.String(), "completed with 1 error(s): renamed 1, skipped 0, failed 1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	want := []string{"Film.mkv", "Film.mp4", "Film.srt", "film b.srt"}
	if diff := cmp.Diff(want, listDir(t, dir)); diff != "" {
		t.Errorf("directory (-want +got):\n%s", diff)
	}
}

func TestRunLogsPlanCountsAndConflicts(t *testing.T) {
	dir := setupDir(t, "Film.mkv", "Film.mp4", "film a.srt", "film b.srt")

	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if _, err := New(Options{Dir: dir, LockDir: t.TempDir()}, logger).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	logs := buf.String()
	for _, want := range []string{
		`"msg":"planned renames"`,
		`"pending":1`,
		`"conflict":1`,
		`"msg":"rename skipped"`,
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs missing %s:\n%s", want, logs)
		}
	}
	if strings.Contains(logs, `"msg":"rename failed"`) {
		t.Errorf("conflict logged as a failure:\n%s", logs)
	}
}

func TestRunDifferentEpisodesAreNeverPaired(t *testing.T) {
	dir := setupDir(t, "Show.S01E01.mkv", "Show.S01E02.mkv", "show.s01e01.en.srt", "Show.S01E03.srt")

	summary, err := run(t, Options{Dir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Renamed != 1 || summary.HasErrors() {
		t.Errorf("unexpected summary %+v", summary)
	}
	if diff := cmp.Diff([]string{"Show.S01E02.mkv"}, summary.UnmatchedVideos); diff != "" {
		t.Errorf("unmatched videos (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Show.S01E03.srt"}, summary.UnmatchedSubtitles); diff != "" {
		t.Errorf("unmatched subtitles (-want +got):\n%s", diff)
	}
	want := []string{"Show.S01E01.mkv", "Show.S01E01.srt", "Show.S01E02.mkv", "Show.S01E03.srt"}
	if diff := cmp.Diff(want, listDir(t, dir)); diff != "" {
		t.Errorf("directory (-want +got):\n%s", diff)
	}
	data, err := os.ReadFile(filepath.Join(dir, "Show.S01E03.srt"))
	if err != nil || string(data) != "Show.S01E03.srt" {
		t.Errorf("Show.S01E03.srt was modified: %q, %v", data, err)
	}
}

func TestRunAlreadyNamedIsNoOp(t *testing.T) {
	dir := setupDir(t, "A.mkv", "A.srt")

	summary, err := run(t, Options{Dir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.NoOps != 1 || summary.Renamed != 0 || summary.HasErrors() {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestRunDryRun(t *testing.T) {
	dir := setupDir(t, "Movie.Night.2020.mkv", "movie night.srt")
	before := listDir(t, dir)

	summary, err := run(t, Options{Dir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff(before, listDir(t, dir)); diff != "" {
		t.Errorf("dry run changed the directory (-before +after):\n%s", diff)
	}
	if summary.Outcomes[0].Status != renamer.StatusWouldRename {
		t.Errorf("expected would-rename, got %s", summary.Outcomes[0].Status)
	}
	if got := summary.String(); got != "would rename 1, skipped 0, failed 0" {
		t.Errorf("String() = %q", got)
	}
}

func TestRunCustomExtensions(t *testing.T) {
	dir := setupDir(t, "Clip.webm", "clip.ASS", "clip.srt")

	summary, err := run(t, Options{Dir: dir, ExtraVideoExtensions: []string{"webm"}, SubtitleExtension: "ass"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Renamed != 1 || summary.Ignored != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(dir, "Clip.ASS")); err != nil {
		t.Errorf("expected Clip.ASS: %v", err)
	}
}

func TestRunMinScoreLeavesWeakPairsAlone(t *testing.T) {
	dir := setupDir(t, "aaaa.mkv", "zzzz.srt")

	summary, err := run(t, Options{Dir: dir, MinScore: 0.5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Matches) != 0 || len(summary.UnmatchedSubtitles) != 1 {
		t.Errorf("expected the weak pair to be dropped, got %+v", summary)
	}
	if diff := cmp.Diff([]string{"aaaa.mkv", "zzzz.srt"}, listDir(t, dir)); diff != "" {
		t.Errorf("directory (-want +got):\n%s", diff)
	}
}

func TestRunDirectoryBusy(t *testing.T) {
	dir := setupDir(t, "A.mkv", "b.srt")
	lockDir := t.TempDir()

	held := flock.New(lockPath(lockDir, dir))
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("could not take lock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	_, err := run(t, Options{Dir: dir, LockDir: lockDir})
	if !errors.Is(err, ErrDirectoryBusy) {
		t.Fatalf("expected ErrDirectoryBusy, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "b.srt")); err != nil {
		t.Errorf("b.srt should be untouched: %v", err)
	}

	if err := held.Unlock(); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, Options{Dir: dir, LockDir: lockDir}); err != nil {
		t.Errorf("Run after unlock: %v", err)
	}
}

func TestLockPathIsStablePerDirectory(t *testing.T) {
	a := lockPath("/tmp", "/media/shows")
	if a != lockPath("/tmp", "/media/shows") {
		t.Error("lock path not stable")
	}
	if a == lockPath("/tmp", "/media/movies") {
		t.Error("different directories share a lock path")
	}
	if filepath.Dir(a) != "/tmp" || !strings.HasSuffix(a, ".lock") {
		t.Errorf("unexpected lock path %s", a)
	}
}

// Package classifier splits directory entries into video and subtitle candidates.
package classifier

import (
	"path/filepath"
	"sort"
	"strings"

	"subrename/internal/scanner"
)

// Kind identifies what a candidate file was classified as.
type Kind string

const (
	Video    Kind = "VIDEO"
	Subtitle Kind = "SUBTITLE"
)

// DefaultVideoExtensions are recognized without any user configuration.
var DefaultVideoExtensions = []string{"mp4", "mkv", "flv", "avi", "3gp", "mov"}

// DefaultSubtitleExtension is the subtitle format renamed by default.
const DefaultSubtitleExtension = "srt"

// Candidate is a directory entry whose extension put it on one side of the match.
type Candidate struct {
	Name string // Filename as on disk
	Base string // Name without its final extension
	Ext  string // Final extension including the dot, original casing
	Path string // Absolute path
	Kind Kind
}

// Rules configures classification.
type Rules struct {
	Video    ExtensionSet
	Subtitle string
}

// DefaultRules returns rules using the default video set plus extra extensions.
func DefaultRules(extraVideo ...string) Rules {
	video := NewExtensionSet(DefaultVideoExtensions...)
	video.Add(extraVideo...)
	return Rules{
		Video:    video,
		Subtitle: DefaultSubtitleExtension,
	}
}

// Candidates holds the outcome of classifying one directory listing.
type Candidates struct {
	Videos    []Candidate
	Subtitles []Candidate
	Ignored   []string
}

// Classify partitions entries into video and subtitle candidates.
// Extension comparison is case-insensitive. Entries matching neither side,
// or with nothing before the extension (".srt"), are ignored.
// Both candidate slices are sorted by filename.
func Classify(entries []scanner.FileEntry, rules Rules) Candidates {
	subtitleExt := canonicalExt(rules.Subtitle)
	var out Candidates

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name)
		base := strings.TrimSuffix(entry.Name, ext)
		if ext == "" || base == "" {
			out.Ignored = append(out.Ignored, entry.Name)
			continue
		}

		c := Candidate{
			Name: entry.Name,
			Base: base,
			Ext:  ext,
			Path: entry.FullPath,
		}

		switch {
		case subtitleExt != "" && canonicalExt(ext) == subtitleExt:
			c.Kind = Subtitle
			out.Subtitles = append(out.Subtitles, c)
		case rules.Video.Contains(ext):
			c.Kind = Video
			out.Videos = append(out.Videos, c)
		default:
			out.Ignored = append(out.Ignored, entry.Name)
		}
	}

	sortByName(out.Videos)
	sortByName(out.Subtitles)
	return out
}

// Bases returns the base names of candidates, preserving order.
func Bases(candidates []Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Base
	}
	return out
}

func sortByName(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Name < candidates[j].Name
	})
}

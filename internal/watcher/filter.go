package watcher

import (
	"path/filepath"
	"strings"
)

// DefaultIgnorePatterns returns the default patterns for temporary files to ignore.
func DefaultIgnorePatterns() []string {
	return []string{
		"*.tmp",
		"*.part",
		"*.download",
		"*.crdownload", // Chrome partial downloads
		"*.partial",
		"*.!qb", // qBittorrent incomplete files
		".~*",   // editor lock files
		".*.swp",
	}
}

// FileFilter decides which changed files may trigger a pass.
type FileFilter struct {
	patterns []string
}

// NewFileFilter creates a FileFilter. Nil or empty patterns select
// DefaultIgnorePatterns.
func NewFileFilter(patterns []string) *FileFilter {
	if len(patterns) == 0 {
		patterns = DefaultIgnorePatterns()
	}
	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
	}
	return &FileFilter{patterns: lowered}
}

// ShouldIgnore matches the base name of path against the glob patterns,
// ignoring case. A bare extension pattern such as ".tmp" matches as a suffix.
func (f *FileFilter) ShouldIgnore(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, pattern := range f.patterns {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
		if strings.HasPrefix(pattern, ".") && !strings.ContainsAny(pattern, "*?[") && strings.HasSuffix(name, pattern) {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the lowercased patterns in use.
func (f *FileFilter) Patterns() []string {
	return append([]string(nil), f.patterns...)
}

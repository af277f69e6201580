// Package scanner lists the files of a single directory for subrename.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ErrDirectoryRead matches every ScanError via errors.Is.
var ErrDirectoryRead = errors.New("directory read error")

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// DirectoryNotFound indicates the directory does not exist.
	DirectoryNotFound ScanErrorType = "DIRECTORY_NOT_FOUND"
	// NotADirectory indicates the path exists but is not a directory.
	NotADirectory ScanErrorType = "NOT_A_DIRECTORY"
	// PermissionDenied indicates insufficient permissions to read the directory.
	PermissionDenied ScanErrorType = "PERMISSION_DENIED"
	// ReadFailed covers any other failure while listing the directory.
	ReadFailed ScanErrorType = "READ_FAILED"
)

// Symlink policy constants
const (
	SymlinkPolicyFollow = "follow"
	SymlinkPolicySkip   = "skip"
)

// ScanError represents an error that occurred during directory scanning.
type ScanError struct {
	Type ScanErrorType
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return string(e.Type) + ": " + e.Path
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Is reports ErrDirectoryRead as a match so callers can test the category
// without caring about the concrete type.
func (e *ScanError) Is(target error) bool {
	return target == ErrDirectoryRead
}

// ScanOptions configures scanning behavior.
type ScanOptions struct {
	SymlinkPolicy string // "follow" (also when empty) or "skip"
}

// FileEntry represents a file found during scanning.
type FileEntry struct {
	Name     string // Filename only
	FullPath string // Absolute path
}

// ScanWithOptions enumerates the regular files of directory without recursion.
// Subdirectories are skipped. Entries are returned sorted by name.
func ScanWithOptions(directory string, opts ScanOptions) ([]FileEntry, error) {
	info, err := os.Stat(directory)
	if err != nil {
		return nil, classify(directory, err)
	}
	if !info.IsDir() {
		return nil, &ScanError{
			Type: NotADirectory,
			Path: directory,
			Err:  errors.New("path is not a directory"),
		}
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, classify(directory, err)
	}

	files := make([]FileEntry, 0, len(entries))
	for _, entry := range entries {
		fullPath := filepath.Join(directory, entry.Name())
		absPath, err := filepath.Abs(fullPath)
		if err != nil {
			absPath = fullPath
		}

		info, err := os.Lstat(fullPath)
		if err != nil {
			continue // Skip entries we can't stat
		}

		if info.Mode()&os.ModeSymlink != 0 {
			if opts.SymlinkPolicy == SymlinkPolicySkip {
				continue
			}
			info, err = os.Stat(fullPath)
			if err != nil {
				continue // Skip broken symlinks
			}
		}

		if !info.Mode().IsRegular() {
			continue
		}

		files = append(files, FileEntry{
			Name:     entry.Name(),
			FullPath: absPath,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// Names returns the bare filenames of entries, preserving order.
func Names(entries []FileEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func classify(directory string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &ScanError{Type: DirectoryNotFound, Path: directory, Err: err}
	case errors.Is(err, os.ErrPermission):
		return &ScanError{Type: PermissionDenied, Path: directory, Err: err}
	default:
		return &ScanError{Type: ReadFailed, Path: directory, Err: err}
	}
}

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"subrename/internal/classifier"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string // TOML key with the issue, e.g. "video_extensions[1]"
	Message  string
	Severity ValidationSeverity
}

func (e ConfigValidationError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // no errors; warnings are allowed
}

// Validate ensures the configuration is usable, reporting the first error.
func (c *Config) Validate() error {
	result := ValidateConfig(c)
	if result.Valid {
		return nil
	}
	return &ConfigError{Type: ValidationError, Message: result.Errors[0].String()}
}

// ValidateConfig checks the configuration and returns every finding.
func ValidateConfig(cfg *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
	}

	var findings []ConfigValidationError
	findings = append(findings, ValidateExtensions(cfg)...)
	findings = append(findings, ValidatePolicies(cfg)...)
	findings = append(findings, ValidateWatch(cfg)...)
	for _, f := range findings {
		if f.Severity == SeverityError {
			result.Errors = append(result.Errors, f)
		} else {
			result.Warnings = append(result.Warnings, f)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidateExtensions rejects extensions that cannot occur in a file name and
// warns about entries that have no effect.
func ValidateExtensions(cfg *Config) []ConfigValidationError {
	var errs []ConfigValidationError

	if !validExtension(cfg.SubtitleExtension) {
		errs = append(errs, ConfigValidationError{
			Field:    "subtitle_extension",
			Message:  fmt.Sprintf("invalid extension %q", cfg.SubtitleExtension),
			Severity: SeverityError,
		})
	}

	builtin := classifier.NewExtensionSet(classifier.DefaultVideoExtensions...)
	seen := make(map[string]int)
	for i, ext := range cfg.VideoExtensions {
		field := fmt.Sprintf("video_extensions[%d]", i)
		switch {
		case !validExtension(ext):
			errs = append(errs, ConfigValidationError{
				Field:    field,
				Message:  fmt.Sprintf("invalid extension %q", ext),
				Severity: SeverityError,
			})
		case ext == cfg.SubtitleExtension:
			errs = append(errs, ConfigValidationError{
				Field:    field,
				Message:  fmt.Sprintf("%q is the subtitle extension and will be treated as a subtitle", ext),
				Severity: SeverityWarning,
			})
		case builtin.Contains(ext):
			errs = append(errs, ConfigValidationError{
				Field:    field,
				Message:  fmt.Sprintf("%q is already a built-in video extension", ext),
				Severity: SeverityWarning,
			})
		}
		if first, dup := seen[ext]; dup {
			errs = append(errs, ConfigValidationError{
				Field:    field,
				Message:  fmt.Sprintf("duplicate extension %q (first at index %d)", ext, first),
				Severity: SeverityWarning,
			})
		} else {
			seen[ext] = i
		}
	}

	return errs
}

// ValidatePolicies checks enumerated and bounded values.
func ValidatePolicies(cfg *Config) []ConfigValidationError {
	var errs []ConfigValidationError

	switch cfg.SymlinkPolicy {
	case "follow", "skip":
	default:
		errs = append(errs, ConfigValidationError{
			Field:    "symlink_policy",
			Message:  fmt.Sprintf("invalid symlink policy %q, must be \"follow\" or \"skip\"", cfg.SymlinkPolicy),
			Severity: SeverityError,
		})
	}

	if cfg.MinScore < 0 || cfg.MinScore > 1 {
		errs = append(errs, ConfigValidationError{
			Field:    "min_score",
			Message:  "min_score must be between 0 and 1",
			Severity: SeverityError,
		})
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ConfigValidationError{
			Field:    "logging.level",
			Message:  fmt.Sprintf("unknown log level %q", cfg.Logging.Level),
			Severity: SeverityError,
		})
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, ConfigValidationError{
			Field:    "logging.format",
			Message:  fmt.Sprintf("unknown log format %q, must be \"console\" or \"json\"", cfg.Logging.Format),
			Severity: SeverityError,
		})
	}

	return errs
}

// ValidateWatch checks watch mode timings and ignore patterns.
func ValidateWatch(cfg *Config) []ConfigValidationError {
	var errs []ConfigValidationError

	if cfg.Watch.DebounceMS < 0 {
		errs = append(errs, ConfigValidationError{
			Field:    "watch.debounce_ms",
			Message:  "watch.debounce_ms must be non-negative",
			Severity: SeverityError,
		})
	}
	if cfg.Watch.StableMS < 0 {
		errs = append(errs, ConfigValidationError{
			Field:    "watch.stable_ms",
			Message:  "watch.stable_ms must be non-negative",
			Severity: SeverityError,
		})
	}
	for i, pattern := range cfg.Watch.IgnorePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, ConfigValidationError{
				Field:    fmt.Sprintf("watch.ignore_patterns[%d]", i),
				Message:  fmt.Sprintf("malformed glob %q", pattern),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

func validExtension(ext string) bool {
	if ext == "" || ext == "." || ext == ".." {
		return false
	}
	return !strings.ContainsAny(ext, `/\*?[ `+"\t\x00")
}

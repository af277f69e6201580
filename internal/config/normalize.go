package config

import "strings"

func (c *Config) normalize() {
	exts := make([]string, 0, len(c.VideoExtensions))
	for _, ext := range c.VideoExtensions {
		if ext = normalizeExtension(ext); ext != "" {
			exts = append(exts, ext)
		}
	}
	c.VideoExtensions = exts

	c.SubtitleExtension = normalizeExtension(c.SubtitleExtension)
	if c.SubtitleExtension == "" {
		c.SubtitleExtension = defaultSubtitleExtension
	}

	c.SymlinkPolicy = strings.ToLower(strings.TrimSpace(c.SymlinkPolicy))
	if c.SymlinkPolicy == "" {
		c.SymlinkPolicy = defaultSymlinkPolicy
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}

	patterns := c.Watch.IgnorePatterns[:0]
	for _, p := range c.Watch.IgnorePatterns {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	c.Watch.IgnorePatterns = patterns
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

package config

const (
	defaultConfigPath        = "~/.config/subrename/config.toml"
	defaultSubtitleExtension = "srt"
	defaultSymlinkPolicy     = "follow"
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
	defaultWatchDebounceMS   = 2000
	defaultWatchStableMS     = 1000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		SubtitleExtension: defaultSubtitleExtension,
		SymlinkPolicy:     defaultSymlinkPolicy,
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Watch: Watch{
			DebounceMS: defaultWatchDebounceMS,
			StableMS:   defaultWatchStableMS,
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"subrename/internal/config"
	"subrename/internal/logging"
	"subrename/internal/matcher"
	"subrename/internal/orchestrator"
	"subrename/internal/output"
)

// cliFlags holds the flags shared by the rename and watch commands.
type cliFlags struct {
	configPath     string
	ignoreMismatch bool
	dryRun         bool
	verbose        bool
	strict         bool
	noColor        bool
	subtitleExt    string
	symlinks       string
	minScore       float64
	logLevel       string
	logFormat      string
}

func newRootCommand() *cobra.Command {
	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:   "subrename [flags] <directory> [extra-video-extension...]",
		Short: "Rename subtitles after the videos they belong to",
		Long: `subrename pairs every subtitle in a directory with the video whose name is
most similar and renames the subtitle to the video's base name, keeping the
subtitle extension. Nothing is ever overwritten.

Extra arguments after the directory are treated as additional video
extensions, for example: subrename ./season1 webm ts`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          requireDirectory,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(cmd, args, flags)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	pf.BoolVarP(&flags.ignoreMismatch, "ignore-mismatch", "i", false, "Match the overlapping subset when video and subtitle counts differ")
	pf.BoolVarP(&flags.dryRun, "dry-run", "n", false, "Show what would be renamed without touching any file")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Print the match table and unchanged files")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	pf.StringVar(&flags.subtitleExt, "subtitle-ext", "", "Subtitle extension to rename (default from config, srt)")
	pf.StringVar(&flags.symlinks, "symlinks", "", "Symlink policy: follow or skip")
	pf.Float64Var(&flags.minScore, "min-score", 0, "Leave pairs scoring below this value (0-1) unmatched")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: console or json")
	rootCmd.Flags().BoolVar(&flags.strict, "strict", false, "Exit with status 3 when any subtitle could not be renamed")

	rootCmd.AddCommand(newWatchCommand(flags))
	rootCmd.AddCommand(newConfigCommand(flags))

	return rootCmd
}

func requireDirectory(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageError(errors.New("missing directory argument"))
	}
	return nil
}

// session is the resolved configuration plus the sinks built from it.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	out    *output.Output
}

// setup loads the configuration file, applies flag overrides and builds the
// logger and output writer.
func (f *cliFlags) setup(cmd *cobra.Command) (*session, error) {
	cfg, _, _, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, usageError(err)
	}

	noColor := f.noColor || os.Getenv("NO_COLOR") != ""
	logger, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Writer:  cmd.ErrOrStderr(),
		NoColor: noColor,
	})
	if err != nil {
		return nil, usageError(err)
	}

	stdout := cmd.OutOrStdout()
	isTTY := logging.IsTerminal(stdout)
	out := output.New(output.Config{
		Verbose:   f.verbose,
		Writer:    stdout,
		ErrWriter: cmd.ErrOrStderr(),
		IsTTY:     isTTY,
		NoColor:   noColor,
		Width:     terminalWidth(stdout, isTTY),
	})
	return &session{cfg: cfg, logger: logger, out: out}, nil
}

// apply copies explicitly given flags over the loaded configuration.
func (f *cliFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags()
	if set.Changed("ignore-mismatch") {
		cfg.IgnoreMismatch = f.ignoreMismatch
	}
	if set.Changed("subtitle-ext") {
		cfg.SubtitleExtension = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f.subtitleExt), "."))
	}
	if set.Changed("symlinks") {
		cfg.SymlinkPolicy = strings.ToLower(strings.TrimSpace(f.symlinks))
	}
	if set.Changed("min-score") {
		cfg.MinScore = f.minScore
	}
	if set.Changed("log-level") {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(f.logLevel))
	}
	if set.Changed("log-format") {
		cfg.Logging.Format = strings.ToLower(strings.TrimSpace(f.logFormat))
	}
}

func (s *session) orchestratorOptions(args []string, dryRun bool) orchestrator.Options {
	extra := append([]string{}, s.cfg.VideoExtensions...)
	extra = append(extra, args[1:]...)
	return orchestrator.Options{
		Dir:                  args[0],
		ExtraVideoExtensions: extra,
		SubtitleExtension:    s.cfg.SubtitleExtension,
		IgnoreMismatch:       s.cfg.IgnoreMismatch,
		MinScore:             s.cfg.MinScore,
		DryRun:               dryRun,
		SymlinkPolicy:        s.cfg.SymlinkPolicy,
	}
}

func runRename(cmd *cobra.Command, args []string, f *cliFlags) error {
	s, err := f.setup(cmd)
	if err != nil {
		return err
	}

	summary, err := orchestrator.New(s.orchestratorOptions(args, f.dryRun), s.logger).Run(cmd.Context())
	if err != nil {
		return explain(err)
	}
	report(s.out, summary)

	if f.strict && summary.HasErrors() {
		return &exitError{
			code: exitPartial,
			err:  fmt.Errorf("%d subtitle(s) could not be renamed", summary.Errors()),
		}
	}
	return nil
}

// explain adds a hint to errors the user can resolve with a flag.
func explain(err error) error {
	if errors.Is(err, matcher.ErrCountMismatch) {
		return fmt.Errorf("%w (use --ignore-mismatch to rename the matching subset)", err)
	}
	return err
}

// terminalWidth returns the column count of a terminal writer, or 0.
func terminalWidth(w io.Writer, isTTY bool) int {
	f, ok := w.(*os.File)
	if !ok || !isTTY {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

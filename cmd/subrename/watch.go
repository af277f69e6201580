package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"subrename/internal/orchestrator"
	"subrename/internal/output"
	"subrename/internal/watcher"
)

func newWatchCommand(flags *cliFlags) *cobra.Command {
	var (
		debounce  time.Duration
		stable    time.Duration
		noInitial bool
	)

	cmd := &cobra.Command{
		Use:   "watch [flags] <directory> [extra-video-extension...]",
		Short: "Rename subtitles whenever files arrive in a directory",
		Long: `watch runs a rename pass each time new files in the directory stop changing.
Temporary download files (*.part, *.crdownload, ...) are ignored. A pass that
cannot run, for example because a subtitle has not arrived yet, is reported
and retried on the next change. Stop with Ctrl-C.`,
		Args: requireDirectory,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.setup(cmd)
			if err != nil {
				return err
			}

			cfg := watcher.Config{
				Debounce:        time.Duration(s.cfg.Watch.DebounceMS) * time.Millisecond,
				StableThreshold: time.Duration(s.cfg.Watch.StableMS) * time.Millisecond,
				IgnorePatterns:  s.cfg.Watch.IgnorePatterns,
				InitialPass:     !noInitial,
			}
			if cmd.Flags().Changed("debounce") {
				if debounce <= 0 {
					return usageError(errors.New("--debounce must be positive"))
				}
				cfg.Debounce = debounce
			}
			if cmd.Flags().Changed("stable") {
				if stable < 0 {
					return usageError(errors.New("--stable must not be negative"))
				}
				cfg.StableThreshold = stable
			}

			orch := orchestrator.New(s.orchestratorOptions(args, flags.dryRun), s.logger)
			pass := func(ctx context.Context) error {
				summary, err := orch.Run(ctx)
				if err != nil {
					if ctx.Err() == nil {
						s.out.Status(output.LabelWatch, "pass skipped: %v", explain(err))
					}
					return err
				}
				report(s.out, summary)
				return nil
			}

			s.out.Status(output.LabelWatch, "watching %s (Ctrl-C to stop)", args[0])
			summary, err := watcher.New(args[0], cfg, pass, s.logger).Run(cmd.Context())
			if err != nil {
				return err
			}
			s.out.Status(output.LabelWatch, "stopped after %d pass(es), %d skipped", summary.Passes, summary.FailedPasses)
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 0, "Quiet period before a pass (default from config, 2s)")
	cmd.Flags().DurationVar(&stable, "stable", 0, "How long a file size must stay unchanged (default from config, 1s; 0 disables)")
	cmd.Flags().BoolVar(&noInitial, "no-initial-pass", false, "Wait for the first change instead of renaming immediately")

	return cmd
}

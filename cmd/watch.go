package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/adam-gaia/checklints/internal/core"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [PROJECT_DIR]",
		Short: "Re-run the audit whenever the project or its checklists change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			logger := a.newLogger(cmd.ErrOrStderr())
			ctx := cmd.Context()

			return core.WatchProject(ctx, core.WatchOptions{
				Root:     dir,
				Extra:    a.opts.checks,
				Debounce: debounce,
				Logger:   logger,
			}, func() error {
				code := a.audit(ctx, cmd, dir)
				logger.Debug("audit finished", "exit", code)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", core.DefaultDebounce, "quiet period before re-running after a change")
	return cmd
}

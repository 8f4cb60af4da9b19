// Package cmd wires the checklints command line onto the core engine.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/adam-gaia/checklints/internal/core"
	"github.com/adam-gaia/checklints/internal/tui"
	"github.com/adam-gaia/checklints/internal/types"
	"github.com/adam-gaia/checklints/internal/version"
)

// dirs are the per-user locations checklints reads from and writes to.
type dirs struct {
	config string
	cache  string
}

func defaultDirs() dirs {
	return dirs{
		config: filepath.Join(xdg.ConfigHome, core.AppName),
		cache:  filepath.Join(xdg.CacheHome, core.AppName),
	}
}

// rootOptions holds the flags shared by the audit and watch commands.
type rootOptions struct {
	verbose bool
	checks  []string

	noReadCache      bool
	noWriteCache     bool
	noCache          bool
	clearCache       bool
	noUserChecklists bool
	failFast         bool

	externalChecklists []string
	externalTemplates  []string

	json  bool
	quiet bool
	yes   bool
}

// app carries state between cobra's flag parsing and the run functions.
type app struct {
	opts rootOptions
	dirs dirs

	// ui overrides terminal detection when set
	ui core.UICallback
}

// exitCodeError ends a command with a specific exit status. The command
// has already reported whatever caused it.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute runs the command line and returns the process exit status.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, newRootCmd(&app{dirs: defaultDirs()}), os.Args[1:])
}

func run(ctx context.Context, root *cobra.Command, args []string) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)

	var exit *exitCodeError
	switch {
	case err == nil:
		return core.ExitSuccess
	case errors.As(err, &exit):
		return exit.code
	default:
		tui.FprintError(root.ErrOrStderr(), "checklints", err.Error())
		return core.ExitFatal
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "checklints [PROJECT_DIR]",
		Short: "Audit a project against declarative checklists",
		Long: `checklints evaluates the checklists found in a project, in the user's
config directory, and at external URLs. Results are cached by content
hash, so unchanged checks are not re-run.`,
		Version:       version.GetVersion(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			if code := a.audit(cmd.Context(), cmd, dir); code != core.ExitSuccess {
				return &exitCodeError{code: code}
			}
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	f := root.PersistentFlags()
	f.BoolVarP(&a.opts.verbose, "verbose", "v", false, "enable debug logging")
	f.StringSliceVar(&a.opts.checks, "check", nil, "additional checklist file or directory (repeatable)")
	f.BoolVar(&a.opts.noReadCache, "no-read-cache", false, "ignore cached results")
	f.BoolVar(&a.opts.noWriteCache, "no-write-cache", false, "do not record results")
	f.BoolVar(&a.opts.noCache, "no-cache", false, "neither read nor write the cache")
	f.BoolVar(&a.opts.clearCache, "clear-cache", false, "wipe the project's cache before running")
	f.BoolVar(&a.opts.noUserChecklists, "no-user-checklists", false, "skip checklists from the user config directory")
	f.BoolVar(&a.opts.failFast, "fail-fast", false, "stop at the first failing check")
	f.StringSliceVar(&a.opts.externalChecklists, "external-checklist", nil, "checklist URL, optionally pinned with ::<sha256> (repeatable)")
	f.StringSliceVar(&a.opts.externalTemplates, "external-template", nil, "template URL, optionally pinned with ::<sha256> (repeatable)")
	f.BoolVar(&a.opts.json, "json", false, "print the report as JSON")
	f.BoolVarP(&a.opts.quiet, "quiet", "q", false, "only report checks that did not pass")
	f.BoolVarP(&a.opts.yes, "yes", "y", false, "accept unpinned external resources without asking")

	root.AddCommand(newCompletionCmd())
	root.AddCommand(newVersionCmd())
	root.AddCommand(newWatchCmd(a))
	return root
}

// projectDir returns the audited directory: the argument, or the working directory.
func projectDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// audit performs one complete run and reports it. It returns the exit status.
func (a *app) audit(ctx context.Context, cmd *cobra.Command, dir string) int {
	out := cmd.OutOrStdout()
	runID := uuid.New().String()

	statuses, err := a.runChecks(ctx, dir, runID, cmd.ErrOrStderr())
	if err != nil {
		if a.opts.json {
			_ = core.NewErrorReport(runID, err).Write(out)
		} else {
			tui.FprintError(cmd.ErrOrStderr(), "Audit failed", err.Error())
		}
		return core.ExitFatal
	}

	if a.opts.json {
		if err := core.NewRunReport(runID, statuses).Write(out); err != nil {
			tui.FprintError(cmd.ErrOrStderr(), "Failed to write report", err.Error())
			return core.ExitFatal
		}
	} else {
		tui.PrintStatuses(out, statuses, a.opts.quiet)
	}
	return statuses.ExitCode()
}

func (a *app) runChecks(ctx context.Context, dir, runID string, logOut io.Writer) (*types.Statuses, error) {
	logger := a.newLogger(logOut)
	fs := core.NewOSFileSystem()

	store := core.NewSettingsStore(fs, a.dirs.config)
	if err := store.EnsureDefault(); err != nil {
		return nil, err
	}
	settings, err := core.LoadSettings(store, a.opts.settingsLayer())
	if err != nil {
		return nil, err
	}

	project, err := core.NewProject(ctx, core.ProjectOptions{
		Root:             dir,
		Settings:         settings,
		UserChecklistDir: filepath.Join(a.dirs.config, core.UserChecklistsDir),
		UserTemplateDir:  filepath.Join(a.dirs.config, core.UserTemplatesDir),
		CacheDir:         a.dirs.cache,
		Extra:            a.opts.checks,
		FS:               fs,
		UI:               a.newUI(),
		Logger:           logger,
		RunID:            runID,
	})
	if err != nil {
		return nil, err
	}
	return project.RunChecks()
}

func (a *app) newLogger(w io.Writer) *log.Logger {
	level := log.InfoLevel
	if a.opts.verbose {
		level = log.DebugLevel
	} else if a.opts.json || a.opts.quiet {
		level = log.WarnLevel
	}
	return log.NewWithOptions(w, log.Options{Prefix: core.AppName, Level: level})
}

func (a *app) newUI() core.UICallback {
	if a.ui != nil {
		return a.ui
	}
	mode := a.opts.outputMode()
	if mode == core.OutputNormal && !a.opts.yes && isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		return tui.NewTUICallback()
	}
	return tui.NewNonInteractiveTUICallback(core.NonInteractiveFlags{Yes: a.opts.yes, Mode: mode})
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (o rootOptions) outputMode() core.OutputMode {
	switch {
	case o.json:
		return core.OutputJSON
	case o.quiet:
		return core.OutputQuiet
	default:
		return core.OutputNormal
	}
}

// settingsLayer turns the flags into the top settings layer. Flags only
// ever switch behavior on, so an unset flag leaves lower layers alone.
func (o rootOptions) settingsLayer() core.MaybeSettings {
	var layer core.MaybeSettings
	on := true
	off := false

	if o.noUserChecklists {
		layer.UserChecklists = &off
	}
	if o.failFast {
		layer.FailFast = &on
	}
	if o.noReadCache {
		layer.NoReadCache = &on
	}
	if o.noWriteCache {
		layer.NoWriteCache = &on
	}
	if o.noCache {
		layer.NoCache = &on
	}
	if o.clearCache {
		layer.ClearCache = &on
	}
	if len(o.externalChecklists) > 0 {
		layer.ExternalChecklists = o.externalChecklists
	}
	if len(o.externalTemplates) > 0 {
		layer.ExternalTemplates = o.externalTemplates
	}
	return layer
}

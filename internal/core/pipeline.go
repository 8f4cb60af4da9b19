package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/kballard/go-shellquote"
)

// CommandOutput is the captured result of the final pipeline stage.
type CommandOutput struct {
	ExitCode int
	Stdout   string // Trimmed
	Stderr   string // Trimmed
}

// Success reports whether the final stage exited with code 0.
func (o *CommandOutput) Success() bool { return o.ExitCode == 0 }

// CommandRunner runs pipe-chained commands without a shell
//
//go:generate mockgen -source=pipeline.go -destination=command_runner_mock_test.go -package=core
type CommandRunner interface {
	// Run parses and executes a command string such as "git log | head -n1"
	Run(ctx context.Context, command string, extraEnv []string) (*CommandOutput, error)
}

// Pipeline is a parsed command chain, one argument vector per stage.
type Pipeline struct {
	Stages [][]string
}

// ParsePipeline splits a command string on unquoted, unescaped '|' and
// word-splits each stage honoring shell quoting rules.
func ParsePipeline(command string) (*Pipeline, error) {
	segments := splitPipes(command)
	p := &Pipeline{Stages: make([][]string, 0, len(segments))}
	for i, seg := range segments {
		words, err := shellquote.Split(seg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stage %d of %q: %w", i+1, command, err)
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("stage %d of %q: %w", i+1, command, ErrEmptyPipeline)
		}
		p.Stages = append(p.Stages, words)
	}
	return p, nil
}

// splitPipes cuts s at every '|' outside quotes and not preceded by a
// backslash. Quotes and escapes are left in place for word splitting.
func splitPipes(s string) []string {
	var (
		segments []string
		current  strings.Builder
		single   bool
		double   bool
		escaped  bool
	)
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && !single:
			escaped = true
		case r == '\'' && !double:
			single = !single
		case r == '"' && !single:
			double = !double
		case r == '|' && !single && !double:
			segments = append(segments, current.String())
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	return append(segments, current.String())
}

// PipelineExecutor implements CommandRunner by spawning real OS processes
// connected with os.Pipe.
type PipelineExecutor struct {
	dir      string
	logger   *log.Logger
	lookPath func(string) (string, error)
}

// NewPipelineExecutor creates an executor whose stages run in dir.
func NewPipelineExecutor(dir string, logger *log.Logger) *PipelineExecutor {
	if logger == nil {
		logger = log.Default()
	}
	return &PipelineExecutor{
		dir:      dir,
		logger:   logger,
		lookPath: exec.LookPath,
	}
}

// Run parses command and executes it. See Pipeline.Run.
func (e *PipelineExecutor) Run(ctx context.Context, command string, extraEnv []string) (*CommandOutput, error) {
	p, err := ParsePipeline(command)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("running pipeline", "cmd", command, "stages", len(p.Stages))
	return e.execute(ctx, p, extraEnv)
}

// Run executes the pipeline in the current directory with the default logger.
func (p *Pipeline) Run(ctx context.Context, extraEnv []string) (*CommandOutput, error) {
	return NewPipelineExecutor("", nil).execute(ctx, p, extraEnv)
}

// executable anchors a relative name such as ./scripts/ver.sh to the
// executor's directory. Bare names are left for PATH lookup.
func (e *PipelineExecutor) executable(name string) string {
	if e.dir == "" || filepath.IsAbs(name) || !strings.ContainsAny(name, `/`+string(filepath.Separator)) {
		return name
	}
	return filepath.Join(e.dir, name)
}

func (e *PipelineExecutor) execute(ctx context.Context, p *Pipeline, extraEnv []string) (*CommandOutput, error) {
	if len(p.Stages) == 0 {
		return nil, ErrEmptyPipeline
	}

	// Every executable must resolve before anything is spawned.
	paths := make([]string, len(p.Stages))
	for i, stage := range p.Stages {
		path, err := e.lookPath(e.executable(stage[0]))
		if err != nil {
			return nil, &ExecutableNotFoundError{Name: stage[0], Cause: err}
		}
		paths[i] = path
	}

	env := mergeEnv(os.Environ(), extraEnv)

	cmds := make([]*exec.Cmd, len(p.Stages))
	for i, stage := range p.Stages {
		cmd := exec.CommandContext(ctx, paths[i], stage[1:]...)
		cmd.Args[0] = stage[0]
		cmd.Env = env
		cmd.Dir = e.dir
		cmds[i] = cmd
	}

	// Parent-side pipe ends, closed once the child holding them has started.
	var open []*os.File
	closeAll := func() {
		for _, f := range open {
			_ = f.Close()
		}
	}
	for i := 0; i < len(cmds)-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to create pipe: %w", err)
		}
		open = append(open, r, w)
		cmds[i].Stdout = w
		cmds[i].Stderr = os.Stderr
		cmds[i+1].Stdin = r
	}

	var stdout, stderr bytes.Buffer
	last := cmds[len(cmds)-1]
	last.Stdout = &stdout
	last.Stderr = &stderr

	for i, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			for _, started := range cmds[:i] {
				_ = started.Process.Kill()
			}
			closeAll()
			for _, started := range cmds[:i] {
				_ = started.Wait()
			}
			return nil, fmt.Errorf("failed to start %s: %w", p.Stages[i][0], err)
		}
		if f, ok := cmd.Stdout.(*os.File); ok {
			_ = f.Close()
		}
		if f, ok := cmd.Stdin.(*os.File); ok {
			_ = f.Close()
		}
	}

	waitErr := last.Wait()
	for _, cmd := range cmds[:len(cmds)-1] {
		_ = cmd.Wait()
	}

	out := &CommandOutput{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("failed to run %s: %w", p.Stages[len(p.Stages)-1][0], waitErr)
		}
		out.ExitCode = exitErr.ExitCode()
	}
	e.logger.Debug("pipeline finished", "code", out.ExitCode, "stdout_bytes", len(out.Stdout))
	return out, nil
}

// mergeEnv appends extra KEY=value pairs, sorted, after base.
func mergeEnv(base, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	sorted := append([]string(nil), extra...)
	sort.Strings(sorted)
	env := make([]string, 0, len(base)+len(sorted))
	env = append(env, base...)
	return append(env, sorted...)
}

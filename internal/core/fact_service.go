package core

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/adam-gaia/checklints/internal/types"
)

// FactResolver computes fact values and accumulates them into a facts map.
// Any failure is a FactError and aborts the run.
type FactResolver struct {
	runner    CommandRunner
	checks    *CheckEvaluator
	logger    *log.Logger
	lookupEnv func(string) (string, bool)
}

// NewFactResolver creates a FactResolver. Requirements are evaluated with checks.
func NewFactResolver(runner CommandRunner, checks *CheckEvaluator, logger *log.Logger) *FactResolver {
	if logger == nil {
		logger = log.Default()
	}
	return &FactResolver{
		runner:    runner,
		checks:    checks,
		logger:    logger,
		lookupEnv: os.LookupEnv,
	}
}

// ResolveChecklist resolves every fact of a checklist in declaration order,
// inserting each into facts before the next is computed.
func (r *FactResolver) ResolveChecklist(ctx context.Context, cl *types.Checklist, facts *types.Facts) error {
	for _, fact := range cl.Facts {
		value, err := r.Resolve(ctx, cl, fact, facts)
		if err != nil {
			return err
		}
		facts.Set(fact.Key, value)
		r.logger.Debug("resolved fact", "key", fact.Key, "checklist", cl.Path)
	}
	return nil
}

// Resolve computes a single fact's value given the facts resolved so far.
func (r *FactResolver) Resolve(ctx context.Context, cl *types.Checklist, fact types.Fact, facts *types.Facts) (string, error) {
	for _, req := range fact.Requirements {
		if st := r.checks.EvaluateRequirement(req); !st.IsPass() {
			return "", NewFactError(fact.Key, cl.Path, fmt.Sprintf("requirement failed (%s)", req.Describe()), nil)
		}
	}

	switch fact.Source {
	case types.FactLiteral:
		return fact.Value, nil

	case types.FactEnvVar:
		value, ok := r.lookupEnv(fact.EnvName())
		if !ok {
			return "", NewFactError(fact.Key, cl.Path, fmt.Sprintf("environment variable '%s' is not set", fact.EnvName()), nil)
		}
		return value, nil

	case types.FactEvalCommand:
		out, err := r.runner.Run(ctx, fact.Command, facts.Env())
		if err != nil {
			return "", NewFactError(fact.Key, cl.Path, fmt.Sprintf("command '%s' failed", fact.Command), err)
		}
		if !out.Success() {
			reason := fmt.Sprintf("command '%s' exited with code %d", fact.Command, out.ExitCode)
			if out.Stderr != "" {
				reason += ": " + out.Stderr
			}
			return "", NewFactError(fact.Key, cl.Path, reason, nil)
		}
		if out.Stdout == "" {
			return "", NewFactError(fact.Key, cl.Path, fmt.Sprintf("command '%s'", fact.Command), ErrEmptyFactOutput)
		}
		return out.Stdout, nil
	}

	return "", NewFactError(fact.Key, cl.Path, fmt.Sprintf("unknown fact type %q", fact.Source), nil)
}

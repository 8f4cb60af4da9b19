package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FactSource selects where a Fact's value comes from.
type FactSource string

// FactSource constants.
const (
	FactEvalCommand FactSource = "eval-command"
	FactLiteral     FactSource = "literal"
	FactEnvVar      FactSource = "env-var"
)

// Fact is a named value computed once and visible to everything evaluated after it.
type Fact struct {
	Key          string        `yaml:"key"`
	Source       FactSource    `yaml:"type"`
	Command      string        `yaml:"command,omitempty"`
	Value        string        `yaml:"value,omitempty"`
	Var          string        `yaml:"var,omitempty"` // env-var only; defaults to Key
	Requirements []Requirement `yaml:"requires,omitempty"`
}

// UnmarshalYAML decodes and validates a fact block.
func (f *Fact) UnmarshalYAML(node *yaml.Node) error {
	type plain Fact
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	if p.Key == "" {
		return fmt.Errorf("line %d: fact requires 'key'", node.Line)
	}
	switch p.Source {
	case FactEvalCommand:
		if p.Command == "" {
			return fmt.Errorf("line %d: eval-command fact %q requires 'command'", node.Line, p.Key)
		}
	case FactLiteral, FactEnvVar:
	default:
		return fmt.Errorf("line %d: unknown fact type %q", node.Line, p.Source)
	}
	*f = Fact(p)
	return nil
}

// EnvName returns the environment variable an env-var fact reads.
func (f Fact) EnvName() string {
	if f.Var != "" {
		return f.Var
	}
	return f.Key
}

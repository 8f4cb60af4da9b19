package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// RequirementKind selects what a Requirement asserts.
type RequirementKind string

// RequirementKind constants.
const (
	RequireCommand RequirementKind = "command" // Executable must resolve on PATH
	RequireEnv     RequirementKind = "env"     // Environment variable must be set
)

// Requirement is a hard precondition gating a Fact or a Check.
type Requirement struct {
	Kind    RequirementKind `yaml:"type" json:"type"`
	Command string          `yaml:"command,omitempty" json:"command,omitempty"`
	Key     string          `yaml:"key,omitempty" json:"key,omitempty"`
}

// UnmarshalYAML decodes and validates a requirement block.
func (r *Requirement) UnmarshalYAML(node *yaml.Node) error {
	type plain Requirement
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	switch p.Kind {
	case RequireCommand:
		if p.Command == "" {
			return fmt.Errorf("line %d: command requirement requires 'command'", node.Line)
		}
	case RequireEnv:
		if p.Key == "" {
			return fmt.Errorf("line %d: env requirement requires 'key'", node.Line)
		}
	default:
		return fmt.Errorf("line %d: unknown requirement type %q", node.Line, p.Kind)
	}
	*r = Requirement(p)
	return nil
}

// Describe returns a short human-readable form of the requirement.
func (r Requirement) Describe() string {
	if r.Kind == RequireCommand {
		return fmt.Sprintf("command '%s' must be available", r.Command)
	}
	return fmt.Sprintf("env var '%s' must be set", r.Key)
}

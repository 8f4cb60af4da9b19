package types

import (
	"encoding/json"
)

// StatusKind is the outcome class of an evaluation.
type StatusKind string

// StatusKind constants.
const (
	StatusPass StatusKind = "pass"
	StatusSkip StatusKind = "skip"
	StatusFail StatusKind = "fail"
)

// Reason explains a Skip or Fail.
type Reason struct {
	Main      string `json:"main"`
	Secondary string `json:"secondary,omitempty"` // Usually a diff
}

// Status is the outcome of evaluating a check, condition, or requirement.
type Status struct {
	Kind   StatusKind `json:"kind"`
	Reason *Reason    `json:"reason,omitempty"`
	Cached bool       `json:"cached"` // Served from the result cache
}

// Pass returns a passing status.
func Pass() Status {
	return Status{Kind: StatusPass}
}

// Skip returns a skipped status with the given reason.
func Skip(main, secondary string) Status {
	return Status{Kind: StatusSkip, Reason: &Reason{Main: main, Secondary: secondary}}
}

// Fail returns a failing status with the given reason.
func Fail(main, secondary string) Status {
	return Status{Kind: StatusFail, Reason: &Reason{Main: main, Secondary: secondary}}
}

// IsPass reports whether the status is a Pass.
func (s Status) IsPass() bool { return s.Kind == StatusPass }

// IsFail reports whether the status is a Fail.
func (s Status) IsFail() bool { return s.Kind == StatusFail }

// IsSkip reports whether the status is a Skip.
func (s Status) IsSkip() bool { return s.Kind == StatusSkip }

// MarkCached returns a copy of the status flagged as cache-eligible.
func (s Status) MarkCached() Status {
	s.Cached = true
	return s
}

// CheckResult pairs a check description with its status.
type CheckResult struct {
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// ChecklistResult is every result recorded for one checklist, in declaration order.
type ChecklistResult struct {
	Checklist string        `json:"checklist"`
	Checks    []CheckResult `json:"checks"`
}

// StatusCounts tallies statuses by kind.
type StatusCounts struct {
	Pass   int `json:"pass"`
	Skip   int `json:"skip"`
	Fail   int `json:"fail"`
	Cached int `json:"cached"`
}

// Statuses aggregates results keyed by checklist path then check description,
// preserving insertion order at both levels.
type Statuses struct {
	order []string
	lists map[string]*ChecklistResult
}

// NewStatuses returns an empty aggregate.
func NewStatuses() *Statuses {
	return &Statuses{lists: make(map[string]*ChecklistResult)}
}

// Insert records a status. A repeated description within a checklist replaces
// the earlier status in place.
func (s *Statuses) Insert(checklist, description string, status Status) {
	cl, ok := s.lists[checklist]
	if !ok {
		cl = &ChecklistResult{Checklist: checklist}
		s.lists[checklist] = cl
		s.order = append(s.order, checklist)
	}
	for i := range cl.Checks {
		if cl.Checks[i].Description == description {
			cl.Checks[i].Status = status
			return
		}
	}
	cl.Checks = append(cl.Checks, CheckResult{Description: description, Status: status})
}

// Get returns the status recorded for a check.
func (s *Statuses) Get(checklist, description string) (Status, bool) {
	cl, ok := s.lists[checklist]
	if !ok {
		return Status{}, false
	}
	for _, r := range cl.Checks {
		if r.Description == description {
			return r.Status, true
		}
	}
	return Status{}, false
}

// Checklists returns per-checklist results in insertion order.
func (s *Statuses) Checklists() []ChecklistResult {
	out := make([]ChecklistResult, 0, len(s.order))
	for _, path := range s.order {
		out = append(out, *s.lists[path])
	}
	return out
}

// Len returns the total number of recorded statuses.
func (s *Statuses) Len() int {
	n := 0
	for _, cl := range s.lists {
		n += len(cl.Checks)
	}
	return n
}

// Counts tallies the recorded statuses.
func (s *Statuses) Counts() StatusCounts {
	var c StatusCounts
	for _, cl := range s.lists {
		for _, r := range cl.Checks {
			switch r.Status.Kind {
			case StatusPass:
				c.Pass++
			case StatusSkip:
				c.Skip++
			case StatusFail:
				c.Fail++
			}
			if r.Status.Cached {
				c.Cached++
			}
		}
	}
	return c
}

// ExitCode returns 0 when every recorded status is a Pass, 1 otherwise.
func (s *Statuses) ExitCode() int {
	for _, cl := range s.lists {
		for _, r := range cl.Checks {
			if !r.Status.IsPass() {
				return 1
			}
		}
	}
	return 0
}

// MarshalJSON encodes the aggregate as an ordered list of checklists.
func (s *Statuses) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Checklists())
}

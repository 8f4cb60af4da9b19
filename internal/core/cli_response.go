package core

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/adam-gaia/checklints/internal/types"
)

// CLI exit codes.
const (
	ExitSuccess    = 0 // Every check passed
	ExitChecksFail = 1 // At least one check did not pass
	ExitFatal      = 2 // The run could not complete
)

// CLI error codes for structured JSON error responses.
const (
	ErrCodeChecklist   = "INVALID_CHECKLIST"
	ErrCodeSettings    = "CONFIG_ERROR"
	ErrCodeFact        = "FACT_FAILED"
	ErrCodeNetwork     = "NETWORK_ERROR"
	ErrCodeIntegrity   = "INTEGRITY_ERROR"
	ErrCodeNoUserDir   = "USER_CHECKLISTS_MISSING"
	ErrCodeInternalErr = "INTERNAL_ERROR"
)

// RunReport is the JSON document emitted by --json.
//
// Schema:
//
//	{
//	  "run_id": "...",
//	  "success": true|false,
//	  "exit_code": 0|1|2,
//	  "counts": { "pass": n, "skip": n, "fail": n, "cached": n },
//	  "checklists": [ ... ],   // omitted on error
//	  "error": {                // present only on a fatal error
//	    "code": "FACT_FAILED",
//	    "message": "Human-readable description"
//	  }
//	}
type RunReport struct {
	RunID      string              `json:"run_id"`
	Success    bool                `json:"success"`
	ExitCode   int                 `json:"exit_code"`
	Counts     *types.StatusCounts `json:"counts,omitempty"`
	Checklists *types.Statuses     `json:"checklists,omitempty"`
	Error      *CLIErrorDetail     `json:"error,omitempty"`
}

// CLIErrorDetail contains machine-readable error code and human-readable message.
type CLIErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewRunReport builds the report for a completed run.
func NewRunReport(runID string, statuses *types.Statuses) RunReport {
	counts := statuses.Counts()
	code := statuses.ExitCode()
	return RunReport{
		RunID:      runID,
		Success:    code == ExitSuccess,
		ExitCode:   code,
		Counts:     &counts,
		Checklists: statuses,
	}
}

// NewErrorReport builds the report for a run aborted by err.
func NewErrorReport(runID string, err error) RunReport {
	return RunReport{
		RunID:    runID,
		ExitCode: ExitFatal,
		Error:    &CLIErrorDetail{Code: CLIErrorCodeForError(err), Message: err.Error()},
	}
}

// Write encodes the report as indented JSON.
func (r RunReport) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// CLIErrorCodeForError maps structured error types to CLI error code strings.
func CLIErrorCodeForError(err error) string {
	switch {
	case IsChecklistError(err):
		return ErrCodeChecklist
	case IsSettingsError(err):
		return ErrCodeSettings
	case IsFactError(err):
		return ErrCodeFact
	case IsIntegrityError(err):
		return ErrCodeIntegrity
	case IsFetchError(err):
		return ErrCodeNetwork
	case errors.Is(err, ErrUserChecklistsMissing):
		return ErrCodeNoUserDir
	default:
		return ErrCodeInternalErr
	}
}

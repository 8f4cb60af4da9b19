package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adam-gaia/checklints/internal/types"
)

// Sentinel errors for common error conditions.
// These can be used with errors.Is() for error type checking.
var (
	// ErrUserChecklistsMissing indicates user checklists are enabled but the directory is absent
	ErrUserChecklistsMissing = errors.New("user checklist directory not found")

	// ErrEmptyPipeline indicates a pipeline string had no commands or an empty stage
	ErrEmptyPipeline = errors.New("empty command in pipeline")

	// ErrEmptyFactOutput indicates a fact command succeeded but printed nothing
	ErrEmptyFactOutput = errors.New("fact command produced no output")

	// ErrNotImplemented is matched by NotImplementedError via errors.Is
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnpinnedRejected indicates the user declined an unpinned external resource
	ErrUnpinnedRejected = errors.New("unpinned external resource rejected")
)

// Error message templates for formatted errors.
// Use with fmt.Errorf() to create errors with context.
const (
	// ErrReadChecklistMsg is the message for unreadable checklist files
	ErrReadChecklistMsg = "failed to read checklist %s: %w"

	// ErrCacheLoadMsg is the message for unreadable cache tables
	ErrCacheLoadMsg = "failed to load cache table %s: %w"
)

// formatError renders the three-part Error/Context/Fix message.
func formatError(msg, context, fix string) string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(msg)
	if context != "" {
		b.WriteString("\nContext: ")
		b.WriteString(context)
	}
	if fix != "" {
		b.WriteString("\nFix: ")
		b.WriteString(fix)
	}
	return b.String()
}

// =============================================================================
// NotImplementedError
// =============================================================================

// NotImplementedError reports a check variant whose evaluation is not available.
type NotImplementedError struct {
	Kind types.CheckKind
}

// NewNotImplementedError creates a NotImplementedError for a check kind.
func NewNotImplementedError(kind types.CheckKind) *NotImplementedError {
	return &NotImplementedError{Kind: kind}
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s checks are not implemented", e.Kind)
}

// Is matches ErrNotImplemented.
func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}

// IsNotImplemented reports whether err is a NotImplementedError.
func IsNotImplemented(err error) bool {
	var target *NotImplementedError
	return errors.As(err, &target)
}

// =============================================================================
// FactError
// =============================================================================

// FactError reports a fact that could not be computed. It aborts the run.
type FactError struct {
	Key       string
	Checklist string
	Reason    string
	Cause     error
}

// NewFactError creates a FactError.
func NewFactError(key, checklist, reason string, cause error) *FactError {
	return &FactError{Key: key, Checklist: checklist, Reason: reason, Cause: cause}
}

func (e *FactError) Error() string {
	msg := fmt.Sprintf("fact '%s' could not be resolved: %s", e.Key, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return formatError(msg,
		fmt.Sprintf("Declared in %s", e.Checklist),
		"Install the required tools or set the required environment, then re-run")
}

func (e *FactError) Unwrap() error { return e.Cause }

// IsFactError reports whether err is a FactError.
func IsFactError(err error) bool {
	var target *FactError
	return errors.As(err, &target)
}

// =============================================================================
// IntegrityError
// =============================================================================

// IntegrityError reports fetched content whose hash does not match its pin.
type IntegrityError struct {
	URL      string
	Expected string
	Actual   string
}

// NewIntegrityError creates an IntegrityError.
func NewIntegrityError(url, expected, actual string) *IntegrityError {
	return &IntegrityError{URL: url, Expected: expected, Actual: actual}
}

func (e *IntegrityError) Error() string {
	return formatError(
		fmt.Sprintf("content fetched from %s does not match its pinned hash", e.URL),
		fmt.Sprintf("Expected %s, got %s", e.Expected, e.Actual),
		"Verify the remote content and update the '::<hash>' pin")
}

// IsIntegrityError reports whether err is an IntegrityError.
func IsIntegrityError(err error) bool {
	var target *IntegrityError
	return errors.As(err, &target)
}

// =============================================================================
// FetchError
// =============================================================================

// FetchError reports a failed download of an external resource.
type FetchError struct {
	URL        string
	StatusCode int // 0 when the request never completed
	Cause      error
}

// NewFetchError creates a FetchError.
func NewFetchError(url string, statusCode int, cause error) *FetchError {
	return &FetchError{URL: url, StatusCode: statusCode, Cause: cause}
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("failed to fetch %s", e.URL)
	switch {
	case e.StatusCode != 0:
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	case e.Cause != nil:
		msg += ": " + e.Cause.Error()
	}
	return formatError(msg, "", "Check the URL and your network connection")
}

func (e *FetchError) Unwrap() error { return e.Cause }

// IsFetchError reports whether err is a FetchError.
func IsFetchError(err error) bool {
	var target *FetchError
	return errors.As(err, &target)
}

// =============================================================================
// ExecutableNotFoundError
// =============================================================================

// ExecutableNotFoundError reports a pipeline stage whose program is not on PATH.
type ExecutableNotFoundError struct {
	Name  string
	Cause error
}

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("executable '%s' not found: %v", e.Name, e.Cause)
}

func (e *ExecutableNotFoundError) Unwrap() error { return e.Cause }

// IsExecutableNotFound reports whether err is an ExecutableNotFoundError.
func IsExecutableNotFound(err error) bool {
	var target *ExecutableNotFoundError
	return errors.As(err, &target)
}

// =============================================================================
// SettingsError
// =============================================================================

// SettingsError reports a required setting left unset after layering.
type SettingsError struct {
	Field string
}

func (e *SettingsError) Error() string {
	return formatError(
		fmt.Sprintf("setting '%s' is not set", e.Field),
		"No default, config file, environment, or flag provided a value",
		fmt.Sprintf("Set '%s' in the config file or via %s%s", e.Field, EnvPrefix, strings.ToUpper(e.Field)))
}

// IsSettingsError reports whether err is a SettingsError.
func IsSettingsError(err error) bool {
	var target *SettingsError
	return errors.As(err, &target)
}

// =============================================================================
// ChecklistError
// =============================================================================

// ChecklistError reports a checklist file that could not be loaded.
type ChecklistError struct {
	Path  string
	Cause error
}

// NewChecklistError creates a ChecklistError.
func NewChecklistError(path string, cause error) *ChecklistError {
	return &ChecklistError{Path: path, Cause: cause}
}

func (e *ChecklistError) Error() string {
	context := ""
	if e.Cause != nil {
		context = e.Cause.Error()
	}
	return formatError(fmt.Sprintf("invalid checklist %s", e.Path), context, "Fix the checklist file and re-run")
}

func (e *ChecklistError) Unwrap() error { return e.Cause }

// IsChecklistError reports whether err is a ChecklistError.
func IsChecklistError(err error) bool {
	var target *ChecklistError
	return errors.As(err, &target)
}

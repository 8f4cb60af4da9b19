package core

// OutputMode selects how a run reports to the user.
type OutputMode int

const (
	OutputNormal OutputMode = iota // styled report with progress
	OutputQuiet                    // non-passing checks and the summary
	OutputJSON                     // RunReport document on stdout
)

func (m OutputMode) String() string {
	switch m {
	case OutputQuiet:
		return "quiet"
	case OutputJSON:
		return "json"
	default:
		return "normal"
	}
}

// NonInteractiveFlags configure a UI that cannot prompt.
type NonInteractiveFlags struct {
	Yes  bool // Accept unpinned external resources without warning
	Mode OutputMode
}

// UICallback is how the engine reports to, and asks questions of, the user.
type UICallback interface {
	ShowError(title, message string)
	ShowWarning(title, message string)
	AskConfirmation(title, message string) bool
	StartProgress(total int, label string) ProgressTracker
	GetOutputMode() OutputMode
}

// ProgressTracker follows check evaluation. Exactly one of Complete or Fail
// ends it.
type ProgressTracker interface {
	Increment(message string)
	SetTotal(total int)
	Complete()
	Fail(err error)
}

// SilentUICallback shows nothing and approves every confirmation. Used by
// tests and library callers without a terminal.
type SilentUICallback struct{}

func (*SilentUICallback) ShowError(string, string)                  {}
func (*SilentUICallback) ShowWarning(string, string)                {}
func (*SilentUICallback) AskConfirmation(string, string) bool       { return true }
func (*SilentUICallback) GetOutputMode() OutputMode                 { return OutputQuiet }
func (*SilentUICallback) StartProgress(int, string) ProgressTracker { return noopProgress{} }

type noopProgress struct{}

func (noopProgress) Increment(string) {}
func (noopProgress) SetTotal(int)     {}
func (noopProgress) Complete()        {}
func (noopProgress) Fail(error)       {}

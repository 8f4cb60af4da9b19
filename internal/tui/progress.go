package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// barWidth is the width of the progress bar on wide terminals; it halves
// below narrowWidth columns.
const (
	barWidth    = 30
	narrowWidth = 80
)

type progressState int

const (
	progressRunning progressState = iota
	progressDone
	progressFailed
)

// progressModel renders "label [████░░░░] 3/10 current check" on one line.
type progressModel struct {
	label   string
	current int
	total   int
	message string
	width   int
	state   progressState
	err     error
}

// Messages sent by BubbleteaProgressTracker.
type (
	checkDoneMsg struct{ description string }
	setTotalMsg  struct{ total int }
	finishMsg    struct{ err error }
)

func (m *progressModel) Init() tea.Cmd {
	return nil
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case checkDoneMsg:
		m.current++
		m.message = msg.description
	case setTotalMsg:
		m.total = msg.total
	case finishMsg:
		m.state = progressDone
		if msg.err != nil {
			m.state = progressFailed
			m.err = msg.err
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *progressModel) View() string {
	switch m.state {
	case progressDone:
		return styleSuccess.Render(fmt.Sprintf("✔ %s: %d/%d", m.label, m.current, m.total)) + "\n"
	case progressFailed:
		return styleErr.Render(fmt.Sprintf("✖ %s failed: %v", m.label, m.err)) + "\n"
	}

	width := barWidth
	if m.width > 0 && m.width < narrowWidth {
		width = barWidth / 2
	}
	line := fmt.Sprintf("%s [%s] %d/%d", styleTitle.Render(m.label), renderBar(m.current, m.total, width), m.current, m.total)
	if m.message != "" {
		line += " " + styleDim.Render(truncate(m.message, m.width-len(m.label)-width-16))
	}
	return line
}

// renderBar draws done/total as a bar of the given width.
func renderBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// truncate shortens s to at most n runes. Non-positive n leaves s unchanged.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// BubbleteaProgressTracker renders progress with bubbletea on stderr.
type BubbleteaProgressTracker struct {
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

// NewBubbleteaProgressTracker starts rendering immediately. Call Complete
// or Fail to stop it.
func NewBubbleteaProgressTracker(total int, label string) *BubbleteaProgressTracker {
	m := &progressModel{total: total, label: label}
	t := &BubbleteaProgressTracker{
		program: tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithInput(nil)),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		_, _ = t.program.Run()
	}()
	return t
}

// Increment records one evaluated check.
func (t *BubbleteaProgressTracker) Increment(message string) {
	t.program.Send(checkDoneMsg{description: message})
}

// SetTotal changes the number of expected checks.
func (t *BubbleteaProgressTracker) SetTotal(total int) {
	t.program.Send(setTotalMsg{total: total})
}

// Complete renders the final line and waits for the program to exit.
func (t *BubbleteaProgressTracker) Complete() {
	t.finish(nil)
}

// Fail renders err and waits for the program to exit.
func (t *BubbleteaProgressTracker) Fail(err error) {
	if err == nil {
		err = fmt.Errorf("unknown error")
	}
	t.finish(err)
}

func (t *BubbleteaProgressTracker) finish(err error) {
	t.once.Do(func() {
		t.program.Send(finishMsg{err: err})
		<-t.done
	})
}

// TextProgressTracker writes one line per evaluated check. It is used when
// no terminal is attached.
type TextProgressTracker struct {
	w       io.Writer
	label   string
	current int
	total   int
}

// NewTextProgressTracker creates a text tracker writing to stderr.
func NewTextProgressTracker(total int, label string) *TextProgressTracker {
	return newTextProgressTracker(os.Stderr, total, label)
}

func newTextProgressTracker(w io.Writer, total int, label string) *TextProgressTracker {
	fmt.Fprintf(w, "%s: %d checks\n", label, total)
	return &TextProgressTracker{w: w, label: label, total: total}
}

// Increment writes "[n/total] message".
func (t *TextProgressTracker) Increment(message string) {
	t.current++
	line := fmt.Sprintf("  [%d/%d]", t.current, t.total)
	if message != "" {
		line += " " + message
	}
	fmt.Fprintln(t.w, line)
}

// SetTotal changes the number of expected checks.
func (t *TextProgressTracker) SetTotal(total int) {
	t.total = total
}

// Complete writes the final count.
func (t *TextProgressTracker) Complete() {
	fmt.Fprintf(t.w, "%s: done (%d/%d)\n", t.label, t.current, t.total)
}

// Fail writes err.
func (t *TextProgressTracker) Fail(err error) {
	fmt.Fprintf(t.w, "%s: failed: %v\n", t.label, err)
}

// NoOpProgressTracker discards progress. Used for quiet and JSON output.
type NoOpProgressTracker struct{}

// NewNoOpProgressTracker returns a tracker that discards everything.
func NewNoOpProgressTracker() *NoOpProgressTracker {
	return &NoOpProgressTracker{}
}

func (*NoOpProgressTracker) Increment(string) {}
func (*NoOpProgressTracker) SetTotal(int)     {}
func (*NoOpProgressTracker) Complete()        {}
func (*NoOpProgressTracker) Fail(error)       {}

package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"devmcp-agent/src/notify"
)

// maxLogLines bounds the output kept for the log viewport.
const maxLogLines = 2000

// ProgressMsg carries a build milestone.
type ProgressMsg notify.Progress

// LogMsg carries one log line.
type LogMsg notify.LogEntry

// CompletedMsg carries the build summary.
type CompletedMsg notify.Completion

// DoneMsg is sent when the orchestrator has returned.
type DoneMsg struct {
	Result string
}

// Model is the interactive build view: a status header, the streamed output in a
// scrollable viewport, and the final status once the build ends.
type Model struct {
	styles   *StyleConfig
	spinner  spinner.Model
	viewport viewport.Model
	cancel   context.CancelFunc

	lines    []string
	label    string
	fraction float64
	buildID  string

	completion *CompletedMsg
	done       bool
	width      int
}

// NewModel creates the build view. cancel is called when the user interrupts.
func NewModel(cancel context.CancelFunc) Model {
	styles := DefaultStyles()
	return Model{
		styles: styles,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Spinner)),
		),
		viewport: viewport.New(80, 20),
		cancel:   cancel,
		label:    "Starting...",
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(msg.Height-6, 3)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			if m.done {
				return m, tea.Quit
			}
			m.label = "Interrupting..."
			return m, nil
		case "q":
			if m.done {
				return m, tea.Quit
			}
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ProgressMsg:
		m.buildID = msg.BuildID
		m.label = msg.Label
		if msg.Total > 0 {
			m.fraction = msg.Fraction / msg.Total
		}
		return m, nil

	case LogMsg:
		m.buildID = msg.BuildID
		m.lines = append(m.lines, msg.Message)
		if len(m.lines) > maxLogLines {
			m.lines = m.lines[len(m.lines)-maxLogLines:]
		}
		m.refresh()
		return m, nil

	case CompletedMsg:
		m.completion = &msg
		return m, nil

	case DoneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) refresh() {
	m.viewport.SetContent(TruncateLines(strings.Join(m.lines, "\n"), m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	header := fmt.Sprintf("%s %s %s",
		m.spinner.View(),
		m.styles.TitleStyle().Render(fmt.Sprintf("%3.0f%%", m.fraction*100)),
		m.label,
	)
	if m.done {
		header = m.status()
	}

	footer := m.styles.MutedStyle().Render(m.buildID + "  ctrl+c: interrupt")
	return lipgloss.JoinVertical(lipgloss.Left,
		ansi.Truncate(header, m.width, "..."),
		m.styles.LogStyle().Render(m.viewport.View()),
		footer,
	)
}

func (m Model) status() string {
	if m.completion == nil || m.completion.ExitCode == nil {
		return m.styles.StatusStyle(1).Render("✗ Build could not run")
	}
	code := *m.completion.ExitCode
	if code == 0 {
		return m.styles.StatusStyle(0).Render("✓ Build succeeded")
	}
	return m.styles.StatusStyle(code).Render(fmt.Sprintf("✗ Build failed (exit code %d)", code))
}

// Sender delivers messages to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramObserver forwards build events to a bubbletea program.
type ProgramObserver struct {
	program Sender
}

// NewProgramObserver creates an observer sending to program.
func NewProgramObserver(program Sender) *ProgramObserver {
	return &ProgramObserver{program: program}
}

func (o *ProgramObserver) Progress(ctx context.Context, p notify.Progress) error {
	o.program.Send(ProgressMsg(p))
	return nil
}

func (o *ProgramObserver) Log(ctx context.Context, entry notify.LogEntry) error {
	o.program.Send(LogMsg(entry))
	return nil
}

func (o *ProgramObserver) Completed(ctx context.Context, c notify.Completion) error {
	o.program.Send(CompletedMsg(c))
	return nil
}

// RunInteractive runs build inside the interactive view rendered to out and
// returns its result. Interrupting the view cancels the context build receives.
func RunInteractive(ctx context.Context, out io.Writer, build func(ctx context.Context, observer notify.Observer) string) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewModel(cancel), tea.WithOutput(out))

	resultCh := make(chan string, 1)
	go func() {
		result := build(ctx, NewProgramObserver(program))
		resultCh <- result
		program.Send(DoneMsg{Result: result})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-resultCh
		return "", fmt.Errorf("build view: %w", err)
	}
	return <-resultCh, nil
}

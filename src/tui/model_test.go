package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"devmcp-agent/src/notify"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func TestModelTracksProgressAndLogs(t *testing.T) {
	m := NewModel(nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, ProgressMsg{BuildID: "b-1", Fraction: 0.5, Total: 1, Label: "[3/4] Build running..."})
	m, _ = update(t, m, LogMsg{BuildID: "b-1", Message: "[INFO] Compiling 12 source files"})

	if m.fraction != 0.5 || m.label != "[3/4] Build running..." {
		t.Errorf("fraction=%v label=%q", m.fraction, m.label)
	}
	view := m.View()
	for _, want := range []string{"50%", "[3/4] Build running...", "Compiling 12 source files", "b-1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelCapsLogLines(t *testing.T) {
	m := NewModel(nil)
	for i := 0; i < maxLogLines+10; i++ {
		m, _ = update(t, m, LogMsg{Message: "line"})
	}
	if len(m.lines) != maxLogLines {
		t.Errorf("kept %d lines, want %d", len(m.lines), maxLogLines)
	}
}

func TestModelDone(t *testing.T) {
	m := NewModel(nil)
	code := 0
	m, _ = update(t, m, CompletedMsg(notify.Completion{BuildID: "b-1", ExitCode: &code}))
	m, cmd := update(t, m, DoneMsg{Result: "ok\n"})

	if !m.done {
		t.Error("done = false after DoneMsg")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("DoneMsg should quit the program")
	}
	if !strings.Contains(m.View(), "Build succeeded") {
		t.Errorf("view = %q", m.View())
	}
}

func TestModelInterrupt(t *testing.T) {
	cancelled := false
	m := NewModel(func() { cancelled = true })

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !cancelled {
		t.Error("ctrl+c did not cancel the build")
	}
	if cmd != nil {
		t.Error("ctrl+c should wait for the build to stop before quitting")
	}
	if m.label != "Interrupting..." {
		t.Errorf("label = %q", m.label)
	}
}

type recordingSender struct {
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.msgs = append(r.msgs, msg)
}

func TestProgramObserver(t *testing.T) {
	sender := &recordingSender{}
	obs := NewProgramObserver(sender)

	obs.Progress(context.TODO(), notify.Progress{Label: "x"})
	obs.Log(context.TODO(), notify.LogEntry{Message: "y"})
	obs.Completed(context.TODO(), notify.Completion{BuildID: "z"})

	if len(sender.msgs) != 3 {
		t.Fatalf("sent %d messages, want 3", len(sender.msgs))
	}
	if _, ok := sender.msgs[0].(ProgressMsg); !ok {
		t.Errorf("first message is %T", sender.msgs[0])
	}
	if _, ok := sender.msgs[1].(LogMsg); !ok {
		t.Errorf("second message is %T", sender.msgs[1])
	}
	if _, ok := sender.msgs[2].(CompletedMsg); !ok {
		t.Errorf("third message is %T", sender.msgs[2])
	}
}

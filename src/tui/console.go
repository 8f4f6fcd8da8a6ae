package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"devmcp-agent/src/notify"
)

// ConsoleObserver prints build events as plain styled lines, for terminals where
// the interactive view is not wanted (pipes, CI logs).
type ConsoleObserver struct {
	mu     sync.Mutex
	out    io.Writer
	styles *StyleConfig
	width  int
}

// NewConsoleObserver writes to out, truncating lines to width columns (0 disables truncation).
func NewConsoleObserver(out io.Writer, width int) *ConsoleObserver {
	return &ConsoleObserver{out: out, styles: DefaultStyles(), width: width}
}

func (c *ConsoleObserver) Progress(ctx context.Context, p notify.Progress) error {
	pct := 0.0
	if p.Total > 0 {
		pct = p.Fraction / p.Total * 100
	}
	return c.println(c.styles.TitleStyle().Render(fmt.Sprintf("%3.0f%%", pct)) + " " + p.Label)
}

func (c *ConsoleObserver) Log(ctx context.Context, entry notify.LogEntry) error {
	if isMilestone(entry.Message) {
		return c.println(c.styles.MutedStyle().Render(entry.Message))
	}
	return c.println(entry.Message)
}

func (c *ConsoleObserver) Completed(ctx context.Context, done notify.Completion) error {
	if done.ExitCode == nil {
		if err := c.println(c.styles.StatusStyle(1).Render("✗ Build could not run") + " " + c.styles.MutedStyle().Render(done.BuildID)); err != nil {
			return err
		}
		if done.Error == "" {
			return nil
		}
		for _, line := range strings.Split(Wrap(done.Error, c.width), "\n") {
			if err := c.println(c.styles.MutedStyle().Render(line)); err != nil {
				return err
			}
		}
		return nil
	}
	status := "✓ Build succeeded"
	if *done.ExitCode != 0 {
		status = fmt.Sprintf("✗ Build failed (exit code %d)", *done.ExitCode)
	}
	return c.println(c.styles.StatusStyle(*done.ExitCode).Render(status) + " " + c.styles.MutedStyle().Render(done.BuildID))
}

func (c *ConsoleObserver) println(line string) error {
	if c.width > 0 {
		line = ansi.Truncate(line, c.width, "...")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, line)
	return err
}

// isMilestone reports whether a log line is one of the "[n/4] ..." build phase lines.
func isMilestone(message string) bool {
	return len(message) > 5 && message[0] == '[' && strings.HasPrefix(message[2:], "/4]")
}

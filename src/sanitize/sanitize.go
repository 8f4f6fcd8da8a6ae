// Package sanitize cleans captured build output for LLM consumption.
// Build tools colour their output when they think a terminal is attached; those
// escape sequences are noise in a sampling prompt and are removed here.
package sanitize

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes ANSI escape sequences (SGR colours, cursor movement, OSC
// hyperlinks) from s.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// ForPrompt prepares captured output for a sampling request: escape sequences
// are stripped and carriage-return progress redraws collapse to their final state.
func ForPrompt(s string) string {
	s = StripANSI(s)
	if !strings.Contains(s, "\r") {
		return s
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if idx := strings.LastIndex(line, "\r"); idx >= 0 {
			line = line[idx+1:]
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

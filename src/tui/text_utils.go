package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// VisualWidth returns the display width of text, accounting for multi-byte characters
func VisualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to maxLen columns, ending in "..." when ellipsis is set.
// Tabs are expanded first so wide build output lines measure correctly.
func Truncate(s string, maxLen int, ellipsis bool) string {
	s = strings.ReplaceAll(strings.TrimRight(s, " \t"), "\t", "    ")
	if maxLen <= 0 {
		return ""
	}
	if VisualWidth(s) <= maxLen {
		return s
	}
	if ellipsis && maxLen > 3 {
		return runewidth.Truncate(s, maxLen, "...")
	}
	return runewidth.Truncate(s, maxLen, "")
}

// TruncateLines applies Truncate to every line of text.
func TruncateLines(text string, width int) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = Truncate(line, width, true)
	}
	return strings.Join(lines, "\n")
}

// Wrap wraps text to width on word boundaries. Words wider than width are split.
func Wrap(text string, width int) string {
	words := strings.Fields(text)
	if width <= 0 || len(words) == 0 {
		return text
	}

	var b strings.Builder
	lineWidth := 0
	for _, word := range words {
		for VisualWidth(word) > width {
			if lineWidth > 0 {
				b.WriteByte('\n')
				lineWidth = 0
			}
			chunk := runewidth.Truncate(word, width, "")
			if chunk == "" {
				// A single rune wider than width still has to go somewhere.
				chunk = string([]rune(word)[:1])
			}
			b.WriteString(chunk)
			b.WriteByte('\n')
			word = word[len(chunk):]
		}
		if word == "" {
			continue
		}

		w := VisualWidth(word)
		switch {
		case lineWidth == 0:
		case lineWidth+1+w <= width:
			b.WriteByte(' ')
			lineWidth++
		default:
			b.WriteByte('\n')
			lineWidth = 0
		}
		b.WriteString(word)
		lineWidth += w
	}

	return strings.TrimRight(b.String(), "\n")
}

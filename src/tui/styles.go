// Package tui renders build progress in the terminal.
package tui

import "github.com/charmbracelet/lipgloss"

// StyleConfig holds the colors used by the build views.
type StyleConfig struct {
	PrimaryBlue   lipgloss.Color
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	BorderColor   lipgloss.Color
	Success       lipgloss.Color
	Failure       lipgloss.Color
	Spinner       lipgloss.Color
}

// DefaultStyles returns the default color palette
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:   lipgloss.Color("#8AB4F8"),
		TextPrimary:   lipgloss.Color("#E8EAED"),
		TextSecondary: lipgloss.Color("#9AA0A6"),
		BorderColor:   lipgloss.Color("#5F6368"),
		Success:       lipgloss.Color("#34A853"),
		Failure:       lipgloss.Color("#EA4335"),
		Spinner:       lipgloss.Color("#FFD700"),
	}
}

// TitleStyle is used for milestone labels.
func (s *StyleConfig) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.PrimaryBlue).
		Bold(true)
}

// MutedStyle is used for secondary information such as build IDs and hints.
func (s *StyleConfig) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.TextSecondary)
}

// StatusStyle colors a final status line by exit code.
func (s *StyleConfig) StatusStyle(exitCode int) lipgloss.Style {
	color := s.Success
	if exitCode != 0 {
		color = s.Failure
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}

// LogStyle returns the bordered container for streamed output.
func (s *StyleConfig) LogStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextPrimary).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.BorderColor)
}

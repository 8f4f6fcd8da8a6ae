package sanitize

import "testing"

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "color codes",
			input:    "\x1b[31mERROR\x1b[0m: something failed",
			expected: "ERROR: something failed",
		},
		{
			name:     "no ANSI",
			input:    "plain text message",
			expected: "plain text message",
		},
		{
			name:     "multiple codes",
			input:    "\x1b[1m\x1b[31mbold red\x1b[0m normal",
			expected: "bold red normal",
		},
		{
			name:     "maven banner",
			input:    "[\x1b[1;31mERROR\x1b[m] Failed to execute goal",
			expected: "[ERROR] Failed to execute goal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripANSI(tt.input)
			if result != tt.expected {
				t.Errorf("StripANSI(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestForPrompt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain output unchanged",
			input:    "BUILD FAILURE\n",
			expected: "BUILD FAILURE\n",
		},
		{
			name:     "carriage return redraws keep final state",
			input:    "Progress 10%\rProgress 50%\rProgress 100%\ndone\n",
			expected: "Progress 100%\ndone\n",
		},
		{
			name:     "windows line endings",
			input:    "line one\r\nline two\r\n",
			expected: "line one\nline two\n",
		},
		{
			name:     "colours and redraws",
			input:    "\x1b[32m> Task :compileJava\x1b[0m\r> Task :test\n",
			expected: "> Task :test\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForPrompt(tt.input); got != tt.expected {
				t.Errorf("ForPrompt(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

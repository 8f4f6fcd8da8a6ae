package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Logger defines the interface for logging throughout the application.
// Different implementations can be used for different contexts (console, silent, etc.)
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// ConsoleLogger writes human-readable logs to stderr.
// Stdout is reserved for the MCP stdio transport, so nothing is ever printed there.
type ConsoleLogger struct {
	mu    sync.Mutex
	out   io.Writer
	debug bool
}

// NewLevelLogger creates a console logger for the given level name.
// "debug" enables debug lines; any other value logs info and errors only.
func NewLevelLogger(level string, out io.Writer) *ConsoleLogger {
	if out == nil {
		out = os.Stderr
	}
	return &ConsoleLogger{
		out:   out,
		debug: strings.EqualFold(strings.TrimSpace(level), "debug"),
	}
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	c.write("INFO", msg, args...)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	c.write("ERROR", msg, args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	if !c.debug {
		return
	}
	c.write("DEBUG", msg, args...)
}

func (c *ConsoleLogger) write(level, msg string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "["+level+"] "+msg+"\n", args...)
}

// SilentLogger discards all log messages.
// Used by tests and by callers that report through another channel.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}

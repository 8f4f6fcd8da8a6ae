// Package contracts defines the message types devmcp publishes for external observers.
package contracts

// EventType identifies the kind of a build lifecycle event.
type EventType string

const (
	// EventProgress carries a progress milestone (fraction of Total).
	EventProgress EventType = "progress"
	// EventLog carries a free-text log line, including captured build output.
	EventLog EventType = "log"
	// EventCompleted is published once per build, after the result is stored.
	EventCompleted EventType = "completed"
)

// BuildEvent is a single build lifecycle event.
// Published to: devmcp.build.events (configurable)
// Key: {build_id}
type BuildEvent struct {
	// Identity
	BuildID string    `json:"build_id"`
	Type    EventType `json:"type"`

	// Progress events
	Progress float64 `json:"progress,omitempty"`
	Total    float64 `json:"total,omitempty"`

	// Progress label, log line or completion summary.
	Message string `json:"message,omitempty"`

	// Completion events
	ExitCode *int   `json:"exit_code,omitempty"`
	Error    string `json:"error,omitempty"`
	Result   string `json:"result,omitempty"`

	Timestamp string `json:"timestamp"`
}

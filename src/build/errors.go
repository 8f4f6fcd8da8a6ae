package build

import (
	"errors"
	"fmt"
)

// ErrNotDirectory is returned when a project path exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// ResolutionError reports a project path that cannot host a build.
type ResolutionError struct {
	Path string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve project %s: %v", e.Path, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// StartError reports a process that could not be spawned.
type StartError struct {
	Command string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", e.Command, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// InterruptedError reports a build cancelled while the process was running.
// The process group has been killed by the time it is returned.
type InterruptedError struct {
	Command string
	Err     error
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("build %q interrupted: %v", e.Command, e.Err)
}

func (e *InterruptedError) Unwrap() error {
	return e.Err
}

// StreamError reports a failure reading the process output.
type StreamError struct {
	Command string
	Err     error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("reading output of %q: %v", e.Command, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic recovered inside the build pipeline.
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Value)
}

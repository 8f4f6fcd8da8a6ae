// Package notify delivers build progress and log events to observers.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Progress is a progress milestone of one build.
type Progress struct {
	BuildID  string
	Fraction float64
	Total    float64
	Label    string
}

// LogEntry is an informational log line of one build.
type LogEntry struct {
	BuildID string
	Message string
}

// Completion summarises a finished build. ExitCode is nil when the process never ran
// to completion; Error then holds the reason.
type Completion struct {
	BuildID  string
	ExitCode *int
	Error    string
	Result   string
}

// Observer receives build events. Implementations may fail; callers treat delivery
// as best effort.
type Observer interface {
	Progress(ctx context.Context, p Progress) error
	Log(ctx context.Context, entry LogEntry) error
}

// CompletionObserver is implemented by observers that also want the final result.
type CompletionObserver interface {
	Completed(ctx context.Context, c Completion) error
}

// Fanout delivers every event to each of its observers in order. A failing or
// panicking observer does not stop delivery to the others.
type Fanout []Observer

// NewFanout combines observers, skipping nil entries. It returns nil when nothing is left.
func NewFanout(observers ...Observer) Observer {
	var out Fanout
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

func (f Fanout) Progress(ctx context.Context, p Progress) error {
	var errs []error
	for _, o := range f {
		errs = append(errs, safeCall(func() error { return o.Progress(ctx, p) }))
	}
	return errors.Join(errs...)
}

func (f Fanout) Log(ctx context.Context, entry LogEntry) error {
	var errs []error
	for _, o := range f {
		errs = append(errs, safeCall(func() error { return o.Log(ctx, entry) }))
	}
	return errors.Join(errs...)
}

func (f Fanout) Completed(ctx context.Context, c Completion) error {
	var errs []error
	for _, o := range f {
		if co, ok := o.(CompletionObserver); ok {
			errs = append(errs, safeCall(func() error { return co.Completed(ctx, c) }))
		}
	}
	return errors.Join(errs...)
}

// safeCall converts a panic in fn into an error.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	return fn()
}

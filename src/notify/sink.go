package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"devmcp-agent/src/logger"
)

const (
	// DefaultQueueSize bounds the events waiting for delivery.
	DefaultQueueSize = 1024
	// DefaultDrainTimeout bounds how long Close waits for pending events.
	DefaultDrainTimeout = 2 * time.Second
	// milestoneReserve is the queue space log lines may never take. Progress,
	// milestone logs and the completion always fit in it.
	milestoneReserve = 32
)

type eventKind int

const (
	kindProgress eventKind = iota
	kindLog
	kindCompleted
)

type event struct {
	kind eventKind
	// critical events are never shed: progress, milestone logs and the completion.
	critical   bool
	progress   Progress
	log        LogEntry
	completion Completion
}

// Sink is the per-build, fire-and-forget front of an Observer. Events are queued
// and delivered in order by a single worker goroutine, so a slow observer never
// stalls the build. Delivery failures are logged at debug level and dropped.
//
// Only plain log lines are ever shed. They stop being queued once the queue is
// within milestoneReserve of full, and Close skips the ones still pending after
// the drain timeout, so progress, milestone logs and the completion of a noisy
// build still reach the observer.
//
// A Sink without an observer accepts every call and does nothing.
type Sink struct {
	buildID      string
	observer     Observer
	logger       logger.Logger
	ctx          context.Context
	drainTimeout time.Duration

	mu       sync.Mutex
	closed   bool
	queue    chan event
	reserve  int
	shedding atomic.Bool
	done     chan struct{}
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithQueueSize overrides DefaultQueueSize.
func WithQueueSize(n int) SinkOption {
	return func(s *Sink) {
		if n > 0 {
			s.queue = make(chan event, n)
		}
	}
}

// WithDrainTimeout overrides DefaultDrainTimeout.
func WithDrainTimeout(d time.Duration) SinkOption {
	return func(s *Sink) {
		s.drainTimeout = d
	}
}

// NewSink starts a sink delivering events of buildID to observer. Delivery uses
// ctx's values but outlives its cancellation, so the final milestones of an
// interrupted build are still reported.
func NewSink(ctx context.Context, buildID string, observer Observer, log logger.Logger, opts ...SinkOption) *Sink {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	s := &Sink{
		buildID:      buildID,
		observer:     observer,
		logger:       log,
		ctx:          context.WithoutCancel(ctx),
		drainTimeout: DefaultDrainTimeout,
		queue:        make(chan event, DefaultQueueSize),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reserve = min(milestoneReserve, cap(s.queue)/2)

	if observer == nil {
		s.closed = true
		close(s.done)
		return s
	}
	go s.run()
	return s
}

// BuildID returns the build the sink reports for.
func (s *Sink) BuildID() string {
	return s.buildID
}

// Progress reports a milestone: fraction of total, with a human-readable label.
func (s *Sink) Progress(fraction, total float64, label string) {
	s.enqueue(event{kind: kindProgress, critical: true, progress: Progress{
		BuildID:  s.buildID,
		Fraction: fraction,
		Total:    total,
		Label:    label,
	}})
}

// Log reports a line of build output. It is dropped when the queue is backed up.
func (s *Sink) Log(message string) {
	s.enqueue(event{kind: kindLog, log: LogEntry{BuildID: s.buildID, Message: message}})
}

// Milestone reports a log message that must not be dropped.
func (s *Sink) Milestone(message string) {
	s.enqueue(event{kind: kindLog, critical: true, log: LogEntry{BuildID: s.buildID, Message: message}})
}

// Completed reports the final result to observers implementing CompletionObserver.
func (s *Sink) Completed(c Completion) {
	c.BuildID = s.buildID
	s.enqueue(event{kind: kindCompleted, critical: true, completion: c})
}

func (s *Sink) enqueue(ev event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if !ev.critical && len(s.queue) >= cap(s.queue)-s.reserve {
		s.logger.Debug("[Notify] Queue backed up for build %s, dropping log line", s.buildID)
		return
	}
	select {
	case s.queue <- ev:
	default:
		s.logger.Error("[Notify] Queue full for build %s, dropping event", s.buildID)
	}
}

// Close stops accepting events and waits up to the drain timeout for queued
// events to be delivered. Log lines still pending after that are skipped and
// the remaining critical events get one more drain timeout. It is safe to call
// more than once.
func (s *Sink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	if s.wait() {
		return
	}
	s.logger.Debug("[Notify] Drain timeout for build %s, skipping %d pending log line(s)", s.buildID, len(s.queue))
	s.shedding.Store(true)
	if !s.wait() {
		s.logger.Error("[Notify] Observer for build %s is stuck, abandoning %d event(s)", s.buildID, len(s.queue))
	}
}

// wait reports whether the worker finished within the drain timeout.
func (s *Sink) wait() bool {
	timer := time.NewTimer(s.drainTimeout)
	defer timer.Stop()
	select {
	case <-s.done:
		return true
	case <-timer.C:
		return false
	}
}

func (s *Sink) run() {
	defer close(s.done)
	for ev := range s.queue {
		if !ev.critical && s.shedding.Load() {
			continue
		}
		if err := safeCall(func() error { return s.deliver(ev) }); err != nil {
			s.logger.Debug("[Notify] Event skipped for build %s: %v", s.buildID, err)
		}
	}
}

func (s *Sink) deliver(ev event) error {
	switch ev.kind {
	case kindProgress:
		return s.observer.Progress(s.ctx, ev.progress)
	case kindLog:
		return s.observer.Log(s.ctx, ev.log)
	case kindCompleted:
		if co, ok := s.observer.(CompletionObserver); ok {
			return co.Completed(s.ctx, ev.completion)
		}
	}
	return nil
}

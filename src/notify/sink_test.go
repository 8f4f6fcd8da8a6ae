package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingObserver struct {
	mu          sync.Mutex
	events      []string
	completions []Completion
	progressErr error
	panicOnLog  bool
	block       chan struct{}
	logDelay    time.Duration
}

func (r *recordingObserver) Progress(ctx context.Context, p Progress) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "progress:"+p.Label)
	return r.progressErr
}

func (r *recordingObserver) Log(ctx context.Context, entry LogEntry) error {
	if r.panicOnLog {
		panic("observer exploded")
	}
	if r.logDelay > 0 {
		time.Sleep(r.logDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "log:"+entry.Message)
	return nil
}

func (r *recordingObserver) Completed(ctx context.Context, c Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, c)
	return nil
}

func (r *recordingObserver) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestSinkPreservesOrder(t *testing.T) {
	obs := &recordingObserver{}
	sink := NewSink(context.Background(), "build-1", obs, nil)

	sink.Progress(0, 1, "first")
	sink.Log("second")
	sink.Log("third")
	sink.Progress(1, 1, "fourth")
	sink.Close()

	want := []string{"progress:first", "log:second", "log:third", "progress:fourth"}
	got := obs.snapshot()
	if len(got) != len(want) {
		t.Fatalf("got %d events %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSinkWithoutObserver(t *testing.T) {
	sink := NewSink(context.Background(), "build-1", nil, nil)
	sink.Progress(0.5, 1, "ignored")
	sink.Log("ignored")
	sink.Completed(Completion{})
	sink.Close()
	sink.Close()
}

func TestSinkSwallowsObserverFailures(t *testing.T) {
	obs := &recordingObserver{progressErr: errors.New("client went away"), panicOnLog: true}
	sink := NewSink(context.Background(), "build-1", obs, nil)

	sink.Progress(0, 1, "a")
	sink.Log("boom")
	sink.Progress(1, 1, "b")
	sink.Close()

	got := obs.snapshot()
	if len(got) != 2 || got[0] != "progress:a" || got[1] != "progress:b" {
		t.Errorf("events = %v, want both progress events despite failures", got)
	}
}

func TestSinkDoesNotBlockOnSlowObserver(t *testing.T) {
	obs := &recordingObserver{block: make(chan struct{})}
	sink := NewSink(context.Background(), "build-1", obs, nil, WithQueueSize(2), WithDrainTimeout(time.Second))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			sink.Progress(float64(i), 50, "tick")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Progress blocked on a slow observer")
	}

	close(obs.block)
	sink.Close()

	if got := len(obs.snapshot()); got == 0 || got >= 50 {
		t.Errorf("delivered %d events, want some dropped but not all", got)
	}
}

func TestSinkReservesRoomForMilestones(t *testing.T) {
	obs := &recordingObserver{block: make(chan struct{})}
	sink := NewSink(context.Background(), "build-1", obs, nil, WithQueueSize(100))

	// The worker holds this one until the observer is released.
	sink.Progress(0, 1, "start")
	for i := 0; i < 500; i++ {
		sink.Log("output")
	}
	sink.Milestone("finished")
	sink.Progress(1, 1, "done")
	sink.Completed(Completion{Result: "ok"})

	close(obs.block)
	sink.Close()

	got := obs.snapshot()
	if len(got) < 3 || got[0] != "progress:start" {
		t.Fatalf("events = %v", got)
	}
	if tail := got[len(got)-2:]; tail[0] != "log:finished" || tail[1] != "progress:done" {
		t.Errorf("last events = %v, want the milestone and final progress", tail)
	}
	if logs := len(got) - 3; logs == 0 || logs >= 100 {
		t.Errorf("delivered %d output lines, want the queue to shed some", logs)
	}
	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.completions) != 1 {
		t.Errorf("completions = %d, want 1", len(obs.completions))
	}
}

func TestSinkCloseShedsPendingLogs(t *testing.T) {
	obs := &recordingObserver{logDelay: 2 * time.Millisecond}
	sink := NewSink(context.Background(), "build-1", obs, nil, WithDrainTimeout(50*time.Millisecond))

	for i := 0; i < 500; i++ {
		sink.Log("output")
	}
	sink.Milestone("finished")
	sink.Progress(1, 1, "done")

	start := time.Now()
	sink.Close()
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Close() took %v", elapsed)
	}

	got := obs.snapshot()
	if len(got) >= 502 {
		t.Errorf("delivered all %d events, want pending output skipped", len(got))
	}
	if len(got) < 2 || got[len(got)-2] != "log:finished" || got[len(got)-1] != "progress:done" {
		t.Errorf("events end with %v, want the milestone and final progress", got[max(0, len(got)-2):])
	}
}

func TestSinkOutlivesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	obs := &recordingObserver{}
	sink := NewSink(ctx, "build-1", obs, nil)
	cancel()

	sink.Log("after cancel")
	sink.Close()

	if got := obs.snapshot(); len(got) != 1 {
		t.Errorf("events = %v, want the log delivered after cancellation", got)
	}
}

func TestSinkCompletedStampsBuildID(t *testing.T) {
	obs := &recordingObserver{}
	sink := NewSink(context.Background(), "build-7", obs, nil)
	code := 1
	sink.Completed(Completion{ExitCode: &code, Result: "BUILD FAILURE"})
	sink.Close()

	if len(obs.completions) != 1 {
		t.Fatalf("completions = %d, want 1", len(obs.completions))
	}
	if obs.completions[0].BuildID != "build-7" {
		t.Errorf("BuildID = %q, want build-7", obs.completions[0].BuildID)
	}
}

func TestSinkIgnoresEventsAfterClose(t *testing.T) {
	obs := &recordingObserver{}
	sink := NewSink(context.Background(), "build-1", obs, nil)
	sink.Close()
	sink.Log("late")

	if got := obs.snapshot(); len(got) != 0 {
		t.Errorf("events = %v, want none after Close", got)
	}
}

func TestFanout(t *testing.T) {
	first := &recordingObserver{panicOnLog: true}
	second := &recordingObserver{}

	obs := NewFanout(nil, first, second)
	if err := obs.Log(context.Background(), LogEntry{Message: "hello"}); err == nil {
		t.Error("Log() error = nil, want the panic reported")
	}
	if got := second.snapshot(); len(got) != 1 || got[0] != "log:hello" {
		t.Errorf("second observer events = %v, want [log:hello]", got)
	}

	co, ok := obs.(CompletionObserver)
	if !ok {
		t.Fatal("fanout does not forward completions")
	}
	if err := co.Completed(context.Background(), Completion{BuildID: "b"}); err != nil {
		t.Errorf("Completed() error = %v", err)
	}
	if len(first.completions) != 1 || len(second.completions) != 1 {
		t.Error("completion not delivered to every observer")
	}
}

func TestNewFanoutCollapses(t *testing.T) {
	if obs := NewFanout(nil, nil); obs != nil {
		t.Errorf("NewFanout(nil, nil) = %v, want nil", obs)
	}
	single := &recordingObserver{}
	if obs := NewFanout(single); obs != single {
		t.Error("NewFanout with one observer should return it unchanged")
	}
}

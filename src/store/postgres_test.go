package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"devmcp-agent/src/logger"
)

// newTestPostgresStore connects to POSTGRES_TEST_DSN or skips the test.
func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	s, err := NewPostgresStore(context.Background(), dsn, logger.NewSilentLogger())
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	t.Cleanup(func() {
		s.db.Exec(`DELETE FROM build_results WHERE slot = $1`, lastSlot)
		s.Close()
	})
	if _, err := s.db.Exec(`DELETE FROM build_results WHERE slot = $1`, lastSlot); err != nil {
		t.Fatalf("reset table: %v", err)
	}
	return s
}

func TestPostgresStoreMirrorsWrites(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()

	if _, _, err := s.Latest(ctx); !errors.Is(err, ErrNoResult) {
		t.Fatalf("Latest() error = %v, want ErrNoResult", err)
	}
	if got := s.Get(); got != NoBuildYet {
		t.Errorf("Get() = %q, want sentinel", got)
	}

	s.Set("BUILD SUCCESS\n")
	s.Set("BUILD FAILURE\n")

	got, updatedAt, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got != "BUILD FAILURE\n" {
		t.Errorf("Latest() = %q, want last write", got)
	}
	if updatedAt.IsZero() {
		t.Error("updated_at not set")
	}
}

func TestPostgresStoreLoadSeedsMemory(t *testing.T) {
	s := newTestPostgresStore(t)
	s.Set("from a previous process")

	fresh := &PostgresStore{db: s.db, memory: NewMemoryStore(), logger: logger.NewSilentLogger()}
	if err := fresh.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := fresh.Get(); got != "from a previous process" {
		t.Errorf("Get() after Load = %q", got)
	}
}

func TestNextStampStrictlyIncreases(t *testing.T) {
	s := &PostgresStore{}
	now := time.Date(2026, 10, 18, 12, 0, 0, 123456789, time.UTC)

	first := s.nextStamp(now)
	if want := now.Truncate(time.Microsecond); !first.Equal(want) {
		t.Errorf("first stamp = %v, want %v", first, want)
	}
	second := s.nextStamp(now)
	if !second.After(first) {
		t.Errorf("same clock reading: %v not after %v", second, first)
	}
	third := s.nextStamp(now.Add(-time.Hour))
	if !third.After(second) {
		t.Errorf("clock went backwards: %v not after %v", third, second)
	}
}

func TestPostgresStoreConcurrentSetsKeepLastWrite(t *testing.T) {
	s := newTestPostgresStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set(fmt.Sprintf("build %d", i))
		}(i)
	}
	wg.Wait()

	got, _, err := s.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got != s.Get() {
		t.Errorf("mirror = %q, memory = %q, want the same last write", got, s.Get())
	}
}

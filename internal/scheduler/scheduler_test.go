package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRejectsBadSpec(t *testing.T) {
	if _, err := New("not a cron spec", func() {}); err == nil {
		t.Fatalf("expected error for invalid cron spec")
	}
}

func TestRunOnceExecutesJob(t *testing.T) {
	var runs int32
	s, err := New("@hourly", func() { atomic.AddInt32(&runs, 1) })
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !s.RunOnce() {
		t.Fatalf("RunOnce should report that the job ran")
	}
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("job ran %d times, want 1", got)
	}
}

func TestRunOnceSkipsWhileRunInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	var startOnce sync.Once
	s, err := New("@hourly", func() {
		startOnce.Do(func() { close(started) })
		<-release
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	go s.RunOnce()
	<-started

	// The first run is still blocked; an overlapping tick must be skipped.
	if s.RunOnce() {
		t.Fatalf("overlapping RunOnce should have been skipped")
	}

	close(release)

	// Once the first run finishes, ticks run again.
	deadline := time.After(2 * time.Second)
	for {
		if s.RunOnce() {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("RunOnce still skipping after run finished")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

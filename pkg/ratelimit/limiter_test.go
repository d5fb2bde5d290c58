package ratelimit

import (
	"testing"
	"time"
)

func TestFixedInterval(t *testing.T) {
	fi := NewFixedInterval(200 * time.Millisecond)

	// First request passes immediately
	if !fi.Allow() {
		t.Error("Expected first request to be allowed")
	}

	// Immediate second request is denied
	if fi.Allow() {
		t.Error("Expected request to be denied before interval elapses")
	}

	// Allowed again after the interval
	time.Sleep(250 * time.Millisecond)
	if !fi.Allow() {
		t.Error("Expected request to be allowed after interval")
	}

	// Reset clears the last-request timestamp
	fi.Reset()
	if !fi.Allow() {
		t.Error("Expected request to be allowed after reset")
	}
}

func TestFixedIntervalWait(t *testing.T) {
	fi := NewFixedInterval(100 * time.Millisecond)

	fi.Wait()
	start := time.Now()
	fi.Wait()
	elapsed := time.Since(start)

	if elapsed < 90*time.Millisecond {
		t.Errorf("Expected Wait to block for roughly the interval, got %v", elapsed)
	}
}

func TestNop(t *testing.T) {
	n := NewNop()

	for i := 0; i < 10; i++ {
		if !n.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	start := time.Now()
	n.Wait()
	if time.Since(start) > 10*time.Millisecond {
		t.Error("Expected Wait to return immediately")
	}

	n.Reset()
	if !n.Allow() {
		t.Error("Expected request to be allowed after reset")
	}
}

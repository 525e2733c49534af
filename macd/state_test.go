package macd

import (
	"context"
	"testing"
	"time"
)

func TestState(t *testing.T) {
	t.Run("unbounded", func(t *testing.T) {
		s := NewState(-1)
		if s.Expired(s.Start.Add(24 * time.Hour)) {
			t.Fatal("unbounded state expired")
		}
	})

	t.Run("limit", func(t *testing.T) {
		s := NewState(2 * time.Second)

		if s.Expired(s.Start.Add(1999 * time.Millisecond)) {
			t.Error("expired before the limit")
		}
		if !s.Expired(s.Start.Add(2 * time.Second)) {
			t.Error("not expired at the limit")
		}
	})

	t.Run("zero limit", func(t *testing.T) {
		s := NewState(0)
		if !s.Expired(s.Start) {
			t.Error("zero limit should expire immediately")
		}
	})

	t.Run("stop", func(t *testing.T) {
		s := NewState(-1)
		if s.StopRequested() {
			t.Fatal("stop requested on a new state")
		}

		s.RequestStop()
		s.RequestStop()

		if !s.StopRequested() {
			t.Fatal("stop not requested")
		}
	})
}

func TestWatchStop(t *testing.T) {
	s := NewState(-1)

	ctx, cancel := context.WithCancel(context.Background())
	WatchStop(ctx, s)

	if s.StopRequested() {
		t.Fatal("stop requested before cancel")
	}

	cancel()

	deadline := time.Now().Add(time.Second)
	for !s.StopRequested() {
		if time.Now().After(deadline) {
			t.Fatal("stop not requested after cancel")
		}
		time.Sleep(time.Millisecond)
	}
}

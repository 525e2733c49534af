package macd

import (
	"context"
	"sync/atomic"
	"time"
)

// State is the supervisor state shared with the interrupt trigger. Only the
// stop flag may be touched after the supervisor starts.
type State struct {
	// TimeLimit is the run time after which everything is terminated. It is
	// ignored unless HasLimit is true.
	TimeLimit time.Duration
	HasLimit  bool
	// Start is when the supervisor started.
	Start time.Time

	stop atomic.Bool
}

// NewState creates a new State starting now. A negative limit means unbounded.
func NewState(limit time.Duration) *State {
	return &State{
		TimeLimit: limit,
		HasLimit:  limit >= 0,
		Start:     time.Now(),
	}
}

// RequestStop sets the stop flag. It is safe to call from any goroutine, any
// number of times.
func (s *State) RequestStop() {
	s.stop.Store(true)
}

// StopRequested returns true if RequestStop has been called.
func (s *State) StopRequested() bool {
	return s.stop.Load()
}

// Elapsed returns the time since Start.
func (s *State) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.Start)
}

// Expired returns true if there is a time limit and it has been reached.
func (s *State) Expired(now time.Time) bool {
	return s.HasLimit && s.Elapsed(now) >= s.TimeLimit
}

// WatchStop requests a stop on the state once ctx is done. Pass it a context
// from signal.NotifyContext to bind it to an interrupt.
func WatchStop(ctx context.Context, s *State) {
	go func() {
		<-ctx.Done()
		s.RequestStop()
	}()
}

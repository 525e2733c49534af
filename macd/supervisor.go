package macd

import (
	"time"

	"git.unix.lgbt/diamondburned/macd/macd/usage"
	"github.com/pkg/errors"
)

// DefaultInterval is the time between two reports.
var DefaultInterval = 5 * time.Second

// DefaultPollInterval is how often the stop condition is checked while waiting
// for the next report. It bounds how long an interrupt takes to be handled.
var DefaultPollInterval = 25 * time.Millisecond

// Outcome describes how the supervisor finished.
type Outcome int

const (
	// OutcomeAllExited means that every child exited on its own.
	OutcomeAllExited Outcome = iota
	// OutcomeTerminated means that the supervisor was interrupted or ran out
	// of time, and the remaining children were killed.
	OutcomeTerminated
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeAllExited:
		return "all exited"
	case OutcomeTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Supervisor periodically reports the resource usage of a process table until
// every process exits or a stop is requested. It is not safe for concurrent
// use; only the State may be shared.
type Supervisor struct {
	Interval     time.Duration
	PollInterval time.Duration
	// ClockTicks is the number of CPU ticks per second.
	ClockTicks int64

	j       Journaler
	state   *State
	table   *ProcessTable
	sampler usage.Sampler

	now       func() time.Time
	signalled bool
}

// NewSupervisor creates a new supervisor over the given table.
func NewSupervisor(state *State, table *ProcessTable, sampler usage.Sampler, j Journaler) *Supervisor {
	return &Supervisor{
		Interval:     DefaultInterval,
		PollInterval: DefaultPollInterval,
		ClockTicks:   usage.ClockTicks(),

		j:       j,
		state:   state,
		table:   table,
		sampler: sampler,

		now: time.Now,
	}
}

// Run runs the supervision loop. It returns once all processes have exited or
// after it has terminated them. The caller is expected to exit afterwards.
func (s *Supervisor) Run() Outcome {
	s.primeCounters()

	for {
		if alive := s.report(); alive == 0 {
			s.j.Write(&EventExiting{
				Seconds: s.elapsedSeconds(),
				Reason:  ExitAllExited,
			})
			return OutcomeAllExited
		}

		if s.wait() {
			return s.Terminate()
		}
	}
}

// Terminate kills every process that is still running and reports the final
// state of every started process.
func (s *Supervisor) Terminate() Outcome {
	ev := &EventTerminating{
		Time:      s.now(),
		Processes: make([]ProcessFinal, 0, s.table.Len()),
	}

	for _, rec := range s.table.Records() {
		if !rec.Started() {
			continue
		}

		final := ProcessFinal{Index: rec.Index, PID: rec.Proc.PID()}

		if rec.poll() {
			if err := rec.Proc.Kill(); err != nil {
				s.j.Write(&EventWarning{
					Component: "supervisor",
					Error:     errors.Wrapf(err, "failed to kill pid %d", final.PID).Error(),
				})
			}
			final.Terminated = true
		}

		ev.Processes = append(ev.Processes, final)
	}

	s.j.Write(ev)
	s.j.Write(&EventExiting{
		Seconds: s.elapsedSeconds(),
		Reason:  ExitTerminated,
	})

	return OutcomeTerminated
}

func (s *Supervisor) primeCounters() {
	for _, rec := range s.table.Records() {
		if !rec.Tracked() {
			continue
		}

		ticks, err := s.sampler.CPUTicks(rec.Proc.PID())
		if err != nil {
			ticks = 0
		}
		rec.LastTicks = ticks
	}
}

// report polls and samples every process, writes a report and returns the
// number of processes still alive.
func (s *Supervisor) report() int {
	ev := &EventReport{
		Time:      s.now(),
		Processes: make([]ProcessReport, 0, s.table.Len()),
	}

	var alive int

	for _, rec := range s.table.Records() {
		if !rec.Started() {
			continue
		}

		pr := ProcessReport{Index: rec.Index, PID: rec.Proc.PID()}

		if !rec.poll() {
			pr.Exited = true
			pr.ExitCode = rec.status.Code
			ev.Processes = append(ev.Processes, pr)
			continue
		}

		alive++

		ticks, err := s.sampler.CPUTicks(pr.PID)
		if err != nil {
			s.sampleWarning(pr.PID, err)
			// Keep the previous count so the delta is zero rather than a
			// negative spike.
			ticks = rec.LastTicks
		}

		mem, err := s.sampler.MemoryMB(pr.PID)
		if err != nil {
			s.sampleWarning(pr.PID, err)
		}

		pr.CPU = CPUPercent(rec.LastTicks, ticks, s.ClockTicks, s.Interval)
		pr.MemoryMB = mem
		rec.LastTicks = ticks

		ev.Processes = append(ev.Processes, pr)
	}

	s.j.Write(ev)
	return alive
}

func (s *Supervisor) sampleWarning(pid int, err error) {
	// The process exited between the poll and the sample. The next poll will
	// notice.
	if errors.Is(err, usage.ErrNotFound) {
		return
	}

	s.j.Write(&EventWarning{
		Component: "sampler",
		Error:     errors.Wrapf(err, "pid %d", pid).Error(),
	})
}

// wait sleeps until the next interval. It returns true if the supervisor
// should terminate instead.
func (s *Supervisor) wait() bool {
	deadline := s.now().Add(s.Interval)

	for {
		if s.shouldStop() {
			return true
		}

		now := s.now()
		if !now.Before(deadline) {
			return false
		}

		step := s.PollInterval
		if left := deadline.Sub(now); left < step {
			step = left
		}

		time.Sleep(step)
	}
}

func (s *Supervisor) shouldStop() bool {
	if s.state.StopRequested() {
		if !s.signalled {
			s.signalled = true
			s.j.Write(&EventSignalReceived{})
		}
		return true
	}

	return s.state.Expired(s.now())
}

func (s *Supervisor) elapsedSeconds() int {
	return int(s.state.Elapsed(s.now()) / time.Second)
}

// CPUPercent calculates the share of an interval that a process spent on the
// CPU, given its cumulative tick counts at the start and end of the interval.
// The result is truncated and not clamped.
func CPUPercent(prevTicks, ticks, clockTicks int64, interval time.Duration) int64 {
	full := clockTicks * int64(interval) / int64(time.Second)
	if full <= 0 {
		full = 1
	}

	return (ticks - prevTicks) * 100 / full
}

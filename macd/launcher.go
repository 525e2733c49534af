package macd

import (
	"fmt"
	"time"

	"git.unix.lgbt/diamondburned/macd/macd/exec"
	"github.com/pkg/errors"
)

// DefaultGracePeriod is the time given to a new process to fail before it is
// considered started.
var DefaultGracePeriod = 100 * time.Millisecond

// Launcher starts processes from command lines.
type Launcher struct {
	GracePeriod time.Duration

	startProc func(argv []string) (exec.Process, error)
}

// NewLauncher creates a new launcher that starts real processes.
func NewLauncher() *Launcher {
	return &Launcher{
		GracePeriod: DefaultGracePeriod,
		startProc:   exec.StartProcess,
	}
}

// LaunchResult is the result of launching a single command line.
type LaunchResult struct {
	Path string
	// Proc is nil if Started is false.
	Proc    exec.Process
	Started bool
	// Reason explains why the process did not start.
	Reason string
}

// Launch starts the given command line. Failures that only concern this line
// are returned in the result; the returned error is reserved for failures that
// should stop everything, which is when the system cannot create processes
// anymore.
//
// A process that exits within the grace period is considered to have failed to
// start. This only catches failures that happen right away.
func (l *Launcher) Launch(line string) (LaunchResult, error) {
	argv := ParseCommand(line)
	if len(argv) == 0 {
		return LaunchResult{Reason: "empty command"}, nil
	}

	result := LaunchResult{Path: argv[0]}

	p, err := l.startProc(argv)
	if err != nil {
		if errors.Is(err, exec.ErrSpawnExhausted) {
			return result, errors.Wrapf(err, "failed to start %q", argv[0])
		}

		result.Reason = err.Error()
		return result, nil
	}

	if l.GracePeriod > 0 {
		time.Sleep(l.GracePeriod)
	}

	if status, exited := p.Poll(); exited {
		result.Reason = fmt.Sprintf("exited during grace period with code %d", status.Code)
		if status.Error != nil {
			result.Reason = status.Error.Error()
		}
		return result, nil
	}

	result.Proc = p
	result.Started = true
	return result, nil
}

// LaunchAll launches every line of the list in order, writing one spawn event
// per line into the journal. Each line takes one slot in the returned table,
// whether or not it started.
func LaunchAll(list *ProcessList, l *Launcher, j Journaler) (*ProcessTable, error) {
	table := &ProcessTable{}

	for _, line := range list.Lines {
		result, err := l.Launch(line)
		if err != nil {
			return table, err
		}

		rec := &ProcessRecord{
			Line: line,
			Path: result.Path,
			Proc: result.Proc,
		}
		table.Append(rec)

		if !result.Started {
			j.Write(&EventProcessSpawnError{
				Index:  rec.Index,
				Path:   rec.Path,
				Reason: result.Reason,
			})
			continue
		}

		j.Write(&EventProcessSpawned{
			Index: rec.Index,
			Path:  rec.Path,
			PID:   rec.Proc.PID(),
		})
	}

	return table, nil
}

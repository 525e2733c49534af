// Package exec provides an abstraction around package os' Process
// implementation for easier testing. Processes started here are never waited
// on by package os; their exit status is collected with a non-blocking wait4
// instead.
package exec

import (
	"os"
	osexec "os/exec"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrSpawnExhausted is returned by StartProcess if the system refused to create
// a new process because it ran out of resources. It is not recoverable.
var ErrSpawnExhausted = errors.New("process spawn resources exhausted")

// Process describes a command process.
type Process interface {
	PID() int
	// Kill sends SIGKILL to the process.
	Kill() error
	// Poll checks whether the process has exited without blocking. The
	// returned boolean is true if it has. Once true, the same status is
	// returned on every call.
	Poll() (ExitStatus, bool)
}

// ExitStatus is a process' exit status.
type ExitStatus struct {
	PID   int
	Code  int // -1 for signaled
	Error error
}

type process struct {
	pid    int
	exited *ExitStatus
}

var _ Process = (*process)(nil)

// StartProcess creates a new command process on the system. argv[0] is looked
// up in $PATH the same way execvp does. The child inherits the standard file
// descriptors.
func StartProcess(argv []string) (Process, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("missing program")
	}

	path, err := osexec.LookPath(argv[0])
	if err != nil {
		return nil, err
	}

	p, err := os.StartProcess(path, argv, &os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	})
	if err != nil {
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.ENOMEM) {
			return nil, errors.Wrap(ErrSpawnExhausted, err.Error())
		}
		return nil, err
	}

	pid := p.Pid
	// The os.Process handle is only used to obtain the PID. Waiting is done
	// through wait4 so it can be non-blocking.
	p.Release()

	return &process{pid: pid}, nil
}

func (proc *process) PID() int {
	return proc.pid
}

func (proc *process) Kill() error {
	if proc.exited != nil {
		return os.ErrProcessDone
	}

	return unix.Kill(proc.pid, unix.SIGKILL)
}

func (proc *process) Poll() (ExitStatus, bool) {
	if proc.exited != nil {
		return *proc.exited, true
	}

	var ws unix.WaitStatus

	for {
		wpid, err := unix.Wait4(proc.pid, &ws, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			// ECHILD: someone else reaped it, or it was never ours. Either
			// way, it's gone.
			proc.exited = &ExitStatus{
				PID:   proc.pid,
				Code:  -1,
				Error: errors.Wrap(err, "failed to wait"),
			}
			return *proc.exited, true
		}

		if wpid == 0 {
			return ExitStatus{PID: proc.pid}, false
		}

		break
	}

	status := ExitStatus{PID: proc.pid, Code: -1}
	if ws.Exited() {
		status.Code = ws.ExitStatus()
	}

	proc.exited = &status
	return status, true
}

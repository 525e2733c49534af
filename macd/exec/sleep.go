package exec

import (
	"os"
	"sync"
	"time"
)

type sleepProcess struct {
	mu       sync.Mutex
	deadline time.Time
	code     int
	killed   bool

	pid int
}

// NewSleepProcess creates a process that only idles for a duration and then
// exits with the given code. It is used for testing. A negative duration
// creates a process that has already exited.
func NewSleepProcess(dura time.Duration, code, pid int) Process {
	return &sleepProcess{
		deadline: time.Now().Add(dura),
		code:     code,
		pid:      pid,
	}
}

func (mock *sleepProcess) PID() int { return mock.pid }

func (mock *sleepProcess) Kill() error {
	mock.mu.Lock()
	defer mock.mu.Unlock()

	if mock.killed || !time.Now().Before(mock.deadline) {
		return os.ErrProcessDone
	}

	mock.killed = true
	mock.code = -1
	return nil
}

// Killed returns true if the process was SIGKILLed.
func (mock *sleepProcess) Killed() bool {
	mock.mu.Lock()
	defer mock.mu.Unlock()

	return mock.killed
}

func (mock *sleepProcess) Poll() (ExitStatus, bool) {
	mock.mu.Lock()
	defer mock.mu.Unlock()

	status := ExitStatus{PID: mock.pid}
	if !mock.killed && time.Now().Before(mock.deadline) {
		return status, false
	}

	status.Code = mock.code
	return status, true
}

// IsKilled returns true if the given process is a sleep process that was
// killed.
func IsKilled(proc Process) bool {
	sleep, ok := proc.(*sleepProcess)
	return ok && sleep.Killed()
}

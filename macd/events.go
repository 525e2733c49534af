package macd

import "time"

// eventType describes an event type.
type eventType = string

const (
	eventWarning           eventType = "warning"
	eventStarted           eventType = "started"
	eventProcessSpawnError eventType = "process spawn error"
	eventProcessSpawned    eventType = "process spawned"
	eventReport            eventType = "report"
	eventSignalReceived    eventType = "signal received"
	eventTerminating       eventType = "terminating"
	eventExiting           eventType = "exiting"
	eventProcessListModify eventType = "process list modified"
)

// Event is an interface describing known events.
type Event interface {
	Type() string
	event()
}

// NewEvent creates a new event from the given event type. It is used primarily
// for decoding events from its type. Nil is returned if the event type is
// unknown.
func NewEvent(eventType string) Event {
	switch eventType {
	case eventWarning:
		return &EventWarning{}
	case eventStarted:
		return &EventStarted{}
	case eventProcessSpawnError:
		return &EventProcessSpawnError{}
	case eventProcessSpawned:
		return &EventProcessSpawned{}
	case eventReport:
		return &EventReport{}
	case eventSignalReceived:
		return &EventSignalReceived{}
	case eventTerminating:
		return &EventTerminating{}
	case eventExiting:
		return &EventExiting{}
	case eventProcessListModify:
		return &EventProcessListModify{}
	default:
		return nil
	}
}

// EventWarning is emitted when a non-fatal error occurs.
type EventWarning struct {
	Component string `json:"component"`
	Error     string `json:"error"`
}

func (ev *EventWarning) Type() string { return eventWarning }
func (ev *EventWarning) event()       {}

// EventStarted is emitted once, before any process is launched.
type EventStarted struct {
	Time      time.Time `json:"time"`
	File      string    `json:"file"`
	TimeLimit int       `json:"time_limit"` // seconds, -1 if unbounded
}

func (ev *EventStarted) Type() string { return eventStarted }
func (ev *EventStarted) event()       {}

// EventProcessSpawnError is emitted when a line fails to start for any reason.
type EventProcessSpawnError struct {
	Index  int    `json:"index"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (ev *EventProcessSpawnError) Type() string { return eventProcessSpawnError }
func (ev *EventProcessSpawnError) event()       {}

// EventProcessSpawned is emitted when a line has been started and survived the
// grace period.
type EventProcessSpawned struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
	PID   int    `json:"pid"`
}

func (ev *EventProcessSpawned) Type() string { return eventProcessSpawned }
func (ev *EventProcessSpawned) event()       {}

// ProcessReport is the status of a single process within a report.
type ProcessReport struct {
	Index    int   `json:"index"`
	PID      int   `json:"pid"`
	Exited   bool  `json:"exited,omitempty"`
	ExitCode int   `json:"exit_code,omitempty"` // -1 if signaled
	CPU      int64 `json:"cpu_percent"`
	MemoryMB int64 `json:"memory_mb"`
}

// EventReport is the periodic usage report. Processes are ordered by index and
// only contain processes that were started.
type EventReport struct {
	Time      time.Time       `json:"time"`
	Processes []ProcessReport `json:"processes"`
}

func (ev *EventReport) Type() string { return eventReport }
func (ev *EventReport) event()       {}

// EventSignalReceived is emitted once when the supervisor notices that a stop
// was requested.
type EventSignalReceived struct{}

func (ev *EventSignalReceived) Type() string { return eventSignalReceived }
func (ev *EventSignalReceived) event()       {}

// ProcessFinal is the final status of a process when terminating.
type ProcessFinal struct {
	Index      int  `json:"index"`
	PID        int  `json:"pid"`
	Terminated bool `json:"terminated"` // false if it had already exited
}

// EventTerminating is emitted when the supervisor kills what remains of its
// children.
type EventTerminating struct {
	Time      time.Time      `json:"time"`
	Processes []ProcessFinal `json:"processes"`
}

func (ev *EventTerminating) Type() string { return eventTerminating }
func (ev *EventTerminating) event()       {}

// ExitReason describes why the supervisor exited.
type ExitReason string

const (
	ExitAllExited  ExitReason = "all exited"
	ExitTerminated ExitReason = "terminated"
)

// EventExiting is the last event emitted by the supervisor.
type EventExiting struct {
	Seconds int        `json:"seconds"`
	Reason  ExitReason `json:"reason"`
}

func (ev *EventExiting) Type() string { return eventExiting }
func (ev *EventExiting) event()       {}

// EventProcessListModify is emitted when the process list file changes on disk
// while the supervisor is running. The running process table is not affected.
type EventProcessListModify struct {
	Op   ProcessListModifyOp `json:"op"`
	File string              `json:"file"`
}

// ProcessListModifyOp contains possible operations done to the process list
// file.
type ProcessListModifyOp string

const (
	ProcessListCreate ProcessListModifyOp = "create"
	ProcessListRemove ProcessListModifyOp = "remove"
	ProcessListUpdate ProcessListModifyOp = "update"
)

func (ev *EventProcessListModify) Type() string { return eventProcessListModify }
func (ev *EventProcessListModify) event()       {}

package macd

import "git.unix.lgbt/diamondburned/macd/macd/exec"

// ProcessRecord is a single slot in the process table.
type ProcessRecord struct {
	Index int
	Line  string
	Path  string
	// Proc is nil if the process was not started.
	Proc exec.Process
	// LastTicks is the cumulative CPU ticks seen on the previous sample.
	LastTicks int64

	exited bool
	status exec.ExitStatus
}

// Started returns true if the process was launched successfully.
func (rec *ProcessRecord) Started() bool {
	return rec.Proc != nil
}

// Exited returns true if the process was started and has since been seen to
// exit.
func (rec *ProcessRecord) Exited() bool {
	return rec.exited
}

// ExitStatus returns the exit status of a process that has exited.
func (rec *ProcessRecord) ExitStatus() (exec.ExitStatus, bool) {
	return rec.status, rec.exited
}

// Tracked returns true if the process should still be polled.
func (rec *ProcessRecord) Tracked() bool {
	return rec.Started() && !rec.exited
}

// poll checks whether a tracked process is still alive. Once it has exited,
// the record stops being tracked.
func (rec *ProcessRecord) poll() bool {
	if !rec.Tracked() {
		return false
	}

	status, exited := rec.Proc.Poll()
	if exited {
		rec.exited = true
		rec.status = status
		return false
	}

	return true
}

// ProcessTable is the ordered list of processes. Indices are stable for the
// lifetime of the table.
type ProcessTable struct {
	records []*ProcessRecord
}

// Append adds a record to the end of the table and sets its index.
func (t *ProcessTable) Append(rec *ProcessRecord) {
	rec.Index = len(t.records)
	t.records = append(t.records, rec)
}

// Len returns the number of slots in the table.
func (t *ProcessTable) Len() int {
	return len(t.records)
}

// Records returns all records in index order. The slice must not be modified.
func (t *ProcessTable) Records() []*ProcessRecord {
	return t.records
}

// Get returns the record at the given index.
func (t *ProcessTable) Get(i int) *ProcessRecord {
	return t.records[i]
}

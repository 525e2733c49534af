package macd

import (
	"io"
	"reflect"
	"sync"
	"testing"
)

// mockJournal is an in-memory storage of journals, primarily used for testing.
// A zero-value instance is a valid instance.
type mockJournal struct {
	mutex    sync.Mutex
	finalize bool
	journals []Event
}

var _ Journaler = (*mockJournal)(nil)

// Finalize locks the memory store. Future writes will cause a panic.
func (m *mockJournal) Finalize() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.finalize = true
}

// Write appends a journal event into the internal store.
func (m *mockJournal) Write(ev Event) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.finalize {
		panic("log write when finalized")
	}

	m.journals = append(m.journals, ev)
	return nil
}

// Journals returns a copy of the journal slice.
func (m *mockJournal) Journals() []Event {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]Event(nil), m.journals...)
}

// Verify verifies that the given journals slice is equal to the one stored
// internally. If strict is true, then a length check is performed, otherwise,
// the unmatched events are returned.
//
// Consecutive calls to Verify will match the remaining unmatched events.
func (m *mockJournal) Verify(t *testing.T, strict bool, journals []Event) []Event {
	t.Helper()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if strict && len(journals) != len(m.journals) {
		t.Errorf("mismatch journal length, got %d, expected %d", len(m.journals), len(journals))
		return nil
	}

	if len(journals) > len(m.journals) {
		t.Errorf("journal too short, got %d, expected at least %d", len(m.journals), len(journals))
		return nil
	}

	for i, ev := range journals {
		if !reflect.DeepEqual(m.journals[i], ev) {
			t.Errorf("journal %d mismatch, got %#v, expected %#v", i, m.journals[i], ev)
		}
	}

	m.journals = m.journals[len(journals):]
	return m.journals
}

// Read implements JournalReader by popping events off the end.
func (m *mockJournal) Read() (Event, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.journals) == 0 {
		return nil, io.EOF
	}

	ev := m.journals[len(m.journals)-1]
	m.journals = m.journals[:len(m.journals)-1]
	return ev, nil
}

func TestReadLatest(t *testing.T) {
	j := mockJournal{}
	j.Write(&EventReport{Processes: []ProcessReport{{Index: 0, CPU: 1}}})
	j.Write(&EventReport{Processes: []ProcessReport{{Index: 0, CPU: 2}}})
	j.Write(&EventWarning{Component: "test"})

	ev, err := ReadLatest(&j, eventReport)
	if err != nil {
		t.Fatal("failed to read:", err)
	}

	report := ev.(*EventReport)
	if report.Processes[0].CPU != 2 {
		t.Errorf("expected latest report, got %#v", report)
	}

	if _, err := ReadLatest(&j, eventExiting); err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestNewEvent(t *testing.T) {
	events := []Event{
		&EventWarning{},
		&EventStarted{},
		&EventProcessSpawnError{},
		&EventProcessSpawned{},
		&EventReport{},
		&EventSignalReceived{},
		&EventTerminating{},
		&EventExiting{},
		&EventProcessListModify{},
	}

	for _, ev := range events {
		got := NewEvent(ev.Type())
		if reflect.TypeOf(got) != reflect.TypeOf(ev) {
			t.Errorf("NewEvent(%q) returned %T, expected %T", ev.Type(), got, ev)
		}
	}

	if NewEvent("bogus") != nil {
		t.Error("expected nil for unknown event")
	}
}

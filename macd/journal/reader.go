package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"git.unix.lgbt/diamondburned/macd/macd"
	"github.com/diamondburned/backwardio"
	"github.com/pkg/errors"
)

// Reader reads journals written by Writer from the bottom up, so the newest
// event is read first.
type Reader struct {
	b *backwardio.Scanner
	t time.Time
}

var _ macd.JournalReader = (*Reader)(nil)

// NewReader creates a new journal reader.
func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{b: backwardio.NewScanner(r)}
}

// Read reads the previous entry. An EOF error is returned once the start of the
// file has been reached.
func (r *Reader) Read() (macd.Event, error) {
	var line []byte
	var err error

	for {
		line, err = r.b.ReadUntil('\n')
		if err != nil {
			return nil, err
		}
		if len(line) > 0 {
			break
		}
	}

	var rawEvent struct {
		Time time.Time       `json:"time"`
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(line, &rawEvent); err != nil {
		return nil, errors.Wrap(err, "failed to decode JSON")
	}

	event := macd.NewEvent(rawEvent.Type)
	if event == nil {
		return nil, fmt.Errorf("unknown event %q", rawEvent.Type)
	}

	if err := json.Unmarshal(rawEvent.Data, event); err != nil {
		return nil, errors.Wrap(err, "failed to decode event data")
	}

	r.t = rawEvent.Time
	return event, nil
}

// Time returns the time the last read event was written.
func (r *Reader) Time() time.Time {
	return r.t
}

// ReadLatestFromFile reads the newest event with the given type from the
// journal file at the given path. No lock is needed to read a journal.
func ReadLatestFromFile(path, eventType string) (macd.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return macd.ReadLatest(NewReader(f), eventType)
}

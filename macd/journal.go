package macd

// Journaler describes an event logger.
type Journaler interface {
	Write(Event) error
}

// JournalReader describes a journal that can be read back, newest event first.
type JournalReader interface {
	// Read reads the previous event. An io.EOF is returned once the start of
	// the journal is reached.
	Read() (Event, error)
}

// JournalReadWriter is a journal that can be both written and read.
type JournalReadWriter interface {
	Journaler
	JournalReader
}

// ReadLatest reads backwards until it finds an event with the given type.
func ReadLatest(r JournalReader, eventType string) (Event, error) {
	for {
		ev, err := r.Read()
		if err != nil {
			return nil, err
		}

		if ev.Type() == eventType {
			return ev, nil
		}
	}
}

package journal

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"git.unix.lgbt/diamondburned/macd/macd"
	"github.com/pkg/errors"
)

// DateLayout is the layout used for dates in human-readable reports, for
// example "Sun, Jan 2, 2022 3:4:5 PM", without any zero padding.
const DateLayout = "Mon, Jan 2, 2006 3:4:5 PM"

// HumanWriter is a journaler that renders events as the human-readable
// console report.
type HumanWriter struct {
	mu sync.Mutex
	w  io.Writer
}

var _ macd.Journaler = (*HumanWriter)(nil)

// NewHumanWriter creates a new human-readable journaler writing into w.
func NewHumanWriter(w io.Writer) *HumanWriter {
	return &HumanWriter{w: w}
}

// Write renders the given event. Unknown events are ignored.
func (h *HumanWriter) Write(ev macd.Event) error {
	var buf bytes.Buffer
	render(&buf, ev)

	if buf.Len() == 0 {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "failed to write report")
	}

	return nil
}

func render(buf *bytes.Buffer, ev macd.Event) {
	switch ev := ev.(type) {
	case *macd.EventStarted:
		fmt.Fprintf(buf, "Starting report, %s\n", formatDate(ev.Time))

	case *macd.EventProcessSpawned:
		fmt.Fprintf(buf, "[%d] %s, started successfully (pid: %d)\n", ev.Index, ev.Path, ev.PID)

	case *macd.EventProcessSpawnError:
		fmt.Fprintf(buf, "[%d] badprogram %s, failed to start\n", ev.Index, ev.Path)

	case *macd.EventReport:
		buf.WriteString("...\n")
		fmt.Fprintf(buf, "Normal report, %s\n", formatDate(ev.Time))

		for _, p := range ev.Processes {
			if p.Exited {
				fmt.Fprintf(buf, "[%d] Exited\n", p.Index)
				continue
			}

			fmt.Fprintf(buf,
				"[%d] Running, cpu usage: %d%%, mem usage: %d MB\n",
				p.Index, p.CPU, p.MemoryMB)
		}

	case *macd.EventSignalReceived:
		// The terminating banner follows on the same line.
		buf.WriteString("Signal Received - ")

	case *macd.EventTerminating:
		fmt.Fprintf(buf, "Terminating, %s\n", formatDate(ev.Time))

		for _, p := range ev.Processes {
			if p.Terminated {
				fmt.Fprintf(buf, "[%d] Terminated\n", p.Index)
			} else {
				fmt.Fprintf(buf, "[%d] Exited\n", p.Index)
			}
		}

	case *macd.EventExiting:
		fmt.Fprintf(buf, "Exiting (total time: %d seconds)\n", ev.Seconds)
		if ev.Reason == macd.ExitAllExited {
			buf.WriteString("...\n")
		}

	case *macd.EventWarning:
		fmt.Fprintf(buf, "warning: %s: %s\n", ev.Component, ev.Error)

	case *macd.EventProcessListModify:
		fmt.Fprintf(buf, "notice: process list %s: %s, restart to apply\n", ev.File, ev.Op)
	}
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

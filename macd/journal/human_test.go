package journal

import (
	"strings"
	"testing"
	"time"

	"git.unix.lgbt/diamondburned/macd/macd"
)

func TestHumanWriter(t *testing.T) {
	at := time.Date(2021, time.April, 13, 17, 5, 9, 0, time.UTC)

	type test struct {
		name   string
		events []macd.Event
		output string
	}

	var tests = []test{
		{
			name: "launch",
			events: []macd.Event{
				&macd.EventStarted{Time: at, TimeLimit: -1},
				&macd.EventProcessSpawned{Index: 0, Path: "sleep", PID: 420},
				&macd.EventProcessSpawnError{Index: 1, Path: "./nope", Reason: "not found"},
				&macd.EventProcessSpawnError{Index: 2, Path: "", Reason: "empty command"},
			},
			output: "" +
				"Starting report, Tue, Apr 13, 2021 5:5:9 PM\n" +
				"[0] sleep, started successfully (pid: 420)\n" +
				"[1] badprogram ./nope, failed to start\n" +
				"[2] badprogram , failed to start\n",
		},
		{
			name: "report then all exited",
			events: []macd.Event{
				&macd.EventReport{Time: at, Processes: []macd.ProcessReport{
					{Index: 0, PID: 420, CPU: 10, MemoryMB: 3},
					{Index: 2, PID: 421, Exited: true},
				}},
				&macd.EventExiting{Seconds: 12, Reason: macd.ExitAllExited},
			},
			output: "" +
				"...\n" +
				"Normal report, Tue, Apr 13, 2021 5:5:9 PM\n" +
				"[0] Running, cpu usage: 10%, mem usage: 3 MB\n" +
				"[2] Exited\n" +
				"Exiting (total time: 12 seconds)\n" +
				"...\n",
		},
		{
			name: "interrupted",
			events: []macd.Event{
				&macd.EventSignalReceived{},
				&macd.EventTerminating{Time: at.Add(-12 * time.Hour), Processes: []macd.ProcessFinal{
					{Index: 0, PID: 420, Terminated: true},
					{Index: 1, PID: 421, Terminated: false},
				}},
				&macd.EventExiting{Seconds: 3, Reason: macd.ExitTerminated},
			},
			output: "" +
				"Signal Received - Terminating, Tue, Apr 13, 2021 5:5:9 AM\n" +
				"[0] Terminated\n" +
				"[1] Exited\n" +
				"Exiting (total time: 3 seconds)\n",
		},
		{
			name: "notices",
			events: []macd.Event{
				&macd.EventWarning{Component: "sampler", Error: "pid 1: permission denied"},
				&macd.EventProcessListModify{Op: macd.ProcessListUpdate, File: "/tmp/procs"},
			},
			output: "" +
				"warning: sampler: pid 1: permission denied\n" +
				"notice: process list /tmp/procs: update, restart to apply\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var out strings.Builder
			h := NewHumanWriter(&out)

			for _, ev := range test.events {
				if err := h.Write(ev); err != nil {
					t.Fatal("failed to write:", err)
				}
			}

			if out.String() != test.output {
				t.Errorf("unexpected output\n"+
					"got:\n%s\n"+
					"expected:\n%s", out.String(), test.output)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	midnight := time.Date(2020, time.February, 29, 0, 0, 0, 0, time.UTC)
	if got := formatDate(midnight); got != "Sat, Feb 29, 2020 12:0:0 AM" {
		t.Fatalf("unexpected date %q", got)
	}

	noon := time.Date(2020, time.February, 29, 12, 30, 45, 0, time.UTC)
	if got := formatDate(noon); got != "Sat, Feb 29, 2020 12:30:45 PM" {
		t.Fatalf("unexpected date %q", got)
	}
}

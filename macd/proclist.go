package macd

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ProcessList is a parsed process list file.
type ProcessList struct {
	// TimeLimit is the configured run time, or -1 if unbounded.
	TimeLimit time.Duration
	// Lines contains one command line per process, in file order. Empty lines
	// are kept.
	Lines []string
}

// ReadProcessListFile reads the process list at the given path.
func ReadProcessListFile(path string) (*ProcessList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadProcessList(f)
}

// ReadProcessList reads a process list. The first line may be in the form
// "timelimit <seconds>", in which case it sets the time limit instead of
// describing a process. If the seconds are not a number, the line is treated
// as a regular command line.
func ReadProcessList(r io.Reader) (*ProcessList, error) {
	list := &ProcessList{TimeLimit: -1}

	scanner := bufio.NewScanner(r)
	// Command lines can get long.
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Text()

		if first {
			first = false

			if limit, ok := parseTimeLimit(line); ok {
				list.TimeLimit = limit
				continue
			}
		}

		list.Lines = append(list.Lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read process list")
	}

	return list, nil
}

func parseTimeLimit(line string) (time.Duration, bool) {
	fields := ParseCommand(line)
	if len(fields) < 2 || fields[0] != "timelimit" {
		return 0, false
	}

	for _, r := range fields[1] {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	secs, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || secs > math.MaxInt64/int64(time.Second) {
		return 0, false
	}

	return time.Duration(secs) * time.Second, true
}

// ParseCommand splits a command line into its program and arguments. Arguments
// are separated by spaces; consecutive spaces do not produce empty arguments.
func ParseCommand(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool { return r == ' ' })
}

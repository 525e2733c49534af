// Package usage samples per-process CPU time and memory from procfs.
package usage

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/procfs"
	"github.com/tklauser/go-sysconf"
)

// DefaultMountPoint is where procfs is normally mounted.
const DefaultMountPoint = procfs.DefaultMountPoint

// ErrNotFound is returned when the process has no procfs entry, which usually
// means it has exited. It is not a failure.
var ErrNotFound = errors.New("process not found")

// Sampler describes a source of per-process usage snapshots.
type Sampler interface {
	// CPUTicks returns the user and kernel clock ticks the process has
	// consumed since it started.
	CPUTicks(pid int) (int64, error)
	// MemoryMB returns the memory attributed to the process in megabytes.
	MemoryMB(pid int) (int64, error)
}

// ProcSampler is a Sampler that reads /proc/<pid>/stat and /proc/<pid>/statm.
type ProcSampler struct {
	fs   procfs.FS
	root string
}

var _ Sampler = (*ProcSampler)(nil)

// NewProcSampler creates a sampler reading from the procfs mounted at the given
// path.
func NewProcSampler(mountPoint string) (*ProcSampler, error) {
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open procfs")
	}

	return &ProcSampler{fs: fs, root: mountPoint}, nil
}

// CPUTicks sums utime and stime.
func (s *ProcSampler) CPUTicks(pid int) (int64, error) {
	p, err := s.fs.Proc(pid)
	if err != nil {
		return 0, notFound(err)
	}

	stat, err := p.Stat()
	if err != nil {
		return 0, notFound(err)
	}

	return int64(stat.UTime) + int64(stat.STime), nil
}

// MemoryMB sums every page count in statm and divides it by 1024.
func (s *ProcSampler) MemoryMB(pid int) (int64, error) {
	b, err := os.ReadFile(filepath.Join(s.root, strconv.Itoa(pid), "statm"))
	if err != nil {
		return 0, notFound(err)
	}

	var sum int64
	for _, field := range strings.Fields(string(b)) {
		// Same as atoi: garbage counts as zero.
		n, _ := strconv.ParseInt(field, 10, 64)
		sum += n
	}

	return sum / 1024, nil
}

func notFound(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return errors.Wrap(err, "failed to read process stats")
}

// ClockTicks returns the number of clock ticks per second. It falls back to
// 100, the value Linux reports on every common architecture.
func ClockTicks() int64 {
	clk, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil || clk <= 0 {
		return 100
	}
	return clk
}

package usage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pkg/errors"
)

const fakeStat = "%d (worker) S 1263 1269 1263 0 -1 4194304 83 0 0 0 150 50 0 0 20 0 1 0 " +
	"13268 2703360 335 18446744073709551615 94704835719168 94704835739049 140720642437248 " +
	"0 0 0 0 0 0 0 0 0 17 0 0 0 0 0 0 94704835755056 94704835756672 94705754406912 " +
	"140720642438385 140720642438405 140720642438405 140720642441195 0\n"

func writeFakeProc(t *testing.T, root string, pid int, stat, statm string) {
	t.Helper()

	dir := filepath.Join(root, strconv.Itoa(pid))
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal("failed to mkdir:", err)
	}

	if stat != "" {
		if err := os.WriteFile(filepath.Join(dir, "stat"), []byte(stat), 0644); err != nil {
			t.Fatal("failed to write stat:", err)
		}
	}
	if statm != "" {
		if err := os.WriteFile(filepath.Join(dir, "statm"), []byte(statm), 0644); err != nil {
			t.Fatal("failed to write statm:", err)
		}
	}
}

func TestProcSampler(t *testing.T) {
	root := t.TempDir()
	writeFakeProc(t, root, 42, fmtStat(42), "2048 1024 512 256 0 256 0\n")

	s, err := NewProcSampler(root)
	if err != nil {
		t.Fatal("failed to create sampler:", err)
	}

	ticks, err := s.CPUTicks(42)
	if err != nil {
		t.Fatal("failed to sample cpu:", err)
	}
	if ticks != 200 {
		t.Errorf("expected 200 ticks, got %d", ticks)
	}

	mem, err := s.MemoryMB(42)
	if err != nil {
		t.Fatal("failed to sample memory:", err)
	}
	// (2048+1024+512+256+256) / 1024 = 4
	if mem != 4 {
		t.Errorf("expected 4 MB, got %d", mem)
	}
}

func TestProcSamplerNotFound(t *testing.T) {
	s, err := NewProcSampler(t.TempDir())
	if err != nil {
		t.Fatal("failed to create sampler:", err)
	}

	if _, err := s.CPUTicks(7); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for cpu, got %v", err)
	}
	if _, err := s.MemoryMB(7); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for memory, got %v", err)
	}
}

func TestProcSamplerSelf(t *testing.T) {
	if _, err := os.Stat("/proc/self/statm"); err != nil {
		t.Skip("no procfs:", err)
	}

	s, err := NewProcSampler(DefaultMountPoint)
	if err != nil {
		t.Fatal("failed to create sampler:", err)
	}

	if ticks, err := s.CPUTicks(os.Getpid()); err != nil || ticks < 0 {
		t.Errorf("unexpected cpu sample %d: %v", ticks, err)
	}
	if mem, err := s.MemoryMB(os.Getpid()); err != nil || mem < 0 {
		t.Errorf("unexpected memory sample %d: %v", mem, err)
	}
}

func TestClockTicks(t *testing.T) {
	if clk := ClockTicks(); clk <= 0 {
		t.Fatalf("expected positive clock ticks, got %d", clk)
	}
}

func fmtStat(pid int) string {
	return fmt.Sprintf(fakeStat, pid)
}

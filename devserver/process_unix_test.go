//go:build !windows

package devserver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

// processGone reports whether pid has exited. Zombies awaiting a reaper
// count as gone.
func processGone(pid int) bool {
	if err := syscall.Kill(pid, 0); errors.Is(err, syscall.ESRCH) {
		return true
	}
	stat, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return os.IsNotExist(err)
	}
	fields := strings.Fields(string(stat[strings.LastIndexByte(string(stat), ')')+1:]))
	return len(fields) > 0 && fields[0] == "Z"
}

func Test_ProcessLauncher_StopKillsSpawnedChildren(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	l := NewProcessLauncher(ProcessOptions{
		WorkDir: dir,
		Command: []string{"sh", "-c", "sleep 37 & echo $! > child.pid; echo http://localhost:4321; wait"},
		Timeout: 10 * time.Second,
	}, testLogger())
	os.MkdirAll(filepath.Join(dir, "app"), 0755)

	if _, err := l.Start(context.Background(), "app"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "app", "child.pid"))
	if err != nil {
		t.Fatalf("reading child pid: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("parsing child pid %q: %v", data, err)
	}

	if err := l.Stop("app"); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for !processGone(pid) {
		if time.Now().After(deadline) {
			syscall.Kill(pid, syscall.SIGKILL)
			t.Fatalf("child process %d survived Stop", pid)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

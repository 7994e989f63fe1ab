package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func readPID(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read PID file: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("PID file contents %q: %v", data, err)
	}
	return pid
}

func TestManagePIDFile(t *testing.T) {
	for _, lock := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "chess-server.pid")

		cleanup, err := managePIDFile(path, lock)
		if err != nil {
			t.Fatalf("lock=%v: managePIDFile: %v", lock, err)
		}
		if got := readPID(t, path); got != os.Getpid() {
			t.Errorf("lock=%v: PID = %d, want %d", lock, got, os.Getpid())
		}

		cleanup()
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("lock=%v: PID file still present after cleanup", lock)
		}
	}
}

func TestManagePIDFileOverwritesLongerContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess-server.pid")
	if err := os.WriteFile(path, []byte("123456789012345\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cleanup, err := managePIDFile(path, false)
	if err != nil {
		t.Fatalf("managePIDFile: %v", err)
	}
	defer cleanup()

	if got := readPID(t, path); got != os.Getpid() {
		t.Errorf("PID = %d, want %d", got, os.Getpid())
	}
}

func TestManagePIDFileLockedByLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess-server.pid")
	// The parent of the test binary is alive for the duration of the test
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := managePIDFile(path, true); err == nil {
		t.Fatal("managePIDFile took over a PID file owned by a live process")
	}
}

func TestManagePIDFileCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess-server.pid")
	if err := os.WriteFile(path, []byte("not-a-pid"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := managePIDFile(path, true); err == nil {
		t.Fatal("managePIDFile accepted a corrupted PID file")
	}
}

func TestCheckExistingPID(t *testing.T) {
	dir := t.TempDir()

	if err := checkExistingPID(filepath.Join(dir, "absent.pid")); err != nil {
		t.Errorf("missing file: %v", err)
	}

	empty := filepath.Join(dir, "empty.pid")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := checkExistingPID(empty); err != nil {
		t.Errorf("empty file: %v", err)
	}

	own := filepath.Join(dir, "own.pid")
	if err := os.WriteFile(own, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		t.Fatal(err)
	}
	if err := checkExistingPID(own); err != nil {
		t.Errorf("own PID: %v", err)
	}
}

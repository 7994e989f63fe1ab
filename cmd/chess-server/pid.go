package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

var errInstanceRunning = errors.New("another chess-server instance is running")

// pidFile is the on-disk record of this server's process id
type pidFile struct {
	path   string
	file   *os.File
	locked bool
}

// managePIDFile writes the current PID to path. With lock set, the file is
// held under an exclusive flock and a PID file left by a dead process is
// reclaimed, while one owned by a live process refuses startup.
// The returned func removes the file and must run on exit.
func managePIDFile(path string, lock bool) (func(), error) {
	if lock {
		if err := checkExistingPID(path); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open PID file: %w", err)
	}
	p := &pidFile{path: path, file: f}

	if lock {
		if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
			f.Close()
			if errors.Is(err, syscall.EWOULDBLOCK) {
				return nil, errInstanceRunning
			}
			return nil, fmt.Errorf("lock PID file: %w", err)
		}
		p.locked = true
	}

	if err := p.write(os.Getpid()); err != nil {
		p.release()
		return nil, err
	}
	return p.release, nil
}

// write truncates only after the lock is held so a running owner's PID is never clobbered
func (p *pidFile) write(pid int) error {
	if err := p.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate PID file: %w", err)
	}
	if _, err := p.file.WriteAt([]byte(strconv.Itoa(pid)+"\n"), 0); err != nil {
		return fmt.Errorf("write PID: %w", err)
	}
	return p.file.Sync()
}

func (p *pidFile) release() {
	if p.locked {
		syscall.Flock(int(p.file.Fd()), syscall.LOCK_UN)
	}
	p.file.Close()
	os.Remove(p.path)
}

// checkExistingPID fails when path names a process that is still alive.
// Missing, empty or dead-owner files are fine to take over.
func checkExistingPID(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read PID file: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return nil
	}
	pid, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("corrupted PID file %s (contains %q)", path, raw)
	}
	if pid == os.Getpid() {
		return nil
	}

	// FindProcess never fails on Unix; signal 0 probes for existence
	proc, _ := os.FindProcess(pid)
	err = proc.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return fmt.Errorf("%w (pid %d)", errInstanceRunning, pid)
	case errors.Is(err, os.ErrProcessDone), errors.Is(err, syscall.ESRCH):
		return nil
	default:
		return fmt.Errorf("process %d exists but cannot be verified: %w", pid, err)
	}
}

package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const (
	DefaultPath = "stockfish"

	defaultHandshakeTimeout = 5 * time.Second
	closeTimeout            = 1 * time.Second
)

var (
	ErrClosed  = errors.New("engine closed unexpectedly")
	ErrTimeout = errors.New("engine timeout")
)

// UCI is a single engine process spoken to over stdin/stdout
type UCI struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string
	stop  chan struct{}
	eof   chan struct{} // closed once readLoop has returned
	mu    sync.Mutex
	once  sync.Once

	handshakeTimeout time.Duration
}

type SearchResult struct {
	BestMove string
	Ponder   string
	Score    int
	Depth    int
	IsMate   bool
	MateIn   int
}

// New starts the engine binary and completes the uci/uciok handshake.
// The process is bound to ctx: cancelling ctx kills it.
func New(ctx context.Context, path string, args ...string) (*UCI, error) {
	return start(ctx, path, args, defaultHandshakeTimeout)
}

func start(ctx context.Context, path string, args []string, handshake time.Duration) (*UCI, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.WaitDelay = closeTimeout

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	u := &UCI{
		cmd:              cmd,
		stdin:            stdin,
		lines:            make(chan string, 64),
		stop:             make(chan struct{}),
		eof:              make(chan struct{}),
		handshakeTimeout: handshake,
	}
	go u.readLoop(stdout)

	if err := u.initialize(ctx); err != nil {
		u.Close()
		return nil, err
	}

	return u, nil
}

// readLoop is the only reader of stdout. After Close it keeps draining
// so the process never blocks on a full pipe while shutting down.
func (u *UCI) readLoop(r io.Reader) {
	defer close(u.eof)
	defer close(u.lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case u.lines <- scanner.Text():
		case <-u.stop:
		}
	}
}

func (u *UCI) initialize(ctx context.Context) error {
	if err := u.sendCommand("uci"); err != nil {
		return err
	}
	if err := u.waitFor(ctx, u.handshakeTimeout, "uciok"); err != nil {
		return fmt.Errorf("waiting for uciok: %w", err)
	}
	return nil
}

// waitFor consumes output until a line equal to want arrives
func (u *UCI) waitFor(ctx context.Context, timeout time.Duration, want string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		select {
		case line, ok := <-u.lines:
			if !ok {
				return ErrClosed
			}
			if strings.TrimSpace(line) == want {
				return nil
			}
		case <-ctx.Done():
			return ErrTimeout
		}
	}
}

func (u *UCI) sendCommand(cmd string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, err := fmt.Fprintln(u.stdin, cmd); err != nil {
		return fmt.Errorf("write %q: %w", strings.Fields(cmd)[0], err)
	}
	return nil
}

// SetOption sends a setoption command; the engine only acknowledges on the next isready
func (u *UCI) SetOption(name string, value any) error {
	return u.sendCommand(fmt.Sprintf("setoption name %s value %v", name, value))
}

// SetSkillLevel sets the Stockfish skill level (0-20)
func (u *UCI) SetSkillLevel(level int) error {
	if level < 0 {
		level = 0
	} else if level > 20 {
		level = 20
	}
	return u.SetOption("Skill Level", level)
}

// WaitReady round-trips isready/readyok
func (u *UCI) WaitReady(ctx context.Context) error {
	if err := u.sendCommand("isready"); err != nil {
		return err
	}
	if err := u.waitFor(ctx, u.handshakeTimeout, "readyok"); err != nil {
		return fmt.Errorf("waiting for readyok: %w", err)
	}
	return nil
}

func (u *UCI) NewGame(ctx context.Context) error {
	if err := u.sendCommand("ucinewgame"); err != nil {
		return err
	}
	return u.WaitReady(ctx)
}

func (u *UCI) SetPosition(fen string, moves []string) error {
	if strings.ContainsAny(fen, "\r\n") {
		return fmt.Errorf("position contains line breaks")
	}
	cmd := fmt.Sprintf("position fen %s", fen)
	if len(moves) > 0 {
		cmd += " moves " + strings.Join(moves, " ")
	}
	return u.sendCommand(cmd)
}

// Search runs "go movetime" and waits up to moveTime+grace for bestmove
func (u *UCI) Search(ctx context.Context, moveTime, grace time.Duration) (*SearchResult, error) {
	if err := u.sendCommand(fmt.Sprintf("go movetime %d", moveTime.Milliseconds())); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, moveTime+grace)
	defer cancel()

	result := &SearchResult{}
	for {
		select {
		case line, ok := <-u.lines:
			if !ok {
				return nil, ErrClosed
			}
			if strings.HasPrefix(line, "info ") {
				parseInfo(line, result)
				continue
			}
			if strings.HasPrefix(line, "bestmove") {
				parts := strings.Fields(line)
				if len(parts) >= 2 {
					result.BestMove = parts[1]
				}
				if len(parts) >= 4 && parts[2] == "ponder" {
					result.Ponder = parts[3]
				}
				return result, nil
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for bestmove: %w", ErrTimeout)
		}
	}
}

func parseInfo(line string, result *SearchResult) {
	fields := strings.Fields(line)
	for i := 0; i < len(fields)-1; i++ {
		switch fields[i] {
		case "depth":
			fmt.Sscanf(fields[i+1], "%d", &result.Depth)
		case "cp":
			fmt.Sscanf(fields[i+1], "%d", &result.Score)
			result.IsMate = false
		case "mate":
			fmt.Sscanf(fields[i+1], "%d", &result.MateIn)
			result.IsMate = true
			if result.MateIn > 0 {
				result.Score = 100000 - result.MateIn
			} else {
				result.Score = -100000 - result.MateIn
			}
		}
	}
}

// Close asks the engine to quit and kills it if it does not exit in time.
// Wait only runs once stdout has been read to EOF.
// Safe to call more than once.
func (u *UCI) Close() error {
	var err error
	u.once.Do(func() {
		close(u.stop)
		_ = u.sendCommand("quit")
		u.stdin.Close()

		select {
		case <-u.eof:
		case <-time.After(closeTimeout):
			if kerr := u.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
				err = kerr
			}
			// A grandchild holding the pipe open can delay EOF; WaitDelay bounds Wait below
			select {
			case <-u.eof:
			case <-time.After(closeTimeout):
			}
		}

		_ = u.cmd.Wait()
	})
	return err
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultMoveTime = 100 * time.Millisecond
	DefaultGrace    = 1 * time.Second
	DefaultThreads  = 1
	DefaultHashMB   = 16
)

var ErrNoMove = errors.New("engine returned no move")

// Config describes how each engine process is launched and limited
type Config struct {
	Path             string
	Args             []string
	MoveTime         time.Duration
	Grace            time.Duration // extra wait for bestmove on top of MoveTime
	Threads          int
	HashMB           int
	HandshakeTimeout time.Duration
}

// Runner plays one move per call on a freshly started engine process.
// Nothing is shared between calls, so a Runner is safe for concurrent use.
type Runner struct {
	cfg Config
	log zerolog.Logger
}

func NewRunner(cfg Config, log zerolog.Logger) *Runner {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.MoveTime <= 0 {
		cfg.MoveTime = DefaultMoveTime
	}
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultGrace
	}
	if cfg.Threads < 1 {
		cfg.Threads = DefaultThreads
	}
	if cfg.HashMB < 1 {
		cfg.HashMB = DefaultHashMB
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaultHandshakeTimeout
	}
	return &Runner{
		cfg: cfg,
		log: log.With().Str("component", "engine").Logger(),
	}
}

// Play returns the engine's bestmove in UCI notation for fen at the given skill level.
// The process is torn down before Play returns, whatever the outcome.
func (r *Runner) Play(ctx context.Context, fen string, skill int) (string, error) {
	began := time.Now()

	u, err := start(ctx, r.cfg.Path, r.cfg.Args, r.cfg.HandshakeTimeout)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := u.Close(); cerr != nil {
			r.log.Warn().Err(cerr).Msg("engine did not exit cleanly")
		}
		r.log.Debug().Dur("dur", time.Since(began)).Msg("engine process released")
	}()

	if err := r.configure(u, skill); err != nil {
		return "", fmt.Errorf("configure: %w", err)
	}
	if err := u.NewGame(ctx); err != nil {
		return "", fmt.Errorf("configure: %w", err)
	}
	if err := u.SetPosition(fen, nil); err != nil {
		return "", err
	}

	result, err := u.Search(ctx, r.cfg.MoveTime, r.cfg.Grace)
	if err != nil {
		return "", err
	}
	if result.BestMove == "" || result.BestMove == "(none)" {
		return "", ErrNoMove
	}

	r.log.Debug().
		Str("move", result.BestMove).
		Int("skill", skill).
		Int("depth", result.Depth).
		Int("score", result.Score).
		Msg("engine search complete")

	return result.BestMove, nil
}

func (r *Runner) configure(u *UCI, skill int) error {
	if err := u.SetSkillLevel(skill); err != nil {
		return err
	}
	if err := u.SetOption("Threads", r.cfg.Threads); err != nil {
		return err
	}
	return u.SetOption("Hash", r.cfg.HashMB)
}

// Package service turns a position and a skill level into a single move,
// either drawn at random from the legal moves or played by a UCI engine.
package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"chessmove/internal/board"
	"chessmove/internal/server/core"

	"github.com/rs/zerolog"
)

const (
	RandomDifficulty = -1
	MinDifficulty    = RandomDifficulty
	MaxDifficulty    = 20
)

var (
	ErrInvalidDifficulty = errors.New("invalid skill level")
	ErrInvalidPosition   = errors.New("invalid FEN")
	ErrGameAlreadyOver   = errors.New("game is already over")
	ErrNoLegalMoves      = errors.New("no legal moves")
	ErrEngineFailure     = errors.New("engine failed")
	ErrUnknownPromotion  = errors.New("unknown promotion piece")
)

// MoveRequest is a validated-at-the-edge request for one move
type MoveRequest struct {
	FEN        string
	Difficulty int
}

// Player produces a UCI move for a position; engine.Runner is the production implementation
type Player interface {
	Play(ctx context.Context, fen string, skill int) (string, error)
}

// Chooser returns an index in [0, n)
type Chooser func(n int) int

// Service is stateless; concurrent MakeMove calls share nothing but the logger
type Service struct {
	engine Player
	choose Chooser
	log    zerolog.Logger
}

type Option func(*Service)

// WithChooser replaces the random source used for difficulty -1
func WithChooser(c Chooser) Option {
	return func(s *Service) {
		s.choose = c
	}
}

// New creates a service backed by the given engine player
func New(engine Player, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		engine: engine,
		choose: rand.Intn,
		log:    log.With().Str("component", "service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewGame returns the standard starting position
func NewGame() core.NewGameResponse {
	return core.NewGameResponse{FEN: board.StartingFEN}
}

// MakeMove validates the request, selects a move and formats it for the wire
func (s *Service) MakeMove(ctx context.Context, req MoveRequest) (core.MoveResponse, error) {
	start := time.Now()
	log := s.log.With().Str("fen", req.FEN).Int("skill", req.Difficulty).Logger()

	g, err := Validate(req)
	if err != nil {
		if errors.Is(err, ErrNoLegalMoves) {
			log.Error().Err(err).Msg("rules layer reports an ongoing game without legal moves")
		} else {
			log.Debug().Err(err).Msg("move request rejected")
		}
		return core.MoveResponse{}, err
	}

	m, err := s.SelectMove(ctx, g, req.Difficulty)
	if err != nil {
		log.Warn().Err(err).Dur("dur", time.Since(start)).Msg("move selection failed")
		return core.MoveResponse{}, err
	}

	resp, err := FormatMove(m)
	if err != nil {
		log.Error().Err(err).Msg("selected move cannot be formatted")
		return core.MoveResponse{}, err
	}

	log.Info().Str("move", resp.UCI()).Dur("dur", time.Since(start)).Msg("move selected")
	return resp, nil
}

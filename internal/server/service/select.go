package service

import (
	"context"
	"fmt"

	"chessmove/internal/board"

	"github.com/notnil/chess"
)

// SelectMove picks a legal move for g: uniformly at random for RandomDifficulty,
// otherwise from the engine at that skill level. Engine errors are wrapped in
// ErrEngineFailure and never retried.
func (s *Service) SelectMove(ctx context.Context, g *chess.Game, difficulty int) (*chess.Move, error) {
	if difficulty == RandomDifficulty {
		return s.randomMove(g)
	}

	if s.engine == nil {
		return nil, fmt.Errorf("%w: no engine configured", ErrEngineFailure)
	}

	uci, err := s.engine.Play(ctx, g.Position().String(), difficulty)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineFailure, err)
	}

	m, err := board.FindMove(g, uci)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineFailure, err)
	}
	return m, nil
}

func (s *Service) randomMove(g *chess.Game) (*chess.Move, error) {
	moves := g.ValidMoves()
	if len(moves) == 0 {
		return nil, ErrNoLegalMoves
	}

	i := s.choose(len(moves))
	if i < 0 || i >= len(moves) {
		return nil, fmt.Errorf("chooser returned index %d for %d moves", i, len(moves))
	}
	return moves[i], nil
}

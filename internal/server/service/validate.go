package service

import (
	"fmt"

	"chessmove/internal/board"

	"github.com/notnil/chess"
)

// Validate checks the difficulty range and the position, returning the parsed game.
// A position the rules layer reports as finished is rejected; an unfinished
// position without legal moves is an invariant violation (ErrNoLegalMoves).
func Validate(req MoveRequest) (*chess.Game, error) {
	if req.Difficulty < MinDifficulty || req.Difficulty > MaxDifficulty {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidDifficulty, req.Difficulty, MinDifficulty, MaxDifficulty)
	}

	g, err := board.Load(req.FEN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}

	if board.IsOver(g) {
		return nil, fmt.Errorf("%w: %s", ErrGameAlreadyOver, board.OverReason(g))
	}

	if len(g.ValidMoves()) == 0 {
		return nil, ErrNoLegalMoves
	}

	return g, nil
}

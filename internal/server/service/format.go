package service

import (
	"fmt"

	"chessmove/internal/server/core"

	"github.com/notnil/chess"
)

var promotionCodes = map[chess.PieceType]string{
	chess.Queen:  "q",
	chess.Rook:   "r",
	chess.Bishop: "b",
	chess.Knight: "n",
}

// FormatMove converts a rules-layer move into the wire shape
func FormatMove(m *chess.Move) (core.MoveResponse, error) {
	if m == nil {
		return core.MoveResponse{}, fmt.Errorf("nil move")
	}

	resp := core.MoveResponse{
		From: m.S1().String(),
		To:   m.S2().String(),
	}

	if promo := m.Promo(); promo != chess.NoPieceType {
		code, ok := promotionCodes[promo]
		if !ok {
			return core.MoveResponse{}, fmt.Errorf("%w: %v", ErrUnknownPromotion, promo)
		}
		resp.Promotion = &code
	}

	return resp, nil
}

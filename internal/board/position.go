package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

var ErrInconsistent = errors.New("inconsistent position")

// fenDefaults fills trailing FEN fields that may be omitted: turn, castling,
// en passant, halfmove clock and fullmove number.
var fenDefaults = []string{"w", "-", "-", "0", "1"}

// normalizeFEN collapses runs of whitespace and fills omitted trailing fields
func normalizeFEN(fen string) (string, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return "", errors.New("empty FEN")
	}
	if len(fields) > 6 {
		return "", fmt.Errorf("FEN has %d fields, want at most 6", len(fields))
	}
	fields = append(fields, fenDefaults[len(fields)-1:]...)
	return strings.Join(fields, " "), nil
}

// checkPosition rejects positions the FEN grammar allows but the rules do not:
// missing or extra kings, pawns on a back rank, more than 8 pawns or 16 pieces
// a side, castling rights without the king and rook at home, an impossible en
// passant square and the side not to move standing in check.
func checkPosition(pos *chess.Position) error {
	squares := pos.Board().SquareMap()

	var kings, pawns, pieces [2]int
	kingSq := [2]chess.Square{chess.NoSquare, chess.NoSquare}
	for sq, p := range squares {
		if p == chess.NoPiece {
			continue
		}
		side := colorIndex(p.Color())
		pieces[side]++
		switch p.Type() {
		case chess.King:
			kings[side]++
			kingSq[side] = sq
		case chess.Pawn:
			pawns[side]++
			if sq.Rank() == chess.Rank1 || sq.Rank() == chess.Rank8 {
				return fmt.Errorf("%w: pawn on %s", ErrInconsistent, sq)
			}
		}
	}

	for _, c := range []chess.Color{chess.White, chess.Black} {
		i := colorIndex(c)
		switch {
		case kings[i] != 1:
			return fmt.Errorf("%w: %s has %d kings", ErrInconsistent, colorName(c), kings[i])
		case pawns[i] > 8:
			return fmt.Errorf("%w: %s has %d pawns", ErrInconsistent, colorName(c), pawns[i])
		case pieces[i] > 16:
			return fmt.Errorf("%w: %s has %d pieces", ErrInconsistent, colorName(c), pieces[i])
		}
	}

	if err := checkCastling(pos, squares); err != nil {
		return err
	}
	if err := checkEnPassant(pos, squares); err != nil {
		return err
	}

	waiting := pos.Turn().Other()
	if attacked(squares, kingSq[colorIndex(waiting)], pos.Turn()) {
		return fmt.Errorf("%w: %s is in check but not to move", ErrInconsistent, colorName(waiting))
	}
	return nil
}

func checkCastling(pos *chess.Position, squares map[chess.Square]chess.Piece) error {
	rights := pos.CastleRights()
	homes := []struct {
		color chess.Color
		side  chess.Side
		king  chess.Square
		rook  chess.Square
	}{
		{chess.White, chess.KingSide, chess.E1, chess.H1},
		{chess.White, chess.QueenSide, chess.E1, chess.A1},
		{chess.Black, chess.KingSide, chess.E8, chess.H8},
		{chess.Black, chess.QueenSide, chess.E8, chess.A8},
	}
	for _, h := range homes {
		if !rights.CanCastle(h.color, h.side) {
			continue
		}
		king := chess.NewPiece(chess.King, h.color)
		rook := chess.NewPiece(chess.Rook, h.color)
		if squares[h.king] != king || squares[h.rook] != rook {
			return fmt.Errorf("%w: castling rights %q without king and rook at home", ErrInconsistent, rights)
		}
	}
	return nil
}

// checkEnPassant requires the square to sit behind a pawn that could just have
// made a double step, with both the square and the pawn's origin empty.
func checkEnPassant(pos *chess.Position, squares map[chess.Square]chess.Piece) error {
	ep := pos.EnPassantSquare()
	if ep == chess.NoSquare {
		return nil
	}

	epRank, pawnRank, originRank := chess.Rank6, chess.Rank5, chess.Rank7
	if pos.Turn() == chess.Black {
		epRank, pawnRank, originRank = chess.Rank3, chess.Rank4, chess.Rank2
	}
	mover := pos.Turn().Other()

	bad := ep.Rank() != epRank ||
		squares[chess.NewSquare(ep.File(), pawnRank)] != chess.NewPiece(chess.Pawn, mover) ||
		squares[ep] != chess.NoPiece ||
		squares[chess.NewSquare(ep.File(), originRank)] != chess.NoPiece
	if bad {
		return fmt.Errorf("%w: impossible en passant square %s", ErrInconsistent, ep)
	}
	return nil
}

var (
	knightJumps = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	straight    = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal    = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// attacked reports whether any piece of color by attacks target
func attacked(squares map[chess.Square]chess.Piece, target chess.Square, by chess.Color) bool {
	f, r := int(target.File()), int(target.Rank())

	at := func(df, dr int) chess.Piece {
		nf, nr := f+df, r+dr
		if nf < 0 || nf > 7 || nr < 0 || nr > 7 {
			return chess.NoPiece
		}
		return squares[chess.NewSquare(chess.File(nf), chess.Rank(nr))]
	}

	// A white pawn attacks upward, so it sits one rank below its target
	pawnDir := -1
	if by == chess.Black {
		pawnDir = 1
	}
	pawn := chess.NewPiece(chess.Pawn, by)
	if at(-1, pawnDir) == pawn || at(1, pawnDir) == pawn {
		return true
	}

	for _, d := range knightJumps {
		if at(d[0], d[1]) == chess.NewPiece(chess.Knight, by) {
			return true
		}
	}
	for _, d := range kingSteps {
		if at(d[0], d[1]) == chess.NewPiece(chess.King, by) {
			return true
		}
	}

	slide := func(dirs [][2]int, slider chess.PieceType) bool {
		for _, d := range dirs {
			for step := 1; step < 8; step++ {
				p := at(d[0]*step, d[1]*step)
				if p == chess.NoPiece {
					if f+d[0]*step < 0 || f+d[0]*step > 7 || r+d[1]*step < 0 || r+d[1]*step > 7 {
						break
					}
					continue
				}
				if p.Color() == by && (p.Type() == slider || p.Type() == chess.Queen) {
					return true
				}
				break
			}
		}
		return false
	}
	return slide(straight, chess.Rook) || slide(diagonal, chess.Bishop)
}

func colorIndex(c chess.Color) int {
	if c == chess.White {
		return 0
	}
	return 1
}

func colorName(c chess.Color) string {
	if c == chess.White {
		return "white"
	}
	return "black"
}

package board

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Load parses a FEN string into a game positioned at that FEN.
// Omitted trailing fields take their usual defaults, and positions that parse
// but cannot arise in a game are rejected with ErrInconsistent.
// Moves on the returned game are read and applied in UCI notation.
func Load(fen string) (*chess.Game, error) {
	normalized, err := normalizeFEN(fen)
	if err != nil {
		return nil, err
	}
	opt, err := chess.FEN(normalized)
	if err != nil {
		return nil, err
	}
	g := chess.NewGame(opt, chess.UseNotation(chess.UCINotation{}))
	if err := checkPosition(g.Position()); err != nil {
		return nil, err
	}
	return g, nil
}

// IsOver reports whether the rules layer considers the game finished
func IsOver(g *chess.Game) bool {
	return g.Outcome() != chess.NoOutcome
}

// OverReason names the method that ended the game, empty while ongoing
func OverReason(g *chess.Game) string {
	switch g.Method() {
	case chess.Checkmate:
		return "checkmate"
	case chess.Stalemate:
		return "stalemate"
	case chess.InsufficientMaterial:
		return "insufficient material"
	case chess.SeventyFiveMoveRule:
		return "seventy-five move rule"
	case chess.FivefoldRepetition:
		return "fivefold repetition"
	case chess.NoMethod:
		return ""
	default:
		return "game over"
	}
}

// FindMove decodes a UCI move string and returns the matching legal move.
// Moves that decode but are not legal in the position are rejected.
func FindMove(g *chess.Game, uci string) (*chess.Move, error) {
	decoded, err := chess.UCINotation{}.Decode(g.Position(), uci)
	if err != nil {
		return nil, err
	}
	for _, m := range g.ValidMoves() {
		if m.S1() == decoded.S1() && m.S2() == decoded.S2() && m.Promo() == decoded.Promo() {
			return m, nil
		}
	}
	return nil, fmt.Errorf("illegal move %q in position %s", uci, g.Position().String())
}

// ToASCII creates an ASCII representation of the board
func ToASCII(g *chess.Game) string {
	squares := g.Position().Board().SquareMap()

	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 7; r >= 0; r-- {
		sb.WriteString(fmt.Sprintf("%d ", r+1))
		for f := 0; f < 8; f++ {
			sq := chess.NewSquare(chess.File(f), chess.Rank(r))
			piece, ok := squares[sq]
			if !ok || piece == chess.NoPiece {
				sb.WriteString(". ")
				continue
			}
			sb.WriteString(fmt.Sprintf("%c ", pieceLetter(piece)))
		}
		sb.WriteString(fmt.Sprintf(" %d\n", r+1))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}

// pieceLetter returns the FEN letter: uppercase white, lowercase black
func pieceLetter(p chess.Piece) byte {
	var c byte
	switch p.Type() {
	case chess.King:
		c = 'k'
	case chess.Queen:
		c = 'q'
	case chess.Rook:
		c = 'r'
	case chess.Bishop:
		c = 'b'
	case chess.Knight:
		c = 'n'
	case chess.Pawn:
		c = 'p'
	default:
		return '?'
	}
	if p.Color() == chess.White {
		c -= 'a' - 'A'
	}
	return c
}

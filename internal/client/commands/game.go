package commands

import (
	"fmt"
	"strconv"
	"strings"

	"chessmove/internal/board"
	"chessmove/internal/client/display"
	"chessmove/internal/server/core"

	"github.com/notnil/chess"
)

const randomSkill = -1

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Reset to the server's starting position",
		Usage:       "new",
		Group:       groupGame,
		Handler:     newGameHandler,
	})

	r.Register(&Command{
		Name:        "fen",
		ShortName:   "f",
		Description: "Show or set the current position",
		Usage:       "fen [fen]",
		Group:       groupGame,
		Handler:     fenHandler,
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Ask the engine for a move and apply it",
		Usage:       "move [skill 0-20]",
		Group:       groupGame,
		Handler:     engineMoveHandler,
	})

	r.Register(&Command{
		Name:        "random",
		ShortName:   "r",
		Description: "Ask for a random legal move and apply it",
		Usage:       "random",
		Group:       groupGame,
		Handler:     randomMoveHandler,
	})

	r.Register(&Command{
		Name:        "play",
		ShortName:   "p",
		Description: "Apply your own move locally",
		Usage:       "play <uci-move>",
		Group:       groupGame,
		Handler:     playHandler,
	})

	r.Register(&Command{
		Name:        "board",
		ShortName:   "b",
		Description: "Show the board",
		Usage:       "board",
		Group:       groupGame,
		Handler:     boardHandler,
	})
}

func newGameHandler(s *Session, args []string) error {
	resp, err := s.Client.NewGame()
	if err != nil {
		return err
	}
	s.FEN = resp.FEN
	return boardHandler(s, nil)
}

// fenHandler accepts positions the local rules reject so server-side validation can be probed
func fenHandler(s *Session, args []string) error {
	if len(args) == 0 {
		s.printf("%s\n", s.FEN)
		return nil
	}

	s.FEN = strings.Join(args, " ")
	if _, err := board.Load(s.FEN); err != nil {
		s.printf("%sWarning: position does not parse locally: %s%s\n", display.Yellow, err, display.Reset)
		return nil
	}
	return boardHandler(s, nil)
}

func engineMoveHandler(s *Session, args []string) error {
	var skill *int
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("skill must be an integer: %q", args[0])
		}
		skill = &n
	}
	return requestMove(s, skill)
}

func randomMoveHandler(s *Session, args []string) error {
	skill := randomSkill
	return requestMove(s, &skill)
}

func requestMove(s *Session, skill *int) error {
	resp, err := s.Client.EngineMove(s.FEN, skill)
	if err != nil {
		return err
	}
	s.printf("%sMove: %s%s\n", display.Green, describeMove(resp), display.Reset)
	return applyMove(s, resp.UCI())
}

func playHandler(s *Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: play <uci-move>")
	}
	return applyMove(s, strings.ToLower(args[0]))
}

func boardHandler(s *Session, args []string) error {
	g, err := board.Load(s.FEN)
	if err != nil {
		return fmt.Errorf("current position does not parse: %w", err)
	}
	s.printf("\n")
	display.RenderBoard(s.Out, board.ToASCII(g))
	s.printf("Turn: %s\n", display.ColorForTurn(g.Position().Turn() == chess.White))
	if board.IsOver(g) {
		s.printf("%sGame over: %s%s\n", display.Magenta, board.OverReason(g), display.Reset)
	}
	return nil
}

// applyMove advances the session position by a UCI move
func applyMove(s *Session, uci string) error {
	g, err := board.Load(s.FEN)
	if err != nil {
		return fmt.Errorf("current position does not parse: %w", err)
	}
	m, err := board.FindMove(g, uci)
	if err != nil {
		return err
	}
	if err := g.Move(m); err != nil {
		return err
	}
	s.FEN = g.Position().String()
	return boardHandler(s, nil)
}

func describeMove(m *core.MoveResponse) string {
	if m.Promotion != nil {
		return fmt.Sprintf("%s -> %s (=%s)", m.From, m.To, *m.Promotion)
	}
	return fmt.Sprintf("%s -> %s", m.From, m.To)
}

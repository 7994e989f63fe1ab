// Package main implements an interactive debugging client for the chess move server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chessmove/internal/client/api"
	"chessmove/internal/client/commands"
	"chessmove/internal/client/display"

	"github.com/chzyer/readline"
)

func main() {
	baseURL := flag.String("url", api.DefaultBaseURL, "API base URL")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Parse()

	if *noColor {
		display.DisableColors()
	} else {
		display.AutoColors()
	}

	s := commands.NewSession(api.New(*baseURL, os.Stdout), os.Stdout)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chess"),
		HistoryFile:     ".chess_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sChess Move Debug Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.Client.BaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for !s.Quit {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Trailing -v switches on verbose output for one command
		if strings.HasSuffix(line, " -v") {
			s.Verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.Verbose = false
		}

		_ = registry.Execute(line)
	}
}

// buildPrompt shows side to move and the move number from the session FEN
func buildPrompt(s *commands.Session) string {
	fields := strings.Fields(s.FEN)
	if len(fields) < 6 {
		return display.Prompt("chess")
	}
	return display.Prompt(fmt.Sprintf("chess [%s %s%s]",
		display.ColorForTurn(fields[1] == "w"), display.Yellow, fields[5]))
}

// Package commands holds the debug client's command set and the session it mutates.
package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"chessmove/internal/board"
	"chessmove/internal/client/api"
	"chessmove/internal/client/display"
)

// Session is the REPL state shared by every command
type Session struct {
	Client  *api.Client
	Out     io.Writer
	FEN     string
	Verbose bool
	Quit    bool
}

func NewSession(client *api.Client, out io.Writer) *Session {
	return &Session{
		Client: client,
		Out:    out,
		FEN:    board.StartingFEN,
	}
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Group       string
	Handler     func(*Session, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *Session
	commands map[string]*Command
}

func NewRegistry(session *Session) *Registry {
	r := &Registry{
		session:  session,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Group:       groupUtility,
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Group:       groupUtility,
		Handler:     exitHandler,
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Execute runs one input line. Errors are printed and also returned.
func (r *Registry) Execute(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd, exists := r.commands[parts[0]]
	if !exists {
		r.session.printf("%sUnknown command: %s%s\n", display.Red, parts[0], display.Reset)
		r.session.printf("Type 'help' for available commands\n")
		return fmt.Errorf("unknown command: %s", parts[0])
	}

	r.session.Client.Verbose = r.session.Verbose

	if err := cmd.Handler(r.session, parts[1:]); err != nil {
		r.session.printf("%sError: %s%s\n", display.Red, err.Error(), display.Reset)
		return err
	}
	return nil
}

const (
	groupGame    = "Game Commands"
	groupUtility = "Utility Commands"
)

func (r *Registry) helpHandler(s *Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		s.printf("\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			s.printf("Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		s.printf("Usage: %s\n", cmd.Usage)
		return nil
	}

	s.printf("\n%sAvailable Commands:%s\n", display.Cyan, display.Reset)
	for _, group := range []string{groupGame, groupUtility} {
		var cmds []*Command
		for key, cmd := range r.commands {
			if key == cmd.Name && cmd.Group == group {
				cmds = append(cmds, cmd)
			}
		}
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })

		s.printf("\n%s%s:%s\n", display.Yellow, group, display.Reset)
		for _, cmd := range cmds {
			shortPart := "    "
			if cmd.ShortName != "" {
				shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
			}
			s.printf("  %s%-8s %s\n", shortPart, cmd.Name, cmd.Description)
		}
	}

	s.printf("\nType 'help <command>' for detailed usage\n")
	s.printf("Add '-v' to any command for verbose output\n")
	return nil
}

func exitHandler(s *Session, args []string) error {
	s.printf("%sGoodbye!%s\n", display.Cyan, display.Reset)
	s.Quit = true
	return nil
}

package commands

import (
	"strings"

	"chessmove/internal/client/display"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Group:       groupUtility,
		Handler:     healthHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or set API base URL",
		Usage:       "url [apiUrl]",
		Group:       groupUtility,
		Handler:     urlHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Group:       groupUtility,
		Handler:     clearHandler,
	})
}

func healthHandler(s *Session, args []string) error {
	resp, err := s.Client.Health()
	if err != nil {
		return err
	}
	s.printf("%sServer Health:%s %s\n", display.Cyan, display.Reset, resp.Status)
	return nil
}

func urlHandler(s *Session, args []string) error {
	if len(args) == 0 {
		s.printf("Current API URL: %s\n", s.Client.BaseURL)
		return nil
	}

	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	s.Client.SetBaseURL(url)

	s.printf("%sAPI URL set to: %s%s\n", display.Cyan, s.Client.BaseURL, display.Reset)
	return nil
}

func clearHandler(s *Session, args []string) error {
	s.printf("\033[H\033[2J")
	return nil
}

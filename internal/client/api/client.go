// Package api is a thin HTTP client for the move server, used by the debug REPL.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chessmove/internal/client/display"
	"chessmove/internal/server/core"
)

const DefaultBaseURL = "http://localhost:8080"

// Error is a non-2xx answer from the server
type Error struct {
	Status int
	Body   core.ErrorResponse
}

func (e *Error) Error() string {
	if e.Body.Code == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (%s, status %d)", e.Body.Error, e.Body.Code, e.Status)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Out        io.Writer
	Verbose    bool
}

func New(baseURL string, out io.Writer) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Out: out,
	}
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) doRequest(method, path string, body, result any) error {
	var bodyReader io.Reader
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	fmt.Fprintf(c.Out, "\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if c.Verbose && payload != nil {
		fmt.Fprintf(c.Out, "%sRequest Body:%s\n%s\n", display.Cyan, display.Reset, indent(payload))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	fmt.Fprintf(c.Out, "%s[%d %s]%s", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)
	if id := resp.Header.Get("X-Request-ID"); id != "" && c.Verbose {
		fmt.Fprintf(c.Out, " %s", id)
	}
	fmt.Fprintln(c.Out)

	if c.Verbose && len(respBody) > 0 {
		fmt.Fprintf(c.Out, "%sResponse Body:%s\n%s\n", display.Cyan, display.Reset, indent(respBody))
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode}
		// Non-JSON error bodies (proxies, 404 pages) still yield an *Error
		_ = json.Unmarshal(respBody, &apiErr.Body)
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func indent(raw []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}

// API Methods

func (c *Client) Health() (*core.HealthResponse, error) {
	var resp core.HealthResponse
	err := c.doRequest("GET", "/health", nil, &resp)
	return &resp, err
}

func (c *Client) NewGame() (*core.NewGameResponse, error) {
	var resp core.NewGameResponse
	err := c.doRequest("GET", "/new-game", nil, &resp)
	return &resp, err
}

// EngineMove asks the server for a move in fen; a nil skill lets the server pick its default
func (c *Client) EngineMove(fen string, skill *int) (*core.MoveResponse, error) {
	req := &core.EngineMoveRequest{FEN: &fen, SkillLevel: skill}
	var resp core.MoveResponse
	if err := c.doRequest("POST", "/engine-move", req, &resp); err != nil {
		return nil, err
	}
	if resp.From == "" || resp.To == "" {
		return nil, errors.New("server returned an empty move")
	}
	return &resp, nil
}

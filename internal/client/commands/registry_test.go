package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chessmove/internal/board"
	"chessmove/internal/client/api"
	"chessmove/internal/client/display"
)

// fenAfter plays uci from the starting position with the rules library
func fenAfter(t *testing.T, uci string) string {
	t.Helper()
	g, err := board.Load(board.StartingFEN)
	if err != nil {
		t.Fatal(err)
	}
	m, err := board.FindMove(g, uci)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Move(m); err != nil {
		t.Fatal(err)
	}
	return g.Position().String()
}

// fakeServer answers /engine-move with the given UCI move
func fakeServer(t *testing.T, move string, seen *[]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.Write([]byte(`{"status":"ok"}`))
		case "/new-game":
			w.Write([]byte(`{"fen":"` + board.StartingFEN + `"}`))
		case "/engine-move":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if seen != nil {
				*seen = append(*seen, body)
			}
			resp := map[string]any{"from": move[:2], "to": move[2:4], "promotion": nil}
			if len(move) == 5 {
				resp["promotion"] = move[4:]
			}
			json.NewEncoder(w).Encode(resp)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRegistry(t *testing.T, srv *httptest.Server) (*Registry, *Session, *bytes.Buffer) {
	t.Helper()
	display.DisableColors()
	var out bytes.Buffer
	s := NewSession(api.New(srv.URL, &out), &out)
	return NewRegistry(s), s, &out
}

func TestEngineMoveAdvancesPosition(t *testing.T) {
	var seen []map[string]any
	r, s, out := newTestRegistry(t, fakeServer(t, "e2e4", &seen))
	afterE4 := fenAfter(t, "e2e4")

	if err := r.Execute("move 7"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if s.FEN != afterE4 {
		t.Errorf("FEN = %q, want %q", s.FEN, afterE4)
	}
	if len(seen) != 1 || seen[0]["skill_level"] != float64(7) || seen[0]["fen"] != board.StartingFEN {
		t.Errorf("request bodies = %v", seen)
	}
	if !strings.Contains(out.String(), "e2 -> e4") {
		t.Errorf("output missing move:\n%s", out.String())
	}
}

func TestRandomSendsMinusOne(t *testing.T) {
	var seen []map[string]any
	r, _, _ := newTestRegistry(t, fakeServer(t, "g1f3", &seen))

	if err := r.Execute("r"); err != nil {
		t.Fatalf("random: %v", err)
	}
	if len(seen) != 1 || seen[0]["skill_level"] != float64(-1) {
		t.Errorf("request bodies = %v", seen)
	}
}

func TestIllegalServerMoveKeepsPosition(t *testing.T) {
	r, s, _ := newTestRegistry(t, fakeServer(t, "e2e5", nil))

	if err := r.Execute("move"); err == nil {
		t.Fatal("illegal move was applied")
	}
	if s.FEN != board.StartingFEN {
		t.Errorf("FEN changed to %q", s.FEN)
	}
}

func TestPlayAndFen(t *testing.T) {
	r, s, out := newTestRegistry(t, fakeServer(t, "e2e4", nil))
	afterE4 := fenAfter(t, "e2e4")

	if err := r.Execute("play E2E4"); err != nil {
		t.Fatalf("play: %v", err)
	}
	if s.FEN != afterE4 {
		t.Errorf("FEN = %q", s.FEN)
	}

	out.Reset()
	if err := r.Execute("fen"); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != afterE4 {
		t.Errorf("fen printed %q", out.String())
	}

	if err := r.Execute("fen not a position"); err != nil {
		t.Fatalf("fen with unparsable position: %v", err)
	}
	if s.FEN != "not a position" {
		t.Errorf("FEN = %q", s.FEN)
	}

	if err := r.Execute("new"); err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.FEN != board.StartingFEN {
		t.Errorf("FEN after new = %q", s.FEN)
	}
}

func TestUnknownCommandAndExit(t *testing.T) {
	r, s, _ := newTestRegistry(t, fakeServer(t, "e2e4", nil))

	if err := r.Execute("castle"); err == nil {
		t.Error("unknown command succeeded")
	}
	if err := r.Execute("help move"); err != nil {
		t.Errorf("help move: %v", err)
	}
	if err := r.Execute("x"); err != nil || !s.Quit {
		t.Errorf("exit: err=%v quit=%v", err, s.Quit)
	}
}

func TestURLNormalizes(t *testing.T) {
	r, s, _ := newTestRegistry(t, fakeServer(t, "e2e4", nil))

	if err := r.Execute("url example.com:8080/"); err != nil {
		t.Fatal(err)
	}
	if s.Client.BaseURL != "http://example.com:8080" {
		t.Errorf("BaseURL = %q", s.Client.BaseURL)
	}
}

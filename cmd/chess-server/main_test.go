package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

// serve starts app on an ephemeral port and returns its URL and exit channel
func serve(t *testing.T, app *fiber.App) (string, <-chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- app.Listener(ln) }()

	url := "http://" + ln.Addr().String() + "/ping"
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := (&http.Client{Timeout: time.Second}).Get(url)
		if err == nil {
			resp.Body.Close()
			return url, done
		}
		if time.Now().After(deadline) {
			t.Fatalf("app never started serving: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func newPingApp() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	return app
}

func TestShutdownAllStopsEveryApp(t *testing.T) {
	api, web := newPingApp(), newPingApp()
	apiURL, apiDone := serve(t, api)
	webURL, webDone := serve(t, web)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// nil stands in for a disabled web UI
	if err := shutdownAll(ctx, api, nil, web); err != nil {
		t.Fatalf("shutdownAll: %v", err)
	}

	for name, done := range map[string]<-chan error{"api": apiDone, "web": webDone} {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Errorf("%s app still serving after shutdown", name)
		}
	}

	client := &http.Client{Timeout: time.Second}
	for _, url := range []string{apiURL, webURL} {
		if resp, err := client.Get(url); err == nil {
			resp.Body.Close()
			t.Errorf("%s still answers after shutdown", url)
		}
	}
}

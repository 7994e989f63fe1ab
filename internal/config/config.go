// Package config resolves server settings from flags, the environment and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"chessmove/internal/engine"

	"github.com/joho/godotenv"
)

const (
	EnvAPIHost        = "CHESS_API_HOST"
	EnvAPIPort        = "CHESS_API_PORT"
	EnvAllowedOrigins = "CHESS_ALLOWED_ORIGINS"
	EnvEnginePath     = "STOCKFISH_PATH"
	EnvMoveTime       = "CHESS_MOVE_TIME"
	EnvLogLevel       = "CHESS_LOG_LEVEL"

	defaultAllowedOrigins = "http://localhost:5173"
	defaultRateLimit      = 10 // req/sec
)

type Config struct {
	APIHost        string
	APIPort        int
	AllowedOrigins []string
	Dev            bool
	RateLimit      int
	LogLevel       string

	Engine engine.Config

	PIDPath string
	PIDLock bool

	Serve   bool
	WebHost string
	WebPort int
	WebDir  string
}

// Load reads an optional .env file (existing environment wins), then parses args.
// Flag values override environment values, which override defaults.
func Load(args []string, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return parse(args, os.Getenv)
}

func parse(args []string, getenv func(string) string) (*Config, error) {
	port, err := envInt(getenv, EnvAPIPort, 8080)
	if err != nil {
		return nil, err
	}
	moveTime, err := envDuration(getenv, EnvMoveTime, engine.DefaultMoveTime)
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("chess-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		cfg     Config
		origins string
	)

	// API server flags
	fs.StringVar(&cfg.APIHost, "api-host", envString(getenv, EnvAPIHost, "localhost"), "API server host")
	fs.IntVar(&cfg.APIPort, "api-port", port, "API server port")
	fs.StringVar(&origins, "allowed-origins", envString(getenv, EnvAllowedOrigins, defaultAllowedOrigins), "Comma-separated CORS origins")
	fs.BoolVar(&cfg.Dev, "dev", false, "Development mode (relaxed rate limits)")
	fs.IntVar(&cfg.RateLimit, "rate-limit", defaultRateLimit, "Move requests per second per IP")
	fs.StringVar(&cfg.LogLevel, "log-level", envString(getenv, EnvLogLevel, "info"), "Log level (debug, info, warn, error)")

	// Engine flags
	fs.StringVar(&cfg.Engine.Path, "engine-path", envString(getenv, EnvEnginePath, engine.DefaultPath), "UCI engine binary")
	fs.DurationVar(&cfg.Engine.MoveTime, "move-time", moveTime, "Engine time budget per move")
	fs.DurationVar(&cfg.Engine.Grace, "engine-grace", engine.DefaultGrace, "Extra wait for bestmove beyond move-time")
	fs.IntVar(&cfg.Engine.Threads, "engine-threads", engine.DefaultThreads, "Engine Threads option")
	fs.IntVar(&cfg.Engine.HashMB, "engine-hash", engine.DefaultHashMB, "Engine Hash option in MB")

	// Process flags
	fs.StringVar(&cfg.PIDPath, "pid", "", "Optional path to write PID file")
	fs.BoolVar(&cfg.PIDLock, "pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")

	// Web UI server flags
	fs.BoolVar(&cfg.Serve, "serve", false, "Enable static web UI server")
	fs.StringVar(&cfg.WebHost, "web-host", "localhost", "Web UI server host")
	fs.IntVar(&cfg.WebPort, "web-port", 9090, "Web UI server port")
	fs.StringVar(&cfg.WebDir, "web-dir", "web", "Directory with the built web UI")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.AllowedOrigins = splitList(origins)
	if cfg.Dev {
		cfg.RateLimit *= 2
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.APIPort < 1 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("api-port %d out of range", c.APIPort))
	}
	if c.Serve && (c.WebPort < 1 || c.WebPort > 65535) {
		errs = append(errs, fmt.Errorf("web-port %d out of range", c.WebPort))
	}
	if c.PIDLock && c.PIDPath == "" {
		errs = append(errs, errors.New("-pid-lock requires -pid"))
	}
	if strings.TrimSpace(c.Engine.Path) == "" {
		errs = append(errs, errors.New("engine-path is empty"))
	}
	if c.Engine.MoveTime <= 0 {
		errs = append(errs, fmt.Errorf("move-time %s must be positive", c.Engine.MoveTime))
	}
	if c.Engine.Threads < 1 {
		errs = append(errs, fmt.Errorf("engine-threads %d must be at least 1", c.Engine.Threads))
	}
	if c.Engine.HashMB < 1 {
		errs = append(errs, fmt.Errorf("engine-hash %d must be at least 1", c.Engine.HashMB))
	}
	if c.RateLimit < 1 {
		errs = append(errs, fmt.Errorf("rate-limit %d must be at least 1", c.RateLimit))
	}
	if len(c.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("allowed-origins is empty"))
	}
	return errors.Join(errs...)
}

// APIAddr returns host:port for the API listener
func (c *Config) APIAddr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

func envString(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(getenv func(string) string, key string, def int) (int, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

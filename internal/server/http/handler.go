package http

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"chessmove/internal/server/core"
	"chessmove/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// Options tunes the HTTP facade; zero values fall back to safe defaults
type Options struct {
	AllowedOrigins []string
	RateLimit      int       // engine-move requests per second per IP
	AccessLog      io.Writer // nil means stdout
}

// HTTPHandler handles HTTP requests and routes them to the move service
type HTTPHandler struct {
	svc *service.Service
}

func NewHTTPHandler(svc *service.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func NewFiberApp(svc *service.Service, opts Options) *fiber.App {
	h := NewHTTPHandler(svc)

	if opts.RateLimit < 1 {
		opts.RateLimit = 10
	}
	if opts.AccessLog == nil {
		opts.AccessLog = os.Stdout
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           30 * time.Second,
		DisableStartupMessage: true,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency} ${locals:requestid}\n",
		Output: opts.AccessLog,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(opts.AllowedOrigins, ","),
		AllowMethods: "GET,POST",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	app.Get("/health", h.Health)
	app.Get("/new-game", h.NewGame)

	// Every engine-move may spawn an engine process, so it is rate limited per IP
	maxReq := opts.RateLimit
	app.Post("/engine-move",
		limiter.New(limiter.Config{
			Max:        maxReq,
			Expiration: 1 * time.Second,
			KeyGenerator: func(c *fiber.Ctx) string {
				if xff := c.Get("X-Forwarded-For"); xff != "" {
					if idx := strings.Index(xff, ","); idx != -1 {
						return strings.TrimSpace(xff[:idx])
					}
					return xff
				}
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
					Error:   "rate limit exceeded",
					Code:    core.ErrRateLimitExceeded,
					Details: fmt.Sprintf("%d requests per second allowed", maxReq),
				})
			},
		}),
		contentTypeValidator,
		validationMiddleware,
		h.EngineMove,
	)

	return app
}

// contentTypeValidator ensures POST requests with a body declare JSON
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get(fiber.HeaderContentType)
		if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			response.Code = core.ErrNotFound
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// Health check endpoint
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(core.HealthResponse{Status: "ok"})
}

// NewGame returns the starting position
func (h *HTTPHandler) NewGame(c *fiber.Ctx) error {
	return c.JSON(service.NewGame())
}

// EngineMove returns one move for the posted position and skill level
func (h *HTTPHandler) EngineMove(c *fiber.Ctx) error {
	req, ok := c.Locals(validatedBodyKey).(*core.EngineMoveRequest)
	if !ok || req == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.ErrInternalError,
		})
	}

	move, err := h.svc.MakeMove(c.UserContext(), service.MoveRequest{
		FEN:        *req.FEN,
		Difficulty: req.Skill(),
	})
	if err != nil {
		status, body := moveError(err)
		return c.Status(status).JSON(body)
	}

	return c.JSON(move)
}

// moveError maps service failures onto the client-facing error class
func moveError(err error) (int, core.ErrorResponse) {
	var msg, code string
	switch {
	case errors.Is(err, service.ErrInvalidDifficulty):
		msg, code = "Invalid skill level", core.ErrInvalidSkillLevel
	case errors.Is(err, service.ErrInvalidPosition):
		msg, code = "Invalid FEN", core.ErrInvalidFEN
	case errors.Is(err, service.ErrGameAlreadyOver):
		msg, code = "Game is already over", core.ErrGameOver
	case errors.Is(err, service.ErrNoLegalMoves):
		msg, code = "No legal moves", core.ErrNoLegalMoves
	case errors.Is(err, service.ErrEngineFailure):
		msg, code = "Stockfish failed", core.ErrEngineFailure
	default:
		return fiber.StatusInternalServerError, core.ErrorResponse{
			Error: "internal server error",
			Code:  core.ErrInternalError,
		}
	}
	return fiber.StatusBadRequest, core.ErrorResponse{
		Error:   msg,
		Code:    code,
		Details: err.Error(),
	}
}

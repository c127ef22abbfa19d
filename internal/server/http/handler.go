package http

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"chessindex/internal/position"
	"chessindex/internal/server/core"
	"chessindex/internal/server/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	rateLimitRate   = 10 // req/sec
	defaultTopLimit = 10
)

// HTTPHandler routes statistics queries to the store
type HTTPHandler struct {
	store *storage.Store
}

func NewHTTPHandler(store *storage.Store) *HTTPHandler {
	return &HTTPHandler{store: store}
}

func NewFiberApp(store *storage.Store, devMode bool) *fiber.App {
	h := NewHTTPHandler(store)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	// API v1 routes
	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Get("/games", h.SearchGames)
	api.Get("/games/:gameId", h.GetGame)
	api.Get("/positions/moves", h.TopMoves)
	api.Get("/positions/outcomes", h.OutcomesByRatingBand)

	return app
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrGameNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.store.IsHealthy(),
	})
}

// GetGame returns one game's metadata and full move list
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID, err := strconv.ParseInt(c.Params("gameId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid game ID format",
			Code:    core.ErrInvalidRequest,
			Details: "game ID must be an integer",
		})
	}

	detail, err := h.store.GetGame(gameID)
	if err != nil {
		return storageError(c, err)
	}

	return c.JSON(detail)
}

// SearchGames returns notable games through a position, filtered
func (h *HTTPHandler) SearchGames(c *fiber.Ctx) error {
	fen, errResp := requirePosition(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(*errResp)
	}

	filter, errResp := parseGameFilter(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(*errResp)
	}

	results, err := h.store.SearchGames(fen, filter)
	if err != nil {
		return storageError(c, err)
	}

	return c.JSON(results)
}

// TopMoves ranks responses played from a position
func (h *HTTPHandler) TopMoves(c *fiber.Ctx) error {
	fen, errResp := requirePosition(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(*errResp)
	}

	limit := defaultTopLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Error:   "invalid limit",
				Code:    core.ErrInvalidLimit,
				Details: "limit must be a positive integer",
			})
		}
		limit = parsed
	}

	stats, err := h.store.TopMoves(fen, limit)
	if err != nil {
		return storageError(c, err)
	}

	return c.JSON(stats)
}

// OutcomesByRatingBand returns outcome distributions per rating band
func (h *HTTPHandler) OutcomesByRatingBand(c *fiber.Ctx) error {
	fen, errResp := requirePosition(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(*errResp)
	}

	bands, err := h.store.OutcomesByRatingBand(fen)
	if err != nil {
		return storageError(c, err)
	}

	return c.JSON(bands)
}

// requirePosition reads and canonicalizes the position query parameter.
// Malformed keys are rejected here so storage only ever sees canonical
// join keys.
func requirePosition(c *fiber.Ctx) (string, *core.ErrorResponse) {
	raw := c.Query("position")
	if raw == "" {
		return "", &core.ErrorResponse{
			Error:   "missing position",
			Code:    core.ErrInvalidRequest,
			Details: "position query parameter is required",
		}
	}
	fen, err := position.Normalize(raw)
	if err != nil {
		return "", &core.ErrorResponse{
			Error:   "invalid position",
			Code:    core.ErrInvalidPosition,
			Details: err.Error(),
		}
	}
	return fen, nil
}

// storageError maps store failures onto structured HTTP responses.
// Anything that is not a domain error is a backend outage and must
// surface as such, never as an empty success.
func storageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, storage.ErrGameNotFound):
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "game not found",
			Code:  core.ErrGameNotFound,
		})
	case errors.Is(err, storage.ErrInvalidLimit):
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid limit",
			Code:    core.ErrInvalidLimit,
			Details: err.Error(),
		})
	default:
		return c.Status(fiber.StatusServiceUnavailable).JSON(core.ErrorResponse{
			Error:   "storage unavailable",
			Code:    core.ErrStorageUnavailable,
			Details: err.Error(),
		})
	}
}

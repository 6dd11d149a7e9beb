package trending

import (
	"context"
	"crypto/subtle"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/abelbrown/reelfind/internal/otel"
	"github.com/abelbrown/reelfind/internal/tmdb"
)

// incrementRequest is the body of POST /v1/searches.
type incrementRequest struct {
	Query string     `json:"query"`
	Movie tmdb.Movie `json:"movie"`
}

// topResponse is the body of GET /v1/trending.
type topResponse struct {
	Entries []Entry `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ServerOptions configures a Server.
type ServerOptions struct {
	Token  string // bearer token; empty disables auth
	Logger *otel.Logger
}

// Server exposes a Store over HTTP for trendingd.
type Server struct {
	app   *fiber.App
	store Store
	token string
	log   *otel.Logger
}

// NewServer builds the fiber app and its routes.
func NewServer(st Store, opts ServerOptions) *Server {
	s := &Server{
		store: st,
		token: opts.Token,
		log:   opts.Logger,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "trendingd",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(s.logRequests)
	s.app.Get("/healthz", s.handleHealth)

	v1 := s.app.Group("/v1", s.requireToken)
	v1.Post("/searches", s.handleIncrement)
	v1.Get("/trending", s.handleTop)

	return s
}

// App returns the underlying fiber app, for tests and adaptors.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	level := otel.LevelInfo
	if status >= fiber.StatusInternalServerError {
		level = otel.LevelError
	}
	s.log.Emit(otel.Event{
		Level: level,
		Kind:  otel.KindRequest,
		Comp:  "trendingd",
		Dur:   time.Since(start),
		Msg:   c.Method() + " " + c.Path(),
		Extra: map[string]any{"status": status},
	})
	return err
}

func (s *Server) requireToken(c *fiber.Ctx) error {
	if s.token == "" {
		return c.Next()
	}
	got, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or missing bearer token")
	}
	return c.Next()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleIncrement(c *fiber.Ctx) error {
	var req incrementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if Normalize(req.Query) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query is required")
	}

	if err := s.store.Increment(c.UserContext(), req.Query, req.Movie); err != nil {
		s.log.Emit(otel.Event{
			Level: otel.LevelError,
			Kind:  otel.KindTrendingError,
			Comp:  "trendingd",
			Query: req.Query,
			Err:   err.Error(),
		})
		return fiber.NewError(fiber.StatusInternalServerError, "failed to record search")
	}
	s.log.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindTrendingIncrement,
		Comp:  "trendingd",
		Query: Normalize(req.Query),
	})
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleTop(c *fiber.Ctx) error {
	limit := DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	entries, err := s.store.Top(c.UserContext(), limit)
	if err != nil {
		s.log.Emit(otel.Event{
			Level: otel.LevelError,
			Kind:  otel.KindTrendingError,
			Comp:  "trendingd",
			Err:   err.Error(),
		})
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load trending")
	}
	if entries == nil {
		entries = []Entry{}
	}
	return c.JSON(topResponse{Entries: entries})
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(errorResponse{Error: msg})
}

// Package server exposes matches over HTTP with Fiber and pushes state
// changes to websocket clients.
package server

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/hailam/chessrules/internal/agent"
	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/config"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/render"
	"github.com/hailam/chessrules/internal/session"
	"github.com/hailam/chessrules/internal/storage"
)

// Server owns the Fiber app, the match registry and the optional store.
type Server struct {
	app      *fiber.App
	cfg      config.Config
	matches  *Registry
	store    *storage.Storage // may be nil
	renderer *render.Renderer

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New builds the server and its routes.
func New(cfg config.Config, store *storage.Storage) (*Server, error) {
	r, err := render.NewRenderer(cfg.SquareSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		app:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		cfg:      cfg,
		matches:  NewRegistry(),
		store:    store,
		renderer: r,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}
	s.routes()
	return s, nil
}

// App returns the underlying Fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Registry returns the live matches.
func (s *Server) Registry() *Registry {
	return s.matches
}

// Listen serves HTTP on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	log.Printf("Listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) routes() {
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	s.app.Get("/ws/matches/:id", websocket.New(s.handleSocket, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	api := s.app.Group("/api")
	api.Post("/matches", s.createMatch)
	api.Get("/matches/:id", s.getMatch)
	api.Post("/matches/:id/moves", s.postMove)
	api.Get("/matches/:id/board.png", s.getBoardPNG)
	api.Get("/matches/:id/trace", s.getTrace)
}

type createRequest struct {
	White      string `json:"white"`
	Black      string `json:"black"`
	Layout     *int   `json:"layout"`
	WhiteAgent string `json:"white_agent"`
	BlackAgent string `json:"black_agent"`
}

type moveRequest struct {
	Move string `json:"move"`
}

func errorJSON(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, board.ErrOutOfBounds), errors.Is(err, board.ErrInvalidConfiguration):
		return fiber.StatusBadRequest
	case errors.Is(err, game.ErrIllegalMove), errors.Is(err, game.ErrGameOver), errors.Is(err, session.ErrTimeout):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) seat(name string, kind string) (session.Seat, error) {
	seat := session.Seat{Name: name}
	if kind == "" {
		return seat, nil
	}
	k, err := agent.ParseKind(kind)
	if err != nil || k == agent.KindHuman {
		return seat, err
	}

	s.rngMu.Lock()
	seed := s.rng.Int63()
	s.rngMu.Unlock()

	p, err := agent.New(k, name, rand.New(rand.NewSource(seed)))
	if err != nil {
		return seat, err
	}
	seat.Player = p
	return seat, nil
}

func (s *Server) createMatch(c *fiber.Ctx) error {
	req := createRequest{White: s.cfg.WhiteName, Black: s.cfg.BlackName}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err)
		}
	}

	layout := s.cfg.Layout
	if req.Layout != nil {
		l, err := board.ParseLayout(*req.Layout)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err)
		}
		layout = l
	}

	white, err := s.seat(req.White, req.WhiteAgent)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	black, err := s.seat(req.Black, req.BlackAgent)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	m, err := session.New(layout, white, black, session.Options{
		MaxPlies:    s.cfg.MaxPlies,
		AllowedTime: s.cfg.AllowedTime,
	})
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	id := s.matches.Add(m)
	log.Printf("Created match %s: %s vs %s (%s layout)", id, req.White, req.Black, layout)

	// An agent playing White opens the game.
	if err := s.answer(c.UserContext(), id, m); err != nil {
		return errorJSON(c, statusFor(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (s *Server) lookup(c *fiber.Ctx) (string, *session.Match, error) {
	id := c.Params("id")
	m, err := s.matches.Get(id)
	return id, m, err
}

func (s *Server) getMatch(c *fiber.Ctx) error {
	id, m, err := s.lookup(c)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.JSON(newStateView(id, m, m.State()))
}

func (s *Server) postMove(c *fiber.Ctx) error {
	id, m, err := s.lookup(c)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}

	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	if err := s.play(c.UserContext(), id, m, req.Move); err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.JSON(newStateView(id, m, m.State()))
}

// play applies a move in coordinate notation and lets an automated opponent
// answer.
func (s *Server) play(ctx context.Context, id string, m *session.Match, text string) error {
	mv, err := board.ParseMove(text)
	if err != nil {
		return err
	}
	if _, err := m.Step(mv); err != nil {
		if errors.Is(err, session.ErrTimeout) {
			s.saveIfOver(id, m)
		}
		return err
	}
	s.saveIfOver(id, m)
	return s.answer(ctx, id, m)
}

// answer lets agents move until a human is to move or the match ends.
func (s *Server) answer(ctx context.Context, id string, m *session.Match) error {
	for {
		if _, over := m.Result(); over {
			s.saveIfOver(id, m)
			return nil
		}
		_, err := m.Advance(ctx)
		if errors.Is(err, session.ErrHumanTurn) {
			return nil
		}
		if err != nil {
			if _, over := m.Result(); over {
				continue
			}
			return err
		}
	}
}

// saveIfOver writes a finished match to storage once.
func (s *Server) saveIfOver(id string, m *session.Match) {
	r, over := m.Result()
	if !over || s.store == nil || !s.cfg.Autosave || s.matches.markSaved(id) {
		return
	}

	if err := s.store.SaveTrace(m.Trace()); err != nil {
		log.Printf("Failed to save match %s: %v", id, err)
		return
	}
	err := s.store.RecordResult(storage.Result{
		White:    m.Seat(board.White).Name,
		Black:    m.Seat(board.Black).Name,
		Status:   r.Status,
		Winner:   r.Winner,
		Plies:    r.Plies,
		Duration: m.Elapsed(),
	})
	if err != nil {
		log.Printf("Failed to record result of %s: %v", id, err)
	}
}

func (s *Server) getBoardPNG(c *fiber.Ctx) error {
	_, m, err := s.lookup(c)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}

	st := m.State()
	opts := render.Options{
		Flip:        c.QueryBool("flip"),
		Coordinates: true,
	}
	if from := c.Query("from"); from != "" {
		sq, err := board.ParseSquare(from)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err)
		}
		moves, err := game.LegalMovesFrom(&st, sq)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err)
		}
		for _, mv := range moves {
			opts.Targets = append(opts.Targets, mv.To)
		}
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return s.renderer.WritePNG(c.Response().BodyWriter(), &st, opts)
}

func (s *Server) getTrace(c *fiber.Ctx) error {
	_, m, err := s.lookup(c)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.JSON(m.Trace())
}

// Package gateway exposes the dispatcher over HTTP and websocket.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/skillweaver/skillweaver/internal/dispatch"
	"github.com/skillweaver/skillweaver/internal/factory"
	"github.com/skillweaver/skillweaver/internal/registry"
	"github.com/skillweaver/skillweaver/internal/schema"
)

// Dispatcher runs one query to completion.
type Dispatcher interface {
	Dispatch(ctx context.Context, query string, onProgress func(string)) (schema.DispatchResult, error)
}

// Creator builds a capability from a description.
type Creator interface {
	Create(ctx context.Context, description string) (*factory.Result, error)
}

// Server serves the dispatch API. Dispatch runs are concurrent; capability
// creation is serialized so two requests never race on the same store entry.
type Server struct {
	engine   Dispatcher
	creator  Creator
	registry *registry.Registry
	listen   string

	// createSem admits one creation pipeline at a time.
	createSem *semaphore.Weighted
}

func New(engine Dispatcher, creator Creator, reg *registry.Registry, listen string) *Server {
	return &Server{
		engine:    engine,
		creator:   creator,
		registry:  reg,
		listen:    listen,
		createSem: semaphore.NewWeighted(1),
	}
}

// Handler returns the route table. Split out from Run for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/capabilities", s.handleListCapabilities)
	mux.HandleFunc("POST /api/capabilities", s.handleCreateCapability)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("gateway listening", "addr", s.listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleListCapabilities(w http.ResponseWriter, r *http.Request) {
	caps := s.registry.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"capabilities": registry.Listings(caps),
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "body must be {\"message\": \"...\"}"})
		return
	}

	result, err := s.engine.Dispatch(r.Context(), req.Message, nil)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, dispatch.ErrTurnBudgetExceeded) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, map[string]any{
			"error":  err.Error(),
			"result": result,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type createRequest struct {
	Description string `json:"description"`
}

func (s *Server) handleCreateCapability(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Description == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "body must be {\"description\": \"...\"}"})
		return
	}

	if err := s.createSem.Acquire(r.Context(), 1); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "creation cancelled while queued"})
		return
	}
	defer s.createSem.Release(1)

	result, err := s.creator.Create(r.Context(), req.Description)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to write response", "err", err)
	}
}

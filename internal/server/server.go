// Package server serves the board as a popup-style web page.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/porticus-lab/tabshot"
)

// Navigator drives the tab that captures are taken from.
type Navigator interface {
	OpenTab(ctx context.Context, url string) error
	URL() string
}

// Server exposes a board over HTTP.
type Server struct {
	board  *tabshot.Board
	tab    Navigator
	logger *slog.Logger
	router *chi.Mux
}

// New returns a Server for board. tab may be nil, in which case POST /tab
// is answered with 501.
func New(board *tabshot.Board, tab Navigator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{board: board, tab: tab, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/state", s.handleState)
	r.Post("/tab", s.handleOpenTab)
	r.Post("/capture", s.handleCapture)
	r.Post("/items/{index}/delete", s.handleDelete)
	r.Route("/drag", func(r chi.Router) {
		r.Post("/start/{index}", s.handleDragStart)
		r.Post("/enter/{index}", s.handleDragEnter)
		r.Post("/drop", s.handleDrop)
		r.Post("/end", s.handleDragEnd)
		r.Post("/move", s.handleMove)
	})
	r.Get("/export", s.handleExport)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("tabshot: serving", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("tabshot: http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleOpenTab(w http.ResponseWriter, r *http.Request) {
	if s.tab == nil {
		writeError(w, http.StatusNotImplemented, errors.New("no tab to navigate"))
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}
	if err := s.tab.OpenTab(r.Context(), req.URL); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if _, err := s.board.Capture(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.state())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.withIndex(w, r, func(i int) error { return s.board.Delete(r.Context(), i) })
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	s.withIndex(w, r, s.board.DragStart)
}

func (s *Server) handleDragEnter(w http.ResponseWriter, r *http.Request) {
	s.withIndex(w, r, s.board.DragEnter)
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	if err := s.board.Drop(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleDragEnd(w http.ResponseWriter, _ *http.Request) {
	s.board.DragEnd()
	writeJSON(w, http.StatusOK, s.state())
}

// moveRequest is a whole drag in one call. Before equal to the item count
// appends.
type moveRequest struct {
	From   *int `json:"from"`
	Before *int `json:"before"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.From == nil || req.Before == nil {
		writeError(w, http.StatusBadRequest, errors.New("from and before are required"))
		return
	}
	if err := s.board.Move(r.Context(), *req.From, *req.Before); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.board.Export(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(res.Len()))
	if _, err := res.WriteTo(w); err != nil {
		s.logger.Warn("tabshot: writing export", "error", err)
	}
}

// withIndex parses the {index} URL parameter and runs fn with it.
func (s *Server) withIndex(w http.ResponseWriter, r *http.Request, fn func(int) error) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid index: %w", err))
		return
	}
	if err := fn(i); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("tabshot: request failed", "status", code, "error", err)
	}
	writeError(w, code, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tabshot.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, tabshot.ErrEmptyBoard):
		return http.StatusConflict
	case errors.Is(err, tabshot.ErrNoCapturer), errors.Is(err, tabshot.ErrNoExporter):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, tabshot.ErrCaptureFailed), errors.Is(err, tabshot.ErrExportFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

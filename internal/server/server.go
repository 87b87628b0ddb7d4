// Package server exposes a running layout over HTTP. A background loop
// steps the simulator at a fixed interval; clients read positions with
// plain requests or subscribe to a websocket stream of frames and send
// drag, pin and pause commands back.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/san-kum/forcelayout/internal/export"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/metrics"
	"github.com/san-kum/forcelayout/internal/sim"
)

const (
	DefaultInterval = 33 * time.Millisecond
	DefaultFPS      = 30
)

type Options struct {
	// Interval between ticks of the stepping loop.
	Interval time.Duration
	// FPS caps how often a websocket client receives frames.
	FPS    int
	Logger *log.Logger
	// SimOptions are applied when a reload rebuilds the simulator.
	SimOptions []sim.Option
}

type Server struct {
	mu    sync.RWMutex
	sim   *sim.Simulator
	gen   uint64
	cfg   layout.Config
	rec   *metrics.Recorder
	opts  Options
	log   *log.Logger

	sessMu   sync.Mutex
	sessions map[string]*session
	upgrader websocket.Upgrader
	router   chi.Router
}

// New serves s. The server takes ownership of s and closes it on Close or
// when a reload replaces it.
func New(s *sim.Simulator, opts Options) *Server {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	srv := &Server{
		sim:      s,
		cfg:      s.Config(),
		rec:      newRecorder(),
		opts:     opts,
		log:      opts.Logger,
		sessions: make(map[string]*session),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.AddObserver(srv.rec)
	srv.router = srv.routes()
	return srv
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})
	r.Get("/positions", s.handlePositions)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/export/{format}", s.handleExport)
	r.Post("/running", s.handleRunning)
	r.Route("/nodes/{id}", func(r chi.Router) {
		r.Get("/", s.handleNode)
		r.Post("/position", s.handleSetPosition)
		r.Post("/pin", s.handlePin)
	})
	r.Get("/ws", s.handleWebSocket)
	return r
}

func (s *Server) Handler() http.Handler { return s.router }

// Simulator returns the simulator currently being served.
func (s *Server) Simulator() *sim.Simulator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sim
}

// recorder returns the metrics recorder of the current generation.
func (s *Server) recorder() *metrics.Recorder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec
}

func newRecorder() *metrics.Recorder {
	return metrics.NewRecorder(1, metrics.Defaults()...)
}

func (s *Server) current() (*sim.Simulator, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sim, s.gen
}

// Run steps the simulator every Interval until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Simulator().Step()
		}
	}
}

// ListenAndServe runs the stepping loop and the HTTP server until ctx is
// done, then shuts both down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.Handler()}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := hs.Shutdown(shutdown); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) Close() {
	s.sessMu.Lock()
	for _, sess := range s.sessions {
		sess.close()
	}
	s.sessMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.Close()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start),
		)
	})
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type positionsResponse struct {
	Tick     uint64            `json:"tick"`
	Running  bool              `json:"running"`
	State    string            `json:"state"`
	Average  point             `json:"average"`
	Smoothed point             `json:"smoothed"`
	Nodes    []layout.Position `json:"nodes"`
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	sm := s.Simulator()
	snap := sm.Snapshot()
	smoothed := sm.SmoothedAveragePosition()
	writeJSON(w, http.StatusOK, positionsResponse{
		Tick:     snap.Tick,
		Running:  snap.Running,
		State:    sm.State().String(),
		Average:  point{snap.Average.X, snap.Average.Y},
		Smoothed: point{smoothed.X, smoothed.Y},
		Nodes:    snap.Positions(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.recorder().Values())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	sm := s.Simulator()
	if ct, ok := contentTypes[format]; ok {
		w.Header().Set("Content-Type", ct)
	}
	var buf bytes.Buffer
	if err := export.Write(r.Context(), format, &buf, sm.Snapshot(), sm.Graph()); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	buf.WriteTo(w)
}

var contentTypes = map[string]string{
	"csv":      "text/csv",
	"json":     "application/json",
	"svg":      "image/svg+xml",
	"graphviz": "image/svg+xml",
	"dot":      "text/vnd.graphviz",
	"graph":    "application/yaml",
}

type runningRequest struct {
	Running bool `json:"running"`
}

func (s *Server) handleRunning(w http.ResponseWriter, r *http.Request) {
	var req runningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sm := s.Simulator()
	sm.SetRunning(req.Running)
	writeJSON(w, http.StatusOK, map[string]string{"state": sm.State().String()})
}

type nodeResponse struct {
	ID    layout.NodeID `json:"id"`
	Label string        `json:"label,omitempty"`
	X     float64       `json:"x"`
	Y     float64       `json:"y"`
	Force point         `json:"force"`
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id, err := nodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sm := s.Simulator()
	g := sm.Graph()
	i, ok := g.Index(id)
	if !ok {
		writeError(w, http.StatusNotFound, &layout.NodeError{Op: "get", ID: id, Wrapped: layout.ErrUnknownNode})
		return
	}
	f, err := sm.Force(id)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	p := sm.Snapshot().Point(i)
	writeJSON(w, http.StatusOK, nodeResponse{ID: id, Label: g.Label(i), X: p.X, Y: p.Y, Force: point{f.X, f.Y}})
}

func (s *Server) handleSetPosition(w http.ResponseWriter, r *http.Request) {
	id, err := nodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var p point
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Simulator().SetNodePosition(id, p.X, p.Y); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	id, err := nodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Simulator().SetPinned(id, req.Pinned); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nodeID(r *http.Request) (layout.NodeID, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid node id %q", raw)
	}
	return layout.NodeID(id), nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, layout.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, layout.ErrNonFinite), errors.Is(err, layout.ErrInvalidGraph):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

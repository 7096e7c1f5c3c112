// Package server hosts the molscope viewer: it serves the HTML page, the
// JSON API and the WebSocket channel that mirrors elements to the browser.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/molscope/molscope/internal/config"
	"github.com/molscope/molscope/internal/dataset"
	"github.com/molscope/molscope/internal/db"
	"github.com/molscope/molscope/internal/element"
	"github.com/molscope/molscope/internal/hub"
	"github.com/molscope/molscope/internal/store"
	"github.com/molscope/molscope/internal/viz"
)

// Mount element ids referenced by the served page. The visualizer looks
// these up before building any widget.
const (
	PlotMountID   = "plot-root"
	ViewerMountID = "viewer-root"
	SliderMountID = "slider-root"
	TableMountID  = "table-root"
)

// Server glues the element registry, the WebSocket hub, the visualizer and
// the saved-settings store behind one HTTP surface.
type Server struct {
	cfg   *config.Config
	reg   *element.Registry
	hub   *hub.Hub
	saved *store.Store

	mu          sync.Mutex
	viz         *viz.Visualizer
	current     *dataset.Dataset
	currentPath string // relative to cfg.DataDir

	router     chi.Router
	httpServer *http.Server
}

// New creates a Server. No dataset is loaded yet; call LoadDataset before
// Start or let the first POST /api/dataset do it.
func New(cfg *config.Config, database *db.DB) (*Server, error) {
	reg := element.NewRegistry()
	for _, id := range []string{PlotMountID, ViewerMountID, SliderMountID, TableMountID} {
		if _, err := reg.New(element.Label, id); err != nil {
			return nil, fmt.Errorf("registering mount %s: %w", id, err)
		}
	}

	s := &Server{
		cfg:   cfg,
		reg:   reg,
		saved: store.NewStore(database),
	}
	// The hub shares s.mu, so client dispatches and API handlers never
	// mutate the same options concurrently.
	s.hub = hub.New(reg, &s.mu)
	s.router = s.buildRouter()
	return s, nil
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/ws", s.hub.HandleWebSocket)

	s.registerAPIRoutes(r)
	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// LoadDataset loads the dataset at the given path relative to the data
// directory and points the visualizer at it. The first call builds the
// visualizer, later calls swap the dataset in place.
func (s *Server) LoadDataset(rel string) error {
	// The path may come from a client; keep it inside the data directory.
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("dataset path %q is outside the data directory", rel)
	}
	ds, err := dataset.Load(filepath.Join(s.cfg.DataDir, rel))
	if err != nil {
		return err
	}
	if err := ds.Check(); err != nil {
		return fmt.Errorf("dataset %s: %w", rel, err)
	}

	input := viz.InputFromDataset(ds, PlotMountID, ViewerMountID, SliderMountID, TableMountID, rel)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viz == nil {
		v, err := viz.New(s.reg, input)
		if err != nil {
			return err
		}
		s.viz = v
	} else if err := s.viz.ChangeDataset(input); err != nil {
		return err
	}
	s.current = ds
	s.currentPath = rel
	return nil
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("molscope listening on http://%s", s.cfg.Addr())
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and drops WebSocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/molscope/molscope/internal/store"
)

// registerAPIRoutes mounts the JSON API under /api.
func (s *Server) registerAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/datasets", s.handleListDatasets)
		r.Get("/dataset", s.handleCurrentDataset)
		r.Post("/dataset", s.handleSwitchDataset)
		r.Post("/select", s.handleSelect)
		r.Get("/settings", s.handleGetSettings)
		r.Post("/settings", s.handleApplySettings)
		r.Route("/settings/saved", func(r chi.Router) {
			r.Get("/", s.handleListSaved)
			r.Post("/", s.handleSaveSettings)
			r.Post("/{name}/apply", s.handleApplySaved)
			r.Delete("/{name}", s.handleDeleteSaved)
		})
	})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	paths, err := s.cfg.DiscoverDatasets()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if paths == nil {
		paths = []string{}
	}

	s.mu.Lock()
	current := s.currentPath
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"datasets": paths,
		"current":  current,
	})
}

// datasetResponse summarizes the loaded dataset for the page header.
type datasetResponse struct {
	Name         string   `json:"name"`
	Path         string   `json:"path"`
	Description  string   `json:"description,omitempty"`
	Authors      []string `json:"authors,omitempty"`
	References   []string `json:"references,omitempty"`
	Structures   int      `json:"structures"`
	Environments int      `json:"environments"`
	Properties   []string `json:"properties"`
}

func (s *Server) handleCurrentDataset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no dataset loaded"})
		return
	}

	var names []string
	for name := range s.current.Properties {
		names = append(names, name)
	}
	writeJSON(w, http.StatusOK, datasetResponse{
		Name:         s.current.Meta.Name,
		Path:         s.currentPath,
		Description:  s.current.Meta.Description,
		Authors:      s.current.Meta.Authors,
		References:   s.current.Meta.References,
		Structures:   len(s.current.Structures),
		Environments: len(s.current.Environments),
		Properties:   names,
	})
}

func (s *Server) handleSwitchDataset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"path\": ...}"})
		return
	}

	if err := s.LoadDataset(req.Path); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.Path})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index       *int `json:"index"`
		Environment *int `json:"environment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (req.Index == nil && req.Environment == nil) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"index\": ...} or {\"environment\": ...}"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viz == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no dataset loaded"})
		return
	}

	var err error
	selected := 0
	if req.Environment != nil {
		selected = *req.Environment
		err = s.viz.SelectEnvironment(selected)
	} else {
		selected = *req.Index
		err = s.viz.Select(selected)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"selected": selected})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viz == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no dataset loaded"})
		return
	}
	tree, err := s.viz.SaveSettings()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleApplySettings(w http.ResponseWriter, r *http.Request) {
	var tree map[string]any
	if err := json.NewDecoder(r.Body).Decode(&tree); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be a settings tree"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viz == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no dataset loaded"})
		return
	}
	if err := s.viz.ApplySettings(tree); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

// savedResponse is one row of the saved-settings listing.
type savedResponse struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	current := s.currentPath
	s.mu.Unlock()

	records, err := s.saved.List(r.Context(), current)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	out := make([]savedResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, savedResponse{Name: rec.Name, UpdatedAt: rec.UpdatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"name\": ...}"})
		return
	}

	s.mu.Lock()
	if s.viz == nil {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no dataset loaded"})
		return
	}
	tree, err := s.viz.SaveSettings()
	current := s.currentPath
	s.mu.Unlock()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	id, err := s.saved.Save(r.Context(), current, req.Name, tree)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id, "name": req.Name})
}

func (s *Server) handleApplySaved(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	current := s.currentPath
	s.mu.Unlock()

	rec, err := s.saved.Get(r.Context(), current, name)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no saved settings named " + name})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viz == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no dataset loaded"})
		return
	}
	if err := s.viz.ApplySettings(rec.Tree); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"applied": name})
}

func (s *Server) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	current := s.currentPath
	s.mu.Unlock()

	err := s.saved.Delete(r.Context(), current, name)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no saved settings named " + name})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": name})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

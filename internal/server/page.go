package server

import (
	_ "embed"
	"html/template"
	"log"
	"net/http"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// indexData feeds the embedded page template.
type indexData struct {
	Title       string
	Dataset     string
	Description template.HTML

	PlotMount   string
	ViewerMount string
	SliderMount string
	TableMount  string
}

// handleIndex serves the viewer page with the current dataset header
// rendered in.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Title:       s.cfg.Title,
		PlotMount:   PlotMountID,
		ViewerMount: ViewerMountID,
		SliderMount: SliderMountID,
		TableMount:  TableMountID,
	}

	s.mu.Lock()
	if s.current != nil {
		data.Dataset = s.current.Meta.Name
		if html, err := s.current.Meta.DescriptionHTML(); err == nil {
			data.Description = template.HTML(html)
		} else {
			log.Printf("rendering dataset description: %v", err)
		}
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		log.Printf("rendering index: %v", err)
	}
}

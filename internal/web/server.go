// Package web provides a simple web UI for browsing proofread runs.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/proofworks/proofpipe/internal/store"
)

// Server provides the web UI handlers and state.
type Server struct {
	runs *store.Store
}

// NewServer creates a new web server.
func NewServer(runs *store.Store) (*Server, error) {
	return &Server{runs: runs}, nil
}

//go:embed templates/*.html
var templatesFS embed.FS

// Routes returns the router for the web UI.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /runs/{id}", s.handleRun)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	runs, err := s.runs.ListRuns(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := tmpl.Execute(w, runs); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFS(templatesFS, "templates/run.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rec, err := s.runs.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if err := tmpl.Execute(w, rec); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Package devserver is an in-memory stand-in for the remote note
// store and media proxy, for local development and integration tests.
package devserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/fieldnotes-app/fieldnotes/internal/note"
)

const maxUploadBytes = 64 << 20

type Server struct {
	store  *Store
	router *chi.Mux
	log    *zap.Logger
}

func New(store *Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		store:  store,
		router: chi.NewRouter(),
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.CleanPath) // clients send //create
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	s.router.Use(NewAPIRateLimiter().Middleware)
	s.router.Use(s.requestLogger)

	s.router.Get("/health", s.healthHandler)
	s.router.Post("/query", s.queryHandler)
	s.router.Post("/create", s.createHandler)
	s.router.Put("/overwrite", s.overwriteHandler)
	s.router.Delete("/delete", s.deleteHandler)
	s.router.Post("/uploadFile", s.uploadHandler)
	s.router.Get("/objects/{id}", s.objectHandler)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

// Handlers

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}

type queryRequest struct {
	Type      string `json:"type"`
	Creator   string `json:"creator"`
	UID       string `json:"uid"`
	Published *bool  `json:"published"`
}

func (s *Server) queryHandler(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	limit := intParam(r, "limit", 100)
	skip := intParam(r, "skip", 0)

	switch req.Type {
	case "message":
		jsonResponse(w, s.store.QueryMessages(req.Creator, req.Published, limit, skip), http.StatusOK)
	case "Agent":
		jsonResponse(w, s.store.QueryAgents(req.UID), http.StatusOK)
	default:
		jsonError(w, fmt.Sprintf("unknown document type %q", req.Type), http.StatusBadRequest)
	}
}

func (s *Server) createHandler(w http.ResponseWriter, r *http.Request) {
	var msg note.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg.Title == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}
	jsonResponse(w, s.store.CreateMessage(msg), http.StatusCreated)
}

func (s *Server) overwriteHandler(w http.ResponseWriter, r *http.Request) {
	var msg note.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !s.store.OverwriteMessage(msg) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, map[string]string{"status": "overwritten"}, http.StatusOK)
}

func (s *Server) deleteHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"@id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !s.store.DeleteMessage(req.ID) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "failed to read upload", http.StatusInternalServerError)
		return
	}

	id := s.store.PutObject(header.Filename, data)
	location := fmt.Sprintf("http://%s/objects/%s", r.Host, id)
	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) objectHandler(w http.ResponseWriter, r *http.Request) {
	data, ok := s.store.GetObject(chi.URLParam(r, "id"))
	if !ok {
		jsonError(w, "object not found", http.StatusNotFound)
		return
	}
	w.Write(data)
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	jsonResponse(w, map[string]string{"error": message}, status)
}

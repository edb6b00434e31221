package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"apdash-backend/internal/assistant"
	"apdash-backend/internal/config"
	"apdash-backend/internal/responder"
	"apdash-backend/internal/store"
	"apdash-backend/internal/types"
)

type Server struct {
	router    *chi.Mux
	store     *store.MemoryStore
	cfg       config.Config
	log       logrus.FieldLogger
	queries   *assistant.QueryResolver
	actions   *assistant.ActionResolver
	suggester *assistant.Suggester
	scheduler *responder.Scheduler
	now       func() time.Time
}

func NewServer(cfg config.Config, log logrus.FieldLogger) (*Server, error) {
	catalog, err := assistant.LoadCatalogFile(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if cfg.CatalogFile != "" {
		log.WithField("path", cfg.CatalogFile).Info("loaded catalog from file")
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "X-Session-Id"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(requestLogger(log))

	s := &Server{
		router:    r,
		store:     store.NewMemoryStore(catalog.Greeting(), cfg.MaxTurns, cfg.DefaultRole),
		cfg:       cfg,
		log:       log,
		queries:   assistant.NewQueryResolver(catalog),
		actions:   assistant.NewActionResolver(catalog),
		suggester: assistant.NewSuggester(catalog),
		scheduler: responder.NewScheduler(cfg.ResponseDelay, cfg.SupersedePolicy),
		now:       time.Now,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/resolve", s.handleResolve)
	// Conversation
	s.router.Post("/api/chat", s.handleChat)
	s.router.Post("/api/actions/{actionID}", s.handleAction)
	s.router.Get("/api/transcript", s.handleTranscript)
	s.router.Delete("/api/transcript", s.handleResetTranscript)
	s.router.Get("/api/suggestions", s.handleSuggestions)
	s.router.Delete("/api/session", s.handleEndSession)
	// Dashboard
	s.router.Get("/api/role", s.handleGetRole)
	s.router.Put("/api/role", s.handleSetRole)
	s.router.Get("/api/dashboard", s.handleDashboard)
	s.router.Get("/api/insights", s.handleInsights)
	s.router.Post("/api/insights/{insightID}/{op}", s.handleInsightOp)
	s.router.Get("/api/visualizations", s.handleVisualizationKinds)
	s.router.Get("/api/visualizations/{kind}", s.handleVisualization)
}

func (s *Server) Router() http.Handler { return s.router }

// Close cancels replies that have not been delivered yet.
func (s *Server) Close() { s.scheduler.Close() }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req types.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, rule := s.queries.Match(req.Query)
	writeJSON(w, http.StatusOK, types.ResolveResponse{Payload: p, Rule: rule})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, types.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newSessionID() string {
	return "s_" + uuid.NewString()
}

// getSessionID retrieves the session ID from cookie, header or query parameter
func getSessionID(r *http.Request) string {
	if cookie, err := GetSessionCookie(r); err == nil && cookie != "" {
		return cookie
	}
	if sid := strings.TrimSpace(r.Header.Get("X-Session-Id")); sid != "" {
		return sid
	}
	if sid := strings.TrimSpace(r.URL.Query().Get("sessionId")); sid != "" {
		return sid
	}
	return ""
}

// getOrCreateSessionID gets the existing session ID or creates a new one,
// setting the cookie and response header either way.
func (s *Server) getOrCreateSessionID(r *http.Request, w http.ResponseWriter) string {
	sid := getSessionID(r)
	if sid == "" {
		sid = newSessionID()
		s.log.WithFields(logrus.Fields{"session": sid, "path": r.URL.Path}).Debug("creating new session")
		SetSessionCookie(w, r, sid)
	}
	w.Header().Set("X-Session-Id", sid)
	return sid
}

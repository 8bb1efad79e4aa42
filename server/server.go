// Package server exposes the assistant over HTTP: chat and voice endpoints,
// session persistence operations and circuit breaker introspection.
package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/missionai/agrimesh"
	"github.com/missionai/agrimesh/logging"
)

// Options configure the HTTP server.
type Options struct {
	Logger *logging.AgriLogger
}

// Server is the HTTP API over an AgriMesh instance.
type Server struct {
	mesh   *agrimesh.AgriMesh
	logger *logging.AgriLogger
}

// New constructs the server.
func New(mesh *agrimesh.AgriMesh, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NewLogger(nil)}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil)
	}
	return &Server{mesh: mesh, logger: opts.Logger.WithComponent("server")}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/voice", s.handleVoice)

		r.Route("/sessions/{userID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/persist", s.handlePersist)
			r.Post("/restore", s.handleRestore)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/onboarding/start", s.handleStartOnboarding)
			r.Post("/onboarding/progress", s.handleOnboardingProgress)
			r.Get("/onboarding/status", s.handleOnboardingStatus)
			r.Get("/recommendations", s.handleRecommendations)
		})

		r.Route("/breakers", func(r chi.Router) {
			r.Get("/", s.handleBreakerStatus)
			r.Post("/{service}/reset", s.handleBreakerReset)
		})
	})

	return r
}

type chatRequest struct {
	UserID        string `json:"user_id"`
	Message       string `json:"message"`
	AttachmentRef string `json:"attachment_ref,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "user_id and message are required")
		return
	}

	resp := s.mesh.ProcessText(r.Context(), req.UserID, req.Message, req.AttachmentRef)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	audio, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 10<<20))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read audio body")
		return
	}
	if len(audio) == 0 {
		s.writeError(w, http.StatusBadRequest, "audio body is empty")
		return
	}

	resp := s.mesh.ProcessVoice(r.Context(), userID, audio)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	s.writeJSON(w, http.StatusOK, s.mesh.Sessions().Get(userID))
}

func (s *Server) handlePersist(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	persisted := s.mesh.Sessions().Persist(userID)
	s.writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "persisted": persisted})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	result := s.mesh.Sessions().Restore(userID)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	deleted := s.mesh.Sessions().DeleteAll(userID)
	s.writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "deleted": deleted})
}

func (s *Server) handleStartOnboarding(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	roadmap, err := s.mesh.Orchestrator().StartOnboarding(userID)
	if err != nil {
		s.logger.Error("start onboarding failed", "user_id", userID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to start onboarding")
		return
	}
	s.writeJSON(w, http.StatusOK, roadmap)
}

type progressRequest struct {
	Step int `json:"step"`
}

func (s *Server) handleOnboardingProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Step < 1 {
		s.writeError(w, http.StatusBadRequest, "step must be at least 1")
		return
	}

	update, err := s.mesh.Orchestrator().UpdateOnboardingProgress(userID, req.Step)
	if err != nil {
		s.logger.Error("onboarding progress failed", "user_id", userID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to update progress")
		return
	}
	s.writeJSON(w, http.StatusOK, update)
}

func (s *Server) handleOnboardingStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	s.writeJSON(w, http.StatusOK, s.mesh.Orchestrator().OnboardingStatus(userID))
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	s.writeJSON(w, http.StatusOK, s.mesh.Orchestrator().Recommend(userID))
}

func (s *Server) handleBreakerStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.mesh.Breakers().AllStatus())
}

func (s *Server) handleBreakerReset(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	if !s.mesh.Breakers().Reset(service) {
		s.writeError(w, http.StatusNotFound, "unknown service")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"service": service, "reset": true})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/RbroH99/les-sha-accesories/internal/repository"
	apperrors "github.com/RbroH99/les-sha-accesories/pkg/errors"
)

// ApiResponse is the envelope every endpoint responds with
type ApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Health represents the health check response
type Health struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// healthCheckHandler handles the health check endpoint
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	health := Health{
		Status:    "ok",
		Version:   "1.0.0",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if err := s.db.Ping(r.Context()); err != nil {
		health.Status = "degraded"

		s.respondWithJSON(w, http.StatusServiceUnavailable, ApiResponse{
			Success: false,
			Data:    health,
			Error:   "database unreachable",
		})
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    health,
	})
}

// respondWithError sends a JSON response with an error message
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, ApiResponse{
		Success: false,
		Error:   message,
	})
}

// handleServiceError translates domain errors to HTTP responses
func (s *Server) handleServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		s.respondWithError(w, http.StatusNotFound, "resource not found")
		return
	}

	code := apperrors.StatusCode(err)

	if code >= http.StatusInternalServerError {
		s.respondWithError(w, code, "internal server error")
		return
	}

	s.respondWithError(w, code, err.Error())
}

// respondWithJSON sends a JSON response
func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)

	if err != nil {
		s.logger.Error("Failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/RbroH99/les-sha-accesories/internal/models"
)

// getFailedNotificationsHandler lists outbox messages that exhausted
// their delivery attempts
func (s *Server) getFailedNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := pagination(r)

	messages, err := s.outboxRepo.GetFailedMessages(r.Context(), limit)

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	if messages == nil {
		messages = []*models.OutboxMessage{}
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    messages,
	})
}

// retryNotificationHandler requeues a failed outbox message for another
// delivery round
func (s *Server) retryNotificationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	if err := s.outboxRepo.Requeue(r.Context(), id); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.logger.Info("Failed notification requeued", "messageID", id)

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
	})
}

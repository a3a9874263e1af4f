package api

import (
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramWebhookHandler receives bot updates. It always responds 200:
// returning an error status would make Telegram redeliver the update
// indefinitely.
func (s *Server) telegramWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if s.webhookHandler == nil {
		s.respondWithJSON(w, http.StatusOK, ApiResponse{Success: true})
		return
	}

	var update tgbotapi.Update

	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.logger.Warn("Malformed telegram update", "error", err)
		s.respondWithJSON(w, http.StatusOK, ApiResponse{Success: true})
		return
	}
	defer r.Body.Close()

	if err := s.webhookHandler.HandleUpdate(r.Context(), &update); err != nil {
		s.logger.Error("Failed to handle telegram update", "error", err)
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{Success: true})
}

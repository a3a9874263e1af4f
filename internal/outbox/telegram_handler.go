package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/internal/telegram"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

// TelegramHandler delivers order notifications to the shop operator's
// chat. It subscribes to order_created messages.
type TelegramHandler struct {
	sender      telegram.Sender
	chatID      int64
	countryCode string
	logger      logger.Logger
}

// NewTelegramHandler creates a new TelegramHandler
func NewTelegramHandler(sender telegram.Sender, chatID int64, countryCode string, logger logger.Logger) *TelegramHandler {
	return &TelegramHandler{
		sender:      sender,
		chatID:      chatID,
		countryCode: countryCode,
		logger:      logger,
	}
}

// HandleMessage formats the order embedded in the message payload and
// sends it with its action keyboard.
func (h *TelegramHandler) HandleMessage(ctx context.Context, msg *models.OutboxMessage) error {
	var event struct {
		Data models.Order `json:"data"`
	}

	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal order payload: %w", err)
	}

	order := &event.Data
	text := telegram.FormatOrderMessage(order)
	keyboard := telegram.BuildOrderKeyboard(order, h.countryCode)

	if err := h.sender.SendMessage(ctx, h.chatID, text, &keyboard); err != nil {
		return fmt.Errorf("failed to send order notification: %w", err)
	}

	h.logger.Info("Order notification sent",
		"orderID", order.ID,
		"chatID", h.chatID)

	return nil
}

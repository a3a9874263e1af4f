package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/internal/repository"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

// OrderActions is the slice of the order service the webhook needs
type OrderActions interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error)
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error)
}

// WebhookHandler dispatches inline-button presses coming back from the
// bot chat. Every callback gets answered, including ones the handler
// does not recognize, so buttons never hang in a loading state.
type WebhookHandler struct {
	orders OrderActions
	sender Sender
	logger logger.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(orders OrderActions, sender Sender, logger logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		orders: orders,
		sender: sender,
		logger: logger,
	}
}

// HandleUpdate processes a single bot update. Updates without a
// callback query are ignored.
func (h *WebhookHandler) HandleUpdate(ctx context.Context, update *tgbotapi.Update) error {
	if update.CallbackQuery == nil {
		return nil
	}

	query := update.CallbackQuery

	cb, ok := ParseCallback(query.Data)

	if !ok {
		h.logger.Warn("Unrecognized callback data", "data", query.Data)
		return h.sender.AnswerCallback(ctx, query.ID, "Acción no reconocida")
	}

	h.logger.Info("Processing callback",
		"action", cb.Action.String(),
		"orderID", cb.OrderID)

	var (
		answer string
		err    error
	)

	switch cb.Action {
	case ActionConfirmOrder:
		answer, err = h.changeStatus(ctx, query, cb.OrderID, models.OrderStatusAceptado, "Pedido confirmado ✅")
	case ActionPrepareShipping:
		answer, err = h.changeStatus(ctx, query, cb.OrderID, models.OrderStatusPendiente, "Pedido en preparación 📦")
	case ActionCancelOrder:
		answer, err = h.changeStatus(ctx, query, cb.OrderID, models.OrderStatusCancelado, "Pedido cancelado ❌")
	case ActionViewDetails:
		answer, err = h.sendDetails(ctx, query, cb.OrderID)
	case ActionSendEmail:
		answer, err = h.promptEmail(ctx, query, cb.OrderID)
	case ActionNoPhone:
		answer = "El cliente no dejó teléfono"
	case ActionViewStats:
		answer, err = h.sendStats(ctx, query)
	}

	if err != nil {
		h.logger.Error("Callback handling failed",
			"action", cb.Action.String(),
			"orderID", cb.OrderID,
			"error", err)

		answer = "Ocurrió un error, intenta de nuevo"
	}

	if ackErr := h.sender.AnswerCallback(ctx, query.ID, answer); ackErr != nil {
		h.logger.Error("Failed to answer callback", "error", ackErr)
		return ackErr
	}

	return err
}

func (h *WebhookHandler) changeStatus(ctx context.Context, query *tgbotapi.CallbackQuery, orderID string, status models.OrderStatus, answer string) (string, error) {
	order, err := h.orders.UpdateOrderStatus(ctx, orderID, status)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "Pedido no encontrado", nil
		}
		return "", err
	}

	if query.Message != nil {
		text := fmt.Sprintf("%s\n\n*Estado:* %s", FormatOrderMessage(order), order.Status.Label())

		if err := h.sender.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID, text); err != nil {
			h.logger.Warn("Failed to edit order message", "orderID", orderID, "error", err)
		}
	}

	return answer, nil
}

func (h *WebhookHandler) sendDetails(ctx context.Context, query *tgbotapi.CallbackQuery, orderID string) (string, error) {
	order, err := h.orders.GetOrder(ctx, orderID)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "Pedido no encontrado", nil
		}
		return "", err
	}

	if query.Message != nil {
		if err := h.sender.SendMessage(ctx, query.Message.Chat.ID, FormatOrderDetails(order), nil); err != nil {
			return "", err
		}
	}

	return "Detalles enviados", nil
}

func (h *WebhookHandler) promptEmail(ctx context.Context, query *tgbotapi.CallbackQuery, orderID string) (string, error) {
	order, err := h.orders.GetOrder(ctx, orderID)

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "Pedido no encontrado", nil
		}
		return "", err
	}

	if query.Message != nil {
		text := fmt.Sprintf("✉️ Contactar a *%s*: %s", order.CustomerName, order.CustomerEmail)

		if err := h.sender.SendMessage(ctx, query.Message.Chat.ID, text, nil); err != nil {
			return "", err
		}
	}

	return "Email del cliente enviado", nil
}

func (h *WebhookHandler) sendStats(ctx context.Context, query *tgbotapi.CallbackQuery) (string, error) {
	counts, err := h.orders.CountByStatus(ctx)

	if err != nil {
		return "", err
	}

	if query.Message != nil {
		if err := h.sender.SendMessage(ctx, query.Message.Chat.ID, FormatStatsMessage(counts), nil); err != nil {
			return "", err
		}
	}

	return "Estadísticas enviadas", nil
}

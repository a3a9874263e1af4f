package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/internal/repository"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

type fakeSender struct {
	sent     []string
	edited   []string
	answered []string
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	f.edited = append(f.edited, text)
	return nil
}

func (f *fakeSender) AnswerCallback(ctx context.Context, callbackID, text string) error {
	f.answered = append(f.answered, text)
	return nil
}

type fakeOrders struct {
	orders map[string]*models.Order
}

func (f *fakeOrders) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return order, nil
}

func (f *fakeOrders) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	order.Status = status
	return order, nil
}

func (f *fakeOrders) CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error) {
	counts := make(map[models.OrderStatus]int)
	for _, o := range f.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func callbackUpdate(data string) *tgbotapi.Update {
	return &tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cbq-1",
			Data: data,
			Message: &tgbotapi.Message{
				MessageID: 42,
				Chat:      &tgbotapi.Chat{ID: 1001},
			},
		},
	}
}

func setupWebhook() (*WebhookHandler, *fakeSender, *fakeOrders) {
	orders := &fakeOrders{orders: map[string]*models.Order{
		"ord-abc12345": sampleOrder(),
	}}
	sender := &fakeSender{}
	handler := NewWebhookHandler(orders, sender, logger.NewNop())

	return handler, sender, orders
}

func TestHandleUpdateConfirmOrder(t *testing.T) {
	handler, sender, orders := setupWebhook()

	err := handler.HandleUpdate(context.Background(), callbackUpdate("confirm_order_ord-abc12345"))

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAceptado, orders.orders["ord-abc12345"].Status)

	require.Len(t, sender.edited, 1)
	assert.Contains(t, sender.edited[0], "Aceptado")

	require.Len(t, sender.answered, 1)
	assert.Equal(t, "Pedido confirmado ✅", sender.answered[0])
}

func TestHandleUpdateCancelOrder(t *testing.T) {
	handler, sender, orders := setupWebhook()

	err := handler.HandleUpdate(context.Background(), callbackUpdate("cancel_order_ord-abc12345"))

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelado, orders.orders["ord-abc12345"].Status)
	require.Len(t, sender.answered, 1)
	assert.Equal(t, "Pedido cancelado ❌", sender.answered[0])
}

func TestHandleUpdateViewDetails(t *testing.T) {
	handler, sender, _ := setupWebhook()

	err := handler.HandleUpdate(context.Background(), callbackUpdate("view_details_ord-abc12345"))

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Detalles del pedido")
	assert.Contains(t, sender.sent[0], "ord-abc12345")
	require.Len(t, sender.answered, 1)
}

func TestHandleUpdateSendEmail(t *testing.T) {
	handler, sender, _ := setupWebhook()

	err := handler.HandleUpdate(context.Background(), callbackUpdate("send_email_ord-abc12345"))

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "ana@example.com")
}

func TestHandleUpdateViewStats(t *testing.T) {
	handler, sender, _ := setupWebhook()

	err := handler.HandleUpdate(context.Background(), callbackUpdate("view_stats_ord-abc12345"))

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Pedidos por estado")
	assert.Contains(t, sender.sent[0], "Pendiente: 1")
}

func TestHandleUpdateUnknownOrderStillAnswers(t *testing.T) {
	handler, sender, _ := setupWebhook()

	err := handler.HandleUpdate(context.Background(), callbackUpdate("confirm_order_ord-missing"))

	require.NoError(t, err)
	assert.Empty(t, sender.edited)
	require.Len(t, sender.answered, 1)
	assert.Equal(t, "Pedido no encontrado", sender.answered[0])
}

func TestHandleUpdateUnknownCallbackStillAnswers(t *testing.T) {
	handler, sender, _ := setupWebhook()

	err := handler.HandleUpdate(context.Background(), callbackUpdate("refund_order_ord-abc12345"))

	require.NoError(t, err)
	require.Len(t, sender.answered, 1)
	assert.Equal(t, "Acción no reconocida", sender.answered[0])
}

func TestHandleUpdateIgnoresNonCallback(t *testing.T) {
	handler, sender, _ := setupWebhook()

	err := handler.HandleUpdate(context.Background(), &tgbotapi.Update{})

	require.NoError(t, err)
	assert.Empty(t, sender.answered)
	assert.Empty(t, sender.sent)
}

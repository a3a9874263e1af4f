package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

type fakeStore struct {
	pending   []*models.OutboxMessage
	completed []int64
	failed    []int64
	requeued  []int64
}

func (s *fakeStore) GetPendingMessages(ctx context.Context, limit int) ([]*models.OutboxMessage, error) {
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeStore) MarkAsProcessing(ctx context.Context, id int64) error {
	for _, msg := range s.pending {
		if msg.ID == id {
			msg.ProcessingAttempts++
		}
	}
	return nil
}

func (s *fakeStore) MarkAsPending(ctx context.Context, id int64, errorMessage string) error {
	s.requeued = append(s.requeued, id)
	return nil
}

func (s *fakeStore) MarkAsCompleted(ctx context.Context, id int64) error {
	s.completed = append(s.completed, id)
	return nil
}

func (s *fakeStore) MarkAsFailed(ctx context.Context, id int64, errorMessage string) error {
	s.failed = append(s.failed, id)
	return nil
}

type recordingHandler struct {
	handled []int64
	err     error
}

func (h *recordingHandler) HandleMessage(ctx context.Context, msg *models.OutboxMessage) error {
	h.handled = append(h.handled, msg.ID)
	return h.err
}

type countingSender struct {
	sent []string
}

func (s *countingSender) SendMessage(ctx context.Context, chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	s.sent = append(s.sent, text)
	return nil
}

func (s *countingSender) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	return nil
}

func (s *countingSender) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return nil
}

func pendingMessage(t *testing.T, id int64) *models.OutboxMessage {
	t.Helper()

	order := models.NewOrder("usr-1", "Ana Pérez", "ana@example.com")
	order.ID = "ord-abc12345"

	msg, err := models.NewOrderCreatedEvent(order)
	require.NoError(t, err)

	msg.ID = id
	return msg
}

func newTestProcessor(store *fakeStore, maxRetries int) *Processor {
	return NewProcessor(store, ProcessorConfig{
		PollingInterval: time.Second,
		BatchSize:       10,
		MaxRetries:      maxRetries,
	}, logger.NewNop())
}

func TestProcessBatchCompletesMessages(t *testing.T) {
	store := &fakeStore{pending: []*models.OutboxMessage{
		pendingMessage(t, 1),
		pendingMessage(t, 2),
	}}
	handler := &recordingHandler{}

	p := newTestProcessor(store, 3)
	p.RegisterHandler(models.EventOrderCreated, handler)

	require.NoError(t, p.ProcessBatch())

	assert.Equal(t, []int64{1, 2}, handler.handled)
	assert.Equal(t, []int64{1, 2}, store.completed)
	assert.Empty(t, store.failed)
}

func TestProcessBatchRequeuesOnTransientFailure(t *testing.T) {
	store := &fakeStore{pending: []*models.OutboxMessage{pendingMessage(t, 1)}}
	handler := &recordingHandler{err: errors.New("telegram unavailable")}

	p := newTestProcessor(store, 3)
	p.RegisterHandler(models.EventOrderCreated, handler)

	require.NoError(t, p.ProcessBatch())

	assert.Equal(t, []int64{1}, store.requeued)
	assert.Empty(t, store.completed)
	assert.Empty(t, store.failed)
}

func TestProcessBatchFailsAfterMaxRetries(t *testing.T) {
	msg := pendingMessage(t, 1)
	msg.ProcessingAttempts = 2

	store := &fakeStore{pending: []*models.OutboxMessage{msg}}
	handler := &recordingHandler{err: errors.New("telegram unavailable")}

	p := newTestProcessor(store, 3)
	p.RegisterHandler(models.EventOrderCreated, handler)

	require.NoError(t, p.ProcessBatch())

	assert.Equal(t, []int64{1}, store.failed)
	assert.Empty(t, store.requeued)
}

func TestProcessBatchNoHandlerFails(t *testing.T) {
	store := &fakeStore{pending: []*models.OutboxMessage{pendingMessage(t, 1)}}

	p := newTestProcessor(store, 3)

	require.NoError(t, p.ProcessBatch())

	assert.Equal(t, []int64{1}, store.failed)
}

func TestProcessBatchFansOutToAllHandlers(t *testing.T) {
	store := &fakeStore{pending: []*models.OutboxMessage{pendingMessage(t, 1)}}
	first := &recordingHandler{}
	second := &recordingHandler{}

	p := newTestProcessor(store, 3)
	p.RegisterHandler(models.EventOrderCreated, first)
	p.RegisterHandler(models.EventOrderCreated, second)

	require.NoError(t, p.ProcessBatch())

	assert.Equal(t, []int64{1}, first.handled)
	assert.Equal(t, []int64{1}, second.handled)
	assert.Equal(t, []int64{1}, store.completed)
}

func TestTelegramHandlerSendsOrderSummary(t *testing.T) {
	sender := &countingSender{}
	handler := NewTelegramHandler(sender, 1001, "+53", logger.NewNop())

	err := handler.HandleMessage(context.Background(), pendingMessage(t, 1))

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Nuevo pedido")
	assert.Contains(t, sender.sent[0], "ord-abc12345")
	assert.Contains(t, sender.sent[0], "Ana Pérez")
}

type fakePublisher struct {
	topics []string
	keys   []string
}

func (f *fakePublisher) SendMessage(ctx context.Context, topic string, key string, value []byte) error {
	f.topics = append(f.topics, topic)
	f.keys = append(f.keys, key)
	return nil
}

func TestKafkaHandlerPublishesKeyedByOrder(t *testing.T) {
	publisher := &fakePublisher{}
	handler := NewKafkaHandler(publisher, "shop.orders", logger.NewNop())

	err := handler.HandleMessage(context.Background(), pendingMessage(t, 1))

	require.NoError(t, err)
	assert.Equal(t, []string{"shop.orders"}, publisher.topics)
	assert.Equal(t, []string{"ord-abc12345"}, publisher.keys)
}

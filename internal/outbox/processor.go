package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

// MessageHandler delivers a single outbox message to its destination
type MessageHandler interface {
	HandleMessage(ctx context.Context, message *models.OutboxMessage) error
}

// Store is the slice of the outbox repository the processor uses
type Store interface {
	GetPendingMessages(ctx context.Context, limit int) ([]*models.OutboxMessage, error)
	MarkAsProcessing(ctx context.Context, id int64) error
	MarkAsPending(ctx context.Context, id int64, errorMessage string) error
	MarkAsCompleted(ctx context.Context, id int64) error
	MarkAsFailed(ctx context.Context, id int64, errorMessage string) error
}

// Processor polls the outbox table and dispatches pending messages to
// the handlers registered per event type.
type Processor struct {
	store           Store
	handlers        map[string][]MessageHandler
	pollingInterval time.Duration
	batchSize       int
	maxRetries      int
	logger          logger.Logger
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	running         bool
	mu              sync.Mutex
}

// ProcessorConfig holds the configuration for the Processor
type ProcessorConfig struct {
	PollingInterval time.Duration
	BatchSize       int
	MaxRetries      int
}

// NewProcessor creates a new Processor
func NewProcessor(store Store, config ProcessorConfig, logger logger.Logger) *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		store:           store,
		handlers:        make(map[string][]MessageHandler),
		pollingInterval: config.PollingInterval,
		batchSize:       config.BatchSize,
		maxRetries:      config.MaxRetries,
		logger:          logger,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// RegisterHandler registers a handler for an event type. Several
// handlers may subscribe to the same event; the message completes only
// when all of them succeed.
func (p *Processor) RegisterHandler(eventType string, handler MessageHandler) {
	p.handlers[eventType] = append(p.handlers[eventType], handler)
}

// Start starts the polling loop
func (p *Processor) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	p.running = true
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()
		p.run()
	}()

	p.logger.Info("Outbox processor started",
		"pollingInterval", p.pollingInterval,
		"batchSize", p.batchSize)
}

// Stop stops the polling loop and waits for the in-flight batch
func (p *Processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	p.cancel()
	p.wg.Wait()
	p.running = false

	p.logger.Info("Outbox processor stopped")
}

func (p *Processor) run() {
	ticker := time.NewTicker(p.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			if err := p.ProcessBatch(); err != nil {
				p.logger.Error("Failed to process outbox batch", "error", err)
			}
		}
	}
}

// ProcessBatch fetches one batch of pending messages and dispatches
// them. A failing message does not stop the rest of the batch.
func (p *Processor) ProcessBatch() error {
	ctx, cancel := context.WithTimeout(p.ctx, p.pollingInterval)
	defer cancel()

	messages, err := p.store.GetPendingMessages(ctx, p.batchSize)

	if err != nil {
		return fmt.Errorf("failed to get pending messages: %w", err)
	}

	if len(messages) == 0 {
		return nil
	}

	p.logger.Info("Processing batch of outbox messages", "count", len(messages))

	for _, msg := range messages {
		if err := p.processMessage(ctx, msg); err != nil {
			p.logger.Error("Failed to process message",
				"error", err,
				"messageID", msg.ID,
				"aggregateID", msg.AggregateID,
				"eventType", msg.EventType)

			continue
		}
	}

	return nil
}

func (p *Processor) processMessage(ctx context.Context, msg *models.OutboxMessage) error {
	if err := p.store.MarkAsProcessing(ctx, msg.ID); err != nil {
		return fmt.Errorf("failed to mark message as processing: %w", err)
	}

	handlers, exists := p.handlers[msg.EventType]

	if !exists {
		errorMsg := fmt.Sprintf("no handler registered for event type: %s", msg.EventType)
		p.logger.Error(errorMsg, "messageID", msg.ID)

		if err := p.store.MarkAsFailed(ctx, msg.ID, errorMsg); err != nil {
			p.logger.Error("Failed to mark message as failed", "error", err, "messageID", msg.ID)
		}

		return fmt.Errorf("%s", errorMsg)
	}

	for _, handler := range handlers {
		if err := handler.HandleMessage(ctx, msg); err != nil {
			return p.handleDeliveryError(ctx, msg, err)
		}
	}

	if err := p.store.MarkAsCompleted(ctx, msg.ID); err != nil {
		p.logger.Error("Failed to mark message as completed", "error", err, "messageID", msg.ID)
		return fmt.Errorf("failed to mark message as completed: %w", err)
	}

	p.logger.Info("Successfully processed message",
		"messageID", msg.ID,
		"aggregateID", msg.AggregateID,
		"eventType", msg.EventType)

	return nil
}

// handleDeliveryError requeues the message for a later poll until the
// attempt budget runs out, then parks it as failed for the admin retry
// endpoint.
func (p *Processor) handleDeliveryError(ctx context.Context, msg *models.OutboxMessage, err error) error {
	// MarkAsProcessing already counted this attempt
	attempts := msg.ProcessingAttempts + 1

	if attempts >= p.maxRetries {
		errorMsg := fmt.Sprintf("max retries reached: %s", err.Error())
		p.logger.Error(errorMsg,
			"messageID", msg.ID,
			"attempts", attempts)

		if markErr := p.store.MarkAsFailed(ctx, msg.ID, errorMsg); markErr != nil {
			p.logger.Error("Failed to mark message as failed", "error", markErr, "messageID", msg.ID)
		}

		return fmt.Errorf("message failed after %d attempts: %w", attempts, err)
	}

	p.logger.Warn("Message processing failed, will retry",
		"error", err,
		"messageID", msg.ID,
		"attempt", attempts)

	if markErr := p.store.MarkAsPending(ctx, msg.ID, err.Error()); markErr != nil {
		p.logger.Error("Failed to requeue message", "error", markErr, "messageID", msg.ID)
	}

	return err
}

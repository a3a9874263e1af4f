package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/RbroH99/les-sha-accesories/pkg/circuitbreaker"
	apperrors "github.com/RbroH99/les-sha-accesories/pkg/errors"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
	"github.com/RbroH99/les-sha-accesories/pkg/retry"
)

// Sender is the subset of bot operations the shop needs. The concrete
// client talks to the Bot API; tests swap in a fake.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Client wraps the Bot API with retries and a circuit breaker so a
// Telegram outage cannot stall order processing.
type Client struct {
	bot     *tgbotapi.BotAPI
	breaker *circuitbreaker.CircuitBreaker
	logger  logger.Logger
}

// NewClient creates a Telegram client from a bot token. It performs a
// getMe call, so it needs network access.
func NewClient(token string, logger logger.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)

	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot authorized", "username", bot.Self.UserName)

	return &Client{
		bot: bot,
		breaker: circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
			HalfOpenMaxCalls: 2,
		}),
		logger: logger,
	}, nil
}

// SendMessage sends a Markdown message to the chat, optionally with an
// inline keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}

	return c.send(ctx, "sendMessage", msg)
}

// EditMessageText replaces the text of a previously sent message and
// drops its keyboard.
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown

	return c.send(ctx, "editMessageText", edit)
}

// AnswerCallback acknowledges an inline-button press so the client UI
// stops its spinner.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return c.send(ctx, "answerCallbackQuery", tgbotapi.NewCallback(callbackID, text))
}

func (c *Client) send(ctx context.Context, method string, chattable tgbotapi.Chattable) error {
	if !c.breaker.Allow() {
		return apperrors.NewServiceUnavailableError(
			fmt.Sprintf("telegram circuit breaker is %s", c.breaker.GetState()))
	}

	err := retry.Retry(ctx, func() error {
		_, sendErr := c.bot.Request(chattable)
		return sendErr
	}, &retry.RetryConfig{
		MaxAttempts:     3,
		BackoffStrategy: retry.NewDefaultExponentialBackoff(),
		Logger:          c.logger,
	})

	if err != nil {
		c.breaker.Failure()
		c.logger.Error("Telegram request failed", "method", method, "error", err)
		return fmt.Errorf("telegram %s failed: %w", method, err)
	}

	c.breaker.Success()

	return nil
}

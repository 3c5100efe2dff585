// Package notify delivers operator notifications and approval prompts
// over Telegram.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Action is the operator's answer to an approval prompt.
type Action string

const (
	ActionApprove    Action = "approve"
	ActionRegenerate Action = "regenerate"
	ActionSkip       Action = "skip"
)

// Notifier is what the orchestrator and cascade depend on. The nil
// implementation pattern is not used; pass NewNoop() when Telegram is
// unconfigured.
type Notifier interface {
	Send(text string) (messageID string, err error)
	Confirm(ctx context.Context, title, body string) (Action, error)
}

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64

	mu       sync.Mutex
	channels map[int]chan Action
}

func NewTelegram(token, chatIDStr string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram: invalid chat id: %w", err)
	}

	t := &Telegram{
		bot:      bot,
		chatID:   chatID,
		channels: make(map[int]chan Action),
	}
	go t.listen()
	return t, nil
}

// Send posts an HTML-formatted message and returns its message ID so
// reports can reference it.
func (t *Telegram) Send(text string) (string, error) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := t.bot.Send(msg)
	if err != nil {
		return "", fmt.Errorf("telegram send: %w", err)
	}
	return strconv.Itoa(sent.MessageID), nil
}

// Confirm sends an approval prompt with inline buttons and blocks until
// the operator answers or the context expires (answer: skip).
func (t *Telegram) Confirm(ctx context.Context, title, body string) (Action, error) {
	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("<b>[%s]</b>\n\n%s", title, body))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", string(ActionApprove)),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Regenerate", string(ActionRegenerate)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Skip", string(ActionSkip)),
		),
	)

	sent, err := t.bot.Send(msg)
	if err != nil {
		return ActionSkip, fmt.Errorf("telegram confirm: %w", err)
	}

	ch := make(chan Action, 1)
	t.mu.Lock()
	t.channels[sent.MessageID] = ch
	t.mu.Unlock()

	select {
	case action := <-ch:
		return action, nil
	case <-ctx.Done():
		t.mu.Lock()
		delete(t.channels, sent.MessageID)
		t.mu.Unlock()
		return ActionSkip, ctx.Err()
	}
}

func (t *Telegram) listen() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	for update := range t.bot.GetUpdatesChan(u) {
		if update.CallbackQuery == nil {
			continue
		}
		callback := update.CallbackQuery
		action := Action(callback.Data)

		t.mu.Lock()
		if ch, ok := t.channels[callback.Message.MessageID]; ok {
			ch <- action
			delete(t.channels, callback.Message.MessageID)

			if _, err := t.bot.Request(tgbotapi.NewCallback(callback.ID, "Received: "+string(action))); err != nil {
				slog.Warn("telegram callback ack failed", "error", err.Error())
			}
			edit := tgbotapi.NewEditMessageReplyMarkup(t.chatID, callback.Message.MessageID,
				tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
			if _, err := t.bot.Send(edit); err != nil {
				slog.Warn("telegram keyboard cleanup failed", "error", err.Error())
			}
		}
		t.mu.Unlock()
	}
}

// Noop is used when Telegram credentials are absent: sends are logged
// and dropped, confirmations auto-approve so unattended runs proceed.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Send(text string) (string, error) {
	slog.Info("notification skipped (telegram not configured)")
	return "", nil
}

func (Noop) Confirm(ctx context.Context, title, body string) (Action, error) {
	slog.Info("approval auto-granted (telegram not configured)", "title", title)
	return ActionApprove, nil
}

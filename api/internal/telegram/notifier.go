package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"code-mentor/api/internal/hint"
)

// sender - часть BotAPI, которая нужна уведомлениям.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier дублирует выданные подсказки в чат (ментору или самому ученику).
type Notifier struct {
	bot    sender
	chatID int64
}

func NewNotifier(token string, chatID int64) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, errors.New("telegram: token and chat id are required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

func (n *Notifier) NotifyHint(ctx context.Context, problem string, resp hint.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, FormatHint(problem, resp))
	msg.ParseMode = "Markdown"
	msg.DisableWebPagePreview = true
	_, err := n.bot.Send(msg)
	return err
}

func FormatHint(problem string, resp hint.Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💡 *Подсказки*: %s\n", safe(problem))
	if resp.Error != "" {
		fmt.Fprintf(&b, "⚠️ %s\n", safe(resp.Error))
		return b.String()
	}
	for i, h := range resp.Hints {
		if t := strings.TrimSpace(h); t != "" {
			fmt.Fprintf(&b, "%d. %s\n", i+1, safe(t))
		}
	}
	if t := strings.TrimSpace(resp.Encouragement); t != "" {
		fmt.Fprintf(&b, "\n_%s_\n", safe(t))
	}
	if len(resp.NextSteps) > 0 {
		b.WriteString("\n*Дальше:*\n")
		for _, s := range resp.NextSteps {
			if t := strings.TrimSpace(s); t != "" {
				fmt.Fprintf(&b, "• %s\n", safe(t))
			}
		}
	}
	return b.String()
}

func safe(s string) string {
	// лёгкая защита от Markdown-вставок
	s = strings.ReplaceAll(s, "`", "'")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "[", "\\[")
	return s
}

package scheduler

import (
	"context"

	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/go-telegram/bot"
)

type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// BotSender sends HTML messages through the Telegram bot.
type BotSender struct {
	Bot *bot.Bot
}

func (s BotSender) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := s.Bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: messages.ParseModeHTML,
	})
	return err
}

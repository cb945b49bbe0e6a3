package handlers

import (
	"context"
	"log"
	"unicode/utf8"

	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/internal/router"
	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	maxMessageRunes = 4096
	maxCaptionRunes = 1024
)

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

func (bh *Handlers) sendPhoto(ctx context.Context, b *bot.Bot, chatID int64, fileID, caption string, markup *models.InlineKeyboardMarkup) {
	params := &bot.SendPhotoParams{
		ChatID:    chatID,
		Photo:     &models.InputFileString{Data: fileID},
		Caption:   truncate(caption, maxCaptionRunes),
		ParseMode: messages.ParseModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.SendPhoto(ctx, params); err != nil {
		log.Printf("Error sending photo to %d: %v", chatID, err)
	}
}

// sendMaterial delivers a material as the file it was uploaded as, or as text.
func (bh *Handlers) sendMaterial(ctx context.Context, b *bot.Bot, chatID int64, m *types.Material, markup *models.InlineKeyboardMarkup) {
	caption := truncate(messages.MaterialCaption(m), maxCaptionRunes)
	file := &models.InputFileString{Data: m.FileID}

	var err error
	switch {
	case m.FileID == "":
		bh.send(ctx, b, chatID, truncate(messages.MaterialCaption(m), maxMessageRunes), markup)
		return
	case m.FileKind == "photo":
		bh.sendPhoto(ctx, b, chatID, m.FileID, caption, markup)
		return
	case m.FileKind == "video":
		params := &bot.SendVideoParams{ChatID: chatID, Video: file, Caption: caption, ParseMode: messages.ParseModeHTML}
		if markup != nil {
			params.ReplyMarkup = markup
		}
		_, err = b.SendVideo(ctx, params)
	default:
		params := &bot.SendDocumentParams{ChatID: chatID, Document: file, Caption: caption, ParseMode: messages.ParseModeHTML}
		if markup != nil {
			params.ReplyMarkup = markup
		}
		_, err = b.SendDocument(ctx, params)
	}
	if err != nil {
		log.Printf("Error sending material %d to %d: %v", m.ID, chatID, err)
	}
}

// notifyAdmins sends text to every admin destination.
func (bh *Handlers) notifyAdmins(ctx context.Context, b *bot.Bot, text string, markup *models.InlineKeyboardMarkup) {
	for _, chatID := range bh.adminChats() {
		bh.send(ctx, b, chatID, text, markup)
	}
}

// notifyUser messages a shop user by internal id. Delivery failures are logged.
func (bh *Handlers) notifyUser(ctx context.Context, b *bot.Bot, userID int64, text string, markup *models.InlineKeyboardMarkup) {
	u, err := bh.store.GetUserByID(ctx, userID)
	if err != nil {
		log.Printf("Error loading user %d for notification: %v", userID, err)
		return
	}
	bh.send(ctx, b, u.TelegramID, text, markup)
}

// originalText returns the text or caption of the message a button belongs to.
func originalText(ev *router.Event) (text string, hasMedia bool) {
	if ev.Update == nil || ev.Update.CallbackQuery == nil {
		return "", false
	}
	m := ev.Update.CallbackQuery.Message.Message
	if m == nil {
		return "", false
	}
	if len(m.Photo) > 0 || m.Document != nil || m.Video != nil {
		return m.Caption, true
	}
	return m.Text, false
}

// editDecision replaces an approve/reject message with the outcome and drops
// its buttons.
func (bh *Handlers) editDecision(ctx context.Context, b *bot.Bot, ev *router.Event, build func(caption string) string) {
	caption, media := originalText(ev)
	if ev.MessageID == 0 {
		bh.send(ctx, b, ev.ChatID, build(""), nil)
		return
	}

	var err error
	if media {
		_, err = b.EditMessageCaption(ctx, &bot.EditMessageCaptionParams{
			ChatID:    ev.ChatID,
			MessageID: ev.MessageID,
			Caption:   truncate(build(caption), maxCaptionRunes),
			ParseMode: messages.ParseModeHTML,
		})
	} else {
		_, err = b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    ev.ChatID,
			MessageID: ev.MessageID,
			Text:      truncate(build(caption), maxMessageRunes),
			ParseMode: messages.ParseModeHTML,
		})
	}
	if err != nil {
		log.Printf("Error editing decision message %d: %v", ev.MessageID, err)
		bh.send(ctx, b, ev.ChatID, build(""), nil)
	}
}

package middleware

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/BatmanBruc/bat-bot-shop/internal/contextkeys"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/types"
)

// ReferralPrefix starts the /start argument of a referral link: /start r_<telegram id>.
const ReferralPrefix = "r_"

type AdminChecker interface {
	IsAdmin(userID int64) bool
}

type Middlewares struct {
	users         types.UserStore
	sessions      types.SessionStore
	admins        AdminChecker
	referralBonus int64
}

func NewMiddlewares(users types.UserStore, sessions types.SessionStore, admins AdminChecker, referralBonus int64) *Middlewares {
	return &Middlewares{
		users:         users,
		sessions:      sessions,
		admins:        admins,
		referralBonus: referralBonus,
	}
}

// ResolveUserMiddleware loads or creates the shop user behind the update. A
// referral link is honoured only when the user is created.
func (m *Middlewares) ResolveUserMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		from, chatID := sender(update)
		if from == nil || chatID == 0 {
			return
		}

		payload := ""
		if update.Message != nil {
			payload = StartPayload(update.Message.Text)
		}

		user, created, err := m.users.GetOrCreateUser(ctx, types.NewUser{
			TelegramID:         from.ID,
			Username:           from.Username,
			ReferrerTelegramID: ParseReferrer(payload),
			ReferralBonus:      m.referralBonus,
		})
		if err != nil {
			log.Printf("Error resolving user %d: %v", from.ID, err)
			_, _ = b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      messages.ErrorDefault(),
				ParseMode: messages.ParseModeHTML,
			})
			return
		}
		if created && user.ReferrerID != nil {
			log.Printf("User %d joined by referral of user #%d", from.ID, *user.ReferrerID)
		}

		ctx = contextkeys.WithUser(ctx, user)
		ctx = contextkeys.WithAdmin(ctx, m.admins != nil && m.admins.IsAdmin(from.ID))
		ctx = contextkeys.WithStartPayload(ctx, payload)
		next(ctx, b, update)
	}
}

// SessionMiddleware attaches the conversation session. A broken session store
// degrades to an idle session rather than dropping the update.
func (m *Middlewares) SessionMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		from, chatID := sender(update)
		if from == nil {
			return
		}

		session, err := m.sessions.GetSession(ctx, from.ID)
		if err != nil {
			log.Printf("Error loading session for %d: %v", from.ID, err)
			session = &types.Session{UserID: from.ID, State: types.StateIdle}
		}
		session.ChatID = chatID

		next(contextkeys.WithSession(ctx, session), b, update)
	}
}

func sender(update *models.Update) (*models.User, int64) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From, update.Message.Chat.ID
	case update.CallbackQuery != nil:
		return &update.CallbackQuery.From, getChatIDFromMaybeInaccessibleMessage(update.CallbackQuery.Message)
	default:
		return nil, 0
	}
}

func getChatIDFromMaybeInaccessibleMessage(m models.MaybeInaccessibleMessage) int64 {
	if m.Message != nil {
		return m.Message.Chat.ID
	}
	if m.InaccessibleMessage != nil {
		return m.InaccessibleMessage.Chat.ID
	}
	return 0
}

// StartPayload returns the argument of a /start command, or "".
func StartPayload(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	cmd := fields[0]
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	if cmd != "/start" {
		return ""
	}
	return fields[1]
}

// ParseReferrer extracts the referrer's Telegram id from "r_<id>".
func ParseReferrer(payload string) int64 {
	raw, ok := strings.CutPrefix(payload, ReferralPrefix)
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func (m *Middlewares) AnalyzeMessageMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		var newCtx context.Context

		if update.CallbackQuery != nil && update.CallbackQuery.Data != "" {
			newCtx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeClickButton)
			newCtx = contextkeys.WithCallbackData(newCtx, update.CallbackQuery.Data)
			next(newCtx, b, update)
			return
		}

		if update.Message != nil && update.Message.Text != "" && strings.HasPrefix(update.Message.Text, "/") {
			newCtx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeCommand)
		} else {
			newCtx = m.analyzeMessage(ctx, update)
		}

		next(newCtx, b, update)
	}
}

func (m *Middlewares) analyzeMessage(ctx context.Context, update *models.Update) context.Context {
	if update.Message == nil {
		return ctx
	}

	msg := update.Message
	ctx = contextkeys.WithMessageType(ctx, DetermineMessageType(msg))
	if info := AnalyzeFile(msg); info != nil {
		ctx = contextkeys.WithFileInfo(ctx, info)
	}
	return ctx
}

func DetermineMessageType(msg *models.Message) contextkeys.MessageType {
	if len(msg.Photo) > 0 {
		return contextkeys.MessageTypePhoto
	}

	if msg.Video != nil {
		return contextkeys.MessageTypeVideo
	}

	if msg.Document != nil {
		return contextkeys.MessageTypeDocument
	}

	if msg.Text != "" {
		return contextkeys.MessageTypeText
	}

	return contextkeys.MessageTypeUnknown
}

// AnalyzeFile picks the attachment of msg. For photos the largest size wins.
func AnalyzeFile(msg *models.Message) *contextkeys.FileInfo {
	switch {
	case len(msg.Photo) > 0:
		best := msg.Photo[0]
		for i := 1; i < len(msg.Photo); i++ {
			if msg.Photo[i].FileSize > best.FileSize {
				best = msg.Photo[i]
			}
		}
		return &contextkeys.FileInfo{
			FileType: contextkeys.MessageTypePhoto,
			FileID:   best.FileID,
			FileSize: int64(best.FileSize),
			FileName: "photo.jpg",
		}
	case msg.Video != nil:
		return &contextkeys.FileInfo{
			FileType: contextkeys.MessageTypeVideo,
			FileID:   msg.Video.FileID,
			FileSize: int64(msg.Video.FileSize),
			MimeType: msg.Video.MimeType,
			FileName: msg.Video.FileName,
		}
	case msg.Document != nil:
		return &contextkeys.FileInfo{
			FileType: contextkeys.MessageTypeDocument,
			FileID:   msg.Document.FileID,
			FileSize: int64(msg.Document.FileSize),
			MimeType: msg.Document.MimeType,
			FileName: msg.Document.FileName,
		}
	}
	return nil
}

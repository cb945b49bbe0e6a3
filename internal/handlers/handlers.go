package handlers

import (
	"context"
	"errors"
	"log"
	"maps"
	"strings"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/config"
	"github.com/BatmanBruc/bat-bot-shop/internal/contextkeys"
	"github.com/BatmanBruc/bat-bot-shop/internal/forms"
	"github.com/BatmanBruc/bat-bot-shop/internal/membership"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/internal/router"
	"github.com/BatmanBruc/bat-bot-shop/internal/utils"
	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type Broadcaster interface {
	Enqueue(ctx context.Context, adminChatID int64, text string) (*types.BroadcastJob, error)
}

type Handlers struct {
	store       types.ShopStore
	sessions    types.SessionStore
	members     *membership.Checker
	broadcaster Broadcaster
	cfg         *config.Config
	router      *router.Router
	botUsername string
}

func NewHandlers(store types.ShopStore, sessions types.SessionStore, members *membership.Checker, broadcaster Broadcaster, cfg *config.Config) *Handlers {
	bh := &Handlers{
		store:       store,
		sessions:    sessions,
		members:     members,
		broadcaster: broadcaster,
		cfg:         cfg,
	}
	bh.router = bh.routes()
	return bh
}

// SetBotUsername sets the name used in referral links.
func (bh *Handlers) SetBotUsername(name string) {
	bh.botUsername = strings.TrimPrefix(name, "@")
}

func (bh *Handlers) MainHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	ev, ok := bh.buildEvent(ctx, update)
	if !ok {
		return
	}

	if ev.IsCallback() {
		data, _ := contextkeys.GetCallbackData(ctx)
		a, err := action.Decode(data)
		if err != nil {
			log.Printf("Error decoding callback %q from %d: %v", data, ev.UserID, err)
			bh.alert(ctx, b, ev, messages.ErrorInvalidButton())
			return
		}
		ev.Action = a
	}

	before := snapshot(ev.Session)
	bh.router.Dispatch(ctx, b, ev)

	if ev.IsCallback() && !ev.Answered {
		bh.answer(ctx, b, ev, "")
	}
	if changed(before, ev.Session) {
		if err := bh.sessions.SaveSession(ctx, ev.Session); err != nil {
			log.Printf("Error saving session for %d: %v", ev.UserID, err)
		}
	}
}

func (bh *Handlers) buildEvent(ctx context.Context, update *models.Update) (*router.Event, bool) {
	user, ok := contextkeys.GetUser(ctx)
	if !ok || user == nil {
		log.Printf("Error: user not found in context")
		return nil, false
	}
	session, ok := contextkeys.GetSession(ctx)
	if !ok || session == nil {
		session = &types.Session{UserID: user.TelegramID, State: types.StateIdle}
	}

	ev := &router.Event{
		Update:  update,
		UserID:  user.TelegramID,
		User:    user,
		Session: session,
		Admin:   contextkeys.IsAdmin(ctx),
	}

	msgType, _ := contextkeys.GetMessageType(ctx)
	switch {
	case update.CallbackQuery != nil:
		ev.CallbackID = update.CallbackQuery.ID
		switch m := update.CallbackQuery.Message; {
		case m.Message != nil:
			ev.ChatID = m.Message.Chat.ID
			ev.MessageID = m.Message.ID
		case m.InaccessibleMessage != nil:
			ev.ChatID = m.InaccessibleMessage.Chat.ID
		}
	case update.Message != nil:
		ev.ChatID = update.Message.Chat.ID
		ev.MessageID = update.Message.ID
		ev.Text = strings.TrimSpace(update.Message.Text)
		if ev.Text == "" {
			ev.Text = strings.TrimSpace(update.Message.Caption)
		}
		ev.Action = action.New(messageKind(msgType, ev.Text), nil)
		if info, ok := contextkeys.GetFileInfo(ctx); ok && info != nil {
			ev.FileID = info.FileID
			ev.FileKind = string(info.FileType)
		}
	default:
		return nil, false
	}
	if ev.ChatID == 0 {
		ev.ChatID = session.ChatID
	}
	if ev.ChatID == 0 {
		ev.ChatID = user.TelegramID
	}
	return ev, true
}

// messageKind maps a plain message to an action kind.
func messageKind(msgType contextkeys.MessageType, text string) action.Kind {
	switch msgType {
	case contextkeys.MessageTypeCommand:
		fields := strings.Fields(text)
		if len(fields) == 0 {
			return action.Unknown
		}
		cmd := fields[0]
		if at := strings.IndexByte(cmd, '@'); at > 0 {
			cmd = cmd[:at]
		}
		switch cmd {
		case "/start":
			return action.Start
		case "/cancel":
			return action.Cancel
		case "/admin":
			return action.AdminMenu
		case "/menu":
			return action.MenuMain
		}
		return action.Unknown
	case contextkeys.MessageTypePhoto:
		return action.Photo
	case contextkeys.MessageTypeDocument:
		return action.Document
	case contextkeys.MessageTypeVideo:
		return action.Video
	case contextkeys.MessageTypeText:
		if kind, ok := utils.MenuKinds[text]; ok {
			return kind
		}
		return action.Text
	}
	return action.Unknown
}

type sessionSnapshot struct {
	state types.ChatState
	data  map[string]string
}

func snapshot(s *types.Session) sessionSnapshot {
	return sessionSnapshot{state: s.State, data: maps.Clone(s.Data)}
}

func changed(before sessionSnapshot, after *types.Session) bool {
	return before.state != after.State || !maps.Equal(before.data, after.Data)
}

func (bh *Handlers) notFound(ctx context.Context, b *bot.Bot, ev *router.Event) {
	switch {
	case ev.IsCallback():
		bh.alert(ctx, b, ev, messages.ErrorInvalidButton())
	case ev.Action.Kind == action.Unknown && strings.HasPrefix(ev.Text, "/"):
		bh.send(ctx, b, ev.ChatID, messages.ErrorUnknownCommand(), nil)
	default:
		bh.send(ctx, b, ev.ChatID, messages.ErrorUnsupportedMessageType(), nil)
	}
}

func (bh *Handlers) denied(ctx context.Context, b *bot.Bot, ev *router.Event) {
	if ev.IsCallback() {
		bh.alert(ctx, b, ev, messages.AccessDenied())
		return
	}
	ev.Session.Reset()
	bh.send(ctx, b, ev.ChatID, messages.AccessDenied(), utils.MainMenuKeyboard(false))
}

func (bh *Handlers) send(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: messages.ParseModeHTML,
	}
	if markup = replyMarkup(markup); markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		log.Printf("Error sending message to %d: %v", chatID, err)
	}
}

// replyMarkup turns typed nil keyboards into a nil interface.
func replyMarkup(m models.ReplyMarkup) models.ReplyMarkup {
	switch v := m.(type) {
	case *models.InlineKeyboardMarkup:
		if v == nil {
			return nil
		}
	case *models.ReplyKeyboardMarkup:
		if v == nil {
			return nil
		}
	}
	return m
}

// show replaces the message a button belongs to, or sends a new one.
func (bh *Handlers) show(ctx context.Context, b *bot.Bot, ev *router.Event, text string, markup *models.InlineKeyboardMarkup) {
	if ev.IsCallback() && ev.MessageID != 0 {
		params := &bot.EditMessageTextParams{
			ChatID:    ev.ChatID,
			MessageID: ev.MessageID,
			Text:      text,
			ParseMode: messages.ParseModeHTML,
		}
		if markup != nil {
			params.ReplyMarkup = markup
		}
		_, err := b.EditMessageText(ctx, params)
		if err == nil || strings.Contains(err.Error(), "message is not modified") {
			return
		}
	}
	bh.send(ctx, b, ev.ChatID, text, markup)
}

func (bh *Handlers) answer(ctx context.Context, b *bot.Bot, ev *router.Event, text string) {
	bh.answerCallback(ctx, b, ev, text, false)
}

func (bh *Handlers) alert(ctx context.Context, b *bot.Bot, ev *router.Event, text string) {
	bh.answerCallback(ctx, b, ev, text, true)
}

func (bh *Handlers) answerCallback(ctx context.Context, b *bot.Bot, ev *router.Event, text string, showAlert bool) {
	if !ev.IsCallback() {
		if text != "" {
			bh.send(ctx, b, ev.ChatID, messages.Escape(text), nil)
		}
		return
	}
	if ev.Answered {
		return
	}
	ev.Answered = true
	_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: ev.CallbackID,
		Text:            text,
		ShowAlert:       showAlert,
	})
}

// reject reports a validation failure and keeps the flow on the same step.
func (bh *Handlers) reject(ctx context.Context, b *bot.Bot, ev *router.Event, msg string) {
	bh.send(ctx, b, ev.ChatID, messages.InputRejected(msg), nil)
}

// fail handles unexpected persistence errors: log, drop the flow, back to the menu.
func (bh *Handlers) fail(ctx context.Context, b *bot.Bot, ev *router.Event, op string, err error) {
	log.Printf("Error %s for user %d: %v", op, ev.UserID, err)
	if ev.IsCallback() {
		bh.answer(ctx, b, ev, "")
	}
	admin := ev.Session.State.IsAdmin()
	ev.Session.Reset()
	if admin && ev.Admin {
		bh.send(ctx, b, ev.ChatID, messages.ErrorDefault(), utils.AdminMenuKeyboard())
		return
	}
	bh.send(ctx, b, ev.ChatID, messages.ErrorBackToMenu(), utils.MainMenuKeyboard(ev.Admin))
}

func (bh *Handlers) toMainMenu(ctx context.Context, b *bot.Bot, ev *router.Event, text string) {
	ev.Session.Reset()
	bh.send(ctx, b, ev.ChatID, text, utils.MainMenuKeyboard(ev.Admin))
}

func (bh *Handlers) toAdminMenu(ctx context.Context, b *bot.Bot, ev *router.Event, text string) {
	ev.Session.Reset()
	bh.send(ctx, b, ev.ChatID, text, utils.AdminMenuKeyboard())
}

// adminChats lists where admin notifications go: the admin chat when configured,
// otherwise every allow-listed admin.
func (bh *Handlers) adminChats() []int64 {
	if bh.cfg.AdminChatID != 0 {
		return []int64{bh.cfg.AdminChatID}
	}
	ids := make([]int64, 0, len(bh.cfg.AdminIDs))
	for id := range bh.cfg.AdminIDs {
		ids = append(ids, id)
	}
	return ids
}

// usernames resolves internal user ids for admin reports. Unknown ids are skipped.
func (bh *Handlers) usernames(ctx context.Context, ids []int64) map[int64]string {
	out := make(map[int64]string, len(ids))
	for _, id := range ids {
		if _, seen := out[id]; seen {
			continue
		}
		u, err := bh.store.GetUserByID(ctx, id)
		if err != nil {
			out[id] = ""
			continue
		}
		out[id] = u.Username
	}
	return out
}

// refreshUser reloads the user so balances reflect the latest writes.
func (bh *Handlers) refreshUser(ctx context.Context, ev *router.Event) *types.User {
	u, err := bh.store.GetUserByID(ctx, ev.User.ID)
	if err != nil {
		return ev.User
	}
	ev.User = u
	return u
}

// rejectInput shows a validation error and keeps the current step. Any other
// error aborts the flow.
func (bh *Handlers) rejectInput(ctx context.Context, b *bot.Bot, ev *router.Event, op string, err error) {
	var ie *forms.InputError
	if errors.As(err, &ie) {
		bh.reject(ctx, b, ev, ie.Message)
		return
	}
	bh.fail(ctx, b, ev, op, err)
}

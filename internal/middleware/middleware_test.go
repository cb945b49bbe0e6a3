package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/bat-bot-shop/internal/contextkeys"
	"github.com/BatmanBruc/bat-bot-shop/types"
)

type fakeUsers struct {
	types.UserStore
	got types.NewUser
}

func (f *fakeUsers) GetOrCreateUser(_ context.Context, nu types.NewUser) (*types.User, bool, error) {
	f.got = nu
	return &types.User{ID: 1, TelegramID: nu.TelegramID, Username: nu.Username}, true, nil
}

type fakeSessions struct {
	types.SessionStore
	err error
}

func (f *fakeSessions) GetSession(_ context.Context, userID int64) (*types.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.Session{UserID: userID, State: types.StateSettingsEmail}, nil
}

type admins map[int64]bool

func (a admins) IsAdmin(id int64) bool { return a[id] }

func TestStartPayload(t *testing.T) {
	assert.Equal(t, "r_123", StartPayload("/start r_123"))
	assert.Equal(t, "r_123", StartPayload("/start@shop_bot r_123"))
	assert.Equal(t, "", StartPayload("/start"))
	assert.Equal(t, "", StartPayload("/menu r_123"))
	assert.Equal(t, "", StartPayload(""))
}

func TestParseReferrer(t *testing.T) {
	assert.Equal(t, int64(123), ParseReferrer("r_123"))
	assert.Zero(t, ParseReferrer("123"))
	assert.Zero(t, ParseReferrer("r_abc"))
	assert.Zero(t, ParseReferrer("r_-5"))
	assert.Zero(t, ParseReferrer(""))
}

func TestResolveUserMiddleware(t *testing.T) {
	users := &fakeUsers{}
	m := NewMiddlewares(users, &fakeSessions{}, admins{77: true}, 5000)

	var (
		called bool
		user   *types.User
		admin  bool
		start  string
	)
	h := m.ResolveUserMiddleware(func(ctx context.Context, _ *bot.Bot, _ *models.Update) {
		called = true
		user, _ = contextkeys.GetUser(ctx)
		admin = contextkeys.IsAdmin(ctx)
		start = contextkeys.GetStartPayload(ctx)
	})

	h(context.Background(), nil, &models.Update{Message: &models.Message{
		From: &models.User{ID: 77, Username: "boss"},
		Chat: models.Chat{ID: 77},
		Text: "/start r_42",
	}})

	require.True(t, called)
	require.NotNil(t, user)
	assert.Equal(t, int64(77), user.TelegramID)
	assert.True(t, admin)
	assert.Equal(t, "r_42", start)
	assert.Equal(t, int64(42), users.got.ReferrerTelegramID)
	assert.Equal(t, int64(5000), users.got.ReferralBonus)
}

func TestResolveUserMiddlewareSkipsAnonymousUpdates(t *testing.T) {
	m := NewMiddlewares(&fakeUsers{}, &fakeSessions{}, nil, 0)
	called := false
	h := m.ResolveUserMiddleware(func(context.Context, *bot.Bot, *models.Update) { called = true })

	h(context.Background(), nil, &models.Update{})
	assert.False(t, called)
}

func TestSessionMiddleware(t *testing.T) {
	update := &models.Update{CallbackQuery: &models.CallbackQuery{
		From:    models.User{ID: 5},
		Message: models.MaybeInaccessibleMessage{Message: &models.Message{Chat: models.Chat{ID: 500}}},
	}}

	var session *types.Session
	next := func(ctx context.Context, _ *bot.Bot, _ *models.Update) {
		session, _ = contextkeys.GetSession(ctx)
	}

	NewMiddlewares(nil, &fakeSessions{}, nil, 0).SessionMiddleware(next)(context.Background(), nil, update)
	require.NotNil(t, session)
	assert.Equal(t, types.StateSettingsEmail, session.State)
	assert.Equal(t, int64(500), session.ChatID)

	broken := &fakeSessions{err: errors.New("redis down")}
	NewMiddlewares(nil, broken, nil, 0).SessionMiddleware(next)(context.Background(), nil, update)
	require.NotNil(t, session)
	assert.Equal(t, types.StateIdle, session.State)
	assert.Equal(t, int64(5), session.UserID)
}

func TestAnalyzeMessageMiddleware(t *testing.T) {
	m := NewMiddlewares(nil, nil, nil, 0)

	run := func(update *models.Update) context.Context {
		var got context.Context
		m.AnalyzeMessageMiddleware(func(ctx context.Context, _ *bot.Bot, _ *models.Update) {
			got = ctx
		})(context.Background(), nil, update)
		return got
	}

	ctx := run(&models.Update{CallbackQuery: &models.CallbackQuery{Data: "st"}})
	mt, _ := contextkeys.GetMessageType(ctx)
	assert.Equal(t, contextkeys.MessageTypeClickButton, mt)
	data, _ := contextkeys.GetCallbackData(ctx)
	assert.Equal(t, "st", data)

	ctx = run(&models.Update{Message: &models.Message{Text: "/admin"}})
	mt, _ = contextkeys.GetMessageType(ctx)
	assert.Equal(t, contextkeys.MessageTypeCommand, mt)

	ctx = run(&models.Update{Message: &models.Message{Photo: []models.PhotoSize{
		{FileID: "small", FileSize: 100},
		{FileID: "large", FileSize: 900},
		{FileID: "medium", FileSize: 400},
	}}})
	mt, _ = contextkeys.GetMessageType(ctx)
	assert.Equal(t, contextkeys.MessageTypePhoto, mt)
	info, ok := contextkeys.GetFileInfo(ctx)
	require.True(t, ok)
	assert.Equal(t, "large", info.FileID)
}

func TestDetermineMessageType(t *testing.T) {
	assert.Equal(t, contextkeys.MessageTypeText, DetermineMessageType(&models.Message{Text: "hi"}))
	assert.Equal(t, contextkeys.MessageTypeVideo, DetermineMessageType(&models.Message{Video: &models.Video{FileID: "v"}}))
	assert.Equal(t, contextkeys.MessageTypeDocument, DetermineMessageType(&models.Message{Document: &models.Document{FileID: "d"}}))
	assert.Equal(t, contextkeys.MessageTypeUnknown, DetermineMessageType(&models.Message{}))

	info := AnalyzeFile(&models.Message{Document: &models.Document{FileID: "d", FileName: "a.pdf", MimeType: "application/pdf"}})
	require.NotNil(t, info)
	assert.Equal(t, contextkeys.MessageTypeDocument, info.FileType)
	assert.Equal(t, "a.pdf", info.FileName)
	assert.Nil(t, AnalyzeFile(&models.Message{Text: "hi"}))
}

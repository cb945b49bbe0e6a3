package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
)

func TestBuildInlineKeyboard(t *testing.T) {
	buttons := []Button{
		Btn("#1", action.PaymentView, action.PaymentID(1)),
		Btn("#2", action.PaymentView, action.PaymentID(2)),
		{Text: "broken"},
		Btn("#3", action.PaymentView, action.PaymentID(3)),
		URLBtn("site", "https://example.com"),
	}
	kb := BuildInlineKeyboard(buttons, 2)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "pv:1", kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "https://example.com", kb.InlineKeyboard[1][1].URL)

	assert.Len(t, BuildInlineKeyboard(buttons[:1], 0).InlineKeyboard, 1)
}

func TestRowsSkipsEmptyRows(t *testing.T) {
	kb := Rows(
		Row(Btn(messages.BtnBack, action.BackToMain, nil)),
		Row(Button{Text: "no data"}),
	)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "bm", kb.InlineKeyboard[0][0].CallbackData)
}

func TestMainMenuKeyboard(t *testing.T) {
	user := MainMenuKeyboard(false)
	admin := MainMenuKeyboard(true)
	assert.Len(t, admin.Keyboard, len(user.Keyboard)+1)
	assert.Equal(t, messages.BtnAdminPanel, admin.Keyboard[len(admin.Keyboard)-1][0].Text)
	assert.True(t, user.ResizeKeyboard)

	for _, row := range AdminMenuKeyboard().Keyboard {
		for _, b := range row {
			_, ok := MenuKinds[b.Text]
			assert.True(t, ok, b.Text)
		}
	}
}

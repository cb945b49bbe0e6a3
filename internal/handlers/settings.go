package handlers

import (
	"context"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/forms"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/internal/router"
	"github.com/BatmanBruc/bat-bot-shop/internal/utils"
	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/go-telegram/bot"
)

func (bh *Handlers) Settings(ctx context.Context, b *bot.Bot, ev *router.Event) {
	user := bh.refreshUser(ctx, ev)
	kb := utils.Rows(
		utils.Row(utils.Btn(messages.BtnChangeEmail, action.SettingsEmail, nil)),
		utils.Row(utils.Btn(messages.BtnBack, action.BackToMain, nil)),
	)
	bh.show(ctx, b, ev, messages.SettingsText(user.Email), kb)
}

func (bh *Handlers) SettingsEmail(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.answer(ctx, b, ev, "")
	bh.abandonCheckout(ctx, ev)
	ev.Session.Reset()
	ev.Session.Transition(types.StateSettingsEmail)
	kb := utils.Rows(utils.Row(utils.Btn(messages.BtnCancel, action.FlowCancel, nil)))
	bh.send(ctx, b, ev.ChatID, messages.SettingsEnterEmail(), kb)
}

func (bh *Handlers) SettingsEmailInput(ctx context.Context, b *bot.Bot, ev *router.Event) {
	email, err := forms.ParseEmail(ev.Text)
	if err != nil {
		bh.rejectInput(ctx, b, ev, "parsing email", err)
		return
	}
	if err := bh.store.SetUserEmail(ctx, ev.User.ID, email); err != nil {
		bh.fail(ctx, b, ev, "saving email", err)
		return
	}
	ev.User.Email = email
	bh.toMainMenu(ctx, b, ev, messages.SettingsEmailSaved(email))
}

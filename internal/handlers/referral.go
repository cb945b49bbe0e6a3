package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/forms"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/internal/middleware"
	"github.com/BatmanBruc/bat-bot-shop/internal/router"
	"github.com/BatmanBruc/bat-bot-shop/internal/utils"
	"github.com/BatmanBruc/bat-bot-shop/store"
	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const withdrawHistoryLimit = 10

func (bh *Handlers) referralLink(telegramID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%d", bh.botUsername, middleware.ReferralPrefix, telegramID)
}

func (bh *Handlers) Referral(ctx context.Context, b *bot.Bot, ev *router.Event) {
	user := bh.refreshUser(ctx, ev)
	invited, err := bh.store.CountReferrals(ctx, user.ID)
	if err != nil {
		bh.fail(ctx, b, ev, "counting referrals", err)
		return
	}

	kb := utils.Rows(
		utils.Row(utils.Btn(messages.BtnReferralLink, action.ReferralLink, nil)),
		utils.Row(
			utils.Btn(messages.BtnReferralBalance, action.ReferralBalance, nil),
			utils.Btn(messages.BtnWithdraw, action.WithdrawStart, nil),
		),
		utils.Row(utils.Btn(messages.BtnWithdrawHistory, action.WithdrawHistory, nil)),
		utils.Row(utils.Btn(messages.BtnBack, action.BackToMain, nil)),
	)
	bh.show(ctx, b, ev, messages.ReferralInfo(bh.referralLink(user.TelegramID), invited, user.ReferralBalance), kb)
}

func (bh *Handlers) ReferralLink(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.answer(ctx, b, ev, "")
	bh.send(ctx, b, ev.ChatID, messages.ReferralLink(bh.referralLink(ev.User.TelegramID)), nil)
}

func (bh *Handlers) ReferralBalance(ctx context.Context, b *bot.Bot, ev *router.Event) {
	user := bh.refreshUser(ctx, ev)
	bh.answer(ctx, b, ev, "")
	bh.send(ctx, b, ev.ChatID, messages.ReferralBalance(user.ReferralBalance), nil)
}

func withdrawCancelKeyboard() *models.InlineKeyboardMarkup {
	return utils.Rows(utils.Row(utils.Btn(messages.BtnCancel, action.WithdrawCancel, nil)))
}

func (bh *Handlers) WithdrawStart(ctx context.Context, b *bot.Bot, ev *router.Event) {
	user := bh.refreshUser(ctx, ev)
	if user.ReferralBalance < bh.cfg.MinWithdrawal {
		bh.alert(ctx, b, ev, messages.WithdrawBalanceTooLow(user.ReferralBalance, bh.cfg.MinWithdrawal))
		return
	}
	bh.answer(ctx, b, ev, "")
	bh.abandonCheckout(ctx, ev)
	ev.Session.Reset()
	ev.Session.Transition(types.StateWithdrawEnterAmount)
	bh.send(ctx, b, ev.ChatID, messages.WithdrawEnterAmount(user.ReferralBalance, bh.cfg.MinWithdrawal), withdrawCancelKeyboard())
}

func (bh *Handlers) WithdrawAmount(ctx context.Context, b *bot.Bot, ev *router.Event) {
	amount, err := forms.ParseAmount(ev.Text)
	if err != nil {
		bh.rejectInput(ctx, b, ev, "parsing withdrawal amount", err)
		return
	}
	user := bh.refreshUser(ctx, ev)
	switch {
	case amount > user.ReferralBalance:
		bh.send(ctx, b, ev.ChatID, messages.WithdrawInsufficient(user.ReferralBalance), withdrawCancelKeyboard())
		return
	case amount < bh.cfg.MinWithdrawal:
		bh.send(ctx, b, ev.ChatID, messages.WithdrawBelowMinimum(bh.cfg.MinWithdrawal), withdrawCancelKeyboard())
		return
	}

	ev.Session.SetInt64(types.KeyAmount, amount)
	ev.Session.Transition(types.StateWithdrawEnterPhone)
	bh.send(ctx, b, ev.ChatID, messages.WithdrawEnterPhone(), withdrawCancelKeyboard())
}

func (bh *Handlers) WithdrawPhone(ctx context.Context, b *bot.Bot, ev *router.Event) {
	phone, err := forms.ParsePhone(ev.Text)
	if err != nil {
		bh.rejectInput(ctx, b, ev, "parsing phone", err)
		return
	}
	ev.Session.Set(types.KeyPhone, phone)
	ev.Session.Transition(types.StateWithdrawEnterBank)
	bh.send(ctx, b, ev.ChatID, messages.WithdrawEnterBank(), withdrawCancelKeyboard())
}

func (bh *Handlers) WithdrawBank(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bank, err := forms.ParseBank(ev.Text)
	if err != nil {
		bh.rejectInput(ctx, b, ev, "parsing bank", err)
		return
	}
	amount, ok := ev.Session.GetInt64(types.KeyAmount)
	if !ok {
		bh.toMainMenu(ctx, b, ev, messages.WithdrawRestart())
		return
	}
	ev.Session.Set(types.KeyBank, bank)
	ev.Session.Transition(types.StateWithdrawConfirm)
	bh.withdrawConfirmPrompt(ctx, b, ev, amount)
}

// WithdrawConfirmPending repeats the confirmation when text arrives instead of
// a button press.
func (bh *Handlers) WithdrawConfirmPending(ctx context.Context, b *bot.Bot, ev *router.Event) {
	amount, ok := ev.Session.GetInt64(types.KeyAmount)
	if !ok {
		bh.toMainMenu(ctx, b, ev, messages.WithdrawRestart())
		return
	}
	bh.withdrawConfirmPrompt(ctx, b, ev, amount)
}

func (bh *Handlers) withdrawConfirmPrompt(ctx context.Context, b *bot.Bot, ev *router.Event, amount int64) {
	kb := utils.Rows(utils.Row(
		utils.Btn(messages.BtnConfirm, action.WithdrawConfirm, nil),
		utils.Btn(messages.BtnCancel, action.WithdrawCancel, nil),
	))
	text := messages.WithdrawConfirm(amount, ev.Session.Get(types.KeyPhone), ev.Session.Get(types.KeyBank))
	bh.send(ctx, b, ev.ChatID, text, kb)
}

func (bh *Handlers) WithdrawConfirm(ctx context.Context, b *bot.Bot, ev *router.Event) {
	amount, ok := ev.Session.GetInt64(types.KeyAmount)
	phone, bank := ev.Session.Get(types.KeyPhone), ev.Session.Get(types.KeyBank)
	if !ok || phone == "" || bank == "" {
		bh.answer(ctx, b, ev, "")
		bh.toMainMenu(ctx, b, ev, messages.WithdrawRestart())
		return
	}

	req, err := bh.store.CreateWithdrawal(ctx, ev.User.ID, amount, bh.cfg.MinWithdrawal, phone, bank)
	switch {
	case errors.Is(err, store.ErrInsufficientBalance):
		user := bh.refreshUser(ctx, ev)
		ev.Session.Reset()
		bh.show(ctx, b, ev, messages.WithdrawInsufficient(user.ReferralBalance), nil)
		return
	case errors.Is(err, store.ErrBelowMinimum), errors.Is(err, store.ErrInvalidAmount):
		ev.Session.Reset()
		bh.show(ctx, b, ev, messages.WithdrawBelowMinimum(bh.cfg.MinWithdrawal), nil)
		return
	case err != nil:
		bh.fail(ctx, b, ev, "creating withdrawal", err)
		return
	}

	log.Printf("Withdrawal %d created by user %d for %d", req.ID, ev.UserID, req.Amount)
	ev.Session.Reset()
	bh.show(ctx, b, ev, messages.WithdrawCreated(req.Amount), nil)

	kb := decisionKeyboard(action.ApproveWithdrawal, action.RejectWithdrawal, action.WithdrawalID(req.ID))
	bh.notifyAdmins(ctx, b, messages.AdminNewWithdrawal(ev.User.Username, req), kb)
}

func (bh *Handlers) WithdrawCancel(ctx context.Context, b *bot.Bot, ev *router.Event) {
	ev.Session.Reset()
	bh.show(ctx, b, ev, messages.WithdrawCancelled(), nil)
}

func (bh *Handlers) WithdrawHistory(ctx context.Context, b *bot.Bot, ev *router.Event) {
	reqs, err := bh.store.ListUserWithdrawals(ctx, ev.User.ID, withdrawHistoryLimit)
	if err != nil {
		bh.fail(ctx, b, ev, "listing withdrawals", err)
		return
	}
	kb := utils.Rows(utils.Row(utils.Btn(messages.BtnBack, action.BackToMain, nil)))
	bh.show(ctx, b, ev, truncate(messages.WithdrawHistory(reqs), maxMessageRunes), kb)
}

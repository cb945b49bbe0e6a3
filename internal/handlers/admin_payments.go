package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/internal/router"
	"github.com/BatmanBruc/bat-bot-shop/internal/utils"
	"github.com/BatmanBruc/bat-bot-shop/store"
	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/go-telegram/bot"
)

const (
	paymentsReportLimit = 20
	pendingListLimit    = 20
)

func (bh *Handlers) AdminMenu(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.abandonCheckout(ctx, ev)
	bh.toAdminMenu(ctx, b, ev, messages.AdminWelcome())
}

func (bh *Handlers) AdminExit(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.toMainMenu(ctx, b, ev, messages.AdminExit())
}

func (bh *Handlers) AdminBack(ctx context.Context, b *bot.Bot, ev *router.Event) {
	ev.Session.Reset()
	bh.show(ctx, b, ev, messages.AdminBackToPanel(), nil)
}

func (bh *Handlers) ApprovePayment(ctx context.Context, b *bot.Bot, ev *router.Event) {
	id, _ := ev.Action.PaymentID()
	c, err := bh.store.CompletePayment(ctx, id)
	switch {
	case errors.Is(err, store.ErrInvalidTransition):
		bh.paymentAlreadyDecided(ctx, b, ev, id)
		return
	case errors.Is(err, store.ErrNotFound):
		bh.alert(ctx, b, ev, messages.PaymentNotFound())
		return
	case err != nil:
		bh.fail(ctx, b, ev, "completing payment", err)
		return
	}

	log.Printf("Payment %d approved by admin %d", id, ev.UserID)
	bh.answer(ctx, b, ev, "")
	bh.editDecision(ctx, b, ev, func(caption string) string {
		return messages.AdminPaymentApproved(&c.Payment, c.Promo, caption)
	})

	promo := ""
	if c.Promo != nil {
		promo = c.Promo.Code
	}
	kb := utils.Rows(
		utils.Row(utils.Btn(messages.BtnGetMaterials, action.MaterialList, action.ProductName(c.Payment.Product))),
		utils.Row(utils.URLBtn(messages.BtnWriteSupport, bh.cfg.SupportLink)),
		utils.Row(utils.Btn(messages.BtnMainMenu, action.BackToMain, nil)),
	)
	bh.notifyUser(ctx, b, c.Payment.UserID, messages.PaymentApproved(&c.Payment, promo), kb)
}

func (bh *Handlers) RejectPayment(ctx context.Context, b *bot.Bot, ev *router.Event) {
	id, _ := ev.Action.PaymentID()
	p, err := bh.store.RejectPayment(ctx, id)
	switch {
	case errors.Is(err, store.ErrInvalidTransition):
		bh.paymentAlreadyDecided(ctx, b, ev, id)
		return
	case errors.Is(err, store.ErrNotFound):
		bh.alert(ctx, b, ev, messages.PaymentNotFound())
		return
	case err != nil:
		bh.fail(ctx, b, ev, "rejecting payment", err)
		return
	}

	log.Printf("Payment %d rejected by admin %d", id, ev.UserID)
	bh.answer(ctx, b, ev, "")
	bh.editDecision(ctx, b, ev, func(caption string) string {
		return messages.AdminPaymentRejected(p, caption)
	})

	kb := utils.Rows(utils.Row(utils.URLBtn(messages.BtnWriteSupport, bh.cfg.SupportLink)))
	bh.notifyUser(ctx, b, p.UserID, messages.PaymentRejected(p), kb)
}

func (bh *Handlers) paymentAlreadyDecided(ctx context.Context, b *bot.Bot, ev *router.Event, id int64) {
	p, err := bh.store.GetPayment(ctx, id)
	if err != nil {
		bh.fail(ctx, b, ev, "loading payment", err)
		return
	}
	bh.alert(ctx, b, ev, messages.PaymentAlreadyReviewed())
	bh.editDecision(ctx, b, ev, func(caption string) string {
		return messages.AdminPaymentDecided(p, caption)
	})
}

func (bh *Handlers) ApproveWithdrawal(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.decideWithdrawal(ctx, b, ev, true)
}

func (bh *Handlers) RejectWithdrawal(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.decideWithdrawal(ctx, b, ev, false)
}

func (bh *Handlers) decideWithdrawal(ctx context.Context, b *bot.Bot, ev *router.Event, approve bool) {
	id, _ := ev.Action.WithdrawalID()

	var (
		req *types.WithdrawalRequest
		err error
	)
	if approve {
		req, err = bh.store.ApproveWithdrawal(ctx, id)
	} else {
		req, err = bh.store.RejectWithdrawal(ctx, id)
	}
	switch {
	case errors.Is(err, store.ErrInvalidTransition) && req != nil:
		bh.alert(ctx, b, ev, messages.WithdrawalAlreadyDecided())
		bh.editDecision(ctx, b, ev, func(caption string) string {
			return messages.AdminWithdrawalDecided(req, caption)
		})
		return
	case errors.Is(err, store.ErrNotFound):
		bh.alert(ctx, b, ev, messages.ErrorInvalidButton())
		return
	case err != nil:
		bh.fail(ctx, b, ev, "deciding withdrawal", err)
		return
	}

	log.Printf("Withdrawal %d decided by admin %d: %s", id, ev.UserID, req.Status)
	bh.answer(ctx, b, ev, "")
	if approve {
		bh.editDecision(ctx, b, ev, func(caption string) string {
			return messages.AdminWithdrawalApproved(req, caption)
		})
		bh.notifyUser(ctx, b, req.UserID, messages.WithdrawApproved(req), nil)
		return
	}
	bh.editDecision(ctx, b, ev, func(caption string) string {
		return messages.AdminWithdrawalRejected(req, caption)
	})
	bh.notifyUser(ctx, b, req.UserID, messages.WithdrawRejected(req), nil)
}

func (bh *Handlers) AdminPayments(ctx context.Context, b *bot.Bot, ev *router.Event) {
	kb := utils.Rows(
		utils.Row(
			utils.Btn(messages.BtnToday, action.PaymentsFilter, action.PaymentsPeriod{Period: types.PeriodToday}),
			utils.Btn(messages.BtnWeek, action.PaymentsFilter, action.PaymentsPeriod{Period: types.PeriodWeek}),
		),
		utils.Row(
			utils.Btn(messages.BtnMonth, action.PaymentsFilter, action.PaymentsPeriod{Period: types.PeriodMonth}),
			utils.Btn(messages.BtnAllTime, action.PaymentsFilter, action.PaymentsPeriod{Period: types.PeriodAll}),
		),
		utils.Row(utils.Btn(messages.BtnPendingPayments, action.PaymentsPending, nil)),
		utils.Row(utils.Btn(messages.BtnPendingPayouts, action.WithdrawalsPending, nil)),
		utils.Row(utils.Btn(messages.BtnBackToAdmin, action.AdminBack, nil)),
	)
	bh.show(ctx, b, ev, messages.PaymentsChoosePeriod(), kb)
}

func (bh *Handlers) PaymentsReport(ctx context.Context, b *bot.Bot, ev *router.Event) {
	period := ev.Action.Period()
	payments, err := bh.store.ListPayments(ctx, types.PaymentFilter{
		Status: types.PaymentCompleted,
		Since:  period.Since(time.Now()),
		Limit:  paymentsReportLimit,
	})
	if err != nil {
		bh.fail(ctx, b, ev, "listing payments", err)
		return
	}

	back := utils.Btn(messages.BtnBackToPayments, action.AdminPayments, nil)
	if len(payments) == 0 {
		bh.show(ctx, b, ev, messages.NoPayments(period), utils.Rows(utils.Row(back)))
		return
	}

	ids := make([]int64, 0, len(payments))
	buttons := make([]utils.Button, 0, len(payments)+1)
	for _, p := range payments {
		ids = append(ids, p.UserID)
		buttons = append(buttons, utils.Btn(fmt.Sprintf("#%d", p.ID), action.PaymentView, action.PaymentID(p.ID)))
	}
	kb := utils.BuildInlineKeyboard(buttons, 4)
	kb.InlineKeyboard = append(kb.InlineKeyboard, utils.Rows(utils.Row(back)).InlineKeyboard...)

	text := messages.PaymentsReport(period, payments, bh.usernames(ctx, ids))
	bh.show(ctx, b, ev, truncate(text, maxMessageRunes), kb)
}

func (bh *Handlers) PaymentView(ctx context.Context, b *bot.Bot, ev *router.Event) {
	id, _ := ev.Action.PaymentID()
	p, err := bh.store.GetPayment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		bh.alert(ctx, b, ev, messages.PaymentNotFound())
		return
	}
	if err != nil {
		bh.fail(ctx, b, ev, "loading payment", err)
		return
	}

	text := messages.PaymentDetails(p, bh.usernames(ctx, []int64{p.UserID})[p.UserID])
	if p.Status == types.PaymentPending && p.CheckFileID != "" {
		bh.answer(ctx, b, ev, "")
		bh.sendPhoto(ctx, b, ev.ChatID, p.CheckFileID, text, decisionKeyboard(action.ApprovePayment, action.RejectPayment, action.PaymentID(p.ID)))
		return
	}
	kb := utils.Rows(utils.Row(utils.Btn(messages.BtnBackToPayments, action.AdminPayments, nil)))
	bh.show(ctx, b, ev, text, kb)
}

// PendingPayments resends every payment still waiting for a decision.
func (bh *Handlers) PendingPayments(ctx context.Context, b *bot.Bot, ev *router.Event) {
	payments, err := bh.store.ListPayments(ctx, types.PaymentFilter{Status: types.PaymentPending, Limit: pendingListLimit})
	if err != nil {
		bh.fail(ctx, b, ev, "listing pending payments", err)
		return
	}
	bh.answer(ctx, b, ev, "")
	bh.send(ctx, b, ev.ChatID, messages.PendingPayments(len(payments)), nil)

	ids := make([]int64, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.UserID)
	}
	users := bh.usernames(ctx, ids)
	for i := range payments {
		p := &payments[i]
		if p.CheckFileID == "" {
			kb := utils.Rows(utils.Row(utils.Btn(messages.BtnReject, action.RejectPayment, action.PaymentID(p.ID))))
			bh.send(ctx, b, ev.ChatID, messages.PendingPaymentNoCheck(p), kb)
			continue
		}
		kb := decisionKeyboard(action.ApprovePayment, action.RejectPayment, action.PaymentID(p.ID))
		bh.sendPhoto(ctx, b, ev.ChatID, p.CheckFileID, messages.AdminNewCheck("", users[p.UserID], p), kb)
	}
}

func (bh *Handlers) PendingWithdrawals(ctx context.Context, b *bot.Bot, ev *router.Event) {
	reqs, err := bh.store.ListPendingWithdrawals(ctx)
	if err != nil {
		bh.fail(ctx, b, ev, "listing pending withdrawals", err)
		return
	}
	bh.answer(ctx, b, ev, "")
	bh.send(ctx, b, ev.ChatID, messages.PendingWithdrawals(len(reqs)), nil)

	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.UserID)
	}
	users := bh.usernames(ctx, ids)
	for i := range reqs {
		r := &reqs[i]
		kb := decisionKeyboard(action.ApproveWithdrawal, action.RejectWithdrawal, action.WithdrawalID(r.ID))
		bh.send(ctx, b, ev.ChatID, messages.AdminNewWithdrawal(users[r.UserID], r), kb)
	}
}

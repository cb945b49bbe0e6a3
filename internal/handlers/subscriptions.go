package handlers

import (
	"context"
	"time"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/internal/router"
	"github.com/BatmanBruc/bat-bot-shop/internal/utils"
	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/go-telegram/bot"
)

const historyPaymentsLimit = 100

func (bh *Handlers) Subscriptions(ctx context.Context, b *bot.Bot, ev *router.Event) {
	subs, err := bh.store.ListUserSubscriptions(ctx, ev.User.ID)
	if err != nil {
		bh.fail(ctx, b, ev, "listing subscriptions", err)
		return
	}
	payments, err := bh.store.ListUserPayments(ctx, ev.User.ID, 1, 0)
	if err != nil {
		bh.fail(ctx, b, ev, "listing payments", err)
		return
	}

	now := time.Now()
	active := 0
	for _, s := range subs {
		if s.Current(now) {
			active++
		}
	}
	hasHistory := len(payments) > 0

	buttons := []utils.Button{}
	if hasHistory || active > 0 {
		buttons = append(buttons, utils.Btn(messages.BtnOrderHistory, action.SubsHistory, nil))
	}
	buttons = append(buttons, utils.Btn(messages.BtnBack, action.BackToMain, nil))
	bh.show(ctx, b, ev, messages.SubscriptionsSummary(active, hasHistory), utils.BuildInlineKeyboard(buttons, 1))
}

func (bh *Handlers) OrderHistory(ctx context.Context, b *bot.Bot, ev *router.Event) {
	subs, err := bh.store.ListUserSubscriptions(ctx, ev.User.ID)
	if err != nil {
		bh.fail(ctx, b, ev, "listing subscriptions", err)
		return
	}
	payments, err := bh.store.ListUserPayments(ctx, ev.User.ID, historyPaymentsLimit, 0)
	if err != nil {
		bh.fail(ctx, b, ev, "listing payments", err)
		return
	}

	active, expired, rejected := buildHistory(subs, payments, time.Now())
	kb := utils.Rows(utils.Row(utils.Btn(messages.BtnBack, action.BackToMain, nil)))
	bh.show(ctx, b, ev, truncate(messages.OrderHistory(active, expired, rejected), maxMessageRunes), kb)
}

type historyKey struct {
	product string
	tariff  string
}

// buildHistory renders the order history. Payments are expected newest first.
// Completed payments collapse to one entry per product and tariff and are
// hidden while a current subscription covers them; pending payments are not
// shown at all.
func buildHistory(subs []types.Subscription, payments []types.Payment, now time.Time) (active, expired, rejected []string) {
	promo := make(map[historyKey]string)
	for _, p := range payments {
		if p.Status != types.PaymentCompleted {
			continue
		}
		k := historyKey{p.Product, p.Tariff}
		if _, ok := promo[k]; !ok {
			promo[k] = p.PromoCode
		}
	}

	current := make(map[historyKey]bool)
	for _, s := range subs {
		if !s.Current(now) {
			continue
		}
		k := historyKey{s.Product, s.Tariff}
		current[k] = true
		active = append(active, messages.ActiveSubscriptionEntry(s, promo[k]))
	}

	seen := make(map[historyKey]bool)
	for _, p := range payments {
		switch p.Status {
		case types.PaymentCompleted:
			k := historyKey{p.Product, p.Tariff}
			if current[k] || seen[k] {
				continue
			}
			seen[k] = true
			expired = append(expired, messages.ExpiredPaymentEntry(p))
		case types.PaymentRejected:
			rejected = append(rejected, messages.RejectedPaymentEntry(p))
		}
	}
	return active, expired, rejected
}

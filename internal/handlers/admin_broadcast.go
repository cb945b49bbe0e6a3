package handlers

import (
	"context"
	"log"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/forms"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/internal/router"
	"github.com/BatmanBruc/bat-bot-shop/internal/utils"
	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/go-telegram/bot"
)

const broadcastHistoryLimit = 10

func (bh *Handlers) AdminBroadcast(ctx context.Context, b *bot.Bot, ev *router.Event) {
	ev.Session.Reset()
	ev.Session.Transition(types.StateAdminBroadcastText)
	kb := utils.Rows(
		utils.Row(utils.Btn(messages.BtnBroadcastLog, action.BroadcastHistory, nil)),
		utils.Row(utils.Btn(messages.BtnCancel, action.FlowCancel, nil)),
	)
	bh.send(ctx, b, ev.ChatID, messages.BroadcastEnterText(), kb)
}

func (bh *Handlers) BroadcastTextInput(ctx context.Context, b *bot.Bot, ev *router.Event) {
	text, err := forms.ParseBroadcastText(ev.Text)
	if err != nil {
		bh.rejectInput(ctx, b, ev, "parsing broadcast", err)
		return
	}
	ev.Session.Set(types.KeyText, text)
	ev.Session.Transition(types.StateAdminBroadcastConfirm)
	bh.broadcastPreview(ctx, b, ev, text)
}

func (bh *Handlers) BroadcastConfirmPending(ctx context.Context, b *bot.Bot, ev *router.Event) {
	text := ev.Session.Get(types.KeyText)
	if text == "" {
		bh.toAdminMenu(ctx, b, ev, messages.BroadcastMissingText())
		return
	}
	bh.broadcastPreview(ctx, b, ev, text)
}

func (bh *Handlers) broadcastPreview(ctx context.Context, b *bot.Bot, ev *router.Event, text string) {
	kb := utils.Rows(utils.Row(
		utils.Btn(messages.BtnSend, action.BroadcastConfirm, nil),
		utils.Btn(messages.BtnCancel, action.BroadcastCancel, nil),
	))
	bh.send(ctx, b, ev.ChatID, truncate(messages.BroadcastPreview(text), maxMessageRunes), kb)
}

func (bh *Handlers) BroadcastConfirm(ctx context.Context, b *bot.Bot, ev *router.Event) {
	text := ev.Session.Get(types.KeyText)
	if text == "" {
		bh.answer(ctx, b, ev, "")
		bh.toAdminMenu(ctx, b, ev, messages.BroadcastMissingText())
		return
	}

	job, err := bh.broadcaster.Enqueue(ctx, ev.ChatID, text)
	if err != nil {
		bh.fail(ctx, b, ev, "queueing broadcast", err)
		return
	}
	log.Printf("Broadcast job %s queued by admin %d", job.ID, ev.UserID)

	ev.Session.Reset()
	bh.show(ctx, b, ev, messages.BroadcastQueued(), nil)
}

func (bh *Handlers) BroadcastCancel(ctx context.Context, b *bot.Bot, ev *router.Event) {
	ev.Session.Reset()
	bh.show(ctx, b, ev, messages.BroadcastCancelled(), nil)
}

func (bh *Handlers) BroadcastHistory(ctx context.Context, b *bot.Bot, ev *router.Event) {
	items, err := bh.store.ListBroadcasts(ctx, broadcastHistoryLimit)
	if err != nil {
		bh.fail(ctx, b, ev, "listing broadcasts", err)
		return
	}
	kb := utils.Rows(utils.Row(utils.Btn(messages.BtnBackToAdmin, action.AdminBack, nil)))
	bh.show(ctx, b, ev, truncate(messages.BroadcastHistory(items), maxMessageRunes), kb)
}

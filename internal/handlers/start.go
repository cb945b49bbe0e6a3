package handlers

import (
	"context"
	"log"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/internal/router"
	"github.com/BatmanBruc/bat-bot-shop/internal/utils"
	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/go-telegram/bot"
)

func (bh *Handlers) Start(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.abandonCheckout(ctx, ev)
	bh.toMainMenu(ctx, b, ev, messages.Welcome())
}

func (bh *Handlers) MainMenu(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.abandonCheckout(ctx, ev)
	bh.answer(ctx, b, ev, "")
	bh.toMainMenu(ctx, b, ev, messages.MainMenuText())
}

// Cancel leaves any flow. Admin flows return to the admin panel.
func (bh *Handlers) Cancel(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.abandonCheckout(ctx, ev)
	bh.answer(ctx, b, ev, "")
	if ev.Admin && ev.Session.State.IsAdmin() {
		bh.toAdminMenu(ctx, b, ev, messages.FlowCancelled())
		return
	}
	bh.toMainMenu(ctx, b, ev, messages.FlowCancelled())
}

// abandonCheckout drops a payment the user left before uploading a check.
func (bh *Handlers) abandonCheckout(ctx context.Context, ev *router.Event) {
	switch ev.Session.State {
	case types.StatePurchaseEnterEmail, types.StatePurchaseUploadCheck:
	default:
		return
	}
	paymentID, ok := ev.Session.GetInt64(types.KeyPaymentID)
	if !ok {
		return
	}
	if err := bh.store.CancelCheckout(ctx, paymentID, ev.User.ID); err == nil {
		log.Printf("Checkout %d abandoned by user %d", paymentID, ev.UserID)
	}
}

func (bh *Handlers) Support(ctx context.Context, b *bot.Bot, ev *router.Event) {
	kb := utils.Rows(
		utils.Row(utils.URLBtn(messages.BtnWriteSupport, bh.cfg.SupportLink)),
		utils.Row(utils.Btn(messages.BtnBack, action.BackToMain, nil)),
	)
	bh.show(ctx, b, ev, messages.SupportText(), kb)
}

// channelGate reports whether the user may enter a gated section and shows the
// subscribe prompt when not.
func (bh *Handlers) channelGate(ctx context.Context, b *bot.Bot, ev *router.Event) bool {
	if bh.members.IsMember(ctx, b, ev.UserID) {
		return true
	}
	kb := utils.Rows(
		utils.Row(utils.URLBtn(messages.BtnSubscribe, bh.cfg.ChannelURL)),
		utils.Row(utils.Btn(messages.BtnCheckChannel, action.CheckChannel, nil)),
	)
	bh.show(ctx, b, ev, messages.ChannelRequired(), kb)
	return false
}

func (bh *Handlers) CheckChannel(ctx context.Context, b *bot.Bot, ev *router.Event) {
	if !bh.members.IsMember(ctx, b, ev.UserID) {
		bh.alert(ctx, b, ev, messages.ChannelNotSubscribed())
		return
	}
	bh.answer(ctx, b, ev, "")
	bh.send(ctx, b, ev.ChatID, messages.ChannelConfirmed(), utils.MainMenuKeyboard(ev.Admin))
	bh.Store(ctx, b, ev)
}

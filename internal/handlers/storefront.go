package handlers

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/forms"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/internal/router"
	"github.com/BatmanBruc/bat-bot-shop/internal/utils"
	"github.com/BatmanBruc/bat-bot-shop/store"
	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func (bh *Handlers) Store(ctx context.Context, b *bot.Bot, ev *router.Event) {
	if !bh.channelGate(ctx, b, ev) {
		return
	}

	products, err := bh.store.ListProducts(ctx, true)
	if err != nil {
		bh.fail(ctx, b, ev, "listing products", err)
		return
	}

	buttons := make([]utils.Button, 0, len(products)+1)
	for _, p := range products {
		buttons = append(buttons, utils.Btn(p.Name, action.StoreProduct, action.ProductName(p.Name)))
	}
	buttons = append(buttons, utils.Btn(messages.BtnBack, action.BackToMain, nil))

	bh.show(ctx, b, ev, messages.StoreProducts(len(products) == 0), utils.BuildInlineKeyboard(buttons, 1))
}

func (bh *Handlers) ProductCard(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, _ := ev.Action.Product()
	product, err := bh.store.GetProduct(ctx, name)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !product.Active) {
		bh.alert(ctx, b, ev, messages.ProductNotFound())
		return
	}
	if err != nil {
		bh.fail(ctx, b, ev, "loading product", err)
		return
	}

	plans, err := bh.store.ListPlans(ctx, product.Name)
	if err != nil {
		bh.fail(ctx, b, ev, "listing plans", err)
		return
	}

	buttons := make([]utils.Button, 0, len(plans)+1)
	for _, p := range plans {
		buttons = append(buttons, utils.Btn(messages.PlanButton(p), action.SelectPlan, action.PlanID(p.ID)))
	}
	buttons = append(buttons, utils.Btn(messages.BtnBackToStore, action.StoreOpen, nil))
	kb := utils.BuildInlineKeyboard(buttons, 1)
	text := messages.ProductCard(product, len(plans) > 0)

	if product.PhotoFileID == "" {
		bh.show(ctx, b, ev, text, kb)
		return
	}
	bh.answer(ctx, b, ev, "")
	bh.sendPhoto(ctx, b, ev.ChatID, product.PhotoFileID, text, kb)
}

func (bh *Handlers) SelectPlan(ctx context.Context, b *bot.Bot, ev *router.Event) {
	planID, _ := ev.Action.PlanID()
	bh.abandonCheckout(ctx, ev)

	res, err := bh.store.Checkout(ctx, ev.User.ID, planID)
	if errors.Is(err, store.ErrNotFound) {
		bh.alert(ctx, b, ev, messages.PlanNotFound())
		return
	}
	if err != nil {
		bh.fail(ctx, b, ev, "starting checkout", err)
		return
	}
	bh.answer(ctx, b, ev, "")

	if res.Subscription != nil {
		log.Printf("Free plan %d activated for user %d", res.Plan.ID, ev.UserID)
		bh.toMainMenu(ctx, b, ev, messages.FreePlanActivated(res.Plan.Product, res.Plan.Name))
		return
	}

	ev.Session.Reset()
	ev.Session.SetInt64(types.KeyPaymentID, res.Payment.ID)
	ev.Session.Set(types.KeyProduct, res.Plan.Product)
	ev.Session.SetInt64(types.KeyPlan, res.Plan.ID)

	ev.Session.Transition(types.StatePurchaseEnterEmail)

	kb := utils.Rows(utils.Row(utils.Btn(messages.BtnCancelPurchase, action.CancelPurchase, nil)))
	text := messages.PurchaseEnterEmail(res.Plan.Product, res.Plan.Name, res.Plan.Price, res.Payment.Email)
	bh.send(ctx, b, ev.ChatID, text, kb)
}

func (bh *Handlers) PurchaseEmail(ctx context.Context, b *bot.Bot, ev *router.Event) {
	email, err := forms.ParseEmail(ev.Text)
	if err != nil {
		bh.rejectInput(ctx, b, ev, "parsing email", err)
		return
	}
	paymentID, ok := ev.Session.GetInt64(types.KeyPaymentID)
	if !ok {
		bh.toMainMenu(ctx, b, ev, messages.PaymentNotFound())
		return
	}

	payment, err := bh.store.SetPaymentEmail(ctx, paymentID, ev.User.ID, email)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidTransition) {
		bh.toMainMenu(ctx, b, ev, messages.PaymentNotFound())
		return
	}
	if err != nil {
		bh.fail(ctx, b, ev, "saving payment email", err)
		return
	}
	if ev.User.Email == "" {
		ev.User.Email = email
	}
	bh.showRequisites(ctx, b, ev, payment)
}

func (bh *Handlers) showRequisites(ctx context.Context, b *bot.Bot, ev *router.Event, p *types.Payment) {
	requisites, err := bh.store.GetSetting(ctx, types.SettingRequisites)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		bh.fail(ctx, b, ev, "loading requisites", err)
		return
	}

	ev.Session.Transition(types.StatePurchaseUploadCheck)
	kb := utils.Rows(
		utils.Row(utils.Btn(messages.BtnPaidUpload, action.PayUpload, nil)),
		utils.Row(utils.Btn(messages.BtnCancelPurchase, action.CancelPurchase, nil)),
	)
	bh.send(ctx, b, ev.ChatID, messages.PurchaseRequisites(p.Product, p.Tariff, p.Price, requisites), kb)
}

func (bh *Handlers) PayUpload(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.answer(ctx, b, ev, "")
	kb := utils.Rows(utils.Row(utils.Btn(messages.BtnCancelPurchase, action.CancelPurchase, nil)))
	bh.send(ctx, b, ev.ChatID, messages.PurchaseUploadCheck(), kb)
}

// UploadCheck attaches the photo to the pending payment and forwards it to the
// admins. The state is kept so a later photo replaces the check.
func (bh *Handlers) UploadCheck(ctx context.Context, b *bot.Bot, ev *router.Event) {
	paymentID, ok := ev.Session.GetInt64(types.KeyPaymentID)
	if !ok || ev.FileID == "" {
		bh.toMainMenu(ctx, b, ev, messages.PaymentNotFound())
		return
	}

	payment, err := bh.store.AttachCheck(ctx, paymentID, ev.User.ID, ev.FileID)
	switch {
	case errors.Is(err, store.ErrInvalidTransition):
		bh.toMainMenu(ctx, b, ev, messages.PaymentAlreadyReviewed())
		return
	case errors.Is(err, store.ErrNotFound):
		bh.toMainMenu(ctx, b, ev, messages.PaymentNotFound())
		return
	case err != nil:
		bh.fail(ctx, b, ev, "attaching check", err)
		return
	}

	bh.send(ctx, b, ev.ChatID, messages.PurchaseCheckSent(), utils.MainMenuKeyboard(ev.Admin))

	caption := messages.AdminNewCheck(payerName(ev.Update), ev.User.Username, payment)
	kb := decisionKeyboard(action.ApprovePayment, action.RejectPayment, action.PaymentID(payment.ID))
	for _, chatID := range bh.adminChats() {
		bh.sendPhoto(ctx, b, chatID, payment.CheckFileID, caption, kb)
	}
}

func (bh *Handlers) CheckNotPhoto(ctx context.Context, b *bot.Bot, ev *router.Event) {
	kb := utils.Rows(utils.Row(utils.Btn(messages.BtnCancelPurchase, action.CancelPurchase, nil)))
	bh.send(ctx, b, ev.ChatID, messages.PurchaseSendPhoto(), kb)
}

func (bh *Handlers) CancelPurchase(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.abandonCheckout(ctx, ev)
	bh.show(ctx, b, ev, messages.PurchaseCancelled(), nil)
	bh.toMainMenu(ctx, b, ev, messages.MainMenuText())
}

func decisionKeyboard(approve, reject action.Kind, id action.Payload) *models.InlineKeyboardMarkup {
	return utils.Rows(utils.Row(
		utils.Btn(messages.BtnApprove, approve, id),
		utils.Btn(messages.BtnReject, reject, id),
	))
}

func payerName(update *models.Update) string {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return ""
	}
	from := update.Message.From
	return strings.TrimSpace(from.FirstName + " " + from.LastName)
}

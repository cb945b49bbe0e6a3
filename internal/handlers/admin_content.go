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
)

// maxPromoButtons caps the delete buttons under a promo list.
const maxPromoButtons = 30

func (bh *Handlers) PromoList(ctx context.Context, b *bot.Bot, ev *router.Event) {
	q, _ := ev.Action.PromoQuery()
	codes, err := bh.store.ListPromoCodes(ctx, q.Product, q.Filter)
	if err != nil {
		bh.fail(ctx, b, ev, "listing promo codes", err)
		return
	}

	var ids []int64
	var del []utils.Button
	for _, c := range codes {
		if c.IssuedToUserID != nil {
			ids = append(ids, *c.IssuedToUserID)
		}
		if c.Status == types.PromoNotIssued && len(del) < maxPromoButtons {
			del = append(del, utils.Btn("🗑 "+c.Code, action.PromoDelete, action.PromoID(c.ID)))
		}
	}

	filter := func(label string, f types.PromoFilter) utils.Button {
		if f == q.Filter {
			label = "• " + label
		}
		return utils.Btn(label, action.PromoList, action.PromoQuery{Product: q.Product, Filter: f})
	}
	kb := utils.Rows(utils.Row(
		filter(messages.BtnPromoAll, types.PromoFilterAll),
		filter(messages.BtnPromoUnused, types.PromoFilterUnused),
		filter(messages.BtnPromoUsed, types.PromoFilterUsed),
	))
	kb.InlineKeyboard = append(kb.InlineKeyboard, utils.BuildInlineKeyboard(del, 2).InlineKeyboard...)
	kb.InlineKeyboard = append(kb.InlineKeyboard, utils.Rows(
		utils.Row(utils.Btn(messages.BtnAddPromo, action.PromoAdd, action.ProductName(q.Product))),
		utils.Row(utils.Btn(messages.BtnBackToProduct, action.ProductView, action.ProductName(q.Product))),
	).InlineKeyboard...)

	text := messages.PromoList(q.Product, q.Filter, codes, bh.usernames(ctx, ids))
	bh.show(ctx, b, ev, truncate(text, maxMessageRunes), kb)
}

func (bh *Handlers) PromoAdd(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, _ := ev.Action.Product()
	bh.answer(ctx, b, ev, "")
	ev.Session.Reset()
	ev.Session.Set(types.KeyProduct, name)
	ev.Session.Transition(types.StateAdminPromoInput)
	bh.send(ctx, b, ev.ChatID, messages.PromoEnterCodes(name), adminCancelKeyboard())
}

func (bh *Handlers) PromoInput(ctx context.Context, b *bot.Bot, ev *router.Event) {
	valid, invalid := forms.ParsePromoCodes(ev.Text)
	if len(valid) == 0 && len(invalid) == 0 {
		bh.reject(ctx, b, ev, messages.PromoNoneSent())
		return
	}
	product := ev.Session.Get(types.KeyProduct)

	var res types.BulkAddResult
	if len(valid) > 0 {
		var err error
		res, err = bh.store.AddPromoCodes(ctx, product, nil, valid)
		if errors.Is(err, store.ErrNotFound) {
			bh.toAdminMenu(ctx, b, ev, messages.ProductNotFound())
			return
		}
		if err != nil {
			bh.fail(ctx, b, ev, "adding promo codes", err)
			return
		}
	}

	log.Printf("Admin %d added %d promo codes to %q", ev.UserID, res.Added, product)
	ev.Session.Reset()
	kb := utils.Rows(
		utils.Row(utils.Btn(messages.BtnPromos, action.PromoList, action.PromoQuery{Product: product, Filter: types.PromoFilterUnused})),
		utils.Row(utils.Btn(messages.BtnBackToProduct, action.ProductView, action.ProductName(product))),
	)
	bh.send(ctx, b, ev.ChatID, truncate(messages.PromoAdded(res, invalid), maxMessageRunes), kb)
}

func (bh *Handlers) PromoDelete(ctx context.Context, b *bot.Bot, ev *router.Event) {
	id, _ := ev.Action.PromoID()
	err := bh.store.DeletePromoCode(ctx, id)
	switch {
	case errors.Is(err, store.ErrPromoIssued):
		bh.alert(ctx, b, ev, messages.PromoIssuedCannotDelete())
	case errors.Is(err, store.ErrNotFound):
		bh.alert(ctx, b, ev, messages.ErrorInvalidButton())
	case err != nil:
		bh.fail(ctx, b, ev, "deleting promo code", err)
	default:
		bh.alert(ctx, b, ev, messages.PromoDeleted())
	}
}

func (bh *Handlers) MaterialAdminList(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, _ := ev.Action.Product()
	bh.showMaterialsAdmin(ctx, b, ev, name)
}

func (bh *Handlers) showMaterialsAdmin(ctx context.Context, b *bot.Bot, ev *router.Event, product string) {
	mats, err := bh.store.ListMaterials(ctx, product)
	if err != nil {
		bh.fail(ctx, b, ev, "listing materials", err)
		return
	}

	buttons := make([]utils.Button, 0, len(mats)+2)
	for _, m := range mats {
		buttons = append(buttons, utils.Btn("🗑 "+m.Title, action.MaterialDelete, action.MaterialID(m.ID)))
	}
	buttons = append(buttons,
		utils.Btn(messages.BtnAddMaterial, action.MaterialAdd, action.ProductName(product)),
		utils.Btn(messages.BtnBackToProduct, action.ProductView, action.ProductName(product)),
	)
	bh.show(ctx, b, ev, truncate(messages.MaterialsAdmin(product, mats), maxMessageRunes), utils.BuildInlineKeyboard(buttons, 1))
}

func (bh *Handlers) MaterialAdd(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, _ := ev.Action.Product()
	bh.answer(ctx, b, ev, "")
	ev.Session.Reset()
	ev.Session.Set(types.KeyProduct, name)
	ev.Session.Transition(types.StateAdminMaterialTitle)
	bh.send(ctx, b, ev.ChatID, messages.MaterialEnterTitle(name), adminCancelKeyboard())
}

func (bh *Handlers) MaterialTitleInput(ctx context.Context, b *bot.Bot, ev *router.Event) {
	title := strings.TrimSpace(ev.Text)
	if title == "" {
		bh.reject(ctx, b, ev, messages.EmptyTitle())
		return
	}
	ev.Session.Set(types.KeyTitle, title)
	ev.Session.Transition(types.StateAdminMaterialContent)
	bh.send(ctx, b, ev.ChatID, messages.MaterialEnterContent(), adminCancelKeyboard())
}

// MaterialContentInput accepts text, a file, or a file with a caption.
func (bh *Handlers) MaterialContentInput(ctx context.Context, b *bot.Bot, ev *router.Event) {
	text := forms.ParseMaterialText(ev.Text)
	if text == "" && ev.FileID == "" {
		bh.reject(ctx, b, ev, messages.MaterialNeedContent())
		return
	}
	product, title := ev.Session.Get(types.KeyProduct), ev.Session.Get(types.KeyTitle)

	m, err := bh.store.AddMaterial(ctx, types.Material{
		Product:  product,
		Title:    title,
		Text:     text,
		FileID:   ev.FileID,
		FileKind: ev.FileKind,
	})
	if errors.Is(err, store.ErrNotFound) {
		bh.toAdminMenu(ctx, b, ev, messages.ProductNotFound())
		return
	}
	if err != nil {
		bh.fail(ctx, b, ev, "adding material", err)
		return
	}

	ev.Session.Reset()
	id := action.ProductName(product)
	kb := utils.Rows(
		utils.Row(utils.Btn(messages.BtnAddMaterial, action.MaterialAdd, id)),
		utils.Row(utils.Btn(messages.BtnMaterialsList, action.MaterialAdminList, id)),
		utils.Row(utils.Btn(messages.BtnBackToProduct, action.ProductView, id)),
	)
	bh.send(ctx, b, ev.ChatID, messages.MaterialAdded(m.Title), kb)
}

func (bh *Handlers) MaterialDelete(ctx context.Context, b *bot.Bot, ev *router.Event) {
	id, _ := ev.Action.MaterialID()
	m, err := bh.store.GetMaterial(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		bh.alert(ctx, b, ev, messages.MaterialNotFound())
		return
	}
	if err != nil {
		bh.fail(ctx, b, ev, "loading material", err)
		return
	}
	if err := bh.store.DeleteMaterial(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		bh.fail(ctx, b, ev, "deleting material", err)
		return
	}
	bh.answer(ctx, b, ev, messages.MaterialDeleted())
	bh.showMaterialsAdmin(ctx, b, ev, m.Product)
}

func (bh *Handlers) AdminRequisites(ctx context.Context, b *bot.Bot, ev *router.Event) {
	current, err := bh.store.GetSetting(ctx, types.SettingRequisites)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		bh.fail(ctx, b, ev, "loading requisites", err)
		return
	}
	kb := utils.Rows(
		utils.Row(utils.Btn(messages.BtnEditRequisites, action.RequisitesEdit, nil)),
		utils.Row(utils.Btn(messages.BtnBackToAdmin, action.AdminBack, nil)),
	)
	bh.show(ctx, b, ev, messages.Requisites(current), kb)
}

func (bh *Handlers) RequisitesEdit(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.answer(ctx, b, ev, "")
	ev.Session.Reset()
	ev.Session.Transition(types.StateAdminRequisites)
	bh.send(ctx, b, ev.ChatID, messages.RequisitesEnter(), adminCancelKeyboard())
}

func (bh *Handlers) RequisitesInput(ctx context.Context, b *bot.Bot, ev *router.Event) {
	requisites, err := forms.ParseRequisites(ev.Text)
	if err != nil {
		bh.rejectInput(ctx, b, ev, "parsing requisites", err)
		return
	}
	if err := bh.store.SetSetting(ctx, types.SettingRequisites, requisites); err != nil {
		bh.fail(ctx, b, ev, "saving requisites", err)
		return
	}
	log.Printf("Requisites updated by admin %d", ev.UserID)
	bh.toAdminMenu(ctx, b, ev, messages.RequisitesUpdated())
}

package handlers

import (
	"context"
	"errors"
	"slices"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/internal/router"
	"github.com/BatmanBruc/bat-bot-shop/internal/utils"
	"github.com/BatmanBruc/bat-bot-shop/store"
	"github.com/go-telegram/bot"
)

func (bh *Handlers) Materials(ctx context.Context, b *bot.Bot, ev *router.Event) {
	if !bh.channelGate(ctx, b, ev) {
		return
	}

	products, err := bh.store.ListSubscribedProducts(ctx, ev.User.ID)
	if err != nil {
		bh.fail(ctx, b, ev, "listing subscribed products", err)
		return
	}

	buttons := make([]utils.Button, 0, len(products)+1)
	for _, p := range products {
		buttons = append(buttons, utils.Btn(p, action.MaterialList, action.ProductName(p)))
	}
	buttons = append(buttons, utils.Btn(messages.BtnBack, action.BackToMain, nil))
	bh.show(ctx, b, ev, messages.MaterialsChooseProduct(len(products) == 0), utils.BuildInlineKeyboard(buttons, 1))
}

// hasAccess reports whether the user holds a current subscription to product.
func (bh *Handlers) hasAccess(ctx context.Context, userID int64, product string) (bool, error) {
	products, err := bh.store.ListSubscribedProducts(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(products, product), nil
}

func (bh *Handlers) MaterialList(ctx context.Context, b *bot.Bot, ev *router.Event) {
	product, _ := ev.Action.Product()
	if !bh.channelGate(ctx, b, ev) {
		return
	}

	ok, err := bh.hasAccess(ctx, ev.User.ID, product)
	if err != nil {
		bh.fail(ctx, b, ev, "checking material access", err)
		return
	}
	if !ok {
		bh.alert(ctx, b, ev, messages.MaterialNoAccess())
		return
	}

	mats, err := bh.store.ListMaterials(ctx, product)
	if err != nil {
		bh.fail(ctx, b, ev, "listing materials", err)
		return
	}

	buttons := make([]utils.Button, 0, len(mats)+1)
	for _, m := range mats {
		buttons = append(buttons, utils.Btn(m.Title, action.MaterialGet, action.MaterialID(m.ID)))
	}
	buttons = append(buttons, utils.Btn(messages.BtnBackToMaterial, action.MaterialProducts, nil))

	bh.show(ctx, b, ev, messages.MaterialsForProduct(product, len(mats) == 0), utils.BuildInlineKeyboard(buttons, 1))
}

func (bh *Handlers) MaterialGet(ctx context.Context, b *bot.Bot, ev *router.Event) {
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

	ok, err := bh.hasAccess(ctx, ev.User.ID, m.Product)
	if err != nil {
		bh.fail(ctx, b, ev, "checking material access", err)
		return
	}
	if !ok {
		bh.alert(ctx, b, ev, messages.MaterialNoAccess())
		return
	}

	bh.answer(ctx, b, ev, "")
	kb := utils.Rows(utils.Row(utils.Btn(messages.BtnBack, action.MaterialList, action.ProductName(m.Product))))
	bh.sendMaterial(ctx, b, ev.ChatID, m, kb)
}

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

func adminCancelKeyboard() *models.InlineKeyboardMarkup {
	return utils.Rows(utils.Row(utils.Btn(messages.BtnCancel, action.FlowCancel, nil)))
}

func backToProductKeyboard(name string) *models.InlineKeyboardMarkup {
	return utils.Rows(utils.Row(utils.Btn(messages.BtnBackToProduct, action.ProductView, action.ProductName(name))))
}

func (bh *Handlers) AdminProducts(ctx context.Context, b *bot.Bot, ev *router.Event) {
	products, err := bh.store.ListProducts(ctx, false)
	if err != nil {
		bh.fail(ctx, b, ev, "listing products", err)
		return
	}

	buttons := make([]utils.Button, 0, len(products)+2)
	for _, p := range products {
		label := p.Name
		if !p.Active {
			label = "🚫 " + label
		}
		buttons = append(buttons, utils.Btn(label, action.ProductView, action.ProductName(p.Name)))
	}
	buttons = append(buttons,
		utils.Btn(messages.BtnAddProduct, action.ProductAdd, nil),
		utils.Btn(messages.BtnBackToAdmin, action.AdminBack, nil),
	)
	bh.show(ctx, b, ev, messages.AdminProducts(len(products) == 0), utils.BuildInlineKeyboard(buttons, 1))
}

// loadProduct resolves the product named by the button. A missing product is
// reported and false returned.
func (bh *Handlers) loadProduct(ctx context.Context, b *bot.Bot, ev *router.Event, name string) (*types.Product, bool) {
	p, err := bh.store.GetProduct(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		if ev.IsCallback() {
			bh.alert(ctx, b, ev, messages.ProductNotFound())
		} else {
			bh.toAdminMenu(ctx, b, ev, messages.ProductNotFound())
		}
		return nil, false
	}
	if err != nil {
		bh.fail(ctx, b, ev, "loading product", err)
		return nil, false
	}
	return p, true
}

func (bh *Handlers) AdminProduct(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, _ := ev.Action.Product()
	bh.showProductCard(ctx, b, ev, name)
}

func (bh *Handlers) showProductCard(ctx context.Context, b *bot.Bot, ev *router.Event, name string) {
	p, ok := bh.loadProduct(ctx, b, ev, name)
	if !ok {
		return
	}
	plans, err := bh.store.ListPlans(ctx, p.Name)
	if err != nil {
		bh.fail(ctx, b, ev, "listing plans", err)
		return
	}
	unused, err := bh.store.CountUnusedPromoCodes(ctx, p.Name)
	if err != nil {
		bh.fail(ctx, b, ev, "counting promo codes", err)
		return
	}

	id := action.ProductName(p.Name)
	toggle := messages.BtnHide
	if !p.Active {
		toggle = messages.BtnShow
	}
	kb := utils.Rows(
		utils.Row(
			utils.Btn(messages.BtnEditDesc, action.ProductEditDesc, id),
			utils.Btn(messages.BtnEditPhoto, action.ProductEditPhoto, id),
		),
		utils.Row(utils.Btn(toggle, action.ProductToggle, id)),
		utils.Row(utils.Btn(messages.BtnPlans, action.PlanList, id)),
		utils.Row(
			utils.Btn(messages.BtnPromos, action.PromoList, action.PromoQuery{Product: p.Name, Filter: types.PromoFilterAll}),
			utils.Btn(messages.BtnAddPromo, action.PromoAdd, id),
		),
		utils.Row(utils.Btn(messages.BtnMaterialsAdmin, action.MaterialAdminList, id)),
		utils.Row(utils.Btn(messages.BtnDeleteProduct, action.ProductDelete, id)),
		utils.Row(utils.Btn(messages.BtnBackToProducts, action.ProductsList, nil)),
	)
	bh.show(ctx, b, ev, messages.AdminProductCard(p, len(plans), unused), kb)
}

func (bh *Handlers) ProductAdd(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.answer(ctx, b, ev, "")
	ev.Session.Reset()
	ev.Session.Transition(types.StateAdminProductName)
	bh.send(ctx, b, ev.ChatID, messages.ProductEnterName(), adminCancelKeyboard())
}

func (bh *Handlers) ProductNameInput(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, err := forms.ParseProductName(ev.Text)
	if err != nil {
		bh.rejectInput(ctx, b, ev, "parsing product name", err)
		return
	}
	_, err = bh.store.GetProduct(ctx, name)
	switch {
	case err == nil:
		bh.send(ctx, b, ev.ChatID, messages.ProductExists(name), adminCancelKeyboard())
		return
	case !errors.Is(err, store.ErrNotFound):
		bh.fail(ctx, b, ev, "checking product name", err)
		return
	}

	ev.Session.Set(types.KeyProduct, name)
	ev.Session.Transition(types.StateAdminProductDesc)
	bh.send(ctx, b, ev.ChatID, messages.ProductEnterDescription(), adminCancelKeyboard())
}

func (bh *Handlers) ProductDescInput(ctx context.Context, b *bot.Bot, ev *router.Event) {
	desc := strings.TrimSpace(ev.Text)
	if desc == "" {
		bh.reject(ctx, b, ev, messages.EmptyDescription())
		return
	}
	ev.Session.Set(types.KeyDescription, desc)
	ev.Session.Transition(types.StateAdminProductPhoto)
	bh.send(ctx, b, ev.ChatID, messages.ProductEnterPhoto(), adminCancelKeyboard())
}

func (bh *Handlers) ProductPhotoExpected(ctx context.Context, b *bot.Bot, ev *router.Event) {
	bh.send(ctx, b, ev.ChatID, messages.ProductSendPhoto(), adminCancelKeyboard())
}

func (bh *Handlers) ProductPhotoInput(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name := ev.Session.Get(types.KeyProduct)
	if name == "" {
		bh.toAdminMenu(ctx, b, ev, messages.ErrorDefault())
		return
	}

	err := bh.store.CreateProduct(ctx, types.Product{
		Name:        name,
		Description: ev.Session.Get(types.KeyDescription),
		PhotoFileID: ev.FileID,
	})
	if errors.Is(err, store.ErrProductExists) {
		ev.Session.Reset()
		ev.Session.Transition(types.StateAdminProductName)
		bh.send(ctx, b, ev.ChatID, messages.ProductExists(name), adminCancelKeyboard())
		return
	}
	if err != nil {
		bh.fail(ctx, b, ev, "creating product", err)
		return
	}

	log.Printf("Product %q created by admin %d", name, ev.UserID)
	ev.Session.Reset()
	bh.send(ctx, b, ev.ChatID, messages.ProductAdded(name), backToProductKeyboard(name))
}

func (bh *Handlers) ProductEditDesc(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, _ := ev.Action.Product()
	bh.answer(ctx, b, ev, "")
	ev.Session.Reset()
	ev.Session.Set(types.KeyProduct, name)
	ev.Session.Transition(types.StateAdminEditDesc)
	bh.send(ctx, b, ev.ChatID, messages.ProductEnterNewDescription(name), adminCancelKeyboard())
}

func (bh *Handlers) ProductEditDescInput(ctx context.Context, b *bot.Bot, ev *router.Event) {
	desc := strings.TrimSpace(ev.Text)
	if desc == "" {
		bh.reject(ctx, b, ev, messages.EmptyDescription())
		return
	}
	name := ev.Session.Get(types.KeyProduct)
	err := bh.store.UpdateProductDescription(ctx, name, desc)
	if errors.Is(err, store.ErrNotFound) {
		bh.toAdminMenu(ctx, b, ev, messages.ProductNotFound())
		return
	}
	if err != nil {
		bh.fail(ctx, b, ev, "updating description", err)
		return
	}
	ev.Session.Reset()
	bh.send(ctx, b, ev.ChatID, messages.ProductDescriptionUpdated(), backToProductKeyboard(name))
}

func (bh *Handlers) ProductEditPhoto(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, _ := ev.Action.Product()
	bh.answer(ctx, b, ev, "")
	ev.Session.Reset()
	ev.Session.Set(types.KeyProduct, name)
	ev.Session.Transition(types.StateAdminEditPhoto)
	bh.send(ctx, b, ev.ChatID, messages.ProductEnterNewPhoto(name), adminCancelKeyboard())
}

func (bh *Handlers) ProductEditPhotoInput(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name := ev.Session.Get(types.KeyProduct)
	err := bh.store.UpdateProductPhoto(ctx, name, ev.FileID)
	if errors.Is(err, store.ErrNotFound) {
		bh.toAdminMenu(ctx, b, ev, messages.ProductNotFound())
		return
	}
	if err != nil {
		bh.fail(ctx, b, ev, "updating photo", err)
		return
	}
	ev.Session.Reset()
	bh.send(ctx, b, ev.ChatID, messages.ProductPhotoUpdated(), backToProductKeyboard(name))
}

func (bh *Handlers) ProductToggle(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, _ := ev.Action.Product()
	active, err := bh.store.ToggleProductActive(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		bh.alert(ctx, b, ev, messages.ProductNotFound())
		return
	}
	if err != nil {
		bh.fail(ctx, b, ev, "toggling product", err)
		return
	}
	bh.alert(ctx, b, ev, messages.ProductToggled(name, active))
	bh.showProductCard(ctx, b, ev, name)
}

func (bh *Handlers) ProductDelete(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, _ := ev.Action.Product()
	ev.Session.Reset()
	ev.Session.Set(types.KeyProduct, name)
	ev.Session.Transition(types.StateAdminConfirmDeletion)
	bh.show(ctx, b, ev, messages.ProductDeleteConfirm(name), productDeleteKeyboard(name))
}

func (bh *Handlers) ProductDeletePending(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name := ev.Session.Get(types.KeyProduct)
	if name == "" {
		bh.toAdminMenu(ctx, b, ev, messages.ProductNotFound())
		return
	}
	bh.send(ctx, b, ev.ChatID, messages.ProductDeleteConfirm(name), productDeleteKeyboard(name))
}

func productDeleteKeyboard(name string) *models.InlineKeyboardMarkup {
	id := action.ProductName(name)
	return utils.Rows(utils.Row(
		utils.Btn(messages.BtnDeleteYes, action.ProductDeleteConfirm, id),
		utils.Btn(messages.BtnDeleteNo, action.ProductDeleteCancel, id),
	))
}

func (bh *Handlers) ProductDeleteConfirm(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, _ := ev.Action.Product()
	if name != ev.Session.Get(types.KeyProduct) {
		bh.alert(ctx, b, ev, messages.ErrorInvalidButton())
		return
	}
	ev.Session.Reset()

	err := bh.store.DeleteProduct(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		bh.alert(ctx, b, ev, messages.ProductNotFound())
		return
	}
	if err != nil {
		bh.fail(ctx, b, ev, "deleting product", err)
		return
	}

	log.Printf("Product %q deleted by admin %d", name, ev.UserID)
	kb := utils.Rows(utils.Row(utils.Btn(messages.BtnBackToProducts, action.ProductsList, nil)))
	bh.show(ctx, b, ev, messages.ProductDeleted(name), kb)
}

func (bh *Handlers) ProductDeleteCancel(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, _ := ev.Action.Product()
	ev.Session.Reset()
	bh.show(ctx, b, ev, messages.ProductDeleteCancelled(name), backToProductKeyboard(name))
}

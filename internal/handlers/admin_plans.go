package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/forms"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/internal/router"
	"github.com/BatmanBruc/bat-bot-shop/internal/utils"
	"github.com/BatmanBruc/bat-bot-shop/store"
	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/go-telegram/bot"
)

func (bh *Handlers) PlanList(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, _ := ev.Action.Product()
	bh.showPlans(ctx, b, ev, name)
}

func (bh *Handlers) showPlans(ctx context.Context, b *bot.Bot, ev *router.Event, product string) {
	plans, err := bh.store.ListPlans(ctx, product)
	if err != nil {
		bh.fail(ctx, b, ev, "listing plans", err)
		return
	}

	buttons := make([]utils.Button, 0, len(plans)+2)
	for _, p := range plans {
		buttons = append(buttons, utils.Btn(fmt.Sprintf("🗑 %s", messages.PlanButton(p)), action.PlanDelete, action.PlanID(p.ID)))
	}
	buttons = append(buttons,
		utils.Btn(messages.BtnAddPlan, action.PlanAdd, action.ProductName(product)),
		utils.Btn(messages.BtnBackToProduct, action.ProductView, action.ProductName(product)),
	)
	bh.show(ctx, b, ev, messages.PlansList(product, plans), utils.BuildInlineKeyboard(buttons, 1))
}

func (bh *Handlers) PlanAdd(ctx context.Context, b *bot.Bot, ev *router.Event) {
	name, _ := ev.Action.Product()
	bh.answer(ctx, b, ev, "")
	ev.Session.Reset()
	ev.Session.Set(types.KeyProduct, name)
	ev.Session.Transition(types.StateAdminPlanInput)
	bh.send(ctx, b, ev.ChatID, messages.PlanEnterInput(name), adminCancelKeyboard())
}

func (bh *Handlers) PlanInput(ctx context.Context, b *bot.Bot, ev *router.Event) {
	in, err := forms.ParsePlanInput(ev.Text)
	if err != nil {
		bh.rejectInput(ctx, b, ev, "parsing plan", err)
		return
	}
	product := ev.Session.Get(types.KeyProduct)

	plan, err := bh.store.CreatePlan(ctx, types.Plan{Product: product, Name: in.Name, Days: in.Days, Price: in.Price})
	if errors.Is(err, store.ErrNotFound) {
		bh.toAdminMenu(ctx, b, ev, messages.ProductNotFound())
		return
	}
	if err != nil {
		bh.fail(ctx, b, ev, "creating plan", err)
		return
	}

	ev.Session.Reset()
	kb := utils.Rows(utils.Row(utils.Btn(messages.BtnPlans, action.PlanList, action.ProductName(product))))
	bh.send(ctx, b, ev.ChatID, messages.PlanAdded(plan.Name, product), kb)
}

func (bh *Handlers) PlanDelete(ctx context.Context, b *bot.Bot, ev *router.Event) {
	id, _ := ev.Action.PlanID()
	plan, err := bh.store.GetPlan(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		bh.alert(ctx, b, ev, messages.PlanNotFound())
		return
	}
	if err != nil {
		bh.fail(ctx, b, ev, "loading plan", err)
		return
	}
	if err := bh.store.DeletePlan(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		bh.fail(ctx, b, ev, "deleting plan", err)
		return
	}
	bh.answer(ctx, b, ev, messages.PlanDeleted())
	bh.showPlans(ctx, b, ev, plan.Product)
}

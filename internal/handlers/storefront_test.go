package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/types"
)

const testRequisites = "Банк: Тест\nКарта: 0000"

func newShopHarness(t *testing.T) *harness {
	t.Helper()
	hs := newHarness(t)
	days := 30
	hs.shop.plans[3] = types.Plan{ID: 3, Product: "Go", Name: "Month", Days: &days, Price: 990}
	hs.shop.settings[types.SettingRequisites] = testRequisites
	return hs
}

func TestSelectPlanAsksEmailEvenWhenKnown(t *testing.T) {
	hs := newShopHarness(t)
	hs.shop.user.Email = "old@example.com"

	hs.press(action.Data(action.SelectPlan, action.PlanID(3)), false)
	assert.Equal(t, types.StatePurchaseEnterEmail, hs.session().State)
	assert.Equal(t, messages.PurchaseEnterEmail("Go", "Month", 990, "old@example.com"), hs.tg.last(userChat))

	hs.text("new@example.com")
	assert.Equal(t, types.StatePurchaseUploadCheck, hs.session().State)
	assert.Equal(t, "new@example.com", hs.shop.payment(1).Email)
	assert.Equal(t, "old@example.com", hs.shop.user.Email)
}

func TestPurchaseFlow(t *testing.T) {
	hs := newShopHarness(t)

	hs.press(action.Data(action.SelectPlan, action.PlanID(3)), false)
	require.Equal(t, types.StatePurchaseEnterEmail, hs.session().State)
	paymentID, ok := hs.session().GetInt64(types.KeyPaymentID)
	require.True(t, ok)
	assert.Equal(t, int64(1), paymentID)

	hs.text("not-an-email")
	assert.Equal(t, types.StatePurchaseEnterEmail, hs.session().State)
	assert.Contains(t, hs.tg.last(userChat), "⚠️")
	assert.Empty(t, hs.shop.payment(1).Email)

	hs.text("buyer@example.com")
	assert.Equal(t, types.StatePurchaseUploadCheck, hs.session().State)
	assert.Equal(t, messages.PurchaseRequisites("Go", "Month", 990, testRequisites), hs.tg.last(userChat))

	hs.text("оплатил")
	assert.Equal(t, types.StatePurchaseUploadCheck, hs.session().State)
	assert.Equal(t, messages.PurchaseSendPhoto(), hs.tg.last(userChat))

	hs.photo("check-1")
	assert.Equal(t, types.StatePurchaseUploadCheck, hs.session().State)
	assert.Equal(t, "check-1", hs.shop.payment(1).CheckFileID)
	assert.Equal(t, messages.PurchaseCheckSent(), hs.tg.last(userChat))
	assert.Equal(t, []string{"check-1"}, hs.tg.sentPhotos(adminChat))
	assert.Contains(t, hs.tg.last(adminChat), "ID платежа: 1")
	assert.Contains(t, hs.tg.last(adminChat), "buyer@example.com")

	hs.photo("check-2")
	assert.Equal(t, types.StatePurchaseUploadCheck, hs.session().State)
	assert.Equal(t, "check-2", hs.shop.payment(1).CheckFileID)
	assert.Equal(t, types.PaymentPending, hs.shop.payment(1).Status)
	assert.Equal(t, []string{"check-1", "check-2"}, hs.tg.sentPhotos(adminChat))
}

func TestCancelPurchaseAbandonsCheckout(t *testing.T) {
	hs := newShopHarness(t)

	hs.press(action.Data(action.SelectPlan, action.PlanID(3)), false)
	hs.press(action.Data(action.SelectPlan, action.PlanID(3)), false)
	assert.Equal(t, []int64{1}, hs.shop.cancelled)
	paymentID, _ := hs.session().GetInt64(types.KeyPaymentID)
	assert.Equal(t, int64(2), paymentID)

	hs.press(action.Data(action.CancelPurchase, nil), false)
	assert.Equal(t, []int64{1, 2}, hs.shop.cancelled)
	s := hs.session()
	assert.Equal(t, types.StateIdle, s.State)
	assert.Empty(t, s.Data)
	assert.Contains(t, hs.tg.sent(userChat), messages.PurchaseCancelled())
}

func TestCancelPurchaseKeepsPaymentWithCheck(t *testing.T) {
	hs := newShopHarness(t)

	hs.press(action.Data(action.SelectPlan, action.PlanID(3)), false)
	hs.text("buyer@example.com")
	hs.photo("check-1")

	hs.press(action.Data(action.CancelPurchase, nil), false)
	assert.Empty(t, hs.shop.cancelled)
	assert.Equal(t, types.PaymentPending, hs.shop.payment(1).Status)
	assert.Equal(t, types.StateIdle, hs.session().State)
}

func TestSelectUnknownPlan(t *testing.T) {
	hs := newShopHarness(t)

	hs.press(action.Data(action.SelectPlan, action.PlanID(42)), false)
	assert.Equal(t, types.StateIdle, hs.session().State)
	assert.Equal(t, []string{messages.PlanNotFound()}, hs.tg.callbackAnswers())
}

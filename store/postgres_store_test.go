package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/bat-bot-shop/types"
)

// setupPostgres connects to POSTGRES_TEST_DSN and empties every table.
func setupPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN is not set")
	}
	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, err = s.pool.Exec(ctx, `
TRUNCATE users, products, plans, payments, subscriptions, promo_codes,
         withdrawal_requests, settings, materials, broadcasts
RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return s
}

func TestPostgresReferralBonus(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	referrer, created, err := s.GetOrCreateUser(ctx, types.NewUser{TelegramID: 100, Username: "ref"})
	require.NoError(t, err)
	assert.True(t, created)

	invited, created, err := s.GetOrCreateUser(ctx, types.NewUser{TelegramID: 200, ReferrerTelegramID: 100, ReferralBonus: 5000})
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, invited.ReferrerID)
	assert.Equal(t, referrer.ID, *invited.ReferrerID)

	// A second contact never credits again.
	_, created, err = s.GetOrCreateUser(ctx, types.NewUser{TelegramID: 200, ReferrerTelegramID: 100, ReferralBonus: 5000})
	require.NoError(t, err)
	assert.False(t, created)

	self, _, err := s.GetOrCreateUser(ctx, types.NewUser{TelegramID: 300, ReferrerTelegramID: 300, ReferralBonus: 5000})
	require.NoError(t, err)
	assert.Nil(t, self.ReferrerID)

	referrer, err = s.GetUserByID(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), referrer.ReferralBalance)

	count, err := s.CountReferrals(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPostgresPurchaseFlow(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	user, _, err := s.GetOrCreateUser(ctx, types.NewUser{TelegramID: 1})
	require.NoError(t, err)

	require.NoError(t, s.CreateProduct(ctx, types.Product{Name: "Course", Description: "desc"}))
	assert.ErrorIs(t, s.CreateProduct(ctx, types.Product{Name: "Course"}), ErrProductExists)

	days := 30
	plan, err := s.CreatePlan(ctx, types.Plan{Product: "Course", Name: "Month", Days: &days, Price: 1000})
	require.NoError(t, err)

	res, err := s.AddPromoCodes(ctx, "Course", nil, []string{"P1", "P2", "P1"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, []string{"P1"}, res.Duplicates)

	checkout, err := s.Checkout(ctx, user.ID, plan.ID)
	require.NoError(t, err)
	assert.Nil(t, checkout.Subscription)
	assert.Equal(t, types.PaymentPending, checkout.Payment.Status)
	assert.Equal(t, "P1", checkout.Payment.PromoCode)

	_, err = s.SetPaymentEmail(ctx, checkout.Payment.ID, user.ID, "a@b.c")
	require.NoError(t, err)
	_, err = s.AttachCheck(ctx, checkout.Payment.ID, user.ID, "file-1")
	require.NoError(t, err)

	// A reviewed payment can no longer be cancelled by the buyer.
	assert.ErrorIs(t, s.CancelCheckout(ctx, checkout.Payment.ID, user.ID), ErrNotFound)

	done, err := s.CompletePayment(ctx, checkout.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentCompleted, done.Payment.Status)
	require.NotNil(t, done.Promo)
	assert.Equal(t, "P1", done.Promo.Code)
	assert.Equal(t, "a@b.c", done.Promo.IssuedToEmail)
	require.NotNil(t, done.Subscription)
	assert.Equal(t, "Month", done.Subscription.Tariff)

	_, err = s.CompletePayment(ctx, checkout.Payment.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	unused, err := s.CountUnusedPromoCodes(ctx, "Course")
	require.NoError(t, err)
	assert.Equal(t, 1, unused)

	products, err := s.ListSubscribedProducts(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Course"}, products)

	u, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", u.Email)
}

func TestPostgresFreePlanCompletesAtCheckout(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	user, _, err := s.GetOrCreateUser(ctx, types.NewUser{TelegramID: 1})
	require.NoError(t, err)
	require.NoError(t, s.CreateProduct(ctx, types.Product{Name: "Trial"}))
	plan, err := s.CreatePlan(ctx, types.Plan{Product: "Trial", Name: "Free", Price: 0})
	require.NoError(t, err)

	res, err := s.Checkout(ctx, user.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentCompleted, res.Payment.Status)
	require.NotNil(t, res.Subscription)
	assert.Nil(t, res.Subscription.EndDate)
}

func TestPostgresWithdrawals(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, _, err := s.GetOrCreateUser(ctx, types.NewUser{TelegramID: 1})
	require.NoError(t, err)
	for i := int64(2); i <= 5; i++ {
		_, _, err := s.GetOrCreateUser(ctx, types.NewUser{TelegramID: i, ReferrerTelegramID: 1, ReferralBonus: 20000})
		require.NoError(t, err)
	}
	user, err := s.GetUserByTelegramID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(80000), user.ReferralBalance)

	_, err = s.CreateWithdrawal(ctx, user.ID, 90000, 50000, "+79990000000", "Bank")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	w, err := s.CreateWithdrawal(ctx, user.ID, 60000, 50000, "+79990000000", "Bank")
	require.NoError(t, err)
	assert.Equal(t, types.WithdrawalPending, w.Status)

	user, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), user.ReferralBalance)

	rejected, err := s.RejectWithdrawal(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, types.WithdrawalRejected, rejected.Status)
	assert.NotNil(t, rejected.DecisionDate)

	_, err = s.ApproveWithdrawal(ctx, w.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	user, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(80000), user.ReferralBalance)
}

func TestPostgresSecondActivationKeepsOneActiveSubscription(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	user, _, err := s.GetOrCreateUser(ctx, types.NewUser{TelegramID: 1})
	require.NoError(t, err)
	require.NoError(t, s.CreateProduct(ctx, types.Product{Name: "Course"}))
	week, month := 7, 30
	short, err := s.CreatePlan(ctx, types.Plan{Product: "Course", Name: "Week", Days: &week, Price: 300})
	require.NoError(t, err)
	long, err := s.CreatePlan(ctx, types.Plan{Product: "Course", Name: "Month", Days: &month, Price: 1000})
	require.NoError(t, err)

	for _, plan := range []*types.Plan{short, long} {
		res, err := s.Checkout(ctx, user.ID, plan.ID)
		require.NoError(t, err)
		_, err = s.CompletePayment(ctx, res.Payment.ID)
		require.NoError(t, err)
	}

	var active int
	err = s.pool.QueryRow(ctx,
		`SELECT count(*) FROM subscriptions WHERE user_id = $1 AND product = $2 AND active`,
		user.ID, "Course").Scan(&active)
	require.NoError(t, err)
	assert.Equal(t, 1, active)

	subs, err := s.ListUserSubscriptions(ctx, user.ID)
	require.NoError(t, err)
	var current []types.Subscription
	for _, sub := range subs {
		if sub.Active {
			current = append(current, sub)
		}
	}
	require.Len(t, current, 1)
	assert.Equal(t, "Month", current[0].Tariff)
}

func TestPostgresRejectedPaymentCannotComplete(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	user, _, err := s.GetOrCreateUser(ctx, types.NewUser{TelegramID: 1})
	require.NoError(t, err)
	require.NoError(t, s.CreateProduct(ctx, types.Product{Name: "Course"}))
	plan, err := s.CreatePlan(ctx, types.Plan{Product: "Course", Name: "Month", Price: 1000})
	require.NoError(t, err)
	_, err = s.AddPromoCodes(ctx, "Course", nil, []string{"P1"})
	require.NoError(t, err)

	res, err := s.Checkout(ctx, user.ID, plan.ID)
	require.NoError(t, err)

	rejected, err := s.RejectPayment(ctx, res.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentRejected, rejected.Status)

	_, err = s.CompletePayment(ctx, res.Payment.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = s.RejectPayment(ctx, res.Payment.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	p, err := s.GetPayment(ctx, res.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentRejected, p.Status)

	unused, err := s.CountUnusedPromoCodes(ctx, "Course")
	require.NoError(t, err)
	assert.Equal(t, 1, unused)

	subs, err := s.ListUserSubscriptions(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestPostgresBulkPromoDuplicates(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.CreateProduct(ctx, types.Product{Name: "Course"}))
	res, err := s.AddPromoCodes(ctx, "Course", nil, []string{"A2"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Added)

	res, err = s.AddPromoCodes(ctx, "Course", nil, []string{"A1", "A2", "A1"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, []string{"A2", "A1"}, res.Duplicates)

	codes, err := s.ListPromoCodes(ctx, "Course", types.PromoFilterAll)
	require.NoError(t, err)
	assert.Len(t, codes, 2)

	_, err = s.AddPromoCodes(ctx, "Missing", nil, []string{"A3"})
	assert.ErrorIs(t, err, ErrNotFound)
}

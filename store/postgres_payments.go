package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id, user_id, product, tariff, email, price, check_file_id, status, plan_id, promo_code, created_at, updated_at`

func scanPayment(row rowScanner) (*types.Payment, error) {
	var p types.Payment
	err := row.Scan(&p.ID, &p.UserID, &p.Product, &p.Tariff, &p.Email, &p.Price, &p.CheckFileID,
		&p.Status, &p.PlanID, &p.PromoCode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

const subscriptionColumns = `id, user_id, product, tariff, start_date, end_date, active`

func scanSubscription(row rowScanner) (*types.Subscription, error) {
	var s types.Subscription
	if err := row.Scan(&s.ID, &s.UserID, &s.Product, &s.Tariff, &s.StartDate, &s.EndDate, &s.Active); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Checkout creates a pending payment for the plan and reserves a promo code for it.
// The reservation only records the code on the payment; the code stays "not issued"
// until the payment completes, so an abandoned checkout leaves it available.
// Free plans complete in the same transaction.
func (s *PostgresStore) Checkout(ctx context.Context, userID, planID int64) (*types.CheckoutResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*queryTimeout)
	defer cancel()

	var res types.CheckoutResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		plan, err := scanPlan(tx.QueryRow(ctx, `
SELECT p.id, p.product, p.name, p.days, p.price
FROM plans p
JOIN products pr ON pr.name = p.product
WHERE p.id = $1 AND pr.active
`, planID))
		if err != nil {
			return err
		}
		res.Plan = *plan

		var email string
		if err := tx.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email); err != nil {
			return notFound(err)
		}

		code, err := reservePromoCode(ctx, tx, plan.Product, plan.ID)
		if err != nil {
			return err
		}

		payment, err := scanPayment(tx.QueryRow(ctx, `
INSERT INTO payments (user_id, product, tariff, email, price, status, plan_id, promo_code)
VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7)
RETURNING `+paymentColumns, userID, plan.Product, plan.Name, email, plan.Price, plan.ID, code))
		if err != nil {
			return err
		}

		if plan.Price > 0 {
			res.Payment = *payment
			return nil
		}

		c, err := completePaymentTx(ctx, tx, payment.ID)
		if err != nil {
			return err
		}
		res.Payment = c.Payment
		res.Subscription = c.Subscription
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func reservePromoCode(ctx context.Context, tx pgx.Tx, product string, planID int64) (string, error) {
	var code string
	err := tx.QueryRow(ctx, `
SELECT code
FROM promo_codes
WHERE product = $1
  AND status = 'not issued'
  AND (plan_id IS NULL OR plan_id = $2)
ORDER BY plan_id NULLS LAST, id
LIMIT 1
`, product, planID).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return code, err
}

// lockPendingPayment loads the payment for update and fails unless it is pending.
func lockPendingPayment(ctx context.Context, tx pgx.Tx, paymentID int64) (*types.Payment, error) {
	p, err := scanPayment(tx.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, paymentID))
	if err != nil {
		return nil, err
	}
	if p.Status != types.PaymentPending {
		return p, ErrInvalidTransition
	}
	return p, nil
}

func (s *PostgresStore) SetPaymentEmail(ctx context.Context, paymentID, userID int64, email string) (*types.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	email = strings.TrimSpace(email)
	var out *types.Payment
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		p, err := lockPendingPayment(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.UserID != userID {
			return ErrNotFound
		}
		out, err = scanPayment(tx.QueryRow(ctx, `
UPDATE payments SET email = $2, updated_at = NOW()
WHERE id = $1
RETURNING `+paymentColumns, paymentID, email))
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE users SET email = $2 WHERE id = $1 AND email = ''`, userID, email)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AttachCheck stores the proof of payment. Re-uploading while pending replaces it.
func (s *PostgresStore) AttachCheck(ctx context.Context, paymentID, userID int64, fileID string) (*types.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var out *types.Payment
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		p, err := lockPendingPayment(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.UserID != userID {
			return ErrNotFound
		}
		out, err = scanPayment(tx.QueryRow(ctx, `
UPDATE payments SET check_file_id = $2, status = 'pending', updated_at = NOW()
WHERE id = $1
RETURNING `+paymentColumns, paymentID, strings.TrimSpace(fileID)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelCheckout drops a pending payment that has no proof attached yet.
// Payments already waiting for review are left for the admin.
func (s *PostgresStore) CancelCheckout(ctx context.Context, paymentID, userID int64) error {
	return s.execOne(ctx, `
DELETE FROM payments
WHERE id = $1 AND user_id = $2 AND status = 'pending' AND check_file_id = ''
`, paymentID, userID)
}

// CompletePayment marks a pending payment completed, issues its reserved promo code
// and activates the plan's subscription, all in one transaction.
func (s *PostgresStore) CompletePayment(ctx context.Context, paymentID int64) (*types.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*queryTimeout)
	defer cancel()

	var out *types.Completion
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		c, err := completePaymentTx(ctx, tx, paymentID)
		out = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func completePaymentTx(ctx context.Context, tx pgx.Tx, paymentID int64) (*types.Completion, error) {
	p, err := lockPendingPayment(ctx, tx, paymentID)
	if err != nil {
		return nil, err
	}

	email := p.Email
	if email == "" {
		if err := tx.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, p.UserID).Scan(&email); err != nil {
			return nil, notFound(err)
		}
	}

	promo, err := issuePromoCode(ctx, tx, p, email)
	if err != nil {
		return nil, err
	}
	code := ""
	if promo != nil {
		code = promo.Code
	}

	updated, err := scanPayment(tx.QueryRow(ctx, `
UPDATE payments SET status = 'completed', promo_code = $2, updated_at = NOW()
WHERE id = $1
RETURNING `+paymentColumns, paymentID, code))
	if err != nil {
		return nil, err
	}

	c := &types.Completion{Payment: *updated, Promo: promo}
	if p.PlanID == nil {
		return c, nil
	}
	plan, err := scanPlan(tx.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, *p.PlanID))
	if errors.Is(err, ErrNotFound) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	sub, err := activateSubscription(ctx, tx, p.UserID, p.Product, plan.Name, plan.Days, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	c.Subscription = sub
	return c, nil
}

// issuePromoCode flips the payment's reserved code to issued. When another payment
// completed with the same code first, the next free code of the product is issued
// instead. Payments without a reservation issue nothing.
func issuePromoCode(ctx context.Context, tx pgx.Tx, p *types.Payment, email string) (*types.PromoCode, error) {
	if p.PromoCode == "" {
		return nil, nil
	}
	promo, err := scanPromo(tx.QueryRow(ctx, `
UPDATE promo_codes
SET status = 'issued', issued_to_user_id = $2, issued_to_email = $3, issued_at = NOW(), payment_id = $4
WHERE code = $1 AND status = 'not issued'
RETURNING `+promoColumns, p.PromoCode, p.UserID, email, p.ID))
	if err == nil || !errors.Is(err, ErrNotFound) {
		return promo, err
	}

	var planID int64
	if p.PlanID != nil {
		planID = *p.PlanID
	}
	promo, err = scanPromo(tx.QueryRow(ctx, `
UPDATE promo_codes
SET status = 'issued', issued_to_user_id = $2, issued_to_email = $3, issued_at = NOW(), payment_id = $4
WHERE id = (
  SELECT id FROM promo_codes
  WHERE product = $1 AND status = 'not issued' AND (plan_id IS NULL OR plan_id = $5)
  ORDER BY plan_id NULLS LAST, id
  LIMIT 1
  FOR UPDATE SKIP LOCKED
)
RETURNING `+promoColumns, p.Product, p.UserID, email, p.ID, planID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return promo, err
}

// activateSubscription keeps at most one active subscription per (user, product).
func activateSubscription(ctx context.Context, tx pgx.Tx, userID int64, product, tariff string, days *int, now time.Time) (*types.Subscription, error) {
	_, err := tx.Exec(ctx, `
UPDATE subscriptions SET active = FALSE
WHERE user_id = $1 AND product = $2 AND active
`, userID, product)
	if err != nil {
		return nil, err
	}
	return scanSubscription(tx.QueryRow(ctx, `
INSERT INTO subscriptions (user_id, product, tariff, start_date, end_date, active)
VALUES ($1, $2, $3, $4, $5, TRUE)
RETURNING `+subscriptionColumns, userID, product, tariff, now, subscriptionEnd(now, days)))
}

// subscriptionEnd returns nil for unlimited plans.
func subscriptionEnd(start time.Time, days *int) *time.Time {
	if days == nil {
		return nil
	}
	end := start.AddDate(0, 0, *days)
	return &end
}

func (s *PostgresStore) RejectPayment(ctx context.Context, paymentID int64) (*types.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var out *types.Payment
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := lockPendingPayment(ctx, tx, paymentID); err != nil {
			return err
		}
		var err error
		out, err = scanPayment(tx.QueryRow(ctx, `
UPDATE payments SET status = 'rejected', updated_at = NOW()
WHERE id = $1
RETURNING `+paymentColumns, paymentID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) GetPayment(ctx context.Context, id int64) (*types.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanPayment(s.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

func (s *PostgresStore) ListPayments(ctx context.Context, f types.PaymentFilter) ([]types.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
SELECT `+paymentColumns+`
FROM payments
WHERE ($1 = '' OR status = $1)
  AND created_at >= $2
ORDER BY created_at DESC
LIMIT $3
`, string(f.Status), f.Since, limit)
	if err != nil {
		return nil, err
	}
	return collectPayments(rows)
}

func (s *PostgresStore) ListUserPayments(ctx context.Context, userID int64, limit, offset int) ([]types.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
SELECT `+paymentColumns+`
FROM payments
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectPayments(rows)
}

func collectPayments(rows pgx.Rows) ([]types.Payment, error) {
	defer rows.Close()
	out := make([]types.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListUserSubscriptions(ctx context.Context, userID int64) ([]types.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := s.pool.Query(ctx, `
SELECT `+subscriptionColumns+`
FROM subscriptions
WHERE user_id = $1
ORDER BY active DESC, start_date DESC
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

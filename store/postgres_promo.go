package store

import (
	"context"
	"strings"

	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/jackc/pgx/v5"
)

const promoColumns = `id, product, plan_id, code, status, issued_to_user_id, issued_to_email, issued_at, payment_id`

func scanPromo(row rowScanner) (*types.PromoCode, error) {
	var p types.PromoCode
	err := row.Scan(&p.ID, &p.Product, &p.PlanID, &p.Code, &p.Status, &p.IssuedToUserID, &p.IssuedToEmail, &p.IssuedAt, &p.PaymentID)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// splitNewCodes walks codes in order against a seen-set seeded with the product's
// stored codes. A code already seen, stored or earlier in the same batch, is a
// duplicate; everything else is returned for insertion.
func splitNewCodes(existing []string, codes []string) (fresh []string, duplicates []string) {
	seen := make(map[string]struct{}, len(existing)+len(codes))
	for _, c := range existing {
		seen[c] = struct{}{}
	}
	fresh = make([]string, 0, len(codes))
	duplicates = make([]string, 0)
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			duplicates = append(duplicates, c)
			continue
		}
		seen[c] = struct{}{}
		fresh = append(fresh, c)
	}
	return fresh, duplicates
}

// AddPromoCodes bulk-loads codes for a product. Codes already present for the
// product, repeated in the batch, or owned by another product are reported as
// duplicates.
func (s *PostgresStore) AddPromoCodes(ctx context.Context, product string, planID *int64, codes []string) (types.BulkAddResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*queryTimeout)
	defer cancel()

	var res types.BulkAddResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE name = $1)`, product).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}

		rows, err := tx.Query(ctx, `SELECT code FROM promo_codes WHERE product = $1`, product)
		if err != nil {
			return err
		}
		existing, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}

		fresh, duplicates := splitNewCodes(existing, codes)
		res = types.BulkAddResult{Duplicates: duplicates}
		for _, code := range fresh {
			tag, err := tx.Exec(ctx, `
INSERT INTO promo_codes (product, plan_id, code, status)
VALUES ($1, $2, $3, 'not issued')
ON CONFLICT (code) DO NOTHING
`, product, planID, code)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				res.Duplicates = append(res.Duplicates, code)
				continue
			}
			res.Added++
		}
		return nil
	})
	if err != nil {
		return types.BulkAddResult{}, err
	}
	return res, nil
}

func (s *PostgresStore) ListPromoCodes(ctx context.Context, product string, filter types.PromoFilter) ([]types.PromoCode, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	status := ""
	switch filter {
	case types.PromoFilterUnused:
		status = string(types.PromoNotIssued)
	case types.PromoFilterUsed:
		status = string(types.PromoIssued)
	}
	rows, err := s.pool.Query(ctx, `
SELECT `+promoColumns+`
FROM promo_codes
WHERE product = $1 AND ($2 = '' OR status = $2)
ORDER BY id
`, product, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.PromoCode, 0)
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountUnusedPromoCodes(ctx context.Context, product string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM promo_codes WHERE product = $1 AND status = 'not issued'`, product).Scan(&n)
	return n, err
}

// DeletePromoCode removes an unissued code. Issued codes are part of payment history.
func (s *PostgresStore) DeletePromoCode(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx pgx.Tx) error {
		var status types.PromoStatus
		if err := tx.QueryRow(ctx, `SELECT status FROM promo_codes WHERE id = $1 FOR UPDATE`, id).Scan(&status); err != nil {
			return notFound(err)
		}
		if status == types.PromoIssued {
			return ErrPromoIssued
		}
		_, err := tx.Exec(ctx, `DELETE FROM promo_codes WHERE id = $1`, id)
		return err
	})
}

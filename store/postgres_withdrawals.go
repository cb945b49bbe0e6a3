package store

import (
	"context"
	"strings"

	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/jackc/pgx/v5"
)

const withdrawalColumns = `id, user_id, amount, status, phone, bank, request_date, admin_decision_date`

func scanWithdrawal(row rowScanner) (*types.WithdrawalRequest, error) {
	var w types.WithdrawalRequest
	err := row.Scan(&w.ID, &w.UserID, &w.Amount, &w.Status, &w.Phone, &w.Bank, &w.RequestDate, &w.DecisionDate)
	if err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

// checkWithdrawal validates a request of amount against the current balance.
func checkWithdrawal(balance, amount, minAmount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount < minAmount {
		return ErrBelowMinimum
	}
	if amount > balance {
		return ErrInsufficientBalance
	}
	return nil
}

// CreateWithdrawal debits the referral balance and records a pending request.
// The balance row is locked for the check and the debit.
func (s *PostgresStore) CreateWithdrawal(ctx context.Context, userID, amount, minAmount int64, phone, bank string) (*types.WithdrawalRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*queryTimeout)
	defer cancel()

	var out *types.WithdrawalRequest
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var balance int64
		err := tx.QueryRow(ctx, `SELECT referral_balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
		if err != nil {
			return notFound(err)
		}
		if err := checkWithdrawal(balance, amount, minAmount); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE users SET referral_balance = referral_balance - $2 WHERE id = $1`, userID, amount)
		if err != nil {
			return err
		}
		out, err = scanWithdrawal(tx.QueryRow(ctx, `
INSERT INTO withdrawal_requests (user_id, amount, status, phone, bank)
VALUES ($1, $2, 'pending', $3, $4)
RETURNING `+withdrawalColumns, userID, amount, strings.TrimSpace(phone), strings.TrimSpace(bank)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApproveWithdrawal keeps the debit and stamps the decision time.
func (s *PostgresStore) ApproveWithdrawal(ctx context.Context, id int64) (*types.WithdrawalRequest, error) {
	return s.decideWithdrawal(ctx, id, types.WithdrawalApproved)
}

// RejectWithdrawal refunds the amount in the same transaction as the status change.
func (s *PostgresStore) RejectWithdrawal(ctx context.Context, id int64) (*types.WithdrawalRequest, error) {
	return s.decideWithdrawal(ctx, id, types.WithdrawalRejected)
}

func (s *PostgresStore) decideWithdrawal(ctx context.Context, id int64, status types.WithdrawalStatus) (*types.WithdrawalRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*queryTimeout)
	defer cancel()

	var out *types.WithdrawalRequest
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		w, err := scanWithdrawal(tx.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if w.Status != types.WithdrawalPending {
			out = w
			return ErrInvalidTransition
		}
		out, err = scanWithdrawal(tx.QueryRow(ctx, `
UPDATE withdrawal_requests SET status = $2, admin_decision_date = NOW()
WHERE id = $1
RETURNING `+withdrawalColumns, id, string(status)))
		if err != nil {
			return err
		}
		if status == types.WithdrawalRejected {
			_, err = tx.Exec(ctx, `UPDATE users SET referral_balance = referral_balance + $2 WHERE id = $1`, w.UserID, w.Amount)
		}
		return err
	})
	if err != nil {
		return out, err
	}
	return out, nil
}

func (s *PostgresStore) GetWithdrawal(ctx context.Context, id int64) (*types.WithdrawalRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanWithdrawal(s.pool.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1`, id))
}

func (s *PostgresStore) ListUserWithdrawals(ctx context.Context, userID int64, limit int) ([]types.WithdrawalRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
SELECT `+withdrawalColumns+`
FROM withdrawal_requests
WHERE user_id = $1
ORDER BY request_date DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectWithdrawals(rows)
}

func (s *PostgresStore) ListPendingWithdrawals(ctx context.Context) ([]types.WithdrawalRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := s.pool.Query(ctx, `
SELECT `+withdrawalColumns+`
FROM withdrawal_requests
WHERE status = 'pending'
ORDER BY request_date
`)
	if err != nil {
		return nil, err
	}
	return collectWithdrawals(rows)
}

func collectWithdrawals(rows pgx.Rows) ([]types.WithdrawalRequest, error) {
	defer rows.Close()
	out := make([]types.WithdrawalRequest, 0)
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

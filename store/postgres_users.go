package store

import (
	"context"
	"errors"
	"strings"

	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, telegram_id, username, email, referrer_id, referral_balance, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*types.User, error) {
	var u types.User
	err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &u.Email, &u.ReferrerID, &u.ReferralBalance, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetOrCreateUser returns the user for nu.TelegramID, creating it on first contact.
// The referral bonus is credited to the referrer in the same transaction as the
// insert, so it is applied once per referred user.
func (s *PostgresStore) GetOrCreateUser(ctx context.Context, nu types.NewUser) (*types.User, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		user    *types.User
		created bool
	)
	username := strings.TrimSpace(nu.Username)
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		existing, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, nu.TelegramID))
		if err == nil {
			if username != "" && existing.Username != username {
				if _, err := tx.Exec(ctx, `UPDATE users SET username = $2 WHERE id = $1`, existing.ID, username); err != nil {
					return err
				}
				existing.Username = username
			}
			user = existing
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		var referrerID *int64
		if nu.ReferrerTelegramID != 0 && nu.ReferrerTelegramID != nu.TelegramID {
			var id int64
			err := tx.QueryRow(ctx, `SELECT id FROM users WHERE telegram_id = $1`, nu.ReferrerTelegramID).Scan(&id)
			if err == nil {
				referrerID = &id
			} else if !errors.Is(notFound(err), ErrNotFound) {
				return err
			}
		}

		inserted, err := scanUser(tx.QueryRow(ctx, `
INSERT INTO users (telegram_id, username, referrer_id)
VALUES ($1, $2, $3)
ON CONFLICT (telegram_id) DO NOTHING
RETURNING `+userColumns, nu.TelegramID, username, referrerID))
		if errors.Is(err, ErrNotFound) {
			user, err = scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, nu.TelegramID))
			return err
		}
		if err != nil {
			return err
		}
		user = inserted
		created = true

		if referrerID != nil && nu.ReferralBonus > 0 {
			_, err = tx.Exec(ctx, `
UPDATE users
SET referral_balance = referral_balance + $2
WHERE id = $1
`, *referrerID, nu.ReferralBonus)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*types.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *PostgresStore) GetUserByTelegramID(ctx context.Context, telegramID int64) (*types.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID))
}

func (s *PostgresStore) SetUserEmail(ctx context.Context, userID int64, email string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tag, err := s.pool.Exec(ctx, `UPDATE users SET email = $2 WHERE id = $1`, userID, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListUserTelegramIDs(ctx context.Context) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := s.pool.Query(ctx, `SELECT telegram_id FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (s *PostgresStore) CountReferrals(ctx context.Context, userID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE referrer_id = $1`, userID).Scan(&n)
	return n, err
}

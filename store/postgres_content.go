package store

import (
	"context"
	"strings"

	"github.com/BatmanBruc/bat-bot-shop/types"
)

func (s *PostgresStore) GetSetting(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var v string
	if err := s.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&v); err != nil {
		return "", notFound(err)
	}
	return v, nil
}

func (s *PostgresStore) SetSetting(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
INSERT INTO settings (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
`, key, value)
	return err
}

const materialColumns = `id, product, title, text, file_id, file_kind`

func scanMaterial(row rowScanner) (*types.Material, error) {
	var m types.Material
	if err := row.Scan(&m.ID, &m.Product, &m.Title, &m.Text, &m.FileID, &m.FileKind); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *PostgresStore) AddMaterial(ctx context.Context, m types.Material) (*types.Material, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanMaterial(s.pool.QueryRow(ctx, `
INSERT INTO materials (product, title, text, file_id, file_kind)
SELECT name, $2, $3, $4, $5 FROM products WHERE name = $1
RETURNING `+materialColumns, m.Product, strings.TrimSpace(m.Title), strings.TrimSpace(m.Text), m.FileID, m.FileKind))
}

func (s *PostgresStore) GetMaterial(ctx context.Context, id int64) (*types.Material, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanMaterial(s.pool.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
}

func (s *PostgresStore) ListMaterials(ctx context.Context, product string) ([]types.Material, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := s.pool.Query(ctx, `SELECT `+materialColumns+` FROM materials WHERE product = $1 ORDER BY id`, product)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.Material, 0)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteMaterial(ctx context.Context, id int64) error {
	return s.execOne(ctx, `DELETE FROM materials WHERE id = $1`, id)
}

// ListSubscribedProducts returns the products the user currently has access to.
func (s *PostgresStore) ListSubscribedProducts(ctx context.Context, userID int64) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT product
FROM subscriptions
WHERE user_id = $1
  AND active
  AND (end_date IS NULL OR end_date > NOW())
ORDER BY product
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) RecordBroadcast(ctx context.Context, text string, delivered, failed int) (*types.Broadcast, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var b types.Broadcast
	err := s.pool.QueryRow(ctx, `
INSERT INTO broadcasts (text, delivered, failed)
VALUES ($1, $2, $3)
RETURNING id, text, sent_at, delivered, failed
`, text, delivered, failed).Scan(&b.ID, &b.Text, &b.SentAt, &b.Delivered, &b.Failed)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PostgresStore) ListBroadcasts(ctx context.Context, limit int) ([]types.Broadcast, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
SELECT id, text, sent_at, delivered, failed
FROM broadcasts
ORDER BY sent_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.Broadcast, 0)
	for rows.Next() {
		var b types.Broadcast
		if err := rows.Scan(&b.ID, &b.Text, &b.SentAt, &b.Delivered, &b.Failed); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

package store

import (
	"context"
	"strings"

	"github.com/BatmanBruc/bat-bot-shop/types"
)

const productColumns = `name, active, description, price, photo_file_id, created_at`

func scanProduct(row rowScanner) (*types.Product, error) {
	var p types.Product
	if err := row.Scan(&p.Name, &p.Active, &p.Description, &p.Price, &p.PhotoFileID, &p.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, p types.Product) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tag, err := s.pool.Exec(ctx, `
INSERT INTO products (name, active, description, price, photo_file_id)
VALUES ($1, TRUE, $2, $3, $4)
ON CONFLICT (name) DO NOTHING
`, strings.TrimSpace(p.Name), strings.TrimSpace(p.Description), p.Price, strings.TrimSpace(p.PhotoFileID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductExists
	}
	return nil
}

func (s *PostgresStore) GetProduct(ctx context.Context, name string) (*types.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanProduct(s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE name = $1`, name))
}

func (s *PostgresStore) ListProducts(ctx context.Context, activeOnly bool) ([]types.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := s.pool.Query(ctx, `
SELECT `+productColumns+`
FROM products
WHERE active OR NOT $1
ORDER BY created_at, name
`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateProductDescription(ctx context.Context, name, description string) error {
	return s.execOne(ctx, `UPDATE products SET description = $2 WHERE name = $1`, name, strings.TrimSpace(description))
}

func (s *PostgresStore) UpdateProductPhoto(ctx context.Context, name, photoFileID string) error {
	return s.execOne(ctx, `UPDATE products SET photo_file_id = $2 WHERE name = $1`, name, strings.TrimSpace(photoFileID))
}

func (s *PostgresStore) ToggleProductActive(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var active bool
	err := s.pool.QueryRow(ctx, `UPDATE products SET active = NOT active WHERE name = $1 RETURNING active`, name).Scan(&active)
	if err != nil {
		return false, notFound(err)
	}
	return active, nil
}

// DeleteProduct removes the product with its plans, promo codes and materials.
// Payments and subscriptions keep the product name as history.
func (s *PostgresStore) DeleteProduct(ctx context.Context, name string) error {
	return s.execOne(ctx, `DELETE FROM products WHERE name = $1`, name)
}

const planColumns = `id, product, name, days, price`

func scanPlan(row rowScanner) (*types.Plan, error) {
	var p types.Plan
	if err := row.Scan(&p.ID, &p.Product, &p.Name, &p.Days, &p.Price); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *PostgresStore) CreatePlan(ctx context.Context, p types.Plan) (*types.Plan, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	plan, err := scanPlan(s.pool.QueryRow(ctx, `
INSERT INTO plans (product, name, days, price)
SELECT name, $2, $3, $4 FROM products WHERE name = $1
RETURNING `+planColumns, p.Product, strings.TrimSpace(p.Name), p.Days, p.Price))
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, id int64) (*types.Plan, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanPlan(s.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
}

func (s *PostgresStore) ListPlans(ctx context.Context, product string) ([]types.Plan, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := s.pool.Query(ctx, `SELECT `+planColumns+` FROM plans WHERE product = $1 ORDER BY price, id`, product)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]types.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeletePlan(ctx context.Context, id int64) error {
	return s.execOne(ctx, `DELETE FROM plans WHERE id = $1`, id)
}

// execOne runs a single-row write and reports ErrNotFound when nothing matched.
func (s *PostgresStore) execOne(ctx context.Context, sql string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
)

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) CreateProduct(ctx context.Context, p domain.Product) (uuid.UUID, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, amount, cost, seller_id)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.Amount, p.Cost, p.SellerID,
	)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

func (r *ProductRepository) Product(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	var p domain.Product
	err := r.db.QueryRow(ctx, `
		SELECT id, name, amount, cost, seller_id, created_at
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Amount, &p.Cost, &p.SellerID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *ProductRepository) Products(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, amount, cost, seller_id, created_at
		FROM products ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Amount, &p.Cost, &p.SellerID, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, p domain.Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET name = $1, amount = $2, cost = $3
		WHERE id = $4`,
		p.Name, p.Amount, p.Cost, p.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DecrementStock subtracts qty only when enough stock remains. The guard
// lives in the statement itself, so two buys for the last unit cannot both
// pass.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET amount = amount - $1
		WHERE id = $2 AND amount >= $1`, qty, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var available int64
	err = r.db.QueryRow(ctx, `SELECT amount FROM products WHERE id = $1`, id).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return &domain.InsufficientStockError{Requested: qty, Available: available}
}

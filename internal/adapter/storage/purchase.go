package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
	"github.com/QuestionAndAnswer/vending-api/internal/core/vending"
)

type PurchaseRepository struct {
	db *pgxpool.Pool
}

func NewPurchaseRepository(db *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Purchase commits one buy in a single transaction. Both rows stay locked
// until commit — always product first, then account, so concurrent buys
// cannot deadlock and cannot both take the last unit.
func (r *PurchaseRepository) Purchase(ctx context.Context, buyerID, productID uuid.UUID, qty int64) (domain.Product, vending.Settlement, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Product{}, vending.Settlement{}, err
	}
	defer tx.Rollback(ctx)

	var p domain.Product
	err = tx.QueryRow(ctx, `
		SELECT id, name, amount, cost, seller_id, created_at
		FROM products WHERE id = $1
		FOR UPDATE`, productID).
		Scan(&p.ID, &p.Name, &p.Amount, &p.Cost, &p.SellerID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, vending.Settlement{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, vending.Settlement{}, err
	}

	var deposit int64
	err = tx.QueryRow(ctx, `SELECT deposit FROM users WHERE id = $1 FOR UPDATE`, buyerID).Scan(&deposit)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, vending.Settlement{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, vending.Settlement{}, err
	}

	settled, err := vending.Settle(p, deposit, qty)
	if err != nil {
		return domain.Product{}, vending.Settlement{}, err
	}

	if _, err := tx.Exec(ctx, `UPDATE products SET amount = $1 WHERE id = $2`, settled.NewStock, productID); err != nil {
		return domain.Product{}, vending.Settlement{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET deposit = 0 WHERE id = $1`, buyerID); err != nil {
		return domain.Product{}, vending.Settlement{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Product{}, vending.Settlement{}, fmt.Errorf("failed to commit purchase: %w", err)
	}

	p.Amount = settled.NewStock
	return p, settled, nil
}

package vending

import (
	"context"

	"github.com/google/uuid"

	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
)

// AccountStore owns buyer and seller accounts and their deposit balances.
// AddDeposit must be a single atomic read-modify-write: concurrent calls on
// the same account may not lose updates.
type AccountStore interface {
	CreateAccount(ctx context.Context, a domain.Account) (uuid.UUID, error)
	Account(ctx context.Context, id uuid.UUID) (domain.Account, error)
	AccountByName(ctx context.Context, name string) (domain.Account, error)
	Accounts(ctx context.Context) ([]domain.Account, error)
	AddDeposit(ctx context.Context, id uuid.UUID, amount int64) (int64, error)
	ResetDeposit(ctx context.Context, id uuid.UUID) error
}

// ProductStore owns product listings. DecrementStock checks and subtracts
// atomically; stock never goes negative.
type ProductStore interface {
	CreateProduct(ctx context.Context, p domain.Product) (uuid.UUID, error)
	Product(ctx context.Context, id uuid.UUID) (domain.Product, error)
	Products(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	DecrementStock(ctx context.Context, id uuid.UUID, qty int64) error
}

// PurchaseStore commits a buy as one unit: run Settle with the product and
// account pinned, then apply the stock decrement and the deposit reset
// together or not at all. Returns the updated product snapshot.
type PurchaseStore interface {
	Purchase(ctx context.Context, buyerID, productID uuid.UUID, qty int64) (domain.Product, Settlement, error)
}

// Store is everything the service needs from persistence.
type Store interface {
	AccountStore
	ProductStore
	PurchaseStore
}

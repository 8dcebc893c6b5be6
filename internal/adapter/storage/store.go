package storage

import "github.com/jackc/pgx/v5/pgxpool"

// Store bundles the repositories into the single vending.Store the service
// consumes.
type Store struct {
	*AccountRepository
	*ProductRepository
	*PurchaseRepository
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		AccountRepository:  NewAccountRepository(db),
		ProductRepository:  NewProductRepository(db),
		PurchaseRepository: NewPurchaseRepository(db),
	}
}

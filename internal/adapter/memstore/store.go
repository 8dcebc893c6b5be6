// Package memstore is an in-memory implementation of the vending stores,
// used when no DATABASE_URL is configured and by the tests. A single mutex
// gives every operation the same atomicity the Postgres store gets from row
// locks.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
	"github.com/QuestionAndAnswer/vending-api/internal/core/vending"
)

type Store struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]domain.Account
	byName   map[string]uuid.UUID
	products map[uuid.UUID]domain.Product
}

func New() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]domain.Account),
		byName:   make(map[string]uuid.UUID),
		products: make(map[uuid.UUID]domain.Product),
	}
}

func (s *Store) CreateAccount(_ context.Context, a domain.Account) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[a.Name]; taken {
		return uuid.Nil, domain.ErrDuplicateName
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()

	s.accounts[a.ID] = a
	s.byName[a.Name] = a.ID
	return a.ID, nil
}

func (s *Store) Account(_ context.Context, id uuid.UUID) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return a, nil
}

func (s *Store) AccountByName(_ context.Context, name string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byName[name]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return s.accounts[id], nil
}

func (s *Store) Accounts(_ context.Context) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) AddDeposit(_ context.Context, id uuid.UUID, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	a.Deposit += amount
	s.accounts[id] = a
	return a.Deposit, nil
}

func (s *Store) ResetDeposit(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Deposit = 0
	s.accounts[id] = a
	return nil
}

func (s *Store) CreateProduct(_ context.Context, p domain.Product) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()

	s.products[p.ID] = p
	return p.ID, nil
}

func (s *Store) Product(_ context.Context, id uuid.UUID) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *Store) Products(_ context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) UpdateProduct(_ context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	p.CreatedAt = current.CreatedAt
	s.products[p.ID] = p
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) DecrementStock(_ context.Context, id uuid.UUID, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Amount < qty {
		return &domain.InsufficientStockError{Requested: qty, Available: p.Amount}
	}
	p.Amount -= qty
	s.products[id] = p
	return nil
}

// Purchase commits a buy inside one critical section: settle against the
// current stock and deposit, then apply both writes before anyone else can
// observe either.
func (s *Store) Purchase(_ context.Context, buyerID, productID uuid.UUID, qty int64) (domain.Product, vending.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return domain.Product{}, vending.Settlement{}, domain.ErrNotFound
	}
	buyer, ok := s.accounts[buyerID]
	if !ok {
		return domain.Product{}, vending.Settlement{}, domain.ErrNotFound
	}

	settled, err := vending.Settle(p, buyer.Deposit, qty)
	if err != nil {
		return domain.Product{}, vending.Settlement{}, err
	}

	p.Amount = settled.NewStock
	buyer.Deposit = 0
	s.products[productID] = p
	s.accounts[buyerID] = buyer

	return p, settled, nil
}

// Package vending holds the business rules: registration, deposits, the
// purchase coordinator and the seller-scoped product operations.
package vending

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/QuestionAndAnswer/vending-api/internal/core/coins"
	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
	"github.com/QuestionAndAnswer/vending-api/internal/core/security"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// PurchaseOutcome is what the buyer gets back from a successful buy. Change
// maps coin value to count; Remaining is whatever could not be expressed in
// coins (0 as long as costs stay multiples of the smallest coin).
type PurchaseOutcome struct {
	Product   domain.Product
	Total     int64
	Change    map[int64]int64
	Remaining int64
}

// Register creates a buyer account with a freshly hashed password.
func (s *Service) Register(ctx context.Context, name, password string, deposit int64) (uuid.UUID, error) {
	hash, salt, err := security.HashPassword(password)
	if err != nil {
		return uuid.Nil, err
	}

	return s.store.CreateAccount(ctx, domain.Account{
		ID:       uuid.New(),
		Name:     name,
		PassHash: hash,
		PassSalt: salt,
		Deposit:  deposit,
		Role:     domain.RoleBuyer,
	})
}

// Login checks name and password and returns the caller's identity. An
// unknown name and a wrong password both come back as ErrDenied.
func (s *Service) Login(ctx context.Context, name, password string) (domain.Identity, error) {
	acc, err := s.store.AccountByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Identity{}, domain.ErrDenied
	}
	if err != nil {
		return domain.Identity{}, err
	}

	if !security.VerifyPassword(acc.PassHash, acc.PassSalt, password) {
		return domain.Identity{}, domain.ErrDenied
	}

	return domain.Identity{ID: acc.ID, Name: acc.Name, Role: acc.Role}, nil
}

func (s *Service) Accounts(ctx context.Context) ([]domain.Account, error) {
	return s.store.Accounts(ctx)
}

// Deposit credits one coin to the buyer's balance and returns the new total.
func (s *Service) Deposit(ctx context.Context, buyerID uuid.UUID, amount int64) (int64, error) {
	return s.store.AddDeposit(ctx, buyerID, amount)
}

// ResetDeposit returns the buyer's balance to zero.
func (s *Service) ResetDeposit(ctx context.Context, buyerID uuid.UUID) error {
	return s.store.ResetDeposit(ctx, buyerID)
}

// Buy purchases qty units of a product. The store commits the stock
// decrement and the deposit reset as one unit; the whole remaining deposit
// comes back as change, broken into coins.
func (s *Service) Buy(ctx context.Context, buyerID, productID uuid.UUID, qty int64) (PurchaseOutcome, error) {
	product, settled, err := s.store.Purchase(ctx, buyerID, productID, qty)
	if err != nil {
		return PurchaseOutcome{}, err
	}

	change, remaining := coins.MakeChange(settled.Remaining)
	return PurchaseOutcome{
		Product:   product,
		Total:     settled.Total,
		Change:    change,
		Remaining: remaining,
	}, nil
}

func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	return s.store.Products(ctx)
}

// CreateProduct lists a new product under the acting seller.
func (s *Service) CreateProduct(ctx context.Context, actor domain.Identity, name string, amount, cost int64) (uuid.UUID, error) {
	return s.store.CreateProduct(ctx, domain.Product{
		ID:       uuid.New(),
		Name:     name,
		Amount:   amount,
		Cost:     cost,
		SellerID: actor.ID,
	})
}

// UpdateProduct replaces the product's fields. A missing product and a
// product owned by someone else both come back as ErrDenied, so a caller
// learns nothing about what exists.
func (s *Service) UpdateProduct(ctx context.Context, actor domain.Identity, id uuid.UUID, name string, amount, cost int64) error {
	current, err := s.ownedProduct(ctx, actor, id)
	if err != nil {
		return err
	}

	current.Name = name
	current.Amount = amount
	current.Cost = cost
	return s.store.UpdateProduct(ctx, current)
}

// DeleteProduct removes the product, with the same uniform denial rules as
// UpdateProduct.
func (s *Service) DeleteProduct(ctx context.Context, actor domain.Identity, id uuid.UUID) error {
	if _, err := s.ownedProduct(ctx, actor, id); err != nil {
		return err
	}
	return s.store.DeleteProduct(ctx, id)
}

func (s *Service) ownedProduct(ctx context.Context, actor domain.Identity, id uuid.UUID) (domain.Product, error) {
	p, err := s.store.Product(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Product{}, domain.ErrDenied
	}
	if err != nil {
		return domain.Product{}, err
	}
	if p.SellerID != actor.ID {
		return domain.Product{}, domain.ErrDenied
	}
	return p, nil
}

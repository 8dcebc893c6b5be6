package vending

import (
	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
)

// Settlement is the result of checking a buy against current stock and
// deposit. NewStock and Remaining are what the store must write atomically.
type Settlement struct {
	Total     int64
	Remaining int64
	NewStock  int64
}

// Settle validates qty against the product's stock and the deposit against
// the total price. Stores call it with both rows locked, so the check and
// the write cannot race with a concurrent buy.
func Settle(p domain.Product, deposit, qty int64) (Settlement, error) {
	if qty > p.Amount {
		return Settlement{}, &domain.InsufficientStockError{Requested: qty, Available: p.Amount}
	}

	total := p.Cost * qty
	if deposit < total {
		return Settlement{}, &domain.InsufficientFundsError{Required: total, Deposit: deposit}
	}

	return Settlement{
		Total:     total,
		Remaining: deposit - total,
		NewStock:  p.Amount - qty,
	}, nil
}

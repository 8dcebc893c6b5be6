package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced account or product does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDenied is the uniform authorization failure. It carries no detail so
	// callers cannot probe roles or ownership by comparing responses.
	ErrDenied = errors.New("denied")

	// ErrDuplicateName signals a unique-name violation on registration.
	ErrDuplicateName = errors.New("username already in use")
)

// InsufficientStockError rejects a buy asking for more units than remain.
type InsufficientStockError struct {
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("requested amount (%d) is larger than there are products (%d)", e.Requested, e.Available)
}

// InsufficientFundsError rejects a buy the deposit cannot cover.
type InsufficientFundsError struct {
	Required int64
	Deposit  int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient deposit: total required %d, deposit %d", e.Required, e.Deposit)
}

// ValidationError reports malformed input. The message is shown to the
// caller as-is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Invalid builds a ValidationError with a formatted message.
func Invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

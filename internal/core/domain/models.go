package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Account is a registered user. Deposit is kept in the smallest coin unit
// and never goes negative.
type Account struct {
	ID        uuid.UUID
	Name      string
	PassHash  string
	PassSalt  string
	Deposit   int64
	Role      Role
	CreatedAt time.Time
}

// Product is a listing owned by a seller. Amount is the stock count, Cost a
// multiple of the smallest coin.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Amount    int64     `json:"amount"`
	Cost      int64     `json:"cost"`
	SellerID  uuid.UUID `json:"sellerId"`
	CreatedAt time.Time `json:"-"`
}

// Identity is the authenticated principal attached to a session.
type Identity struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role Role      `json:"role"`
}

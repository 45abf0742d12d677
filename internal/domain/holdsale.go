package domain

import (
	"time"

	"github.com/google/uuid"
)

// HoldSale is a parked cart: a named, immutable snapshot of the items and
// totals at park time. Many hold sales may coexist; recovery is
// non-destructive and removal always requires an explicit delete or complete.
type HoldSale struct {
	ID          uuid.UUID  `json:"id"`
	CashierName string     `json:"cashierName"`
	Items       []CartItem `json:"items"`
	Totals
	CreatedAt time.Time `json:"createdAt"`
}

package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tillpoint/internal/money"
)

// CartItem is a single line of an in-progress sale. ProductName and UnitPrice
// are denormalized at add-time so later catalog renames or price changes never
// retroactively alter a cart or a frozen snapshot built from it.
type CartItem struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   money.Amount    `json:"unitPrice"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalPrice  money.Amount    `json:"totalPrice"`
}

// Totals is derived from a cart or hold-sale snapshot on demand and never
// stored as authoritative state.
type Totals struct {
	SubtotalWithoutTax money.Amount `json:"subtotalWithoutTax"`
	TaxAmount          money.Amount `json:"taxAmount"`
	DiscountAmount     money.Amount `json:"discountAmount"`
	Total              money.Amount `json:"total"`
}

// CloneItems returns a deep copy of a cart item sequence. Snapshots handed to
// the hold-sale registry or the sale ledger must not alias live cart state.
func CloneItems(items []CartItem) []CartItem {
	cloned := make([]CartItem, len(items))
	copy(cloned, items)
	return cloned
}

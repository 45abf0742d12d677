package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tillpoint/internal/money"
)

// Unit describes how a product is sold.
type Unit string

const (
	UnitPiece  Unit = "piece"
	UnitWeight Unit = "weight"
)

// Product is a catalog snapshot. The catalog itself is owned by an external
// collaborator; the transaction engine only reads these records.
type Product struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Barcode   string           `json:"barcode,omitempty"`
	Price     money.Amount     `json:"price"`
	Cost      money.Amount     `json:"cost"`
	Stock     *decimal.Decimal `json:"stock"` // nil for unbounded weight-sold goods
	Unit      Unit             `json:"unit"`
	IsActive  bool             `json:"isActive"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus is the lifecycle state of a finalized sale.
type InvoiceStatus string

const (
	InvoiceCompleted InvoiceStatus = "completed"
	InvoiceVoided    InvoiceStatus = "voided"
)

// PaymentMethod records how a sale was settled. Payment confirmation itself is
// handled outside this engine; the method is recorded as given.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// Invoice is the immutable record of a finalized sale. After creation the only
// permitted mutation is the completed -> voided status transition.
type Invoice struct {
	ID            uuid.UUID  `json:"id"`
	InvoiceNumber int64      `json:"invoiceNumber"`
	CashierName   string     `json:"cashierName"`
	CustomerName  string     `json:"customerName,omitempty"`
	Items         []CartItem `json:"items"`
	Totals
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Status        InvoiceStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	VoidedAt      *time.Time    `json:"voidedAt,omitempty"`
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tillpoint/internal/domain"
	"tillpoint/internal/store"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// InvoiceRepository persists finalized invoices and owns the invoice-number
// counter. NextNumber must be atomic with respect to concurrent terminals
// sharing the store, which is why it delegates to the store's Incr rather
// than doing a read-then-write.
type InvoiceRepository interface {
	Append(ctx context.Context, invoice *domain.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	Update(ctx context.Context, invoice *domain.Invoice) error
	List(ctx context.Context) ([]domain.Invoice, error)
	NextNumber(ctx context.Context) (int64, error)
	ResetNumber(ctx context.Context) error
}

type invoiceRepository struct {
	store store.Store
}

// NewInvoiceRepository creates a new instance of InvoiceRepository.
func NewInvoiceRepository(s store.Store) InvoiceRepository {
	return &invoiceRepository{store: s}
}

func (r *invoiceRepository) load(ctx context.Context) ([]domain.Invoice, error) {
	raw, err := r.store.Get(ctx, store.KeyInvoices)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return []domain.Invoice{}, nil
		}
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	var invoices []domain.Invoice
	if err := json.Unmarshal(raw, &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode invoices: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepository) save(ctx context.Context, invoices []domain.Invoice) error {
	raw, err := json.Marshal(invoices)
	if err != nil {
		return fmt.Errorf("failed to encode invoices: %w", err)
	}
	if err := r.store.Set(ctx, store.KeyInvoices, raw); err != nil {
		return fmt.Errorf("failed to save invoices: %w", err)
	}
	return nil
}

func (r *invoiceRepository) Append(ctx context.Context, invoice *domain.Invoice) error {
	invoices, err := r.load(ctx)
	if err != nil {
		return err
	}
	invoices = append(invoices, *invoice)
	return r.save(ctx, invoices)
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	invoices, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		if invoices[i].ID == id {
			return &invoices[i], nil
		}
	}
	return nil, ErrInvoiceNotFound
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	invoices, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range invoices {
		if invoices[i].ID == invoice.ID {
			invoices[i] = *invoice
			return r.save(ctx, invoices)
		}
	}
	return ErrInvoiceNotFound
}

func (r *invoiceRepository) List(ctx context.Context) ([]domain.Invoice, error) {
	return r.load(ctx)
}

func (r *invoiceRepository) NextNumber(ctx context.Context) (int64, error) {
	number, err := r.store.Incr(ctx, store.KeyInvoiceCounter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	return number, nil
}

func (r *invoiceRepository) ResetNumber(ctx context.Context) error {
	if err := r.store.ResetCounter(ctx, store.KeyInvoiceCounter); err != nil {
		return fmt.Errorf("failed to reset invoice counter: %w", err)
	}
	return nil
}

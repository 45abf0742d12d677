package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tillpoint/internal/domain"
	"tillpoint/internal/repository"
)

var (
	ErrEmptySale            = errors.New("sale must contain at least one item")
	ErrInvoiceAlreadyVoided = errors.New("invoice is already voided")
)

// SaleService is the sale ledger: it turns cart or hold-sale snapshots into
// immutable invoices and owns the invoice numbering sequence.
type SaleService interface {
	// Checkout finalizes the operator's live cart and clears it.
	Checkout(ctx context.Context, userID uuid.UUID, paymentMethod domain.PaymentMethod, cashierName, customerName string) (*domain.Invoice, error)
	// Finalize builds and persists an invoice from an already-frozen snapshot.
	// The items and totals arguments are never mutated.
	Finalize(ctx context.Context, items []domain.CartItem, totals domain.Totals, paymentMethod domain.PaymentMethod, cashierName, customerName string) (*domain.Invoice, error)
	Void(ctx context.Context, invoiceID uuid.UUID) error
	Get(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context) ([]domain.Invoice, error)
	// ResetCounter restarts invoice numbering from zero. This is a deliberate,
	// irreversible administrative action and is logged as such.
	ResetCounter(ctx context.Context) error
}

type saleService struct {
	invoiceRepo repository.InvoiceRepository
	cartSvc     CartService
	logger      *zap.Logger
}

// NewSaleService creates a new instance of SaleService.
func NewSaleService(invoiceRepo repository.InvoiceRepository, cartSvc CartService, logger *zap.Logger) SaleService {
	return &saleService{
		invoiceRepo: invoiceRepo,
		cartSvc:     cartSvc,
		logger:      logger,
	}
}

func (s *saleService) Checkout(ctx context.Context, userID uuid.UUID, paymentMethod domain.PaymentMethod, cashierName, customerName string) (*domain.Invoice, error) {
	items := s.cartSvc.Items(userID)
	totals, err := s.cartSvc.Totals(userID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.Finalize(ctx, items, totals, paymentMethod, cashierName, customerName)
	if err != nil {
		return nil, err
	}

	// The cart is only released once the invoice is safely persisted.
	s.cartSvc.Clear(userID)
	return invoice, nil
}

func (s *saleService) Finalize(ctx context.Context, items []domain.CartItem, totals domain.Totals, paymentMethod domain.PaymentMethod, cashierName, customerName string) (*domain.Invoice, error) {
	if len(items) == 0 {
		return nil, ErrEmptySale
	}

	number, err := s.invoiceRepo.NextNumber(ctx)
	if err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: number,
		CashierName:   cashierName,
		CustomerName:  customerName,
		Items:         domain.CloneItems(items),
		Totals:        totals,
		PaymentMethod: paymentMethod,
		Status:        domain.InvoiceCompleted,
		CreatedAt:     time.Now(),
	}

	if err := s.invoiceRepo.Append(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice finalized",
		zap.String("invoice_id", invoice.ID.String()),
		zap.Int64("invoice_number", invoice.InvoiceNumber),
		zap.String("cashier", cashierName),
		zap.Int64("total", int64(totals.Total)),
	)
	return invoice, nil
}

// Void transitions an invoice from completed to voided. The transition is
// permitted exactly once.
func (s *saleService) Void(ctx context.Context, invoiceID uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if invoice.Status == domain.InvoiceVoided {
		return ErrInvoiceAlreadyVoided
	}

	now := time.Now()
	invoice.Status = domain.InvoiceVoided
	invoice.VoidedAt = &now
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return err
	}

	s.logger.Info("Invoice voided",
		zap.String("invoice_id", invoice.ID.String()),
		zap.Int64("invoice_number", invoice.InvoiceNumber),
	)
	return nil
}

func (s *saleService) Get(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, invoiceID)
}

func (s *saleService) List(ctx context.Context) ([]domain.Invoice, error) {
	return s.invoiceRepo.List(ctx)
}

func (s *saleService) ResetCounter(ctx context.Context) error {
	if err := s.invoiceRepo.ResetNumber(ctx); err != nil {
		return err
	}
	s.logger.Warn("Invoice counter reset: numbering restarts from 1, this cannot be undone")
	return nil
}

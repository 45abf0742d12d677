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
	ErrEmptyHold = errors.New("cannot park an empty cart")
)

// RecoverResult reports the outcome of a hold-sale recovery. Items whose
// product no longer exists in the catalog are skipped, not fatal.
type RecoverResult struct {
	Recovered int      `json:"recovered"`
	Skipped   []string `json:"skipped,omitempty"`
}

// HoldSaleService parks in-progress carts and recalls them later. A parked
// sale is a frozen copy: nothing that happens to the catalog afterwards can
// alter it.
type HoldSaleService interface {
	// Park snapshots the operator's cart into a new hold sale and returns its
	// id. The live cart is left untouched; callers that want to free the till
	// clear it explicitly.
	Park(ctx context.Context, userID uuid.UUID, cashierName string) (uuid.UUID, error)
	// Recover resolves the stored items against the live catalog and appends
	// the ones that still exist into the operator's cart. The hold sale itself
	// is kept until an explicit delete or complete.
	Recover(ctx context.Context, holdID uuid.UUID, userID uuid.UUID) (*RecoverResult, error)
	// Complete finalizes the frozen snapshot into an invoice and deletes the
	// hold sale.
	Complete(ctx context.Context, holdID uuid.UUID, paymentMethod domain.PaymentMethod, customerName string) (*domain.Invoice, error)
	Delete(ctx context.Context, holdID uuid.UUID) error
	List(ctx context.Context) ([]domain.HoldSale, error)
}

type holdSaleService struct {
	holdRepo    repository.HoldSaleRepository
	catalogRepo repository.CatalogRepository
	cartSvc     CartService
	saleSvc     SaleService
	logger      *zap.Logger
}

// NewHoldSaleService creates a new instance of HoldSaleService.
func NewHoldSaleService(
	holdRepo repository.HoldSaleRepository,
	catalogRepo repository.CatalogRepository,
	cartSvc CartService,
	saleSvc SaleService,
	logger *zap.Logger,
) HoldSaleService {
	return &holdSaleService{
		holdRepo:    holdRepo,
		catalogRepo: catalogRepo,
		cartSvc:     cartSvc,
		saleSvc:     saleSvc,
		logger:      logger,
	}
}

func (s *holdSaleService) Park(ctx context.Context, userID uuid.UUID, cashierName string) (uuid.UUID, error) {
	items := s.cartSvc.Items(userID)
	if len(items) == 0 {
		return uuid.Nil, ErrEmptyHold
	}

	totals, err := s.cartSvc.Totals(userID)
	if err != nil {
		return uuid.Nil, err
	}

	hold := &domain.HoldSale{
		ID:          uuid.New(),
		CashierName: cashierName,
		Items:       domain.CloneItems(items),
		Totals:      totals,
		CreatedAt:   time.Now(),
	}

	if err := s.holdRepo.Save(ctx, hold); err != nil {
		return uuid.Nil, err
	}

	s.logger.Info("Sale parked",
		zap.String("hold_id", hold.ID.String()),
		zap.String("cashier", cashierName),
		zap.Int("items", len(hold.Items)),
	)
	return hold.ID, nil
}

func (s *holdSaleService) Recover(ctx context.Context, holdID uuid.UUID, userID uuid.UUID) (*RecoverResult, error) {
	hold, err := s.holdRepo.FindByID(ctx, holdID)
	if err != nil {
		return nil, err
	}

	result := &RecoverResult{}
	resolved := make([]domain.CartItem, 0, len(hold.Items))
	for _, item := range hold.Items {
		product, err := s.catalogRepo.FindByID(ctx, item.ProductID)
		if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		if err != nil || !product.IsActive {
			s.logger.Warn("Skipping hold-sale item: product no longer sellable",
				zap.String("hold_id", holdID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.String("product_name", item.ProductName),
			)
			result.Skipped = append(result.Skipped, item.ProductName)
			continue
		}
		resolved = append(resolved, item)
	}

	if err := s.cartSvc.Append(userID, resolved); err != nil {
		return nil, err
	}
	result.Recovered = len(resolved)
	return result, nil
}

func (s *holdSaleService) Complete(ctx context.Context, holdID uuid.UUID, paymentMethod domain.PaymentMethod, customerName string) (*domain.Invoice, error) {
	hold, err := s.holdRepo.FindByID(ctx, holdID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.saleSvc.Finalize(ctx, hold.Items, hold.Totals, paymentMethod, hold.CashierName, customerName)
	if err != nil {
		return nil, err
	}

	if err := s.holdRepo.Delete(ctx, holdID); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *holdSaleService) Delete(ctx context.Context, holdID uuid.UUID) error {
	if err := s.holdRepo.Delete(ctx, holdID); err != nil {
		return err
	}
	s.logger.Info("Hold sale deleted", zap.String("hold_id", holdID.String()))
	return nil
}

func (s *holdSaleService) List(ctx context.Context) ([]domain.HoldSale, error) {
	return s.holdRepo.List(ctx)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tillpoint/internal/domain"
	"tillpoint/internal/money"
	"tillpoint/internal/repository"
	"tillpoint/internal/store"
)

type holdSaleFixture struct {
	holdSvc HoldSaleService
	cartSvc CartService
	saleSvc SaleService
	catalog repository.CatalogRepository
	holds   repository.HoldSaleRepository
}

func newHoldSaleFixture(t *testing.T) *holdSaleFixture {
	t.Helper()

	kv := store.NewMemoryStore()
	logger := zap.NewNop()

	cartSvc := NewCartService(1300)
	catalog := repository.NewCatalogRepository(kv)
	holds := repository.NewHoldSaleRepository(kv)
	saleSvc := NewSaleService(repository.NewInvoiceRepository(kv), cartSvc, logger)

	return &holdSaleFixture{
		holdSvc: NewHoldSaleService(holds, catalog, cartSvc, saleSvc, logger),
		cartSvc: cartSvc,
		saleSvc: saleSvc,
		catalog: catalog,
		holds:   holds,
	}
}

func (f *holdSaleFixture) stockCatalog(t *testing.T, products ...*domain.Product) {
	t.Helper()
	for _, p := range products {
		require.NoError(t, f.catalog.Upsert(context.Background(), p))
	}
}

func TestParkRejectsEmptyCart(t *testing.T) {
	f := newHoldSaleFixture(t)

	_, err := f.holdSvc.Park(context.Background(), uuid.New(), "alice")
	assert.ErrorIs(t, err, ErrEmptyHold)
}

func TestParkLeavesCartUntouched(t *testing.T) {
	f := newHoldSaleFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, f.cartSvc.Add(userID, testProduct("Espresso Beans", 1500), decimal.NewFromInt(2)))

	holdID, err := f.holdSvc.Park(ctx, userID, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, holdID)

	// Parking snapshots the cart; it does not consume it.
	assert.Len(t, f.cartSvc.Items(userID), 1)
}

func TestParkThenRecoverRoundTrip(t *testing.T) {
	f := newHoldSaleFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	beans := testProduct("Espresso Beans", 1500)
	cheese := testProduct("Gouda", 2890)
	f.stockCatalog(t, beans, cheese)

	require.NoError(t, f.cartSvc.Add(userID, beans, decimal.NewFromInt(2)))
	require.NoError(t, f.cartSvc.Add(userID, cheese, decimal.RequireFromString("0.5")))

	holdID, err := f.holdSvc.Park(ctx, userID, "alice")
	require.NoError(t, err)
	f.cartSvc.Clear(userID)

	result, err := f.holdSvc.Recover(ctx, holdID, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Recovered)
	assert.Empty(t, result.Skipped)

	items := f.cartSvc.Items(userID)
	require.Len(t, items, 2)
	// Order and quantities survive the round trip.
	assert.Equal(t, beans.ID, items[0].ProductID)
	assert.True(t, items[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, cheese.ID, items[1].ProductID)
	assert.True(t, items[1].Quantity.Equal(decimal.RequireFromString("0.5")))
}

func TestRecoverSkipsProductsGoneFromCatalog(t *testing.T) {
	f := newHoldSaleFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	beans := testProduct("Espresso Beans", 1500)
	cheese := testProduct("Gouda", 2890)
	f.stockCatalog(t, beans, cheese)

	require.NoError(t, f.cartSvc.Add(userID, beans, decimal.NewFromInt(1)))
	require.NoError(t, f.cartSvc.Add(userID, cheese, decimal.NewFromInt(1)))

	holdID, err := f.holdSvc.Park(ctx, userID, "alice")
	require.NoError(t, err)
	f.cartSvc.Clear(userID)

	require.NoError(t, f.catalog.Deactivate(ctx, cheese.ID))

	result, err := f.holdSvc.Recover(ctx, holdID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Recovered)
	assert.Equal(t, []string{"Gouda"}, result.Skipped)

	items := f.cartSvc.Items(userID)
	require.Len(t, items, 1)
	assert.Equal(t, beans.ID, items[0].ProductID)
}

func TestRecoverMissingHold(t *testing.T) {
	f := newHoldSaleFixture(t)

	_, err := f.holdSvc.Recover(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrHoldSaleNotFound)
}

func TestParkedSaleIsFrozenAgainstPriceChanges(t *testing.T) {
	f := newHoldSaleFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	beans := testProduct("Espresso Beans", 1500)
	f.stockCatalog(t, beans)
	require.NoError(t, f.cartSvc.Add(userID, beans, decimal.NewFromInt(2)))

	holdID, err := f.holdSvc.Park(ctx, userID, "alice")
	require.NoError(t, err)

	// A later price change must not leak into the frozen snapshot.
	beans.Price = 9999
	require.NoError(t, f.catalog.Upsert(ctx, beans))

	hold, err := f.holds.FindByID(ctx, holdID)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(1500), hold.Items[0].UnitPrice)
	assert.Equal(t, money.Amount(3000), hold.SubtotalWithoutTax)
}

func TestCompleteEmitsInvoiceAndDeletesHold(t *testing.T) {
	f := newHoldSaleFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	beans := testProduct("Espresso Beans", 1500)
	f.stockCatalog(t, beans)
	require.NoError(t, f.cartSvc.Add(userID, beans, decimal.NewFromInt(2)))

	holdID, err := f.holdSvc.Park(ctx, userID, "alice")
	require.NoError(t, err)

	invoice, err := f.holdSvc.Complete(ctx, holdID, domain.PaymentCard, "walk-in")
	require.NoError(t, err)
	assert.Equal(t, int64(1), invoice.InvoiceNumber)
	assert.Equal(t, "alice", invoice.CashierName)
	assert.Equal(t, money.Amount(3390), invoice.Total)

	_, err = f.holds.FindByID(ctx, holdID)
	assert.ErrorIs(t, err, repository.ErrHoldSaleNotFound)
}

func TestDeleteMissingHold(t *testing.T) {
	f := newHoldSaleFixture(t)

	err := f.holdSvc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrHoldSaleNotFound)
}

func TestListReturnsMostRecentFirst(t *testing.T) {
	f := newHoldSaleFixture(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		hold := &domain.HoldSale{
			ID:          uuid.New(),
			CashierName: "alice",
			Items:       saleItems(),
			Totals:      saleTotals(),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.holds.Save(ctx, hold))
	}

	holds, err := f.holdSvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, holds, 3)
	assert.True(t, holds[0].CreatedAt.After(holds[1].CreatedAt))
	assert.True(t, holds[1].CreatedAt.After(holds[2].CreatedAt))
}

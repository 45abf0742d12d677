package service

import (
	"context"
	"testing"

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

func newTestSaleService(s store.Store) (SaleService, CartService) {
	cartSvc := NewCartService(1300)
	invoiceRepo := repository.NewInvoiceRepository(s)
	return NewSaleService(invoiceRepo, cartSvc, zap.NewNop()), cartSvc
}

func saleItems() []domain.CartItem {
	return []domain.CartItem{
		{
			ProductID:   uuid.New(),
			ProductName: "Espresso Beans",
			UnitPrice:   1500,
			Quantity:    decimal.NewFromInt(2),
			TotalPrice:  3000,
		},
	}
}

func saleTotals() domain.Totals {
	return domain.Totals{
		SubtotalWithoutTax: 3000,
		TaxAmount:          390,
		Total:              3390,
	}
}

func TestFinalizeAssignsSequentialNumbers(t *testing.T) {
	svc, _ := newTestSaleService(store.NewMemoryStore())
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		inv, err := svc.Finalize(ctx, saleItems(), saleTotals(), domain.PaymentCash, "alice", "")
		require.NoError(t, err)
		assert.Equal(t, want, inv.InvoiceNumber)
		assert.Equal(t, domain.InvoiceCompleted, inv.Status)
	}
}

func TestInvoiceNumberingSurvivesRestart(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()

	svc, _ := newTestSaleService(kv)
	for i := 0; i < 3; i++ {
		_, err := svc.Finalize(ctx, saleItems(), saleTotals(), domain.PaymentCash, "alice", "")
		require.NoError(t, err)
	}

	// A fresh service over the same store continues the sequence.
	restarted, _ := newTestSaleService(kv)
	inv, err := restarted.Finalize(ctx, saleItems(), saleTotals(), domain.PaymentCard, "bob", "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), inv.InvoiceNumber)
}

func TestFinalizeRejectsEmptySale(t *testing.T) {
	svc, _ := newTestSaleService(store.NewMemoryStore())

	_, err := svc.Finalize(context.Background(), nil, domain.Totals{}, domain.PaymentCash, "alice", "")
	assert.ErrorIs(t, err, ErrEmptySale)
}

func TestFinalizeDoesNotMutateArguments(t *testing.T) {
	svc, _ := newTestSaleService(store.NewMemoryStore())
	ctx := context.Background()

	items := saleItems()
	original := items[0]

	inv, err := svc.Finalize(ctx, items, saleTotals(), domain.PaymentCash, "alice", "")
	require.NoError(t, err)

	// The invoice holds its own copy of the lines.
	inv.Items[0].ProductName = "tampered"
	assert.Equal(t, original, items[0])
}

func TestCheckoutClearsCart(t *testing.T) {
	svc, cartSvc := newTestSaleService(store.NewMemoryStore())
	ctx := context.Background()
	userID := uuid.New()

	p := testProduct("Espresso Beans", 1500)
	require.NoError(t, cartSvc.Add(userID, p, decimal.NewFromInt(2)))

	inv, err := svc.Checkout(ctx, userID, domain.PaymentCash, "alice", "walk-in")
	require.NoError(t, err)
	assert.Equal(t, money.Amount(3390), inv.Total)
	assert.Equal(t, "walk-in", inv.CustomerName)
	assert.Empty(t, cartSvc.Items(userID))
}

func TestCheckoutEmptyCartLeavesNoInvoice(t *testing.T) {
	svc, _ := newTestSaleService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Checkout(ctx, uuid.New(), domain.PaymentCash, "alice", "")
	assert.ErrorIs(t, err, ErrEmptySale)

	invoices, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestVoidIsPermittedExactlyOnce(t *testing.T) {
	svc, _ := newTestSaleService(store.NewMemoryStore())
	ctx := context.Background()

	inv, err := svc.Finalize(ctx, saleItems(), saleTotals(), domain.PaymentCash, "alice", "")
	require.NoError(t, err)

	require.NoError(t, svc.Void(ctx, inv.ID))

	got, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceVoided, got.Status)
	require.NotNil(t, got.VoidedAt)
	// Totals and number are untouched by the void.
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)
	assert.Equal(t, inv.Total, got.Total)

	assert.ErrorIs(t, svc.Void(ctx, inv.ID), ErrInvoiceAlreadyVoided)
}

func TestVoidMissingInvoice(t *testing.T) {
	svc, _ := newTestSaleService(store.NewMemoryStore())

	err := svc.Void(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrInvoiceNotFound)
}

func TestResetCounterRestartsNumbering(t *testing.T) {
	svc, _ := newTestSaleService(store.NewMemoryStore())
	ctx := context.Background()

	first, err := svc.Finalize(ctx, saleItems(), saleTotals(), domain.PaymentCash, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.InvoiceNumber)

	require.NoError(t, svc.ResetCounter(ctx))

	next, err := svc.Finalize(ctx, saleItems(), saleTotals(), domain.PaymentCash, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), next.InvoiceNumber)
}

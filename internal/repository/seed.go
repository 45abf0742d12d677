package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tillpoint/internal/domain"
)

// SeedDemoCatalog loads a small demo catalog when the store is empty. Used by
// development installs so the register has something to sell.
func SeedDemoCatalog(ctx context.Context, catalog CatalogRepository, logger *zap.Logger) error {
	existing, err := catalog.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	fiftyPieces := decimal.NewFromInt(50)
	now := time.Now()
	products := []domain.Product{
		{
			ID:        uuid.New(),
			Name:      "Espresso Beans 250g",
			Barcode:   "7290001001",
			Price:     1500,
			Cost:      900,
			Stock:     &fiftyPieces,
			Unit:      domain.UnitPiece,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        uuid.New(),
			Name:      "Sourdough Loaf",
			Barcode:   "7290001002",
			Price:     650,
			Cost:      220,
			Stock:     &fiftyPieces,
			Unit:      domain.UnitPiece,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        uuid.New(),
			Name:      "Gouda Cheese",
			Barcode:   "7290001003",
			Price:     2890,
			Cost:      1750,
			Stock:     nil, // sold by weight, stock unbounded
			Unit:      domain.UnitWeight,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for i := range products {
		if err := catalog.Upsert(ctx, &products[i]); err != nil {
			return err
		}
	}

	logger.Info("Seeded demo catalog", zap.Int("products", len(products)))
	return nil
}

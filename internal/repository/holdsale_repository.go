package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"tillpoint/internal/domain"
	"tillpoint/internal/store"
)

var (
	ErrHoldSaleNotFound = errors.New("hold sale not found")
)

// HoldSaleRepository persists parked sales. The collection is a single JSON
// document keyed by hold id, so every mutation is a whole-document atomic
// write.
type HoldSaleRepository interface {
	Save(ctx context.Context, holdSale *domain.HoldSale) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.HoldSale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]domain.HoldSale, error)
}

type holdSaleRepository struct {
	store store.Store
}

// NewHoldSaleRepository creates a new instance of HoldSaleRepository.
func NewHoldSaleRepository(s store.Store) HoldSaleRepository {
	return &holdSaleRepository{store: s}
}

func (r *holdSaleRepository) load(ctx context.Context) (map[string]domain.HoldSale, error) {
	raw, err := r.store.Get(ctx, store.KeyHoldSales)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return map[string]domain.HoldSale{}, nil
		}
		return nil, fmt.Errorf("failed to load hold sales: %w", err)
	}

	var holds map[string]domain.HoldSale
	if err := json.Unmarshal(raw, &holds); err != nil {
		return nil, fmt.Errorf("failed to decode hold sales: %w", err)
	}
	return holds, nil
}

func (r *holdSaleRepository) save(ctx context.Context, holds map[string]domain.HoldSale) error {
	raw, err := json.Marshal(holds)
	if err != nil {
		return fmt.Errorf("failed to encode hold sales: %w", err)
	}
	if err := r.store.Set(ctx, store.KeyHoldSales, raw); err != nil {
		return fmt.Errorf("failed to save hold sales: %w", err)
	}
	return nil
}

func (r *holdSaleRepository) Save(ctx context.Context, holdSale *domain.HoldSale) error {
	holds, err := r.load(ctx)
	if err != nil {
		return err
	}
	holds[holdSale.ID.String()] = *holdSale
	return r.save(ctx, holds)
}

func (r *holdSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.HoldSale, error) {
	holds, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	hold, ok := holds[id.String()]
	if !ok {
		return nil, ErrHoldSaleNotFound
	}
	return &hold, nil
}

func (r *holdSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	holds, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := holds[id.String()]; !ok {
		return ErrHoldSaleNotFound
	}
	delete(holds, id.String())
	return r.save(ctx, holds)
}

// List returns all parked sales, most recent first. The viewing order is part
// of the contract even though the storage order is not.
func (r *holdSaleRepository) List(ctx context.Context) ([]domain.HoldSale, error) {
	holds, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]domain.HoldSale, 0, len(holds))
	for _, hold := range holds {
		list = append(list, hold)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

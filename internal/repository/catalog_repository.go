package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tillpoint/internal/domain"
	"tillpoint/internal/store"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// CatalogRepository reads the persisted product catalog snapshot. The catalog
// is owned by an external collaborator; the transaction engine treats it as
// read-mostly and only admins may touch it.
type CatalogRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Upsert(ctx context.Context, product *domain.Product) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type catalogRepository struct {
	store store.Store
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(s store.Store) CatalogRepository {
	return &catalogRepository{store: s}
}

func (r *catalogRepository) load(ctx context.Context) ([]domain.Product, error) {
	raw, err := r.store.Get(ctx, store.KeyCatalog)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return []domain.Product{}, nil
		}
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return products, nil
}

func (r *catalogRepository) save(ctx context.Context, products []domain.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := r.store.Set(ctx, store.KeyCatalog, raw); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

func (r *catalogRepository) List(ctx context.Context) ([]domain.Product, error) {
	return r.load(ctx)
}

func (r *catalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	products, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *catalogRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	products, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].Barcode != "" && products[i].Barcode == barcode {
			return &products[i], nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *catalogRepository) Search(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	matches := []domain.Product{}
	for _, p := range products {
		if query == "" || strings.Contains(strings.ToLower(p.Name), query) || p.Barcode == query {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (r *catalogRepository) Upsert(ctx context.Context, product *domain.Product) error {
	products, err := r.load(ctx)
	if err != nil {
		return err
	}

	product.UpdatedAt = time.Now()
	for i := range products {
		if products[i].ID == product.ID {
			products[i] = *product
			return r.save(ctx, products)
		}
	}

	if product.CreatedAt.IsZero() {
		product.CreatedAt = product.UpdatedAt
	}
	products = append(products, *product)
	return r.save(ctx, products)
}

func (r *catalogRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	products, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID == id {
			products[i].IsActive = false
			products[i].UpdatedAt = time.Now()
			return r.save(ctx, products)
		}
	}
	return ErrProductNotFound
}

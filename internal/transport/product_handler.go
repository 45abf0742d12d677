package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tillpoint/internal/domain"
	"tillpoint/internal/middleware"
	"tillpoint/internal/money"
	"tillpoint/internal/repository"
)

// UpsertProductRequest represents a product create/update payload
type UpsertProductRequest struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name" validate:"required"`
	Barcode string  `json:"barcode,omitempty"`
	Price   int64   `json:"price" validate:"required,gt=0"`
	Cost    int64   `json:"cost" validate:"gte=0"`
	Stock   *string `json:"stock,omitempty"`
	Unit    string  `json:"unit" validate:"required,oneof=piece weight"`
}

// ProductHandler serves the read-mostly catalog surface
type ProductHandler struct {
	catalogRepo repository.CatalogRepository
	logger      *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogRepo repository.CatalogRepository, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{catalogRepo: catalogRepo, logger: logger}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.Get("/barcode/{barcode}", h.FindByBarcode)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(domain.CapManageProducts, h.logger))
			r.Post("/", h.Upsert)
			r.Delete("/{id}", h.Deactivate)
		})
	})
}

// List returns the full catalog snapshot
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogRepo.List(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Search matches products by name substring or exact barcode
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogRepo.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// FindByBarcode resolves a scanned barcode
func (h *ProductHandler) FindByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalogRepo.FindByBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Upsert creates or updates a catalog product (admin only)
func (h *ProductHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := uuid.New()
	if req.ID != "" {
		parsed, err := uuid.Parse(req.ID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
			return
		}
		id = parsed
	}

	var stock *decimal.Decimal
	if req.Stock != nil {
		parsed, err := decimal.NewFromString(*req.Stock)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid stock value")
			return
		}
		stock = &parsed
	}

	product := &domain.Product{
		ID:        id,
		Name:      req.Name,
		Barcode:   req.Barcode,
		Price:     money.Amount(req.Price),
		Cost:      money.Amount(req.Cost),
		Stock:     stock,
		Unit:      domain.Unit(req.Unit),
		IsActive:  true,
		UpdatedAt: time.Now(),
	}
	if err := h.catalogRepo.Upsert(r.Context(), product); err != nil {
		h.logger.Error("Product upsert failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Deactivate marks a product inactive (admin only)
func (h *ProductHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.catalogRepo.Deactivate(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

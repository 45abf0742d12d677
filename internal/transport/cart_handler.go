package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tillpoint/internal/domain"
	"tillpoint/internal/middleware"
	"tillpoint/internal/money"
	"tillpoint/internal/repository"
	"tillpoint/internal/service"
)

// AddItemRequest represents the add-to-cart payload. Quantity is a decimal
// string so weight-sold goods can carry fractional quantities.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  string `json:"quantity,omitempty"`
}

// SetQuantityRequest represents the absolute-quantity payload
type SetQuantityRequest struct {
	Quantity string `json:"quantity" validate:"required"`
}

// SetDiscountRequest represents the cart discount payload
type SetDiscountRequest struct {
	Discount int64 `json:"discount" validate:"gte=0"`
}

// CartResponse is the live cart with derived totals
type CartResponse struct {
	Items []domain.CartItem `json:"items"`
	domain.Totals
}

// CartHandler handles HTTP requests for the operator's live cart
type CartHandler struct {
	cartSvc     service.CartService
	catalogRepo repository.CatalogRepository
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartSvc service.CartService, catalogRepo repository.CatalogRepository, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartSvc:     cartSvc,
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireCapability(domain.CapSell, h.logger))

		r.Get("/", h.Get)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productId}", h.SetQuantity)
		r.Delete("/items/{productId}", h.RemoveItem)
		r.Put("/discount", h.SetDiscount)
		r.Delete("/", h.Clear)
	})
}

func (h *CartHandler) respondCart(w http.ResponseWriter, userID uuid.UUID) {
	totals, err := h.cartSvc.Totals(userID)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items:  h.cartSvc.Items(userID),
		Totals: totals,
	})
}

// Get returns the live cart and its derived totals
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := operatorID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid session")
		return
	}
	h.respondCart(w, userID)
}

// AddItem adds a product to the cart, merging quantities for repeat scans
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := operatorID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quantity := decimal.NewFromInt(1)
	if req.Quantity != "" {
		parsed, err := decimal.NewFromString(req.Quantity)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid quantity")
			return
		}
		quantity = parsed
	}

	productID, _ := uuid.Parse(req.ProductID)
	product, err := h.catalogRepo.FindByID(r.Context(), productID)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	if err := h.cartSvc.Add(userID, product, quantity); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	h.respondCart(w, userID)
}

// SetQuantity sets the absolute quantity of a cart line; zero removes it
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := operatorID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req SetQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid quantity")
		return
	}

	if err := h.cartSvc.SetQuantity(userID, productID, quantity); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	h.respondCart(w, userID)
}

// RemoveItem deletes a cart line
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := operatorID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.cartSvc.Remove(userID, productID); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	h.respondCart(w, userID)
}

// SetDiscount sets the cart-level discount in minor currency units
func (h *CartHandler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	userID, ok := operatorID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	var req SetDiscountRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.cartSvc.SetDiscount(userID, money.Amount(req.Discount)); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	h.respondCart(w, userID)
}

// Clear empties the cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := operatorID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	h.cartSvc.Clear(userID)
	h.respondCart(w, userID)
}

package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tillpoint/internal/domain"
	"tillpoint/internal/middleware"
	"tillpoint/internal/service"
)

// ParkRequest represents the park-sale payload
type ParkRequest struct {
	// ClearCart requests that the live cart be emptied after a successful
	// park. Parking never clears implicitly.
	ClearCart bool `json:"clearCart"`
}

// ParkResponse carries the new hold id
type ParkResponse struct {
	HoldID string `json:"holdId"`
}

// CompleteHoldRequest represents the complete-hold payload
type CompleteHoldRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cash card"`
	CustomerName  string `json:"customerName,omitempty"`
}

// HoldSaleHandler handles HTTP requests for parked sales
type HoldSaleHandler struct {
	holdSvc    service.HoldSaleService
	cartSvc    service.CartService
	sessionSvc service.SessionService
	logger     *zap.Logger
}

// NewHoldSaleHandler creates a new HoldSaleHandler
func NewHoldSaleHandler(holdSvc service.HoldSaleService, cartSvc service.CartService, sessionSvc service.SessionService, logger *zap.Logger) *HoldSaleHandler {
	return &HoldSaleHandler{
		holdSvc:    holdSvc,
		cartSvc:    cartSvc,
		sessionSvc: sessionSvc,
		logger:     logger,
	}
}

// RegisterRoutes registers all hold-sale routes
func (h *HoldSaleHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/holds", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireCapability(domain.CapHoldSales, h.logger))

		r.Get("/", h.List)
		r.Post("/", h.Park)
		r.Post("/{id}/recover", h.Recover)
		r.Post("/{id}/complete", h.Complete)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns all parked sales, most recent first
func (h *HoldSaleHandler) List(w http.ResponseWriter, r *http.Request) {
	holds, err := h.holdSvc.List(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, holds)
}

// Park snapshots the live cart into a new hold sale
func (h *HoldSaleHandler) Park(w http.ResponseWriter, r *http.Request) {
	userID, ok := operatorID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	var req ParkRequest
	if r.ContentLength > 0 {
		if err := middleware.DecodeAndValidate(r, &req); err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	cashierName := ""
	if user, ok := h.sessionSvc.CurrentUser(); ok {
		cashierName = user.FullName
	}

	holdID, err := h.holdSvc.Park(r.Context(), userID, cashierName)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	if req.ClearCart {
		h.cartSvc.Clear(userID)
	}
	middleware.RespondWithJSON(w, http.StatusCreated, ParkResponse{HoldID: holdID.String()})
}

// Recover appends a hold's still-valid items into the live cart
func (h *HoldSaleHandler) Recover(w http.ResponseWriter, r *http.Request) {
	userID, ok := operatorID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	holdID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid hold id")
		return
	}

	result, err := h.holdSvc.Recover(r.Context(), holdID, userID)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// Complete finalizes a hold into an invoice and removes it
func (h *HoldSaleHandler) Complete(w http.ResponseWriter, r *http.Request) {
	holdID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid hold id")
		return
	}

	var req CompleteHoldRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	invoice, err := h.holdSvc.Complete(r.Context(), holdID, domain.PaymentMethod(req.PaymentMethod), req.CustomerName)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, invoice)
}

// Delete removes a parked sale permanently
func (h *HoldSaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	holdID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid hold id")
		return
	}

	if err := h.holdSvc.Delete(r.Context(), holdID); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

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

// CheckoutRequest represents the checkout payload
type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cash card"`
	CustomerName  string `json:"customerName,omitempty"`
}

// SaleHandler handles HTTP requests for the sale ledger
type SaleHandler struct {
	saleSvc    service.SaleService
	sessionSvc service.SessionService
	logger     *zap.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleSvc service.SaleService, sessionSvc service.SessionService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		saleSvc:    saleSvc,
		sessionSvc: sessionSvc,
		logger:     logger,
	}
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/sales", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(domain.CapSell, h.logger))
			r.Post("/checkout", h.Checkout)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(domain.CapViewInvoices, h.logger))
			r.Get("/", h.List)
			r.Get("/{id}", h.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(domain.CapVoidInvoice, h.logger))
			r.Post("/{id}/void", h.Void)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(domain.CapResetInvoiceCounter, h.logger))
			r.Post("/counter/reset", h.ResetCounter)
		})
	})
}

// Checkout finalizes the live cart into an invoice
func (h *SaleHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := operatorID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cashierName := ""
	if user, ok := h.sessionSvc.CurrentUser(); ok {
		cashierName = user.FullName
	}

	invoice, err := h.saleSvc.Checkout(r.Context(), userID, domain.PaymentMethod(req.PaymentMethod), cashierName, req.CustomerName)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, invoice)
}

// List returns all invoices
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.saleSvc.List(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, invoices)
}

// Get returns a single invoice
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	invoice, err := h.saleSvc.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, invoice)
}

// Void transitions an invoice from completed to voided (admin only)
func (h *SaleHandler) Void(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	if err := h.saleSvc.Void(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "voided"})
}

// ResetCounter restarts invoice numbering (admin only, irreversible)
func (h *SaleHandler) ResetCounter(w http.ResponseWriter, r *http.Request) {
	if err := h.saleSvc.ResetCounter(r.Context()); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "counter reset"})
}

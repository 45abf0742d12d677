package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"tillpoint/internal/domain"
)

func requestWithRole(role domain.Role) *http.Request {
	req := httptest.NewRequest("POST", "/test", nil)
	ctx := context.WithValue(req.Context(), UserIDKey, "operator")
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return req.WithContext(ctx)
}

func TestRequireCapabilityGrantsAndDenies(t *testing.T) {
	tests := []struct {
		name       string
		role       domain.Role
		capability domain.Capability
		wantStatus int
	}{
		{"cashier can sell", domain.RoleCashier, domain.CapSell, http.StatusOK},
		{"cashier can park sales", domain.RoleCashier, domain.CapHoldSales, http.StatusOK},
		{"cashier cannot void", domain.RoleCashier, domain.CapVoidInvoice, http.StatusForbidden},
		{"cashier cannot manage users", domain.RoleCashier, domain.CapManageUsers, http.StatusForbidden},
		{"cashier cannot reset the counter", domain.RoleCashier, domain.CapResetInvoiceCounter, http.StatusForbidden},
		{"admin can void", domain.RoleAdmin, domain.CapVoidInvoice, http.StatusOK},
		{"admin can manage products", domain.RoleAdmin, domain.CapManageProducts, http.StatusOK},
		{"admin can reset the counter", domain.RoleAdmin, domain.CapResetInvoiceCounter, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireCapability(tt.capability, zap.NewNop())(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, requestWithRole(tt.role))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequireCapabilityWithoutRoleDenies(t *testing.T) {
	handler := RequireCapability(domain.CapSell, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest("POST", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

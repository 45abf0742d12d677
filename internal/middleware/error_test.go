package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tillpoint/internal/money"
	"tillpoint/internal/repository"
	"tillpoint/internal/service"
)

func TestProperty_ErrorsHaveConsistentStructure(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all error responses have consistent structure", prop.ForAll(
		func(message string) bool {
			standardCodes := []int{
				http.StatusBadRequest,
				http.StatusUnauthorized,
				http.StatusForbidden,
				http.StatusNotFound,
				http.StatusConflict,
				http.StatusTooManyRequests,
				http.StatusInternalServerError,
			}
			statusCode := standardCodes[len(message)%len(standardCodes)]

			if len(message) == 0 {
				message = "test error"
			}

			w := httptest.NewRecorder()
			RespondWithError(w, statusCode, message)

			if w.Code != statusCode {
				return false
			}
			if w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			if response.Error.Code != http.StatusText(statusCode) {
				return false
			}
			if response.Error.Message != message {
				return false
			}

			// Timestamp must be valid RFC3339.
			_, err := time.Parse(time.RFC3339, response.Error.Timestamp)
			return err == nil
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithDomainErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid quantity", service.ErrInvalidQuantity, http.StatusBadRequest},
		{"empty sale", service.ErrEmptySale, http.StatusBadRequest},
		{"empty hold", service.ErrEmptyHold, http.StatusBadRequest},
		{"product not found", repository.ErrProductNotFound, http.StatusNotFound},
		{"hold sale not found", repository.ErrHoldSaleNotFound, http.StatusNotFound},
		{"invoice not found", repository.ErrInvoiceNotFound, http.StatusNotFound},
		{"already voided", service.ErrInvoiceAlreadyVoided, http.StatusConflict},
		{"duplicate user", repository.ErrUserAlreadyExists, http.StatusConflict},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not authenticated", service.ErrNotAuthenticated, http.StatusUnauthorized},
		{"permission denied", service.ErrPermissionDenied, http.StatusForbidden},
		{"amount overflow", money.ErrAmountOverflow, http.StatusUnprocessableEntity},
		{"unknown error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondWithDomainError(w, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestErrorHandlingMiddlewareRecoversPanics(t *testing.T) {
	handler := ErrorHandlingMiddleware(zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	require.NotPanics(t, func() { handler.ServeHTTP(w, req) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "internal server error", response.Error.Message)
}

package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedPayload struct {
	Name     string `json:"name" validate:"required,min=3"`
	Role     string `json:"role" validate:"required,oneof=admin cashier"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

func TestDecodeAndValidateAcceptsValidPayload(t *testing.T) {
	body := `{"name":"alice","role":"cashier","quantity":2}`
	req := httptest.NewRequest("POST", "/test", strings.NewReader(body))

	var payload validatedPayload
	require.NoError(t, DecodeAndValidate(req, &payload))
	assert.Equal(t, "alice", payload.Name)
}

func TestDecodeAndValidateRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", strings.NewReader("{not json"))

	var payload validatedPayload
	err := DecodeAndValidate(req, &payload)
	require.Error(t, err)

	// Malformed JSON is a decode error, not a field validation error.
	assert.Empty(t, FormatValidationErrors(err))
}

func TestDecodeAndValidateReportsFieldErrors(t *testing.T) {
	body := `{"name":"al","role":"manager","quantity":0}`
	req := httptest.NewRequest("POST", "/test", strings.NewReader(body))

	var payload validatedPayload
	err := DecodeAndValidate(req, &payload)
	require.Error(t, err)

	fieldErrors := FormatValidationErrors(err)
	require.Len(t, fieldErrors, 3)

	fields := make(map[string]string)
	for _, fe := range fieldErrors {
		fields[fe.Field] = fe.Message
	}
	assert.Contains(t, fields, "Name")
	assert.Contains(t, fields, "Role")
	assert.Contains(t, fields, "Quantity")
	assert.Equal(t, "Value must be one of: admin cashier", fields["Role"])
}

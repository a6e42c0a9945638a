package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/validator"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// --- WriteJSON ---

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, Response{Data: "hello"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestResponse_OmitsEmptyFields(t *testing.T) {
	b, err := json.Marshal(Response{Data: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":1}`, string(b))
}

// --- WriteError ---

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"app not found", apperrors.NotFound("product", "99"), http.StatusNotFound, "NOT_FOUND"},
		{"sentinel not found", fmt.Errorf("lookup: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"sentinel invalid", fmt.Errorf("x: %w", apperrors.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{"catalog not loaded", apperrors.ServiceUnavailable("catalog not loaded"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products/99", nil)

			WriteError(rec, req, tt.err, logger.Discard())

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.WithCorrelationID(context.Background(), "corr-1"))

	WriteError(rec, req, apperrors.InvalidInput("bad"), logger.Discard())

	resp := decode(t, rec)
	assert.Equal(t, "corr-1", resp.Error.RequestID)
}

// --- WriteValidationError ---

func TestWriteValidationError_Fields(t *testing.T) {
	type body struct {
		ProductID int `json:"product_id" validate:"required"`
	}
	rec := httptest.NewRecorder()
	WriteValidationError(rec, validator.Validate(body{}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "is required", resp.Error.Fields["product_id"])
}

func TestWriteValidationError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, fmt.Errorf("decode request body: EOF"))

	resp := decode(t, rec)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

// --- Parameters ---

func TestParseProductID(t *testing.T) {
	for _, in := range []string{"1", " 42 "} {
		rec := httptest.NewRecorder()
		_, ok := ParseProductID(rec, in)
		assert.True(t, ok, in)
	}

	for _, in := range []string{"", "abc", "0", "-3", "1.5"} {
		rec := httptest.NewRecorder()
		_, ok := ParseProductID(rec, in)
		assert.False(t, ok, in)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=3&bad=x&sizes=M,%20L,,XL", nil)

	assert.Equal(t, 3, QueryInt(req, "limit", 8))
	assert.Equal(t, 8, QueryInt(req, "bad", 8))
	assert.Equal(t, 8, QueryInt(req, "missing", 8))
	assert.Equal(t, []string{"M", "L", "XL"}, QueryList(req, "sizes"))
	assert.Nil(t, QueryList(req, "colors"))
}

func TestNewListResponse_NilBecomesEmpty(t *testing.T) {
	resp := NewListResponse[int](nil)
	assert.NotNil(t, resp.Items)
	assert.Equal(t, 0, resp.Count)

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"count":0}`, string(b))
}

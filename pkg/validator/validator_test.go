package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addItem struct {
	ProductID int    `json:"product_id" validate:"required,gt=0"`
	Size      string `json:"size" validate:"max=16"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=999"`
}

type priceRange struct {
	Min float64 `json:"min" validate:"gte=0"`
	Max float64 `json:"max" validate:"gtefield=Min"`
}

type sortQuery struct {
	Sort string `json:"sort" validate:"omitempty,oneof=featured rating"`
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(addItem{ProductID: 3, Size: "M", Quantity: 2}))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	err := Validate(addItem{Quantity: 1})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "is required", valErr.Fields()["product_id"])
	assert.Contains(t, err.Error(), "field 'product_id'")
}

func TestValidate_Messages(t *testing.T) {
	tests := []struct {
		name  string
		input any
		field string
		want  string
	}{
		{"gt", addItem{ProductID: -1}, "product_id", "must be greater than 0"},
		{"lte", addItem{ProductID: 1, Quantity: 1000}, "quantity", "less than or equal to 999"},
		{"max", addItem{ProductID: 1, Size: strings.Repeat("X", 17)}, "size", "at most 16"},
		{"gtefield", priceRange{Min: 100, Max: 50}, "max", "greater than or equal to Min"},
		{"oneof", sortQuery{Sort: "cheapest"}, "sort", "one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			require.Error(t, err)

			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Contains(t, valErr.Fields()[tt.field], tt.want)
		})
	}
}

func TestValidate_VariantLabels(t *testing.T) {
	type line struct {
		Size string `json:"size" validate:"variant"`
	}

	for _, ok := range []string{"", "M", "4-5Y", "One Size", "11C", "Navy/White", "Größe 2"} {
		assert.NoError(t, Validate(line{Size: ok}), ok)
	}
	for _, bad := range []string{" M", "-M", "M\n", "<b>", strings.Repeat("X", 33)} {
		err := Validate(line{Size: bad})
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr, bad)
		assert.Contains(t, valErr.Fields()["size"], "size or color label")
	}
}

func TestDecodeAndValidate_Success(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"product_id":7,"size":"L","quantity":3}`))

	var in addItem
	require.NoError(t, DecodeAndValidate(req, &in))
	assert.Equal(t, 7, in.ProductID)
	assert.Equal(t, "L", in.Size)
	assert.Equal(t, 3, in.Quantity)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{invalid"))

	var in addItem
	err := DecodeAndValidate(req, &in)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_ValidationFails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"product_id":0}`))

	var in addItem
	err := DecodeAndValidate(req, &in)

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

type variantBody struct {
	Ram   string          `json:"ram" validate:"max=50"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty" validate:"gte=0"`
}

type productBody struct {
	Name     string        `json:"name" validate:"max=20"`
	Variants []variantBody `json:"variants" validate:"dive"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Galaxy","variants":[{"ram":"8GB","price":"499.99","qty":3}]}`))
	var body productBody
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, "Galaxy", body.Name)
	require.Len(t, body.Variants, 1)
	assert.True(t, body.Variants[0].Price.Equal(decimal.RequireFromString("499.99")))
}

func TestDecodeJSONBodyReportsNestedFieldPaths(t *testing.T) {
	payload := `{"name":"Galaxy","variants":[{"ram":"8GB","price":-1,"qty":-2},{"ram":"` + strings.Repeat("x", 51) + `","price":1,"qty":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	var body productBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "variants[1].ram")
	assert.Contains(t, details, "variants[0].qty")
}

func TestDecodeJSONBodyErrors(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"malformed":  `{"name":`,
		"unknown":    `{"name":"x","colour":"red"}`,
		"too long":   `{"name":"` + strings.Repeat("a", 21) + `"}`,
		"trailing":   `{"name":"x"}{"name":"y"}`,
		"wrong type": `{"name":5}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
			var body productBody
			err := DecodeJSONBody(req, &body)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestDecodeJSONBodyNamesUnknownField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","colour":"red"}`))
	var body productBody
	typed := pkgerrors.As(DecodeJSONBody(req, &body))
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{"colour": "is not allowed"}, typed.Details())
}

func TestQueryPositiveIntFallsBack(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc&zero=0&neg=-2&big=1000", nil)

	assert.Equal(t, 3, QueryPositiveInt(req, "page", 1))
	assert.Equal(t, 7, QueryPositiveInt(req, "missing", 7))
	assert.Equal(t, 10, QueryPositiveInt(req, "limit", 10))
	assert.Equal(t, 1, QueryPositiveInt(req, "zero", 1))
	assert.Equal(t, 1, QueryPositiveInt(req, "neg", 1))
	assert.Equal(t, 1000, QueryPositiveInt(req, "big", 10))
}

func TestQueryStringTrimsAndCaps(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?search=%20%20phone%20%20", nil)
	assert.Equal(t, "phone", QueryString(req, "search", 100))
	assert.Equal(t, "ph", QueryString(req, "search", 2))
}

func TestSanitizeStringKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "caf", SanitizeString("café", 4))
	assert.Equal(t, "café", SanitizeString("café", 5))
	assert.Equal(t, "ab", SanitizeString("a\x00b\n", 0))
}

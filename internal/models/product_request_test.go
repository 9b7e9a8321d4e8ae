package models_test

import (
	"encoding/json"
	"testing"

	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) models.ProductRequest {
	t.Helper()
	var req models.ProductRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestProductRequest_DecodesWellTypedBody(t *testing.T) {
	req := decode(t, `{"name":"Widget","price":9.99,"description":"blue","image":"http://x/i.png","version":3}`)

	require.NotNil(t, req.Name)
	require.NotNil(t, req.Price)
	require.NotNil(t, req.Image)
	require.NotNil(t, req.Version)
	assert.Equal(t, "Widget", *req.Name)
	assert.Equal(t, 9.99, *req.Price)
	assert.Equal(t, "blue", req.Description)
	assert.Equal(t, "http://x/i.png", *req.Image)
	assert.Equal(t, 3, *req.Version)
}

func TestProductRequest_NumericStringPrice(t *testing.T) {
	req := decode(t, `{"price":" 12.50 "}`)
	require.NotNil(t, req.Price)
	assert.Equal(t, 12.5, *req.Price)
}

func TestProductRequest_UnusablePriceIsMissing(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"price":null}`,
		`{"price":"abc"}`,
		`{"price":""}`,
		`{"price":"NaN"}`,
		`{"price":"Infinity"}`,
		`{"price":true}`,
		`{"price":"0x10"}`,
		`{"price":[1]}`,
	} {
		t.Run(body, func(t *testing.T) {
			assert.Nil(t, decode(t, body).Price)
		})
	}
}

func TestProductRequest_WrongTypedTextIsMissing(t *testing.T) {
	req := decode(t, `{"name":42,"image":{"url":"x"}}`)
	assert.Nil(t, req.Name)
	assert.Nil(t, req.Image)
}

func TestProductRequest_Description(t *testing.T) {
	assert.Equal(t, "", decode(t, `{}`).Description)
	assert.Equal(t, "", decode(t, `{"description":null}`).Description)
	assert.Equal(t, "42", decode(t, `{"description":42}`).Description)
}

func TestProductRequest_RejectsMalformedJSON(t *testing.T) {
	var req models.ProductRequest
	assert.Error(t, json.Unmarshal([]byte(`{"name":`), &req))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &req))
}

package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ProductRequest is the body of a create or update call.
//
// Fields are decoded leniently: a field of the wrong JSON type is left nil
// so the validator reports it as missing instead of the whole body failing
// to decode. Price accepts a JSON number or a numeric string.
type ProductRequest struct {
	Name        *string  `validate:"required,notblank"`
	Price       *float64 `validate:"required,gt=0"`
	Description string
	Image       *string `validate:"required,notblank"`
	Version     *int
}

type rawProductRequest struct {
	Name        json.RawMessage `json:"name"`
	Price       json.RawMessage `json:"price"`
	Description json.RawMessage `json:"description"`
	Image       json.RawMessage `json:"image"`
	Version     json.RawMessage `json:"version"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ProductRequest) UnmarshalJSON(data []byte) error {
	var raw rawProductRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ProductRequest{
		Name:        decodeString(raw.Name),
		Price:       decodePrice(raw.Price),
		Description: decodeText(raw.Description),
		Image:       decodeString(raw.Image),
		Version:     decodeVersion(raw.Version),
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeString(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func decodeText(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	if s := decodeString(raw); s != nil {
		return *s
	}
	return string(bytes.TrimSpace(raw))
}

func decodePrice(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		s := decodeString(raw)
		if s == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*s)
		if trimmed == "" {
			return nil
		}
		f, err = strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func decodeVersion(raw json.RawMessage) *int {
	if isNull(raw) {
		return nil
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

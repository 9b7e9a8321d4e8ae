// Package validation gates product write requests before they reach the store.
package validation

import (
	"errors"
	"strings"

	"catalog/internal/apperr"
	"catalog/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	MsgName  = "Name is required and must be a non-empty string."
	MsgPrice = "Price is required and must be a valid positive number."
	MsgImage = "Image is required and must be a non-empty string."
)

// fieldMessages maps a ProductRequest field to the violation reported for it.
var fieldMessages = map[string]string{
	"Name":  MsgName,
	"Price": MsgPrice,
	"Image": MsgImage,
}

// ProductValidator checks create and update payloads.
type ProductValidator struct {
	validate *validator.Validate
}

// NewProductValidator creates a ProductValidator.
func NewProductValidator() *ProductValidator {
	v := validator.New()
	// Registration only fails for an empty tag name or nil func.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &ProductValidator{validate: v}
}

// Validate returns nil when req may proceed, or an apperr.Validation error
// listing every violation in name, price, image order.
func (v *ProductValidator) Validate(req models.ProductRequest) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	failed := make(map[string]bool, len(validationErrors))
	for _, e := range validationErrors {
		failed[e.StructField()] = true
	}
	var messages []string
	for _, field := range []string{"Name", "Price", "Image"} {
		if failed[field] {
			messages = append(messages, fieldMessages[field])
		}
	}
	return apperr.NewValidation(messages...)
}

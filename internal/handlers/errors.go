package handlers

import (
	"catalog/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	msgValidation  = "Validation error"
	msgInvalidBody = "Invalid request body"
	msgNotFound    = "Product not found"
	msgConflict    = "Product was modified by another request"
	msgInternal    = "Internal server error"
	msgDeleted     = "Product deleted successfully"
)

// writeError converts a service error into its HTTP status and body. Causes
// of internal failures are logged and never sent to the client.
func writeError(c *fiber.Ctx, log logrus.FieldLogger, op string, err error) error {
	switch apperr.KindOf(err) {
	case apperr.Validation:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": msgValidation,
			"errors":  apperr.MessagesOf(err),
		})
	case apperr.NotFound, apperr.InvalidID:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": msgNotFound,
		})
	case apperr.Conflict:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": msgConflict,
		})
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"op":         op,
			"product_id": c.Params("id"),
		}).Error("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": msgInternal,
		})
	}
}

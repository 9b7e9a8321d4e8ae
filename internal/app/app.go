// Package app assembles the HTTP application from already constructed dependencies.
package app

import (
	"errors"
	"time"

	"catalog/internal/handlers"
	"catalog/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Products      handlers.ProductService
	Store         handlers.Pinger
	Log           logrus.FieldLogger
	APIPrefix     string
	HealthTimeout time.Duration
}

// New builds the fiber app with middleware and every route registered.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "catalog",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(deps.Log),
	})

	app.Use(middleware.RequestLogger(deps.Log))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			deps.Log.WithField("panic", e).Error("recovered from panic")
		},
	}))

	handlers.NewHealthHandler(deps.Store, deps.HealthTimeout, deps.Log).RegisterRoutes(app)

	var api fiber.Router = app
	if deps.APIPrefix != "" {
		api = app.Group(deps.APIPrefix)
	}
	handlers.NewProductHandler(deps.Products, deps.Log).RegisterRoutes(api)

	return app
}

// errorHandler renders errors that escape a handler, such as unknown
// routes or recovered panics, as JSON.
func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
		}
		log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}

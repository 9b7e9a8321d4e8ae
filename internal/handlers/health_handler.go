package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	store   Pinger
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store Pinger, timeout time.Duration, log logrus.FieldLogger) *HealthHandler {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &HealthHandler{store: store, timeout: timeout, log: log}
}

// RegisterRoutes registers "/" and "/health" on router.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleRoot)
	router.Get("/health", h.HandleHealth)
}

// HandleRoot answers a plain-text liveness probe.
func (h *HealthHandler) HandleRoot(c *fiber.Ctx) error {
	return c.SendString("API is running")
}

// HandleHealth reports healthy only when the store answers a ping.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	status, code, store := "healthy", fiber.StatusOK, "connected"
	if err := h.store.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("health check: store unreachable")
		status, code, store = "unhealthy", fiber.StatusServiceUnavailable, "unreachable"
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"store":  store,
		"time":   time.Now().Format(time.RFC3339),
	})
}

package handlers

import (
	"context"

	"catalog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ProductService is the store API the handler drives.
type ProductService interface {
	GetAllProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, req models.ProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, req models.ProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) (*models.Product, error)
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service ProductService
	log     logrus.FieldLogger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service ProductService, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the product routes on router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts returns every product.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return writeError(c, h.log, "get all products", err)
	}
	return c.Status(fiber.StatusOK).JSON(products)
}

// HandleGetProductByID returns a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, "get product", err)
	}
	return c.Status(fiber.StatusOK).JSON(product)
}

// HandleCreateProduct validates and stores a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	req, ok, err := h.parseRequest(c)
	if !ok {
		return err
	}
	created, err := h.service.CreateProduct(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.log, "create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateProduct replaces an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	req, ok, err := h.parseRequest(c)
	if !ok {
		return err
	}
	updated, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return writeError(c, h.log, "update product", err)
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

// HandleDeleteProduct removes a product and echoes what was removed.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	deleted, err := h.service.DeleteProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, "delete product", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":        msgDeleted,
		"deletedProduct": deleted,
	})
}

// parseRequest decodes the JSON body. A body that is empty or not sent as
// JSON decodes to an empty request and is left to validation. When ok is
// false the 400 response has already been written and err is what the
// handler should return.
func (h *ProductHandler) parseRequest(c *fiber.Ctx) (req models.ProductRequest, ok bool, err error) {
	if len(c.Body()) == 0 || !c.Is("json") {
		return req, true, nil
	}
	if err := c.BodyParser(&req); err != nil {
		h.log.WithError(err).Debug("error parsing product request body")
		return req, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": msgInvalidBody,
			"errors":  []string{err.Error()},
		})
	}
	return req, true, nil
}

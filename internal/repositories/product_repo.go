package repositories

import (
	"context"

	"catalog/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// Implementations report missing records as apperr.NotFound, version
// mismatches as apperr.Conflict and every other storage failure as
// apperr.Persistence.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update replaces the stored record with the same ID, but only while
	// the stored version still equals matchVersion.
	Update(ctx context.Context, product *models.Product, matchVersion int) error
	Delete(ctx context.Context, id string) (*models.Product, error)
	Ping(ctx context.Context) error
}

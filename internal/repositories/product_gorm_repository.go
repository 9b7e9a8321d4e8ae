package repositories

import (
	"context"
	"errors"
	"fmt"

	"catalog/internal/apperr"
	"catalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products in insertion order.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0)
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&products).Error; err != nil {
		return nil, apperr.NewPersistence("get all products", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("get product", id)
		}
		return nil, apperr.NewPersistence("get product", fmt.Errorf("failed to get product by ID %s: %w", id, err))
	}
	return &product, nil
}

// Create inserts a new product, assigning an ID when none is set.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return apperr.NewPersistence("create product", err)
	}
	return nil
}

// Update replaces every mutable column of an existing product whose stored
// version is still matchVersion.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product, matchVersion int) error {
	db := r.db.WithContext(ctx)
	query := db.Model(&models.Product{}).Where("id = ? AND version = ?", product.ID, matchVersion)
	// A map so that an empty description is written rather than skipped.
	res := query.Updates(map[string]any{
		"name":        product.Name,
		"price":       product.Price,
		"description": product.Description,
		"image":       product.Image,
		"version":     product.Version,
		"updated_at":  product.UpdatedAt,
	})
	if res.Error != nil {
		return apperr.NewPersistence("update product", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Nothing matched: either the row is gone or its version moved on.
	var current models.Product
	if err := db.Select("id", "version").First(&current, "id = ?", product.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NewNotFound("update product", product.ID)
		}
		return apperr.NewPersistence("update product", err)
	}
	if current.Version != matchVersion {
		return apperr.NewConflict("update product", product.ID, matchVersion, current.Version)
	}
	return nil
}

// Delete removes a product and returns the removed record.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	var deleted models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, "id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("delete product", id)
		}
		return nil, apperr.NewPersistence("delete product", fmt.Errorf("failed to delete product %s: %w", id, err))
	}
	return &deleted, nil
}

// Ping checks that the underlying connection is usable.
func (r *GORMProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return apperr.NewPersistence("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperr.NewPersistence("ping", err)
	}
	return nil
}

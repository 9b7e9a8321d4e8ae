package services

import (
	"context"
	"sync"
	"time"

	"catalog/internal/apperr"
	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Validator checks a write payload before it reaches the store.
type Validator interface {
	Validate(req models.ProductRequest) error
}

// EventPublisher announces successful product writes.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event models.ProductEvent) error
}

// ProductCache caches single product reads.
type ProductCache interface {
	Get(ctx context.Context, id string) (*models.Product, bool, error)
	Set(ctx context.Context, product *models.Product) error
	Invalidate(ctx context.Context, id string) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	validator Validator
	publisher EventPublisher
	cache     ProductCache
	log       logrus.FieldLogger
	now       func() time.Time

	mu       sync.Mutex
	lastTime time.Time
}

// Option configures optional ProductService collaborators.
type Option func(*ProductService)

// WithEventPublisher publishes a change event after every successful write.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *ProductService) { s.publisher = p }
}

// WithCache serves GetProductByID from c and invalidates it on writes.
func WithCache(c ProductCache) Option {
	return func(s *ProductService) { s.cache = c }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *ProductService) { s.now = now }
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, validator Validator, log logrus.FieldLogger, opts ...Option) *ProductService {
	s := &ProductService{
		repo:      repo,
		validator: validator,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp returns the current time at the precision the store keeps,
// strictly after every timestamp this service handed out before.
func (s *ProductService) timestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now().UTC().Truncate(time.Microsecond)
	if !t.After(s.lastTime) {
		t = s.lastTime.Add(time.Microsecond)
	}
	s.lastTime = t
	return t
}

func parseID(op, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.NewInvalidID(op, id, err)
	}
	return nil
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	if err := parseID("get product", id); err != nil {
		return nil, err
	}
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.WithError(err).WithField("product_id", id).Warn("product cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, product); err != nil {
			s.log.WithError(err).WithField("product_id", id).Warn("product cache write failed")
		}
	}
	return product, nil
}

// CreateProduct validates req and stores it as a new product.
func (s *ProductService) CreateProduct(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.timestamp()
	product := &models.Product{
		Name:        *req.Name,
		Price:       *req.Price,
		Description: req.Description,
		Image:       *req.Image,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventProductCreated, product)
	return product, nil
}

// maxUpdateAttempts bounds how often an update without a version re-reads
// the product after losing a race with another writer.
const maxUpdateAttempts = 5

// UpdateProduct replaces the name, price, description and image of an
// existing product. When req carries a version the write only succeeds if
// it matches the stored one; otherwise the last writer wins.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req models.ProductRequest) (*models.Product, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := parseID("update product", id); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		updated, err := s.replace(ctx, id, req)
		if err == nil {
			s.invalidate(ctx, id)
			s.publish(ctx, models.EventProductUpdated, updated)
			return updated, nil
		}
		if apperr.KindOf(err) != apperr.Conflict || req.Version != nil || attempt >= maxUpdateAttempts {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{
			"product_id": id,
			"attempt":    attempt,
		}).Debug("concurrent update, retrying")
	}
}

// replace performs one read-modify-write of the product. The write is
// conditional on the version that was read.
func (s *ProductService) replace(ctx context.Context, id string, req models.ProductRequest) (*models.Product, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != existing.Version {
		return nil, apperr.NewConflict("update product", id, *req.Version, existing.Version)
	}

	updatedAt := s.timestamp()
	if !updatedAt.After(existing.UpdatedAt) {
		updatedAt = existing.UpdatedAt.Add(time.Microsecond)
	}
	updated := &models.Product{
		ID:          existing.ID,
		Name:        *req.Name,
		Price:       *req.Price,
		Description: req.Description,
		Image:       *req.Image,
		Version:     existing.Version + 1,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   updatedAt,
	}
	if err := s.repo.Update(ctx, updated, existing.Version); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProduct removes a product and returns what was removed.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	if err := parseID("delete product", id); err != nil {
		return nil, err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.publish(ctx, models.EventProductDeleted, deleted)
	return deleted, nil
}

// Ping reports whether the store is reachable.
func (s *ProductService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.WithError(err).WithField("product_id", id).Warn("product cache invalidation failed")
	}
}

// publish never fails the write that triggered it.
func (s *ProductService) publish(ctx context.Context, eventType string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := models.ProductEvent{
		Type:       eventType,
		ProductID:  product.ID,
		Product:    *product,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishProductEvent(ctx, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"type":       eventType,
			"product_id": product.ID,
		}).Warn("failed to publish product event")
	}
}

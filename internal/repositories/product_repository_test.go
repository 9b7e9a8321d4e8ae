package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"catalog/internal/apperr"
	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// repositoryFactories lets every contract test run against each implementation.
var repositoryFactories = map[string]func(t *testing.T) repositories.ProductRepository{
	"gorm-sqlite": func(t *testing.T) repositories.ProductRepository {
		return repositories.NewGORMProductRepository(newSQLiteDB(t))
	},
	"memory": func(t *testing.T) repositories.ProductRepository {
		return repositories.NewMemoryProductRepository()
	},
}

func forEachRepository(t *testing.T, fn func(t *testing.T, repo repositories.ProductRepository)) {
	for name, factory := range repositoryFactories {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func newProduct(name string, at time.Time) *models.Product {
	return &models.Product{
		Name:        name,
		Price:       10.5,
		Description: "desc " + name,
		Image:       "http://img/" + name + ".png",
		Version:     1,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestProductRepository_CreateAndGet(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.ProductRepository) {
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Microsecond)
		p := newProduct("Laptop", now)

		require.NoError(t, repo.Create(ctx, p))
		_, err := uuid.Parse(p.ID)
		assert.NoError(t, err, "assigned ID should be a UUID")

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Name, got.Name)
		assert.Equal(t, p.Price, got.Price)
		assert.Equal(t, p.Description, got.Description)
		assert.Equal(t, p.Image, got.Image)
		assert.Equal(t, 1, got.Version)
		assert.True(t, got.CreatedAt.Equal(now))
		assert.True(t, got.UpdatedAt.Equal(now))
	})
}

func TestProductRepository_GetAllInsertionOrder(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.ProductRepository) {
		ctx := context.Background()

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)

		base := time.Now().UTC().Truncate(time.Microsecond)
		names := []string{"first", "second", "third"}
		for i, name := range names {
			require.NoError(t, repo.Create(ctx, newProduct(name, base.Add(time.Duration(i)*time.Millisecond))))
		}

		all, err = repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		for i, name := range names {
			assert.Equal(t, name, all[i].Name)
		}
	})
}

func TestProductRepository_Update(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.ProductRepository) {
		ctx := context.Background()
		created := time.Now().UTC().Truncate(time.Microsecond)
		p := newProduct("Mouse", created)
		require.NoError(t, repo.Create(ctx, p))

		later := created.Add(time.Second)
		replacement := &models.Product{
			ID:        p.ID,
			Name:      "Wireless Mouse",
			Price:     30,
			Image:     "http://img/new.png",
			Version:   2,
			CreatedAt: created,
			UpdatedAt: later,
		}
		require.NoError(t, repo.Update(ctx, replacement, 1))

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Wireless Mouse", got.Name)
		assert.Equal(t, 30.0, got.Price)
		assert.Equal(t, "", got.Description, "full replace clears the description")
		assert.Equal(t, 2, got.Version)
		assert.True(t, got.CreatedAt.Equal(created))
		assert.True(t, got.UpdatedAt.Equal(later))
	})
}

func TestProductRepository_UpdateVersionMatch(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.ProductRepository) {
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Microsecond)
		p := newProduct("Desk", now)
		require.NoError(t, repo.Create(ctx, p))

		stale := *p
		stale.Name = "Stale"
		stale.Version = 6
		err := repo.Update(ctx, &stale, 5)
		assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Desk", got.Name)

		fresh := *p
		fresh.Name = "Fresh"
		fresh.Version = 2
		require.NoError(t, repo.Update(ctx, &fresh, 1))
		got, err = repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Fresh", got.Name)

		// A second writer that read version 1 must not overwrite version 2.
		late := *p
		late.Name = "Late"
		late.Version = 2
		err = repo.Update(ctx, &late, 1)
		assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
		got, err = repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Fresh", got.Name)
		assert.Equal(t, 2, got.Version)
	})
}

func TestProductRepository_Delete(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.ProductRepository) {
		ctx := context.Background()
		p := newProduct("Chair", time.Now().UTC().Truncate(time.Microsecond))
		require.NoError(t, repo.Create(ctx, p))

		deleted, err := repo.Delete(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, deleted.ID)
		assert.Equal(t, "Chair", deleted.Name)

		_, err = repo.GetByID(ctx, p.ID)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

		_, err = repo.Delete(ctx, p.ID)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestProductRepository_NotFoundCases(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo repositories.ProductRepository) {
		ctx := context.Background()
		missing := uuid.NewString()

		_, err := repo.GetByID(ctx, missing)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

		err = repo.Update(ctx, &models.Product{ID: missing, Name: "x", Price: 1, Image: "y", Version: 2}, 1)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

		_, err = repo.Delete(ctx, missing)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	})
}

func TestGORMProductRepository_ClosedConnectionIsPersistenceError(t *testing.T) {
	db := newSQLiteDB(t)
	repo := repositories.NewGORMProductRepository(db)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	ctx := context.Background()
	_, err = repo.GetAll(ctx)
	assert.Equal(t, apperr.Persistence, apperr.KindOf(err))

	err = repo.Create(ctx, newProduct("x", time.Now()))
	assert.Equal(t, apperr.Persistence, apperr.KindOf(err))

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.Equal(t, apperr.Persistence, apperr.KindOf(err))

	assert.Equal(t, apperr.Persistence, apperr.KindOf(repo.Ping(ctx)))
}

func TestMemoryProductRepository_CancelledContext(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Create(ctx, newProduct("x", time.Now()))
	assert.Equal(t, apperr.Persistence, apperr.KindOf(err))
}

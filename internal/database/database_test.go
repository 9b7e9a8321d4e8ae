package database_test

import (
	"fmt"
	"io"
	"testing"
	"time"

	"catalog/internal/database"
	"catalog/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestOpen_SQLiteCreatesProductsTable(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open("sqlite", dsn, time.Second, quietLogger())
	require.NoError(t, err)
	defer database.Close(db)

	assert.True(t, db.Migrator().HasTable(&models.Product{}))
	assert.True(t, db.Migrator().HasColumn(&models.Product{}, "version"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open("mongo", "mongodb://localhost", time.Second, quietLogger())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpen_UnreachablePostgresFailsFast(t *testing.T) {
	start := time.Now()
	_, err := database.Open("postgres", "host=127.0.0.1 port=1 user=x dbname=x sslmode=disable connect_timeout=1", 2*time.Second, quietLogger())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}

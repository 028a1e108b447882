// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"election_portal/internal/config"
)

// DefaultSeed is the reference data every test database starts with:
// position 1 "President", position 2 "Governor", party 1 "Independent",
// party 2 "Green".
var DefaultSeed = config.SeedConfig{
	Positions: []string{"President", "Governor"},
	Parties:   []string{"Independent", "Green"},
}

// NewDB returns a migrated and seeded in-memory sqlite database private to t.
// It is closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := config.Open(config.DBConfig{Dialect: config.DialectSQLite, Path: dsn})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, config.Migrate(db))
	require.NoError(t, config.SeedReferenceData(db, DefaultSeed))
	return db
}

// Package dbtest opens throwaway SQLite databases for gorm-backed tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	drivedomain "family-drive-go/internal/domain/drive"
	familydomain "family-drive-go/internal/domain/family"
	userdomain "family-drive-go/internal/domain/user"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var counter atomic.Int64

// Open returns an in-memory database with every table of the service.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db := OpenEmpty(t)
	require.NoError(t, db.AutoMigrate(
		&userdomain.Profile{},
		&familydomain.Family{},
		&familydomain.FamilyMember{},
		&drivedomain.Folder{},
		&drivedomain.File{},
	))
	return db
}

// OpenEmpty returns an in-memory database without tables, for tests that
// bring their own schema.
func OpenEmpty(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, counter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

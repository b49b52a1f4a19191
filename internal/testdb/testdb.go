// Package testdb opens throwaway SQLite databases with the production schema for tests.
package testdb

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/repo"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

// Open returns a migrated in-memory database private to t. The pool is pinned to one
// connection so every goroutine sees the same in-memory database; concurrent transactions
// queue on that connection.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), pkgdb.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repo.Migrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// OpenFile returns a migrated database in a file under t.TempDir with a pool of several
// connections, so statements from different goroutines really interleave. Writers wait
// on the busy timeout; callers must still be ready for an occasional SQLITE_BUSY.
func OpenFile(t *testing.T, conns int) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "store.db") + "?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), pkgdb.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	sqlDB.SetMaxIdleConns(conns)

	require.NoError(t, repo.Migrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

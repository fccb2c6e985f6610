package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
)

// newTestDatabase opens a migrated SQLite file with foreign keys enforced
func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shopify.db")
	db, err := open(sqlite.Open(path+"?_foreign_keys=on"), zerolog.Nop())
	require.NoError(t, err)

	database := &Database{DB: db}
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })

	return database
}

// newMockDatabase wraps sqlmock in the Postgres dialector
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	db, err := open(dialector, zerolog.Nop())
	require.NoError(t, err)

	return &Database{DB: db}, mock, mockDB
}

func TestAutoMigrateIsRepeatable(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.AutoMigrate())

	for _, table := range []string{"shops", "orders", "webhook_events"} {
		require.True(t, db.DB.Migrator().HasTable(table), table)
	}
}

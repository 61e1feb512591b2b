package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/webrana-teammail-backend/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens a migrated in-memory SQLite database on a single connection
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func closeTestDB(db *gorm.DB) {
	if sqlDB, _ := db.DB(); sqlDB != nil {
		sqlDB.Close()
	}
}

func resetTables(db *gorm.DB) {
	for _, table := range []string{
		"email_labels", "attachments", "email_participants", "emails",
		"email_addresses", "domains", "integrations",
	} {
		db.Exec("DELETE FROM " + table)
	}
	db.Exec("DELETE FROM labels WHERE is_system = ?", false)
}

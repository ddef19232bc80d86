package testutil

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/skynet2/finance-reconciler/pkg/database"
)

// NewDB opens a private in-memory database with all migrations applied.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))

	return db
}

func NewBankAccount(t *testing.T, db *gorm.DB) *database.BankAccount {
	t.Helper()

	acc := &database.BankAccount{
		ProviderAccountID: uuid.NewString(),
		DisplayName:       "Current account",
		Currency:          "GBP",
	}
	require.NoError(t, db.Create(acc).Error)

	return acc
}

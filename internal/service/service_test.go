package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pantrybook/backend/internal/model"
)

// setupTestDB opens a fresh in-memory sqlite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Recipe{}))
	return db
}

// createTestUser inserts a user row and returns its id.
func createTestUser(t *testing.T, db *gorm.DB) string {
	t.Helper()

	id := uuid.New().String()
	user := model.User{
		ID:           id,
		Email:        fmt.Sprintf("user+%s@example.com", id),
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "irrelevant",
	}
	require.NoError(t, db.Create(&user).Error)
	return id
}

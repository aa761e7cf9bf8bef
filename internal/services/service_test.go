// internal/services/service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/promptbazaar/promptbazaar-backend/internal/config"
	"github.com/promptbazaar/promptbazaar-backend/internal/database"
	"github.com/promptbazaar/promptbazaar-backend/internal/models"
)

// setupTestDB opens an in-memory sqlite database and runs the real
// migrations, partial unique index included. A single connection keeps every
// query on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Ledger: config.LedgerConfig{
			MinPromptPrice: 1,
			MaxPromptPrice: 10000,
			MinTipAmount:   1,
			LeaderboardTTL: 60,
		},
	}
}

// testAddress and testTxHash produce well-formed, distinct identifiers.
func testAddress(n int) string {
	return fmt.Sprintf("0x%040x", n)
}

func testTxHash(n int) string {
	return fmt.Sprintf("0x%064x", n)
}

func createTestPrompt(t *testing.T, db *gorm.DB, creator string, price int64) *models.Prompt {
	t.Helper()

	prompt := &models.Prompt{
		Title:        "Code Review Assistant",
		Description:  "Reviews pull requests for common mistakes",
		Content:      "You are a senior engineer reviewing a pull request...",
		Preview:      "You are a senior engineer...",
		SampleOutput: "The loop on line 12 leaks the ticker.",
		Category:     "Programming",
		Type:         models.PromptTypeClaude,
		Price:        price,
		Creator:      models.NormalizeAddress(creator),
		Tags:         models.StringList{"code", "review"},
		Status:       models.PromptStatusActive,
	}
	require.NoError(t, db.Create(prompt).Error)
	return prompt
}

func loadUser(t *testing.T, db *gorm.DB, address string) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, db.Where("address = ?", models.NormalizeAddress(address)).First(&user).Error)
	return &user
}

func loadPrompt(t *testing.T, db *gorm.DB, id interface{}) *models.Prompt {
	t.Helper()

	var prompt models.Prompt
	require.NoError(t, db.Where("id = ?", id).First(&prompt).Error)
	return &prompt
}

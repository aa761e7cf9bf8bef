// internal/services/common.go
package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/promptbazaar/promptbazaar-backend/internal/models"
)

// isDuplicateKeyErr detects unique-constraint violations across the postgres
// driver and the sqlite driver used in tests. Gorm translates most of these
// to ErrDuplicatedKey; the string checks cover driver versions that don't.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

// getOrCreateUser resolves a user by normalized address, creating a zeroed
// record on first reference. Safe to call inside a transaction; a concurrent
// create is absorbed by re-reading after a unique violation.
func getOrCreateUser(tx *gorm.DB, address string) (*models.User, error) {
	address = models.NormalizeAddress(address)

	var user models.User
	err := tx.Where("address = ?", address).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		Address:    address,
		JoinedDate: time.Now(),
		Reputation: models.ReputationBronze,
	}
	if err := tx.Create(&user).Error; err != nil {
		if isDuplicateKeyErr(err) {
			if retryErr := tx.Where("address = ?", address).First(&user).Error; retryErr == nil {
				return &user, nil
			}
		}
		return nil, err
	}
	return &user, nil
}

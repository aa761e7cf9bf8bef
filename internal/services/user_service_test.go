// internal/services/user_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptbazaar/promptbazaar-backend/internal/apperrors"
	"github.com/promptbazaar/promptbazaar-backend/internal/models"
	"github.com/promptbazaar/promptbazaar-backend/internal/utils"
)

func TestGetOrCreateUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	user, err := svc.GetOrCreateUser("0x00000000000000000000000000000000000000AB")
	require.NoError(t, err)
	assert.Equal(t, "0x00000000000000000000000000000000000000ab", user.Address)
	assert.Equal(t, models.ReputationBronze, user.Reputation)

	// A second resolution returns the same record.
	again, err := svc.GetOrCreateUser("0x00000000000000000000000000000000000000ab")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetUserByAddressNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	_, err := svc.GetUserByAddress(testAddress(1))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	address := testAddress(1)
	user, err := svc.UpdateProfile(address, &UpdateProfileRequest{
		Name:       "Prompt Smith",
		Bio:        "I write prompts",
		Categories: []string{"Programming", "Writing"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Prompt Smith", user.Name)
	assert.Equal(t, models.StringList{"Programming", "Writing"}, user.Categories)

	// Empty fields are left untouched.
	user, err = svc.UpdateProfile(address, &UpdateProfileRequest{Bio: "Updated bio"})
	require.NoError(t, err)
	assert.Equal(t, "Prompt Smith", user.Name)
	assert.Equal(t, "Updated bio", user.Bio)
}

func TestGetUserPurchases(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ledger := NewLedgerService(db, testConfig())

	buyer := testAddress(2)
	promptA := createTestPrompt(t, db, testAddress(1), 10)
	promptB := createTestPrompt(t, db, testAddress(1), 20)

	_, err := ledger.RecordPurchase(buyer, promptA.ID, testTxHash(1))
	require.NoError(t, err)
	_, err = ledger.RecordPurchase(buyer, promptB.ID, testTxHash(2))
	require.NoError(t, err)

	purchases, total, err := svc.GetUserPurchases(buyer, utils.PaginationParams{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, purchases, 2)
	require.NotNil(t, purchases[0].Prompt)
}

func TestGetUserTips(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ledger := NewLedgerService(db, testConfig())

	alice := testAddress(1)
	bob := testAddress(2)

	_, err := ledger.RecordTip(&RecordTipRequest{
		From: alice, To: bob, Amount: 10, TxHash: testTxHash(1),
	})
	require.NoError(t, err)
	_, err = ledger.RecordTip(&RecordTipRequest{
		From: bob, To: alice, Amount: 20, TxHash: testTxHash(2),
	})
	require.NoError(t, err)

	sent, total, err := svc.GetUserTips(alice, "sent", utils.PaginationParams{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, sent, 1)
	assert.Equal(t, int64(10), sent[0].Amount)

	received, total, err := svc.GetUserTips(alice, "received", utils.PaginationParams{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, received, 1)
	assert.Equal(t, int64(20), received[0].Amount)
}

func TestSearchUsers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	require.NoError(t, db.Create(&models.User{Address: testAddress(1), Name: "Prompt Smith"}).Error)
	require.NoError(t, db.Create(&models.User{Address: testAddress(2), Name: "Someone Else"}).Error)

	users, total, err := svc.SearchUsers("Smith", utils.PaginationParams{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "Prompt Smith", users[0].Name)
}

func TestConnect(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	cfg.JWT.SessionTTL = 24
	svc := NewAuthService(db, cfg)

	resp, err := svc.Connect(&ConnectRequest{Address: "0x00000000000000000000000000000000000000AB"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "0x00000000000000000000000000000000000000ab", resp.User.Address)

	claims, err := utils.ValidateSessionToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "0x00000000000000000000000000000000000000ab", claims.Address)
}

// internal/services/access_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptbazaar/promptbazaar-backend/internal/apperrors"
)

func TestGetPromptViewAnonymous(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db)

	prompt := createTestPrompt(t, db, testAddress(1), 100)

	view, err := svc.GetPromptView("", prompt.ID)
	require.NoError(t, err)

	assert.False(t, view.Owned)
	assert.Nil(t, view.Content)
	assert.Nil(t, view.SampleOutput)
	assert.NotEmpty(t, view.Preview)
	assert.Equal(t, prompt.Title, view.Title)

	// Anonymous fetches count as views.
	assert.Equal(t, int64(1), loadPrompt(t, db, prompt.ID).Stats.Views)
}

func TestGetPromptViewCreator(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db)

	creator := testAddress(1)
	prompt := createTestPrompt(t, db, creator, 100)

	view, err := svc.GetPromptView(creator, prompt.ID)
	require.NoError(t, err)

	assert.True(t, view.Owned)
	require.NotNil(t, view.Content)
	assert.Equal(t, prompt.Content, *view.Content)
	require.NotNil(t, view.SampleOutput)

	// Creators browsing their own work do not inflate the view counter.
	assert.Equal(t, int64(0), loadPrompt(t, db, prompt.ID).Stats.Views)
}

func TestGetPromptViewBuyer(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)
	ledger := NewLedgerService(db, testConfig())

	buyer := testAddress(2)
	prompt := createTestPrompt(t, db, testAddress(1), 100)

	// Before purchase the gated fields are withheld.
	view, err := access.GetPromptView(buyer, prompt.ID)
	require.NoError(t, err)
	assert.False(t, view.Owned)
	assert.Nil(t, view.Content)

	_, err = ledger.RecordPurchase(buyer, prompt.ID, testTxHash(1))
	require.NoError(t, err)

	view, err = access.GetPromptView(buyer, prompt.ID)
	require.NoError(t, err)
	assert.True(t, view.Owned)
	require.NotNil(t, view.Content)
	assert.Equal(t, prompt.Content, *view.Content)
}

func TestEntitlementRevokedByRefund(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)
	ledger := NewLedgerService(db, testConfig())

	buyer := testAddress(2)
	prompt := createTestPrompt(t, db, testAddress(1), 100)

	_, err := ledger.RecordPurchase(buyer, prompt.ID, testTxHash(1))
	require.NoError(t, err)

	entitled, err := access.CanViewFullContent(buyer, prompt.ID)
	require.NoError(t, err)
	assert.True(t, entitled)

	_, err = ledger.RefundPurchase(testTxHash(1))
	require.NoError(t, err)

	// Entitlement is re-evaluated per call, so the refund takes effect
	// immediately.
	entitled, err = access.CanViewFullContent(buyer, prompt.ID)
	require.NoError(t, err)
	assert.False(t, entitled)

	view, err := access.GetPromptView(buyer, prompt.ID)
	require.NoError(t, err)
	assert.False(t, view.Owned)
	assert.Nil(t, view.Content)
}

func TestCanViewFullContent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db)

	creator := testAddress(1)
	prompt := createTestPrompt(t, db, creator, 100)

	entitled, err := svc.CanViewFullContent(creator, prompt.ID)
	require.NoError(t, err)
	assert.True(t, entitled)

	entitled, err = svc.CanViewFullContent("", prompt.ID)
	require.NoError(t, err)
	assert.False(t, entitled)

	entitled, err = svc.CanViewFullContent(testAddress(5), prompt.ID)
	require.NoError(t, err)
	assert.False(t, entitled)
}

func TestGetPromptViewUnknownPrompt(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAccessService(db)

	_, err := svc.GetPromptView("", uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestHasPurchased(t *testing.T) {
	db := setupTestDB(t)
	access := NewAccessService(db)
	ledger := NewLedgerService(db, testConfig())

	creator := testAddress(1)
	buyer := testAddress(2)
	prompt := createTestPrompt(t, db, creator, 100)

	purchased, err := access.HasPurchased(buyer, prompt.ID)
	require.NoError(t, err)
	assert.False(t, purchased)

	_, err = ledger.RecordPurchase(buyer, prompt.ID, testTxHash(1))
	require.NoError(t, err)

	purchased, err = access.HasPurchased(buyer, prompt.ID)
	require.NoError(t, err)
	assert.True(t, purchased)

	// Ownership without a purchase does not count here.
	purchased, err = access.HasPurchased(creator, prompt.ID)
	require.NoError(t, err)
	assert.False(t, purchased)
}

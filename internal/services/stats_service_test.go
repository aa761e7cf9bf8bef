// internal/services/stats_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/promptbazaar/promptbazaar-backend/internal/apperrors"
	"github.com/promptbazaar/promptbazaar-backend/internal/cache"
	"github.com/promptbazaar/promptbazaar-backend/internal/models"
)

func newStatsService(db *gorm.DB) *StatsService {
	return NewStatsService(db, cache.NewDisabled(), testConfig())
}

// createSale inserts a completed purchase with a back-dated timestamp.
func createSale(t *testing.T, db *gorm.DB, prompt *models.Prompt, buyer string, amount int64, age time.Duration, hash string) {
	t.Helper()

	purchase := &models.Purchase{
		Buyer:    models.NormalizeAddress(buyer),
		Seller:   prompt.Creator,
		PromptID: prompt.ID,
		Amount:   amount,
		TxHash:   hash,
		Status:   models.PurchaseStatusCompleted,
	}
	purchase.CreatedAt = time.Now().Add(-age)
	require.NoError(t, db.Create(purchase).Error)
}

func TestGetSalesDashboard(t *testing.T) {
	db := setupTestDB(t)
	svc := newStatsService(db)

	creator := testAddress(1)
	prompt := createTestPrompt(t, db, creator, 100)

	day := 24 * time.Hour
	createSale(t, db, prompt, testAddress(2), 10, 1*day, testTxHash(1))
	createSale(t, db, prompt, testAddress(3), 20, 2*day, testTxHash(2))
	createSale(t, db, prompt, testAddress(4), 30, 3*day, testTxHash(3))
	createSale(t, db, prompt, testAddress(5), 100, 50*day, testTxHash(4))

	// A refunded purchase never contributes to earnings.
	refunded := &models.Purchase{
		Buyer:    testAddress(6),
		Seller:   prompt.Creator,
		PromptID: prompt.ID,
		Amount:   999,
		TxHash:   testTxHash(5),
		Status:   models.PurchaseStatusRefunded,
	}
	require.NoError(t, db.Create(refunded).Error)

	dashboard, err := svc.GetSalesDashboard(creator, "30d")
	require.NoError(t, err)

	// Only the three in-window sales count toward the windowed totals.
	assert.Equal(t, int64(60), dashboard.TotalEarnings)
	assert.Equal(t, int64(3), dashboard.TotalSales)

	// Recent sales and per-prompt earnings are lifetime figures.
	require.Len(t, dashboard.RecentSales, 4)
	assert.Equal(t, int64(10), dashboard.RecentSales[0].Amount)
	assert.Equal(t, prompt.Title, dashboard.RecentSales[0].PromptTitle)

	require.Len(t, dashboard.TopPrompts, 1)
	assert.Equal(t, int64(160), dashboard.TopPrompts[0].Earnings)

	// Monthly buckets are sparse, ascending, and sum to the lifetime totals.
	var bucketEarnings, bucketSales int64
	last := ""
	for _, bucket := range dashboard.MonthlyEarnings {
		assert.Greater(t, bucket.Month, last)
		last = bucket.Month
		bucketEarnings += bucket.Earnings
		bucketSales += bucket.Sales
	}
	assert.Equal(t, int64(160), bucketEarnings)
	assert.Equal(t, int64(4), bucketSales)
}

func TestGetSalesDashboardWindows(t *testing.T) {
	db := setupTestDB(t)
	svc := newStatsService(db)

	creator := testAddress(1)
	prompt := createTestPrompt(t, db, creator, 100)

	day := 24 * time.Hour
	createSale(t, db, prompt, testAddress(2), 10, 1*day, testTxHash(1))
	createSale(t, db, prompt, testAddress(3), 100, 50*day, testTxHash(2))

	wide, err := svc.GetSalesDashboard(creator, "90d")
	require.NoError(t, err)
	assert.Equal(t, int64(110), wide.TotalEarnings)
	assert.Equal(t, int64(2), wide.TotalSales)

	// An empty window falls back to the 30 day default.
	defaulted, err := svc.GetSalesDashboard(creator, "")
	require.NoError(t, err)
	assert.Equal(t, int64(10), defaulted.TotalEarnings)
	assert.Equal(t, int64(1), defaulted.TotalSales)

	_, err = svc.GetSalesDashboard(creator, "365d")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

func TestGetSalesDashboardEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc := newStatsService(db)

	dashboard, err := svc.GetSalesDashboard(testAddress(1), "30d")
	require.NoError(t, err)

	assert.Equal(t, int64(0), dashboard.TotalEarnings)
	assert.Equal(t, int64(0), dashboard.TotalSales)
	assert.Equal(t, int64(0), dashboard.TotalViews)
	assert.Equal(t, 0.0, dashboard.AvgRating)
	assert.Empty(t, dashboard.RecentSales)
	assert.Empty(t, dashboard.TopPrompts)
	assert.Empty(t, dashboard.MonthlyEarnings)
}

func TestReconcileUserStats(t *testing.T) {
	db := setupTestDB(t)
	svc := newStatsService(db)
	ledger := NewLedgerService(db, testConfig())
	social := NewSocialService(db)

	creator := testAddress(1)
	prompt := createTestPrompt(t, db, creator, 100)

	_, err := ledger.RecordPurchase(testAddress(2), prompt.ID, testTxHash(1))
	require.NoError(t, err)
	_, err = ledger.RecordTip(&RecordTipRequest{
		From:   testAddress(3),
		To:     creator,
		Amount: 25,
		TxHash: testTxHash(2),
	})
	require.NoError(t, err)
	require.NoError(t, social.Follow(testAddress(2), creator))
	require.NoError(t, social.Follow(creator, testAddress(3)))

	// Corrupt the denormalized block, then rebuild it from ground truth.
	require.NoError(t, db.Model(&models.User{}).Where("address = ?", creator).
		Updates(map[string]interface{}{
			"stats_prompts":         42,
			"stats_total_earnings":  0,
			"stats_total_purchases": 9,
			"stats_followers":       0,
			"stats_following":       0,
		}).Error)

	require.NoError(t, svc.ReconcileUserStats(creator))

	user := loadUser(t, db, creator)
	assert.Equal(t, 1, user.Stats.Prompts)
	assert.Equal(t, int64(125), user.Stats.TotalEarnings)
	assert.Equal(t, 0, user.Stats.TotalPurchases)
	assert.Equal(t, 1, user.Stats.Followers)
	assert.Equal(t, 1, user.Stats.Following)
}

func TestGetTopCreators(t *testing.T) {
	db := setupTestDB(t)
	svc := newStatsService(db)

	for i, earnings := range []int64{50, 200, 100} {
		user := &models.User{
			Address: testAddress(i + 1),
			Stats:   models.UserStats{TotalEarnings: earnings},
		}
		require.NoError(t, db.Create(user).Error)
	}

	top, err := svc.GetTopCreators(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, testAddress(2), top[0].Address)
	assert.Equal(t, testAddress(3), top[1].Address)
}

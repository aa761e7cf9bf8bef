// internal/services/stats_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/promptbazaar/promptbazaar-backend/internal/apperrors"
	"github.com/promptbazaar/promptbazaar-backend/internal/cache"
	"github.com/promptbazaar/promptbazaar-backend/internal/config"
	"github.com/promptbazaar/promptbazaar-backend/internal/models"
)

// StatsService derives dashboards and leaderboards from the entity store. It
// only reads ledger state; the one write path (ReconcileUserStats) rebuilds a
// user's denormalized stat block from the ground truth and is meant for batch
// use, not the request hot path.
type StatsService struct {
	db     *gorm.DB
	cache  *cache.Cache
	config *config.Config
}

func NewStatsService(db *gorm.DB, cache *cache.Cache, config *config.Config) *StatsService {
	return &StatsService{
		db:     db,
		cache:  cache,
		config: config,
	}
}

type SalesDashboard struct {
	TotalEarnings   int64            `json:"totalEarnings"`
	TotalSales      int64            `json:"totalSales"`
	TotalViews      int64            `json:"totalViews"`
	AvgRating       float64          `json:"avgRating"`
	RecentSales     []RecentSale     `json:"recentSales"`
	TopPrompts      []TopPrompt      `json:"topPrompts"`
	MonthlyEarnings []MonthlyEarning `json:"monthlyEarnings"`
}

type RecentSale struct {
	Buyer       string    `json:"buyer"`
	PromptID    string    `json:"prompt_id"`
	PromptTitle string    `json:"prompt_title"`
	PromptPrice int64     `json:"prompt_price"`
	Amount      int64     `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

type TopPrompt struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Price     int64   `json:"price"`
	Purchases int     `json:"purchases"`
	Rating    float64 `json:"rating"`
	Earnings  int64   `json:"earnings"`
}

// MonthlyEarning is one sparse (year, month) bucket; months without sales are
// omitted.
type MonthlyEarning struct {
	Month    string `json:"month"` // YYYY-MM
	Earnings int64  `json:"earnings"`
	Sales    int64  `json:"sales"`
}

var windowDays = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
}

// GetSalesDashboard aggregates a creator's completed sales. Windowed figures
// cover the trailing window; views, ratings, and per-prompt earnings are
// lifetime. All sums are exact integer token units and empty result sets
// yield zeros.
func (s *StatsService) GetSalesDashboard(creator, window string) (*SalesDashboard, error) {
	creator = models.NormalizeAddress(creator)

	if window == "" {
		window = "30d"
	}
	days, ok := windowDays[window]
	if !ok {
		return nil, apperrors.InvalidInput("window must be one of 7d, 30d, 90d")
	}

	now := time.Now()
	startDate := now.AddDate(0, 0, -days)

	dashboard := &SalesDashboard{
		RecentSales:     []RecentSale{},
		TopPrompts:      []TopPrompt{},
		MonthlyEarnings: []MonthlyEarning{},
	}

	// Windowed totals from the ledger, computed in one aggregate query so a
	// concurrent purchase is either fully counted or not at all.
	var windowed struct {
		TotalEarnings int64
		TotalSales    int64
	}
	if err := s.db.Model(&models.Purchase{}).
		Select("COALESCE(SUM(amount), 0) AS total_earnings, COUNT(*) AS total_sales").
		Where("seller = ? AND status = ? AND created_at >= ?", creator, models.PurchaseStatusCompleted, startDate).
		Scan(&windowed).Error; err != nil {
		return nil, apperrors.Storage(err, "failed to aggregate sales")
	}
	dashboard.TotalEarnings = windowed.TotalEarnings
	dashboard.TotalSales = windowed.TotalSales

	// Lifetime view/rating figures from the creator's prompts.
	var promptStats struct {
		TotalViews int64
		AvgRating  float64
	}
	if err := s.db.Model(&models.Prompt{}).
		Select("COALESCE(SUM(stats_views), 0) AS total_views, COALESCE(AVG(stats_rating), 0) AS avg_rating").
		Where("creator = ?", creator).
		Scan(&promptStats).Error; err != nil {
		return nil, apperrors.Storage(err, "failed to aggregate prompt stats")
	}
	dashboard.TotalViews = promptStats.TotalViews
	dashboard.AvgRating = promptStats.AvgRating

	// Ten most recent completed sales joined with current prompt metadata.
	var recent []models.Purchase
	if err := s.db.Preload("Prompt").
		Where("seller = ? AND status = ?", creator, models.PurchaseStatusCompleted).
		Order("created_at DESC").Limit(10).
		Find(&recent).Error; err != nil {
		return nil, apperrors.Storage(err, "failed to load recent sales")
	}
	for _, p := range recent {
		sale := RecentSale{
			Buyer:     p.Buyer,
			PromptID:  p.PromptID.String(),
			Amount:    p.Amount,
			CreatedAt: p.CreatedAt,
		}
		if p.Prompt != nil {
			sale.PromptTitle = p.Prompt.Title
			sale.PromptPrice = p.Prompt.Price
		}
		dashboard.RecentSales = append(dashboard.RecentSales, sale)
	}

	// Top prompts by purchase count, each with lifetime earnings regardless
	// of the window.
	var topPrompts []models.Prompt
	if err := s.db.Where("creator = ?", creator).
		Order("stats_purchases DESC").Limit(10).
		Find(&topPrompts).Error; err != nil {
		return nil, apperrors.Storage(err, "failed to load top prompts")
	}
	for _, prompt := range topPrompts {
		var earnings int64
		if err := s.db.Model(&models.Purchase{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("prompt_id = ? AND status = ?", prompt.ID, models.PurchaseStatusCompleted).
			Scan(&earnings).Error; err != nil {
			return nil, apperrors.Storage(err, "failed to aggregate prompt earnings")
		}
		dashboard.TopPrompts = append(dashboard.TopPrompts, TopPrompt{
			ID:        prompt.ID.String(),
			Title:     prompt.Title,
			Price:     prompt.Price,
			Purchases: prompt.Stats.Purchases,
			Rating:    prompt.Stats.Rating,
			Earnings:  earnings,
		})
	}

	monthly, err := s.monthlyEarnings(creator, now)
	if err != nil {
		return nil, err
	}
	dashboard.MonthlyEarnings = monthly

	return dashboard, nil
}

// monthlyEarnings buckets the trailing six months of completed sales by
// calendar (year, month) in Go rather than SQL, keeping the query portable
// across postgres and the sqlite test driver.
func (s *StatsService) monthlyEarnings(creator string, now time.Time) ([]MonthlyEarning, error) {
	sixMonthsAgo := now.AddDate(0, -6, 0)

	var purchases []models.Purchase
	if err := s.db.Select("amount", "created_at").
		Where("seller = ? AND status = ? AND created_at >= ?", creator, models.PurchaseStatusCompleted, sixMonthsAgo).
		Order("created_at ASC").
		Find(&purchases).Error; err != nil {
		return nil, apperrors.Storage(err, "failed to load monthly sales")
	}

	buckets := []MonthlyEarning{}
	index := map[string]int{}
	for _, p := range purchases {
		month := p.CreatedAt.Format("2006-01")
		i, ok := index[month]
		if !ok {
			index[month] = len(buckets)
			buckets = append(buckets, MonthlyEarning{Month: month})
			i = len(buckets) - 1
		}
		buckets[i].Earnings += p.Amount
		buckets[i].Sales++
	}

	return buckets, nil
}

// ReconcileUserStats recomputes a user's denormalized stat block from the
// prompts, ledger, and follow graph. Intended for periodic batch repair.
func (s *StatsService) ReconcileUserStats(address string) error {
	address = models.NormalizeAddress(address)

	var promptStats struct {
		Prompts    int64
		TotalViews int64
		AvgRating  float64
	}
	if err := s.db.Model(&models.Prompt{}).
		Select("COUNT(*) AS prompts, COALESCE(SUM(stats_views), 0) AS total_views, COALESCE(AVG(stats_rating), 0) AS avg_rating").
		Where("creator = ?", address).
		Scan(&promptStats).Error; err != nil {
		return apperrors.Storage(err, "failed to aggregate prompts")
	}

	var totalEarnings int64
	if err := s.db.Model(&models.Purchase{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("seller = ? AND status = ?", address, models.PurchaseStatusCompleted).
		Scan(&totalEarnings).Error; err != nil {
		return apperrors.Storage(err, "failed to aggregate earnings")
	}

	var tipEarnings int64
	if err := s.db.Model(&models.Tip{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("to_address = ? AND status = ?", address, models.TipStatusCompleted).
		Scan(&tipEarnings).Error; err != nil {
		return apperrors.Storage(err, "failed to aggregate tips")
	}

	var totalPurchases int64
	if err := s.db.Model(&models.Purchase{}).
		Where("buyer = ? AND status = ?", address, models.PurchaseStatusCompleted).
		Count(&totalPurchases).Error; err != nil {
		return apperrors.Storage(err, "failed to count purchases")
	}

	var followers, following int64
	if err := s.db.Model(&models.Follow{}).Where("followee = ?", address).Count(&followers).Error; err != nil {
		return apperrors.Storage(err, "failed to count followers")
	}
	if err := s.db.Model(&models.Follow{}).Where("follower = ?", address).Count(&following).Error; err != nil {
		return apperrors.Storage(err, "failed to count following")
	}

	updates := map[string]interface{}{
		"stats_prompts":         promptStats.Prompts,
		"stats_total_views":     promptStats.TotalViews,
		"stats_avg_rating":      promptStats.AvgRating,
		"stats_total_earnings":  totalEarnings + tipEarnings,
		"stats_total_purchases": totalPurchases,
		"stats_followers":       followers,
		"stats_following":       following,
	}

	if err := s.db.Model(&models.User{}).Where("address = ?", address).
		Updates(updates).Error; err != nil {
		return apperrors.Storage(err, "failed to update user stats")
	}

	return nil
}

// GetTopCreators returns the leaderboard by total earnings, served
// cache-aside with a short TTL.
func (s *StatsService) GetTopCreators(ctx context.Context, limit int) ([]models.User, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var users []models.User
	key := fmt.Sprintf("leaderboard:creators:%d", limit)
	ttl := time.Duration(s.config.Ledger.LeaderboardTTL) * time.Second

	err := s.cache.Fetch(ctx, key, &users, ttl, func() error {
		return s.db.Order("stats_total_earnings DESC").Limit(limit).Find(&users).Error
	})
	if err != nil {
		return nil, apperrors.Storage(err, "failed to load leaderboard")
	}

	return users, nil
}

// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/promptbazaar/promptbazaar-backend/internal/cache"
	"github.com/promptbazaar/promptbazaar-backend/internal/config"
	"github.com/promptbazaar/promptbazaar-backend/internal/handlers"
	"github.com/promptbazaar/promptbazaar-backend/internal/middleware"
	"github.com/promptbazaar/promptbazaar-backend/internal/services"
	"github.com/promptbazaar/promptbazaar-backend/internal/utils"
)

func Initialize(db *gorm.DB, cacheClient *cache.Cache, cfg *config.Config) *gin.Engine {
	// Initialize services
	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	promptService := services.NewPromptService(db, cacheClient, cfg)
	ledgerService := services.NewLedgerService(db, cfg)
	accessService := services.NewAccessService(db)
	socialService := services.NewSocialService(db)
	statsService := services.NewStatsService(db, cacheClient, cfg)
	reviewService := services.NewReviewService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	promptHandler := handlers.NewPromptHandler(promptService, accessService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	userHandler := handlers.NewUserHandler(userService, socialService, statsService, promptService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey, cfg.JWT.Issuer)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/connect", authHandler.Connect)
		}

		prompts := v1.Group("/prompts")
		{
			prompts.GET("", promptHandler.ListPrompts)
			prompts.GET("/search", promptHandler.ListPrompts)
			prompts.GET("/trending", promptHandler.GetTrendingPrompts)
			prompts.GET("/:id", middleware.OptionalAuth(), promptHandler.GetPrompt)
			prompts.GET("/:id/reviews", reviewHandler.GetPromptReviews)

			protected := prompts.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", promptHandler.CreatePrompt)
				protected.PUT("/:id/status", promptHandler.SetStatus)
				protected.GET("/:id/purchase-status", promptHandler.GetPurchaseStatus)
				protected.POST("/:id/purchase", middleware.LedgerRateLimit(), ledgerHandler.RecordPurchase)
				protected.POST("/:id/reviews", middleware.LedgerRateLimit(), reviewHandler.AddReview)
				protected.POST("/:id/heart", promptHandler.HeartPrompt)
			}
		}

		v1.POST("/tips", middleware.AuthRequired(), middleware.LedgerRateLimit(), ledgerHandler.RecordTip)
		v1.POST("/reviews/:id/helpful", reviewHandler.MarkHelpful)

		users := v1.Group("/users")
		{
			users.GET("/search", userHandler.SearchUsers)
			users.GET("/leaderboard", userHandler.GetLeaderboard)
			users.PUT("/profile", middleware.AuthRequired(), userHandler.UpdateProfile)
			users.GET("/:address", userHandler.GetUser)
			users.GET("/:address/creations", userHandler.GetUserCreations)
			users.GET("/:address/purchases", middleware.AuthRequired(), userHandler.GetUserPurchases)
			users.GET("/:address/tips", userHandler.GetUserTips)
			users.GET("/:address/sales", userHandler.GetSalesDashboard)
			users.GET("/:address/followers", userHandler.GetFollowers)
			users.GET("/:address/following", userHandler.GetFollowing)
			users.POST("/:address/follow", middleware.AuthRequired(), userHandler.Follow)
			users.DELETE("/:address/follow", middleware.AuthRequired(), userHandler.Unfollow)
		}
	}

	return r
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/geoscope/internal/api"
	"github.com/lalith-99/geoscope/internal/config"
	"github.com/lalith-99/geoscope/internal/db"
	"github.com/lalith-99/geoscope/internal/middleware"
	"github.com/lalith-99/geoscope/internal/observ"
	"github.com/lalith-99/geoscope/internal/repository/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// Startup has no parent deadline — take as long as needed to
	// connect. Per-request contexts take over once the server runs.
	database, err := db.New(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	// One pool, constructed here and injected everywhere. No
	// module-level singletons: every service takes its dependencies
	// through its constructor, which is also what makes the handler
	// tests possible without a database.
	pool := database.Pool()
	userRepo := postgres.NewUserStore(pool)
	keywordRepo := postgres.NewKeywordStore(pool)
	competitorRepo := postgres.NewCompetitorStore(pool)
	alertRuleRepo := postgres.NewAlertRuleStore(pool)
	analyticsRepo := postgres.NewAnalyticsStore(pool)

	authHandler := api.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.TokenTTL, logger)
	keywordHandler := api.NewKeywordHandler(keywordRepo, logger)
	dashboardHandler := api.NewDashboardHandler(analyticsRepo, logger)
	alertRuleHandler := api.NewAlertRuleHandler(alertRuleRepo, logger)
	competitorHandler := api.NewCompetitorHandler(competitorRepo, logger)
	healthHandler := api.NewHealthHandler(database, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gin.New()
	// Recovery is the final catch-all: a panicking handler becomes a
	// generic 500, never a crashed process.
	srv.Use(gin.Logger(), gin.Recovery())

	root := srv.Group("/api")

	// Public surface: health for load balancers, register/login to
	// obtain the token everything else requires.
	root.GET("/health", healthHandler.Check)
	authRoutes := root.Group("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)

	// Everything below passes the authentication gate.
	protected := root.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	protectedAuth := protected.Group("/auth")
	protectedAuth.GET("/profile", authHandler.Profile)
	protectedAuth.PUT("/password", authHandler.UpdatePassword)
	protectedAuth.GET("/verify", authHandler.Verify)
	protectedAuth.POST("/logout", authHandler.Logout)

	keywords := protected.Group("/keywords")
	keywords.GET("", keywordHandler.List)
	keywords.POST("", keywordHandler.Create)
	keywords.POST("/batch", keywordHandler.BatchCreate)
	keywords.PUT("/:id", keywordHandler.Update)
	keywords.DELETE("/batch", keywordHandler.BatchDelete)
	keywords.DELETE("/:id", keywordHandler.Delete)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/overview", dashboardHandler.Overview)
	dashboard.GET("/keyword-performance", dashboardHandler.KeywordPerformance)
	dashboard.GET("/competitor-analysis", dashboardHandler.CompetitorAnalysis)
	dashboard.GET("/recent-alerts", dashboardHandler.RecentAlerts)

	analytics := protected.Group("/analytics")
	analytics.GET("/share-of-voice", dashboardHandler.ShareOfVoice)

	settings := protected.Group("/settings")
	settings.GET("/alert-rules", alertRuleHandler.List)
	settings.POST("/alert-rules", alertRuleHandler.Create)
	settings.PUT("/alert-rules/:id", alertRuleHandler.Update)
	settings.PATCH("/alert-rules/:id/toggle", alertRuleHandler.Toggle)
	settings.DELETE("/alert-rules/:id", alertRuleHandler.Delete)

	// Competitors are global reference data: any principal may read,
	// only admins may mutate.
	competitors := protected.Group("/competitors")
	competitors.GET("", competitorHandler.List)
	adminCompetitors := competitors.Group("")
	adminCompetitors.Use(middleware.RequireAdmin())
	adminCompetitors.POST("", competitorHandler.Create)
	adminCompetitors.PUT("/:id", competitorHandler.Update)
	adminCompetitors.DELETE("/:id", competitorHandler.Delete)

	logger.Info("starting geoscope",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
	)

	if err := srv.Run(":" + cfg.Port); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	return nil
}

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/geoscope/internal/middleware"
	"github.com/lalith-99/geoscope/internal/repository"
)

// DashboardHandler serves the read-only aggregation endpoints. All of
// them are deterministic functions of (authenticated user, window).
type DashboardHandler struct {
	analytics repository.AnalyticsRepository
	logger    *zap.Logger
}

func NewDashboardHandler(analytics repository.AnalyticsRepository, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{analytics: analytics, logger: logger}
}

// queryLimit reads an optional positive integer query param, clamped
// to a ceiling.
func queryLimit(c *gin.Context, name string, def, max int) (int, bool) {
	value := def
	if raw := c.Query(name); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(c, http.StatusBadRequest, "invalid '"+name+"' parameter")
			return 0, false
		}
		value = parsed
	}
	if value > max {
		value = max
	}
	return value, true
}

// Overview handles GET /api/dashboard/overview — the counters block
// plus the 7-day ranking trend.
func (h *DashboardHandler) Overview(c *gin.Context) {
	userID := middleware.GetUserID(c)

	overview, err := h.analytics.Overview(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load overview", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load dashboard overview")
		return
	}

	trend, err := h.analytics.RankingTrend(c.Request.Context(), userID, 7)
	if err != nil {
		h.logger.Error("failed to load ranking trend", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load dashboard overview")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"overview":      overview,
		"ranking_trend": trend,
	})
}

// KeywordPerformance handles GET /api/dashboard/keyword-performance?limit=
func (h *DashboardHandler) KeywordPerformance(c *gin.Context) {
	limit, ok := queryLimit(c, "limit", 10, 100)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	performance, err := h.analytics.KeywordPerformance(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to load keyword performance", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load keyword performance")
		return
	}

	respondData(c, http.StatusOK, performance)
}

// CompetitorAnalysis handles GET /api/dashboard/competitor-analysis —
// top 5 competitors by mention count within the caller's results.
func (h *DashboardHandler) CompetitorAnalysis(c *gin.Context) {
	userID := middleware.GetUserID(c)

	stats, err := h.analytics.CompetitorAnalysis(c.Request.Context(), userID, 5)
	if err != nil {
		h.logger.Error("failed to load competitor analysis", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load competitor analysis")
		return
	}

	respondData(c, http.StatusOK, stats)
}

// RecentAlerts handles GET /api/dashboard/recent-alerts?limit=
func (h *DashboardHandler) RecentAlerts(c *gin.Context) {
	limit, ok := queryLimit(c, "limit", 5, 50)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	alerts, err := h.analytics.RecentAlerts(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to load recent alerts", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load recent alerts")
		return
	}

	respondData(c, http.StatusOK, alerts)
}

// ShareOfVoice handles GET /api/analytics/share-of-voice?days=
func (h *DashboardHandler) ShareOfVoice(c *gin.Context) {
	days, ok := queryLimit(c, "days", 30, 365)
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	sov, err := h.analytics.ShareOfVoice(c.Request.Context(), userID, days)
	if err != nil {
		h.logger.Error("failed to compute share of voice", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to compute share of voice")
		return
	}

	respondData(c, http.StatusOK, sov)
}

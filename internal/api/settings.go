package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lalith-99/geoscope/internal/apperrors"
	"github.com/lalith-99/geoscope/internal/middleware"
	"github.com/lalith-99/geoscope/internal/models"
	"github.com/lalith-99/geoscope/internal/repository"
)

// AlertRuleHandler handles tenant-scoped alert rule settings.
type AlertRuleHandler struct {
	repo   repository.AlertRuleRepository
	logger *zap.Logger
}

func NewAlertRuleHandler(repo repository.AlertRuleRepository, logger *zap.Logger) *AlertRuleHandler {
	return &AlertRuleHandler{repo: repo, logger: logger}
}

type alertRuleRequest struct {
	RuleName           string                    `json:"rule_name" binding:"required"`
	Conditions         models.AlertConditions    `json:"conditions" binding:"required"`
	NotificationConfig models.NotificationConfig `json:"notification_config"`
}

func (r alertRuleRequest) toInput() repository.AlertRuleInput {
	return repository.AlertRuleInput{
		RuleName:           r.RuleName,
		Conditions:         r.Conditions,
		NotificationConfig: r.NotificationConfig,
	}
}

// List handles GET /api/settings/alert-rules
func (h *AlertRuleHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	rules, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list alert rules", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to list alert rules")
		return
	}

	respondData(c, http.StatusOK, rules)
}

// Create handles POST /api/settings/alert-rules
func (h *AlertRuleHandler) Create(c *gin.Context) {
	var req alertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "rule_name and conditions are required")
		return
	}
	if req.Conditions.Metric == "" {
		respondError(c, http.StatusBadRequest, "conditions.metric is required")
		return
	}

	userID := middleware.GetUserID(c)
	rule, err := h.repo.Create(c.Request.Context(), userID, req.toInput())
	if err != nil {
		h.logger.Error("failed to create alert rule", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to create alert rule")
		return
	}

	respondData(c, http.StatusCreated, rule)
}

// Update handles PUT /api/settings/alert-rules/:id
func (h *AlertRuleHandler) Update(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid alert rule id")
		return
	}

	var req alertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "rule_name and conditions are required")
		return
	}

	userID := middleware.GetUserID(c)
	rule, err := h.repo.Update(c.Request.Context(), userID, ruleID, req.toInput())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "alert rule not found")
			return
		}
		h.logger.Error("failed to update alert rule", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to update alert rule")
		return
	}

	respondData(c, http.StatusOK, rule)
}

type toggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// Toggle handles PATCH /api/settings/alert-rules/:id/toggle
func (h *AlertRuleHandler) Toggle(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid alert rule id")
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "enabled is required")
		return
	}

	userID := middleware.GetUserID(c)
	rule, err := h.repo.SetActive(c.Request.Context(), userID, ruleID, *req.Enabled)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "alert rule not found")
			return
		}
		h.logger.Error("failed to toggle alert rule", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to toggle alert rule")
		return
	}

	respondData(c, http.StatusOK, rule)
}

// Delete handles DELETE /api/settings/alert-rules/:id
func (h *AlertRuleHandler) Delete(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid alert rule id")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.repo.Delete(c.Request.Context(), userID, ruleID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "alert rule not found")
			return
		}
		h.logger.Error("failed to delete alert rule", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to delete alert rule")
		return
	}

	respondMessage(c, http.StatusOK, "alert rule deleted")
}

// CompetitorHandler handles the global competitor reference set.
// Reads are open to every authenticated role; writes sit behind the
// admin gate in the route table, since the rows are shared across all
// tenants.
type CompetitorHandler struct {
	repo   repository.CompetitorRepository
	logger *zap.Logger
}

func NewCompetitorHandler(repo repository.CompetitorRepository, logger *zap.Logger) *CompetitorHandler {
	return &CompetitorHandler{repo: repo, logger: logger}
}

type competitorRequest struct {
	CompanyName   string   `json:"company_name" binding:"required"`
	Domain        string   `json:"domain" binding:"required"`
	BrandKeywords []string `json:"brand_keywords"`
	IsActive      *bool    `json:"is_active"`
}

func (r competitorRequest) toInput() repository.CompetitorInput {
	return repository.CompetitorInput{
		CompanyName:   r.CompanyName,
		Domain:        r.Domain,
		BrandKeywords: r.BrandKeywords,
		IsActive:      r.IsActive,
	}
}

// List handles GET /api/competitors
func (h *CompetitorHandler) List(c *gin.Context) {
	competitors, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list competitors", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to list competitors")
		return
	}

	respondData(c, http.StatusOK, competitors)
}

// Create handles POST /api/competitors (admin only)
func (h *CompetitorHandler) Create(c *gin.Context) {
	var req competitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "company_name and domain are required")
		return
	}

	competitor, err := h.repo.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.logger.Error("failed to create competitor", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to create competitor")
		return
	}

	respondData(c, http.StatusCreated, competitor)
}

// Update handles PUT /api/competitors/:id (admin only)
func (h *CompetitorHandler) Update(c *gin.Context) {
	competitorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid competitor id")
		return
	}

	var req competitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "company_name and domain are required")
		return
	}

	competitor, err := h.repo.Update(c.Request.Context(), competitorID, req.toInput())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "competitor not found")
			return
		}
		h.logger.Error("failed to update competitor", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to update competitor")
		return
	}

	respondData(c, http.StatusOK, competitor)
}

// Delete handles DELETE /api/competitors/:id (admin only)
func (h *CompetitorHandler) Delete(c *gin.Context) {
	competitorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid competitor id")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), competitorID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "competitor not found")
			return
		}
		h.logger.Error("failed to delete competitor", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to delete competitor")
		return
	}

	respondMessage(c, http.StatusOK, "competitor deleted")
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lalith-99/geoscope/internal/apperrors"
	"github.com/lalith-99/geoscope/internal/middleware"
	"github.com/lalith-99/geoscope/internal/models"
	"github.com/lalith-99/geoscope/internal/repository"
)

// KeywordHandler handles tracked-keyword CRUD. Every operation is
// scoped to the authenticated principal via middleware.GetUserID —
// the owning id never comes from the request body or URL.
type KeywordHandler struct {
	repo   repository.KeywordRepository
	logger *zap.Logger
}

func NewKeywordHandler(repo repository.KeywordRepository, logger *zap.Logger) *KeywordHandler {
	return &KeywordHandler{repo: repo, logger: logger}
}

type paginationInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// List handles GET /api/keywords?page=&limit=&search=&sortBy=&sortOrder=
func (h *KeywordHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	page := 1
	if p := c.Query("page"); p != "" {
		var err error
		page, err = strconv.Atoi(p)
		if err != nil || page < 1 {
			respondError(c, http.StatusBadRequest, "invalid 'page' parameter")
			return
		}
	}

	limit := 20
	if l := c.Query("limit"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 1 {
			respondError(c, http.StatusBadRequest, "invalid 'limit' parameter")
			return
		}
		if limit > 100 {
			limit = 100
		}
	}

	params := repository.KeywordListParams{
		Page:      page,
		Limit:     limit,
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sortBy", "created_at"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}

	keywords, total, err := h.repo.List(c.Request.Context(), userID, params)
	if err != nil {
		h.logger.Error("failed to list keywords", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to list keywords")
		return
	}

	totalPages := (total + limit - 1) / limit
	respondData(c, http.StatusOK, gin.H{
		"keywords": keywords,
		"pagination": paginationInfo{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

type createKeywordRequest struct {
	Keyword      string               `json:"keyword" binding:"required"`
	SearchVolume *int                 `json:"search_volume" binding:"omitempty,gte=0"`
	Difficulty   *int                 `json:"difficulty" binding:"omitempty,gte=0,lte=100"`
	SearchConfig *models.SearchConfig `json:"search_config"`
}

// Create handles POST /api/keywords
func (h *KeywordHandler) Create(c *gin.Context) {
	var req createKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "keyword is required; search_volume must be >= 0 and difficulty between 0 and 100")
		return
	}

	userID := middleware.GetUserID(c)
	keyword, err := h.repo.Create(c.Request.Context(), userID, repository.KeywordInput{
		Keyword:      req.Keyword,
		SearchVolume: req.SearchVolume,
		Difficulty:   req.Difficulty,
		SearchConfig: req.SearchConfig,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateKeyword) {
			respondError(c, http.StatusBadRequest, "keyword already exists")
			return
		}
		h.logger.Error("failed to create keyword", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to create keyword")
		return
	}

	respondData(c, http.StatusCreated, keyword)
}

type batchCreateRequest struct {
	Keywords []repository.KeywordInput `json:"keywords" binding:"required,min=1"`
}

type batchCreateSummary struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// BatchCreate handles POST /api/keywords/batch
//
// Partial failure is a normal, reported outcome: some rows rejected is
// still a 201 with the rejections itemized, never an error response.
func (h *KeywordHandler) BatchCreate(c *gin.Context) {
	var req batchCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "keywords list must not be empty")
		return
	}

	userID := middleware.GetUserID(c)
	created, rowErrors, err := h.repo.BatchCreate(c.Request.Context(), userID, req.Keywords)
	if err != nil {
		h.logger.Error("failed to batch create keywords", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to create keywords")
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"created": created,
		"errors":  rowErrors,
		"summary": batchCreateSummary{
			Total:   len(req.Keywords),
			Created: len(created),
			Failed:  len(rowErrors),
		},
	})
}

type updateKeywordRequest struct {
	Keyword      *string               `json:"keyword"`
	SearchVolume *int                  `json:"search_volume" binding:"omitempty,gte=0"`
	Difficulty   *int                  `json:"difficulty" binding:"omitempty,gte=0,lte=100"`
	Status       *models.KeywordStatus `json:"status"`
	SearchConfig *models.SearchConfig  `json:"search_config"`
}

// Update handles PUT /api/keywords/:id — a sparse patch; only fields
// present in the body change.
func (h *KeywordHandler) Update(c *gin.Context) {
	keywordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid keyword id")
		return
	}

	var req updateKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "search_volume must be >= 0 and difficulty between 0 and 100")
		return
	}
	if req.Keyword != nil && *req.Keyword == "" {
		respondError(c, http.StatusBadRequest, "keyword must not be empty")
		return
	}
	if req.Status != nil {
		switch *req.Status {
		case models.KeywordActive, models.KeywordPaused, models.KeywordDeleted:
		default:
			respondError(c, http.StatusBadRequest, "invalid status")
			return
		}
	}

	userID := middleware.GetUserID(c)
	keyword, err := h.repo.Update(c.Request.Context(), userID, keywordID, repository.KeywordPatch{
		Keyword:      req.Keyword,
		SearchVolume: req.SearchVolume,
		Difficulty:   req.Difficulty,
		Status:       req.Status,
		SearchConfig: req.SearchConfig,
	})
	if err != nil {
		// Not-owned and nonexistent are the same 404 — the response
		// must not reveal that another tenant's keyword exists.
		if errors.Is(err, apperrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "keyword not found")
			return
		}
		if errors.Is(err, apperrors.ErrDuplicateKeyword) {
			respondError(c, http.StatusBadRequest, "keyword already exists")
			return
		}
		h.logger.Error("failed to update keyword", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to update keyword")
		return
	}

	respondData(c, http.StatusOK, keyword)
}

// Delete handles DELETE /api/keywords/:id
func (h *KeywordHandler) Delete(c *gin.Context) {
	keywordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid keyword id")
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.repo.Delete(c.Request.Context(), userID, keywordID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "keyword not found")
			return
		}
		h.logger.Error("failed to delete keyword", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to delete keyword")
		return
	}

	respondMessage(c, http.StatusOK, "keyword deleted")
}

type batchDeleteRequest struct {
	KeywordIDs []uuid.UUID `json:"keywordIds" binding:"required,min=1"`
}

// BatchDelete handles DELETE /api/keywords/batch
//
// Ids the caller doesn't own are dropped silently; the response lists
// what was actually deleted, which may be a subset of the request.
func (h *KeywordHandler) BatchDelete(c *gin.Context) {
	var req batchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "keywordIds list must not be empty")
		return
	}

	userID := middleware.GetUserID(c)
	deleted, err := h.repo.BatchDelete(c.Request.Context(), userID, req.KeywordIDs)
	if err != nil {
		h.logger.Error("failed to batch delete keywords", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to delete keywords")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"deletedCount": len(deleted),
		"deletedIds":   deleted,
	})
}

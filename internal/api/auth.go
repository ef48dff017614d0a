package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/geoscope/internal/apperrors"
	"github.com/lalith-99/geoscope/internal/auth"
	"github.com/lalith-99/geoscope/internal/middleware"
	"github.com/lalith-99/geoscope/internal/models"
	"github.com/lalith-99/geoscope/internal/repository"
)

// AuthHandler orchestrates the principal lifecycle: registration,
// login, profile reads and password rotation. Register and Login are
// the only public endpoints — they're what produce the token the rest
// of the API requires.
type AuthHandler struct {
	userRepo  repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewAuthHandler(userRepo repository.UserRepository, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

type registerRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// authPayload is what register and login return: the principal (hash
// stripped by json:"-") plus the bearer token the client will present
// on every subsequent request.
type authPayload struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "name, email and password are required")
		return
	}

	// Policy runs before hashing: a rejected password never costs a
	// bcrypt round.
	if policyErrs := auth.ValidatePassword(req.Password); len(policyErrs) > 0 {
		respondErrors(c, http.StatusBadRequest, "password does not meet requirements", policyErrs)
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleBusinessUser
	}
	if !role.Valid() {
		respondError(c, http.StatusBadRequest, "invalid role")
		return
	}

	existing, err := h.userRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to check existing user", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "registration failed")
		return
	}
	if existing != nil {
		respondError(c, http.StatusBadRequest, "email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "registration failed")
		return
	}

	user, err := h.userRepo.Create(c.Request.Context(), req.Name, req.Email, hash, role)
	if err != nil {
		// The unique constraint closes the race between the check
		// above and this insert.
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			respondError(c, http.StatusBadRequest, "email already registered")
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "registration failed")
		return
	}

	token, err := auth.GenerateToken(user, h.jwtSecret, h.tokenTTL)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "registration failed")
		return
	}

	respondDataMessage(c, http.StatusCreated, authPayload{User: user, Token: token}, "registration successful")
}

// Login handles POST /api/auth/login
//
// Unknown email and wrong password return the byte-identical message,
// so responses can't be used to enumerate registered accounts.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.userRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to look up user", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil {
		respondError(c, http.StatusUnauthorized, apperrors.ErrInvalidCredentials.Error())
		return
	}

	if user.Status != models.StatusActive {
		respondError(c, http.StatusUnauthorized, apperrors.ErrAccountDisabled.Error())
		return
	}

	if !auth.ComparePassword(req.Password, user.PasswordHash) {
		respondError(c, http.StatusUnauthorized, apperrors.ErrInvalidCredentials.Error())
		return
	}

	if err := h.userRepo.UpdateLastLogin(c.Request.Context(), user.ID); err != nil {
		h.logger.Error("failed to update last login", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := auth.GenerateToken(user, h.jwtSecret, h.tokenTTL)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	respondDataMessage(c, http.StatusOK, authPayload{User: user, Token: token}, "login successful")
}

// Profile handles GET /api/auth/profile
//
// The id comes from the verified token, so a 404 here means the user
// row vanished after issuance — tokens are not invalidated by
// downstream deletion.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get user", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if user == nil {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}

	respondData(c, http.StatusOK, gin.H{"user": user})
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// UpdatePassword handles PUT /api/auth/password
//
// The old secret is re-verified even though the request already
// carries a valid token: a stolen-but-unexpired token alone must not
// be enough to silently take over the account.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "old and new passwords are required")
		return
	}

	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get user", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to update password")
		return
	}
	if user == nil {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}

	if !auth.ComparePassword(req.OldPassword, user.PasswordHash) {
		respondError(c, http.StatusBadRequest, "old password is incorrect")
		return
	}

	if policyErrs := auth.ValidatePassword(req.NewPassword); len(policyErrs) > 0 {
		respondErrors(c, http.StatusBadRequest, "new password does not meet requirements", policyErrs)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to update password")
		return
	}

	if err := h.userRepo.UpdatePasswordHash(c.Request.Context(), userID, hash); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to persist password", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to update password")
		return
	}

	// Outstanding tokens stay valid until natural expiry. Known
	// limitation of the stateless-token design.
	respondMessage(c, http.StatusOK, "password updated")
}

// Verify handles GET /api/auth/verify — echoes the principal summary
// from the already-verified claims. Reaching this handler at all means
// the gate accepted the token.
func (h *AuthHandler) Verify(c *gin.Context) {
	respondDataMessage(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":    middleware.GetUserID(c),
			"email": middleware.GetEmail(c),
			"role":  middleware.GetRole(c),
		},
	}, "token valid")
}

// Logout handles POST /api/auth/logout. There is no server-side
// session to destroy — the client discards its token. Always 200.
func (h *AuthHandler) Logout(c *gin.Context) {
	respondMessage(c, http.StatusOK, "logout successful")
}

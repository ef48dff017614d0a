package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lalith-99/geoscope/internal/auth"
	"github.com/lalith-99/geoscope/internal/middleware"
	"github.com/lalith-99/geoscope/internal/models"
)

const testSecret = "test-secret"

func newAuthRouter(repo *mockUserRepo) *gin.Engine {
	h := NewAuthHandler(repo, testSecret, time.Hour, zap.NewNop())

	router := gin.New()
	router.POST("/api/auth/register", h.Register)
	router.POST("/api/auth/login", h.Login)

	protected := router.Group("/api/auth")
	protected.Use(middleware.AuthMiddleware(testSecret))
	protected.GET("/profile", h.Profile)
	protected.PUT("/password", h.UpdatePassword)
	protected.GET("/verify", h.Verify)
	protected.POST("/logout", h.Logout)

	return router
}

func registeredUser(t *testing.T, repo *mockUserRepo, email, password string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return repo.add(&models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleBusinessUser,
	})
}

func TestRegister_Success(t *testing.T) {
	repo := newMockUserRepo()
	router := newAuthRouter(repo)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "Passw0rd!",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var payload struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	decodeData(t, env, &payload)

	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, "alice@example.com", payload.User.Email)
	assert.Equal(t, models.RoleBusinessUser, payload.User.Role)

	// The stored hash must never be the plaintext, and the response
	// body must not contain the hash at all.
	stored := repo.users[payload.User.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "Passw0rd!", stored.PasswordHash)
	assert.NotContains(t, rec.Body.String(), stored.PasswordHash)

	// The returned token must verify and carry the new principal.
	claims, err := auth.ParseToken(payload.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, payload.User.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestRegister_WeakPassword(t *testing.T) {
	repo := newMockUserRepo()
	router := newAuthRouter(repo)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "short",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Errors)
	assert.Empty(t, repo.users, "no user should be created")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	registeredUser(t, repo, "alice@example.com", "Passw0rd!")
	router := newAuthRouter(repo)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"name":     "Alice Again",
		"email":    "alice@example.com",
		"password": "Passw0rd!",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "email already registered", env.Message)
}

func TestRegister_InvalidRole(t *testing.T) {
	repo := newMockUserRepo()
	router := newAuthRouter(repo)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"name":     "Mallory",
		"email":    "mallory@example.com",
		"password": "Passw0rd!",
		"role":     "superuser",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_Success_UpdatesLastLogin(t *testing.T) {
	repo := newMockUserRepo()
	user := registeredUser(t, repo, "alice@example.com", "Passw0rd!")
	router := newAuthRouter(repo)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "Passw0rd!",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)

	var payload struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &payload)
	assert.NotEmpty(t, payload.Token)

	_, stamped := repo.lastLoginAt[user.ID]
	assert.True(t, stamped, "last_login_at should be updated on login")
}

// Unknown email and wrong password must be byte-for-byte identical so
// the response can't be used to enumerate accounts.
func TestLogin_FailureIndistinguishable(t *testing.T) {
	repo := newMockUserRepo()
	registeredUser(t, repo, "alice@example.com", "Passw0rd!")
	router := newAuthRouter(repo)

	unknownRec := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "nobody@example.com",
		"password": "Whatever1!",
	})
	wrongRec := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "WrongPass1!",
	})

	require.Equal(t, http.StatusUnauthorized, unknownRec.Code)
	require.Equal(t, http.StatusUnauthorized, wrongRec.Code)

	unknownEnv := decodeEnvelope(t, unknownRec)
	wrongEnv := decodeEnvelope(t, wrongRec)
	assert.Equal(t, unknownEnv.Message, wrongEnv.Message)
	assert.Equal(t, "invalid email or password", wrongEnv.Message)
}

func TestLogin_DisabledAccount(t *testing.T) {
	repo := newMockUserRepo()
	user := registeredUser(t, repo, "alice@example.com", "Passw0rd!")
	user.Status = models.StatusSuspended
	router := newAuthRouter(repo)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "Passw0rd!",
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "account disabled", env.Message)
}

func TestProfile_UserDeletedAfterIssuance(t *testing.T) {
	repo := newMockUserRepo()
	user := registeredUser(t, repo, "alice@example.com", "Passw0rd!")
	token, err := auth.GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)

	// Simulate deletion between issuance and use.
	delete(repo.users, user.ID)

	router := newAuthRouter(repo)
	req := doAuthed(t, router, http.MethodGet, "/api/auth/profile", token)
	require.Equal(t, http.StatusNotFound, req.Code)
}

func TestUpdatePassword_WrongOldPassword(t *testing.T) {
	repo := newMockUserRepo()
	user := registeredUser(t, repo, "alice@example.com", "Passw0rd!")
	token, err := auth.GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	router := newAuthRouter(repo)

	rec := doAuthedJSON(t, router, http.MethodPut, "/api/auth/password", token, gin.H{
		"oldPassword": "NotThePass1!",
		"newPassword": "NewPassw0rd!",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, auth.ComparePassword("Passw0rd!", user.PasswordHash), "hash must be unchanged")
}

func TestUpdatePassword_Success(t *testing.T) {
	repo := newMockUserRepo()
	user := registeredUser(t, repo, "alice@example.com", "Passw0rd!")
	token, err := auth.GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	router := newAuthRouter(repo)

	rec := doAuthedJSON(t, router, http.MethodPut, "/api/auth/password", token, gin.H{
		"oldPassword": "Passw0rd!",
		"newPassword": "NewPassw0rd!",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, auth.ComparePassword("NewPassw0rd!", user.PasswordHash))
	assert.False(t, auth.ComparePassword("Passw0rd!", user.PasswordHash))
}

func TestVerify_EchoesClaims(t *testing.T) {
	repo := newMockUserRepo()
	user := registeredUser(t, repo, "alice@example.com", "Passw0rd!")
	token, err := auth.GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	router := newAuthRouter(repo)

	rec := doAuthed(t, router, http.MethodGet, "/api/auth/verify", token)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var payload struct {
		User struct {
			ID    string      `json:"id"`
			Email string      `json:"email"`
			Role  models.Role `json:"role"`
		} `json:"user"`
	}
	decodeData(t, env, &payload)
	assert.Equal(t, user.ID.String(), payload.User.ID)
	assert.Equal(t, user.Email, payload.User.Email)
	assert.Equal(t, user.Role, payload.User.Role)
}

func TestLogout_Always200(t *testing.T) {
	repo := newMockUserRepo()
	user := registeredUser(t, repo, "alice@example.com", "Passw0rd!")
	token, err := auth.GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	router := newAuthRouter(repo)

	rec := doAuthed(t, router, http.MethodPost, "/api/auth/logout", token)
	require.Equal(t, http.StatusOK, rec.Code)
}

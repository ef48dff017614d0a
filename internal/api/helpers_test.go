package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lalith-99/geoscope/internal/middleware"
	"github.com/lalith-99/geoscope/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser injects claims the way AuthMiddleware would after verifying
// a token, so handler tests don't need to mint real JWTs. The gate
// itself is covered in the middleware package's tests.
func asUser(u *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, u.ID)
		c.Set(middleware.ContextKeyEmail, u.Email)
		c.Set(middleware.ContextKeyRole, u.Role)
		c.Next()
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doAuthedJSON(t, router, method, path, "", body)
}

// doAuthed issues a bodyless request with a bearer token.
func doAuthed(t *testing.T, router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	return doAuthedJSON(t, router, method, path, token, nil)
}

func doAuthedJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope unmarshals the uniform response shape. Data is left
// as raw JSON so each test can decode it into the type it expects.
type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()

	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "response body: %s", rec.Body.String())
	return env
}

func decodeData(t *testing.T, env testEnvelope, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, into))
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return s
}

func authedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RequireAuth(testSecret), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func request(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_ValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var gotMember, gotRole string
	r.GET("/ping", RequireAuth(testSecret), func(c *gin.Context) {
		gotMember = c.GetString(CtxMemberIDKey)
		gotRole = c.GetString(CtxRoleKey)
		c.String(http.StatusOK, "pong")
	})

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "m-0042",
		"role": "member",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	w := request(r, token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "m-0042", gotMember)
	assert.Equal(t, "member", gotRole)
}

func TestRequireAuth_Rejections(t *testing.T) {
	r := authedRouter()

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request(r, "").Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, []byte("other-secret"), jwt.MapClaims{
			"sub": "m-0042",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		assert.Equal(t, http.StatusUnauthorized, request(r, token).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": "m-0042",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		assert.Equal(t, http.StatusUnauthorized, request(r, token).Code)
	})

	t.Run("missing sub", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		assert.Equal(t, http.StatusUnauthorized, request(r, token).Code)
	})
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin", RequireAuth(testSecret), RequireRole("admin"), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	adminToken := signToken(t, testSecret, jwt.MapClaims{
		"sub": "a-0001", "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	})
	memberToken := signToken(t, testSecret, jwt.MapClaims{
		"sub": "m-0042", "role": "member", "exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+memberToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

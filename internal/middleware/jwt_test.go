package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examly/examly-backend/internal/config"
	"github.com/examly/examly-backend/internal/model"
	"github.com/examly/examly-backend/internal/service"
)

func newTestRouter(authService *service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/teacher", RequireTeacherJWT(authService), func(c *gin.Context) {
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})
	r.GET("/student", RequireStudentJWT(authService), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func issueToken(t *testing.T, authService *service.AuthService, role model.Role) string {
	t.Helper()
	token, err := authService.GenerateToken(&model.User{
		ID:          1,
		Email:       "user@example.com",
		DisplayName: "User",
		Role:        role,
	})
	require.NoError(t, err)
	return token
}

func TestRequireTeacherJWT(t *testing.T) {
	authService := service.NewAuthService(&config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}, nil)
	router := newTestRouter(authService)

	t.Run("accepts teacher token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/teacher", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, authService, model.RoleTeacher))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user@example.com")
	})

	t.Run("rejects student token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/teacher", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, authService, model.RoleStudent))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("rejects missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/teacher", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/teacher", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireStudentJWT(t *testing.T) {
	authService := service.NewAuthService(&config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}, nil)
	router := newTestRouter(authService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/student", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, authService, model.RoleTeacher))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTokenFromQueryFallback(t *testing.T) {
	authService := service.NewAuthService(&config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}, nil)
	router := newTestRouter(authService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/teacher?token="+issueToken(t, authService, model.RoleTeacher), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

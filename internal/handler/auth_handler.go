package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/examly/examly-backend/internal/middleware"
	"github.com/examly/examly-backend/internal/model"
	"github.com/examly/examly-backend/internal/response"
	"github.com/examly/examly-backend/internal/service"
	"github.com/examly/examly-backend/internal/validator"
)

const oauthStateCookie = "oauth_state"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// GoogleLogin godoc
// GET /api/v1/auth/google/login
// Redirects the browser to the Google consent page.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.New().String()

	url, err := h.authService.GoogleLoginURL(state)
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrOAuthDisabled)
		return
	}

	// State cookie guards the callback against CSRF.
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback godoc
// GET /api/v1/auth/google/callback
// Exchanges the authorization code and returns a JWT. First sign-in creates
// the account with the student role.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		response.Fail(c, http.StatusBadRequest, response.ErrOAuthExchange)
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrOAuthExchange)
		return
	}

	login, err := h.authService.HandleGoogleCallback(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrOAuthDisabled) {
			response.Fail(c, http.StatusServiceUnavailable, response.ErrOAuthDisabled)
			return
		}
		response.Fail(c, http.StatusBadGateway, response.ErrOAuthExchange)
		return
	}

	response.Success(c, http.StatusOK, login)
}

// PasswordLogin godoc
// POST /api/v1/auth/login
// Validates email + password for CLI-seeded teacher accounts, returns JWT.
func (h *AuthHandler) PasswordLogin(c *gin.Context) {
	var req model.PasswordLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	login, err := h.authService.PasswordLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	response.Success(c, http.StatusOK, login)
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile behind the presented token.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), claims.Email)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/examly/examly-backend/internal/config"
	"github.com/examly/examly-backend/internal/model"
	"github.com/examly/examly-backend/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOAuthDisabled      = errors.New("google sign-in is not configured")
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Claims extends JWT standard claims with the account identity.
type Claims struct {
	jwt.RegisteredClaims
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
}

// AuthService handles federated sign-in, password login and JWT issuance.
type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
	oauth    *oauth2.Config
}

// NewAuthService creates a new AuthService. Google sign-in is enabled only
// when a client ID is configured.
func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository) *AuthService {
	var oc *oauth2.Config
	if cfg.GoogleClientID != "" {
		oc = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return &AuthService{cfg: cfg, userRepo: userRepo, oauth: oc}
}

// GoogleLoginURL returns the consent page URL for the given CSRF state.
func (s *AuthService) GoogleLoginURL(state string) (string, error) {
	if s.oauth == nil {
		return "", ErrOAuthDisabled
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

type googleUserinfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleGoogleCallback exchanges the authorization code, resolves the Google
// identity and signs the user in. First-time visitors are created with the
// student role; the stored role always wins for returning users.
func (s *AuthService) HandleGoogleCallback(ctx context.Context, code string) (*model.LoginResponse, error) {
	if s.oauth == nil {
		return nil, ErrOAuthDisabled
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	info, err := s.fetchUserinfo(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, errors.New("google userinfo missing email")
	}
	if info.Name == "" {
		info.Name = info.Email
	}

	user, err := s.userRepo.EnsureExists(ctx, info.Email, info.Name)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	signed, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: signed, User: *user}, nil
}

func (s *AuthService) fetchUserinfo(ctx context.Context, token *oauth2.Token) (*googleUserinfo, error) {
	client := s.oauth.Client(ctx, token)
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// PasswordLogin authenticates a CLI-seeded account by email and password.
func (s *AuthService) PasswordLogin(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Hide whether the account exists.
		return nil, ErrInvalidCredentials
	}
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.CheckPassword(*user.PasswordHash, password); err != nil {
		return nil, err
	}

	signed, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: signed, User: *user}, nil
}

// GetUser returns the account behind an authenticated email.
func (s *AuthService) GetUser(ctx context.Context, email string) (*model.User, error) {
	return s.userRepo.GetByEmail(ctx, email)
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateToken creates a signed JWT for a user.
func (s *AuthService) GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Email: user.Email,
		Name:  user.DisplayName,
		Role:  user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

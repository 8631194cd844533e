package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/yashrajoria/E-Commerce-backend/storefront/database"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrRegistrationDenied = errors.New("registration not permitted")
)

// Session is the capability the rest of the storefront needs from auth.
type Session interface {
	IsAuthenticated(ctx context.Context) bool
	CurrentUser(ctx context.Context) *models.User
	Logout(ctx context.Context) error
}

type AuthConfig struct {
	APIBase  string
	TokenKey string
	UserKey  string
}

// AuthService talks to the REST auth backend and keeps the resulting
// token and user in the key-value store, scoped to the caller's session.
type AuthService struct {
	cfg        AuthConfig
	kv         database.KVStore
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

func NewAuthService(cfg AuthConfig, kv database.KVStore, httpClient *http.Client, logger *zap.Logger) *AuthService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &AuthService{
		cfg:        cfg,
		kv:         kv,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

type backendMessage struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (m backendMessage) text(fallback string) string {
	if m.Error != "" {
		return m.Error
	}
	if m.Message != "" {
		return m.Message
	}
	return fallback
}

// Login authenticates against the backend and stores the session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	status, body, err := s.postJSON(ctx, "/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		var msg backendMessage
		_ = json.Unmarshal(body, &msg)
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, msg.text("login rejected"))
		}
		return nil, fmt.Errorf("login failed (%d): %s", status, msg.text("auth backend error"))
	}

	var resp models.LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: login response: %v", ErrMalformedResponse, err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: login response has no token", ErrMalformedResponse)
	}

	user := &models.User{Username: resp.Username, Role: resp.Role}
	if user.Username == "" {
		user.Username = username
	}
	if err := s.saveAuthData(ctx, resp.Token, user); err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("username", user.Username), zap.String("role", user.Role))
	return user, nil
}

// Register creates a regular user account on the backend.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	status, body, err := s.postJSON(ctx, "/users", map[string]string{
		"username": strings.TrimSpace(username),
		"password": password,
		"role":     models.RoleUser,
	})
	if err != nil {
		return err
	}

	var msg backendMessage
	_ = json.Unmarshal(body, &msg)
	switch {
	case status >= 200 && status < 300:
		s.logger.Info("User registered", zap.String("username", username))
		return nil
	case status == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrUserExists, msg.text("username taken"))
	case status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrRegistrationDenied, msg.text("forbidden"))
	default:
		return fmt.Errorf("registration failed (%d): %s", status, msg.text("auth backend error"))
	}
}

// Token returns the stored auth token, or "".
func (s *AuthService) Token(ctx context.Context) string {
	token, ok, err := s.kv.Get(ctx, database.SessionKey(ctx, s.cfg.TokenKey))
	if err != nil {
		s.logger.Warn("Failed to read auth token", zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

// IsAuthenticated reports whether a token is stored and, when it is a JWT
// carrying an exp claim, not yet expired. Expired sessions are dropped.
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	token := s.Token(ctx)
	if token == "" {
		return false
	}
	if s.tokenExpired(token) {
		s.logger.Info("Stored auth token expired, clearing session")
		_ = s.Logout(ctx)
		return false
	}
	return true
}

// CurrentUser returns the stored session user, or nil when absent or corrupt.
func (s *AuthService) CurrentUser(ctx context.Context) *models.User {
	raw, ok, err := s.kv.Get(ctx, database.SessionKey(ctx, s.cfg.UserKey))
	if err != nil || !ok {
		return nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.Username == "" {
		return nil
	}
	return &user
}

// IsAdmin reports whether the authenticated user has the admin role.
func (s *AuthService) IsAdmin(ctx context.Context) bool {
	if !s.IsAuthenticated(ctx) {
		return false
	}
	user := s.CurrentUser(ctx)
	return user != nil && user.Role == models.RoleAdmin
}

// Logout removes the stored token and user.
func (s *AuthService) Logout(ctx context.Context) error {
	errToken := s.kv.Remove(ctx, database.SessionKey(ctx, s.cfg.TokenKey))
	errUser := s.kv.Remove(ctx, database.SessionKey(ctx, s.cfg.UserKey))
	return errors.Join(errToken, errUser)
}

func (s *AuthService) saveAuthData(ctx context.Context, token string, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, database.SessionKey(ctx, s.cfg.TokenKey), token); err != nil {
		return fmt.Errorf("store auth token: %w", err)
	}
	if err := s.kv.Set(ctx, database.SessionKey(ctx, s.cfg.UserKey), string(data)); err != nil {
		return fmt.Errorf("store session user: %w", err)
	}
	return nil
}

// tokenExpired only inspects the exp claim; signature checks belong to the
// backend. Tokens that are not JWTs never expire client-side.
func (s *AuthService) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	return !claims.VerifyExpiresAt(s.now().Unix(), false)
}

func (s *AuthService) postJSON(ctx context.Context, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	url := strings.TrimSuffix(s.cfg.APIBase, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("auth request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, nil, fmt.Errorf("auth response %s read failed: %w", path, err)
	}
	return resp.StatusCode, respBody, nil
}

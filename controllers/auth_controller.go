package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/logger"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	"github.com/yashrajoria/E-Commerce-backend/storefront/services"
)

// AuthAPI is the auth session service.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
	IsAdmin(ctx context.Context) bool
	CurrentUser(ctx context.Context) *models.User
}

type AuthController struct {
	auth      AuthAPI
	validator *RequestValidator
	logger    *zap.Logger
}

func NewAuthController(auth AuthAPI, validator *RequestValidator, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, validator: validator, logger: logger}
}

// Login authenticates against the auth backend and opens the session.
func (ac *AuthController) Login(c *gin.Context) {
	req, err := ac.validator.BindCredentials(c)
	if err != nil {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	user, err := ac.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			_ = c.Error(apperrors.WithMessage(apperrors.ErrUnauthorized, err.Error()))
			return
		}
		logger.Error(c, "Login failed", err, zap.String("username", req.Username))
		_ = c.Error(apperrors.Wrap(apperrors.ErrBadGateway, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"role":     user.Role,
		"is_admin": user.Role == models.RoleAdmin,
	})
}

// Register creates a regular user account.
func (ac *AuthController) Register(c *gin.Context) {
	req, err := ac.validator.BindRegistration(c)
	if err != nil {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	err = ac.auth.Register(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, services.ErrUserExists):
		_ = c.Error(apperrors.WithMessage(apperrors.ErrConflict, err.Error()))
		return
	case errors.Is(err, services.ErrRegistrationDenied):
		_ = c.Error(apperrors.WithMessage(apperrors.ErrForbidden, err.Error()))
		return
	case err != nil:
		logger.Error(c, "Registration failed", err, zap.String("username", req.Username))
		_ = c.Error(apperrors.Wrap(apperrors.ErrBadGateway, err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user registered", "username": req.Username})
}

// Logout drops the stored session.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.auth.Logout(c.Request.Context()); err != nil {
		logger.Error(c, "Logout failed", err)
		_ = c.Error(apperrors.Wrap(apperrors.ErrServiceUnavailable, err))
		return
	}
	ac.logger.Info("Session closed", zap.String("request_id", logger.RequestID(c)))
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the session user.
func (ac *AuthController) Me(c *gin.Context) {
	ctx := c.Request.Context()
	if !ac.auth.IsAuthenticated(ctx) {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrUnauthorized, "Login required"))
		return
	}
	user := ac.auth.CurrentUser(ctx)
	if user == nil {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrUnauthorized, "Session has no user"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"role":     user.Role,
		"is_admin": ac.auth.IsAdmin(ctx),
	})
}

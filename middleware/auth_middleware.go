package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

const UserContextKey = "user"

// AdminSession is the part of the auth service the admin gate needs.
type AdminSession interface {
	IsAuthenticated(ctx context.Context) bool
	IsAdmin(ctx context.Context) bool
	CurrentUser(ctx context.Context) *models.User
}

// RequireAdmin lets the request through only when the caller's session (see
// Session) is logged in as ADMIN. The session user is stored on the context.
func RequireAdmin(session AdminSession) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if !session.IsAuthenticated(ctx) {
			_ = c.Error(apperrors.WithMessage(apperrors.ErrUnauthorized, "Login required"))
			c.Abort()
			return
		}
		if !session.IsAdmin(ctx) {
			_ = c.Error(apperrors.WithMessage(apperrors.ErrForbidden, "Admin role required"))
			c.Abort()
			return
		}

		if user := session.CurrentUser(ctx); user != nil {
			c.Set(UserContextKey, user)
		}
		c.Next()
	}
}

func GetUser(c *gin.Context) (*models.User, error) {
	val, exists := c.Get(UserContextKey)
	if !exists {
		return nil, errors.New("user not found in context")
	}
	user, ok := val.(*models.User)
	if !ok || user == nil {
		return nil, errors.New("user has invalid type in context")
	}
	return user, nil
}

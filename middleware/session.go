package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yashrajoria/E-Commerce-backend/storefront/database"
)

const (
	SessionHeader    = "X-Session-ID"
	SessionIDKey     = "session_id"
	sessionCookieAge = 7 * 24 * 60 * 60
)

// Session binds every request to a client session: the X-Session-ID header,
// then the session cookie, otherwise a freshly issued id. Only UUIDs are
// accepted so a client cannot pick another caller's key space by guessing.
func Session(cookieName string, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := validSessionID(c.GetHeader(SessionHeader))
		if id == "" {
			if cookie, err := c.Cookie(cookieName); err == nil {
				id = validSessionID(cookie)
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, id, sessionCookieAge, "/", "", secure, true)
		c.Header(SessionHeader, id)
		c.Set(SessionIDKey, id)
		c.Request = c.Request.WithContext(database.WithSessionID(c.Request.Context(), id))
		c.Next()
	}
}

func validSessionID(raw string) string {
	id, err := uuid.Parse(raw)
	if err != nil {
		return ""
	}
	return id.String()
}

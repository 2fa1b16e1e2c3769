package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/shop-billing-api/internal/application/service"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/dto/response"
)

const (
	// SessionHeader names the cart a request operates on.
	SessionHeader = "X-Session-ID"
	// SessionCookie is the cookie fallback for browsers that cannot set headers.
	SessionCookie = "cart_session"

	maxSessionLength = 100
)

// SessionMiddleware resolves the cart session of a request: the X-Session-ID
// header, then the cart_session cookie, else the shared default cart. The
// resolved session is echoed back in the X-Session-ID response header.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := strings.TrimSpace(c.GetHeader(SessionHeader))
		if session == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				session = strings.TrimSpace(cookie)
			}
		}
		if session == "" || len(session) > maxSessionLength {
			session = service.DefaultSession
		}

		c.Set(response.SessionKey, session)
		c.Header(SessionHeader, session)
		c.Next()
	}
}

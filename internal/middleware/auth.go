package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"crmcore/internal/domain"
	jwtsvc "crmcore/internal/pkg/jwt"
	"crmcore/internal/pkg/response"
)

const principalKey = "principal"

// Auth validates the bearer token and attaches the principal to the context.
func Auth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			response.Unauthorized(c, "missing or malformed Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			response.Unauthorized(c, "empty token")
			return
		}

		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}

		c.Set(principalKey, domain.NewPrincipal(claims.UserID, claims.Role, claims.Capabilities))
		c.Next()
	}
}

// PrincipalFrom returns the authenticated principal, if any.
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// SetPrincipal exists for tests that bypass the JWT middleware.
func SetPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(principalKey, p)
}

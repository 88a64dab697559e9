package middleware

import (
	"github.com/gin-gonic/gin"

	"crmcore/internal/domain"
	"crmcore/internal/pkg/apperror"
	"crmcore/internal/pkg/response"
)

// RequireCapability gates a route on a capability tag. Fine-grained checks
// (per state-machine transition) live in the services; this keeps obviously
// unauthorized requests out of them.
func RequireCapability(cap domain.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			response.Unauthorized(c, "no principal")
			return
		}

		if !p.Can(cap) {
			response.FailWith(c, apperror.KindCapabilityDenied, "missing capability "+string(cap))
			c.Abort()
			return
		}

		c.Next()
	}
}

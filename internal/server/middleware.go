package server

import (
	"strings"

	"github.com/adlift/cashout/internal/tenantctx"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

// Headers set by the identity layer in front of this service. Credentials
// are verified there; this service only consumes the result.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
	HeaderCompanyID = "X-Company-ID"
)

// Identity attaches the verified actor to the request context.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := strings.TrimSpace(c.GetHeader(HeaderActorID))
		if actorID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		actor := tenantctx.Actor{
			ID:   actorID,
			Role: strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderActorRole))),
		}
		if raw := strings.TrimSpace(c.GetHeader(HeaderCompanyID)); raw != "" {
			if parsed, err := snowflake.ParseString(raw); err == nil {
				actor.CompanyID = parsed
			}
		}

		ctx := tenantctx.WithActor(c.Request.Context(), actor)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole gates a route on the actor's role.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := tenantctx.ActorFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		for _, role := range roles {
			if strings.EqualFold(actor.Role, role) {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

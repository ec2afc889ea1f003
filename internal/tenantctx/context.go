package tenantctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Roles recognised by the ledger. Credential verification happens upstream;
// the ledger trusts the actor attached to the request context.
const (
	RoleCompany = "company"
	RoleAdmin   = "admin"
)

// Actor identifies the caller of a ledger operation.
type Actor struct {
	ID        string
	Role      string
	CompanyID snowflake.ID
}

func (a Actor) IsAdmin() bool {
	return strings.EqualFold(a.Role, RoleAdmin)
}

// ActorContextKey is the request context key for the verified actor.
type ActorContextKey struct{}

// WithActor stores the actor in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ActorContextKey{}, actor)
}

// ActorFromContext returns the actor from context, if set.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ActorContextKey{}).(Actor)
	if !ok || actor.ID == "" {
		return Actor{}, false
	}
	return actor, true
}

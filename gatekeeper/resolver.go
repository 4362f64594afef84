package gatekeeper

import (
	"context"

	"github.com/ringer-warp/portal-session/identity"
	"github.com/ringer-warp/portal-session/tenants"
	"github.com/rs/zerolog"
)

// Grant is the point-in-time authorization snapshot for the current identity:
// the flat permission set plus the customer accounts it may act within. A
// grant is replaced wholesale on refetch, never mutated.
type Grant struct {
	UserType     string
	Permissions  []string
	TenantAccess []tenants.TenantAccess
	SuperAdmin   bool

	// Degraded marks a grant produced while the permission endpoint was
	// unreachable: the identity stays authenticated but is authorized for
	// nothing until the next fetch.
	Degraded bool
}

// HasPermission evaluates a resource path against this grant.
func (g Grant) HasPermission(resourcePath string) bool {
	return HasPermission(g.Permissions, g.SuperAdmin, resourcePath)
}

// Resolver fetches permission grants from the gateway.
type Resolver struct {
	service identity.Service
	logger  zerolog.Logger
}

// ResolverOption defines a function type to modify the Resolver instance.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for degraded-fetch warnings.
func WithLogger(logger zerolog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func NewResolver(service identity.Service, options ...ResolverOption) *Resolver {
	resolver := &Resolver{
		service: service,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(resolver)
	}
	return resolver
}

// Fetch retrieves the grant for the identity behind accessToken. A fetch
// failure never invalidates an otherwise-valid session: the returned grant
// is empty and marked Degraded, and the failure is only logged. A permission
// outage should not lock users out of the application shell.
func (r *Resolver) Fetch(ctx context.Context, accessToken string) Grant {
	pg, err := r.service.Permissions(ctx, accessToken)
	if err != nil {
		r.logger.Warn().Err(err).Msg("permission fetch failed, continuing with empty grant")
		return Grant{Degraded: true}
	}

	return Grant{
		UserType:     pg.UserType,
		Permissions:  pg.Permissions,
		TenantAccess: pg.CustomerAccess,
		SuperAdmin:   pg.HasWildcard || IsSuperAdmin(pg.Permissions),
	}
}

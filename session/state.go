package session

import (
	"github.com/ringer-warp/portal-session/gatekeeper"
	"github.com/ringer-warp/portal-session/identity"
	"github.com/ringer-warp/portal-session/tenants"
)

// State is the externally visible session aggregate. It is created empty at
// process start, populated by Startup or Login, and fully reset on logout.
// Snapshots are value copies: a reader never observes a session mid-update,
// e.g. a new active tenant paired with a stale access set.
type State struct {
	CredentialPresent bool
	Authenticated     bool
	Identity          *identity.Identity
	Grant             gatekeeper.Grant
	ActiveTenant      *tenants.TenantAccess
	Loading           bool
}

// IsSuperAdmin reports whether the grant carries the global wildcard.
func (s State) IsSuperAdmin() bool {
	return s.Grant.SuperAdmin
}

// TenantAccess returns the customer accounts the identity may act within.
func (s State) TenantAccess() []tenants.TenantAccess {
	return s.Grant.TenantAccess
}

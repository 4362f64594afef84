package gatekeeper_test

import (
	"testing"

	"github.com/ringer-warp/portal-session/gatekeeper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesExact(t *testing.T) {
	assert.True(t, gatekeeper.Matches("/v1/customers", "/v1/customers"))
	assert.False(t, gatekeeper.Matches("/v1/customers", "/v1/customers/123"))
	assert.False(t, gatekeeper.Matches("/v1/customers", "/v1/vendors"))
}

func TestMatchesWildcardSuffix(t *testing.T) {
	pattern := "/v1/customers/*"

	assert.True(t, gatekeeper.Matches(pattern, "/v1/customers/123"))
	assert.True(t, gatekeeper.Matches(pattern, "/v1/customers/123/users"))

	// The base path itself is not covered by its own wildcard.
	assert.False(t, gatekeeper.Matches(pattern, "/v1/customers"))

	// The prefix must end at a path boundary.
	assert.False(t, gatekeeper.Matches(pattern, "/v1/customersabc"))
	assert.False(t, gatekeeper.Matches(pattern, "/v1/customersX/123"))
}

func TestMatchesGlobalWildcard(t *testing.T) {
	assert.True(t, gatekeeper.Matches("*", "/anything"))
	assert.True(t, gatekeeper.Matches("*", ""))
	assert.True(t, gatekeeper.Matches("*", "not-even-a-path"))
}

func TestMatchesNonTrailingStarIsLiteral(t *testing.T) {
	// "*" anywhere but the end is not a wildcard; the pattern only matches itself.
	assert.False(t, gatekeeper.Matches("/v1/*/users", "/v1/customers/users"))
	assert.True(t, gatekeeper.Matches("/v1/*/users", "/v1/*/users"))
}

func TestHasPermissionExactReflexive(t *testing.T) {
	permissions := []string{
		"/v1/customers",
		"/v1/trunks/*",
		"/v1/billing/invoices",
	}
	for _, perm := range permissions {
		assert.True(t, gatekeeper.HasPermission(permissions, false, perm), perm)
	}
}

func TestHasPermissionWildcardBoundary(t *testing.T) {
	permissions := []string{"/v1/customers/*"}

	assert.True(t, gatekeeper.HasPermission(permissions, false, "/v1/customers/123"))
	assert.True(t, gatekeeper.HasPermission(permissions, false, "/v1/customers/123/users"))
	assert.False(t, gatekeeper.HasPermission(permissions, false, "/v1/customers"))
	assert.False(t, gatekeeper.HasPermission(permissions, false, "/v1/customersabc"))
}

func TestHasPermissionSuperAdminShortCircuit(t *testing.T) {
	// Super admin grants everything, including inputs no pattern could match.
	for _, resourcePath := range []string{"/v1/anything", "", "no-leading-slash", "///", "/v1/*/users"} {
		assert.True(t, gatekeeper.HasPermission(nil, true, resourcePath), resourcePath)
	}
}

func TestHasPermissionNoMatch(t *testing.T) {
	permissions := []string{"/v1/trunks/*", "/v1/customers"}

	assert.False(t, gatekeeper.HasPermission(permissions, false, "/v1/billing"))
	assert.False(t, gatekeeper.HasPermission(nil, false, "/v1/billing"))
	assert.False(t, gatekeeper.HasPermission(permissions, false, ""))
}

func TestIsSuperAdmin(t *testing.T) {
	require.True(t, gatekeeper.IsSuperAdmin([]string{"/v1/trunks/*", "*"}))
	require.False(t, gatekeeper.IsSuperAdmin([]string{"/v1/trunks/*"}))
	require.False(t, gatekeeper.IsSuperAdmin(nil))

	// Only the bare "*" is the super-admin wildcard.
	require.False(t, gatekeeper.IsSuperAdmin([]string{"/v1/*"}))
}

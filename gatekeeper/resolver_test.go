package gatekeeper_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/ringer-warp/portal-session/gatekeeper"
	"github.com/ringer-warp/portal-session/identity"
	"github.com/ringer-warp/portal-session/identity/servicefake"
	"github.com/ringer-warp/portal-session/tenants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverFetch(t *testing.T) {
	customerID := uuid.New()
	service := servicefake.NewFakeService()
	service.PermissionsFunc = func(ctx context.Context, accessToken string) (*identity.PermissionGrant, error) {
		require.Equal(t, "A1", accessToken)
		return &identity.PermissionGrant{
			UserType:    "admin",
			Permissions: []string{"/v1/trunks/*"},
			CustomerAccess: []tenants.TenantAccess{
				{CustomerID: customerID, CustomerName: "Acme Telecom", BAN: "100200", Role: tenants.RoleAdmin},
			},
		}, nil
	}

	resolver := gatekeeper.NewResolver(service)
	grant := resolver.Fetch(context.Background(), "A1")

	assert.False(t, grant.Degraded)
	assert.False(t, grant.SuperAdmin)
	assert.Equal(t, "admin", grant.UserType)
	require.Len(t, grant.TenantAccess, 1)
	assert.Equal(t, customerID, grant.TenantAccess[0].CustomerID)
	assert.True(t, grant.HasPermission("/v1/trunks/5"))
	assert.False(t, grant.HasPermission("/v1/billing"))
}

func TestResolverFetchSuperAdmin(t *testing.T) {
	service := servicefake.NewFakeService()
	service.PermissionsFunc = func(ctx context.Context, accessToken string) (*identity.PermissionGrant, error) {
		return &identity.PermissionGrant{
			UserType:    "superadmin",
			HasWildcard: true,
			Permissions: []string{"*"},
		}, nil
	}

	grant := gatekeeper.NewResolver(service).Fetch(context.Background(), "A1")

	assert.True(t, grant.SuperAdmin)
	assert.True(t, grant.HasPermission("/absolutely/anything"))
}

func TestResolverFetchDegradesOnFailure(t *testing.T) {
	service := servicefake.NewFakeService()
	service.PermissionsFunc = func(ctx context.Context, accessToken string) (*identity.PermissionGrant, error) {
		return nil, errors.New("gateway unreachable")
	}

	grant := gatekeeper.NewResolver(service).Fetch(context.Background(), "A1")

	// A permission outage degrades; it never errors out of the resolver.
	assert.True(t, grant.Degraded)
	assert.Empty(t, grant.Permissions)
	assert.Empty(t, grant.TenantAccess)
	assert.False(t, grant.SuperAdmin)
	assert.False(t, grant.HasPermission("/v1/trunks/5"))
}

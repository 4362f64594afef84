package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ringer-warp/portal-session/assertion"
	"github.com/ringer-warp/portal-session/tenants"
)

// TokenPair mirrors the gateway's AuthTokens payload.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	UserType     string `json:"user_type"`
}

// PermissionGrant mirrors the gateway's /v1/gatekeeper/my-permissions payload.
type PermissionGrant struct {
	UserID         uuid.UUID              `json:"user_id"`
	Email          string                 `json:"email"`
	UserType       string                 `json:"user_type"`
	HasWildcard    bool                   `json:"has_wildcard_permission"`
	Permissions    []string               `json:"permissions"`
	CustomerAccess []tenants.TenantAccess `json:"customer_access"`
}

// Service is the boundary to the identity endpoints of the gateway.
//
// Validate resolves the identity behind an access token; any non-success is
// an error, never a panic or a partial result. Exchange converts a federated
// login assertion into a token pair, failing with *AuthenticationError when
// the gateway rejects it. Refresh trades a refresh token for a new pair; the
// gateway may echo the refresh token unchanged. Permissions fetches the
// permission set and customer-access list for the token's identity.
type Service interface {
	Validate(ctx context.Context, accessToken string) (*Identity, error)
	Exchange(ctx context.Context, a assertion.Assertion) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Permissions(ctx context.Context, accessToken string) (*PermissionGrant, error)
}

// AuthenticationError is a login exchange rejection carrying the gateway's
// error code and message. It is fatal to the attempted login only; the
// session stays (or returns to) unauthenticated.
type AuthenticationError struct {
	Code    string
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

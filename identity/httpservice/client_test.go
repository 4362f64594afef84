package httpservice_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/ringer-warp/portal-session/assertion"
	"github.com/ringer-warp/portal-session/identity"
	"github.com/ringer-warp/portal-session/identity/httpservice"
	apperrors "github.com/ringer-warp/portal-session/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(t *testing.T, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"success": true, "data": data})
	require.NoError(t, err)
	return raw
}

func errorEnvelope(t *testing.T, code, message string) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
	require.NoError(t, err)
	return raw
}

func TestValidate(t *testing.T) {
	userID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/auth/validate", r.URL.Path)
		assert.Equal(t, "Bearer A1", r.Header.Get("Authorization"))
		w.Write(envelope(t, map[string]any{
			"user_id":   userID.String(),
			"email":     "ops@ringer.tel",
			"user_type": "admin",
			"valid":     true,
		}))
	}))
	defer server.Close()

	ident, err := httpservice.New(server.URL).Validate(context.Background(), "A1")

	require.NoError(t, err)
	assert.Equal(t, userID, ident.ID)
	assert.Equal(t, "ops@ringer.tel", ident.Email)
	assert.Equal(t, "admin", ident.UserType)
}

func TestValidateRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write(errorEnvelope(t, "TOKEN_EXPIRED", "token expired"))
	}))
	defer server.Close()

	_, err := httpservice.New(server.URL).Validate(context.Background(), "A1")

	require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidateReportedInvalid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 with valid=false still means the token is unusable.
		w.Write(envelope(t, map[string]any{"valid": false}))
	}))
	defer server.Close()

	_, err := httpservice.New(server.URL).Validate(context.Background(), "A1")

	require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidateUnreachableGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := httpservice.New(server.URL).Validate(context.Background(), "A1")

	require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/exchange", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var a assertion.Assertion
		require.NoError(t, json.NewDecoder(r.Body).Decode(&a))
		assert.Equal(t, "g-123", a.GoogleID)
		assert.Equal(t, "ops@ringer.tel", a.Email)

		w.Write(envelope(t, map[string]any{
			"access_token":  "A1",
			"refresh_token": "R1",
			"token_type":    "Bearer",
			"expires_in":    3600,
			"user_id":       uuid.NewString(),
			"email":         a.Email,
			"user_type":     "admin",
		}))
	}))
	defer server.Close()

	pair, err := httpservice.New(server.URL).Exchange(context.Background(), assertion.Assertion{
		GoogleID: "g-123",
		Email:    "ops@ringer.tel",
		Name:     "Ops",
	})

	require.NoError(t, err)
	assert.Equal(t, "A1", pair.AccessToken)
	assert.Equal(t, "R1", pair.RefreshToken)
	assert.Equal(t, "admin", pair.UserType)
}

func TestExchangeRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write(errorEnvelope(t, "UNAUTHORIZED_DOMAIN", "only @ringer.tel addresses"))
	}))
	defer server.Close()

	_, err := httpservice.New(server.URL).Exchange(context.Background(), assertion.Assertion{
		GoogleID: "g-123",
		Email:    "a@other.com",
	})

	var authErr *identity.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "UNAUTHORIZED_DOMAIN", authErr.Code)
	assert.Equal(t, "only @ringer.tel addresses", authErr.Message)
}

func TestExchangeNonEnvelopeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream error</html>"))
	}))
	defer server.Close()

	_, err := httpservice.New(server.URL).Exchange(context.Background(), assertion.Assertion{
		GoogleID: "g-123",
		Email:    "ops@ringer.tel",
	})

	var authErr *identity.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), authErr.Code)
}

func TestRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/refresh", r.URL.Path)

		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "R1", body.RefreshToken)

		w.Write(envelope(t, map[string]any{
			"access_token":  "A2",
			"refresh_token": "R1",
		}))
	}))
	defer server.Close()

	pair, err := httpservice.New(server.URL).Refresh(context.Background(), "R1")

	require.NoError(t, err)
	assert.Equal(t, "A2", pair.AccessToken)
	assert.Equal(t, "R1", pair.RefreshToken)
}

func TestRefreshRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write(errorEnvelope(t, "REFRESH_TOKEN_EXPIRED", "refresh token expired"))
	}))
	defer server.Close()

	_, err := httpservice.New(server.URL).Refresh(context.Background(), "R1")

	require.ErrorIs(t, err, apperrors.ErrRefreshFailed)
}

func TestPermissions(t *testing.T) {
	customerID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/gatekeeper/my-permissions", r.URL.Path)
		assert.Equal(t, "Bearer A1", r.Header.Get("Authorization"))
		w.Write(envelope(t, map[string]any{
			"user_id":                 uuid.NewString(),
			"email":                   "ops@ringer.tel",
			"user_type":               "admin",
			"has_wildcard_permission": false,
			"permissions":             []string{"/v1/trunks/*", "/v1/customers"},
			"customer_access": []map[string]any{
				{
					"customer_id":   customerID.String(),
					"customer_name": "Acme Telecom",
					"ban":           "100200",
					"role":          "ADMIN",
				},
			},
		}))
	}))
	defer server.Close()

	grant, err := httpservice.New(server.URL).Permissions(context.Background(), "A1")

	require.NoError(t, err)
	assert.Equal(t, "admin", grant.UserType)
	assert.False(t, grant.HasWildcard)
	assert.Equal(t, []string{"/v1/trunks/*", "/v1/customers"}, grant.Permissions)
	require.Len(t, grant.CustomerAccess, 1)
	assert.Equal(t, customerID, grant.CustomerAccess[0].CustomerID)
	assert.Equal(t, "100200", grant.CustomerAccess[0].BAN)
}

func TestPermissionsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(errorEnvelope(t, "INTERNAL", "boom"))
	}))
	defer server.Close()

	_, err := httpservice.New(server.URL).Permissions(context.Background(), "A1")

	require.Error(t, err)
}

func TestBaseURLTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/validate", r.URL.Path)
		w.Write(envelope(t, map[string]any{
			"user_id": uuid.NewString(),
			"valid":   true,
		}))
	}))
	defer server.Close()

	_, err := httpservice.New(server.URL + "/").Validate(context.Background(), "A1")

	require.NoError(t, err)
}

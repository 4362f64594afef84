package httpservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/ringer-warp/portal-session/assertion"
	"github.com/ringer-warp/portal-session/identity"
	apperrors "github.com/ringer-warp/portal-session/internal/errors"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

var _ identity.Service = (*Client)(nil)

// Client speaks the gateway's {success, data, error} envelope over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient replaces the default client (e.g. to change the timeout).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL string, options ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

// Validate resolves the identity behind accessToken. Every failure mode —
// rejection, timeout, malformed response — reports ErrTokenInvalid so the
// caller's only branch is "valid or not".
func (c *Client) Validate(ctx context.Context, accessToken string) (*identity.Identity, error) {
	var payload struct {
		UserID   string `json:"user_id"`
		Email    string `json:"email"`
		UserType string `json:"user_type"`
		Valid    bool   `json:"valid"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/validate", accessToken, nil, &payload); err != nil {
		c.logger.Debug().Err(err).Msg("token validation failed")
		return nil, apperrors.Wrapf(apperrors.ErrTokenInvalid, "[Client.Validate] %s", err)
	}
	if !payload.Valid {
		return nil, apperrors.Wrapf(apperrors.ErrTokenInvalid, "[Client.Validate] gateway reported invalid")
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrTokenInvalid, "[Client.Validate] user id %q", payload.UserID)
	}
	return &identity.Identity{
		ID:       userID,
		Email:    payload.Email,
		UserType: payload.UserType,
	}, nil
}

// Exchange converts a federated login assertion into a token pair. Gateway
// rejections surface as *identity.AuthenticationError with the server's code
// and message; transport failures stay plain errors.
func (c *Client) Exchange(ctx context.Context, a assertion.Assertion) (*identity.TokenPair, error) {
	var pair identity.TokenPair
	err := c.do(ctx, http.MethodPost, "/auth/exchange", "", a, &pair)
	if err != nil {
		var rej *rejection
		if errors.As(err, &rej) {
			return nil, &identity.AuthenticationError{Code: rej.code, Message: rej.message}
		}
		return nil, errors.Wrap(err, "[Client.Exchange]")
	}
	return &pair, nil
}

// Refresh trades refreshToken for a new token pair. Any failure reports
// ErrRefreshFailed.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*identity.TokenPair, error) {
	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}

	var pair identity.TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", body, &pair); err != nil {
		c.logger.Debug().Err(err).Msg("token refresh failed")
		return nil, apperrors.Wrapf(apperrors.ErrRefreshFailed, "[Client.Refresh] %s", err)
	}
	return &pair, nil
}

// Permissions fetches the permission set and customer-access list for the
// identity behind accessToken.
func (c *Client) Permissions(ctx context.Context, accessToken string) (*identity.PermissionGrant, error) {
	var grant identity.PermissionGrant
	if err := c.do(ctx, http.MethodGet, "/v1/gatekeeper/my-permissions", accessToken, nil, &grant); err != nil {
		return nil, errors.Wrap(err, "[Client.Permissions]")
	}
	return &grant, nil
}

// rejection is a non-2xx gateway response that carried an error envelope.
type rejection struct {
	status  int
	code    string
	message string
}

func (r *rejection) Error() string {
	return fmt.Sprintf("gateway rejected request (%d %s): %s", r.status, r.code, r.message)
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *apiError       `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] marshal body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "[Client.do] new request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "[Client.do] round trip")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(err, "[Client.do] read body")
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode >= http.StatusMultipleChoices {
			return &rejection{status: resp.StatusCode, code: http.StatusText(resp.StatusCode)}
		}
		return errors.Wrap(err, "[Client.do] decode envelope")
	}

	if resp.StatusCode >= http.StatusMultipleChoices || !envelope.Success {
		rej := &rejection{status: resp.StatusCode, code: http.StatusText(resp.StatusCode)}
		if envelope.Error != nil {
			rej.code = envelope.Error.Code
			rej.message = envelope.Error.Message
		}
		return rej
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.Wrap(err, "[Client.do] decode data")
		}
	}
	return nil
}

package token

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/ringer-warp/portal-session/assertion"
	"github.com/ringer-warp/portal-session/credentials"
	"github.com/ringer-warp/portal-session/identity"
	apperrors "github.com/ringer-warp/portal-session/internal/errors"
	"github.com/rs/zerolog"
)

// Manager drives the credential lifecycle. It is the only writer of the
// credential store and the only caller of the gateway's token endpoints;
// everything else reads the credential through it.
type Manager struct {
	service identity.Service
	repo    credentials.Repo
	logger  zerolog.Logger
	nowTime func() time.Time // nowTime function (injectable for testing)
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager initializes a new Manager with required dependencies.
func NewManager(service identity.Service, repo credentials.Repo, options ...ManagerOption) (*Manager, error) {
	if service == nil {
		return nil, errors.New("[NewManager] identity service is required")
	}
	if repo == nil {
		return nil, errors.New("[NewManager] credential repo is required")
	}

	manager := &Manager{
		service: service,
		repo:    repo,
		logger:  zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(manager)
	}
	return manager, nil
}

// Load returns the stored credential, reporting absence when storage is
// empty or unavailable.
func (m *Manager) Load() (credentials.Credential, bool) {
	return m.repo.Load()
}

// Validate resolves the identity behind an access token. Any failure —
// gateway rejection, network error, or a token that is locally known to be
// expired — reports ErrTokenInvalid; recovery is the caller's refresh step.
func (m *Manager) Validate(ctx context.Context, accessToken string) (*identity.Identity, error) {
	if accessToken == "" {
		return nil, apperrors.Wrapf(apperrors.ErrTokenInvalid, "[Manager.Validate] empty token")
	}
	if expiredLocally(accessToken, m.nowTime()) {
		m.logger.Debug().Msg("access token expired locally, skipping validate call")
		return nil, apperrors.Wrapf(apperrors.ErrTokenInvalid, "[Manager.Validate] token expired")
	}
	ident, err := m.service.Validate(ctx, accessToken)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrTokenInvalid, "[Manager.Validate] %s", err)
	}
	return ident, nil
}

// Refresh exchanges the stored refresh token for a fresh credential and
// persists it. The gateway may echo the refresh token unchanged; an empty
// rotated token keeps the stored one.
func (m *Manager) Refresh(ctx context.Context) (credentials.Credential, error) {
	cred, ok := m.repo.Load()
	if !ok || cred.RefreshToken == "" {
		return credentials.Credential{}, apperrors.Wrapf(apperrors.ErrRefreshFailed, "[Manager.Refresh] no refresh token")
	}

	pair, err := m.service.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		return credentials.Credential{}, apperrors.Wrapf(apperrors.ErrRefreshFailed, "[Manager.Refresh] %s", err)
	}

	next := credentials.Credential{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = cred.RefreshToken
	}

	if err := m.repo.Save(next); err != nil {
		// The session continues in memory; only the restart experience suffers.
		m.logger.Warn().Err(err).Msg("failed to persist refreshed credential")
	}
	return next, nil
}

// Exchange converts a federated login assertion into a credential pair and
// persists it. Gateway rejections surface as *identity.AuthenticationError.
func (m *Manager) Exchange(ctx context.Context, a assertion.Assertion) (credentials.Credential, *identity.Identity, error) {
	if err := a.Validate(); err != nil {
		return credentials.Credential{}, nil, &identity.AuthenticationError{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		}
	}

	pair, err := m.service.Exchange(ctx, a)
	if err != nil {
		return credentials.Credential{}, nil, errors.Wrap(err, "[Manager.Exchange]")
	}

	cred := credentials.Credential{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
	if err := m.repo.Save(cred); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist exchanged credential")
	}

	return cred, identityFromPair(pair), nil
}

// Clear drops the persisted credential. Used by logout and by the global
// 401 circuit breaker.
func (m *Manager) Clear() error {
	if err := m.repo.Clear(); err != nil {
		return errors.Wrap(err, "[Manager.Clear]")
	}
	return nil
}

// Attach stamps the bearer credential onto an outgoing request. An empty
// token leaves the request untouched.
func Attach(req *http.Request, accessToken string) {
	if accessToken == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
}

func identityFromPair(pair *identity.TokenPair) *identity.Identity {
	ident := &identity.Identity{
		Email:    pair.Email,
		UserType: pair.UserType,
	}
	// The exchange response carries the user id as a string; a gateway that
	// sends something unparseable still yields a usable identity.
	if userID, err := uuid.Parse(pair.UserID); err == nil {
		ident.ID = userID
	}
	return ident
}

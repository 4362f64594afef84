package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/ringer-warp/portal-session/assertion"
	"github.com/ringer-warp/portal-session/credentials"
	"github.com/ringer-warp/portal-session/gatekeeper"
	"github.com/ringer-warp/portal-session/identity"
	apperrors "github.com/ringer-warp/portal-session/internal/errors"
	"github.com/ringer-warp/portal-session/tenants"
	"github.com/ringer-warp/portal-session/token"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Orchestrator owns the session lifecycle for a portal process: startup from
// persisted state, login, logout, tenant switching, and the outbound
// credential/tenant context every other component attaches to its own calls.
// It replaces the ambient session singleton of the portals with an explicit
// instance that consumers take a reference to.
type Orchestrator struct {
	manager    *token.Manager
	resolver   *gatekeeper.Resolver
	controller *tenants.Controller
	logger     zerolog.Logger

	flow sync.Mutex // serializes startup/login/logout so runs never interleave

	lock        sync.RWMutex
	state       State
	accessToken string
	generation  uint64 // bumped on every populate/clear; dedupes concurrent 401s

	onForcedLogout func()
}

// Option defines a function type to modify the Orchestrator instance.
type Option func(*Orchestrator)

// WithLogger sets the logger for lifecycle transitions.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// OnForcedLogout registers the hook invoked after a 401-triggered logout,
// typically a redirect to the login surface. It is called at most once per
// session, no matter how many in-flight calls came back unauthorized.
func OnForcedLogout(hook func()) Option {
	return func(o *Orchestrator) {
		o.onForcedLogout = hook
	}
}

// New initializes a new Orchestrator with required dependencies.
func New(manager *token.Manager, resolver *gatekeeper.Resolver, controller *tenants.Controller, options ...Option) (*Orchestrator, error) {
	if manager == nil {
		return nil, errors.New("[session.New] token manager is required")
	}
	if resolver == nil {
		return nil, errors.New("[session.New] permission resolver is required")
	}
	if controller == nil {
		return nil, errors.New("[session.New] tenant controller is required")
	}

	orchestrator := &Orchestrator{
		manager:    manager,
		resolver:   resolver,
		controller: controller,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(orchestrator)
	}
	return orchestrator, nil
}

// Startup restores a session from persisted state: validate the stored
// access token, refresh once if validation fails, then best-effort fetch the
// grant and restore the active tenant. An unusable credential ends in a
// clean unauthenticated state with a nil error; Startup itself never fails.
func (o *Orchestrator) Startup(ctx context.Context) error {
	o.flow.Lock()
	defer o.flow.Unlock()

	o.setLoading(true)
	defer o.setLoading(false)

	cred, ok := o.manager.Load()
	if !ok {
		o.logger.Debug().Msg("no stored credential, starting unauthenticated")
		o.replaceState(State{}, "")
		return nil
	}

	ident, err := o.manager.Validate(ctx, cred.AccessToken)
	if err != nil {
		o.logger.Info().Msg("stored access token invalid, attempting refresh")
		refreshed, refreshErr := o.manager.Refresh(ctx)
		if refreshErr != nil {
			o.logger.Info().Err(refreshErr).Msg("refresh failed, clearing session")
			o.clearAll()
			return nil
		}
		cred = refreshed
		if ident, err = o.manager.Validate(ctx, cred.AccessToken); err != nil {
			o.logger.Info().Err(err).Msg("refreshed token failed validation, clearing session")
			o.clearAll()
			return nil
		}
	}

	o.establish(ctx, cred, ident)
	return nil
}

// Login runs the federated exchange and, on success, populates the session
// the same way startup does. A rejected exchange surfaces as
// *identity.AuthenticationError and leaves the previous state untouched;
// there is no partially populated session.
func (o *Orchestrator) Login(ctx context.Context, a assertion.Assertion) error {
	o.flow.Lock()
	defer o.flow.Unlock()

	o.setLoading(true)
	defer o.setLoading(false)

	cred, ident, err := o.manager.Exchange(ctx, a)
	if err != nil {
		return errors.Wrap(err, "[Orchestrator.Login] exchange")
	}

	o.establish(ctx, cred, ident)
	o.logger.Info().Str("email", ident.Email).Msg("login complete")
	return nil
}

// Logout synchronously clears the persisted credential, the identity, the
// grant, the active tenant, and the persisted tenant selection, in that
// order. It returns only once every store is empty; no component can observe
// a partially cleared session.
func (o *Orchestrator) Logout() {
	o.flow.Lock()
	defer o.flow.Unlock()
	o.clearAll()
}

// SelectTenant switches the active customer account. The id must be a member
// of the current tenant-access set.
func (o *Orchestrator) SelectTenant(id uuid.UUID) error {
	o.lock.RLock()
	authenticated := o.state.Authenticated
	accessSet := o.state.Grant.TenantAccess
	generation := o.generation
	o.lock.RUnlock()

	if !authenticated {
		return apperrors.ErrNotAuthenticated
	}

	var target *tenants.TenantAccess
	for i := range accessSet {
		if accessSet[i].CustomerID == id {
			target = &accessSet[i]
			break
		}
	}
	if target == nil {
		return apperrors.ErrTenantNotInSet
	}

	if err := o.controller.Select(accessSet, target); err != nil {
		return err
	}

	// Select notifies listeners, and a listener may tear the session down
	// (logout, 401 breaker). Writing the tenant onto a replaced session would
	// leave it dangling, so the write only lands on the generation it was
	// selected for.
	o.lock.Lock()
	if o.generation == generation && o.state.Authenticated {
		selected := *target
		o.state.ActiveTenant = &selected
	}
	o.lock.Unlock()
	return nil
}

// SubscribeTenantChanges registers a listener for tenant-changed broadcasts
// and returns its unsubscribe function. Listeners registered after a change
// should read Snapshot directly; there is no replay.
func (o *Orchestrator) SubscribeTenantChanges(listener tenants.Listener) func() {
	return o.controller.Subscribe(listener)
}

// Snapshot returns a point-in-time copy of the session state.
func (o *Orchestrator) Snapshot() State {
	o.lock.RLock()
	defer o.lock.RUnlock()

	snapshot := o.state
	if snapshot.Identity != nil {
		ident := *snapshot.Identity
		snapshot.Identity = &ident
	}
	if snapshot.ActiveTenant != nil {
		tenant := *snapshot.ActiveTenant
		snapshot.ActiveTenant = &tenant
	}
	snapshot.Grant.Permissions = append([]string(nil), snapshot.Grant.Permissions...)
	snapshot.Grant.TenantAccess = append([]tenants.TenantAccess(nil), snapshot.Grant.TenantAccess...)
	return snapshot
}

// HasPermission evaluates a resource path against the current permission
// snapshot. It is synchronous and safe for any number of concurrent callers.
func (o *Orchestrator) HasPermission(resourcePath string) bool {
	o.lock.RLock()
	defer o.lock.RUnlock()
	return o.state.Grant.HasPermission(resourcePath)
}

// AuthorizationValue returns the Authorization header value outbound calls
// should carry, or "" when unauthenticated.
func (o *Orchestrator) AuthorizationValue() string {
	o.lock.RLock()
	defer o.lock.RUnlock()
	if o.accessToken == "" {
		return ""
	}
	return "Bearer " + o.accessToken
}

// TenantValue returns the customer id outbound calls should carry for tenant
// scoping, or "" when no tenant is active.
func (o *Orchestrator) TenantValue() string {
	o.lock.RLock()
	defer o.lock.RUnlock()
	if o.state.ActiveTenant == nil {
		return ""
	}
	return o.state.ActiveTenant.CustomerID.String()
}

// TokenSource exposes the session's access token as an oauth2.TokenSource
// for collaborators that already speak that interface.
func (o *Orchestrator) TokenSource() oauth2.TokenSource {
	return tokenSource{orchestrator: o}
}

type tokenSource struct {
	orchestrator *Orchestrator
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	ts.orchestrator.lock.RLock()
	defer ts.orchestrator.lock.RUnlock()

	if !ts.orchestrator.state.Authenticated || ts.orchestrator.accessToken == "" {
		return nil, apperrors.ErrNotAuthenticated
	}
	return &oauth2.Token{
		AccessToken: ts.orchestrator.accessToken,
		TokenType:   "Bearer",
	}, nil
}

// establish runs the post-credential half of startup and login: best-effort
// grant fetch, tenant restore, then one atomic state replacement.
func (o *Orchestrator) establish(ctx context.Context, cred credentials.Credential, ident *identity.Identity) {
	grant := o.resolver.Fetch(ctx, cred.AccessToken)
	active := o.controller.Restore(grant.TenantAccess)

	o.replaceState(State{
		CredentialPresent: true,
		Authenticated:     true,
		Identity:          ident,
		Grant:             grant,
		ActiveTenant:      active,
	}, cred.AccessToken)

	o.logger.Info().
		Str("email", ident.Email).
		Bool("super_admin", grant.SuperAdmin).
		Bool("degraded", grant.Degraded).
		Int("tenants", len(grant.TenantAccess)).
		Msg("session established")
}

func (o *Orchestrator) clearAll() {
	if err := o.manager.Clear(); err != nil {
		o.logger.Warn().Err(err).Msg("failed to clear stored credential")
	}
	o.replaceState(State{}, "")
	o.controller.Clear()
}

func (o *Orchestrator) replaceState(next State, accessToken string) {
	o.lock.Lock()
	next.Loading = o.state.Loading
	o.state = next
	o.accessToken = accessToken
	o.generation++
	o.lock.Unlock()
}

func (o *Orchestrator) setLoading(loading bool) {
	o.lock.Lock()
	o.state.Loading = loading
	o.lock.Unlock()
}

func (o *Orchestrator) currentGeneration() uint64 {
	o.lock.RLock()
	defer o.lock.RUnlock()
	return o.generation
}

// handleUnauthorized is the global 401 circuit breaker: the credential is
// known bad, so a retry cannot succeed and the only move is a full logout.
// It acts at most once per session generation — concurrent 401s from
// in-flight calls collapse into a single clear and a single hook invocation.
func (o *Orchestrator) handleUnauthorized(generation uint64) {
	o.flow.Lock()

	o.lock.RLock()
	stale := generation != o.generation || !o.state.Authenticated
	o.lock.RUnlock()
	if stale {
		o.flow.Unlock()
		return
	}

	o.logger.Warn().Msg("unauthorized response, forcing logout")
	o.clearAll()
	hook := o.onForcedLogout
	o.flow.Unlock()

	if hook != nil {
		hook()
	}
}

package servicefake

import (
	"context"
	"sync"

	"github.com/ringer-warp/portal-session/assertion"
	"github.com/ringer-warp/portal-session/identity"
	apperrors "github.com/ringer-warp/portal-session/internal/errors"
)

var _ identity.Service = (*FakeService)(nil)

// FakeService is a scriptable identity service for tests. Unset funcs fail
// the way the corresponding endpoint fails.
type FakeService struct {
	ValidateFunc    func(ctx context.Context, accessToken string) (*identity.Identity, error)
	ExchangeFunc    func(ctx context.Context, a assertion.Assertion) (*identity.TokenPair, error)
	RefreshFunc     func(ctx context.Context, refreshToken string) (*identity.TokenPair, error)
	PermissionsFunc func(ctx context.Context, accessToken string) (*identity.PermissionGrant, error)

	lock             sync.Mutex
	validateCalls    int
	exchangeCalls    int
	refreshCalls     int
	permissionsCalls int
}

func NewFakeService() *FakeService {
	return &FakeService{}
}

func (fs *FakeService) Validate(ctx context.Context, accessToken string) (*identity.Identity, error) {
	fs.count(&fs.validateCalls)
	if fs.ValidateFunc == nil {
		return nil, apperrors.ErrTokenInvalid
	}
	return fs.ValidateFunc(ctx, accessToken)
}

func (fs *FakeService) Exchange(ctx context.Context, a assertion.Assertion) (*identity.TokenPair, error) {
	fs.count(&fs.exchangeCalls)
	if fs.ExchangeFunc == nil {
		return nil, &identity.AuthenticationError{Code: "NOT_SCRIPTED", Message: "exchange not scripted"}
	}
	return fs.ExchangeFunc(ctx, a)
}

func (fs *FakeService) Refresh(ctx context.Context, refreshToken string) (*identity.TokenPair, error) {
	fs.count(&fs.refreshCalls)
	if fs.RefreshFunc == nil {
		return nil, apperrors.ErrRefreshFailed
	}
	return fs.RefreshFunc(ctx, refreshToken)
}

func (fs *FakeService) Permissions(ctx context.Context, accessToken string) (*identity.PermissionGrant, error) {
	fs.count(&fs.permissionsCalls)
	if fs.PermissionsFunc == nil {
		return nil, apperrors.Wrapf(apperrors.ErrNotAuthenticated, "permissions not scripted")
	}
	return fs.PermissionsFunc(ctx, accessToken)
}

func (fs *FakeService) ValidateCalls() int    { return fs.read(&fs.validateCalls) }
func (fs *FakeService) ExchangeCalls() int    { return fs.read(&fs.exchangeCalls) }
func (fs *FakeService) RefreshCalls() int     { return fs.read(&fs.refreshCalls) }
func (fs *FakeService) PermissionsCalls() int { return fs.read(&fs.permissionsCalls) }

func (fs *FakeService) count(counter *int) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	*counter++
}

func (fs *FakeService) read(counter *int) int {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return *counter
}

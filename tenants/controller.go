package tenants

import (
	"sync"

	apperrors "github.com/ringer-warp/portal-session/internal/errors"
	"github.com/rs/zerolog"
)

// Listener receives the newly active tenant, or nil when the selection is
// cleared. Broadcasts are fire-and-forget: only listeners registered at
// broadcast time are invoked, and there is no replay for late subscribers,
// which should read Active directly instead.
type Listener func(*TenantAccess)

// Controller tracks which customer account is currently selected, persists
// the selection, and fans out change notifications to page-level data loaders
// without knowing about them.
type Controller struct {
	repo   SelectionRepo
	logger zerolog.Logger

	lock        sync.RWMutex
	active      *TenantAccess
	subscribers map[int]Listener
	nextSubID   int
}

// ControllerOption defines a function type to modify the Controller instance.
type ControllerOption func(*Controller)

// WithLogger sets the logger used for persistence warnings.
func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func NewController(repo SelectionRepo, options ...ControllerOption) *Controller {
	controller := &Controller{
		repo:        repo,
		logger:      zerolog.Nop(),
		subscribers: make(map[int]Listener),
	}
	for _, opt := range options {
		opt(controller)
	}
	return controller
}

// Restore recovers the persisted selection against the current access set.
// A persisted id that is no longer in the set, or no persisted id at all,
// falls back to the first entry of the set; an empty set clears the
// selection. The recovered selection is re-persisted so a stale id heals on
// the next restart.
func (c *Controller) Restore(accessSet []TenantAccess) *TenantAccess {
	var chosen *TenantAccess
	if id, ok := c.repo.Load(); ok {
		for i := range accessSet {
			if accessSet[i].CustomerID == id {
				chosen = &accessSet[i]
				break
			}
		}
	}
	if chosen == nil && len(accessSet) > 0 {
		chosen = &accessSet[0]
	}

	c.apply(chosen)
	return copyTenant(chosen)
}

// Select makes tenant the active selection, persists it, and notifies
// subscribers. A nil tenant clears the selection. A tenant that is not a
// member of accessSet is rejected with ErrTenantNotInSet: selecting an
// inaccessible customer is a logic error, not a state transition.
func (c *Controller) Select(accessSet []TenantAccess, tenant *TenantAccess) error {
	if tenant != nil {
		var member *TenantAccess
		for i := range accessSet {
			if accessSet[i].CustomerID == tenant.CustomerID {
				member = &accessSet[i]
				break
			}
		}
		if member == nil {
			return apperrors.ErrTenantNotInSet
		}
		tenant = member
	}

	c.apply(tenant)
	return nil
}

// Active returns a copy of the current selection, or nil.
func (c *Controller) Active() *TenantAccess {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return copyTenant(c.active)
}

// Subscribe registers a listener for tenant changes and returns its
// unsubscribe function.
func (c *Controller) Subscribe(listener Listener) func() {
	c.lock.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = listener
	c.lock.Unlock()

	return func() {
		c.lock.Lock()
		delete(c.subscribers, id)
		c.lock.Unlock()
	}
}

// Clear drops the selection and its persisted id. Used by logout.
func (c *Controller) Clear() {
	c.apply(nil)
}

func (c *Controller) apply(tenant *TenantAccess) {
	c.lock.Lock()
	c.active = copyTenant(tenant)

	// Persisted under the lock so the stored id never disagrees with active
	// when selects race.
	if tenant == nil {
		if err := c.repo.Clear(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to clear persisted tenant selection")
		}
	} else {
		if err := c.repo.Save(tenant.CustomerID); err != nil {
			c.logger.Warn().Err(err).Msg("failed to persist tenant selection")
		}
	}

	listeners := make([]Listener, 0, len(c.subscribers))
	for _, listener := range c.subscribers {
		listeners = append(listeners, listener)
	}
	c.lock.Unlock()

	// Listeners run outside the lock; each gets its own copy.
	for _, listener := range listeners {
		listener(copyTenant(tenant))
	}
}

func copyTenant(tenant *TenantAccess) *TenantAccess {
	if tenant == nil {
		return nil
	}
	cp := *tenant
	return &cp
}

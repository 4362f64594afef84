package tenants

import "github.com/google/uuid"

// SelectionRepo persists the last-selected customer id across process
// restarts. Load reports absence for an empty or unreadable store.
type SelectionRepo interface {
	Load() (uuid.UUID, bool)
	Save(uuid.UUID) error
	Clear() error
}

package repofake

import (
	"sync"

	"github.com/google/uuid"
	"github.com/ringer-warp/portal-session/tenants"
)

var _ tenants.SelectionRepo = (*FakeSelectionRepo)(nil)

type FakeSelectionRepo struct {
	lock    sync.RWMutex
	id      uuid.UUID
	present bool
}

func NewFakeSelectionRepo() *FakeSelectionRepo {
	return &FakeSelectionRepo{}
}

// Seed pre-loads a persisted selection, as if left by a previous process.
func (fr *FakeSelectionRepo) Seed(id uuid.UUID) {
	fr.lock.Lock()
	defer fr.lock.Unlock()
	fr.id = id
	fr.present = true
}

func (fr *FakeSelectionRepo) Load() (uuid.UUID, bool) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()
	if !fr.present {
		return uuid.Nil, false
	}
	return fr.id, true
}

func (fr *FakeSelectionRepo) Save(id uuid.UUID) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()
	fr.id = id
	fr.present = true
	return nil
}

func (fr *FakeSelectionRepo) Clear() error {
	fr.lock.Lock()
	defer fr.lock.Unlock()
	fr.id = uuid.Nil
	fr.present = false
	return nil
}

package repofake

import (
	"sync"

	"github.com/ringer-warp/portal-session/credentials"
)

var _ credentials.Repo = (*FakeCredentialRepo)(nil)

type FakeCredentialRepo struct {
	lock    sync.RWMutex
	cred    credentials.Credential
	present bool

	// Unavailable simulates unreachable storage: Load reports absent and
	// Save/Clear return SaveErr/ClearErr if set.
	Unavailable bool
	SaveErr     error
	ClearErr    error
}

func NewFakeCredentialRepo() *FakeCredentialRepo {
	return &FakeCredentialRepo{}
}

func (fr *FakeCredentialRepo) Load() (credentials.Credential, bool) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()

	if fr.Unavailable || !fr.present {
		return credentials.Credential{}, false
	}
	return fr.cred, true
}

func (fr *FakeCredentialRepo) Save(cred credentials.Credential) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	if fr.SaveErr != nil {
		return fr.SaveErr
	}
	fr.cred = cred
	fr.present = true
	return nil
}

func (fr *FakeCredentialRepo) Clear() error {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	if fr.ClearErr != nil {
		return fr.ClearErr
	}
	fr.cred = credentials.Credential{}
	fr.present = false
	return nil
}

package filerepo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/ringer-warp/portal-session/tenants"
)

const selectionFile = "active_tenant"

var _ tenants.SelectionRepo = (*FileRepo)(nil)

// FileRepo persists the selected customer id as a plain text file in the data
// folder. The selection is not a secret, unlike the credential pair.
type FileRepo struct {
	path string
}

func New(folder string) (*FileRepo, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[filerepo.New] create data folder")
	}
	return &FileRepo{path: filepath.Join(folder, selectionFile)}, nil
}

func (fr *FileRepo) Load() (uuid.UUID, bool) {
	raw, err := os.ReadFile(fr.path)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimSpace(string(raw)))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (fr *FileRepo) Save(id uuid.UUID) error {
	if err := os.WriteFile(fr.path, []byte(id.String()+"\n"), 0o600); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] write selection file")
	}
	return nil
}

func (fr *FileRepo) Clear() error {
	if err := os.Remove(fr.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileRepo.Clear] remove selection file")
	}
	return nil
}

package filerepo

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/ringer-warp/portal-session/credentials"
	"golang.org/x/crypto/chacha20poly1305"
)

const credentialFile = "credential.bin"

var _ credentials.Repo = (*FileRepo)(nil)

// FileRepo persists the credential pair in the data folder, optionally sealed
// with XChaCha20-Poly1305. The stored layout is nonce || ciphertext.
type FileRepo struct {
	path string
	aead cipher.AEAD // nil means the credential is stored as plain JSON
}

// New creates the data folder if needed. key must be nil (plaintext storage)
// or exactly 32 bytes.
func New(folder string, key []byte) (*FileRepo, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[filerepo.New] create data folder")
	}

	fr := &FileRepo{path: filepath.Join(folder, credentialFile)}
	if len(key) > 0 {
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, errors.Wrap(err, "[filerepo.New] credential key")
		}
		fr.aead = aead
	}
	return fr, nil
}

func (fr *FileRepo) Load() (credentials.Credential, bool) {
	raw, err := os.ReadFile(fr.path)
	if err != nil {
		return credentials.Credential{}, false
	}

	if fr.aead != nil {
		nonceSize := fr.aead.NonceSize()
		if len(raw) < nonceSize {
			return credentials.Credential{}, false
		}
		raw, err = fr.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
		if err != nil {
			return credentials.Credential{}, false
		}
	}

	var cred credentials.Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return credentials.Credential{}, false
	}
	return cred, cred.Present()
}

func (fr *FileRepo) Save(cred credentials.Credential) error {
	raw, err := json.Marshal(cred)
	if err != nil {
		return errors.Wrap(err, "[FileRepo.Save] marshal credential")
	}

	if fr.aead != nil {
		nonce := make([]byte, fr.aead.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return errors.Wrap(err, "[FileRepo.Save] nonce")
		}
		raw = fr.aead.Seal(nonce, nonce, raw, nil)
	}

	if err := os.WriteFile(fr.path, raw, 0o600); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] write credential file")
	}
	return nil
}

func (fr *FileRepo) Clear() error {
	if err := os.Remove(fr.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileRepo.Clear] remove credential file")
	}
	return nil
}

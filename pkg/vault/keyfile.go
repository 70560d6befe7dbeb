// Package vault keeps an access key on disk, sealed with a passphrase.
package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/voidshard/sfin/pkg/crypto"
)

const version = 1

type keyfile struct {
	Version int    `json:"version"`
	Salt    string `json:"salt"`
	Sealed  string `json:"sealed"`
}

// Write seals accessKey with passphrase and writes it to path, readable only
// by the current user.
func Write(path, accessKey, passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("a passphrase is required to write %s", path)
	}

	salt, err := crypto.NewRandomKey()
	if err != nil {
		return err
	}

	sealed, err := crypto.DeriveKeys(passphrase, salt).Encrypt([]byte(accessKey))
	if err != nil {
		return err
	}

	data, err := json.Marshal(&keyfile{Version: version, Salt: salt, Sealed: sealed})
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), 0700)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Read opens a keyfile written by Write.
func Read(path, passphrase string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	kf := &keyfile{}
	err = json.Unmarshal(data, kf)
	if err != nil {
		return "", fmt.Errorf("keyfile %s is corrupt: %w", path, err)
	}
	if kf.Version != version {
		return "", fmt.Errorf("keyfile %s has unsupported version %d", path, kf.Version)
	}

	plain, err := crypto.DeriveKeys(passphrase, kf.Salt).Decrypt(kf.Sealed)
	if err != nil {
		return "", fmt.Errorf("unable to open keyfile %s: %w", path, err)
	}

	return string(plain), nil
}

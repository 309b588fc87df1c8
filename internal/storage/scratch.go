package storage

import (
	"os"
	"path/filepath"
	"strings"
)

// Keys for the ephemeral checkout state, mirroring the two
// pending-payment entries the web client keeps in browser storage.
const (
	KeyPendingSubscriptionID    = "pending_subscription_id"
	KeyPendingSubscriptionToken = "pending_subscription_token"
)

// Scratch is a flat-file key/value store for short-lived client state.
// One file per key under a private directory; values are plain strings.
type Scratch struct {
	dir string
}

func NewScratch(dir string) *Scratch {
	return &Scratch{dir: dir}
}

// Get returns the stored value and whether the key exists.
func (s *Scratch) Get(key string) (string, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// Set writes the value, creating the scratch directory on first use.
func (s *Scratch) Set(key, value string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path(key), []byte(value), 0o600)
}

// Delete removes the key; deleting an absent key is not an error.
func (s *Scratch) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Scratch) path(key string) string {
	return filepath.Join(s.dir, key)
}

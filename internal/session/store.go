package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gearhub-client/internal/api"
	xerrors "gearhub-client/internal/pkg/errors"

	"github.com/99designs/keyring"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// authKey is the single persisted session blob, the client-side
// equivalent of the browser's "auth" storage entry.
const authKey = "auth"

type Role struct {
	Name string `json:"name"`
}

type User struct {
	ID      int64                  `json:"id"`
	Email   string                 `json:"email"`
	Role    Role                   `json:"role"`
	Profile map[string]interface{} `json:"profile,omitempty"`
}

type authBlob struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Store is the single source of truth for "who is logged in". It
// satisfies api.TokenSource, so every outgoing request reads the
// bearer token through it.
type Store struct {
	mu      sync.RWMutex
	user    *User
	token   string
	loading bool

	ring         keyring.Keyring
	fallbackPath string
	logger       *zap.Logger
}

// OpenKeyring opens the OS keyring, falling back to an encrypted file
// backend under dir when no system keychain is available.
func OpenKeyring(serviceName, dir string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(dir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt(serviceName + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// NewStore creates an unauthenticated store. fallbackPath is a plain
// JSON file used when the keyring write itself fails.
func NewStore(ring keyring.Keyring, fallbackPath string, logger *zap.Logger) *Store {
	return &Store{
		ring:         ring,
		fallbackPath: fallbackPath,
		logger:       logger,
	}
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current user, or nil when logged out.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsLoggedIn is defined as user != nil && token != ""; there is no
// intermediate authenticated state.
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

// Loading reports whether a login request is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Login authenticates against the backend, updates in-memory state
// synchronously on success, and persists the session blob.
func (s *Store) Login(ctx context.Context, client *api.Client, email, password string) (*User, error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	var raw json.RawMessage
	err := client.Post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &raw)
	if err != nil {
		return nil, err
	}

	var blob authBlob
	if err := api.DecodeItem(raw, &blob); err != nil {
		return nil, xerrors.Wrap(err, "decoding login response")
	}
	if blob.User == nil || blob.Token == "" {
		return nil, xerrors.ErrBadResponse
	}

	s.mu.Lock()
	s.user = blob.User
	s.token = blob.Token
	s.mu.Unlock()

	if err := s.persist(blob); err != nil {
		s.logger.Warn("persisting session failed", zap.Error(err))
	}
	return blob.User, nil
}

// Logout clears in-memory state and every persisted copy.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.ring.Remove(authKey); err != nil && err != keyring.ErrKeyNotFound {
		s.logger.Warn("removing session from keyring failed", zap.Error(err))
	}
	if s.fallbackPath != "" {
		_ = os.Remove(s.fallbackPath)
	}
}

// Rehydrate restores the session from persisted storage, keyring
// first, fallback file second. It never touches the network; an
// absent, malformed, or expired blob leaves the store unauthenticated.
func (s *Store) Rehydrate() {
	blob, ok := s.load()
	if !ok {
		return
	}
	if blob.User == nil || blob.Token == "" {
		return
	}
	if tokenExpired(blob.Token) {
		s.logger.Info("persisted session expired, discarding")
		s.Logout()
		return
	}

	s.mu.Lock()
	s.user = blob.User
	s.token = blob.Token
	s.mu.Unlock()
}

// SetGatewaySubscription records the gateway subscription id on the
// user's profile after a successful checkout and re-persists the blob.
func (s *Store) SetGatewaySubscription(id string) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	if s.user.Profile == nil {
		s.user.Profile = make(map[string]interface{})
	}
	s.user.Profile["gateway_subscription_id"] = id
	blob := authBlob{Token: s.token, User: s.user}
	s.mu.Unlock()

	if err := s.persist(blob); err != nil {
		s.logger.Warn("persisting session failed", zap.Error(err))
	}
}

func (s *Store) persist(blob authBlob) error {
	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	if err := s.ring.Set(keyring.Item{Key: authKey, Data: data}); err == nil {
		return nil
	} else {
		s.logger.Debug("keyring write failed, using fallback file", zap.Error(err))
	}
	if s.fallbackPath == "" {
		return fmt.Errorf("no fallback session path configured")
	}
	if err := os.MkdirAll(filepath.Dir(s.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	return os.WriteFile(s.fallbackPath, data, 0o600)
}

func (s *Store) load() (authBlob, bool) {
	var blob authBlob

	if item, err := s.ring.Get(authKey); err == nil {
		if err := json.Unmarshal(item.Data, &blob); err == nil {
			return blob, true
		}
		s.logger.Warn("malformed session blob in keyring")
	}

	if s.fallbackPath == "" {
		return authBlob{}, false
	}
	data, err := os.ReadFile(s.fallbackPath)
	if err != nil {
		return authBlob{}, false
	}
	if err := json.Unmarshal(data, &blob); err != nil {
		s.logger.Warn("malformed session blob in fallback file")
		return authBlob{}, false
	}
	return blob, true
}

// tokenExpired checks the JWT exp claim without verifying the
// signature; verification is the backend's job. Tokens that do not
// parse as JWTs are treated as opaque and kept.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

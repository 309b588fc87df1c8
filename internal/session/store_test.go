package session_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"gearhub-client/internal/api"
	"gearhub-client/internal/session"
	"gearhub-client/internal/testserver"

	"github.com/99designs/keyring"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T, items ...keyring.Item) *session.Store {
	t.Helper()
	ring := keyring.NewArrayKeyring(items)
	path := filepath.Join(t.TempDir(), "auth.json")
	return session.NewStore(ring, path, zap.NewNop())
}

func authItem(t *testing.T, token string) keyring.Item {
	t.Helper()
	blob, err := json.Marshal(map[string]interface{}{
		"token": token,
		"user": session.User{
			ID:    1,
			Email: "vendor@example.com",
			Role:  session.Role{Name: "vendor"},
		},
	})
	require.NoError(t, err)
	return keyring.Item{Key: "auth", Data: blob}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestRehydrateValidBlob(t *testing.T) {
	store := newStore(t, authItem(t, signedToken(t, time.Now().Add(time.Hour))))

	// No network: rehydration reads persisted storage only.
	store.Rehydrate()

	assert.True(t, store.IsLoggedIn())
	require.NotNil(t, store.User())
	assert.Equal(t, "vendor@example.com", store.User().Email)
	assert.Equal(t, "vendor", store.User().Role.Name)
}

func TestRehydrateOpaqueTokenIsKept(t *testing.T) {
	store := newStore(t, authItem(t, "not-a-jwt"))
	store.Rehydrate()
	assert.True(t, store.IsLoggedIn())
}

func TestRehydrateNothingPersisted(t *testing.T) {
	store := newStore(t)
	store.Rehydrate()
	assert.False(t, store.IsLoggedIn())
	assert.Nil(t, store.User())
	assert.Empty(t, store.Token())
}

func TestRehydrateMalformedBlob(t *testing.T) {
	store := newStore(t, keyring.Item{Key: "auth", Data: []byte("{broken")})
	store.Rehydrate()
	assert.False(t, store.IsLoggedIn())
}

func TestRehydrateExpiredTokenDiscarded(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{
		authItem(t, signedToken(t, time.Now().Add(-time.Hour))),
	})
	store := session.NewStore(ring, filepath.Join(t.TempDir(), "auth.json"), zap.NewNop())

	store.Rehydrate()

	assert.False(t, store.IsLoggedIn())
	_, err := ring.Get("auth")
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound, "expired blob must be cleared from storage")
}

func TestLoginPersistsAndLogoutClears(t *testing.T) {
	srv := testserver.New()
	defer srv.Close()

	ring := keyring.NewArrayKeyring(nil)
	store := session.NewStore(ring, filepath.Join(t.TempDir(), "auth.json"), zap.NewNop())
	client := api.New(srv.URL(), store, 5*time.Second, zap.NewNop())

	user, err := store.Login(context.Background(), client, "vendor@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "vendor@example.com", user.Email)
	assert.True(t, store.IsLoggedIn())
	assert.Equal(t, testserver.Token, store.Token())
	assert.False(t, store.Loading())

	// The blob survives a restart.
	restarted := session.NewStore(ring, filepath.Join(t.TempDir(), "auth.json"), zap.NewNop())
	restarted.Rehydrate()
	assert.True(t, restarted.IsLoggedIn())

	store.Logout()
	assert.False(t, store.IsLoggedIn())
	_, err = ring.Get("auth")
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

func TestLoginRejectedLeavesStoreLoggedOut(t *testing.T) {
	srv := testserver.New()
	defer srv.Close()

	store := newStore(t)
	client := api.New(srv.URL(), store, 5*time.Second, zap.NewNop())

	_, err := store.Login(context.Background(), client, "vendor@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, api.IsStatus(err, 401))
	assert.False(t, store.IsLoggedIn())
}

func TestSetGatewaySubscription(t *testing.T) {
	store := newStore(t, authItem(t, signedToken(t, time.Now().Add(time.Hour))))
	store.Rehydrate()

	store.SetGatewaySubscription("sub_gw_42")

	require.NotNil(t, store.User())
	assert.Equal(t, "sub_gw_42", store.User().Profile["gateway_subscription_id"])
}

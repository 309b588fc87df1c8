package checkout_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gearhub-client/internal/api"
	"gearhub-client/internal/checkout"
	xerrors "gearhub-client/internal/pkg/errors"
	"gearhub-client/internal/resources"
	"gearhub-client/internal/session"
	"gearhub-client/internal/storage"
	"gearhub-client/internal/testserver"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type gatewayFunc func(ctx context.Context, sub resources.Subscription) error

func (f gatewayFunc) OpenCheckout(ctx context.Context, sub resources.Subscription) error {
	return f(ctx, sub)
}

type fixture struct {
	srv     *testserver.Server
	store   *session.Store
	scratch *storage.Scratch
	subs    *resources.Subscriptions
	states  []checkout.State
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := testserver.New()
	t.Cleanup(srv.Close)

	store := session.NewStore(keyring.NewArrayKeyring(nil),
		filepath.Join(t.TempDir(), "auth.json"), zap.NewNop())
	client := api.New(srv.URL(), store, 5*time.Second, zap.NewNop())

	_, err := store.Login(context.Background(), client, "vendor@example.com", "pw")
	require.NoError(t, err)

	return &fixture{
		srv:     srv,
		store:   store,
		scratch: storage.NewScratch(filepath.Join(t.TempDir(), "scratch")),
		subs:    resources.NewSubscriptions(client),
	}
}

func (f *fixture) poller(t *testing.T, gateway checkout.Gateway, timeout time.Duration) *checkout.Poller {
	t.Helper()
	if gateway == nil {
		gateway = gatewayFunc(func(context.Context, resources.Subscription) error { return nil })
	}
	p := checkout.New(f.subs, f.store, f.scratch, gateway, 10*time.Millisecond, timeout, zap.NewNop())
	p.OnState(func(s checkout.State) { f.states = append(f.states, s) })
	return p
}

func (f *fixture) assertPendingCleared(t *testing.T) {
	t.Helper()
	_, ok := f.scratch.Get(storage.KeyPendingSubscriptionID)
	assert.False(t, ok, "pending subscription id must be cleared")
	_, ok = f.scratch.Get(storage.KeyPendingSubscriptionToken)
	assert.False(t, ok, "pending subscription token must be cleared")
}

func TestCheckoutSucceedsOnActiveStatus(t *testing.T) {
	f := newFixture(t)
	f.srv.ScriptSubscriptionStatuses("created", "created", "ACTIVE")

	var pendingDuringGateway bool
	gateway := gatewayFunc(func(ctx context.Context, sub resources.Subscription) error {
		_, pendingDuringGateway = f.scratch.Get(storage.KeyPendingSubscriptionID)
		assert.NotEmpty(t, sub.GatewaySubscriptionID)
		return nil
	})

	outcome, err := f.poller(t, gateway, 2*time.Second).Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, checkout.StateSuccess, outcome.State)
	assert.Equal(t, "ACTIVE", outcome.Status)
	assert.True(t, pendingDuringGateway, "pending keys must exist while the gateway is open")
	f.assertPendingCleared(t)

	assert.Equal(t, []checkout.State{
		checkout.StateCreating,
		checkout.StateAwaitingGateway,
		checkout.StatePolling,
		checkout.StateSuccess,
	}, f.states)

	// The gateway subscription id lands on the session profile.
	require.NotNil(t, f.store.User())
	assert.Equal(t, "sub_gw_1", f.store.User().Profile["gateway_subscription_id"])
}

func TestCheckoutFailsOnTerminalFailureStatus(t *testing.T) {
	f := newFixture(t)
	f.srv.ScriptSubscriptionStatuses("created", "FAILED")

	outcome, err := f.poller(t, nil, 2*time.Second).Run(context.Background(), 1)
	require.ErrorIs(t, err, xerrors.ErrCheckoutFailed)

	assert.Equal(t, checkout.StateFailure, outcome.State)
	assert.Equal(t, "FAILED", outcome.Status)
	f.assertPendingCleared(t)
}

func TestCheckoutTimesOutWithoutTerminalStatus(t *testing.T) {
	f := newFixture(t)
	f.srv.ScriptSubscriptionStatuses("created")

	outcome, err := f.poller(t, nil, 80*time.Millisecond).Run(context.Background(), 1)
	require.ErrorIs(t, err, xerrors.ErrCheckoutFailed)

	assert.Equal(t, checkout.StateTimeout, outcome.State)
	assert.Equal(t, checkout.StateTimeout, f.states[len(f.states)-1])
	f.assertPendingCleared(t)
}

func TestPollErrorsAreRetriedNotFatal(t *testing.T) {
	f := newFixture(t)
	f.srv.ScriptSubscriptionStatuses("active")
	f.srv.FailNextStatusRequests(3)

	outcome, err := f.poller(t, nil, 2*time.Second).Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, checkout.StateSuccess, outcome.State)
}

func TestGatewayErrorFailsTheFlow(t *testing.T) {
	f := newFixture(t)

	gateway := gatewayFunc(func(context.Context, resources.Subscription) error {
		return errors.New("widget refused to open")
	})

	outcome, err := f.poller(t, gateway, 2*time.Second).Run(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, checkout.StateFailure, outcome.State)
	f.assertPendingCleared(t)
}

func TestCancelledContextFailsTheFlow(t *testing.T) {
	f := newFixture(t)
	f.srv.ScriptSubscriptionStatuses("created")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	outcome, err := f.poller(t, nil, 2*time.Second).Run(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, checkout.StateFailure, outcome.State)
	f.assertPendingCleared(t)
}

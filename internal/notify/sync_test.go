package notify_test

import (
	"context"
	"testing"
	"time"

	"gearhub-client/internal/api"
	"gearhub-client/internal/cache"
	"gearhub-client/internal/notify"
	"gearhub-client/internal/resources"
	"gearhub-client/internal/testserver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSync(t *testing.T) (*notify.Sync, *testserver.Server) {
	t.Helper()
	srv := testserver.New()
	t.Cleanup(srv.Close)

	client := api.New(srv.URL(), api.StaticToken(testserver.Token), 5*time.Second, zap.NewNop())
	qc := cache.New(time.Minute, zap.NewNop())
	sync := notify.New(resources.NewNotifications(client, qc), zap.NewNop())
	t.Cleanup(sync.Close)
	return sync, srv
}

func waitEvent(t *testing.T, s *notify.Sync, want notify.EventType) notify.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-s.Events():
			if e.Type == want {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}

func seed(srv *testserver.Server, unread, read int) {
	now := time.Now().UTC().Truncate(time.Second)
	var items []resources.Notification
	id := int64(1)
	for i := 0; i < unread; i++ {
		items = append(items, resources.Notification{
			ID: id, Title: "unread", IsRead: false, Type: "order", CreatedAt: now,
		})
		id++
	}
	for i := 0; i < read; i++ {
		items = append(items, resources.Notification{
			ID: id, Title: "read", IsRead: true, Type: "order", CreatedAt: now,
		})
		id++
	}
	srv.SeedNotifications(items)
}

func TestPushIncrementsCounterAndPrepends(t *testing.T) {
	sync, srv := newSync(t)

	require.NoError(t, sync.Connect(context.Background(), srv.SocketURL(), testserver.Token, 7))
	waitEvent(t, sync, notify.EventRefresh)
	assert.Zero(t, sync.UnreadCount())

	srv.Push(resources.Notification{Title: "Order #88 placed", Type: "order"})

	// The optimistic patch lands before any reconciling refetch.
	e := waitEvent(t, sync, notify.EventPush)
	require.NotNil(t, e.Notification)
	assert.Equal(t, "Order #88 placed", e.Notification.Title)
	assert.Equal(t, 1, e.Unread, "push must increment the counter by exactly 1")

	items, count := sync.Unread()
	require.NotEmpty(t, items)
	assert.Equal(t, e.Notification.ID, items[0].ID, "pushed notification must be prepended")
	assert.Equal(t, 1, count)

	// The authoritative refetch agrees and settles the view.
	waitEvent(t, sync, notify.EventRefresh)
	assert.Equal(t, 1, sync.UnreadCount())
}

func TestSecondPushIncrementsAgain(t *testing.T) {
	sync, srv := newSync(t)

	require.NoError(t, sync.Connect(context.Background(), srv.SocketURL(), testserver.Token, 7))
	waitEvent(t, sync, notify.EventRefresh)

	srv.Push(resources.Notification{Title: "first"})
	first := waitEvent(t, sync, notify.EventPush)
	srv.Push(resources.Notification{Title: "second"})
	second := waitEvent(t, sync, notify.EventPush)

	assert.Equal(t, first.Unread+1, second.Unread)
}

func TestMarkAllAsReadZerosCounter(t *testing.T) {
	sync, srv := newSync(t)
	seed(srv, 3, 1)

	require.NoError(t, sync.Refresh(context.Background()))
	require.Equal(t, 3, sync.UnreadCount())

	require.NoError(t, sync.MarkAllAsRead(context.Background()))
	assert.Zero(t, sync.UnreadCount(), "markAllAsRead must zero the counter immediately")

	items, count := sync.Unread()
	assert.Empty(t, items)
	assert.Zero(t, count)

	// Server agrees after the reconciling refetch.
	waitEvent(t, sync, notify.EventRefresh)
	assert.Zero(t, sync.UnreadCount())
}

func TestMarkAsReadRemovesAndDecrements(t *testing.T) {
	sync, srv := newSync(t)
	seed(srv, 2, 0)

	require.NoError(t, sync.Refresh(context.Background()))
	require.Equal(t, 2, sync.UnreadCount())

	require.NoError(t, sync.MarkAsRead(context.Background(), 1))

	items, count := sync.Unread()
	assert.Equal(t, 1, count)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)
}

func TestDeleteOnlyDecrementsWhenUnread(t *testing.T) {
	sync, srv := newSync(t)
	seed(srv, 1, 1) // id 1 unread, id 2 read

	require.NoError(t, sync.Refresh(context.Background()))
	require.Equal(t, 1, sync.UnreadCount())

	// Deleting a read notification leaves the unread counter alone.
	require.NoError(t, sync.Delete(context.Background(), 2))
	assert.Equal(t, 1, sync.UnreadCount())

	require.NoError(t, sync.Delete(context.Background(), 1))
	assert.Zero(t, sync.UnreadCount())
}

func TestRefreshOverwritesLocalState(t *testing.T) {
	sync, srv := newSync(t)
	seed(srv, 1, 0)

	require.NoError(t, sync.Refresh(context.Background()))
	require.Equal(t, 1, sync.UnreadCount())

	// Server state moves on; the refetch is authoritative, local
	// state included.
	seed(srv, 4, 0)
	require.NoError(t, sync.Refresh(context.Background()))
	assert.Equal(t, 4, sync.UnreadCount())
}

package cache

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func countingFetch(counter *atomic.Int32, value interface{}) Fetch {
	return func(ctx context.Context) (interface{}, error) {
		counter.Add(1)
		return value, nil
	}
}

func TestQueryCachesUntilInvalidated(t *testing.T) {
	c := New(time.Minute, zap.NewNop())
	key := Key{Path: "/coupons"}
	var fetches atomic.Int32

	for i := 0; i < 3; i++ {
		data, err := c.Query(context.Background(), key, []string{"Coupon"}, countingFetch(&fetches, "v1"))
		require.NoError(t, err)
		assert.Equal(t, "v1", data)
	}
	assert.Equal(t, int32(1), fetches.Load(), "repeat reads must be served from cache")

	c.Invalidate("Coupon")

	data, err := c.Query(context.Background(), key, []string{"Coupon"}, countingFetch(&fetches, "v2"))
	require.NoError(t, err)
	assert.Equal(t, "v2", data)
	assert.Equal(t, int32(2), fetches.Load(), "invalidation must force a refetch")
}

func TestInvalidateIgnoresOtherTags(t *testing.T) {
	c := New(time.Minute, zap.NewNop())
	key := Key{Path: "/plans"}
	var fetches atomic.Int32

	_, err := c.Query(context.Background(), key, []string{"Plan"}, countingFetch(&fetches, "plans"))
	require.NoError(t, err)

	c.Invalidate("Coupon")

	_, err = c.Query(context.Background(), key, []string{"Plan"}, countingFetch(&fetches, "plans"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetches.Load())
}

func TestParamsDistinguishKeys(t *testing.T) {
	c := New(time.Minute, zap.NewNop())
	var fetches atomic.Int32

	p1 := url.Values{}
	p1.Set("page", "1")
	p2 := url.Values{}
	p2.Set("page", "2")

	_, err := c.Query(context.Background(), Key{Path: "/coupons", Params: p1}, []string{"Coupon"}, countingFetch(&fetches, "page1"))
	require.NoError(t, err)
	_, err = c.Query(context.Background(), Key{Path: "/coupons", Params: p2}, []string{"Coupon"}, countingFetch(&fetches, "page2"))
	require.NoError(t, err)

	assert.Equal(t, int32(2), fetches.Load())

	data, _ := c.Peek(Key{Path: "/coupons", Params: p1})
	assert.Equal(t, "page1", data)
}

func TestConcurrentQueriesCoalesce(t *testing.T) {
	c := New(time.Minute, zap.NewNop())
	key := Key{Path: "/vendors"}

	var fetches atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (interface{}, error) {
		fetches.Add(1)
		<-release
		return "shared", nil
	}

	const callers = 10
	var wg sync.WaitGroup
	results := make([]interface{}, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := c.Query(context.Background(), key, []string{"Vendor"}, fetch)
			require.NoError(t, err)
			results[i] = data
		}(i)
	}

	// Give every caller time to reach the de-duplication window.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), fetches.Load(), "identical concurrent queries must share one request")
	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
}

func TestFetchErrorIsNotCached(t *testing.T) {
	c := New(time.Minute, zap.NewNop())
	key := Key{Path: "/mechanics"}

	boom := errors.New("boom")
	_, err := c.Query(context.Background(), key, []string{"Mechanic"}, func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	var fetches atomic.Int32
	data, err := c.Query(context.Background(), key, []string{"Mechanic"}, countingFetch(&fetches, "ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok", data)
	assert.Equal(t, int32(1), fetches.Load())
}

func TestSubscribedEntryRefetchesInBackground(t *testing.T) {
	c := New(time.Minute, zap.NewNop())
	key := Key{Path: "/notifications"}

	var fetches atomic.Int32
	var value atomic.Value
	value.Store("old")
	fetch := func(ctx context.Context) (interface{}, error) {
		fetches.Add(1)
		return value.Load(), nil
	}

	_, err := c.Query(context.Background(), key, []string{"Notification"}, fetch)
	require.NoError(t, err)

	c.Subscribe(key)
	defer c.Unsubscribe(key)

	value.Store("new")
	c.Invalidate("Notification")

	require.Eventually(t, func() bool {
		data, ok := c.Peek(key)
		return ok && data == "new"
	}, time.Second, 5*time.Millisecond, "subscribed entries must refetch without a new read")
	assert.Equal(t, int32(2), fetches.Load())
}

func TestUnsubscribedEntryIsCollectedAfterGrace(t *testing.T) {
	c := New(30*time.Millisecond, zap.NewNop())
	key := Key{Path: "/roles"}
	var fetches atomic.Int32

	c.Subscribe(key)
	_, err := c.Query(context.Background(), key, []string{"Role"}, countingFetch(&fetches, "roles"))
	require.NoError(t, err)

	c.Unsubscribe(key)

	require.Eventually(t, func() bool {
		_, ok := c.Peek(key)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestResubscribeWithinGraceKeepsEntry(t *testing.T) {
	c := New(50*time.Millisecond, zap.NewNop())
	key := Key{Path: "/categories"}
	var fetches atomic.Int32

	c.Subscribe(key)
	_, err := c.Query(context.Background(), key, []string{"Category"}, countingFetch(&fetches, "cats"))
	require.NoError(t, err)

	c.Unsubscribe(key)
	c.Subscribe(key)
	defer c.Unsubscribe(key)

	time.Sleep(120 * time.Millisecond)
	_, ok := c.Peek(key)
	assert.True(t, ok, "resubscribing within the grace window must cancel collection")
}

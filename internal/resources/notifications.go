package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gearhub-client/internal/api"
	"gearhub-client/internal/cache"
)

const TagNotifications = "Notification"

type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifications exposes the two overlapping server views (paginated
// list, unread subset) plus the read/delete mutations. Every mutation
// invalidates the shared tag so both views refetch together.
type Notifications struct {
	api   *api.Client
	cache *cache.Cache
}

func NewNotifications(a *api.Client, c *cache.Cache) *Notifications {
	return &Notifications{api: a, cache: c}
}

func (r *Notifications) List(ctx context.Context, p Pager) ([]Notification, int, error) {
	params := p.Values()
	key := cache.Key{Path: "/notifications", Params: params}
	result, err := r.cache.Query(ctx, key, []string{TagNotifications}, func(ctx context.Context) (interface{}, error) {
		var raw json.RawMessage
		if err := r.api.Get(ctx, "/notifications", params, &raw); err != nil {
			return nil, err
		}
		page, err := api.DecodeList(raw, "notifications")
		if err != nil {
			return nil, err
		}
		var items []Notification
		if err := json.Unmarshal(page.Items, &items); err != nil {
			return nil, fmt.Errorf("decoding notifications: %w", err)
		}
		return listPage[Notification]{Items: items, Total: page.Total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	page := result.(listPage[Notification])
	return page.Items, page.Total, nil
}

// Unread returns the server-confirmed unread subset.
func (r *Notifications) Unread(ctx context.Context) ([]Notification, error) {
	key := cache.Key{Path: "/notifications/unread"}
	result, err := r.cache.Query(ctx, key, []string{TagNotifications}, func(ctx context.Context) (interface{}, error) {
		var raw json.RawMessage
		if err := r.api.Get(ctx, "/notifications/unread", nil, &raw); err != nil {
			return nil, err
		}
		page, err := api.DecodeList(raw, "notifications")
		if err != nil {
			return nil, err
		}
		var items []Notification
		if err := json.Unmarshal(page.Items, &items); err != nil {
			return nil, fmt.Errorf("decoding unread notifications: %w", err)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Notification), nil
}

// Invalidate marks every cached notification view stale; the push
// channel calls this before its reconciling refetch.
func (r *Notifications) Invalidate() {
	r.cache.Invalidate(TagNotifications)
}

func (r *Notifications) MarkRead(ctx context.Context, id int64) error {
	path := "/notifications/" + strconv.FormatInt(id, 10) + "/read"
	if err := r.api.Patch(ctx, path, nil, nil); err != nil {
		return err
	}
	r.cache.Invalidate(TagNotifications)
	return nil
}

func (r *Notifications) MarkAllRead(ctx context.Context) error {
	if err := r.api.Post(ctx, "/notifications/read_all", nil, nil); err != nil {
		return err
	}
	r.cache.Invalidate(TagNotifications)
	return nil
}

func (r *Notifications) Delete(ctx context.Context, id int64) error {
	if err := r.api.Delete(ctx, "/notifications/"+strconv.FormatInt(id, 10)); err != nil {
		return err
	}
	r.cache.Invalidate(TagNotifications)
	return nil
}

package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"gearhub-client/internal/api"
	"gearhub-client/internal/cache"
)

// Pager is the page/limit parameter pair every list endpoint accepts.
// Zero values are omitted so the backend's defaults apply.
type Pager struct {
	Page  int
	Limit int
}

func (p Pager) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

type listPage[T any] struct {
	Items []T
	Total int
}

// collection implements the list/get/create/update/delete contract for
// one backend collection. Reads go through the query cache under the
// collection's tag; mutations invalidate that tag on success.
type collection[T any] struct {
	api    *api.Client
	cache  *cache.Cache
	path   string
	plural string
	tag    string
}

func (c collection[T]) List(ctx context.Context, p Pager) ([]T, int, error) {
	return c.listWith(ctx, p.Values())
}

func (c collection[T]) listWith(ctx context.Context, params url.Values) ([]T, int, error) {
	key := cache.Key{Path: c.path, Params: params}
	result, err := c.cache.Query(ctx, key, []string{c.tag}, func(ctx context.Context) (interface{}, error) {
		var raw json.RawMessage
		if err := c.api.Get(ctx, c.path, params, &raw); err != nil {
			return nil, err
		}
		page, err := api.DecodeList(raw, c.plural)
		if err != nil {
			return nil, err
		}
		var items []T
		if err := json.Unmarshal(page.Items, &items); err != nil {
			return nil, fmt.Errorf("decoding %s items: %w", c.plural, err)
		}
		return listPage[T]{Items: items, Total: page.Total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	page := result.(listPage[T])
	return page.Items, page.Total, nil
}

func (c collection[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	path := c.itemPath(id)
	result, err := c.cache.Query(ctx, cache.Key{Path: path}, []string{c.tag}, func(ctx context.Context) (interface{}, error) {
		var raw json.RawMessage
		if err := c.api.Get(ctx, path, nil, &raw); err != nil {
			return nil, err
		}
		var item T
		if err := api.DecodeItem(raw, &item); err != nil {
			return nil, fmt.Errorf("decoding %s item: %w", c.plural, err)
		}
		return item, nil
	})
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}

func (c collection[T]) Create(ctx context.Context, body interface{}) (T, error) {
	var zero T
	var raw json.RawMessage
	if err := c.api.Post(ctx, c.path, body, &raw); err != nil {
		return zero, err
	}
	var item T
	if err := api.DecodeItem(raw, &item); err != nil {
		return zero, fmt.Errorf("decoding created %s: %w", c.plural, err)
	}
	c.cache.Invalidate(c.tag)
	return item, nil
}

func (c collection[T]) Update(ctx context.Context, id int64, body interface{}) (T, error) {
	var zero T
	var raw json.RawMessage
	if err := c.api.Put(ctx, c.itemPath(id), body, &raw); err != nil {
		return zero, err
	}
	var item T
	if err := api.DecodeItem(raw, &item); err != nil {
		return zero, fmt.Errorf("decoding updated %s: %w", c.plural, err)
	}
	c.cache.Invalidate(c.tag)
	return item, nil
}

func (c collection[T]) Delete(ctx context.Context, id int64) error {
	if err := c.api.Delete(ctx, c.itemPath(id)); err != nil {
		return err
	}
	c.cache.Invalidate(c.tag)
	return nil
}

// SubscribeList pins the list slot for p so invalidations refetch it
// eagerly. The returned cancel releases the subscription.
func (c collection[T]) SubscribeList(p Pager) (cancel func()) {
	key := cache.Key{Path: c.path, Params: p.Values()}
	c.cache.Subscribe(key)
	return func() { c.cache.Unsubscribe(key) }
}

func (c collection[T]) itemPath(id int64) string {
	return c.path + "/" + strconv.FormatInt(id, 10)
}

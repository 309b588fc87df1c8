package resources

import (
	"context"
	"encoding/json"
	"strconv"

	"gearhub-client/internal/api"
)

// Subscription is the server-side payment intent created at the start
// of checkout. It carries the gateway handles the payment widget
// needs; its status is owned by the backend and only ever polled.
type Subscription struct {
	ID                    int64  `json:"id"`
	PlanID                int64  `json:"plan_id"`
	Status                string `json:"status"`
	GatewaySubscriptionID string `json:"gateway_subscription_id"`
	GatewayToken          string `json:"gateway_token"`
	ShortURL              string `json:"short_url,omitempty"`
}

// Subscriptions is deliberately uncached: the checkout flow is
// ephemeral and its status must always come from the server.
type Subscriptions struct {
	api *api.Client
}

func NewSubscriptions(a *api.Client) *Subscriptions {
	return &Subscriptions{api: a}
}

func (r *Subscriptions) Create(ctx context.Context, planID int64) (Subscription, error) {
	var raw json.RawMessage
	if err := r.api.Post(ctx, "/subscriptions", map[string]int64{"plan_id": planID}, &raw); err != nil {
		return Subscription{}, err
	}
	var sub Subscription
	if err := api.DecodeItem(raw, &sub); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

func (r *Subscriptions) Status(ctx context.Context, id int64) (string, error) {
	var raw json.RawMessage
	path := "/subscriptions/" + strconv.FormatInt(id, 10) + "/status"
	if err := r.api.Get(ctx, path, nil, &raw); err != nil {
		return "", err
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := api.DecodeItem(raw, &body); err != nil {
		return "", err
	}
	return body.Status, nil
}

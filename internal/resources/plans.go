package resources

import (
	"gearhub-client/internal/api"
	"gearhub-client/internal/cache"
)

const (
	TagPlans = "Plan"
	TagRoles = "Role"
)

// Plan is a vendor subscription plan offered through the payment
// gateway.
type Plan struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency"`
	BillingCycle string   `json:"billing_cycle"`
	Features     []string `json:"features,omitempty"`
}

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Plans struct {
	collection[Plan]
}

func NewPlans(a *api.Client, c *cache.Cache) *Plans {
	return &Plans{collection[Plan]{
		api: a, cache: c,
		path: "/plans", plural: "plans", tag: TagPlans,
	}}
}

type Roles struct {
	collection[Role]
}

func NewRoles(a *api.Client, c *cache.Cache) *Roles {
	return &Roles{collection[Role]{
		api: a, cache: c,
		path: "/roles", plural: "roles", tag: TagRoles,
	}}
}

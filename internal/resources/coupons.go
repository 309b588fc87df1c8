package resources

import (
	"time"

	"gearhub-client/internal/api"
	"gearhub-client/internal/cache"
)

const TagCoupons = "Coupon"

type Coupon struct {
	ID           int64      `json:"id"`
	Code         string     `json:"code"`
	Discount     float64    `json:"discount"`
	DiscountType string     `json:"discount_type"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Active       bool       `json:"active"`
}

type CouponInput struct {
	Code         string     `json:"code"`
	Discount     float64    `json:"discount"`
	DiscountType string     `json:"discount_type"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Active       bool       `json:"active"`
}

type Coupons struct {
	collection[Coupon]
}

func NewCoupons(a *api.Client, c *cache.Cache) *Coupons {
	return &Coupons{collection[Coupon]{
		api: a, cache: c,
		path: "/coupons", plural: "coupons", tag: TagCoupons,
	}}
}

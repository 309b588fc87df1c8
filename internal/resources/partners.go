package resources

import (
	"gearhub-client/internal/api"
	"gearhub-client/internal/cache"
)

// Marketplace participants: part vendors, mechanics, and physical
// service centers.

const (
	TagVendors        = "Vendor"
	TagMechanics      = "Mechanic"
	TagServiceCenters = "ServiceCenter"
)

type Vendor struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Status string `json:"status"`
}

type Mechanic struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Specialty string  `json:"specialty"`
	Rating    float64 `json:"rating"`
}

type ServiceCenter struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type Vendors struct {
	collection[Vendor]
}

func NewVendors(a *api.Client, c *cache.Cache) *Vendors {
	return &Vendors{collection[Vendor]{
		api: a, cache: c,
		path: "/vendors", plural: "vendors", tag: TagVendors,
	}}
}

type Mechanics struct {
	collection[Mechanic]
}

func NewMechanics(a *api.Client, c *cache.Cache) *Mechanics {
	return &Mechanics{collection[Mechanic]{
		api: a, cache: c,
		path: "/mechanics", plural: "mechanics", tag: TagMechanics,
	}}
}

type ServiceCenters struct {
	collection[ServiceCenter]
}

func NewServiceCenters(a *api.Client, c *cache.Cache) *ServiceCenters {
	return &ServiceCenters{collection[ServiceCenter]{
		api: a, cache: c,
		path: "/service_centers", plural: "service_centers", tag: TagServiceCenters,
	}}
}

package resources

import (
	"gearhub-client/internal/api"
	"gearhub-client/internal/cache"
)

// Registry bundles every resource client over one shared HTTP client
// and query cache.
type Registry struct {
	Coupons        *Coupons
	DTCCodes       *DTCCodes
	Vendors        *Vendors
	Categories     *Categories
	Subcategories  *Subcategories
	CarMakes       *CarMakes
	CarModels      *CarModels
	Mechanics      *Mechanics
	Plans          *Plans
	Roles          *Roles
	ServiceCenters *ServiceCenters
	Notifications  *Notifications
	Subscriptions  *Subscriptions
}

func NewRegistry(a *api.Client, c *cache.Cache) *Registry {
	return &Registry{
		Coupons:        NewCoupons(a, c),
		DTCCodes:       NewDTCCodes(a, c),
		Vendors:        NewVendors(a, c),
		Categories:     NewCategories(a, c),
		Subcategories:  NewSubcategories(a, c),
		CarMakes:       NewCarMakes(a, c),
		CarModels:      NewCarModels(a, c),
		Mechanics:      NewMechanics(a, c),
		Plans:          NewPlans(a, c),
		Roles:          NewRoles(a, c),
		ServiceCenters: NewServiceCenters(a, c),
		Notifications:  NewNotifications(a, c),
		Subscriptions:  NewSubscriptions(a),
	}
}

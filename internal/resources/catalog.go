package resources

import (
	"context"
	"strconv"

	"gearhub-client/internal/api"
	"gearhub-client/internal/cache"
)

// Vehicle taxonomy and part categorization. These four collections
// feed the cascading selectors: category -> subcategory, make -> model.

const (
	TagCategories    = "Category"
	TagSubcategories = "Subcategory"
	TagCarMakes      = "CarMake"
	TagCarModels     = "CarModel"
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Subcategory struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
}

type CarMake struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CarModel struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	MakeID int64  `json:"car_make_id"`
	Year   int    `json:"year,omitempty"`
}

type Categories struct {
	collection[Category]
}

func NewCategories(a *api.Client, c *cache.Cache) *Categories {
	return &Categories{collection[Category]{
		api: a, cache: c,
		path: "/categories", plural: "categories", tag: TagCategories,
	}}
}

type Subcategories struct {
	collection[Subcategory]
}

func NewSubcategories(a *api.Client, c *cache.Cache) *Subcategories {
	return &Subcategories{collection[Subcategory]{
		api: a, cache: c,
		path: "/subcategories", plural: "subcategories", tag: TagSubcategories,
	}}
}

// ByCategory lists the subcategories of one parent category.
func (r *Subcategories) ByCategory(ctx context.Context, categoryID int64, p Pager) ([]Subcategory, int, error) {
	params := p.Values()
	params.Set("category_id", strconv.FormatInt(categoryID, 10))
	return r.listWith(ctx, params)
}

type CarMakes struct {
	collection[CarMake]
}

func NewCarMakes(a *api.Client, c *cache.Cache) *CarMakes {
	return &CarMakes{collection[CarMake]{
		api: a, cache: c,
		path: "/car_makes", plural: "car_makes", tag: TagCarMakes,
	}}
}

type CarModels struct {
	collection[CarModel]
}

func NewCarModels(a *api.Client, c *cache.Cache) *CarModels {
	return &CarModels{collection[CarModel]{
		api: a, cache: c,
		path: "/car_models", plural: "car_models", tag: TagCarModels,
	}}
}

// ByMake lists the models of one make, the second level of the
// vehicle cascade.
func (r *CarModels) ByMake(ctx context.Context, makeID int64, p Pager) ([]CarModel, int, error) {
	params := p.Values()
	params.Set("car_make_id", strconv.FormatInt(makeID, 10))
	return r.listWith(ctx, params)
}

package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/car-spec-api/databases"
	"github.com/linesmerrill/car-spec-api/models"
	"github.com/linesmerrill/car-spec-api/specs"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// sortFields maps sortable attribute names to stored field names
var sortFields = map[string]string{
	"id":                 "_id",
	"brand":              "brand",
	"model":              "model",
	"year":               "year",
	"price":              "price",
	"engine_type":        "engine_type",
	"horsepower":         "horsepower",
	"fuel_type":          "fuel_type",
	"transmission":       "transmission",
	"color":              "color",
	"mileage":            "mileage",
	"cylinders":          "cylinders",
	"acceleration_0_100": "acceleration_0_100",
	"vitesse_max":        "vitesse_max",
	"drive_type":         "drive_type",
	"city_mpg":           "city_mpg",
	"highway_mpg":        "highway_mpg",
	"combined_mpg":       "combined_mpg",
	"torque_nm":          "torque_nm",
	"length":             "length",
	"width":              "width",
	"height":             "height",
	"created_at":         "created_at",
	"updated_at":         "updated_at",
}

// ListOptions controls ordering and paging of a listing
type ListOptions struct {
	SortBy  string
	Order   string
	Page    int
	PerPage int
}

// Page is one page of a listing
type Page struct {
	Cars    []SpecItem `json:"cars"`
	Total   int64      `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Pages   int        `json:"pages"`
}

// ParseListOptions reads sort_by, order, page and per_page. Page defaults to
// 1 and per_page to 20, clamped to 1..100.
func ParseListOptions(q url.Values) (ListOptions, error) {
	p := paramParser{values: q}
	opts := ListOptions{SortBy: "id", Order: "asc", Page: 1, PerPage: defaultPerPage}
	if v := p.str("sort_by"); v != nil {
		opts.SortBy = *v
	}
	if v := p.str("order"); v != nil {
		opts.Order = *v
	}
	if v := p.integer("page"); v != nil {
		opts.Page = *v
	}
	if v := p.integer("per_page"); v != nil {
		opts.PerPage = *v
	}
	return opts.normalize(), p.err
}

func (o ListOptions) normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PerPage < 1 {
		o.PerPage = defaultPerPage
	}
	if o.PerPage > maxPerPage {
		o.PerPage = maxPerPage
	}
	return o
}

// sort resolves SortBy against the sortable attributes. Unknown names give
// no sort, leaving the store's natural order.
func (o ListOptions) sort() bson.D {
	field, ok := sortFields[o.SortBy]
	if !ok {
		return nil
	}
	dir := 1
	if strings.EqualFold(o.Order, "desc") {
		dir = -1
	}
	sort := bson.D{{Key: field, Value: dir}}
	if field != "_id" {
		sort = append(sort, bson.E{Key: "_id", Value: 1})
	}
	return sort
}

// List returns the page of cars matching filters, each with its merged spec.
// Pages past the end are empty, not an error.
func (s *Service) List(ctx context.Context, filters Filters, opts ListOptions) (*Page, error) {
	return s.page(ctx, filters.Query(), opts, func(car *models.Car) *specs.Spec {
		return specs.Merge(car)
	})
}

func (s *Service) page(ctx context.Context, filter bson.M, opts ListOptions, render func(*models.Car) *specs.Spec) (*Page, error) {
	opts = opts.normalize()

	total, err := s.Cars.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count cars: %w", err)
	}

	page := &Page{
		Cars:    []SpecItem{},
		Total:   total,
		Page:    opts.Page,
		PerPage: opts.PerPage,
	}
	pages := (total + int64(opts.PerPage) - 1) / int64(opts.PerPage)
	page.Pages = int(pages)
	if int64(opts.Page-1) >= pages {
		return page, nil
	}

	cars, err := s.Cars.Find(ctx, filter, databases.NewPaginatedOptions(opts.PerPage, opts.Page, opts.sort()))
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	for i := range cars {
		page.Cars = append(page.Cars, SpecItem{ID: cars[i].ID, Spec: render(&cars[i])})
	}
	return page, nil
}

// SearchResult is the answer to a quick search
type SearchResult struct {
	Cars  []SpecItem `json:"cars"`
	Count int        `json:"count"`
}

// searchFields are scanned by Search
var searchFields = []string{"brand", "model", "fuel_type", "transmission", "drive_type", "length"}

// Search finds up to 100 cars whose brand, model, fuel type, transmission,
// drive type or length contains q, ignoring case.
func (s *Service) Search(ctx context.Context, q string) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, &ValidationError{Message: "Search query required"}
	}
	cars, err := s.Cars.Find(ctx, anyContains(&q, searchFields...), findOptions(byID(), MaxResults))
	if err != nil {
		return nil, fmt.Errorf("failed to search cars: %w", err)
	}
	items := rawItems(cars)
	return &SearchResult{Cars: items, Count: len(items)}, nil
}

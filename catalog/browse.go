package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/car-spec-api/models"
	"github.com/linesmerrill/car-spec-api/specs"
)

const defaultAvailableLimit = 50

// BrandCount is the number of cars stored under one brand
type BrandCount struct {
	Brand string `json:"brand"`
	Count int64  `json:"count"`
}

// SerieCount is the number of cars stored under one model name
type SerieCount struct {
	Serie string `json:"serie"`
	Count int64  `json:"count"`
}

// YearCount is the number of cars of one production year
type YearCount struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}

type groupRow struct {
	Value interface{} `bson:"_id"`
	Count int64       `bson:"count"`
}

func groupCount(field string, match bson.M, sort bson.D, limit int) []bson.M {
	var pipeline []bson.M
	if match != nil {
		pipeline = append(pipeline, bson.M{"$match": match})
	}
	pipeline = append(pipeline,
		bson.M{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": sort},
	)
	if limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": limit})
	}
	return pipeline
}

func (s *Service) groups(ctx context.Context, pipeline []bson.M) ([]groupRow, error) {
	var rows []groupRow
	if err := s.Cars.Aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("failed to group cars: %w", err)
	}
	return rows, nil
}

func stringGroups(rows []groupRow) []BrandCount {
	out := []BrandCount{}
	for _, row := range rows {
		name, _ := row.Value.(string)
		if strings.TrimSpace(name) == "" {
			continue
		}
		out = append(out, BrandCount{Brand: name, Count: row.Count})
	}
	return out
}

func yearGroups(rows []groupRow) []YearCount {
	out := []YearCount{}
	for _, row := range rows {
		var year int
		switch v := row.Value.(type) {
		case int32:
			year = int(v)
		case int64:
			year = int(v)
		case float64:
			year = int(v)
		case int:
			year = v
		}
		if year <= 0 {
			continue
		}
		out = append(out, YearCount{Year: year, Count: row.Count})
	}
	return out
}

// Brands lists every brand with its car count, alphabetically
func (s *Service) Brands(ctx context.Context) ([]BrandCount, error) {
	rows, err := s.groups(ctx, groupCount("brand", nil, bson.D{{Key: "_id", Value: 1}}, 0))
	if err != nil {
		return nil, err
	}
	return stringGroups(rows), nil
}

// SeriesByBrand lists the model names of brand, ignoring case
func (s *Service) SeriesByBrand(ctx context.Context, brand string) ([]SerieCount, error) {
	rows, err := s.groups(ctx, groupCount("model", bson.M{"brand": equalFold(brand)}, bson.D{{Key: "_id", Value: 1}}, 0))
	if err != nil {
		return nil, err
	}
	out := []SerieCount{}
	for _, g := range stringGroups(rows) {
		out = append(out, SerieCount{Serie: g.Brand, Count: g.Count})
	}
	return out, nil
}

// Years lists production years with their car counts, newest first
func (s *Service) Years(ctx context.Context) ([]YearCount, error) {
	rows, err := s.groups(ctx, groupCount("year", nil, bson.D{{Key: "_id", Value: -1}}, 0))
	if err != nil {
		return nil, err
	}
	return yearGroups(rows), nil
}

// FilteredPage is a listing restricted to one brand, serie or year
type FilteredPage struct {
	Brand *string `json:"brand,omitempty"`
	Serie *string `json:"serie,omitempty"`
	Year  *int    `json:"year,omitempty"`
	*Page
}

func rawSpec(car *models.Car) *specs.Spec {
	return specs.Reorder(specs.ParseRawSpec(car.RawSpec))
}

// FilterByBrand pages through the cars of brand, matched ignoring case
func (s *Service) FilterByBrand(ctx context.Context, brand string, opts ListOptions) (*FilteredPage, error) {
	page, err := s.page(ctx, bson.M{"brand": equalFold(brand)}, opts, rawSpec)
	if err != nil {
		return nil, err
	}
	return &FilteredPage{Brand: &brand, Page: page}, nil
}

// FilterBySerie pages through the cars whose model contains serie
func (s *Service) FilterBySerie(ctx context.Context, serie string, opts ListOptions) (*FilteredPage, error) {
	page, err := s.page(ctx, bson.M{"model": contains(serie)}, opts, rawSpec)
	if err != nil {
		return nil, err
	}
	return &FilteredPage{Serie: &serie, Page: page}, nil
}

// FilterByYear pages through the cars of one production year
func (s *Service) FilterByYear(ctx context.Context, year int, opts ListOptions) (*FilteredPage, error) {
	page, err := s.page(ctx, bson.M{"year": year}, opts, rawSpec)
	if err != nil {
		return nil, err
	}
	return &FilteredPage{Year: &year, Page: page}, nil
}

// AvailableSeries lists the most common model names
type AvailableSeries struct {
	Series       []SeriesCount `json:"available_series"`
	Total        int           `json:"total_unique_series"`
	ExampleUsage []string      `json:"example_usage"`
}

// SeriesCount is a model name with its car count
type SeriesCount struct {
	Series string `json:"series"`
	Count  int64  `json:"count"`
}

// AvailableBrands lists the most common brands
type AvailableBrands struct {
	Brands       []BrandCount `json:"available_brands"`
	Total        int          `json:"total_brands"`
	ExampleUsage []string     `json:"example_usage"`
}

// AvailableYears lists every production year
type AvailableYears struct {
	Years        []YearCount `json:"available_years"`
	ExampleUsage []string    `json:"example_usage"`
}

var mostCommon = bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}

// AvailableSeries returns up to limit model names by car count, default 50
func (s *Service) AvailableSeries(ctx context.Context, limit int) (*AvailableSeries, error) {
	if limit <= 0 {
		limit = defaultAvailableLimit
	}
	rows, err := s.groups(ctx, groupCount("model", nil, mostCommon, limit))
	if err != nil {
		return nil, err
	}
	series := []SeriesCount{}
	for _, g := range stringGroups(rows) {
		series = append(series, SeriesCount{Series: g.Brand, Count: g.Count})
	}
	return &AvailableSeries{
		Series: series,
		Total:  len(series),
		ExampleUsage: []string{
			"GET /api/v1/cars/compare/by-serie/Golf",
			"GET /api/v1/cars/compare/by-serie/A4",
			"GET /api/v1/cars/compare/by-serie/3%20Series",
		},
	}, nil
}

// AvailableBrands returns up to limit brands by car count, default 50
func (s *Service) AvailableBrands(ctx context.Context, limit int) (*AvailableBrands, error) {
	if limit <= 0 {
		limit = defaultAvailableLimit
	}
	rows, err := s.groups(ctx, groupCount("brand", nil, mostCommon, limit))
	if err != nil {
		return nil, err
	}
	brands := stringGroups(rows)
	return &AvailableBrands{
		Brands: brands,
		Total:  len(brands),
		ExampleUsage: []string{
			"GET /api/v1/cars/compare/by-brand/Audi",
			"GET /api/v1/cars/compare/by-brand/BMW",
			"GET /api/v1/cars/compare/by-brand/Ferrari",
		},
	}, nil
}

// AvailableYears returns every production year, newest first
func (s *Service) AvailableYears(ctx context.Context) (*AvailableYears, error) {
	years, err := s.Years(ctx)
	if err != nil {
		return nil, err
	}
	return &AvailableYears{
		Years: years,
		ExampleUsage: []string{
			"GET /api/v1/cars/compare/by-year/2023",
			"GET /api/v1/cars/compare/by-year/2022",
		},
	}, nil
}

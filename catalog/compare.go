package catalog

import (
	"context"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/car-spec-api/models"
	"github.com/linesmerrill/car-spec-api/specs"
)

// MetricsSnapshot holds the comparable values of one car. Placeholder
// values are nil except for cylinders and year, which are reported as
// stored.
type MetricsSnapshot struct {
	Horsepower       *int     `json:"horsepower"`
	CombinedMPG      *float64 `json:"combined_mpg"`
	Acceleration0100 *float64 `json:"acceleration_0_100"`
	VitesseMax       *int     `json:"vitesse_max"`
	Cylinders        *int     `json:"cylinders"`
	TorqueNm         *int     `json:"torque_nm"`
	Year             *int     `json:"year"`
}

// Winner is the car holding the best value of one metric
type Winner struct {
	CarID         int64   `json:"car_id"`
	Value         float64 `json:"value"`
	MetricDisplay string  `json:"metric_display"`
}

// WinningMetric is a metric won by a compared car
type WinningMetric struct {
	Metric        string  `json:"metric"`
	MetricDisplay string  `json:"metric_display"`
	Value         float64 `json:"value"`
}

// ComparedCar is one car of a comparison
type ComparedCar struct {
	ID             int64           `json:"id"`
	Spec           *specs.Spec     `json:"spec"`
	Metrics        MetricsSnapshot `json:"metrics"`
	WinningMetrics []WinningMetric `json:"winning_metrics,omitempty"`
}

// Winners maps metric names to their winner, in evaluation order
type Winners = orderedmap.OrderedMap[string, Winner]

// Comparison is the answer to Compare and its wrappers
type Comparison struct {
	Cars              []ComparedCar `json:"cars"`
	ComparisonWinners *Winners      `json:"comparison_winners"`
	TotalCars         int           `json:"total_cars"`
	Serie             *string       `json:"serie,omitempty"`
	Brand             *string       `json:"brand,omitempty"`
	Year              *int          `json:"year,omitempty"`
}

type comparisonMetric struct {
	name         string
	higherBetter bool
	value        func(m *MetricsSnapshot) (float64, bool)
}

// comparisonMetrics are the metrics a winner is picked for; cylinders is
// reported but never wins.
var comparisonMetrics = []comparisonMetric{
	{"horsepower", true, func(m *MetricsSnapshot) (float64, bool) { return present(m.Horsepower) }},
	{"combined_mpg", true, func(m *MetricsSnapshot) (float64, bool) { return present(m.CombinedMPG) }},
	{"acceleration_0_100", false, func(m *MetricsSnapshot) (float64, bool) { return present(m.Acceleration0100) }},
	{"vitesse_max", true, func(m *MetricsSnapshot) (float64, bool) { return present(m.VitesseMax) }},
	{"torque_nm", true, func(m *MetricsSnapshot) (float64, bool) { return present(m.TorqueNm) }},
	{"year", true, func(m *MetricsSnapshot) (float64, bool) { return present(m.Year) }},
}

// comparisonResolveLimit caps how many records a comparison resolves.
const comparisonResolveLimit = MaxResults

// Compare puts two or more cars side by side and picks a winner per metric.
// Cars are evaluated in ascending id order and ties go to the first car
// evaluated. Only the first 100 ids are considered.
func (s *Service) Compare(ctx context.Context, ids []int64) (*Comparison, error) {
	if len(ids) < 2 {
		return nil, &InsufficientDataError{Message: "At least 2 car IDs required for comparison", Found: len(ids)}
	}

	if len(ids) > comparisonResolveLimit {
		ids = ids[:comparisonResolveLimit]
	}

	cars, err := s.Cars.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, findOptions(byID(), comparisonResolveLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to load cars for comparison: %w", err)
	}
	if len(cars) < 2 {
		return nil, &InsufficientDataError{Message: fmt.Sprintf("Only found %d cars, need at least 2", len(cars)), Found: len(cars)}
	}

	return compare(cars), nil
}

func compare(cars []models.Car) *Comparison {
	compared := make([]ComparedCar, len(cars))
	for i := range cars {
		compared[i] = ComparedCar{
			ID:      cars[i].ID,
			Spec:    specs.Reorder(specs.ParseRawSpec(cars[i].RawSpec)),
			Metrics: snapshot(&cars[i]),
		}
	}

	winners := orderedmap.New[string, Winner]()
	for _, metric := range comparisonMetrics {
		best := -1
		var bestValue float64
		for i := range compared {
			v, ok := metric.value(&compared[i].Metrics)
			if !ok {
				continue
			}
			if best == -1 || (metric.higherBetter && v > bestValue) || (!metric.higherBetter && v < bestValue) {
				best, bestValue = i, v
			}
		}
		if best == -1 {
			continue
		}
		display := DisplayName(metric.name)
		winners.Set(metric.name, Winner{CarID: compared[best].ID, Value: bestValue, MetricDisplay: display})
		compared[best].WinningMetrics = append(compared[best].WinningMetrics, WinningMetric{
			Metric:        metric.name,
			MetricDisplay: display,
			Value:         bestValue,
		})
	}

	return &Comparison{Cars: compared, ComparisonWinners: winners, TotalCars: len(cars)}
}

func snapshot(c *models.Car) MetricsSnapshot {
	year := c.Year
	return MetricsSnapshot{
		Horsepower:       known(c.Horsepower),
		CombinedMPG:      known(c.CombinedMPG),
		Acceleration0100: known(c.Acceleration0100),
		VitesseMax:       known(c.VitesseMax),
		Cylinders:        c.Cylinders,
		TorqueNm:         known(c.TorqueNm),
		Year:             &year,
	}
}

// known returns v when it holds a real measurement, otherwise nil
func known[T models.Number](v *T) *T {
	if _, ok := models.Known(v); !ok {
		return nil
	}
	return v
}

func present[T models.Number](v *T) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return float64(*v), true
}

// CompareBySerie compares every car whose model contains serie
func (s *Service) CompareBySerie(ctx context.Context, serie string) (*Comparison, error) {
	c, err := s.compareMatching(ctx, bson.M{"model": contains(serie)}, fmt.Sprintf("serie %q", serie))
	if err != nil {
		return nil, err
	}
	c.Serie = &serie
	return c, nil
}

// CompareByBrand compares every car of brand, ignoring case
func (s *Service) CompareByBrand(ctx context.Context, brand string) (*Comparison, error) {
	c, err := s.compareMatching(ctx, bson.M{"brand": equalFold(brand)}, fmt.Sprintf("brand %q", brand))
	if err != nil {
		return nil, err
	}
	c.Brand = &brand
	return c, nil
}

// CompareByYear compares every car produced in year
func (s *Service) CompareByYear(ctx context.Context, year int) (*Comparison, error) {
	c, err := s.compareMatching(ctx, bson.M{"year": year}, fmt.Sprintf("year %d", year))
	if err != nil {
		return nil, err
	}
	c.Year = &year
	return c, nil
}

func (s *Service) compareMatching(ctx context.Context, filter bson.M, label string) (*Comparison, error) {
	cars, err := s.Cars.Find(ctx, filter, findOptions(byID(), comparisonResolveLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cars for %s: %w", label, err)
	}
	if len(cars) < 2 {
		return nil, &InsufficientDataError{
			Message: fmt.Sprintf("Found %d cars for %s, need at least 2", len(cars), label),
			Found:   len(cars),
		}
	}
	return compare(cars), nil
}

package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/car-spec-api/specs"
)

const defaultRankingLimit = 10

// RankedCar is one row of a ranking
type RankedCar struct {
	Rank        int         `json:"rank"`
	ID          int64       `json:"id"`
	Spec        *specs.Spec `json:"spec"`
	MetricValue interface{} `json:"metric_value"`
}

// Ranking is the answer to TopBy
type Ranking struct {
	Metric        string      `json:"metric"`
	MetricDisplay string      `json:"metric_display"`
	Limit         int         `json:"limit"`
	TotalResults  int         `json:"total_results"`
	Cars          []RankedCar `json:"cars"`
}

// TopBy ranks cars by metric, best first. Acceleration ranks ascending and
// every other metric descending. Only a null value excludes a car here; a
// stored zero placeholder still ranks (unlike the listing range filters).
// limit defaults to 10 and is capped at 100.
func (s *Service) TopBy(ctx context.Context, metric string, limit int) (*Ranking, error) {
	m, ok := lookupMetric(metric)
	if !ok {
		return nil, &InvalidMetricError{Metric: metric, Valid: MetricNames()}
	}
	limit = clampLimit(limit, defaultRankingLimit)

	dir := -1
	if m.ascending {
		dir = 1
	}
	sort := bson.D{{Key: m.Name, Value: dir}, {Key: "_id", Value: 1}}

	cars, err := s.Cars.Find(ctx, bson.M{m.Name: bson.M{"$ne": nil}}, findOptions(sort, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to rank cars by %s: %w", metric, err)
	}
	if len(cars) == 0 {
		return nil, &NotFoundError{
			Message: fmt.Sprintf("No cars found with metric %s", metric),
			Context: map[string]interface{}{"cars": []RankedCar{}, "metric": metric},
		}
	}

	ranking := &Ranking{
		Metric:        m.Name,
		MetricDisplay: DisplayName(m.Name),
		Limit:         limit,
		TotalResults:  len(cars),
		Cars:          make([]RankedCar, 0, len(cars)),
	}
	for i := range cars {
		ranking.Cars = append(ranking.Cars, RankedCar{
			Rank:        i + 1,
			ID:          cars[i].ID,
			Spec:        specs.Reorder(specs.ParseRawSpec(cars[i].RawSpec)),
			MetricValue: m.raw(&cars[i]),
		})
	}
	return ranking, nil
}

// AvailableMetrics describes the metrics TopBy accepts
type AvailableMetrics struct {
	Metrics []RankingMetric `json:"metrics"`
	Example string          `json:"example"`
}

// Metrics returns the ranking metric catalogue
func (s *Service) Metrics() *AvailableMetrics {
	out := make([]RankingMetric, len(rankingMetrics))
	copy(out, rankingMetrics)
	return &AvailableMetrics{Metrics: out, Example: "GET /api/v1/cars/top/horsepower?limit=5"}
}

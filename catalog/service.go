// Package catalog holds the read-side analytics over the car catalog
// (filtering, ranking, comparison, similarity and statistics) along with
// the admin write operations.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/car-spec-api/databases"
	"github.com/linesmerrill/car-spec-api/models"
	"github.com/linesmerrill/car-spec-api/specs"
)

// MaxResults caps every ranked, compared, similar or searched result set.
const MaxResults = 100

// Service answers catalog queries against the car store
type Service struct {
	Cars     databases.CarDatabase
	Counters databases.CounterDatabase
}

// NewService returns a Service backed by the given collections
func NewService(cars databases.CarDatabase, counters databases.CounterDatabase) *Service {
	return &Service{Cars: cars, Counters: counters}
}

// SpecItem is a car rendered for attendees: its id and display spec
type SpecItem struct {
	ID   int64       `json:"id"`
	Spec *specs.Spec `json:"spec"`
}

// Get returns one car with its merged spec
func (s *Service) Get(ctx context.Context, id int64) (*SpecItem, error) {
	car, err := s.findCar(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SpecItem{ID: car.ID, Spec: specs.Merge(car)}, nil
}

func (s *Service) findCar(ctx context.Context, id int64) (*models.Car, error) {
	car, err := s.Cars.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Message: fmt.Sprintf("Car with ID %d not found", id)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find car %d: %w", id, err)
	}
	return car, nil
}

// rawItems renders cars with their raw spec in display order
func rawItems(cars []models.Car) []SpecItem {
	items := make([]SpecItem, 0, len(cars))
	for i := range cars {
		items = append(items, SpecItem{ID: cars[i].ID, Spec: specs.Reorder(specs.ParseRawSpec(cars[i].RawSpec))})
	}
	return items
}

// contains matches value as a case-insensitive substring
func contains(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

// equalFold matches value exactly, ignoring case
func equalFold(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
}

func byID() bson.D {
	return bson.D{{Key: "_id", Value: 1}}
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxResults {
		return MaxResults
	}
	return limit
}

func findOptions(sort bson.D, limit int) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

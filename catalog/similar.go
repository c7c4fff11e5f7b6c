package catalog

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/car-spec-api/models"
	"github.com/linesmerrill/car-spec-api/specs"
)

const (
	defaultSimilarLimit = 10
	yearWindow          = 10
	yearSpan            = 15.0
	minHorsepowerWindow = 20.0
	horsepowerWindow    = 0.2
)

// SimilarCar is a candidate scored against the reference car. A nil score
// means no attribute could be compared.
type SimilarCar struct {
	ID              int64       `json:"id"`
	Spec            *specs.Spec `json:"spec"`
	SimilarityScore *float64    `json:"similarity_score"`
}

// Similarity is the answer to Similar
type Similarity struct {
	ReferenceCarID   int64        `json:"reference_car_id"`
	ReferenceCarSpec *specs.Spec  `json:"reference_car_spec"`
	SimilarCars      []SimilarCar `json:"similar_cars"`
	TotalResults     int          `json:"total_results"`
}

// criterion scores one attribute in [0,1]; ok is false when either car
// lacks the attribute.
type criterion struct {
	weight float64
	score  func(ref, cand *models.Car) (sim float64, ok bool)
}

var similarityCriteria = []criterion{
	{50, horsepowerSimilarity},
	{30, yearSimilarity},
	{20, driveTypeSimilarity},
	{10, fuelTypeSimilarity},
}

func horsepowerSimilarity(ref, cand *models.Car) (float64, bool) {
	a, okA := models.Known(ref.Horsepower)
	b, okB := models.Known(cand.Horsepower)
	if !okA || !okB {
		return 0, false
	}
	diff := math.Abs(float64(a - b))
	return clamp01(1 - diff/math.Max(float64(a), float64(b))), true
}

func yearSimilarity(ref, cand *models.Car) (float64, bool) {
	a, okA := models.Known(&ref.Year)
	b, okB := models.Known(&cand.Year)
	if !okA || !okB {
		return 0, false
	}
	diff := math.Abs(float64(a - b))
	return clamp01(1 - diff/yearSpan), true
}

func driveTypeSimilarity(ref, cand *models.Car) (float64, bool) {
	if _, ok := models.KnownString(ref.DriveType); !ok {
		return 0, false
	}
	if _, ok := models.KnownString(cand.DriveType); !ok {
		return 0, false
	}
	return boolScore(*ref.DriveType == *cand.DriveType), true
}

func fuelTypeSimilarity(ref, cand *models.Car) (float64, bool) {
	a, okA := models.KnownString(ref.FuelType)
	b, okB := models.KnownString(cand.FuelType)
	if !okA || !okB {
		return 0, false
	}
	return boolScore(strings.EqualFold(a, b)), true
}

// similarityScore is the weighted mean of the criteria both cars can be
// compared on, scaled to 0-100 and rounded to one decimal.
func similarityScore(ref, cand *models.Car) *float64 {
	var sum, weights float64
	for _, c := range similarityCriteria {
		sim, ok := c.score(ref, cand)
		if !ok {
			continue
		}
		sum += sim * c.weight
		weights += c.weight
	}
	if weights == 0 {
		return nil
	}
	score := math.Round(sum/weights*100*10) / 10
	return &score
}

// Similar finds cars resembling the reference car and ranks them by
// similarity score, highest first, unscored candidates last.
func (s *Service) Similar(ctx context.Context, id int64, limit int) (*Similarity, error) {
	ref, err := s.findCar(ctx, id)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit, defaultSimilarLimit)

	candidates, err := s.Cars.Find(ctx, candidateFilter(ref, true), findOptions(byID(), limit))
	if err != nil {
		return nil, fmt.Errorf("failed to find similar cars: %w", err)
	}
	if len(candidates) == 0 {
		candidates, err = s.Cars.Find(ctx, candidateFilter(ref, false), findOptions(byID(), limit))
		if err != nil {
			return nil, fmt.Errorf("failed to find fallback similar cars: %w", err)
		}
	}

	similar := make([]SimilarCar, 0, len(candidates))
	for i := range candidates {
		similar = append(similar, SimilarCar{
			ID:              candidates[i].ID,
			Spec:            specs.Reorder(specs.ParseRawSpec(candidates[i].RawSpec)),
			SimilarityScore: similarityScore(ref, &candidates[i]),
		})
	}
	sort.SliceStable(similar, func(i, j int) bool {
		a, b := similar[i].SimilarityScore, similar[j].SimilarityScore
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a > *b
	})

	return &Similarity{
		ReferenceCarID:   ref.ID,
		ReferenceCarSpec: specs.Reorder(specs.ParseRawSpec(ref.RawSpec)),
		SimilarCars:      similar,
		TotalResults:     len(similar),
	}, nil
}

// candidateFilter constrains candidates by the attributes the reference
// actually has. The loose form keeps only the drive type.
func candidateFilter(ref *models.Car, strict bool) bson.M {
	clauses := []bson.M{{"_id": bson.M{"$ne": ref.ID}}}
	if _, ok := models.KnownString(ref.DriveType); ok {
		clauses = append(clauses, bson.M{"drive_type": *ref.DriveType})
	}
	if strict {
		if hp, ok := models.Known(ref.Horsepower); ok {
			window := math.Max(minHorsepowerWindow, float64(hp)*horsepowerWindow)
			clauses = append(clauses, bson.M{"horsepower": bson.M{
				"$ne":  nil,
				"$gt":  0,
				"$gte": float64(hp) - window,
				"$lte": float64(hp) + window,
			}})
		}
		if year, ok := models.Known(&ref.Year); ok {
			clauses = append(clauses, bson.M{"year": bson.M{
				"$ne":  nil,
				"$gte": year - yearWindow,
				"$lte": year + yearWindow,
			}})
		}
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return bson.M{"$and": clauses}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

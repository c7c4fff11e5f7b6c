package catalog

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// BrandStats aggregates the cars of one brand
type BrandStats struct {
	Brand                   string   `json:"brand"`
	Count                   int64    `json:"count"`
	AverageCombinedMPG      *float64 `json:"average_combined_mpg"`
	AverageHorsepower       *float64 `json:"average_horsepower"`
	AverageAcceleration0100 *float64 `json:"average_acceleration_0_100"`
	AverageTopSpeed         *float64 `json:"average_top_speed"`
	YearRange               *string  `json:"year_range"`
	ModelCount              int64    `json:"model_count"`
}

// DriveTypeCount is the number of cars with one drive type
type DriveTypeCount struct {
	DriveType string `json:"drive_type"`
	Count     int64  `json:"count"`
}

// Stats is the answer to Stats
type Stats struct {
	TotalCars  int64            `json:"total_cars"`
	Brands     []BrandStats     `json:"brands"`
	DriveTypes []DriveTypeCount `json:"drive_types"`
}

// brandRow is one stored brand spelling as grouped by the store
type brandRow struct {
	Brand       *string  `bson:"_id"`
	Count       int64    `bson:"count"`
	AvgMPG      *float64 `bson:"avg_mpg"`
	AvgHP       *float64 `bson:"avg_hp"`
	AvgAccel    *float64 `bson:"avg_accel"`
	AvgTopSpeed *float64 `bson:"avg_top_speed"`
	MinYear     *int     `bson:"min_year"`
	MaxYear     *int     `bson:"max_year"`
	ModelCount  int64    `bson:"model_count"`
}

type driveTypeRow struct {
	DriveType *string `bson:"_id"`
	Count     int64   `bson:"count"`
}

var brandStatsPipeline = []bson.M{
	{"$group": bson.M{
		"_id":           "$brand",
		"count":         bson.M{"$sum": 1},
		"avg_mpg":       bson.M{"$avg": "$combined_mpg"},
		"avg_hp":        bson.M{"$avg": "$horsepower"},
		"avg_accel":     bson.M{"$avg": "$acceleration_0_100"},
		"avg_top_speed": bson.M{"$avg": "$vitesse_max"},
		"min_year":      bson.M{"$min": "$year"},
		"max_year":      bson.M{"$max": "$year"},
		"models":        bson.M{"$addToSet": "$model"},
	}},
	{"$project": bson.M{
		"count":         1,
		"avg_mpg":       1,
		"avg_hp":        1,
		"avg_accel":     1,
		"avg_top_speed": 1,
		"min_year":      1,
		"max_year":      1,
		"model_count":   bson.M{"$size": "$models"},
	}},
}

var driveTypePipeline = []bson.M{
	{"$group": bson.M{"_id": "$drive_type", "count": bson.M{"$sum": 1}}},
	{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
}

// Stats reports the catalog size, per-brand aggregates and drive type
// counts. Brand spellings that differ only by case or surrounding spaces
// are merged, their averages weighted by count.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.Cars.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count cars: %w", err)
	}

	var brandRows []brandRow
	if err := s.Cars.Aggregate(ctx, brandStatsPipeline, &brandRows); err != nil {
		return nil, fmt.Errorf("failed to aggregate brand stats: %w", err)
	}

	var driveRows []driveTypeRow
	if err := s.Cars.Aggregate(ctx, driveTypePipeline, &driveRows); err != nil {
		return nil, fmt.Errorf("failed to aggregate drive types: %w", err)
	}

	driveTypes := make([]DriveTypeCount, 0, len(driveRows))
	for _, row := range driveRows {
		label := "Unknown"
		if row.DriveType != nil {
			label = *row.DriveType
		}
		driveTypes = append(driveTypes, DriveTypeCount{DriveType: label, Count: row.Count})
	}

	return &Stats{TotalCars: total, Brands: mergeBrandRows(brandRows), DriveTypes: driveTypes}, nil
}

// brandAccumulator merges brand rows; averages stay unrounded until output
type brandAccumulator struct {
	key        string
	count      int64
	mpg        *float64
	hp         *float64
	accel      *float64
	topSpeed   *float64
	minYear    int
	maxYear    int
	modelCount int64
}

func brandKey(brand *string) string {
	key := ""
	if brand != nil {
		key = strings.TrimSpace(*brand)
	}
	if key == "" {
		key = "Unknown"
	}
	return strings.ToUpper(key)
}

func mergeBrandRows(rows []brandRow) []BrandStats {
	byKey := map[string]*brandAccumulator{}
	var order []string

	for _, row := range rows {
		key := brandKey(row.Brand)
		acc, ok := byKey[key]
		if !ok {
			acc = &brandAccumulator{key: key}
			byKey[key] = acc
			order = append(order, key)
		}
		acc.add(row)
	}

	out := make([]BrandStats, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key].stats())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Brand < out[j].Brand
	})
	return out
}

func (a *brandAccumulator) add(row brandRow) {
	prior := a.count
	a.count += row.Count
	a.mpg = weightedAverage(a.mpg, prior, row.AvgMPG, row.Count)
	a.hp = weightedAverage(a.hp, prior, row.AvgHP, row.Count)
	a.accel = weightedAverage(a.accel, prior, row.AvgAccel, row.Count)
	a.topSpeed = weightedAverage(a.topSpeed, prior, row.AvgTopSpeed, row.Count)
	if row.MinYear != nil && *row.MinYear > 0 && (a.minYear == 0 || *row.MinYear < a.minYear) {
		a.minYear = *row.MinYear
	}
	if row.MaxYear != nil && *row.MaxYear > a.maxYear {
		a.maxYear = *row.MaxYear
	}
	a.modelCount += row.ModelCount
}

func (a *brandAccumulator) stats() BrandStats {
	out := BrandStats{
		Brand:                   a.key,
		Count:                   a.count,
		AverageCombinedMPG:      round(a.mpg, 2),
		AverageHorsepower:       round(a.hp, 1),
		AverageAcceleration0100: round(a.accel, 2),
		AverageTopSpeed:         round(a.topSpeed, 1),
		ModelCount:              a.modelCount,
	}
	if a.minYear > 0 && a.maxYear > 0 {
		yr := fmt.Sprintf("%d-%d", a.minYear, a.maxYear)
		out.YearRange = &yr
	}
	return out
}

// weightedAverage combines two averages by their counts. A missing side
// leaves the other unchanged.
func weightedAverage(prior *float64, priorCount int64, incoming *float64, incomingCount int64) *float64 {
	switch {
	case prior == nil:
		return incoming
	case incoming == nil:
		return prior
	}
	total := priorCount + incomingCount
	if total == 0 {
		return prior
	}
	v := (*prior*float64(priorCount) + *incoming*float64(incomingCount)) / float64(total)
	return &v
}

func round(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	p := math.Pow(10, float64(places))
	r := math.Round(*v*p) / p
	return &r
}

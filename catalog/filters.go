package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Filters are the optional constraints of a car listing. A nil field adds
// no constraint.
type Filters struct {
	Q            *string
	Brand        *string
	Model        *string
	MinYear      *int
	MaxYear      *int
	MinPrice     *float64
	MaxPrice     *float64
	FuelType     *string
	Transmission *string
	DriveType    *string
	Cylinders    *int

	MinHorsepower       *float64
	MaxHorsepower       *float64
	MinCombinedMPG      *float64
	MaxCombinedMPG      *float64
	MaxAcceleration0100 *float64
	MinVitesseMax       *float64
	MaxVitesseMax       *float64
	MinTorqueNm         *float64
	MaxTorqueNm         *float64
}

// textSearchFields are scanned by the free-text q filter
var textSearchFields = []string{"brand", "model", "fuel_type", "transmission", "drive_type", "raw_spec"}

// Query folds the present filters into one store predicate
func (f Filters) Query() bson.M {
	var clauses []bson.M
	add := func(clause bson.M) {
		if clause != nil {
			clauses = append(clauses, clause)
		}
	}

	add(anyContains(f.Q, textSearchFields...))
	add(partial("brand", f.Brand))
	add(partial("model", f.Model))
	add(between("year", f.MinYear, f.MaxYear))
	add(between("price", f.MinPrice, f.MaxPrice))
	add(partial("fuel_type", f.FuelType))
	add(partial("transmission", f.Transmission))
	add(partial("drive_type", f.DriveType))
	add(equals("cylinders", f.Cylinders))
	add(knownBetween("horsepower", f.MinHorsepower, f.MaxHorsepower))
	add(knownBetween("combined_mpg", f.MinCombinedMPG, f.MaxCombinedMPG))
	add(knownBetween("acceleration_0_100", nil, f.MaxAcceleration0100))
	add(knownBetween("vitesse_max", f.MinVitesseMax, f.MaxVitesseMax))
	add(knownBetween("torque_nm", f.MinTorqueNm, f.MaxTorqueNm))

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	}
	return bson.M{"$and": clauses}
}

func anyContains(value *string, fields ...string) bson.M {
	if value == nil {
		return nil
	}
	or := make([]bson.M, len(fields))
	for i, field := range fields {
		or[i] = bson.M{field: contains(*value)}
	}
	return bson.M{"$or": or}
}

func partial(field string, value *string) bson.M {
	if value == nil {
		return nil
	}
	return bson.M{field: contains(*value)}
}

func equals[T any](field string, value *T) bson.M {
	if value == nil {
		return nil
	}
	return bson.M{field: *value}
}

func between[T int | float64](field string, min, max *T) bson.M {
	if min == nil && max == nil {
		return nil
	}
	cond := bson.M{}
	if min != nil {
		cond["$gte"] = *min
	}
	if max != nil {
		cond["$lte"] = *max
	}
	return bson.M{field: cond}
}

// knownBetween is between restricted to real measurements: null and
// non-positive placeholders never match, whatever the bounds.
func knownBetween(field string, min, max *float64) bson.M {
	clause := between(field, min, max)
	if clause == nil {
		return nil
	}
	cond := clause[field].(bson.M)
	cond["$ne"] = nil
	cond["$gt"] = 0
	return clause
}

// ParseFilters reads Filters from query parameters. Empty values are
// treated as absent; values that are not numbers where numbers are
// expected fail with a ValidationError.
func ParseFilters(q url.Values) (Filters, error) {
	p := paramParser{values: q}
	f := Filters{
		Q:            p.str("q"),
		Brand:        p.str("brand"),
		Model:        p.str("model"),
		MinYear:      p.integer("min_year"),
		MaxYear:      p.integer("max_year"),
		MinPrice:     p.float("min_price"),
		MaxPrice:     p.float("max_price"),
		FuelType:     p.str("fuel_type"),
		Transmission: p.str("transmission"),
		DriveType:    p.str("drive_type"),
		Cylinders:    p.integer("cylinders"),

		MinHorsepower:       p.float("min_horsepower"),
		MaxHorsepower:       p.float("max_horsepower"),
		MinCombinedMPG:      p.float("min_combined_mpg"),
		MaxCombinedMPG:      p.float("max_combined_mpg"),
		MaxAcceleration0100: p.float("max_acceleration_0_100"),
		MinVitesseMax:       p.float("min_vitesse_max"),
		MaxVitesseMax:       p.float("max_vitesse_max"),
		MinTorqueNm:         p.float("min_torque_nm"),
		MaxTorqueNm:         p.float("max_torque_nm"),
	}
	return f, p.err
}

// paramParser collects the first parse failure so callers can read many
// parameters and check once.
type paramParser struct {
	values url.Values
	err    error
}

func (p *paramParser) raw(key string) (string, bool) {
	v := strings.TrimSpace(p.values.Get(key))
	return v, v != ""
}

func (p *paramParser) str(key string) *string {
	v, ok := p.raw(key)
	if !ok {
		return nil
	}
	return &v
}

func (p *paramParser) integer(key string) *int {
	v, ok := p.raw(key)
	if !ok {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v)
		return nil
	}
	return &i
}

func (p *paramParser) float(key string) *float64 {
	v, ok := p.raw(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v)
		return nil
	}
	return &f
}

func (p *paramParser) fail(key, value string) {
	if p.err == nil {
		p.err = &ValidationError{Message: fmt.Sprintf("invalid value %q for %s", value, key)}
	}
}

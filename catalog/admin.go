package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/car-spec-api/models"
	"github.com/linesmerrill/car-spec-api/specs"
)

const carSequence = "cars"

// CarRecord is the administrative view of a car, with raw_spec decoded
type CarRecord struct {
	models.Car
	RawSpec interface{} `json:"raw_spec"`
}

// NewCarRecord builds the administrative view of car. An unparsable raw
// spec is returned as its original text.
func NewCarRecord(car *models.Car) *CarRecord {
	rec := &CarRecord{Car: *car}
	if car.RawSpec == nil || *car.RawSpec == "" {
		return rec
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(*car.RawSpec), &decoded); err != nil {
		rec.RawSpec = *car.RawSpec
		return rec
	}
	rec.RawSpec = decoded
	return rec
}

// Patch is a decoded JSON body of car attributes
type Patch map[string]interface{}

type patchField func(car *models.Car, value interface{}) error

func setString(dst **string) func(interface{}) error {
	return func(v interface{}) error {
		if v == nil {
			*dst = nil
			return nil
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return err
		}
		*dst = &s
		return nil
	}
}

func setInt(dst **int) func(interface{}) error {
	return func(v interface{}) error {
		if v == nil {
			*dst = nil
			return nil
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			return err
		}
		*dst = &n
		return nil
	}
}

func setFloat(dst **float64) func(interface{}) error {
	return func(v interface{}) error {
		if v == nil {
			*dst = nil
			return nil
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return err
		}
		*dst = &f
		return nil
	}
}

// patchFields are the attributes an admin may set
var patchFields = map[string]patchField{
	"brand": func(c *models.Car, v interface{}) error {
		s, err := cast.ToStringE(v)
		c.Brand = s
		return err
	},
	"model": func(c *models.Car, v interface{}) error {
		s, err := cast.ToStringE(v)
		c.Model = s
		return err
	},
	"year": func(c *models.Car, v interface{}) error {
		n, err := cast.ToIntE(v)
		c.Year = n
		return err
	},
	"price": func(c *models.Car, v interface{}) error {
		f, err := cast.ToFloat64E(v)
		c.Price = f
		return err
	},
	"cylinders":          func(c *models.Car, v interface{}) error { return setInt(&c.Cylinders)(v) },
	"engine_type":        func(c *models.Car, v interface{}) error { return setString(&c.EngineType)(v) },
	"horsepower":         func(c *models.Car, v interface{}) error { return setInt(&c.Horsepower)(v) },
	"fuel_type":          func(c *models.Car, v interface{}) error { return setString(&c.FuelType)(v) },
	"transmission":       func(c *models.Car, v interface{}) error { return setString(&c.Transmission)(v) },
	"acceleration_0_100": func(c *models.Car, v interface{}) error { return setFloat(&c.Acceleration0100)(v) },
	"vitesse_max":        func(c *models.Car, v interface{}) error { return setInt(&c.VitesseMax)(v) },
	"drive_type":         func(c *models.Car, v interface{}) error { return setString(&c.DriveType)(v) },
	"city_mpg":           func(c *models.Car, v interface{}) error { return setFloat(&c.CityMPG)(v) },
	"highway_mpg":        func(c *models.Car, v interface{}) error { return setFloat(&c.HighwayMPG)(v) },
	"combined_mpg":       func(c *models.Car, v interface{}) error { return setFloat(&c.CombinedMPG)(v) },
	"torque_nm":          func(c *models.Car, v interface{}) error { return setInt(&c.TorqueNm)(v) },
	"length":             func(c *models.Car, v interface{}) error { return setString(&c.Length)(v) },
	"width":              func(c *models.Car, v interface{}) error { return setString(&c.Width)(v) },
	"height":             func(c *models.Car, v interface{}) error { return setString(&c.Height)(v) },
	"color":              func(c *models.Car, v interface{}) error { return setString(&c.Color)(v) },
	"mileage":            func(c *models.Car, v interface{}) error { return setInt(&c.Mileage)(v) },
	"raw_spec":           setRawSpec,
}

// setRawSpec stores a raw spec given either as JSON text or as an object
func setRawSpec(c *models.Car, v interface{}) error {
	switch raw := v.(type) {
	case nil:
		c.RawSpec = nil
	case string:
		c.RawSpec = &raw
	default:
		b, err := json.Marshal(raw)
		if err != nil {
			return err
		}
		s := string(b)
		c.RawSpec = &s
	}
	return nil
}

func (p Patch) apply(car *models.Car) error {
	for key, value := range p {
		set, ok := patchFields[key]
		if !ok {
			continue
		}
		if err := set(car, value); err != nil {
			return &ValidationError{Message: fmt.Sprintf("invalid value for %s", key)}
		}
	}
	return nil
}

func ensureRawSpec(car *models.Car) {
	if car.RawSpec != nil && strings.TrimSpace(*car.RawSpec) != "" {
		return
	}
	raw := specs.SynthesizeRawSpec(car.Brand, car.Model, car.Year)
	car.RawSpec = &raw
}

// Create stores a new car. Brand, model and year are required and price
// defaults to 0; a raw spec is synthesized when none is given.
func (s *Service) Create(ctx context.Context, patch Patch) (*CarRecord, error) {
	for _, field := range []string{"brand", "model", "year"} {
		if v, ok := patch[field]; !ok || v == nil {
			return nil, &ValidationError{Message: "Missing required fields: brand, model, year"}
		}
	}

	car := &models.Car{}
	if err := patch.apply(car); err != nil {
		return nil, err
	}
	ensureRawSpec(car)

	id, err := s.Counters.Next(ctx, carSequence)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate car id: %w", err)
	}
	now := time.Now().UTC()
	car.ID = id
	car.CreatedAt = now
	car.UpdatedAt = now

	if err := s.Cars.InsertOne(ctx, car); err != nil {
		return nil, fmt.Errorf("failed to insert car: %w", err)
	}
	return NewCarRecord(car), nil
}

// Update applies patch to car id. Attributes absent from patch are kept and
// an explicit null clears an optional attribute.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*CarRecord, error) {
	car, err := s.findCar(ctx, id)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, &NotFoundError{Message: "Car not found"}
		}
		return nil, err
	}
	if len(patch) == 0 {
		return nil, &ValidationError{Message: "JSON body required"}
	}
	if err := patch.apply(car); err != nil {
		return nil, err
	}
	ensureRawSpec(car)
	car.UpdatedAt = time.Now().UTC()

	matched, err := s.Cars.ReplaceOne(ctx, bson.M{"_id": id}, car)
	if err != nil {
		return nil, fmt.Errorf("failed to update car %d: %w", id, err)
	}
	if matched == 0 {
		return nil, &NotFoundError{Message: "Car not found"}
	}
	return NewCarRecord(car), nil
}

// Delete removes car id
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.Cars.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete car %d: %w", id, err)
	}
	if deleted == 0 {
		return &NotFoundError{Message: "Car not found"}
	}
	return nil
}

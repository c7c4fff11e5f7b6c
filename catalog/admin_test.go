package catalog

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/car-spec-api/models"
)

func decodePatch(t *testing.T, body string) Patch {
	t.Helper()
	var p Patch
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return p
}

func TestCreate(t *testing.T) {
	s, cars, counters := newTestService(t)
	counters.On("Next", mock.Anything, "cars").Return(int64(12), nil)
	cars.On("InsertOne", mock.Anything, mock.MatchedBy(func(c *models.Car) bool {
		return c.ID == 12 && c.Brand == "Mazda" && c.Year == 2021 && c.Price == 0 &&
			*c.Horsepower == 181 && !c.CreatedAt.IsZero()
	})).Return(nil)

	rec, err := s.Create(ctx, decodePatch(t, `{"brand":"Mazda","model":"MX-5","year":2021,"horsepower":181}`))
	require.NoError(t, err)
	assert.Equal(t, int64(12), rec.ID)
	assert.Equal(t, map[string]interface{}{
		"Company":          "Mazda",
		"Model":            "MX-5",
		"Production Years": "2021",
	}, rec.RawSpec)
}

func TestCreate_RawSpecObject(t *testing.T) {
	s, cars, counters := newTestService(t)
	counters.On("Next", mock.Anything, "cars").Return(int64(1), nil)
	cars.On("InsertOne", mock.Anything, mock.MatchedBy(func(c *models.Car) bool {
		return c.RawSpec != nil && *c.RawSpec == `{"Gearbox":"Manual"}`
	})).Return(nil)

	_, err := s.Create(ctx, decodePatch(t, `{"brand":"Mazda","model":"MX-5","year":2021,"raw_spec":{"Gearbox":"Manual"}}`))
	require.NoError(t, err)
}

func TestCreate_MissingFields(t *testing.T) {
	s, _, _ := newTestService(t)

	_, err := s.Create(ctx, decodePatch(t, `{"brand":"Mazda","year":2021}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Missing required fields: brand, model, year", verr.Message)
}

func TestCreate_InvalidYear(t *testing.T) {
	s, _, _ := newTestService(t)

	_, err := s.Create(ctx, decodePatch(t, `{"brand":"Mazda","model":"MX-5","year":"soon"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid value for year", verr.Message)
}

func TestCreate_InsertFails(t *testing.T) {
	s, cars, counters := newTestService(t)
	counters.On("Next", mock.Anything, "cars").Return(int64(2), nil)
	cars.On("InsertOne", mock.Anything, mock.Anything).Return(errors.New("mocked-error"))

	_, err := s.Create(ctx, decodePatch(t, `{"brand":"Mazda","model":"MX-5","year":2021}`))
	assert.EqualError(t, err, "failed to insert car: mocked-error")
}

func TestUpdate(t *testing.T) {
	s, cars, _ := newTestService(t)
	raw := `{"Company":"Audi"}`
	existing := &models.Car{ID: 3, Brand: "Audi", Model: "A4", Year: 2019, Horsepower: intPtr(190), Color: strPtr("red"), RawSpec: &raw}

	cars.On("FindOne", mock.Anything, bson.M{"_id": int64(3)}).Return(existing, nil)
	cars.On("ReplaceOne", mock.Anything, bson.M{"_id": int64(3)}, mock.MatchedBy(func(c *models.Car) bool {
		return c.Price == 45000 && c.Color == nil && *c.Horsepower == 190 && c.Model == "A4"
	})).Return(int64(1), nil)

	rec, err := s.Update(ctx, 3, decodePatch(t, `{"price":45000,"color":null,"unknown":"ignored"}`))
	require.NoError(t, err)
	assert.Equal(t, 45000.0, rec.Price)
	assert.Equal(t, map[string]interface{}{"Company": "Audi"}, rec.RawSpec)
}

func TestUpdate_NotFound(t *testing.T) {
	s, cars, _ := newTestService(t)
	cars.On("FindOne", mock.Anything, bson.M{"_id": int64(8)}).Return(nil, mongo.ErrNoDocuments)

	_, err := s.Update(ctx, 8, Patch{"price": 1})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Car not found", nf.Message)
}

func TestUpdate_EmptyBody(t *testing.T) {
	s, cars, _ := newTestService(t)
	cars.On("FindOne", mock.Anything, bson.M{"_id": int64(3)}).Return(&models.Car{ID: 3}, nil)

	_, err := s.Update(ctx, 3, Patch{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "JSON body required", verr.Message)
}

func TestUpdate_RemovedConcurrently(t *testing.T) {
	s, cars, _ := newTestService(t)
	cars.On("FindOne", mock.Anything, mock.Anything).Return(&models.Car{ID: 3, Brand: "Audi"}, nil)
	cars.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	_, err := s.Update(ctx, 3, Patch{"brand": "Audi"})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestDelete(t *testing.T) {
	s, cars, _ := newTestService(t)
	cars.On("DeleteOne", mock.Anything, bson.M{"_id": int64(3)}).Return(int64(1), nil)
	cars.On("DeleteOne", mock.Anything, bson.M{"_id": int64(4)}).Return(int64(0), nil)

	assert.NoError(t, s.Delete(ctx, 3))

	var nf *NotFoundError
	assert.ErrorAs(t, s.Delete(ctx, 4), &nf)
}

func TestNewCarRecord_UnparsableRawSpec(t *testing.T) {
	raw := "not json"
	rec := NewCarRecord(&models.Car{ID: 1, RawSpec: &raw})
	assert.Equal(t, "not json", rec.RawSpec)

	b, err := json.Marshal(NewCarRecord(&models.Car{ID: 2}))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"raw_spec":null`)
}

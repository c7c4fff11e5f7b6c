package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/car-spec-api/api/handlers"
	"github.com/linesmerrill/car-spec-api/catalog"
	"github.com/linesmerrill/car-spec-api/databases/mocks"
	"github.com/linesmerrill/car-spec-api/models"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func newCatalog(t *testing.T) (*catalog.Service, *mocks.CarDatabase, *mocks.CounterDatabase) {
	cars := &mocks.CarDatabase{}
	counters := &mocks.CounterDatabase{}
	t.Cleanup(func() {
		cars.AssertExpectations(t)
		counters.AssertExpectations(t)
	})
	return catalog.NewService(cars, counters), cars, counters
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func TestCar_CarByIDHandlerInvalidID(t *testing.T) {
	svc, _, _ := newCatalog(t)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("GET", "/api/v1/cars/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"car_id": "abc"})
	rr := serve(c.CarByIDHandler, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"invalid car_id"}`, rr.Body.String())
}

func TestCar_CarByIDHandlerNotFound(t *testing.T) {
	svc, cars, _ := newCatalog(t)
	cars.On("FindOne", mock.Anything, bson.M{"_id": int64(7)}).Return(nil, mongo.ErrNoDocuments)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("GET", "/api/v1/cars/7", nil)
	req = mux.SetURLVars(req, map[string]string{"car_id": "7"})
	rr := serve(c.CarByIDHandler, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Car with ID 7 not found"}`, rr.Body.String())
}

func TestCar_CarByIDHandlerStoreFailure(t *testing.T) {
	svc, cars, _ := newCatalog(t)
	cars.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("GET", "/api/v1/cars/7", nil)
	req = mux.SetURLVars(req, map[string]string{"car_id": "7"})
	rr := serve(c.CarByIDHandler, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())
}

func TestCar_CarByIDHandler(t *testing.T) {
	svc, cars, _ := newCatalog(t)
	cars.On("FindOne", mock.Anything, bson.M{"_id": int64(3)}).Return(&models.Car{
		ID:         3,
		Brand:      "BMW",
		Model:      "M3",
		Year:       2021,
		Horsepower: intPtr(473),
		RawSpec:    strPtr(`{"Engine": "3.0L"}`),
	}, nil)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("GET", "/api/v1/cars/3", nil)
	req = mux.SetURLVars(req, map[string]string{"car_id": "3"})
	rr := serve(c.CarByIDHandler, req)

	require.Equal(t, http.StatusOK, rr.Code)
	car, ok := decodeBody(t, rr)["car"].(map[string]interface{})
	require.True(t, ok, rr.Body.String())
	assert.Equal(t, "BMW", car["Company"])
	assert.EqualValues(t, 473, car["Power(HP)"])
	assert.Equal(t, "3.0L", car["Engine"])
}

func TestCar_CarsHandlerInvalidQuery(t *testing.T) {
	svc, _, _ := newCatalog(t)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("GET", "/api/v1/cars?page=abc", nil)
	rr := serve(c.CarsHandler, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCar_CarsHandlerPastLastPage(t *testing.T) {
	svc, cars, _ := newCatalog(t)
	cars.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(3), nil)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("GET", "/api/v1/cars?page=5&per_page=2", nil)
	rr := serve(c.CarsHandler, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"cars":[],"total":3,"page":5,"per_page":2,"pages":2}`, rr.Body.String())
}

func TestCar_CompareHandlerMissingIDs(t *testing.T) {
	svc, _, _ := newCatalog(t)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("POST", "/api/v1/cars/compare", nil)
	rr := serve(c.CompareHandler, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["error"], "car_ids required")
}

func TestCar_CompareHandlerMalformedIDs(t *testing.T) {
	svc, _, _ := newCatalog(t)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("POST", "/api/v1/cars/compare?ids=1,x", nil)
	rr := serve(c.CompareHandler, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid car IDs format. Use comma-separated integers."}`, rr.Body.String())
}

func TestCar_CompareHandlerSingleID(t *testing.T) {
	svc, _, _ := newCatalog(t)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("POST", "/api/v1/cars/compare", bytes.NewBufferString(`{"car_ids": [4]}`))
	req.Header.Set("Content-Type", "application/json")
	rr := serve(c.CompareHandler, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{
		"error": "At least 2 car IDs required for comparison",
		"cars": [],
		"comparison_winners": {},
		"found": 1
	}`, rr.Body.String())
}

func TestCar_CompareHandler(t *testing.T) {
	svc, cars, _ := newCatalog(t)
	cars.On("Find", mock.Anything, bson.M{"_id": bson.M{"$in": []int64{1, 2}}}, mock.Anything).Return([]models.Car{
		{ID: 1, Brand: "Audi", Horsepower: intPtr(250)},
		{ID: 2, Brand: "BMW", Horsepower: intPtr(300)},
	}, nil)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("POST", "/api/v1/cars/compare?ids=1,2", nil)
	rr := serve(c.CompareHandler, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.EqualValues(t, 2, body["total_cars"])
	winners, ok := body["comparison_winners"].(map[string]interface{})
	require.True(t, ok)
	hp, ok := winners["horsepower"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, hp["car_id"])
}

func TestCar_CompareByYearHandlerInvalidYear(t *testing.T) {
	svc, _, _ := newCatalog(t)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("GET", "/api/v1/cars/compare/by-year/x", nil)
	req = mux.SetURLVars(req, map[string]string{"year": "x"})
	rr := serve(c.CompareByYearHandler, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"invalid year"}`, rr.Body.String())
}

func TestCar_TopHandlerInvalidMetric(t *testing.T) {
	svc, _, _ := newCatalog(t)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("GET", "/api/v1/cars/top/weight", nil)
	req = mux.SetURLVars(req, map[string]string{"metric": "weight"})
	rr := serve(c.TopHandler, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, []interface{}{}, body["cars"])
	assert.Contains(t, body["valid_metrics"], "horsepower")
	assert.Contains(t, body["error"], `"weight"`)
}

func TestCar_TopHandlerInvalidLimit(t *testing.T) {
	svc, _, _ := newCatalog(t)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("GET", "/api/v1/cars/top/horsepower?limit=ten", nil)
	req = mux.SetURLVars(req, map[string]string{"metric": "horsepower"})
	rr := serve(c.TopHandler, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCar_TopHandlerEmpty(t *testing.T) {
	svc, cars, _ := newCatalog(t)
	cars.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.Car{}, nil)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("GET", "/api/v1/cars/top/torque_nm", nil)
	req = mux.SetURLVars(req, map[string]string{"metric": "torque_nm"})
	rr := serve(c.TopHandler, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"No cars found with metric torque_nm","cars":[],"metric":"torque_nm"}`, rr.Body.String())
}

func TestCar_TopHandler(t *testing.T) {
	svc, cars, _ := newCatalog(t)
	cars.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.Car{
		{ID: 9, Horsepower: intPtr(600)},
		{ID: 4, Horsepower: intPtr(420)},
	}, nil)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("GET", "/api/v1/cars/top/horsepower?limit=2", nil)
	req = mux.SetURLVars(req, map[string]string{"metric": "horsepower"})
	rr := serve(c.TopHandler, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Horsepower", body["metric_display"])
	assert.EqualValues(t, 2, body["limit"])
	ranked := body["cars"].([]interface{})
	require.Len(t, ranked, 2)
	assert.EqualValues(t, 1, ranked[0].(map[string]interface{})["rank"])
	assert.EqualValues(t, 9, ranked[0].(map[string]interface{})["id"])
}

func TestCar_SimilarHandlerUnknownCar(t *testing.T) {
	svc, cars, _ := newCatalog(t)
	cars.On("FindOne", mock.Anything, bson.M{"_id": int64(12)}).Return(nil, mongo.ErrNoDocuments)
	c := handlers.Car{Service: svc}

	req, _ := http.NewRequest("GET", "/api/v1/cars/12/similar", nil)
	req = mux.SetURLVars(req, map[string]string{"car_id": "12"})
	rr := serve(c.SimilarHandler, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

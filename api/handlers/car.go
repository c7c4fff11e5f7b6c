package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/car-spec-api/catalog"
)

// Car exported for testing purposes
type Car struct {
	Service      *catalog.Service
	QueryTimeout time.Duration
}

// CarsHandler returns a filtered, sorted page of cars
func (c Car) CarsHandler(w http.ResponseWriter, r *http.Request) {
	filters, err := catalog.ParseFilters(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}
	opts, err := catalog.ParseListOptions(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := queryContext(r, c.QueryTimeout)
	defer cancel()
	page, err := c.Service.List(ctx, filters, opts)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, page)
}

// CarByIDHandler returns one car with its merged spec
func (c Car) CarByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "car_id")
	if err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := queryContext(r, c.QueryTimeout)
	defer cancel()
	item, err := c.Service.Get(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"car": item.Spec})
}

// SearchHandler returns cars matching the q parameter
func (c Car) SearchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := queryContext(r, c.QueryTimeout)
	defer cancel()
	res, err := c.Service.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// StatsHandler returns catalog-wide statistics
func (c Car) StatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := queryContext(r, c.QueryTimeout)
	defer cancel()
	stats, err := c.Service.Stats(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, stats)
}

type compareRequest struct {
	CarIDs []int64 `json:"car_ids"`
}

// CompareHandler compares the cars listed in the body's car_ids or the ids
// query parameter
func (c Car) CompareHandler(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if r.Body != nil && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			zap.S().Debugw("ignoring unreadable compare body", "error", err)
		}
	}

	ids := req.CarIDs
	if len(ids) == 0 {
		if param := r.URL.Query().Get("ids"); param != "" {
			for _, part := range strings.Split(param, ",") {
				id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
				if err != nil {
					respondError(w, &catalog.ValidationError{Message: "Invalid car IDs format. Use comma-separated integers."})
					return
				}
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		respondError(w, &catalog.ValidationError{Message: `car_ids required. Provide as ?ids=1,2,3 or in POST body with {"car_ids": [1,2,3]}`})
		return
	}

	ctx, cancel := queryContext(r, c.QueryTimeout)
	defer cancel()
	res, err := c.Service.Compare(ctx, ids)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// CompareBySerieHandler compares every car of a model serie
func (c Car) CompareBySerieHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := queryContext(r, c.QueryTimeout)
	defer cancel()
	res, err := c.Service.CompareBySerie(ctx, mux.Vars(r)["serie"])
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// CompareByBrandHandler compares every car of a brand
func (c Car) CompareByBrandHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := queryContext(r, c.QueryTimeout)
	defer cancel()
	res, err := c.Service.CompareByBrand(ctx, mux.Vars(r)["brand"])
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// CompareByYearHandler compares every car of a production year
func (c Car) CompareByYearHandler(w http.ResponseWriter, r *http.Request) {
	year, err := intVar(r, "year")
	if err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := queryContext(r, c.QueryTimeout)
	defer cancel()
	res, err := c.Service.CompareByYear(ctx, int(year))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// TopHandler ranks cars by the metric path parameter
func (c Car) TopHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := queryContext(r, c.QueryTimeout)
	defer cancel()
	res, err := c.Service.TopBy(ctx, mux.Vars(r)["metric"], limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// SimilarHandler returns the cars most similar to car_id
func (c Car) SimilarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "car_id")
	if err != nil {
		respondError(w, err)
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := queryContext(r, c.QueryTimeout)
	defer cancel()
	res, err := c.Service.Similar(ctx, id, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

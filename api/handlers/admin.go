package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/car-spec-api/api"
	"github.com/linesmerrill/car-spec-api/catalog"
)

// Admin exported for testing purposes
type Admin struct {
	Service      *catalog.Service
	QueryTimeout time.Duration
}

func decodePatch(r *http.Request) catalog.Patch {
	if r.Body == nil {
		return nil
	}
	var patch catalog.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		zap.S().Debugw("unreadable car body", "error", err)
		return nil
	}
	return patch
}

func actor(r *http.Request) string {
	if user, ok := api.UserFromContext(r.Context()); ok {
		return user.UserName()
	}
	return ""
}

// CreateCarHandler stores a new car
func (a Admin) CreateCarHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := queryContext(r, a.QueryTimeout)
	defer cancel()
	car, err := a.Service.Create(ctx, decodePatch(r))
	if err != nil {
		respondError(w, err)
		return
	}
	zap.S().Infow("car created", "car_id", car.ID, "by", actor(r))
	respond(w, http.StatusCreated, map[string]interface{}{"message": "Car created successfully", "car": car})
}

// UpdateCarHandler applies a partial update to car_id
func (a Admin) UpdateCarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "car_id")
	if err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := queryContext(r, a.QueryTimeout)
	defer cancel()
	car, err := a.Service.Update(ctx, id, decodePatch(r))
	if err != nil {
		respondError(w, err)
		return
	}
	zap.S().Infow("car updated", "car_id", id, "by", actor(r))
	respond(w, http.StatusOK, map[string]interface{}{"message": "Car updated", "car": car})
}

// DeleteCarHandler removes car_id
func (a Admin) DeleteCarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "car_id")
	if err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := queryContext(r, a.QueryTimeout)
	defer cancel()
	if err := a.Service.Delete(ctx, id); err != nil {
		respondError(w, err)
		return
	}
	zap.S().Infow("car deleted", "car_id", id, "by", actor(r))
	respond(w, http.StatusOK, map[string]interface{}{"message": "Car deleted"})
}

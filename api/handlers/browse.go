package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/car-spec-api/catalog"
)

// Browse exported for testing purposes
type Browse struct {
	Service      *catalog.Service
	QueryTimeout time.Duration
}

// BrandsHandler lists every brand with its car count
func (b Browse) BrandsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := queryContext(r, b.QueryTimeout)
	defer cancel()
	brands, err := b.Service.Brands(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"brands": brands, "total": len(brands)})
}

// SeriesByBrandHandler lists the model series of a brand
func (b Browse) SeriesByBrandHandler(w http.ResponseWriter, r *http.Request) {
	brand := mux.Vars(r)["brand"]

	ctx, cancel := queryContext(r, b.QueryTimeout)
	defer cancel()
	series, err := b.Service.SeriesByBrand(ctx, brand)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"brand": brand, "series": series, "total": len(series)})
}

// YearsHandler lists production years, newest first
func (b Browse) YearsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := queryContext(r, b.QueryTimeout)
	defer cancel()
	years, err := b.Service.Years(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"years": years, "total": len(years)})
}

// FilterByBrandHandler pages through the cars of a brand
func (b Browse) FilterByBrandHandler(w http.ResponseWriter, r *http.Request) {
	opts, err := catalog.ParseListOptions(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := queryContext(r, b.QueryTimeout)
	defer cancel()
	page, err := b.Service.FilterByBrand(ctx, mux.Vars(r)["brand"], opts)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, page)
}

// FilterBySerieHandler pages through the cars of a model serie
func (b Browse) FilterBySerieHandler(w http.ResponseWriter, r *http.Request) {
	opts, err := catalog.ParseListOptions(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := queryContext(r, b.QueryTimeout)
	defer cancel()
	page, err := b.Service.FilterBySerie(ctx, mux.Vars(r)["serie"], opts)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, page)
}

// FilterByYearHandler pages through the cars of a production year
func (b Browse) FilterByYearHandler(w http.ResponseWriter, r *http.Request) {
	year, err := intVar(r, "year")
	if err != nil {
		respondError(w, err)
		return
	}
	opts, err := catalog.ParseListOptions(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := queryContext(r, b.QueryTimeout)
	defer cancel()
	page, err := b.Service.FilterByYear(ctx, int(year), opts)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, page)
}

// AvailableMetricsHandler describes the ranking metrics
func (b Browse) AvailableMetricsHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, b.Service.Metrics())
}

// AvailableSeriesHandler lists the most common model series
func (b Browse) AvailableSeriesHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := queryContext(r, b.QueryTimeout)
	defer cancel()
	res, err := b.Service.AvailableSeries(ctx, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// AvailableBrandsHandler lists the most common brands
func (b Browse) AvailableBrandsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		respondError(w, err)
		return
	}

	ctx, cancel := queryContext(r, b.QueryTimeout)
	defer cancel()
	res, err := b.Service.AvailableBrands(ctx, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// AvailableYearsHandler lists every production year
func (b Browse) AvailableYearsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := queryContext(r, b.QueryTimeout)
	defer cancel()
	res, err := b.Service.AvailableYears(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/car-spec-api/api"
	"github.com/linesmerrill/car-spec-api/catalog"
	"github.com/linesmerrill/car-spec-api/config"
	"github.com/linesmerrill/car-spec-api/databases"
	"github.com/linesmerrill/car-spec-api/models"
	"github.com/linesmerrill/car-spec-api/users"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	client   databases.ClientHelper
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	tokens := api.NewTokenIssuer(a.Config.JWTSecret, a.Config.JWTTTL)
	guard := api.NewGuard(tokens, a.Config.TokenCacheTTL)

	counters := databases.NewCounterDatabase(a.dbHelper)
	cs := catalog.NewService(databases.NewCarDatabase(a.dbHelper), counters)
	us := users.NewService(databases.NewUserDatabase(a.dbHelper), counters)

	c := Car{Service: cs, QueryTimeout: a.Config.QueryTimeout}
	b := Browse{Service: cs, QueryTimeout: a.Config.QueryTimeout}
	adm := Admin{Service: cs, QueryTimeout: a.Config.QueryTimeout}
	auth := Auth{Users: us, Tokens: tokens, AllowAdminSignup: a.Config.AllowAdminSignup, QueryTimeout: a.Config.QueryTimeout}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.HandleFunc("/", indexHandler).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/register", http.HandlerFunc(auth.RegisterHandler)).Methods("POST")
	apiCreate.Handle("/auth/login", http.HandlerFunc(auth.LoginHandler)).Methods("POST")

	apiCreate.Handle("/admin/cars", guard.AdminOnly(http.HandlerFunc(adm.CreateCarHandler))).Methods("POST")
	apiCreate.Handle("/admin/cars/{car_id:[0-9]+}", guard.AdminOnly(http.HandlerFunc(adm.UpdateCarHandler))).Methods("PUT")
	apiCreate.Handle("/admin/cars/{car_id:[0-9]+}", guard.AdminOnly(http.HandlerFunc(adm.DeleteCarHandler))).Methods("DELETE")

	apiCreate.Handle("/cars", http.HandlerFunc(c.CarsHandler)).Methods("GET")
	apiCreate.Handle("/cars/search", http.HandlerFunc(c.SearchHandler)).Methods("GET")
	apiCreate.Handle("/cars/stats", http.HandlerFunc(c.StatsHandler)).Methods("GET")
	apiCreate.Handle("/cars/compare", http.HandlerFunc(c.CompareHandler)).Methods("POST")
	apiCreate.Handle("/cars/compare/by-serie/{serie}", http.HandlerFunc(c.CompareBySerieHandler)).Methods("GET")
	apiCreate.Handle("/cars/compare/by-brand/{brand}", http.HandlerFunc(c.CompareByBrandHandler)).Methods("GET")
	apiCreate.Handle("/cars/compare/by-year/{year:[0-9]+}", http.HandlerFunc(c.CompareByYearHandler)).Methods("GET")
	apiCreate.Handle("/cars/top/{metric}", http.HandlerFunc(c.TopHandler)).Methods("GET")
	apiCreate.Handle("/cars/{car_id:[0-9]+}", http.HandlerFunc(c.CarByIDHandler)).Methods("GET")
	apiCreate.Handle("/cars/{car_id:[0-9]+}/similar", http.HandlerFunc(c.SimilarHandler)).Methods("GET")

	apiCreate.Handle("/browse/brands", http.HandlerFunc(b.BrandsHandler)).Methods("GET")
	apiCreate.Handle("/browse/brands/{brand}/series", http.HandlerFunc(b.SeriesByBrandHandler)).Methods("GET")
	apiCreate.Handle("/browse/years", http.HandlerFunc(b.YearsHandler)).Methods("GET")

	apiCreate.Handle("/filter/by-brand/{brand}", http.HandlerFunc(b.FilterByBrandHandler)).Methods("GET")
	apiCreate.Handle("/filter/by-serie/{serie}", http.HandlerFunc(b.FilterBySerieHandler)).Methods("GET")
	apiCreate.Handle("/filter/by-year/{year:[0-9]+}", http.HandlerFunc(b.FilterByYearHandler)).Methods("GET")

	apiCreate.Handle("/available/metrics", http.HandlerFunc(b.AvailableMetricsHandler)).Methods("GET")
	apiCreate.Handle("/available/series", http.HandlerFunc(b.AvailableSeriesHandler)).Methods("GET")
	apiCreate.Handle("/available/brands", http.HandlerFunc(b.AvailableBrandsHandler)).Methods("GET")
	apiCreate.Handle("/available/years", http.HandlerFunc(b.AvailableYearsHandler)).Methods("GET")

	return r
}

// Handler wraps the router with request logging, CORS and the request
// timeout
func (a *App) Handler() http.Handler {
	origins := a.Config.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	withCORS := cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
	return api.RequestLogger(withCORS(api.TimeoutMiddleware(a.Config.RequestTimeout)(a.Router)))
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize(ctx context.Context) error {
	if a.Config.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if err := a.Connect(ctx); err != nil {
		return err
	}
	if err := a.bootstrapAdmin(ctx); err != nil {
		return err
	}

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Connect opens the database connection and ensures the collection indexes
func (a *App) Connect(ctx context.Context) error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}
	return a.connect(ctx, client)
}

func (a *App) connect(ctx context.Context, client databases.ClientHelper) error {
	a.client = client
	err := client.Connect(ctx)
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	zap.S().Info("car-spec-api has connected to the database")

	return a.ensureIndexes(ctx)
}

// Close disconnects from the database
func (a *App) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}

// Users returns the user service over the connected database
func (a *App) Users() *users.Service {
	return users.NewService(databases.NewUserDatabase(a.dbHelper), databases.NewCounterDatabase(a.dbHelper))
}

func (a *App) ensureIndexes(ctx context.Context) error {
	if err := databases.NewCarDatabase(a.dbHelper).EnsureIndexes(ctx); err != nil {
		zap.S().With(err).Error("failed to create car indexes")
		return err
	}
	if err := databases.NewUserDatabase(a.dbHelper).EnsureIndexes(ctx); err != nil {
		zap.S().With(err).Error("failed to create user indexes")
		return err
	}
	return nil
}

func (a *App) bootstrapAdmin(ctx context.Context) error {
	if a.Config.AdminUser == "" || a.Config.AdminPassword == "" {
		return nil
	}
	return a.Users().EnsureAdmin(ctx, a.Config.AdminUser, a.Config.AdminPassword)
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

type serviceIndex struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func indexHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, serviceIndex{
		Message: "Car Specifications API",
		Version: "1.0",
		Endpoints: map[string]string{
			"cars":       "GET /api/v1/cars",
			"get_car":    "GET /api/v1/cars/<id>",
			"search":     "GET /api/v1/cars/search?q=<query>",
			"stats":      "GET /api/v1/cars/stats",
			"compare":    "POST /api/v1/cars/compare",
			"top":        "GET /api/v1/cars/top/<metric>",
			"similar":    "GET /api/v1/cars/<id>/similar",
			"create_car": "POST /api/v1/admin/cars",
			"update_car": "PUT /api/v1/admin/cars/<id>",
			"delete_car": "DELETE /api/v1/admin/cars/<id>",
			"register":   "POST /api/v1/auth/register",
			"login":      "POST /api/v1/auth/login",
		},
	})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusNotFound, models.ErrorResponse{Error: "Resource not found"})
}

package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/linesmerrill/car-spec-api/models"
)

// Config holds the project config values
type Config struct {
	Env          string
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string

	JWTSecret     string
	JWTTTL        time.Duration
	TokenCacheTTL time.Duration

	RequestTimeout time.Duration
	QueryTimeout   time.Duration

	AllowAdminSignup   bool
	AdminUser          string
	AdminPassword      string
	CORSAllowedOrigins []string
}

// New sets up all config related services
func New() *Config {
	_ = godotenv.Load(".env")

	conf := &Config{
		Env:          cast.ToString(getOrReturnDefault("ENV", "local")),
		URL:          cast.ToString(getOrReturnDefault("DB_URI", "mongodb://127.0.0.1:27017")),
		DatabaseName: cast.ToString(getOrReturnDefault("DB_NAME", "car_specs")),
		BaseURL:      cast.ToString(getOrReturnDefault("BASE_URL", "")),
		Port:         cast.ToString(getOrReturnDefault("PORT", "8080")),

		JWTSecret:     cast.ToString(getOrReturnDefault("JWT_SECRET", "")),
		JWTTTL:        cast.ToDuration(getOrReturnDefault("JWT_TTL", time.Hour)),
		TokenCacheTTL: cast.ToDuration(getOrReturnDefault("TOKEN_CACHE_TTL", 5*time.Minute)),

		RequestTimeout: cast.ToDuration(getOrReturnDefault("REQUEST_TIMEOUT", 30*time.Second)),
		QueryTimeout:   cast.ToDuration(getOrReturnDefault("QUERY_TIMEOUT", 10*time.Second)),

		AllowAdminSignup:   cast.ToBool(getOrReturnDefault("ALLOW_ADMIN_SIGNUP", false)),
		AdminUser:          cast.ToString(getOrReturnDefault("ADMIN_USER", "")),
		AdminPassword:      cast.ToString(getOrReturnDefault("ADMIN_PASSWORD", "")),
		CORSAllowedOrigins: splitList(cast.ToString(getOrReturnDefault("CORS_ALLOWED_ORIGINS", "*"))),
	}

	//setup zap logger and replace default logger
	logger, err := setLogger(conf.Env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return conf
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With("error", err).Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorResponse{Error: message})
	_, _ = w.Write(b)
}

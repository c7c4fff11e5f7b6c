package config

import (
	"go.uber.org/zap"

	"github.com/linesmerrill/car-spec-api/logging"
)

// setLogger builds the zap logger for the given environment. Unknown
// environments fall back to the local example logger.
func setLogger(env string) (*zap.Logger, error) {
	return logging.New(env)
}

package catalog

import (
	"fmt"
	"strings"
)

// ValidationError reports missing or malformed caller input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports an id, brand, serie, year or metric value that
// resolved to nothing. Context carries extra fields for the error body.
type NotFoundError struct {
	Message string
	Context map[string]interface{}
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// InsufficientDataError reports a comparison that could not gather two
// records. Found is the number of records (or ids) available.
type InsufficientDataError struct {
	Message string
	Found   int
}

func (e *InsufficientDataError) Error() string {
	return e.Message
}

// InvalidMetricError reports a ranking metric outside the supported set
type InvalidMetricError struct {
	Metric string
	Valid  []string
}

func (e *InvalidMetricError) Error() string {
	return fmt.Sprintf("Invalid metric %q. Supported metrics are: %s", e.Metric, strings.Join(e.Valid, ", "))
}

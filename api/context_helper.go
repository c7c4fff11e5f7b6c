package api

import (
	"context"
	"time"
)

// DefaultQueryTimeout bounds store calls when no timeout is configured
const DefaultQueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context for store calls bounded by timeout
func WithQueryTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return context.WithTimeout(parent, timeout)
}

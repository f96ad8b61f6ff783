package http

import (
	"context"

	"dndtools/app/internal/catalog"
)

type contextKey string

const (
	requestIDContextKey contextKey = "dndtools/request-id"
	curatorContextKey   contextKey = "dndtools/curator"
)

// RequestIDFromContext extracts the request identifier from the context when available.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(requestIDContextKey).(string); ok {
		return value
	}
	return ""
}

// CuratorFromContext returns the curator authenticated for the request, if any.
func CuratorFromContext(ctx context.Context) *catalog.Curator {
	if ctx == nil {
		return nil
	}
	curator, _ := ctx.Value(curatorContextKey).(*catalog.Curator)
	return curator
}

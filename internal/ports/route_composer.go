package ports

import (
	"context"
	"present-delivery-service/internal/domain"
)

// Contract for retrieving route geometry through ordered waypoints.
type RouteComposer interface {
	// Return one encoded polyline per route section. Waypoints are visited in the given order.
	Compose(ctx context.Context, start, end domain.GeoPoint, waypoints []domain.GeoPoint) ([]string, error)
}

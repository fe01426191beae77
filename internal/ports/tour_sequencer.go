package ports

import (
	"context"
	"present-delivery-service/internal/domain"
)

// Contract for ordering delivery stops with an external tour optimizer.
type TourSequencer interface {
	// Return stop IDs in visiting order. Start and end of the tour are not included.
	Sequence(ctx context.Context, start domain.GeoPoint, stops []domain.TourStop, window domain.DeliveryWindow) ([]int64, error)
}

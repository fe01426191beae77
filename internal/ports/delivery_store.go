package ports

import (
	"context"
	"present-delivery-service/internal/domain"
)

// Port: a boundary for reading delivery targets and recording computed routes.
type DeliveryStore interface {
	LoadFacility(ctx context.Context) (domain.Facility, error)
	LoadPresents(ctx context.Context) ([]domain.Present, error)
	InsertPresent(ctx context.Context, name string, addr domain.Address) error
	InsertDeliveryRoute(ctx context.Context, facilityID int64, orderedPoints []domain.GeoPoint, polylines []string) error
}

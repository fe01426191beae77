package ports

import (
	"context"
	"present-delivery-service/internal/domain"
)

// Contract for turning free-text addresses into coordinates.
type AddressResolver interface {
	// Resolve an address using the first geocoding result only.
	Resolve(ctx context.Context, address string) (domain.Address, error)
}

// Optional cache in front of an AddressResolver.
type GeocodeCache interface {
	// Return the cached address and whether it was present.
	Get(ctx context.Context, key string) (domain.Address, bool, error)
	Put(ctx context.Context, key string, addr domain.Address) error
}

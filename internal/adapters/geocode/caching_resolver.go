package geocode

import (
	"context"
	"log/slog"
	"present-delivery-service/internal/domain"
	"present-delivery-service/internal/platform/metrics"
	"present-delivery-service/internal/ports"
)

// CachingResolver consults a GeocodeCache before delegating to the wrapped
// resolver. Cache failures never fail a resolution.
type CachingResolver struct {
	next   ports.AddressResolver
	cache  ports.GeocodeCache
	logger *slog.Logger
}

func NewCachingResolver(next ports.AddressResolver, cache ports.GeocodeCache, logger *slog.Logger) *CachingResolver {
	return &CachingResolver{
		next:   next,
		cache:  cache,
		logger: logger.With("component", "geocode_cache"),
	}
}

func (c *CachingResolver) Resolve(ctx context.Context, address string) (domain.Address, error) {
	key := Normalize(address)

	if key != "" {
		addr, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			c.logger.WarnContext(ctx, "geocode cache read failed", "address", key, "err", err)
		case ok:
			metrics.GeocodeCacheLookups.WithLabelValues("hit").Inc()
			return addr, nil
		}
		metrics.GeocodeCacheLookups.WithLabelValues("miss").Inc()
	}

	addr, err := c.next.Resolve(ctx, address)
	if err != nil {
		return domain.Address{}, err
	}

	if key != "" {
		if err := c.cache.Put(ctx, key, addr); err != nil {
			c.logger.WarnContext(ctx, "geocode cache write failed", "address", key, "err", err)
		}
	}

	return addr, nil
}

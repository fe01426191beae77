// Package app builds the process-wide handles shared by the process hosts.
// Handles are built once per process and passed explicitly into pipelines.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"present-delivery-service/internal/adapters/cache"
	"present-delivery-service/internal/adapters/geocode"
	"present-delivery-service/internal/adapters/here"
	"present-delivery-service/internal/adapters/secrets"
	"present-delivery-service/internal/config"
	"present-delivery-service/internal/platform/httpx"
	"present-delivery-service/internal/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/redis/go-redis/v9"
)

func LoadAWSConfig(ctx context.Context, cfg config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// ResolveSecrets swaps parameter names in cfg for their values when
// SECRETS_FROM_SSM is set. Otherwise the values are used as given.
func ResolveSecrets(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var src ports.SecretSource = secrets.PlainSource{}

	if cfg.UseSSM {
		awsCfg, err := LoadAWSConfig(ctx, *cfg)
		if err != nil {
			return err
		}
		src = secrets.NewSSMSource(ssm.NewFromConfig(awsCfg), logger)
	}

	err := secrets.ResolveAll(ctx, src,
		&cfg.DatabaseURL,
		&cfg.AppAPIKey,
		&cfg.HereDevAPIKey,
		&cfg.HerePlatAPIKey,
	)
	if err != nil {
		return fmt.Errorf("resolve secrets: %w", err)
	}
	return nil
}

// NewTourPlanner uses the developer key; the tour planning API rejects platform keys.
func NewTourPlanner(cfg config.Config, logger *slog.Logger) *here.TourPlanner {
	client := httpx.New("here_tour", cfg.Policy(config.PolicyTour), nil)
	return here.NewTourPlanner(client, cfg.TourBaseURL, cfg.HereDevAPIKey, logger)
}

func NewRouter(cfg config.Config, logger *slog.Logger) *here.Router {
	client := httpx.New("here_router", cfg.Policy(config.PolicyRouting), nil)
	return here.NewRouter(client, cfg.RouterBaseURL, cfg.HerePlatAPIKey, logger)
}

// NewAddressResolver returns the GSI resolver, behind a Redis cache when
// REDIS_URL is set. The returned client is nil without a cache.
func NewAddressResolver(cfg config.Config, logger *slog.Logger) (ports.AddressResolver, *redis.Client, error) {
	client := httpx.New("gsi", cfg.Policy(config.PolicyGeocode), nil)
	gsi := geocode.NewGSIResolver(client, cfg.GSIBaseURL, logger)

	if cfg.RedisURL == "" {
		return gsi, nil, nil
	}

	rdb, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	c := cache.NewRedisGeocodeCache(rdb, cfg.GeocodeTTL)
	return geocode.NewCachingResolver(gsi, c, logger), rdb, nil
}

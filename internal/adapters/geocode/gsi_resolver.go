package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"present-delivery-service/internal/domain"
	"present-delivery-service/internal/pkg/errs"
	"present-delivery-service/internal/platform/httpx"
	"present-delivery-service/internal/platform/obs"
	"strings"
)

const DefaultGSIBaseURL = "https://msearch.gsi.go.jp"

type gsiFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Title string `json:"title"`
	} `json:"properties"`
}

// GSIResolver implements AddressResolver with the GSI address search API.
// Only the first search result is used.
type GSIResolver struct {
	client  *httpx.Client
	baseURL string
	logger  *slog.Logger
}

func NewGSIResolver(client *httpx.Client, baseURL string, logger *slog.Logger) *GSIResolver {
	if baseURL == "" {
		baseURL = DefaultGSIBaseURL
	}
	return &GSIResolver{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With("component", "gsi_resolver"),
	}
}

// Normalize collapses whitespace so equal addresses share a cache key.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (g *GSIResolver) Resolve(ctx context.Context, address string) (_ domain.Address, err error) {
	const op = "gsi.Resolve"
	defer obs.Time(ctx, g.logger, op)(&err)

	norm := Normalize(address)
	if norm == "" {
		return domain.Address{}, errs.GeocodeError(op, errors.New("address must be non-empty"))
	}

	endpoint := g.baseURL + "/address-search/AddressSearch"

	resp, err := g.client.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("q", norm)
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return domain.Address{}, errs.GeocodeError(op, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	var decoded []gsiFeature
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Address{}, errs.GeocodeError(op, fmt.Errorf("decode geocode response: %w", err))
	}

	g.logger.DebugContext(ctx, "address search", "address", norm, "status", resp.StatusCode, "results", len(decoded))

	if len(decoded) == 0 {
		return domain.Address{}, errs.GeocodeError(op, fmt.Errorf("no geocode results for %q", norm))
	}

	// GeoJSON order: [lon, lat].
	coords := decoded[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Address{}, errs.GeocodeError(op, fmt.Errorf("invalid coordinate format for %q", norm))
	}

	title := strings.TrimSpace(decoded[0].Properties.Title)
	if title == "" {
		title = norm
	}

	return domain.Address{
		Point: domain.GeoPoint{Latitude: coords[1], Longitude: coords[0]},
		Text:  title,
	}, nil
}

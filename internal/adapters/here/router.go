package here

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"present-delivery-service/internal/domain"
	"present-delivery-service/internal/pkg/errs"
	"present-delivery-service/internal/platform/httpx"
	"present-delivery-service/internal/platform/obs"
	"strings"
)

const DefaultRouterBaseURL = "https://router.hereapi.com"

type routeResponse struct {
	Routes []struct {
		Sections []struct {
			Polyline string `json:"polyline"`
		} `json:"sections"`
	} `json:"routes"`
	Notices []struct {
		Title string `json:"title"`
		Code  string `json:"code"`
	} `json:"notices"`
}

// Router implements RouteComposer with the HERE Routing v8 API.
type Router struct {
	client  *httpx.Client
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

func NewRouter(client *httpx.Client, baseURL, apiKey string, logger *slog.Logger) *Router {
	if baseURL == "" {
		baseURL = DefaultRouterBaseURL
	}
	return &Router{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger.With("component", "router"),
	}
}

// routeQuery builds the query without credentials. Via order is significant.
func routeQuery(start, end domain.GeoPoint, waypoints []domain.GeoPoint) url.Values {
	q := url.Values{}
	q.Set("transportMode", "car")
	q.Set("origin", start.String())
	q.Set("destination", end.String())
	for _, w := range waypoints {
		q.Add("via", w.String())
	}
	q.Set("return", "polyline")
	return q
}

func (r *Router) Compose(
	ctx context.Context,
	start, end domain.GeoPoint,
	waypoints []domain.GeoPoint,
) (_ []string, err error) {
	const op = "here.Compose"
	defer obs.Time(ctx, r.logger, op)(&err)

	endpoint := r.baseURL + "/v8/routes"
	q := routeQuery(start, end, waypoints)

	r.logger.InfoContext(ctx, "route request", "endpoint", endpoint, "via", len(waypoints), "query", q.Encode())

	// apikey is attached only on the outgoing copy.
	signed := url.Values{}
	for k, v := range q {
		signed[k] = append([]string(nil), v...)
	}
	signed.Set("apikey", r.apiKey)
	rawQuery := signed.Encode()

	resp, err := r.client.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+rawQuery, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, errs.RoutingError(op, fmt.Errorf("route request failed: %w", err))
	}
	defer resp.Body.Close()

	var rr routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, errs.RoutingError(op, fmt.Errorf("decode route response: %w", err))
	}

	if len(rr.Routes) == 0 {
		if len(rr.Notices) > 0 {
			return nil, errs.RoutingError(op, fmt.Errorf("no route: %s (%s)", rr.Notices[0].Title, rr.Notices[0].Code))
		}
		return nil, errs.RoutingError(op, errors.New("no route in response"))
	}

	sections := rr.Routes[0].Sections
	if len(sections) == 0 {
		return nil, errs.RoutingError(op, errors.New("route has no sections"))
	}
	polylines := make([]string, 0, len(sections))
	for i, s := range sections {
		if s.Polyline == "" {
			return nil, errs.RoutingError(op, fmt.Errorf("section %d has no polyline", i))
		}
		// Polylines are stored comma-joined.
		if strings.Contains(s.Polyline, ",") {
			return nil, errs.RoutingError(op, fmt.Errorf("section %d polyline contains ','", i))
		}
		polylines = append(polylines, s.Polyline)
	}

	r.logger.DebugContext(ctx, "route response", "sections", len(polylines))

	return polylines, nil
}

package here

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"present-delivery-service/internal/domain"
	"present-delivery-service/internal/pkg/errs"
	"present-delivery-service/internal/platform/httpx"
	"present-delivery-service/internal/platform/obs"
	"strconv"
	"strings"
)

const DefaultTourPlanningBaseURL = "https://tourplanning.hereapi.com"

// TourPlanner implements TourSequencer with the HERE Tour Planning v3 API.
type TourPlanner struct {
	client  *httpx.Client
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

func NewTourPlanner(client *httpx.Client, baseURL, apiKey string, logger *slog.Logger) *TourPlanner {
	if baseURL == "" {
		baseURL = DefaultTourPlanningBaseURL
	}
	return &TourPlanner{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger.With("component", "tour_planner"),
	}
}

func (t *TourPlanner) Sequence(
	ctx context.Context,
	start domain.GeoPoint,
	stops []domain.TourStop,
	window domain.DeliveryWindow,
) (_ []int64, err error) {
	const op = "here.Sequence"
	defer obs.Time(ctx, t.logger, op)(&err)

	if len(stops) == 0 {
		return []int64{}, nil
	}

	payload, err := json.Marshal(buildTourProblem(start, stops, window))
	if err != nil {
		return nil, errs.SequencingError(op, fmt.Errorf("marshal tour problem: %w", err))
	}

	endpoint := t.baseURL + "/v3/problems"
	t.logger.InfoContext(ctx, "tour request", "endpoint", endpoint, "jobs", len(stops), "request", string(payload))

	resp, err := t.client.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("apiKey", t.apiKey)
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, errs.SequencingError(op, fmt.Errorf("tour request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.SequencingError(op, fmt.Errorf("read tour response: %w", err))
	}
	t.logger.DebugContext(ctx, "tour response", "response", string(raw))

	var sol tourSolution
	if err := json.Unmarshal(raw, &sol); err != nil {
		return nil, errs.SequencingError(op, fmt.Errorf("decode tour response: %w", err))
	}

	if len(sol.Unassigned) > 0 {
		reasons := make([]string, 0, len(sol.Unassigned))
		for _, u := range sol.Unassigned {
			code := "unknown"
			if len(u.Reasons) > 0 {
				code = u.Reasons[0].Code
			}
			reasons = append(reasons, u.JobID+"="+code)
		}
		return nil, errs.SequencingError(op, fmt.Errorf("infeasible problem, unassigned jobs: %s", strings.Join(reasons, ", ")))
	}

	if len(sol.Tours) == 0 {
		return nil, errs.SequencingError(op, errors.New("solution contains no tour"))
	}

	// Departure and arrival activities are skipped; only deliveries are stops.
	order := make([]int64, 0, len(stops))
	for _, stop := range sol.Tours[0].Stops {
		for _, a := range stop.Activities {
			if a.Type != activityDelivery {
				continue
			}
			id, err := strconv.ParseInt(a.JobID, 10, 64)
			if err != nil {
				return nil, errs.SequencingError(op, fmt.Errorf("unexpected job id %q: %w", a.JobID, err))
			}
			order = append(order, id)
		}
	}

	return order, nil
}

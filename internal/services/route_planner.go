package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"present-delivery-service/internal/domain"
	"present-delivery-service/internal/pkg/errs"
	"present-delivery-service/internal/platform/metrics"
	"present-delivery-service/internal/platform/obs"
	"present-delivery-service/internal/ports"
	"time"
)

// PlanResult is what a successful planning run returns to its caller.
// Presents are in visiting order.
type PlanResult struct {
	Facility  domain.Facility
	Presents  []domain.Present
	Polylines []string
}

// RoutePlanner runs Load, Sequence, Compose and Persist for one planning request.
type RoutePlanner struct {
	store     ports.DeliveryStore
	sequencer ports.TourSequencer
	composer  ports.RouteComposer
	now       func() time.Time
	logger    *slog.Logger
}

func NewRoutePlanner(
	store ports.DeliveryStore,
	sequencer ports.TourSequencer,
	composer ports.RouteComposer,
	logger *slog.Logger,
) *RoutePlanner {
	return &RoutePlanner{
		store:     store,
		sequencer: sequencer,
		composer:  composer,
		now:       time.Now,
		logger:    logger.With("component", "route_planner"),
	}
}

// Plan computes and records a new delivery route.
//
// The steps run strictly in order and any failure aborts the run. The route
// is written once, after geometry is known, so a failed run leaves nothing
// behind and a retried run simply records a new route.
func (p *RoutePlanner) Plan(ctx context.Context) (_ PlanResult, err error) {
	const op = "planner.Plan"
	defer obs.Time(ctx, p.logger, op)(&err)
	defer func() {
		metrics.PipelineRuns.WithLabelValues("route_planning", metrics.Outcome(err)).Inc()
	}()

	facility, err := p.store.LoadFacility(ctx)
	if err != nil {
		return PlanResult{}, fmt.Errorf("plan route: load facility: %w", err)
	}

	presents, err := p.store.LoadPresents(ctx)
	if err != nil {
		return PlanResult{}, fmt.Errorf("plan route: load presents: %w", err)
	}
	if len(presents) == 0 {
		return PlanResult{}, errs.ValidationError(op, errors.New("no presents to deliver"))
	}

	window := domain.DeliveryWindowAt(p.now())
	p.logger.InfoContext(ctx, "sequencing",
		"facility_id", facility.ID,
		"stops", len(presents),
		"window_start", window.Start,
		"window_end", window.End,
	)

	order, err := p.sequencer.Sequence(ctx, facility.Address.Point, domain.TourStopsFor(presents), window)
	if err != nil {
		return PlanResult{}, fmt.Errorf("plan route: sequence stops: %w", err)
	}

	ordered, err := reorderPresents(presents, order)
	if err != nil {
		return PlanResult{}, errs.ValidationError(op, err)
	}

	start := facility.Address.Point
	waypoints := domain.PointsOf(ordered)

	polylines, err := p.composer.Compose(ctx, start, start, waypoints)
	if err != nil {
		return PlanResult{}, fmt.Errorf("plan route: compose route: %w", err)
	}

	if err := p.store.InsertDeliveryRoute(ctx, facility.ID, waypoints, polylines); err != nil {
		return PlanResult{}, fmt.Errorf("plan route: record route: %w", err)
	}

	return PlanResult{
		Facility:  facility,
		Presents:  ordered,
		Polylines: polylines,
	}, nil
}

// reorderPresents arranges presents in the sequencer's order. The order must
// name every present exactly once.
func reorderPresents(presents []domain.Present, order []int64) ([]domain.Present, error) {
	byID := make(map[int64]domain.Present, len(presents))
	for _, p := range presents {
		byID[p.ID] = p
	}

	seen := make(map[int64]struct{}, len(order))
	ordered := make([]domain.Present, 0, len(order))
	for _, id := range order {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("sequencer returned unknown stop id %d", id)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("sequencer returned stop id %d twice", id)
		}
		seen[id] = struct{}{}
		ordered = append(ordered, p)
	}

	if len(ordered) != len(presents) {
		return nil, fmt.Errorf("sequencer returned %d of %d stops", len(ordered), len(presents))
	}

	return ordered, nil
}

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"present-delivery-service/internal/api/dto"
	"present-delivery-service/internal/domain"
	"present-delivery-service/internal/pkg/errs"
	"present-delivery-service/internal/services"
)

type Planner interface {
	Plan(ctx context.Context) (services.PlanResult, error)
}

type PlanHandler struct {
	Planner Planner
	Logger  *slog.Logger
}

// Plan runs the route planning pipeline and returns the ordered route.
// Each call records a new route.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res, err := h.Planner.Plan(r.Context())
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "plan route failed", "err", err)
		// A validation failure here means an upstream service broke its contract.
		if errors.Is(err, errs.ErrValidation) {
			writeError(w, r, http.StatusBadGateway, "route planning failed")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	out := dto.PlanResponse{
		Facility:           place(res.Facility.Name, res.Facility.Address),
		Presents:           make([]dto.PlaceResponse, 0, len(res.Presents)),
		RouteFlexPolylines: res.Polylines,
	}
	for _, p := range res.Presents {
		out.Presents = append(out.Presents, place(p.Name, p.Address))
	}

	writeJSON(w, r, http.StatusOK, out)
}

func place(name string, addr domain.Address) dto.PlaceResponse {
	return dto.PlaceResponse{Name: name, Address: addr.Text, Point: addr.Point.LatLon()}
}

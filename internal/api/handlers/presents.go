package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"present-delivery-service/internal/api/dto"
	"present-delivery-service/internal/domain"
)

type PresentLister interface {
	LoadPresents(ctx context.Context) ([]domain.Present, error)
}

// PresentHandler exposes read-only present retrieval endpoints.
type PresentHandler struct {
	Store  PresentLister
	Logger *slog.Logger
}

func (h *PresentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	presents, err := h.Store.LoadPresents(r.Context())
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "list presents failed", "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListPresentsResponse{
		Presents: make([]dto.PresentResponse, 0, len(presents)),
	}
	for _, p := range presents {
		res.Presents = append(res.Presents, dto.PresentResponse{
			PresentID: p.ID,
			Name:      p.Name,
			Address:   p.Address.Text,
			Point:     p.Address.Point.LatLon(),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

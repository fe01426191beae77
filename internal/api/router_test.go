package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"present-delivery-service/internal/api/dto"
	"present-delivery-service/internal/domain"
	"present-delivery-service/internal/pkg/errs"
	"present-delivery-service/internal/services"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlanner struct {
	res   services.PlanResult
	err   error
	calls int
}

func (s *stubPlanner) Plan(context.Context) (services.PlanResult, error) {
	s.calls++
	return s.res, s.err
}

type stubPresents struct {
	presents []domain.Present
	err      error
}

func (s stubPresents) LoadPresents(context.Context) ([]domain.Present, error) {
	return s.presents, s.err
}

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

var planResult = services.PlanResult{
	Facility: domain.Facility{
		ID:      1,
		Name:    "Santa Base",
		Address: domain.Address{Point: domain.GeoPoint{Latitude: 38.0, Longitude: 140.0}, Text: "Base"},
	},
	Presents: []domain.Present{
		{ID: 2, Name: "doll", Address: domain.Address{Point: domain.GeoPoint{Latitude: 38.2, Longitude: 140.2}, Text: "B"}},
		{ID: 1, Name: "bike", Address: domain.Address{Point: domain.GeoPoint{Latitude: 38.1, Longitude: 140.1}, Text: "A"}},
	},
	Polylines: []string{"s1", "s2", "s3"},
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestPlansReturnsOrderedRoute(t *testing.T) {
	planner := &stubPlanner{res: planResult}
	h := NewRouter(Deps{Planner: planner, APIKey: "secret", Logger: testLogger()})

	rec := serve(h, http.MethodGet, "/plans?apiKey=secret")
	require.Equal(t, http.StatusOK, rec.Code)

	// the web client reads this key
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.JSONEq(t, `["s1","s2","s3"]`, string(raw["route_flex_polylines"]))

	var body dto.PlanResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	assert.Equal(t, dto.PlaceResponse{Name: "Santa Base", Address: "Base", Point: []float64{38.0, 140.0}}, body.Facility)
	require.Len(t, body.Presents, 2)
	assert.Equal(t, "doll", body.Presents[0].Name)
	assert.Equal(t, []float64{38.2, 140.2}, body.Presents[0].Point)
	assert.Equal(t, []string{"s1", "s2", "s3"}, body.RouteFlexPolylines)

	_, err := uuid.Parse(rec.Header().Get("X-Request-Id"))
	assert.NoError(t, err)
}

func TestPlansRejectsInvalidAPIKey(t *testing.T) {
	planner := &stubPlanner{res: planResult}
	h := NewRouter(Deps{Planner: planner, APIKey: "secret", Logger: testLogger()})

	for _, target := range []string{"/plans", "/plans?apiKey=wrong"} {
		rec := serve(h, http.MethodPost, target)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	assert.Zero(t, planner.calls)

	req := httptest.NewRequest(http.MethodPost, "/plans", nil)
	req.Header.Set("X-Api-Key", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, planner.calls)
}

func TestPlansErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: errs.ValidationError("planner.Plan", errors.New("unknown stop id")), want: http.StatusBadGateway},
		{name: "routing", err: errs.RoutingError("here.Compose", errors.New("no route")), want: http.StatusInternalServerError},
		{name: "store", err: errs.StoreError("store.LoadFacility", errors.New("no facility row")), want: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewRouter(Deps{Planner: &stubPlanner{err: tc.err}, Logger: testLogger()})
			rec := serve(h, http.MethodGet, "/plans")
			assert.Equal(t, tc.want, rec.Code)
			assert.NotContains(t, rec.Body.String(), "no facility row")
		})
	}
}

func TestPlansMethodNotAllowed(t *testing.T) {
	h := NewRouter(Deps{Planner: &stubPlanner{}, Logger: testLogger()})
	rec := serve(h, http.MethodDelete, "/plans")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
}

func TestPresentsList(t *testing.T) {
	h := NewRouter(Deps{Presents: stubPresents{presents: planResult.Presents}, Logger: testLogger()})

	rec := serve(h, http.MethodGet, "/presents")
	require.Equal(t, http.StatusOK, rec.Code)

	var body dto.ListPresentsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Presents, 2)
	assert.Equal(t, int64(2), body.Presents[0].PresentID)

	h = NewRouter(Deps{Presents: stubPresents{err: errors.New("down")}, Logger: testLogger()})
	assert.Equal(t, http.StatusInternalServerError, serve(h, http.MethodGet, "/presents").Code)
}

func TestHealth(t *testing.T) {
	h := NewRouter(Deps{Logger: testLogger()})
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health").Code)

	h = NewRouter(Deps{Ping: func(context.Context) error { return errors.New("refused") }, Logger: testLogger()})
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, http.MethodGet, "/health").Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := NewRouter(Deps{Logger: testLogger()})

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Header().Get("X-Request-Id"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewRouter(Deps{Logger: testLogger()})
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/metrics").Code)
}

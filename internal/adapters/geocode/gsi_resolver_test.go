package geocode

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"present-delivery-service/internal/domain"
	"present-delivery-service/internal/pkg/errs"
	"present-delivery-service/internal/platform/httpx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestResolver(t *testing.T, h http.HandlerFunc) *GSIResolver {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client := httpx.New("gsi", httpx.CallPolicy{}, srv.Client())
	return NewGSIResolver(client, srv.URL, discardLogger())
}

func TestGSIResolverResolve(t *testing.T) {
	var gotQuery string
	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/address-search/AddressSearch", req.URL.Path)
		gotQuery = req.URL.Query().Get("q")
		_, _ = io.WriteString(w, `[
			{"geometry":{"coordinates":[140.87,38.26],"type":"Point"},"type":"Feature","properties":{"title":"宮城県仙台市青葉区"}},
			{"geometry":{"coordinates":[1,2],"type":"Point"},"type":"Feature","properties":{"title":"second"}}
		]`)
	})

	addr, err := r.Resolve(context.Background(), "  宮城県仙台市   青葉区 ")
	require.NoError(t, err)

	assert.Equal(t, "宮城県仙台市 青葉区", gotQuery)
	assert.Equal(t, domain.GeoPoint{Latitude: 38.26, Longitude: 140.87}, addr.Point)
	assert.Equal(t, "宮城県仙台市青葉区", addr.Text)
}

func TestGSIResolverFailures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		address string
	}{
		{name: "no results", status: http.StatusOK, body: `[]`, address: "nowhere"},
		{name: "missing coordinates", status: http.StatusOK, body: `[{"geometry":{"type":"Point"},"properties":{"title":"x"}}]`, address: "somewhere"},
		{name: "short coordinates", status: http.StatusOK, body: `[{"geometry":{"coordinates":[140.1]},"properties":{"title":"x"}}]`, address: "somewhere"},
		{name: "not json", status: http.StatusOK, body: `<html>`, address: "somewhere"},
		{name: "remote error", status: http.StatusInternalServerError, body: `oops`, address: "somewhere"},
		{name: "empty address", status: http.StatusOK, body: `[]`, address: "   "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := r.Resolve(context.Background(), tc.address)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrGeocode)
		})
	}
}

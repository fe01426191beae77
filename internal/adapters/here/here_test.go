package here

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"present-delivery-service/internal/platform/httpx"
	"testing"
)

func newServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *httpx.Client) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, httpx.New("here", httpx.CallPolicy{}, srv.Client())
}

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

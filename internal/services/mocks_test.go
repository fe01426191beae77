package services

import (
	"context"
	"io"
	"log/slog"
	"present-delivery-service/internal/domain"
	"present-delivery-service/internal/ports"

	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type MockDeliveryStore struct {
	mock.Mock
}

func (m *MockDeliveryStore) LoadFacility(ctx context.Context) (domain.Facility, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Facility), args.Error(1)
}

func (m *MockDeliveryStore) LoadPresents(ctx context.Context) ([]domain.Present, error) {
	args := m.Called(ctx)
	presents, _ := args.Get(0).([]domain.Present)
	return presents, args.Error(1)
}

func (m *MockDeliveryStore) InsertPresent(ctx context.Context, name string, addr domain.Address) error {
	return m.Called(ctx, name, addr).Error(0)
}

func (m *MockDeliveryStore) InsertDeliveryRoute(ctx context.Context, facilityID int64, points []domain.GeoPoint, polylines []string) error {
	return m.Called(ctx, facilityID, points, polylines).Error(0)
}

type MockTourSequencer struct {
	mock.Mock
}

func (m *MockTourSequencer) Sequence(ctx context.Context, start domain.GeoPoint, stops []domain.TourStop, window domain.DeliveryWindow) ([]int64, error) {
	args := m.Called(ctx, start, stops, window)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

type MockRouteComposer struct {
	mock.Mock
}

func (m *MockRouteComposer) Compose(ctx context.Context, start, end domain.GeoPoint, waypoints []domain.GeoPoint) ([]string, error) {
	args := m.Called(ctx, start, end, waypoints)
	polylines, _ := args.Get(0).([]string)
	return polylines, args.Error(1)
}

type MockLetterSource struct {
	mock.Mock
}

func (m *MockLetterSource) Fetch(ctx context.Context, loc ports.ObjectLocator) ([]byte, error) {
	args := m.Called(ctx, loc)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type MockLetterExtractor struct {
	mock.Mock
}

func (m *MockLetterExtractor) Extract(ctx context.Context, image []byte) (ports.LetterInfo, error) {
	args := m.Called(ctx, image)
	return args.Get(0).(ports.LetterInfo), args.Error(1)
}

type MockAddressResolver struct {
	mock.Mock
}

func (m *MockAddressResolver) Resolve(ctx context.Context, address string) (domain.Address, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(domain.Address), args.Error(1)
}

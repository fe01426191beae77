package domain

import (
	"testing"
	"time"
)

func TestDeliveryWindowAt(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		year int
	}{
		{"start of year", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 2026},
		{"during window", time.Date(2026, 12, 24, 3, 0, 0, 0, time.UTC), 2026},
		{"last instant before christmas", time.Date(2026, 12, 24, 23, 59, 59, 999999999, time.UTC), 2026},
		{"christmas day", time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC), 2027},
		{"new year's eve", time.Date(2026, 12, 31, 12, 0, 0, 0, time.UTC), 2027},
		// 2026-12-25 08:00 in Tokyo is still Dec 24 in UTC.
		{"evaluated in utc", time.Date(2026, 12, 25, 8, 0, 0, 0, time.FixedZone("JST", 9*60*60)), 2026},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := DeliveryWindowAt(tc.now)

			wantStart := time.Date(tc.year, 12, 23, 15, 0, 0, 0, time.UTC)
			wantEnd := time.Date(tc.year, 12, 24, 14, 59, 59, 999000000, time.UTC)

			if !w.Start.Equal(wantStart) {
				t.Errorf("start = %v, want %v", w.Start, wantStart)
			}
			if !w.End.Equal(wantEnd) {
				t.Errorf("end = %v, want %v", w.End, wantEnd)
			}
		})
	}
}

func TestGeoPointString(t *testing.T) {
	p := GeoPoint{Latitude: 38.1, Longitude: 140.25}
	if got := p.String(); got != "38.1,140.25" {
		t.Fatalf("String() = %q, want %q", got, "38.1,140.25")
	}
}

func TestTourStopsFor(t *testing.T) {
	presents := []Present{
		{ID: 7, Address: Address{Point: GeoPoint{Latitude: 1, Longitude: 2}}},
		{ID: 3, Address: Address{Point: GeoPoint{Latitude: 3, Longitude: 4}}},
	}

	stops := TourStopsFor(presents)
	if len(stops) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(stops))
	}
	if stops[0].ID != 7 || stops[1].ID != 3 {
		t.Fatalf("stop ids = [%d %d], want [7 3]", stops[0].ID, stops[1].ID)
	}
	if stops[1].Point != (GeoPoint{Latitude: 3, Longitude: 4}) {
		t.Fatalf("stop point = %+v", stops[1].Point)
	}
}

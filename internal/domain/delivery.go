package domain

// The single delivery base. Only one facility is expected to exist.
type Facility struct {
	ID      int64
	Name    string
	Address Address
}

// A gift registered from a letter. Presents are append-only.
type Present struct {
	ID      int64
	Name    string
	Address Address
}

// Represents a stop handed to the tour sequencer. ID equals the Present ID.
type TourStop struct {
	ID    int64
	Point GeoPoint
}

// Represents one computed route. Each planning run inserts a new one;
// OrderedPoints is in visiting order and Polylines in section order.
type DeliveryRoute struct {
	FacilityID    int64
	OrderedPoints []GeoPoint
	Polylines     []string
}

// Build one TourStop per present, preserving input order.
func TourStopsFor(presents []Present) []TourStop {
	stops := make([]TourStop, 0, len(presents))
	for _, p := range presents {
		stops = append(stops, TourStop{ID: p.ID, Point: p.Address.Point})
	}
	return stops
}

// Return the points of the presents in the given order.
func PointsOf(presents []Present) []GeoPoint {
	points := make([]GeoPoint, 0, len(presents))
	for _, p := range presents {
		points = append(points, p.Address.Point)
	}
	return points
}

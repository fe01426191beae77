package domain

import "strconv"

// Immutable geographic point (latitude, longitude) in degrees.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Return the point as [lat, lon] for API responses.
func (p GeoPoint) LatLon() []float64 { return []float64{p.Latitude, p.Longitude} }

// String formats the point as "lat,lon", the form external routing APIs accept.
func (p GeoPoint) String() string {
	return formatCoord(p.Latitude) + "," + formatCoord(p.Longitude)
}

// Address is a geocoded location. Text is the canonical form returned by the
// geocoder and may differ from the raw input.
type Address struct {
	Point GeoPoint
	Text  string
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package repositories

import (
	"errors"
	"fmt"
	"present-delivery-service/internal/domain"
	"strconv"
	"strings"
)

// Geometry literals are written latitude first, matching how points are read
// back with ST_X (latitude) and ST_Y (longitude).

func wktCoord(p domain.GeoPoint) string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + " " + strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}

// PointWKT renders "POINT(lat lon)".
func PointWKT(p domain.GeoPoint) string {
	return "POINT(" + wktCoord(p) + ")"
}

// OrderedPointsWKT renders "LINESTRING (lat lon, lat lon, ...)" in the given
// order. PostGIS rejects a one-point linestring, so a single stop is written
// as a POINT instead.
func OrderedPointsWKT(points []domain.GeoPoint) (string, error) {
	switch len(points) {
	case 0:
		return "", errors.New("ordered points: no points")
	case 1:
		return PointWKT(points[0]), nil
	}

	coords := make([]string, 0, len(points))
	for _, p := range points {
		coords = append(coords, wktCoord(p))
	}
	return "LINESTRING (" + strings.Join(coords, ", ") + ")", nil
}

// ParseOrderedPointsWKT reads back what OrderedPointsWKT writes, as well as
// the ST_AsText form ("LINESTRING(a b,c d)").
func ParseOrderedPointsWKT(wkt string) ([]domain.GeoPoint, error) {
	s := strings.TrimSpace(wkt)
	var body string
	switch {
	case strings.HasPrefix(s, "LINESTRING"):
		body = strings.TrimPrefix(s, "LINESTRING")
	case strings.HasPrefix(s, "POINT"):
		body = strings.TrimPrefix(s, "POINT")
	default:
		return nil, fmt.Errorf("ordered points: unsupported geometry %q", wkt)
	}

	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "(") || !strings.HasSuffix(body, ")") {
		return nil, fmt.Errorf("ordered points: malformed geometry %q", wkt)
	}
	body = body[1 : len(body)-1]

	parts := strings.Split(body, ",")
	points := make([]domain.GeoPoint, 0, len(parts))
	for _, part := range parts {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return nil, fmt.Errorf("ordered points: bad coordinate %q", part)
		}
		lat, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("ordered points: %w", err)
		}
		lon, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("ordered points: %w", err)
		}
		points = append(points, domain.GeoPoint{Latitude: lat, Longitude: lon})
	}
	return points, nil
}

package dto

// PlaceResponse describes a facility or a present. Point is [lat, lon].
type PlaceResponse struct {
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Point   []float64 `json:"point"`
}

type PlanResponse struct {
	Facility           PlaceResponse   `json:"facility"`
	Presents           []PlaceResponse `json:"presents"`
	RouteFlexPolylines []string        `json:"route_flex_polylines"`
}

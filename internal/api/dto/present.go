package dto

type PresentResponse struct {
	PresentID int64     `json:"present_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Point     []float64 `json:"point"`
}

type ListPresentsResponse struct {
	Presents []PresentResponse `json:"presents"`
}

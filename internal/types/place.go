package types

// PlaceReference is a geocoded location used as input to enrichment.
// A zero Lat/Lon pair means the place could not be resolved; callers skip
// location-dependent lookups instead of failing the request.
type PlaceReference struct {
	Name        string  `json:"name"`
	Country     string  `json:"country,omitempty"`
	State       string  `json:"state,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name,omitempty"`
	Source      string  `json:"source,omitempty"`
}

// Resolved reports whether the place carries usable coordinates.
func (p PlaceReference) Resolved() bool {
	return p.Lat != 0 || p.Lon != 0
}

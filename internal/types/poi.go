package types

// POIDetail is a nearby point of interest. ID is stable per place so a UI
// list entry can re-focus its map marker without a positional lookup.
type POIDetail struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	DistanceM   *float64 `json:"dist_m,omitempty"`
	Rate        float64  `json:"rate,omitempty"`
	Kinds       []string `json:"kinds,omitempty"`
	Address     string   `json:"address,omitempty"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	URL         string   `json:"url,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// RouteResult is the routing answer between the trip endpoints. When a
// route cannot be computed, Available is false and Message explains why;
// itinerary display is never blocked on it.
type RouteResult struct {
	Available       bool        `json:"available"`
	Message         string      `json:"message,omitempty"`
	DistanceKM      float64     `json:"distance_km,omitempty"`
	DurationMinutes float64     `json:"duration_minutes,omitempty"`
	Mode            string      `json:"mode,omitempty"`
	Coordinates     [][]float64 `json:"coordinates,omitempty"`
}

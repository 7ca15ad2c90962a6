package types

// TransportQuote is a single fare option between the trip endpoints.
// GroupPrice is nil when the provider only returned a per-person fare; the
// normalizer synthesizes it as price_per_person x travelers. A zero
// PricePerPerson with a set GroupPrice means the quote is group-only and
// no per-traveler row is shown.
type TransportQuote struct {
	ID             string   `json:"id"`
	Mode           string   `json:"mode"`
	Provider       string   `json:"provider"`
	Class          string   `json:"class,omitempty"`
	ClassLabel     string   `json:"class_label,omitempty"`
	Currency       string   `json:"currency"`
	PricePerPerson float64  `json:"price_per_person,omitempty"`
	GroupPrice     *float64 `json:"group_price,omitempty"`
	DurationHours  float64  `json:"duration_hours,omitempty"`
	Stops          *int     `json:"stops,omitempty"`
	Confidence     string   `json:"confidence"`
	BookingURL     string   `json:"booking_url,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Departure      string   `json:"departure,omitempty"`
}

// Quote confidence values.
const (
	ConfidenceLive      = "live"
	ConfidenceEstimated = "estimated"
)

type TransportEndpoint struct {
	Label   string `json:"label,omitempty"`
	Country string `json:"country,omitempty"`
}

type TransportOptions struct {
	TripType      string                 `json:"trip_type"`
	Travelers     int                    `json:"travelers"`
	DepartureDate string                 `json:"departure_date"`
	DistanceKM    *float64               `json:"distance_km,omitempty"`
	Quotes        []TransportQuote       `json:"quotes"`
	Source        TransportEndpoint      `json:"source"`
	Destination   TransportEndpoint      `json:"destination"`
	AppliedQuote  *AppliedTransportQuote `json:"applied_quote,omitempty"`
}

// AppliedTransportQuote summarizes the quote that was folded into the
// itinerary's travel day and the budget transport bucket.
type AppliedTransportQuote struct {
	QuoteID      string  `json:"quote_id"`
	Mode         string  `json:"mode"`
	Provider     string  `json:"provider"`
	Currency     string  `json:"currency"`
	NativeAmount float64 `json:"native_amount"`
	USDAmount    int     `json:"usd_amount"`
	TravelDay    int     `json:"travel_day"`
	Notes        string  `json:"notes,omitempty"`
}

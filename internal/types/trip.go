package types

import (
	"errors"
	"strings"
)

// Selectable vocabularies surfaced to the form front-end.
var (
	TravelStyles = []string{"Budget", "Mid-Range", "Luxury", "Adventure", "Cultural", "Relaxation"}
	GroupTypes   = []string{"Solo", "Couple", "Family", "Friends Group", "Corporate"}
	Interests    = []string{
		"History & Culture", "Food & Dining", "Adventure Sports", "Nature",
		"Nightlife", "Shopping", "Beach", "Mountains", "Art & Museums", "Photography",
	}
)

// TripRequest is the client payload for itinerary generation. Source and
// destination details are optional autocomplete picks; when present their
// coordinates are reused verbatim instead of re-geocoding.
type TripRequest struct {
	Source             string          `json:"source"`
	Destination        string          `json:"destination"`
	Days               int             `json:"days"`
	Budget             float64         `json:"budget"`
	Style              string          `json:"style"`
	Interests          []string        `json:"interests"`
	Group              string          `json:"group"`
	Travelers          int             `json:"travelers"`
	SpecialNeeds       string          `json:"special_needs,omitempty"`
	StartDate          string          `json:"start_date,omitempty"`
	SourceDetails      *PlaceReference `json:"source_details,omitempty"`
	DestinationDetails *PlaceReference `json:"destination_details,omitempty"`
}

// Normalize trims free-text fields and applies the Solo rule: a solo trip
// always has exactly one traveler, whatever the client sent.
func (r *TripRequest) Normalize() {
	r.Source = strings.TrimSpace(r.Source)
	r.Destination = strings.TrimSpace(r.Destination)
	r.Style = strings.TrimSpace(r.Style)
	r.Group = strings.TrimSpace(r.Group)
	r.SpecialNeeds = strings.TrimSpace(r.SpecialNeeds)
	if r.Travelers < 1 {
		r.Travelers = 1
	}
	if strings.EqualFold(r.Group, "Solo") {
		r.Travelers = 1
	}
}

// Validate rejects malformed requests before any outbound call is made.
func (r *TripRequest) Validate() error {
	if r.Source == "" {
		return errors.New("source cannot be empty")
	}
	if r.Destination == "" {
		return errors.New("destination cannot be empty")
	}
	if r.Days < 1 || r.Days > 30 {
		return errors.New("days must be between 1 and 30")
	}
	if r.Budget < 500 || r.Budget > 100000 {
		return errors.New("budget must be between 500 and 100000")
	}
	if len(r.Interests) == 0 {
		return errors.New("at least one interest must be selected")
	}
	if r.Travelers < 1 {
		return errors.New("travelers must be at least 1")
	}
	if !strings.EqualFold(r.Group, "Solo") && r.Travelers < 2 {
		return errors.New("please provide the number of travelers for non-solo trips")
	}
	return nil
}

// GroupContext echoes the resolved traveler parameters back to the client.
type GroupContext struct {
	Type      string `json:"type"`
	Travelers int    `json:"travelers"`
	StartDate string `json:"start_date,omitempty"`
}

// GenerateItineraryResponse is the merged view returned by the aggregation
// endpoint. Every enrichment-derived field is independently optional.
type GenerateItineraryResponse struct {
	Success             bool              `json:"success"`
	Itinerary           *ItineraryPlan    `json:"itinerary,omitempty"`
	ItineraryNormalized *ItineraryPlan    `json:"itinerary_normalized,omitempty"`
	ItineraryRaw        *ItineraryPlan    `json:"itinerary_raw,omitempty"`
	Budget              *BudgetEstimate   `json:"budget,omitempty"`
	BudgetNormalized    *BudgetEstimate   `json:"budget_normalized,omitempty"`
	BudgetRaw           *BudgetEstimate   `json:"budget_raw,omitempty"`
	Transport           *TransportOptions `json:"transport,omitempty"`
	Hotels              []POIDetail       `json:"hotels,omitempty"`
	Enrichment          *Enrichment       `json:"enrichment,omitempty"`
	Display             *DisplayCurrency  `json:"display,omitempty"`
	Group               *GroupContext     `json:"group,omitempty"`
	Timestamp           string            `json:"timestamp"`
}

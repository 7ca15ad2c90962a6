package types

// Activity is a scheduled itinerary entry. Cost and EstimatedCost mirror
// the planner output; after normalization both carry the same value.
type Activity struct {
	Time            string  `json:"time"`
	Activity        string  `json:"activity"`
	Location        string  `json:"location,omitempty"`
	Cost            float64 `json:"cost"`
	EstimatedCost   float64 `json:"estimated_cost,omitempty"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
	Category        string  `json:"category,omitempty"`
	Description     string  `json:"description,omitempty"`
	Tip             string  `json:"tip,omitempty"`
}

type Meal struct {
	Time       string  `json:"time"`
	Type       string  `json:"type,omitempty"`
	Restaurant string  `json:"restaurant"`
	Cuisine    string  `json:"cuisine,omitempty"`
	Cost       float64 `json:"cost"`
	Specialty  string  `json:"specialty,omitempty"`
	Address    string  `json:"address,omitempty"`
	URL        string  `json:"url,omitempty"`
}

type DayPlan struct {
	Day        int         `json:"day"`
	Date       string      `json:"date,omitempty"`
	Theme      string      `json:"theme,omitempty"`
	Summary    string      `json:"summary,omitempty"`
	Activities []Activity  `json:"activities"`
	Meals      []Meal      `json:"meals,omitempty"`
	Lodging    []POIDetail `json:"lodging,omitempty"`
	TotalCost  float64     `json:"total_cost"`
}

type Recommendations struct {
	BestTimeToVisit string   `json:"best_time_to_visit,omitempty"`
	LocalWarnings   []string `json:"local_warnings,omitempty"`
	MoneySavingTips []string `json:"money_saving_tips,omitempty"`
	HiddenGems      []string `json:"hidden_gems,omitempty"`
}

// ItineraryMeta carries aggregation-time additions that are not part of
// the planner output itself.
type ItineraryMeta struct {
	Hotels          []POIDetail            `json:"hotels,omitempty"`
	TransportQuote  *AppliedTransportQuote `json:"transport_quote,omitempty"`
	GroupMultiplier int                    `json:"group_multiplier,omitempty"`
	LodgingInjected bool                   `json:"lodging_injected,omitempty"`
}

// ItineraryPlan is the day-by-day plan produced by the LLM planner, in USD.
type ItineraryPlan struct {
	BudgetBreakdown map[string]float64 `json:"budget_breakdown,omitempty"`
	Days            []DayPlan          `json:"itinerary"`
	Recommendations *Recommendations   `json:"recommendations,omitempty"`
	Meta            *ItineraryMeta     `json:"meta,omitempty"`
}

// Clone returns a deep copy so normalization passes never mutate the raw
// planner output that is echoed back to the client.
func (p *ItineraryPlan) Clone() *ItineraryPlan {
	if p == nil {
		return nil
	}
	out := *p
	if p.BudgetBreakdown != nil {
		out.BudgetBreakdown = make(map[string]float64, len(p.BudgetBreakdown))
		for k, v := range p.BudgetBreakdown {
			out.BudgetBreakdown[k] = v
		}
	}
	out.Days = make([]DayPlan, len(p.Days))
	for i, d := range p.Days {
		day := d
		day.Activities = append([]Activity(nil), d.Activities...)
		day.Meals = append([]Meal(nil), d.Meals...)
		day.Lodging = append([]POIDetail(nil), d.Lodging...)
		out.Days[i] = day
	}
	if p.Recommendations != nil {
		recs := *p.Recommendations
		recs.LocalWarnings = append([]string(nil), p.Recommendations.LocalWarnings...)
		recs.MoneySavingTips = append([]string(nil), p.Recommendations.MoneySavingTips...)
		recs.HiddenGems = append([]string(nil), p.Recommendations.HiddenGems...)
		out.Recommendations = &recs
	}
	if p.Meta != nil {
		meta := *p.Meta
		meta.Hotels = append([]POIDetail(nil), p.Meta.Hotels...)
		out.Meta = &meta
	}
	return &out
}

type AccommodationBudget struct {
	PerNight float64 `json:"per_night"`
	Nights   int     `json:"nights"`
	Subtotal float64 `json:"subtotal"`
}

type FoodBudget struct {
	PerDay   float64 `json:"per_day"`
	Days     int     `json:"days"`
	Subtotal float64 `json:"subtotal"`
}

type EstimatedBudget struct {
	Estimated float64 `json:"estimated"`
}

type ContingencyBudget struct {
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
}

type BudgetSections struct {
	Accommodation AccommodationBudget `json:"accommodation"`
	Food          FoodBudget          `json:"food"`
	Activities    EstimatedBudget     `json:"activities"`
	Transport     EstimatedBudget     `json:"transport"`
	Contingency   ContingencyBudget   `json:"contingency"`
}

// GroupMetadata records per-traveler figures alongside group totals so the
// two stay mutually consistent in the rendered view.
type GroupMetadata struct {
	Travelers        int     `json:"travelers"`
	PerTravelerTotal float64 `json:"per_traveler_total"`
	PerTravelerDaily float64 `json:"per_traveler_daily"`
}

// BudgetEstimate is the budget breakdown produced by the LLM, in USD.
type BudgetEstimate struct {
	TotalBudget   float64        `json:"total_budget"`
	DailyBudget   float64        `json:"daily_budget"`
	Breakdown     BudgetSections `json:"breakdown"`
	SavingsTips   []string       `json:"savings_tips,omitempty"`
	GroupMetadata *GroupMetadata `json:"group_metadata,omitempty"`
	Meta          *BudgetMeta    `json:"meta,omitempty"`
}

type BudgetMeta struct {
	TransportQuote *AppliedTransportQuote `json:"transport_quote,omitempty"`
}

func (b *BudgetEstimate) Clone() *BudgetEstimate {
	if b == nil {
		return nil
	}
	out := *b
	out.SavingsTips = append([]string(nil), b.SavingsTips...)
	if b.GroupMetadata != nil {
		gm := *b.GroupMetadata
		out.GroupMetadata = &gm
	}
	if b.Meta != nil {
		meta := *b.Meta
		out.Meta = &meta
	}
	return &out
}

package itinerary

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/tripcraft/go-travel-planner/internal/types"
)

// travelKeywords mark the day an itinerary mentions the outbound journey;
// the winning transport quote is folded into that day.
var travelKeywords = []string{"depart", "departure", "flight", "train", "transfer", "journey", "travel", "transit"}

// Converter is the single conversion point between USD planner amounts
// and the display currency. Rate 1 means the display currency is USD.
type Converter struct {
	rate float64
}

func NewConverter(exchange *types.ExchangeRate) Converter {
	if exchange == nil || exchange.Rate <= 0 {
		return Converter{rate: 1}
	}
	return Converter{rate: exchange.Rate}
}

func (c Converter) Rate() float64 { return c.rate }

// Convert rounds usd x rate to the nearest whole display-currency unit.
func (c Converter) Convert(usd float64) int {
	return int(math.Round(usd * c.rate))
}

// PerTraveler splits a group total evenly. The traveler count is clamped
// to at least 1 before dividing.
func PerTraveler(groupTotal float64, travelers int) int {
	if travelers < 1 {
		travelers = 1
	}
	return int(math.Round(groupTotal / float64(travelers)))
}

// GroupTotal synthesizes a group price from a per-traveler price.
func GroupTotal(perPerson float64, travelers int) float64 {
	if travelers < 1 {
		travelers = 1
	}
	return perPerson * float64(travelers)
}

// NormalizeQuote fills the consistency gaps a provider left open: a quote
// without a group price gets one synthesized from the per-person fare.
func NormalizeQuote(quote *types.TransportQuote, travelers int) {
	if quote == nil {
		return
	}
	if quote.GroupPrice == nil && quote.PricePerPerson > 0 {
		group := GroupTotal(quote.PricePerPerson, travelers)
		quote.GroupPrice = &group
	}
}

// quoteTotalCost is the comparable group cost of a quote. Group-only
// quotes use their group price directly; per-person quotes scale by the
// traveler count.
func quoteTotalCost(quote types.TransportQuote, travelers int) float64 {
	if quote.GroupPrice != nil {
		return *quote.GroupPrice
	}
	if quote.PricePerPerson <= 0 {
		return math.Inf(1)
	}
	return GroupTotal(quote.PricePerPerson, travelers)
}

// normalizeItineraryCosts reconciles per-entry costs with day totals and
// caps the plan at the requested budget. Each activity's cost and
// estimated cost converge to one whole-dollar figure; day totals are
// recomputed from their entries; when the grand total overshoots the
// budget every cost is scaled down proportionally.
func normalizeItineraryCosts(plan *types.ItineraryPlan, budget float64) *types.ItineraryPlan {
	if plan == nil {
		return nil
	}

	grandTotal := 0.0
	for i := range plan.Days {
		day := &plan.Days[i]
		if day.Day == 0 {
			day.Day = i + 1
		}
		dayTotal := 0.0
		for j := range day.Activities {
			activity := &day.Activities[j]
			cost := activity.EstimatedCost
			if cost <= 0 {
				cost = activity.Cost
			}
			cost = math.Round(math.Max(0, cost))
			activity.Cost = cost
			activity.EstimatedCost = cost
			dayTotal += cost
		}
		for j := range day.Meals {
			meal := &day.Meals[j]
			meal.Cost = math.Round(math.Max(0, meal.Cost))
			dayTotal += meal.Cost
		}
		day.TotalCost = dayTotal
		grandTotal += dayTotal
	}

	if budget > 0 && grandTotal > budget {
		scale := budget / grandTotal
		for i := range plan.Days {
			day := &plan.Days[i]
			dayTotal := 0.0
			for j := range day.Activities {
				activity := &day.Activities[j]
				scaled := math.Round(activity.Cost * scale)
				activity.Cost = scaled
				activity.EstimatedCost = scaled
				dayTotal += scaled
			}
			for j := range day.Meals {
				meal := &day.Meals[j]
				meal.Cost = math.Round(meal.Cost * scale)
				dayTotal += meal.Cost
			}
			day.TotalCost = dayTotal
		}
	}

	if plan.BudgetBreakdown != nil {
		for key, value := range plan.BudgetBreakdown {
			plan.BudgetBreakdown[key] = math.Round(math.Max(0, value))
		}
	}
	return plan
}

// normalizeBudgetEstimate repairs an LLM budget so its arithmetic holds:
// subtotals follow from their per-unit rates, the total never exceeds the
// requested budget, and the daily figure is total / days.
func normalizeBudgetEstimate(budget *types.BudgetEstimate, requested float64, days int) *types.BudgetEstimate {
	if budget == nil {
		return nil
	}
	if days < 1 {
		days = 1
	}

	b := &budget.Breakdown
	if b.Accommodation.Nights <= 0 {
		b.Accommodation.Nights = days
	}
	if b.Accommodation.PerNight > 0 {
		b.Accommodation.Subtotal = math.Round(b.Accommodation.PerNight * float64(b.Accommodation.Nights))
	}
	if b.Food.Days <= 0 {
		b.Food.Days = days
	}
	if b.Food.PerDay > 0 {
		b.Food.Subtotal = math.Round(b.Food.PerDay * float64(b.Food.Days))
	}
	b.Activities.Estimated = math.Round(math.Max(0, b.Activities.Estimated))
	b.Transport.Estimated = math.Round(math.Max(0, b.Transport.Estimated))

	subtotal := b.Accommodation.Subtotal + b.Food.Subtotal + b.Activities.Estimated + b.Transport.Estimated
	if b.Contingency.Percent > 0 {
		b.Contingency.Amount = math.Round(subtotal * b.Contingency.Percent / 100)
	}

	total := subtotal + b.Contingency.Amount
	if total <= 0 {
		total = requested
	}
	if requested > 0 && total > requested {
		total = requested
	}
	budget.TotalBudget = math.Round(total)
	budget.DailyBudget = math.Round(total / float64(days))
	return budget
}

// applyMealPOIs swaps generic meal suggestions for real nearby places:
// restaurant name, address and source link come from the POI while the
// planner's cuisine, cost and timing survive.
func applyMealPOIs(plan *types.ItineraryPlan, mealPOIs []types.POIDetail) *types.ItineraryPlan {
	if plan == nil || len(mealPOIs) == 0 {
		return plan
	}

	next := 0
	for i := range plan.Days {
		for j := range plan.Days[i].Meals {
			poi := mealPOIs[next%len(mealPOIs)]
			next++

			meal := &plan.Days[i].Meals[j]
			if poi.Name != "" {
				meal.Restaurant = poi.Name
			}
			if poi.Address != "" {
				meal.Address = poi.Address
			}
			if poi.URL != "" {
				meal.URL = poi.URL
			}
		}
	}
	return plan
}

// injectHotelRecommendations attaches lodging suggestions and prepends a
// check-in entry to day one, anchored to the day's first activity time.
// Idempotent: a plan that already carries lodging is left alone.
func injectHotelRecommendations(plan *types.ItineraryPlan, hotels []types.POIDetail, destinationName string) *types.ItineraryPlan {
	if plan == nil || len(hotels) == 0 {
		return plan
	}

	if plan.Meta == nil {
		plan.Meta = &types.ItineraryMeta{}
	}
	if len(hotels) > 5 {
		plan.Meta.Hotels = hotels[:5]
	} else {
		plan.Meta.Hotels = hotels
	}

	if len(plan.Days) == 0 || plan.Meta.LodgingInjected {
		return plan
	}
	plan.Meta.LodgingInjected = true

	firstDay := &plan.Days[0]
	if len(hotels) > 3 {
		firstDay.Lodging = hotels[:3]
	} else {
		firstDay.Lodging = hotels
	}

	primary := hotels[0]
	anchorTime := "09:00"
	if len(firstDay.Activities) > 0 && firstDay.Activities[0].Time != "" {
		anchorTime = firstDay.Activities[0].Time
	}

	location := primary.Address
	if location == "" {
		location = destinationName
	}
	if location == "" {
		location = "City Center"
	}
	description := primary.Description
	if description == "" {
		description = "Suggested lodging near key attractions."
	}

	checkIn := types.Activity{
		Time:        anchorTime,
		Activity:    "Check-in: " + primary.Name,
		Location:    location,
		Description: description,
		Category:    "lodging",
		Tip:         "Geoapify hotel recommendation",
	}
	firstDay.Activities = append([]types.Activity{checkIn}, firstDay.Activities...)
	return plan
}

// findTravelDay returns the index of the first day whose text mentions
// the journey, or 0 when no day does.
func findTravelDay(days []types.DayPlan) int {
	for i, day := range days {
		var bits []string
		bits = append(bits, day.Theme, day.Summary)
		for _, activity := range day.Activities {
			bits = append(bits, activity.Activity, activity.Description)
		}
		for _, meal := range day.Meals {
			bits = append(bits, meal.Restaurant)
		}
		blob := strings.ToLower(strings.Join(bits, " "))
		for _, keyword := range travelKeywords {
			if strings.Contains(blob, keyword) {
				return i
			}
		}
	}
	return 0
}

// injectTransportCosts folds the cheapest transport quote into the
// itinerary's travel day and the budget's transport bucket, converting
// the native fare to USD via usdRate (units of USD per one unit of the
// quote currency). Returns nil when there is nothing to inject.
func injectTransportCosts(plan *types.ItineraryPlan, budget *types.BudgetEstimate, options *types.TransportOptions, usdRate func(currency string) float64) *types.AppliedTransportQuote {
	if plan == nil || options == nil || len(options.Quotes) == 0 || len(plan.Days) == 0 {
		return nil
	}

	travelers := options.Travelers
	if travelers < 1 {
		travelers = 1
	}

	best := options.Quotes[0]
	bestCost := quoteTotalCost(best, travelers)
	for _, quote := range options.Quotes[1:] {
		if cost := quoteTotalCost(quote, travelers); cost < bestCost {
			best, bestCost = quote, cost
		}
	}
	if math.IsInf(bestCost, 1) {
		return nil
	}

	currency := strings.ToUpper(best.Currency)
	if currency == "" {
		currency = "USD"
	}
	usdTotal := bestCost
	if currency != "USD" && usdRate != nil {
		if rate := usdRate(currency); rate > 0 {
			usdTotal = bestCost * rate
		}
	}
	entryCost := math.Round(usdTotal)
	if entryCost <= 0 {
		return nil
	}

	dayIdx := findTravelDay(plan.Days)
	targetDay := &plan.Days[dayIdx]

	sourceLabel := options.Source.Label
	if sourceLabel == "" {
		sourceLabel = "Departure"
	}
	destLabel := options.Destination.Label
	if destLabel == "" {
		destLabel = "Arrival"
	}

	modeLabel := titleCase(strings.ReplaceAll(best.Mode, "_", " "))
	if modeLabel == "" {
		modeLabel = "Transport"
	}
	providerLabel := best.Provider
	if providerLabel == "" {
		providerLabel = best.ClassLabel
	}
	if providerLabel == "" {
		providerLabel = "Preferred Carrier"
	}

	tip := best.Notes
	if tip == "" {
		tip = titleCase(best.Confidence) + " fare injected automatically."
	}
	entryTime := best.Departure
	if entryTime == "" {
		entryTime = "08:00"
	}

	entry := types.Activity{
		Time:          entryTime,
		Activity:      modeLabel + " via " + providerLabel,
		Location:      sourceLabel + " -> " + destLabel,
		Cost:          entryCost,
		EstimatedCost: entryCost,
		Category:      "transport",
		Description:   fmt.Sprintf("%s cost for %d travelers (%s %d).", modeLabel, travelers, currency, int(math.Round(bestCost))),
		Tip:           tip,
	}
	targetDay.Activities = append([]types.Activity{entry}, targetDay.Activities...)
	targetDay.TotalCost = math.Round(targetDay.TotalCost) + entryCost

	applied := &types.AppliedTransportQuote{
		QuoteID:      best.ID,
		Mode:         best.Mode,
		Provider:     providerLabel,
		Currency:     currency,
		NativeAmount: math.Round(bestCost*100) / 100,
		USDAmount:    int(entryCost),
		TravelDay:    targetDay.Day,
		Notes:        best.Notes,
	}

	if plan.Meta == nil {
		plan.Meta = &types.ItineraryMeta{}
	}
	plan.Meta.TransportQuote = applied

	if budget != nil {
		budget.Breakdown.Transport.Estimated = math.Round(budget.Breakdown.Transport.Estimated) + entryCost
		if budget.Meta == nil {
			budget.Meta = &types.BudgetMeta{}
		}
		budget.Meta.TransportQuote = applied
	}
	return applied
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

const costHistoryWindow = 120

// costHistory keeps a rolling window of observed activity costs per
// category so outliers can be pulled back toward the running average.
type costHistory struct {
	mu     sync.Mutex
	window map[string][]float64
}

func newCostHistory() *costHistory {
	return &costHistory{window: make(map[string][]float64)}
}

func (h *costHistory) average(category string) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	values := h.window[category]
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func (h *costHistory) record(category string, value float64) {
	if value <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	values := append(h.window[category], value)
	if len(values) > costHistoryWindow {
		values = values[len(values)-costHistoryWindow:]
	}
	h.window[category] = values
}

// smoothCostOutliers clamps activity costs to [0.4, 2.2] times the
// historical average for their category, then records the final values.
func smoothCostOutliers(plan *types.ItineraryPlan, history *costHistory) *types.ItineraryPlan {
	if plan == nil || history == nil {
		return plan
	}

	for i := range plan.Days {
		for j := range plan.Days[i].Activities {
			activity := &plan.Days[i].Activities[j]
			category := strings.ToLower(activity.Category)
			if category == "" {
				category = "general"
			}
			cost := activity.EstimatedCost
			if cost <= 0 {
				cost = activity.Cost
			}
			if cost <= 0 {
				continue
			}
			if avg := history.average(category); avg > 0 {
				if lower := avg * 0.4; cost < lower {
					cost = math.Floor(lower)
				} else if upper := avg * 2.2; cost > upper {
					cost = math.Floor(upper)
				}
			}
			activity.Cost = cost
			activity.EstimatedCost = cost
			history.record(category, cost)
		}
	}
	return plan
}

// scaleItineraryForGroup multiplies every per-traveler cost by the
// traveler count. A solo plan is returned untouched.
func scaleItineraryForGroup(plan *types.ItineraryPlan, travelers int) *types.ItineraryPlan {
	if plan == nil || travelers <= 1 {
		return plan
	}

	scaled := plan.Clone()
	multiplier := float64(travelers)
	for i := range scaled.Days {
		day := &scaled.Days[i]
		day.TotalCost = math.Round(day.TotalCost * multiplier)
		for j := range day.Activities {
			cost := math.Round(day.Activities[j].Cost * multiplier)
			day.Activities[j].Cost = cost
			day.Activities[j].EstimatedCost = cost
		}
		for j := range day.Meals {
			day.Meals[j].Cost = math.Round(day.Meals[j].Cost * multiplier)
		}
	}
	for key, value := range scaled.BudgetBreakdown {
		scaled.BudgetBreakdown[key] = math.Round(value * multiplier)
	}
	if scaled.Meta == nil {
		scaled.Meta = &types.ItineraryMeta{}
	}
	scaled.Meta.GroupMultiplier = travelers
	return scaled
}

// scaleBudgetForGroup multiplies budget figures by the traveler count and
// records the per-traveler originals so both views stay consistent.
func scaleBudgetForGroup(budget *types.BudgetEstimate, travelers int) *types.BudgetEstimate {
	if budget == nil || travelers <= 1 {
		return budget
	}

	scaled := budget.Clone()
	multiplier := float64(travelers)

	perTravelerTotal := budget.TotalBudget
	perTravelerDaily := budget.DailyBudget

	scaled.TotalBudget = math.Round(budget.TotalBudget * multiplier)
	scaled.DailyBudget = math.Round(budget.DailyBudget * multiplier)

	b := &scaled.Breakdown
	b.Accommodation.PerNight = math.Round(b.Accommodation.PerNight * multiplier)
	b.Accommodation.Subtotal = math.Round(b.Accommodation.Subtotal * multiplier)
	b.Food.PerDay = math.Round(b.Food.PerDay * multiplier)
	b.Food.Subtotal = math.Round(b.Food.Subtotal * multiplier)
	b.Activities.Estimated = math.Round(b.Activities.Estimated * multiplier)
	b.Transport.Estimated = math.Round(b.Transport.Estimated * multiplier)
	b.Contingency.Amount = math.Round(b.Contingency.Amount * multiplier)

	scaled.GroupMetadata = &types.GroupMetadata{
		Travelers:        travelers,
		PerTravelerTotal: perTravelerTotal,
		PerTravelerDaily: perTravelerDaily,
	}
	return scaled
}

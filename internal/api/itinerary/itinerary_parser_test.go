package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleItineraryJSON = `{
  "budget_breakdown": {"accommodation": 600, "food": 400, "activities": 300, "transport": 200},
  "itinerary": [
    {
      "day": 1,
      "date": "Day 1",
      "theme": "Arrival",
      "activities": [
        {"time": "09:00", "activity": "City walk", "location": "Old Town", "cost": 0, "duration_minutes": 90}
      ],
      "meals": [
        {"time": "12:00", "type": "lunch", "restaurant": "Cafe Central", "cuisine": "Austrian", "cost": 25}
      ],
      "total_cost": 25
    }
  ],
  "recommendations": {
    "best_time_to_visit": "Spring",
    "local_warnings": ["Pickpockets near the station"],
    "money_saving_tips": ["Buy a transit pass"],
    "hidden_gems": ["Rooftop garden"]
  }
}`

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Here is your plan:\n{\"a\":1}\nEnjoy!", `{"a":1}`},
		{"no json", "sorry, cannot help", "sorry, cannot help"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSONResponse(tt.input))
		})
	}
}

func TestParseItineraryPlan(t *testing.T) {
	plan, err := parseItineraryPlan("```json\n" + sampleItineraryJSON + "\n```")
	require.NoError(t, err)

	require.Len(t, plan.Days, 1)
	assert.Equal(t, 1, plan.Days[0].Day)
	assert.Equal(t, "Arrival", plan.Days[0].Theme)
	assert.Equal(t, "Cafe Central", plan.Days[0].Meals[0].Restaurant)
	assert.Equal(t, 600.0, plan.BudgetBreakdown["accommodation"])
	require.NotNil(t, plan.Recommendations)
	assert.Equal(t, "Spring", plan.Recommendations.BestTimeToVisit)
}

func TestParseItineraryPlanRejectsEmpty(t *testing.T) {
	_, err := parseItineraryPlan(`{"itinerary": []}`)
	assert.Error(t, err)

	_, err = parseItineraryPlan("not json at all")
	assert.Error(t, err)
}

func TestParseBudgetEstimate(t *testing.T) {
	response := `Some preamble.
{
  "total_budget": 2800,
  "daily_budget": 560,
  "breakdown": {
    "accommodation": {"per_night": 120, "nights": 5, "subtotal": 600},
    "food": {"per_day": 60, "days": 5, "subtotal": 300},
    "activities": {"estimated": 400},
    "transport": {"estimated": 300},
    "contingency": {"percent": 10, "amount": 160}
  },
  "savings_tips": ["Cook some meals"]
}`
	budget, err := parseBudgetEstimate(response)
	require.NoError(t, err)

	assert.Equal(t, 2800.0, budget.TotalBudget)
	assert.Equal(t, 120.0, budget.Breakdown.Accommodation.PerNight)
	assert.Equal(t, []string{"Cook some meals"}, budget.SavingsTips)
}

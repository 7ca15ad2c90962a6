package itinerary

import (
	"fmt"
	"strings"

	"github.com/tripcraft/go-travel-planner/internal/types"
)

const itineraryPromptTemplate = `
You are an expert travel planner creating a comprehensive day-by-day itinerary.

INPUT:
- Source: %s
- Destination: %s
- Days: %d
- Budget: $%.0f
- Travel Style: %s
- Interests: %s
- Group: %s
- Travelers: %d
- Special Needs: %s

Create a detailed JSON itinerary with:
- Day-by-day breakdown (morning, afternoon, evening)
- Specific times for activities
- Estimated costs per activity
- Transportation between locations
- Restaurant recommendations with cuisine type
- Attractions with brief descriptions
- Local tips and warnings
- Budget breakdown

RULES:
- Output ONLY valid JSON
- No markdown, no explanation
- Stay within budget
- Include realistic activity times
- Add backup options for rainy days
- Consider travel time between locations

Format:
{
  "budget_breakdown": {"accommodation": 0, "food": 0, "activities": 0, "transport": 0},
  "itinerary": [
    {
      "day": 1,
      "date": "Day 1",
      "theme": "...",
      "activities": [
        {
          "time": "09:00",
          "activity": "...",
          "location": "...",
          "cost": 0,
          "duration_minutes": 60,
          "category": "...",
          "description": "...",
          "tip": "..."
        }
      ],
      "meals": [
        {
          "time": "12:00",
          "type": "lunch",
          "restaurant": "...",
          "cuisine": "...",
          "cost": 0,
          "specialty": "..."
        }
      ],
      "total_cost": 0
    }
  ],
  "recommendations": {
    "best_time_to_visit": "...",
    "local_warnings": [],
    "money_saving_tips": [],
    "hidden_gems": []
  }
}
`

const budgetPromptTemplate = `
You are a travel budget expert. Create a detailed budget breakdown for this trip.

Source: %s
Destination: %s
Days: %d
Budget: $%.0f
Travel Style: %s
Travelers: %d

Output ONLY valid JSON with:
- Daily budget limits
- Cost per category (accommodation, food, activities, transport)
- Money saving tips specific to this destination
- Estimated total with breakdown

Format:
{
  "total_budget": 0,
  "daily_budget": 0,
  "breakdown": {
    "accommodation": {"per_night": 0, "nights": %d, "subtotal": 0},
    "food": {"per_day": 0, "days": %d, "subtotal": 0},
    "activities": {"estimated": 0},
    "transport": {"estimated": 0},
    "contingency": {"percent": 10, "amount": 0}
  },
  "savings_tips": []
}
`

func buildItineraryPrompt(req *types.TripRequest) string {
	specialNeeds := req.SpecialNeeds
	if specialNeeds == "" {
		specialNeeds = "None"
	}
	return fmt.Sprintf(itineraryPromptTemplate,
		req.Source,
		req.Destination,
		req.Days,
		req.Budget,
		req.Style,
		strings.Join(req.Interests, ", "),
		req.Group,
		req.Travelers,
		specialNeeds,
	)
}

func buildBudgetPrompt(req *types.TripRequest) string {
	return fmt.Sprintf(budgetPromptTemplate,
		req.Source,
		req.Destination,
		req.Days,
		req.Budget,
		req.Style,
		req.Travelers,
		req.Days,
		req.Days,
	)
}

package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tripcraft/go-travel-planner/internal/types"
)

// cleanJSONResponse strips markdown fences and surrounding prose so the
// planner output can be parsed even when the model ignores the
// JSON-only instruction.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	if strings.HasSuffix(response, "```") {
		response = strings.TrimSuffix(response, "```")
	}
	response = strings.TrimSpace(response)

	// Slice from the first { to the last } to drop explanatory text.
	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}
	lastBrace := strings.LastIndex(response, "}")
	if lastBrace == -1 || lastBrace <= firstBrace {
		return response
	}
	return response[firstBrace : lastBrace+1]
}

func parseItineraryPlan(response string) (*types.ItineraryPlan, error) {
	cleaned := cleanJSONResponse(response)
	var plan types.ItineraryPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("failed to parse itinerary response: %w", err)
	}
	if len(plan.Days) == 0 {
		return nil, fmt.Errorf("itinerary response contains no day plans")
	}
	return &plan, nil
}

func parseBudgetEstimate(response string) (*types.BudgetEstimate, error) {
	cleaned := cleanJSONResponse(response)
	var budget types.BudgetEstimate
	if err := json.Unmarshal([]byte(cleaned), &budget); err != nil {
		return nil, fmt.Errorf("failed to parse budget response: %w", err)
	}
	return &budget, nil
}

package itinerary

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/tripcraft/go-travel-planner/internal/types"
)

// PDFRequest is the client payload for the itinerary export. The client
// sends back the generated plan and budget rather than re-running the
// pipeline server-side.
type PDFRequest struct {
	Destination string                 `json:"destination"`
	Itinerary   *types.ItineraryPlan   `json:"itinerary"`
	Budget      *types.BudgetEstimate  `json:"budget,omitempty"`
	Display     *types.DisplayCurrency `json:"display,omitempty"`
	Group       *types.GroupContext    `json:"group,omitempty"`
}

// GeneratePDFBytes renders the itinerary and budget into a printable PDF.
func GeneratePDFBytes(req *PDFRequest) ([]byte, error) {
	if req == nil || req.Itinerary == nil || len(req.Itinerary.Days) == 0 {
		return nil, fmt.Errorf("itinerary with at least one day is required")
	}

	currency := "USD"
	symbol := "$"
	if req.Display != nil && req.Display.Code != "" {
		currency = req.Display.Code
		if req.Display.Symbol != "" {
			symbol = req.Display.Symbol
		} else {
			symbol = currency + " "
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// Header bar
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "TripCraft", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "AI-Powered Travel Itinerary", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	sectionHeader := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, value, "", 1, "L", false, 0, "")
	}

	money := func(amount float64) string {
		return fmt.Sprintf("%s%.0f %s", symbol, amount, currency)
	}

	sectionHeader("Trip Overview")
	row("Destination", req.Destination)
	row("Duration", fmt.Sprintf("%d days", len(req.Itinerary.Days)))
	if req.Group != nil {
		row("Group", fmt.Sprintf("%s (%d travelers)", req.Group.Type, req.Group.Travelers))
		if req.Group.StartDate != "" {
			row("Start Date", req.Group.StartDate)
		}
	}
	row("Generated", time.Now().UTC().Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	if req.Budget != nil {
		sectionHeader("Budget")
		row("Total", money(req.Budget.TotalBudget))
		row("Daily", money(req.Budget.DailyBudget))
		b := req.Budget.Breakdown
		row("Accommodation", money(b.Accommodation.Subtotal))
		row("Food", money(b.Food.Subtotal))
		row("Activities", money(b.Activities.Estimated))
		row("Transport", money(b.Transport.Estimated))
		row("Contingency", money(b.Contingency.Amount))
		pdf.Ln(4)
	}

	for _, day := range req.Itinerary.Days {
		title := fmt.Sprintf("Day %d", day.Day)
		if day.Theme != "" {
			title += " - " + day.Theme
		}
		sectionHeader(title)

		for _, activity := range day.Activities {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetTextColor(20, 20, 20)
			pdf.CellFormat(25, 6, activity.Time, "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			label := activity.Activity
			if activity.Cost > 0 {
				label += " (" + money(activity.Cost) + ")"
			}
			pdf.MultiCell(145, 6, label, "", "L", false)
		}
		for _, meal := range day.Meals {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetTextColor(20, 20, 20)
			pdf.CellFormat(25, 6, meal.Time, "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "I", 10)
			label := meal.Restaurant
			if meal.Cuisine != "" {
				label += " - " + meal.Cuisine
			}
			if meal.Cost > 0 {
				label += " (" + money(meal.Cost) + ")"
			}
			pdf.MultiCell(145, 6, label, "", "L", false)
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(170, 7, "Day total: "+money(day.TotalCost), "", 1, "R", false, 0, "")
		pdf.Ln(2)
	}

	if recs := req.Itinerary.Recommendations; recs != nil {
		sectionHeader("Recommendations")
		if recs.BestTimeToVisit != "" {
			row("Best time to visit", recs.BestTimeToVisit)
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(20, 20, 20)
		for _, tip := range recs.MoneySavingTips {
			pdf.MultiCell(170, 6, "- "+tip, "", "L", false)
		}
		for _, gem := range recs.HiddenGems {
			pdf.MultiCell(170, 6, "* "+gem, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Package charts holds the static sample series behind each visualization
// kind. Nothing here is computed from live data.
package charts

import (
	"errors"
	"fmt"

	"apdash-backend/internal/assistant"
)

var ErrUnknownKind = errors.New("unknown visualization kind")

type Point struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

type Series struct {
	Name   string  `json:"name"`
	Unit   string  `json:"unit,omitempty"`
	Points []Point `json:"points"`
}

type Chart struct {
	Kind   assistant.VisualizationKind `json:"kind"`
	Title  string                      `json:"title"`
	Type   string                      `json:"type"` // line | bar | pie | scatter
	Series []Series                    `json:"series"`
}

// Lookup returns the chart for kind. VisualizationNone and unknown kinds
// have no chart.
func Lookup(kind assistant.VisualizationKind) (Chart, error) {
	c, ok := catalog[kind]
	if !ok {
		return Chart{}, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	return c.clone(), nil
}

// Kinds lists every kind with a chart.
func Kinds() []assistant.VisualizationKind {
	out := make([]assistant.VisualizationKind, 0, len(order))
	return append(out, order...)
}

func (c Chart) clone() Chart {
	out := c
	out.Series = make([]Series, len(c.Series))
	for i, s := range c.Series {
		s.Points = append([]Point(nil), s.Points...)
		out.Series[i] = s
	}
	return out
}

func pts(pairs ...any) []Point {
	out := make([]Point, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Point{X: pairs[i].(string), Y: toFloat(pairs[i+1])})
	}
	return out
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	}
	panic(fmt.Sprintf("charts: unsupported point value %T", v))
}

var order = []assistant.VisualizationKind{
	assistant.VisualizationGlobalServicesDisputes,
	assistant.VisualizationProcessingTimeTrend,
	assistant.VisualizationApproverPerformance,
	assistant.VisualizationProcessOptimization,
	assistant.VisualizationVendorPerformance,
	assistant.VisualizationDiscountOpportunities,
	assistant.VisualizationCashFlowForecast,
	assistant.VisualizationVendorRiskMatrix,
	assistant.VisualizationDiscrepancyBreakdown,
}

var catalog = map[assistant.VisualizationKind]Chart{
	assistant.VisualizationGlobalServicesDisputes: {
		Title: "Global Services disputes",
		Type:  "bar",
		Series: []Series{
			{Name: "Dispute rate", Unit: "%", Points: pts("Jan", 4, "Feb", 5, "Mar", 5, "Apr", 8, "May", 10, "Jun", 12)},
			{Name: "Vendor average", Unit: "%", Points: pts("Jan", 5.4, "Feb", 5.5, "Mar", 5.6, "Apr", 5.6, "May", 5.7, "Jun", 5.6)},
			{Name: "Dispute causes", Unit: "%", Points: pts("Quantity discrepancies", 63, "Price mismatches", 27, "Other", 10)},
		},
	},
	assistant.VisualizationProcessingTimeTrend: {
		Title: "Invoice processing time",
		Type:  "line",
		Series: []Series{
			{Name: "Avg. days", Unit: "days", Points: pts("Jan", 3.2, "Feb", 3.4, "Mar", 3.1, "Apr", 2.8, "May", 2.6, "Jun", 2.3)},
			{Name: "Accuracy", Unit: "%", Points: pts("Jan", 96, "Feb", 95, "Mar", 97, "Apr", 98, "May", 98, "Jun", 99)},
		},
	},
	assistant.VisualizationApproverPerformance: {
		Title: "Approver performance",
		Type:  "bar",
		Series: []Series{
			{Name: "Avg. days to approve", Unit: "days", Points: pts("Sarah Johnson", 1.2, "Michael Chen", 2.1, "Ava Rodriguez", 0.8, "Robert Kim", 1.5, "Emma Davis", 3.2)},
			{Name: "Volume", Unit: "invoices", Points: pts("Sarah Johnson", 120, "Michael Chen", 85, "Ava Rodriguez", 110, "Robert Kim", 75, "Emma Davis", 62)},
		},
	},
	assistant.VisualizationProcessOptimization: {
		Title: "Process step times",
		Type:  "bar",
		Series: []Series{
			{Name: "Current process time", Unit: "days", Points: pts("Receipt", 0.5, "Data Entry", 1.2, "Coding", 0.8, "Approval Routing", 0.4, "Approver Review", 2.2, "Final Validation", 0.6, "Payment Processing", 0.5)},
			{Name: "Industry best practice", Unit: "days", Points: pts("Receipt", 0.5, "Data Entry", 0.3, "Coding", 0.4, "Approval Routing", 0.2, "Approver Review", 1.0, "Final Validation", 0.3, "Payment Processing", 0.3)},
		},
	},
	assistant.VisualizationVendorPerformance: {
		Title: "Vendor performance",
		Type:  "bar",
		Series: []Series{
			{Name: "Accuracy", Unit: "%", Points: pts("Acme Supplies", 98, "TechVision Inc", 99, "Global Services", 92, "Standard Materials", 96, "Precision Parts", 97)},
			{Name: "On-time", Unit: "%", Points: pts("Acme Supplies", 96, "TechVision Inc", 99, "Global Services", 87, "Standard Materials", 94, "Precision Parts", 91)},
			{Name: "Disputes", Points: pts("Acme Supplies", 2, "TechVision Inc", 0, "Global Services", 7, "Standard Materials", 3, "Precision Parts", 4)},
		},
	},
	assistant.VisualizationDiscountOpportunities: {
		Title: "Early payment discounts",
		Type:  "bar",
		Series: []Series{
			{Name: "Available", Unit: "USD", Points: pts("Acme Supplies", 420, "Standard Materials", 310, "Precision Parts", 265, "Office Suppliers", 120)},
			{Name: "Captured share", Unit: "%", Points: pts("Q1", 31, "Q2", 35)},
		},
	},
	assistant.VisualizationCashFlowForecast: {
		Title: "Predictive cash flow",
		Type:  "line",
		Series: []Series{
			{Name: "Actual balance", Unit: "USD", Points: pts(
				"2025-01-01", 120000, "2025-01-08", 115000, "2025-01-15", 135000, "2025-01-22", 142000, "2025-01-29", 130000,
				"2025-02-05", 128000, "2025-02-12", 145000, "2025-02-19", 150000, "2025-02-26", 138000)},
			{Name: "Predicted balance", Unit: "USD", Points: pts(
				"2025-03-05", 142000, "2025-03-12", 148000, "2025-03-19", 155000, "2025-03-26", 160000, "2025-04-02", 152000,
				"2025-04-09", 163000, "2025-04-16", 170000, "2025-04-23", 175000, "2025-04-30", 168000)},
			{Name: "Lower bound", Unit: "USD", Points: pts(
				"2025-03-05", 132000, "2025-03-12", 135000, "2025-03-19", 140000, "2025-03-26", 142000, "2025-04-02", 135000,
				"2025-04-09", 145000, "2025-04-16", 150000, "2025-04-23", 155000, "2025-04-30", 150000)},
			{Name: "Upper bound", Unit: "USD", Points: pts(
				"2025-03-05", 152000, "2025-03-12", 160000, "2025-03-19", 170000, "2025-03-26", 178000, "2025-04-02", 170000,
				"2025-04-09", 180000, "2025-04-16", 190000, "2025-04-23", 195000, "2025-04-30", 187000)},
			{Name: "Pressure points", Unit: "USD", Points: pts("2025-03-19", 165000, "2025-04-16", 185000)},
		},
	},
	assistant.VisualizationVendorRiskMatrix: {
		Title: "Vendor risk matrix",
		Type:  "scatter",
		Series: []Series{
			{Name: "Risk score", Points: pts(
				"Acme Supplies", 25, "TechVision Inc", 15, "Global Services", 75, "Standard Materials", 40, "Precision Parts", 35,
				"LogiTrans", 60, "DataServe", 20, "Marketing Solutions", 30, "Office Suppliers", 10, "Maintenance Co", 45)},
			{Name: "Dependency score", Points: pts(
				"Acme Supplies", 65, "TechVision Inc", 80, "Global Services", 60, "Standard Materials", 45, "Precision Parts", 70,
				"LogiTrans", 40, "DataServe", 90, "Marketing Solutions", 25, "Office Suppliers", 15, "Maintenance Co", 30)},
		},
	},
	assistant.VisualizationDiscrepancyBreakdown: {
		Title: "Invoice discrepancies",
		Type:  "pie",
		Series: []Series{
			{Name: "Share", Unit: "%", Points: pts("Coding errors", 45, "Price mismatches", 28, "Quantity disputes", 17, "Tax calculation", 10)},
		},
	},
}

func init() {
	for kind, c := range catalog {
		c.Kind = kind
		catalog[kind] = c
	}
}

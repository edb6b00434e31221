package dashboard

import "time"

type Panel string

const (
	PanelInsights     Panel = "insights"
	PanelMetrics      Panel = "metrics"
	PanelVendors      Panel = "vendor-performance"
	PanelApprovers    Panel = "approver-performance"
	PanelActionItems  Panel = "actionable-insights"
	PanelAssistant    Panel = "assistant"
	PanelDailyInsight Panel = "daily-insight"
)

type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DailyInsight is a tip rotated once per day for each role.
type DailyInsight struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Category   string `json:"category"`
	ActionLink string `json:"actionLink"`
}

type View struct {
	Role         Role         `json:"role"`
	RoleTitle    string       `json:"roleTitle"`
	Panels       []Panel      `json:"panels"`
	Insights     []Insight    `json:"insights"`
	DailyInsight DailyInsight `json:"dailyInsight"`
	// Open action items; only set when the panel is shown
	ActionItems []ActionableInsight `json:"actionItems,omitempty"`
}

// Build assembles the dashboard for v. The daily insight is picked by the
// day of year of day so every viewer of a role sees the same tip that day.
// An invalid role falls back to the AP clerk view.
func Build(v Viewer, day time.Time) View {
	role := v.Role
	if !role.Valid() {
		role = RoleAPClerk
	}
	daily := dailyInsights[role]
	view := View{
		Role:         role,
		RoleTitle:    role.Title(),
		Panels:       append([]Panel(nil), panels[role]...),
		Insights:     append([]Insight(nil), insights[role]...),
		DailyInsight: daily[(day.YearDay()-1)%len(daily)],
	}
	for _, p := range view.Panels {
		if p == PanelActionItems {
			view.ActionItems = openActionable(v.Insights)
		}
	}
	return view
}

var common = []Panel{PanelDailyInsight, PanelInsights, PanelMetrics}

var panels = map[Role][]Panel{
	RoleAPClerk:    append(append([]Panel(nil), common...), PanelVendors, PanelAssistant),
	RoleController: append(append([]Panel(nil), common...), PanelVendors, PanelApprovers),
	RoleCFO:        append(append([]Panel(nil), common...), PanelActionItems, PanelAssistant),
}

var insights = map[Role][]Insight{
	RoleAPClerk: {
		{
			Title:       "Processing Time Improvement",
			Description: "Invoice processing time has decreased by 28% over the last 6 months. Primary factors: enhanced OCR accuracy and improved approver response times.",
		},
		{
			Title:       "Duplicate Invoice Alert",
			Description: "Potential duplicate detected: Invoice #4512 from TechVision Inc appears to be a duplicate of #4498 with slight variation in description.",
		},
	},
	RoleController: {
		{
			Title:       "Vendor Performance Alert",
			Description: "Global Services showing concerning trend with 7% increase in invoice disputes. Recommend scheduling vendor review meeting to address recurring issues with quantity discrepancies.",
		},
		{
			Title:       "Process Bottleneck Identified",
			Description: "Emma Davis consistently taking 3.2 days for approvals, 2x department average. Recommend workflow adjustment or additional training.",
		},
	},
	RoleCFO: {
		{
			Title:       "Cash Flow Optimization",
			Description: "Opportunity to improve cash flow by adjusting payment timing. Projected benefit: $12,450 in additional early payment discounts this quarter.",
		},
		{
			Title:       "Regional Performance Insight",
			Description: "Eastern region showing 18% higher processing costs than other regions. Primary factor appears to be understaffing leading to overtime costs.",
		},
	},
}

var dailyInsights = map[Role][]DailyInsight{
	RoleAPClerk: {
		{1, "Invoice Batching Strategy", "Based on your processing patterns, grouping similar vendor invoices together could increase your efficiency by 22%. Try creating dedicated processing times for your top 5 vendors.", "efficiency", "View Processing Guide"},
		{2, "Exception Pattern Detected", "In the last month, 68% of your exceptions were related to quantity mismatches. Consider implementing a pre-validation step for quantities against receiving documents.", "quality", "View Exception Report"},
		{3, "Early Payment Opportunity", "You're currently capturing only 35% of available early payment discounts. Setting up automatic payment scheduling for discount-eligible invoices could save an additional $4,200 per month.", "savings", "Set Up Auto-Scheduling"},
	},
	RoleController: {
		{4, "Approval Workflow Optimization", "Your department's approval cycle takes 2.3 days on average, with 40% of the time spent waiting for the final approver. Consider implementing escalation rules after 24 hours of inactivity.", "process", "Modify Workflow Rules"},
		{5, "Vendor Consolidation Opportunity", "Analysis shows you have 12 vendors providing similar office supplies with varying pricing. Consolidating to the top 3 performers could yield 12-15% in cost savings.", "strategic", "View Vendor Analysis"},
		{6, "Seasonal Volume Planning", "Based on 3-year historical data, you can expect a 32% increase in invoice volume at quarter-end. Consider resource planning now to avoid processing delays.", "planning", "View Seasonal Forecast"},
	},
	RoleCFO: {
		{7, "Working Capital Improvement", "Optimizing payment timing could improve working capital by $420K. Your current DPO of 28 days could be extended to 38 days by renegotiating terms with your top 10 suppliers.", "financial", "View Financial Impact"},
		{8, "Cross-Department Efficiency", "AP insights show purchasing patterns that could benefit inventory management. Sharing this data with the Inventory team could reduce emergency orders by 24%.", "collaboration", "View Data Sharing Options"},
		{9, "Predictive Cash Flow Model", "Your new AI-powered cash flow model has achieved 92% accuracy in its predictions. Consider using it for short-term investment planning to maximize returns on excess cash.", "innovation", "Explore Investment Options"},
	},
}

package assistant

import "time"

type VisualizationKind string

const (
	VisualizationNone                   VisualizationKind = "none"
	VisualizationGlobalServicesDisputes VisualizationKind = "global-services-disputes"
	VisualizationProcessingTimeTrend    VisualizationKind = "processing-time-trend"
	VisualizationApproverPerformance    VisualizationKind = "approver-performance"
	VisualizationProcessOptimization    VisualizationKind = "process-optimization"
	VisualizationVendorPerformance      VisualizationKind = "vendor-performance"
	VisualizationDiscountOpportunities  VisualizationKind = "discount-opportunities"
	VisualizationCashFlowForecast       VisualizationKind = "cash-flow-forecast"
	VisualizationVendorRiskMatrix       VisualizationKind = "vendor-risk-matrix"
	VisualizationDiscrepancyBreakdown   VisualizationKind = "discrepancy-breakdown"
)

var knownVisualizations = map[VisualizationKind]struct{}{
	VisualizationNone:                   {},
	VisualizationGlobalServicesDisputes: {},
	VisualizationProcessingTimeTrend:    {},
	VisualizationApproverPerformance:    {},
	VisualizationProcessOptimization:    {},
	VisualizationVendorPerformance:      {},
	VisualizationDiscountOpportunities:  {},
	VisualizationCashFlowForecast:       {},
	VisualizationVendorRiskMatrix:       {},
	VisualizationDiscrepancyBreakdown:   {},
}

// Valid reports whether k is one of the chart kinds the presentation layer knows.
func (k VisualizationKind) Valid() bool {
	_, ok := knownVisualizations[k]
	return ok
}

// ActionRef is a button the presentation layer can offer under a reply.
type ActionRef struct {
	Label    string `json:"label" yaml:"label"`
	ActionID string `json:"actionId" yaml:"action_id"`
}

// Payload is a canned reply bundle. Values handed out by the resolvers are
// copies; the catalog itself is never exposed.
type Payload struct {
	Text          string            `json:"text"`
	Visualization VisualizationKind `json:"visualizationKind"`
	Actions       []ActionRef       `json:"actions"`
}

func (p Payload) clone() Payload {
	out := p
	out.Actions = append([]ActionRef{}, p.Actions...)
	return out
}

type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// ConversationTurn is one entry of a transcript. Turns are never mutated
// after they are appended.
type ConversationTurn struct {
	Role          TurnRole          `json:"role"`
	Content       string            `json:"content"`
	Visualization VisualizationKind `json:"visualizationKind"`
	Actions       []ActionRef       `json:"actions"`
	QueryID       string            `json:"queryId,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// UserTurn builds the turn recorded for submitted text.
func UserTurn(content string, at time.Time) ConversationTurn {
	return ConversationTurn{
		Role:          RoleUser,
		Content:       content,
		Visualization: VisualizationNone,
		Actions:       []ActionRef{},
		CreatedAt:     at,
	}
}

// AssistantTurn wraps a resolved payload.
func AssistantTurn(p Payload, queryID string, at time.Time) ConversationTurn {
	return ConversationTurn{
		Role:          RoleAssistant,
		Content:       p.Text,
		Visualization: p.Visualization,
		Actions:       append([]ActionRef{}, p.Actions...),
		QueryID:       queryID,
		CreatedAt:     at,
	}
}

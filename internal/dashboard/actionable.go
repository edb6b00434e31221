package dashboard

import (
	"errors"
	"fmt"
	"strings"
)

type InsightStatus string

const (
	StatusNew        InsightStatus = "new"
	StatusInProgress InsightStatus = "in-progress"
	StatusResolved   InsightStatus = "resolved"
	StatusDismissed  InsightStatus = "dismissed"
)

// Open reports whether the item still shows in the action items panel.
func (s InsightStatus) Open() bool {
	return s == StatusNew || s == StatusInProgress
}

// InsightOp is a user step on an action item.
type InsightOp string

const (
	OpTake     InsightOp = "take"
	OpDismiss  InsightOp = "dismiss"
	OpComplete InsightOp = "complete"
)

var (
	ErrUnknownInsight    = errors.New("unknown action item")
	ErrUnknownInsightOp  = errors.New("unknown action item operation")
	ErrInvalidTransition = errors.New("invalid action item transition")
)

func ParseInsightOp(s string) (InsightOp, error) {
	switch op := InsightOp(strings.ToLower(strings.TrimSpace(s))); op {
	case OpTake, OpDismiss, OpComplete:
		return op, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownInsightOp, s)
}

// Transition returns the status reached by applying op to from. Resolved and
// dismissed items are final.
func Transition(from InsightStatus, op InsightOp) (InsightStatus, error) {
	if from == "" {
		from = StatusNew
	}
	var to InsightStatus
	switch {
	case op == OpTake && from.Open():
		to = StatusInProgress
	case op == OpDismiss && from.Open():
		to = StatusDismissed
	case op == OpComplete && from == StatusInProgress:
		to = StatusResolved
	default:
		return from, fmt.Errorf("%w: %s while %s", ErrInvalidTransition, op, from)
	}
	return to, nil
}

// InsightAction is a button on an action item. ActionID names the catalog
// action the button triggers.
type InsightAction struct {
	Label    string `json:"label"`
	ActionID string `json:"actionId"`
}

// ActionableInsight is an item of the action items panel.
type ActionableInsight struct {
	ID          int             `json:"id"`
	Type        string          `json:"type"` // alert | optimization | pattern
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Impact      string          `json:"impact"`
	Actions     []InsightAction `json:"actions"`
	Priority    string          `json:"priority"` // high | medium | low
	Status      InsightStatus   `json:"status"`
}

// Action finds the button wired to actionID.
func (a ActionableInsight) Action(actionID string) (InsightAction, bool) {
	for _, b := range a.Actions {
		if b.ActionID == actionID {
			return b, true
		}
	}
	return InsightAction{}, false
}

func (a ActionableInsight) clone() ActionableInsight {
	a.Actions = append([]InsightAction(nil), a.Actions...)
	return a
}

// LookupActionable returns the fixture for id with status new.
func LookupActionable(id int) (ActionableInsight, error) {
	for _, a := range actionItems {
		if a.ID == id {
			return a.clone(), nil
		}
	}
	return ActionableInsight{}, fmt.Errorf("%w %d", ErrUnknownInsight, id)
}

// ActionableInsights lists every item with the statuses in statuses applied.
// Missing entries are new.
func ActionableInsights(statuses map[int]InsightStatus) []ActionableInsight {
	out := make([]ActionableInsight, 0, len(actionItems))
	for _, a := range actionItems {
		a = a.clone()
		if s, ok := statuses[a.ID]; ok {
			a.Status = s
		}
		out = append(out, a)
	}
	return out
}

func openActionable(statuses map[int]InsightStatus) []ActionableInsight {
	out := []ActionableInsight{}
	for _, a := range ActionableInsights(statuses) {
		if a.Status.Open() {
			out = append(out, a)
		}
	}
	return out
}

var actionItems = []ActionableInsight{
	{
		ID:          1,
		Type:        "alert",
		Title:       "Duplicate Invoice Detected",
		Description: "Invoice #4512 from TechVision Inc appears to be a duplicate of #4498 with slight variation in description.",
		Impact:      "Potential duplicate payment of $8,750",
		Actions: []InsightAction{
			{"Investigate", "investigateDuplicate"},
			{"Mark as Duplicate", "markDuplicate"},
			{"Contact Vendor", "contactVendor"},
		},
		Priority: "high",
		Status:   StatusNew,
	},
	{
		ID:          2,
		Type:        "optimization",
		Title:       "Early Payment Discount Opportunity",
		Description: "Pay Acme Supplies invoice #4523 by Friday to receive 2% discount.",
		Impact:      "Potential savings of $420",
		Actions: []InsightAction{
			{"Schedule Payment", "scheduleEarlyPayment"},
			{"Adjust Cash Flow", "adjustCashFlow"},
			{"Skip", "skipEarlyPayment"},
		},
		Priority: "medium",
		Status:   StatusNew,
	},
	{
		ID:          3,
		Type:        "pattern",
		Title:       "Approval Bottleneck",
		Description: "Five invoices waiting for approval from Emma Davis for more than 3 days.",
		Impact:      "Processing delays affecting vendor relationships",
		Actions: []InsightAction{
			{"Send Reminder", "sendApprovalReminder"},
			{"Reassign Approvals", "reassignApprovals"},
			{"Adjust Workflow", "adjustWorkflow"},
		},
		Priority: "medium",
		Status:   StatusNew,
	},
}

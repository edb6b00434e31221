package types

import (
	"apdash-backend/internal/assistant"
	"apdash-backend/internal/dashboard"
)

type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
	// Wait blocks the request until the reply is appended or cancelled.
	Wait bool `json:"wait,omitempty"`
}

type ChatResponse struct {
	SessionID string                      `json:"sessionId"`
	QueryID   string                      `json:"queryId"`
	Status    string                      `json:"status"` // pending | delivered | cancelled
	Reply     *assistant.ConversationTurn `json:"reply,omitempty"`
}

type ResolveRequest struct {
	Query string `json:"query"`
}

type ResolveResponse struct {
	Payload assistant.Payload `json:"payload"`
	Rule    string            `json:"rule,omitempty"`
}

type ActionResponse struct {
	SessionID string                     `json:"sessionId"`
	Known     bool                       `json:"known"`
	Reply     assistant.ConversationTurn `json:"reply"`
}

type TranscriptResponse struct {
	SessionID string                       `json:"sessionId"`
	Turns     []assistant.ConversationTurn `json:"turns"`
	Pending   int                          `json:"pending"`
}

type SuggestionsResponse struct {
	SessionID   string                            `json:"sessionId"`
	Set         string                            `json:"set"`
	Suggestions [assistant.SuggestionCount]string `json:"suggestions"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

type RoleResponse struct {
	SessionID string           `json:"sessionId"`
	Role      dashboard.Role   `json:"role"`
	Title     string           `json:"title"`
	Available []dashboard.Role `json:"available"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type InsightRequest struct {
	// ActionID picks the button pressed with take; optional
	ActionID string `json:"actionId,omitempty"`
}

type InsightResponse struct {
	SessionID string                      `json:"sessionId"`
	Insight   dashboard.ActionableInsight `json:"insight"`
	Reply     *assistant.ConversationTurn `json:"reply,omitempty"`
}

type InsightsResponse struct {
	SessionID string                        `json:"sessionId"`
	Insights  []dashboard.ActionableInsight `json:"insights"`
}

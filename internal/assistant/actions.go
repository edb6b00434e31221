package assistant

import "strings"

// ActionResolver maps a button's action id to its canned payload.
type ActionResolver struct {
	actions    map[string]Payload
	labels     map[string]string
	comingSoon Payload
}

// NewActionResolver reads c's action and label tables.
func NewActionResolver(c *Catalog) *ActionResolver {
	return &ActionResolver{actions: c.actions, labels: c.labels, comingSoon: c.comingSoon}
}

// Resolve never fails: unknown ids get the "coming soon" payload.
func (r *ActionResolver) Resolve(actionID string) Payload {
	p, _ := r.Lookup(actionID)
	return p
}

// Lookup is Resolve plus whether the id was known.
func (r *ActionResolver) Lookup(actionID string) (Payload, bool) {
	if p, ok := r.actions[strings.TrimSpace(actionID)]; ok {
		return p.clone(), true
	}
	return r.comingSoon.clone(), false
}

// Label returns the button text an action id is offered under, falling back
// to the id itself.
func (r *ActionResolver) Label(actionID string) string {
	if l, ok := r.labels[strings.TrimSpace(actionID)]; ok && l != "" {
		return l
	}
	return actionID
}

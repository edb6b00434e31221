package assistant

import "strings"

// Predicate is a conjunction of substring tests over a lower-cased query.
type Predicate struct {
	All  []string `yaml:"all" json:"all,omitempty"`
	Any  []string `yaml:"any" json:"any,omitempty"`
	None []string `yaml:"none" json:"none,omitempty"`
}

func (p Predicate) normalized() Predicate {
	return Predicate{All: lowerTerms(p.All), Any: lowerTerms(p.Any), None: lowerTerms(p.None)}
}

func (p Predicate) clone() Predicate {
	return Predicate{
		All:  append([]string(nil), p.All...),
		Any:  append([]string(nil), p.Any...),
		None: append([]string(nil), p.None...),
	}
}

func (p Predicate) empty() bool {
	return len(p.All) == 0 && len(p.Any) == 0
}

// Matches expects q to be lower-cased already.
func (p Predicate) Matches(q string) bool {
	if p.empty() {
		return false
	}
	for _, t := range p.All {
		if !strings.Contains(q, t) {
			return false
		}
	}
	if len(p.Any) > 0 && !containsAny(q, p.Any) {
		return false
	}
	return !containsAny(q, p.None)
}

// KeywordRule pairs a predicate with the payload returned when it matches.
type KeywordRule struct {
	Name    string
	When    Predicate
	Payload Payload
}

func (r KeywordRule) clone() KeywordRule {
	return KeywordRule{Name: r.Name, When: r.When.clone(), Payload: r.Payload.clone()}
}

// QueryResolver maps free text to a canned payload. The first matching rule
// wins; no rule matching yields the clarification payload.
type QueryResolver struct {
	rules    []KeywordRule
	fallback Payload
}

// NewQueryResolver reads c's rule table. Resolved payloads are copies.
func NewQueryResolver(c *Catalog) *QueryResolver {
	return &QueryResolver{rules: c.rules, fallback: c.fallback}
}

// Resolve returns the payload for query. It never fails.
func (r *QueryResolver) Resolve(query string) Payload {
	p, _ := r.Match(query)
	return p
}

// Match also reports the name of the rule that fired, "" for the default.
func (r *QueryResolver) Match(query string) (Payload, string) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return r.fallback.clone(), ""
	}
	for _, rule := range r.rules {
		if rule.When.Matches(q) {
			return rule.Payload.clone(), rule.Name
		}
	}
	return r.fallback.clone(), ""
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func lowerTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

package assistant

import "strings"

// coldStartTurns is the transcript length up to which the cold-start set is
// offered: the greeting plus at most one exchange half.
const coldStartTurns = 2

type contextMarker struct {
	name          string
	contains      []string
	visualization VisualizationKind
	queries       [SuggestionCount]string
}

func (m contextMarker) matches(t ConversationTurn) bool {
	if m.visualization != "" && t.Visualization == m.visualization {
		return true
	}
	return len(m.contains) > 0 && containsAny(strings.ToLower(t.Content), m.contains)
}

type suggestionTable struct {
	coldStart  [SuggestionCount]string
	contextual []contextMarker
	fallback   [SuggestionCount]string
}

// Suggester picks example queries from the catalog's suggestion sets.
type Suggester struct {
	table suggestionTable
}

// NewSuggester reads c's suggestion sets.
func NewSuggester(c *Catalog) *Suggester {
	return &Suggester{table: c.suggestions}
}

// Suggestions picks the example queries to show under a transcript.
func (s *Suggester) Suggestions(transcript []ConversationTurn) [SuggestionCount]string {
	out, _ := s.Pick(transcript)
	return out
}

// Pick is Suggestions plus the name of the set chosen: "cold_start",
// "fallback" or a contextual set name.
func (s *Suggester) Pick(transcript []ConversationTurn) ([SuggestionCount]string, string) {
	if len(transcript) <= coldStartTurns {
		return s.table.coldStart, "cold_start"
	}
	if last, ok := lastAssistantTurn(transcript); ok {
		for _, m := range s.table.contextual {
			if m.matches(last) {
				return m.queries, m.name
			}
		}
	}
	return s.table.fallback, "fallback"
}

func lastAssistantTurn(transcript []ConversationTurn) (ConversationTurn, bool) {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == RoleAssistant {
			return transcript[i], true
		}
	}
	return ConversationTurn{}, false
}

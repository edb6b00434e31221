package assistant

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalCatalog = `
greeting: hi
default_payload: clarify
coming_soon_payload: soon
payloads:
  clarify:
    text: say more
  soon:
    text: coming soon
  disputes:
    text: disputes answer
    visualization: global-services-disputes
    actions:
      - label: Draft
        action_id: draft
rules:
  - name: disputes
    when:
      any: [Dispute]
    payload: disputes
actions:
  draft: clarify
suggestions:
  cold_start: [a, b, c, d]
  contextual:
    - name: disputes
      content_contains: [Disputes]
      queries: [e, f, g, h]
  fallback: [w, x, y, z]
`

func TestDefaultCatalogLoads(t *testing.T) {
	c := Default()
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Greeting())
	assert.NotEmpty(t, c.Rules())
	assert.Contains(t, c.ActionIDs(), "viewDiscounts")
	assert.Same(t, c, Default())
}

func TestParseCatalogNormalizesTerms(t *testing.T) {
	c, err := ParseCatalog([]byte(minimalCatalog))
	require.NoError(t, err)
	rules := c.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"dispute"}, rules[0].When.Any)
	assert.Equal(t, VisualizationNone, c.fallback.Visualization)

	r := NewQueryResolver(c)
	assert.Equal(t, "disputes answer", r.Resolve("DISPUTES?").Text)

	_, set := NewSuggester(c).Pick([]ConversationTurn{
		UserTurn("x", time.Unix(0, 0)),
		UserTurn("y", time.Unix(0, 0)),
		AssistantTurn(c.rules[0].Payload, "q", time.Unix(0, 0)),
	})
	assert.Equal(t, "disputes", set)
}

func TestParseCatalogRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(string) string
		message string
	}{
		{"unknown payload ref", func(s string) string {
			return strings.Replace(s, "payload: disputes", "payload: nope", 1)
		}, `unknown payload "nope"`},
		{"unknown visualization", func(s string) string {
			return strings.Replace(s, "global-services-disputes", "pie", 1)
		}, `unknown visualization "pie"`},
		{"unresolvable action", func(s string) string {
			return strings.Replace(s, "action_id: draft", "action_id: missing", 1)
		}, `unresolvable action "missing"`},
		{"short suggestion set", func(s string) string {
			return strings.Replace(s, "[w, x, y, z]", "[w, x]", 1)
		}, "has 2 queries, want 4"},
		{"missing default", func(s string) string {
			return strings.Replace(s, "default_payload: clarify", "default_payload: gone", 1)
		}, "default_payload"},
		{"conflicting action labels", func(s string) string {
			return strings.Replace(s, "    text: coming soon\n", "    text: coming soon\n    actions:\n      - label: Redraft\n        action_id: draft\n", 1)
		}, `offered as both`},
		{"empty predicate", func(s string) string {
			return strings.Replace(s, "any: [Dispute]", "none: [Dispute]", 1)
		}, "empty predicate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tc.mutate(minimalCatalog)))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestParseCatalogLabelsAreStable(t *testing.T) {
	want := NewActionResolver(Default())
	for i := 0; i < 50; i++ {
		c, err := ParseCatalog(embeddedCatalog)
		require.NoError(t, err)
		got := NewActionResolver(c)
		for _, id := range c.ActionIDs() {
			require.Equal(t, want.Label(id), got.Label(id), id)
		}
	}
	assert.Equal(t, "Compare with other vendors", want.Label("compareVendors"))
}

func TestRulesReturnsDeepCopy(t *testing.T) {
	c, err := ParseCatalog(embeddedCatalog)
	require.NoError(t, err)
	r := NewQueryResolver(c)
	before := r.Resolve("bottleneck")
	require.NotEmpty(t, before.Actions)

	rules := c.Rules()
	rules[0].Payload.Actions[0].Label = "changed"
	rules[0].Payload.Text = "changed"
	rules[0].When.All[0] = "zzz"
	rules[0].When.None[0] = "zzz"

	assert.Equal(t, before, r.Resolve("bottleneck"))
	assert.Equal(t, VisualizationProcessOptimization, r.Resolve("what bottleneck").Visualization)
	assert.Equal(t, []string{"bottleneck"}, c.Rules()[0].When.All)
}

func TestParseCatalogRejectsUnknownFields(t *testing.T) {
	_, err := ParseCatalog([]byte(minimalCatalog + "\nextra: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode catalog")
}

func TestLoadCatalogFile(t *testing.T) {
	c, err := LoadCatalogFile("")
	require.NoError(t, err)
	assert.Same(t, Default(), c)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalCatalog), 0o600))
	c, err = LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hi", c.Greeting())

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

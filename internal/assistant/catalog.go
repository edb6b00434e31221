package assistant

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// SuggestionCount is the number of example queries offered after every turn.
const SuggestionCount = 4

var ErrInvalidCatalog = errors.New("invalid catalog")

type catalogDoc struct {
	Greeting          string                `yaml:"greeting"`
	DefaultPayload    string                `yaml:"default_payload"`
	ComingSoonPayload string                `yaml:"coming_soon_payload"`
	Payloads          map[string]payloadDoc `yaml:"payloads"`
	Rules             []ruleDoc             `yaml:"rules"`
	Actions           map[string]string     `yaml:"actions"`
	Suggestions       struct {
		ColdStart  []string        `yaml:"cold_start"`
		Contextual []contextualDoc `yaml:"contextual"`
		Fallback   []string        `yaml:"fallback"`
	} `yaml:"suggestions"`
}

type payloadDoc struct {
	Text          string      `yaml:"text"`
	Visualization string      `yaml:"visualization"`
	Actions       []ActionRef `yaml:"actions"`
}

type ruleDoc struct {
	Name    string    `yaml:"name"`
	When    Predicate `yaml:"when"`
	Payload string    `yaml:"payload"`
}

type contextualDoc struct {
	Name            string   `yaml:"name"`
	ContentContains []string `yaml:"content_contains"`
	Visualization   string   `yaml:"visualization"`
	Queries         []string `yaml:"queries"`
}

// Catalog is the validated, immutable set of canned content the resolvers
// draw from.
type Catalog struct {
	greeting    string
	rules       []KeywordRule
	fallback    Payload
	comingSoon  Payload
	actions     map[string]Payload
	labels      map[string]string
	suggestions suggestionTable
}

// Greeting is the assistant turn a fresh transcript starts with.
func (c *Catalog) Greeting() string { return c.greeting }

// Rules returns a deep copy of the ordered rule table.
func (c *Catalog) Rules() []KeywordRule {
	out := make([]KeywordRule, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.clone()
	}
	return out
}

// ActionIDs lists every action id the catalog can resolve.
func (c *Catalog) ActionIDs() []string {
	out := make([]string, 0, len(c.actions))
	for id := range c.actions {
		out = append(out, id)
	}
	return out
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := ParseCatalog(embeddedCatalog)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadCatalogFile reads a catalog from disk. An empty path yields the
// embedded catalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// LoadCatalog reads and validates a YAML catalog from r.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(b)
}

// ParseCatalog decodes b strictly; unknown fields and dangling references
// are errors wrapping ErrInvalidCatalog or the decoder error.
func ParseCatalog(b []byte) (*Catalog, error) {
	var doc catalogDoc
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return build(doc)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidCatalog, fmt.Sprintf(format, args...))
}

func build(doc catalogDoc) (*Catalog, error) {
	if strings.TrimSpace(doc.Greeting) == "" {
		return nil, invalid("greeting is required")
	}
	payloads := make(map[string]Payload, len(doc.Payloads))
	for name, ps := range doc.Payloads {
		if strings.TrimSpace(ps.Text) == "" {
			return nil, invalid("payload %q has no text", name)
		}
		kind := VisualizationKind(ps.Visualization)
		if kind == "" {
			kind = VisualizationNone
		}
		if !kind.Valid() {
			return nil, invalid("payload %q: unknown visualization %q", name, ps.Visualization)
		}
		payloads[name] = Payload{
			Text:          ps.Text,
			Visualization: kind,
			Actions:       append([]ActionRef{}, ps.Actions...),
		}
	}

	lookup := func(ref, owner string) (Payload, error) {
		p, ok := payloads[ref]
		if !ok {
			return Payload{}, invalid("%s references unknown payload %q", owner, ref)
		}
		return p, nil
	}

	c := &Catalog{
		greeting: doc.Greeting,
		actions:  make(map[string]Payload, len(doc.Actions)),
		labels:   make(map[string]string),
	}
	var err error
	if c.fallback, err = lookup(doc.DefaultPayload, "default_payload"); err != nil {
		return nil, err
	}
	if c.comingSoon, err = lookup(doc.ComingSoonPayload, "coming_soon_payload"); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(doc.Rules))
	for i, rs := range doc.Rules {
		if rs.Name == "" {
			return nil, invalid("rule %d has no name", i)
		}
		if seen[rs.Name] {
			return nil, invalid("duplicate rule %q", rs.Name)
		}
		seen[rs.Name] = true
		pred := rs.When.normalized()
		if pred.empty() {
			return nil, invalid("rule %q has an empty predicate", rs.Name)
		}
		p, err := lookup(rs.Payload, "rule "+rs.Name)
		if err != nil {
			return nil, err
		}
		c.rules = append(c.rules, KeywordRule{Name: rs.Name, When: pred, Payload: p})
	}

	for id, ref := range doc.Actions {
		p, err := lookup(ref, "action "+id)
		if err != nil {
			return nil, err
		}
		c.actions[id] = p
	}
	for name, p := range payloads {
		for _, a := range p.Actions {
			if _, ok := c.actions[a.ActionID]; !ok {
				return nil, invalid("payload %q offers unresolvable action %q", name, a.ActionID)
			}
			if prev, ok := c.labels[a.ActionID]; ok && prev != a.Label {
				return nil, invalid("action %q offered as both %q and %q", a.ActionID, prev, a.Label)
			}
			c.labels[a.ActionID] = a.Label
		}
	}

	if c.suggestions, err = buildSuggestions(doc); err != nil {
		return nil, err
	}
	return c, nil
}

func buildSuggestions(doc catalogDoc) (suggestionTable, error) {
	var t suggestionTable
	var err error
	if t.coldStart, err = fixedSet("cold_start", doc.Suggestions.ColdStart); err != nil {
		return t, err
	}
	if t.fallback, err = fixedSet("fallback", doc.Suggestions.Fallback); err != nil {
		return t, err
	}
	for _, cs := range doc.Suggestions.Contextual {
		set, err := fixedSet("contextual "+cs.Name, cs.Queries)
		if err != nil {
			return t, err
		}
		m := contextMarker{name: cs.Name, queries: set}
		for _, phrase := range cs.ContentContains {
			if p := strings.ToLower(strings.TrimSpace(phrase)); p != "" {
				m.contains = append(m.contains, p)
			}
		}
		if cs.Visualization != "" {
			kind := VisualizationKind(cs.Visualization)
			if !kind.Valid() {
				return t, invalid("contextual %q: unknown visualization %q", cs.Name, cs.Visualization)
			}
			m.visualization = kind
		}
		if len(m.contains) == 0 && m.visualization == "" {
			return t, invalid("contextual %q has no marker", cs.Name)
		}
		t.contextual = append(t.contextual, m)
	}
	return t, nil
}

func fixedSet(name string, queries []string) ([SuggestionCount]string, error) {
	var out [SuggestionCount]string
	if len(queries) != SuggestionCount {
		return out, invalid("suggestion set %s has %d queries, want %d", name, len(queries), SuggestionCount)
	}
	copy(out[:], queries)
	return out, nil
}

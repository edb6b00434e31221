package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apdash-backend/internal/assistant"
)

func TestEveryCatalogVisualizationHasAChart(t *testing.T) {
	for _, rule := range assistant.Default().Rules() {
		kind := rule.Payload.Visualization
		if kind == assistant.VisualizationNone {
			continue
		}
		c, err := Lookup(kind)
		require.NoError(t, err, "rule %s", rule.Name)
		assert.Equal(t, kind, c.Kind)
		assert.NotEmpty(t, c.Series)
	}
}

func TestLookupNoneAndUnknown(t *testing.T) {
	_, err := Lookup(assistant.VisualizationNone)
	assert.ErrorIs(t, err, ErrUnknownKind)
	_, err = Lookup("pie-in-the-sky")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKindsCoverCatalog(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, len(catalog))
	for _, k := range kinds {
		assert.True(t, k.Valid(), k)
	}
}

func TestLookupReturnsCopies(t *testing.T) {
	c, err := Lookup(assistant.VisualizationApproverPerformance)
	require.NoError(t, err)
	c.Series[0].Points[4].Y = 0

	again, err := Lookup(assistant.VisualizationApproverPerformance)
	require.NoError(t, err)
	assert.Equal(t, Point{X: "Emma Davis", Y: 3.2}, again.Series[0].Points[4])
}

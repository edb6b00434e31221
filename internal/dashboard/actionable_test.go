package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		from InsightStatus
		op   InsightOp
		to   InsightStatus
		ok   bool
	}{
		{"", OpTake, StatusInProgress, true},
		{StatusNew, OpTake, StatusInProgress, true},
		{StatusInProgress, OpTake, StatusInProgress, true},
		{StatusNew, OpDismiss, StatusDismissed, true},
		{StatusInProgress, OpDismiss, StatusDismissed, true},
		{StatusInProgress, OpComplete, StatusResolved, true},
		{StatusNew, OpComplete, StatusNew, false},
		{StatusResolved, OpTake, StatusResolved, false},
		{StatusDismissed, OpTake, StatusDismissed, false},
		{StatusResolved, OpDismiss, StatusResolved, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"/"+string(tc.op), func(t *testing.T) {
			to, err := Transition(tc.from, tc.op)
			assert.Equal(t, tc.to, to)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestParseInsightOp(t *testing.T) {
	op, err := ParseInsightOp(" Take ")
	require.NoError(t, err)
	assert.Equal(t, OpTake, op)

	_, err = ParseInsightOp("snooze")
	assert.ErrorIs(t, err, ErrUnknownInsightOp)
}

func TestActionableInsightsApplyStatuses(t *testing.T) {
	all := ActionableInsights(map[int]InsightStatus{2: StatusResolved})
	require.Len(t, all, 3)
	assert.Equal(t, StatusNew, all[0].Status)
	assert.Equal(t, StatusResolved, all[1].Status)

	all[0].Actions[0].Label = "changed"
	item, err := LookupActionable(1)
	require.NoError(t, err)
	assert.Equal(t, "Investigate", item.Actions[0].Label)

	_, err = LookupActionable(99)
	assert.ErrorIs(t, err, ErrUnknownInsight)
}

func TestActionLookup(t *testing.T) {
	item, err := LookupActionable(3)
	require.NoError(t, err)
	b, ok := item.Action("sendApprovalReminder")
	assert.True(t, ok)
	assert.Equal(t, "Send Reminder", b.Label)
	_, ok = item.Action("markDuplicate")
	assert.False(t, ok)
}

func TestBuildActionItems(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	cfo := Build(Viewer{Role: RoleCFO}, day)
	require.Len(t, cfo.ActionItems, 3)
	assert.Equal(t, "high", cfo.ActionItems[0].Priority)

	cfo = Build(Viewer{Role: RoleCFO, Insights: map[int]InsightStatus{
		1: StatusDismissed,
		2: StatusInProgress,
		3: StatusResolved,
	}}, day)
	require.Len(t, cfo.ActionItems, 1)
	assert.Equal(t, 2, cfo.ActionItems[0].ID)
	assert.Equal(t, StatusInProgress, cfo.ActionItems[0].Status)

	clerk := Build(Viewer{Role: RoleAPClerk}, day)
	assert.Empty(t, clerk.ActionItems)
}

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apdash-backend/internal/assistant"
	"apdash-backend/internal/charts"
	"apdash-backend/internal/config"
	"apdash-backend/internal/dashboard"
	"apdash-backend/internal/responder"
	"apdash-backend/internal/types"
)

func newTestServer(t *testing.T, delay time.Duration, policy responder.SupersedePolicy) *Server {
	t.Helper()
	log, _ := test.NewNullLogger()
	s, err := NewServer(config.Config{
		AllowedOrigin:   "*",
		ResponseDelay:   delay,
		SupersedePolicy: policy,
		DefaultRole:     dashboard.RoleAPClerk,
	}, log)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func do(t *testing.T, s *Server, method, path, sid string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.Header.Set("X-Session-Id", sid)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 0, responder.AppendAll)
	rec := do(t, s, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestResolveEndpoint(t *testing.T) {
	s := newTestServer(t, 0, responder.AppendAll)
	rec := do(t, s, http.MethodPost, "/api/resolve", "", types.ResolveRequest{Query: "banana"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[types.ResolveResponse](t, rec)
	assert.Equal(t, "", resp.Rule)
	assert.Equal(t, assistant.VisualizationNone, resp.Payload.Visualization)

	rec = do(t, s, http.MethodPost, "/api/resolve", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatCreatesSession(t *testing.T) {
	s := newTestServer(t, 0, responder.AppendAll)
	rec := do(t, s, http.MethodPost, "/api/chat", "", types.ChatRequest{Message: "banana", Wait: true})
	require.Equal(t, http.StatusOK, rec.Code)

	sid := rec.Header().Get("X-Session-Id")
	assert.True(t, strings.HasPrefix(sid, "s_"))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, sid, cookies[0].Value)
}

func TestChatWaitReturnsReply(t *testing.T) {
	s := newTestServer(t, 0, responder.CancelSuperseded)
	rec := do(t, s, http.MethodPost, "/api/chat", "s1", types.ChatRequest{
		Message: "Why are we seeing more disputes from Global Services?",
		Wait:    true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[types.ChatResponse](t, rec)
	assert.Equal(t, "delivered", resp.Status)
	require.NotNil(t, resp.Reply)
	assert.Equal(t, assistant.RoleAssistant, resp.Reply.Role)
	assert.Equal(t, resp.QueryID, resp.Reply.QueryID)
	assert.Equal(t, assistant.VisualizationGlobalServicesDisputes, resp.Reply.Visualization)

	tr := decode[types.TranscriptResponse](t, do(t, s, http.MethodGet, "/api/transcript", "s1", nil))
	require.Len(t, tr.Turns, 3)
	assert.Equal(t, assistant.RoleAssistant, tr.Turns[0].Role)
	assert.Equal(t, assistant.RoleUser, tr.Turns[1].Role)
	assert.Equal(t, "Why are we seeing more disputes from Global Services?", tr.Turns[1].Content)
	assert.Equal(t, 0, tr.Pending)

	sug := decode[types.SuggestionsResponse](t, do(t, s, http.MethodGet, "/api/suggestions", "s1", nil))
	assert.Equal(t, "global_services", sug.Set)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	s := newTestServer(t, 0, responder.AppendAll)
	rec := do(t, s, http.MethodPost, "/api/chat", "s1", types.ChatRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "message is required")

	tr := decode[types.TranscriptResponse](t, do(t, s, http.MethodGet, "/api/transcript", "s1", nil))
	assert.Len(t, tr.Turns, 1)
}

func TestChatIsDelayed(t *testing.T) {
	s := newTestServer(t, time.Hour, responder.AppendAll)
	rec := do(t, s, http.MethodPost, "/api/chat", "s1", types.ChatRequest{Message: "bottleneck"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	resp := decode[types.ChatResponse](t, rec)
	assert.Equal(t, "pending", resp.Status)
	assert.NotEmpty(t, resp.QueryID)

	tr := decode[types.TranscriptResponse](t, do(t, s, http.MethodGet, "/api/transcript", "s1", nil))
	assert.Len(t, tr.Turns, 2)
	assert.Equal(t, 1, tr.Pending)
}

func TestChatSupersededQueryIsCancelled(t *testing.T) {
	s := newTestServer(t, 200*time.Millisecond, responder.CancelSuperseded)

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- do(t, s, http.MethodPost, "/api/chat", "s1", types.ChatRequest{Message: "banana", Wait: true})
	}()
	require.Eventually(t, func() bool { return s.scheduler.Pending("s1") == 1 }, time.Second, time.Millisecond)

	second := do(t, s, http.MethodPost, "/api/chat", "s1", types.ChatRequest{Message: "bottleneck", Wait: true})
	require.Equal(t, http.StatusOK, second.Code)

	rec := <-first
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "cancelled", decode[types.ChatResponse](t, rec).Status)

	tr := decode[types.TranscriptResponse](t, do(t, s, http.MethodGet, "/api/transcript", "s1", nil))
	roles := make([]assistant.TurnRole, 0, len(tr.Turns))
	for _, turn := range tr.Turns {
		roles = append(roles, turn.Role)
	}
	assert.Equal(t, []assistant.TurnRole{assistant.RoleAssistant, assistant.RoleUser, assistant.RoleUser, assistant.RoleAssistant}, roles)
	assert.Equal(t, assistant.VisualizationApproverPerformance, tr.Turns[3].Visualization)
}

func TestChatAppendAllKeepsBothReplies(t *testing.T) {
	s := newTestServer(t, 20*time.Millisecond, responder.AppendAll)
	do(t, s, http.MethodPost, "/api/chat", "s1", types.ChatRequest{Message: "banana"})
	do(t, s, http.MethodPost, "/api/chat", "s1", types.ChatRequest{Message: "bottleneck"})

	require.Eventually(t, func() bool { return len(s.store.Get("s1")) == 5 }, time.Second, time.Millisecond)
	tr := decode[types.TranscriptResponse](t, do(t, s, http.MethodGet, "/api/transcript", "s1", nil))
	assert.Equal(t, 0, tr.Pending)
	assert.Equal(t, assistant.RoleAssistant, tr.Turns[3].Role)
	assert.Equal(t, assistant.RoleAssistant, tr.Turns[4].Role)
}

func TestActionEndpoint(t *testing.T) {
	s := newTestServer(t, 0, responder.AppendAll)
	rec := do(t, s, http.MethodPost, "/api/actions/viewDiscounts", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[types.ActionResponse](t, rec)
	assert.True(t, resp.Known)
	assert.Contains(t, resp.Reply.Content, "Acme Supplies")

	rec = do(t, s, http.MethodPost, "/api/actions/nonexistent-id", "s1", nil)
	resp = decode[types.ActionResponse](t, rec)
	assert.False(t, resp.Known)
	assert.Contains(t, resp.Reply.Content, "coming soon")

	tr := decode[types.TranscriptResponse](t, do(t, s, http.MethodGet, "/api/transcript", "s1", nil))
	require.Len(t, tr.Turns, 5)
	assert.Equal(t, "View discount opportunities", tr.Turns[1].Content)
	assert.Equal(t, "nonexistent-id", tr.Turns[3].Content)
}

func TestResetTranscript(t *testing.T) {
	s := newTestServer(t, time.Hour, responder.AppendAll)
	do(t, s, http.MethodPost, "/api/chat", "s1", types.ChatRequest{Message: "bottleneck"})
	require.Equal(t, 1, s.scheduler.Pending("s1"))

	rec := do(t, s, http.MethodDelete, "/api/transcript", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tr := decode[types.TranscriptResponse](t, rec)
	assert.Len(t, tr.Turns, 1)
	assert.Equal(t, 0, s.scheduler.Pending("s1"))

	sug := decode[types.SuggestionsResponse](t, do(t, s, http.MethodGet, "/api/suggestions", "s1", nil))
	assert.Equal(t, "cold_start", sug.Set)
	assert.Equal(t, "Why are we seeing more disputes from Global Services?", sug.Suggestions[0])
}

func TestRoleEndpoints(t *testing.T) {
	s := newTestServer(t, 0, responder.AppendAll)
	got := decode[types.RoleResponse](t, do(t, s, http.MethodGet, "/api/role", "s1", nil))
	assert.Equal(t, dashboard.RoleAPClerk, got.Role)
	assert.Len(t, got.Available, 3)

	rec := do(t, s, http.MethodPut, "/api/role", "s1", types.RoleRequest{Role: "cfo"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.RoleCFO, decode[types.RoleResponse](t, rec).Role)

	rec = do(t, s, http.MethodPut, "/api/role", "s1", types.RoleRequest{Role: "auditor"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	view := decode[dashboard.View](t, do(t, s, http.MethodGet, "/api/dashboard", "s1", nil))
	assert.Equal(t, dashboard.RoleCFO, view.Role)
	assert.Contains(t, view.Panels, dashboard.PanelActionItems)

	other := decode[dashboard.View](t, do(t, s, http.MethodGet, "/api/dashboard", "s2", nil))
	assert.Equal(t, dashboard.RoleAPClerk, other.Role)
}

func TestVisualizationEndpoints(t *testing.T) {
	s := newTestServer(t, 0, responder.AppendAll)
	rec := do(t, s, http.MethodGet, "/api/visualizations/cash-flow-forecast", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[charts.Chart](t, rec)
	assert.Equal(t, assistant.VisualizationCashFlowForecast, c.Kind)

	rec = do(t, s, http.MethodGet, "/api/visualizations/none", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/visualizations", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vendor-risk-matrix")
}

func TestNewServerBadCatalog(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := NewServer(config.Config{CatalogFile: "/nonexistent.yaml"}, log)
	assert.Error(t, err)
}

func TestEndSession(t *testing.T) {
	s := newTestServer(t, time.Hour, responder.AppendAll)
	do(t, s, http.MethodPut, "/api/role", "s1", types.RoleRequest{Role: "controller"})
	do(t, s, http.MethodPost, "/api/chat", "s1", types.ChatRequest{Message: "bottleneck"})

	rec := do(t, s, http.MethodDelete, "/api/session", "s1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Equal(t, 0, s.scheduler.Pending("s1"))

	got := decode[types.RoleResponse](t, do(t, s, http.MethodGet, "/api/role", "s1", nil))
	assert.Equal(t, dashboard.RoleAPClerk, got.Role)
}

func TestInsightLifecycle(t *testing.T) {
	s := newTestServer(t, 0, responder.AppendAll)
	do(t, s, http.MethodPut, "/api/role", "s1", types.RoleRequest{Role: "cfo"})

	rec := do(t, s, http.MethodPost, "/api/insights/2/take", "s1", types.InsightRequest{ActionID: "scheduleEarlyPayment"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[types.InsightResponse](t, rec)
	assert.Equal(t, dashboard.StatusInProgress, resp.Insight.Status)
	require.NotNil(t, resp.Reply)
	assert.Contains(t, resp.Reply.Content, "Acme Supplies")

	tr := decode[types.TranscriptResponse](t, do(t, s, http.MethodGet, "/api/transcript", "s1", nil))
	require.Len(t, tr.Turns, 3)
	assert.Equal(t, "Schedule Payment", tr.Turns[1].Content)

	rec = do(t, s, http.MethodPost, "/api/insights/2/complete", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.StatusResolved, decode[types.InsightResponse](t, rec).Insight.Status)

	rec = do(t, s, http.MethodPost, "/api/insights/2/complete", "s1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/insights/1/dismiss", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[types.InsightResponse](t, rec).Reply)

	view := decode[dashboard.View](t, do(t, s, http.MethodGet, "/api/dashboard", "s1", nil))
	require.Len(t, view.ActionItems, 1)
	assert.Equal(t, 3, view.ActionItems[0].ID)

	all := decode[types.InsightsResponse](t, do(t, s, http.MethodGet, "/api/insights", "s1", nil))
	require.Len(t, all.Insights, 3)
	assert.Equal(t, dashboard.StatusDismissed, all.Insights[0].Status)

	other := decode[types.InsightsResponse](t, do(t, s, http.MethodGet, "/api/insights", "s2", nil))
	assert.Equal(t, dashboard.StatusNew, other.Insights[1].Status)
}

func TestInsightOpErrors(t *testing.T) {
	s := newTestServer(t, 0, responder.AppendAll)
	cases := []struct {
		path string
		body any
		code int
	}{
		{"/api/insights/99/take", nil, http.StatusNotFound},
		{"/api/insights/abc/take", nil, http.StatusBadRequest},
		{"/api/insights/1/snooze", nil, http.StatusBadRequest},
		{"/api/insights/1/complete", nil, http.StatusConflict},
		{"/api/insights/1/take", types.InsightRequest{ActionID: "scheduleEarlyPayment"}, http.StatusBadRequest},
		{"/api/insights/1/dismiss", types.InsightRequest{ActionID: "markDuplicate"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tc.path, "s1", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
	all := decode[types.InsightsResponse](t, do(t, s, http.MethodGet, "/api/insights", "s1", nil))
	assert.Equal(t, dashboard.StatusNew, all.Insights[0].Status)
}

func TestInsightButtonsResolve(t *testing.T) {
	s := newTestServer(t, 0, responder.AppendAll)
	for _, item := range dashboard.ActionableInsights(nil) {
		for _, b := range item.Actions {
			_, known := s.actions.Lookup(b.ActionID)
			assert.True(t, known, "%s: %s", item.Title, b.ActionID)
		}
	}
}

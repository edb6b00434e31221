package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"apdash-backend/internal/assistant"
	"apdash-backend/internal/charts"
	"apdash-backend/internal/dashboard"
	"apdash-backend/internal/types"
)

func (s *Server) roleResponse(sid string) types.RoleResponse {
	role := s.store.Role(sid)
	return types.RoleResponse{SessionID: sid, Role: role, Title: role.Title(), Available: dashboard.Roles()}
}

// GET /api/role
func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	sid := s.getOrCreateSessionID(r, w)
	writeJSON(w, http.StatusOK, s.roleResponse(sid))
}

// PUT /api/role
func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var req types.RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sid := s.getOrCreateSessionID(r, w)
	role, err := dashboard.ParseRole(req.Role)
	if err == nil {
		err = s.store.SetRole(sid, role)
	}
	if err != nil {
		if errors.Is(err, dashboard.ErrUnknownRole) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to set role")
		return
	}
	s.log.WithFields(logrus.Fields{"session": sid, "role": role}).Info("role changed")
	writeJSON(w, http.StatusOK, s.roleResponse(sid))
}

// GET /api/dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sid := s.getOrCreateSessionID(r, w)
	writeJSON(w, http.StatusOK, dashboard.Build(s.store.Viewer(sid), s.now()))
}

// GET /api/visualizations
func (s *Server) handleVisualizationKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"kinds": charts.Kinds()})
}

// GET /api/visualizations/{kind}
func (s *Server) handleVisualization(w http.ResponseWriter, r *http.Request) {
	kind := assistant.VisualizationKind(chi.URLParam(r, "kind"))
	c, err := charts.Lookup(kind)
	if errors.Is(err, charts.ErrUnknownKind) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load chart")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GET /api/insights
// Every action item with its status for the session, closed ones included.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	sid := s.getOrCreateSessionID(r, w)
	writeJSON(w, http.StatusOK, types.InsightsResponse{
		SessionID: sid,
		Insights:  dashboard.ActionableInsights(s.store.InsightStatuses(sid)),
	})
}

// POST /api/insights/{insightID}/{op}
// Moves an action item through its lifecycle. A take may name the button
// pressed; its catalog action is resolved into the transcript.
func (s *Server) handleInsightOp(w http.ResponseWriter, r *http.Request) {
	sid := s.getOrCreateSessionID(r, w)
	id, err := strconv.Atoi(chi.URLParam(r, "insightID"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid action item id")
		return
	}
	op, err := dashboard.ParseInsightOp(chi.URLParam(r, "op"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req types.InsightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := dashboard.LookupActionable(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	var button dashboard.InsightAction
	if req.ActionID != "" {
		var ok bool
		if op != dashboard.OpTake {
			s.writeError(w, http.StatusBadRequest, "actionId is only accepted with take")
			return
		}
		if button, ok = item.Action(req.ActionID); !ok {
			s.writeError(w, http.StatusBadRequest, "action item has no action "+strconv.Quote(req.ActionID))
			return
		}
	}

	item, err = s.store.AdvanceInsight(sid, id, op)
	switch {
	case errors.Is(err, dashboard.ErrInvalidTransition):
		s.writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, "failed to update action item")
		return
	}
	log := s.log.WithFields(logrus.Fields{"session": sid, "insight": id, "status": item.Status})

	resp := types.InsightResponse{SessionID: sid, Insight: item}
	if button.ActionID != "" {
		now := s.now()
		s.store.Append(sid, assistant.UserTurn(button.Label, now))
		reply := assistant.AssistantTurn(s.actions.Resolve(button.ActionID), "", now)
		s.store.Append(sid, reply)
		resp.Reply = &reply
		log = log.WithField("action", button.ActionID)
	}
	log.Info("action item updated")
	writeJSON(w, http.StatusOK, resp)
}

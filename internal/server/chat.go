package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"apdash-backend/internal/assistant"
	"apdash-backend/internal/responder"
	"apdash-backend/internal/types"
)

// POST /api/chat
// Records the user turn and schedules the assistant reply. With wait set the
// response carries the reply once it lands.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sid := s.getOrCreateSessionID(r, w)
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	s.store.Append(sid, assistant.UserTurn(req.Message, s.now()))

	qid := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"session": sid, "query": qid})
	var reply assistant.ConversationTurn
	outcome := s.scheduler.Schedule(sid, qid, func() {
		p, rule := s.queries.Match(req.Message)
		reply = assistant.AssistantTurn(p, qid, s.now())
		s.store.Append(sid, reply)
		log.WithFields(logrus.Fields{"rule": rule, "visualization": p.Visualization}).Debug("reply delivered")
	})

	if !req.Wait {
		writeJSON(w, http.StatusAccepted, types.ChatResponse{SessionID: sid, QueryID: qid, Status: "pending"})
		return
	}
	select {
	case o := <-outcome:
		if o == responder.Cancelled {
			log.Debug("reply superseded")
			writeJSON(w, http.StatusConflict, types.ChatResponse{SessionID: sid, QueryID: qid, Status: string(o)})
			return
		}
		writeJSON(w, http.StatusOK, types.ChatResponse{SessionID: sid, QueryID: qid, Status: string(o), Reply: &reply})
	case <-r.Context().Done():
		// The reply still lands in the transcript.
		log.Debug("client left before reply")
	}
}

// POST /api/actions/{actionID}
// Actions resolve immediately; the button label is recorded as the user turn.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	sid := s.getOrCreateSessionID(r, w)
	actionID := chi.URLParam(r, "actionID")
	p, known := s.actions.Lookup(actionID)
	if !known {
		s.log.WithFields(logrus.Fields{"session": sid, "action": actionID}).Info("unknown action")
	}
	now := s.now()
	s.store.Append(sid, assistant.UserTurn(s.actions.Label(actionID), now))
	reply := assistant.AssistantTurn(p, "", now)
	s.store.Append(sid, reply)
	writeJSON(w, http.StatusOK, types.ActionResponse{SessionID: sid, Known: known, Reply: reply})
}

// GET /api/transcript
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sid := s.getOrCreateSessionID(r, w)
	writeJSON(w, http.StatusOK, types.TranscriptResponse{
		SessionID: sid,
		Turns:     s.store.Get(sid),
		Pending:   s.scheduler.Pending(sid),
	})
}

// DELETE /api/transcript
// Equivalent to reloading the page: pending replies are dropped and the
// transcript starts again from the greeting.
func (s *Server) handleResetTranscript(w http.ResponseWriter, r *http.Request) {
	sid := s.getOrCreateSessionID(r, w)
	cancelled := s.scheduler.CancelSession(sid)
	s.store.Reset(sid)
	s.log.WithFields(logrus.Fields{"session": sid, "cancelled": cancelled}).Debug("transcript reset")
	writeJSON(w, http.StatusOK, types.TranscriptResponse{SessionID: sid, Turns: s.store.Get(sid)})
}

// DELETE /api/session
// Ends the session: pending replies are cancelled, transcript and role are
// dropped and the cookie is cleared.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sid := getSessionID(r)
	if sid != "" {
		cancelled := s.scheduler.CancelSession(sid)
		s.store.Forget(sid)
		s.log.WithFields(logrus.Fields{"session": sid, "cancelled": cancelled}).Info("session ended")
	}
	ClearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/suggestions
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	sid := s.getOrCreateSessionID(r, w)
	out, set := s.suggester.Pick(s.store.Get(sid))
	writeJSON(w, http.StatusOK, types.SuggestionsResponse{SessionID: sid, Set: set, Suggestions: out})
}

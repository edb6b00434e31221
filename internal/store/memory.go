package store

import (
	"sync"
	"time"

	"apdash-backend/internal/assistant"
	"apdash-backend/internal/dashboard"
)

// MemoryStore keeps the transcript, role and action item statuses of each
// session. Transcripts are append-only; Reset is the only way to clear one.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]assistant.ConversationTurn
	maxTurns int
	greeting string
	// Role selected per session; absent means defaultRole
	roleBySession map[string]dashboard.Role
	defaultRole   dashboard.Role
	// Action item statuses per session; absent means new
	insightsBySession map[string]map[int]dashboard.InsightStatus
	now               func() time.Time
}

// NewMemoryStore seeds every new transcript with greeting. maxTurns <= 0
// keeps every turn.
func NewMemoryStore(greeting string, maxTurns int, defaultRole dashboard.Role) *MemoryStore {
	if !defaultRole.Valid() {
		defaultRole = dashboard.RoleAPClerk
	}
	return &MemoryStore{
		sessions:      make(map[string][]assistant.ConversationTurn),
		maxTurns:      maxTurns,
		greeting:      greeting,
		roleBySession: make(map[string]dashboard.Role),
		defaultRole:   defaultRole,
		now:           time.Now,

		insightsBySession: make(map[string]map[int]dashboard.InsightStatus),
	}
}

// Append adds a turn and returns the resulting transcript length.
func (m *MemoryStore) Append(sessionID string, turn assistant.ConversationTurn) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLocked(sessionID)
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = m.now()
	}
	turn.Actions = append([]assistant.ActionRef{}, turn.Actions...)
	m.sessions[sessionID] = append(m.sessions[sessionID], turn)
	m.trimLocked(sessionID)
	return len(m.sessions[sessionID])
}

// Get returns a copy of the transcript, creating it if needed.
func (m *MemoryStore) Get(sessionID string) []assistant.ConversationTurn {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLocked(sessionID)
	msgs := m.sessions[sessionID]
	out := make([]assistant.ConversationTurn, len(msgs))
	for i, t := range msgs {
		t.Actions = append([]assistant.ActionRef{}, t.Actions...)
		out[i] = t
	}
	return out
}

// Reset drops the transcript. The next access starts again from the greeting.
func (m *MemoryStore) Reset(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Forget drops everything held for a session, role included.
func (m *MemoryStore) Forget(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	delete(m.roleBySession, sessionID)
	delete(m.insightsBySession, sessionID)
}

func (m *MemoryStore) Sessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) ensureLocked(sessionID string) {
	if _, ok := m.sessions[sessionID]; ok {
		return
	}
	greeting := assistant.AssistantTurn(assistant.Payload{
		Text:          m.greeting,
		Visualization: assistant.VisualizationNone,
	}, "", m.now())
	m.sessions[sessionID] = []assistant.ConversationTurn{greeting}
}

func (m *MemoryStore) trimLocked(sessionID string) {
	if m.maxTurns <= 0 {
		return
	}
	msgs := m.sessions[sessionID]
	if len(msgs) > m.maxTurns {
		m.sessions[sessionID] = append([]assistant.ConversationTurn(nil), msgs[len(msgs)-m.maxTurns:]...)
	}
}

// Role helpers

// SetRole is the only way a session's role changes.
func (m *MemoryStore) SetRole(sessionID string, role dashboard.Role) error {
	if !role.Valid() {
		_, err := dashboard.ParseRole(string(role))
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roleBySession[sessionID] = role
	return nil
}

func (m *MemoryStore) Role(sessionID string) dashboard.Role {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.roleBySession[sessionID]; ok {
		return r
	}
	return m.defaultRole
}

// Viewer is the render context for a session.
func (m *MemoryStore) Viewer(sessionID string) dashboard.Viewer {
	return dashboard.Viewer{Role: m.Role(sessionID), Insights: m.InsightStatuses(sessionID)}
}

// Action item helpers

// InsightStatuses returns a copy of the statuses set for a session.
func (m *MemoryStore) InsightStatuses(sessionID string) map[int]dashboard.InsightStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]dashboard.InsightStatus, len(m.insightsBySession[sessionID]))
	for id, st := range m.insightsBySession[sessionID] {
		out[id] = st
	}
	return out
}

// AdvanceInsight applies op to action item id for a session and returns the
// item with its new status. Errors wrap dashboard.ErrUnknownInsight or
// dashboard.ErrInvalidTransition; the status is unchanged on error.
func (m *MemoryStore) AdvanceInsight(sessionID string, id int, op dashboard.InsightOp) (dashboard.ActionableInsight, error) {
	item, err := dashboard.LookupActionable(id)
	if err != nil {
		return dashboard.ActionableInsight{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	statuses := m.insightsBySession[sessionID]
	from := dashboard.StatusNew
	if st, ok := statuses[id]; ok {
		from = st
	}
	to, err := dashboard.Transition(from, op)
	if err != nil {
		return dashboard.ActionableInsight{}, err
	}
	if statuses == nil {
		statuses = make(map[int]dashboard.InsightStatus)
		m.insightsBySession[sessionID] = statuses
	}
	statuses[id] = to
	item.Status = to
	return item, nil
}

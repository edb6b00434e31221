// Package responder delays assistant replies to model typing latency. Every
// scheduled reply is tied to a query id so it can be cancelled before it is
// delivered.
package responder

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type SupersedePolicy string

const (
	// AppendAll delivers every scheduled reply, even when a newer query for
	// the same session arrives first.
	AppendAll SupersedePolicy = "append-all"
	// CancelSuperseded drops a session's pending replies when a new query
	// for that session is scheduled.
	CancelSuperseded SupersedePolicy = "cancel-superseded"
)

func ParsePolicy(s string) (SupersedePolicy, error) {
	switch SupersedePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case AppendAll:
		return AppendAll, nil
	case CancelSuperseded:
		return CancelSuperseded, nil
	}
	return "", fmt.Errorf("unknown supersede policy %q", s)
}

type Outcome string

const (
	Delivered Outcome = "delivered"
	Cancelled Outcome = "cancelled"
)

type pending struct {
	sessionID string
	timer     *time.Timer
	done      chan Outcome
}

// Scheduler runs deliver callbacks after a fixed delay.
type Scheduler struct {
	delay  time.Duration
	policy SupersedePolicy

	mu        sync.Mutex
	byQuery   map[string]*pending
	bySession map[string]map[string]struct{}
	closed    bool
	wg        sync.WaitGroup
}

func NewScheduler(delay time.Duration, policy SupersedePolicy) *Scheduler {
	if delay < 0 {
		delay = 0
	}
	if policy == "" {
		policy = CancelSuperseded
	}
	return &Scheduler{
		delay:     delay,
		policy:    policy,
		byQuery:   make(map[string]*pending),
		bySession: make(map[string]map[string]struct{}),
	}
}

func (s *Scheduler) Delay() time.Duration     { return s.delay }
func (s *Scheduler) Policy() SupersedePolicy { return s.policy }

// Schedule arranges for deliver to run once the delay elapses unless the
// query is cancelled first. The returned channel receives exactly one
// Outcome. deliver runs on its own goroutine.
func (s *Scheduler) Schedule(sessionID, queryID string, deliver func()) <-chan Outcome {
	done := make(chan Outcome, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		done <- Cancelled
		return done
	}
	if _, dup := s.byQuery[queryID]; dup {
		s.cancelLocked(queryID)
	}
	if s.policy == CancelSuperseded {
		for qid := range s.bySession[sessionID] {
			s.cancelLocked(qid)
		}
	}

	p := &pending{sessionID: sessionID, done: done}
	s.byQuery[queryID] = p
	if s.bySession[sessionID] == nil {
		s.bySession[sessionID] = make(map[string]struct{})
	}
	s.bySession[sessionID][queryID] = struct{}{}
	s.wg.Add(1)
	p.timer = time.AfterFunc(s.delay, func() {
		defer s.wg.Done()
		s.mu.Lock()
		cur, ok := s.byQuery[queryID]
		if !ok || cur != p {
			s.mu.Unlock()
			return
		}
		s.removeLocked(queryID)
		s.mu.Unlock()

		deliver()
		p.done <- Delivered
	})
	return done
}

// Cancel stops a pending query. It reports false when the query already
// fired or was never scheduled.
func (s *Scheduler) Cancel(queryID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(queryID)
}

// CancelSession stops every pending query of a session and returns how many
// were cancelled.
func (s *Scheduler) CancelSession(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for qid := range s.bySession[sessionID] {
		if s.cancelLocked(qid) {
			n++
		}
	}
	return n
}

// Pending returns the number of undelivered queries for a session.
func (s *Scheduler) Pending(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bySession[sessionID])
}

// Close cancels everything still pending and waits for in-flight deliveries.
// Schedule after Close reports Cancelled immediately.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for qid := range s.byQuery {
		s.cancelLocked(qid)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) cancelLocked(queryID string) bool {
	p, ok := s.byQuery[queryID]
	if !ok {
		return false
	}
	s.removeLocked(queryID)
	if p.timer.Stop() {
		// The callback will never run, so release its slot here. When Stop
		// loses the race the callback finds the entry gone and releases it.
		s.wg.Done()
	}
	p.done <- Cancelled
	return true
}

func (s *Scheduler) removeLocked(queryID string) {
	p, ok := s.byQuery[queryID]
	if !ok {
		return
	}
	delete(s.byQuery, queryID)
	if qs := s.bySession[p.sessionID]; qs != nil {
		delete(qs, queryID)
		if len(qs) == 0 {
			delete(s.bySession, p.sessionID)
		}
	}
}

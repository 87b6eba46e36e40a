package services

import (
	"context"
	"errors"
	"sync"

	"finbook/internal/ai"
	"finbook/internal/core"
	"finbook/internal/log"
)

// ErrInsightPending rejects a manual refresh while a previous request is
// still in flight. Automatic triggers are not subject to it.
var ErrInsightPending = errors.New("insight generation already in progress")

// InsightStatus is the lifecycle of the displayed insight text.
type InsightStatus string

const (
	InsightIdle    InsightStatus = "idle"
	InsightPending InsightStatus = "pending"
	InsightReady   InsightStatus = "ready"
	InsightFailed  InsightStatus = "failed"
)

// InsightState is what polling callers see: the request status and the text
// to display.
type InsightState struct {
	Status InsightStatus `json:"status"`
	Text   string        `json:"text"`
}

// InsightManager issues insight requests against the collaborator and holds
// the resulting state for polling.
//
// Requests run on their own goroutine with a background context: an
// in-flight request is never cancelled, its response is applied whenever it
// arrives. Automatic triggers may overlap; the last response to resolve wins
// and overwrites the displayed text. Manual refreshes are serialized by
// rejecting them while anything is in flight.
type InsightManager struct {
	collab Collaborator
	log    *log.Logger

	mu       sync.Mutex
	inflight int
	state    InsightState
}

func NewInsightManager(collab Collaborator, logger *log.Logger) *InsightManager {
	return &InsightManager{
		collab: collab,
		log:    logger.WithComponent("insight"),
		state:  InsightState{Status: InsightIdle},
	}
}

// State returns the current insight state.
func (m *InsightManager) State() InsightState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Trigger starts insight generation in response to a change in the expense
// count. Overlapping triggers are allowed.
func (m *InsightManager) Trigger(expenses []core.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.launch(expenses)
}

// Refresh starts insight generation on user request. While a request is in
// flight it fails with ErrInsightPending; the caller is expected to disable
// its trigger affordance on that signal.
func (m *InsightManager) Refresh(expenses []core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inflight > 0 {
		return ErrInsightPending
	}
	m.launch(expenses)
	return nil
}

// launch must be called with the mutex held.
func (m *InsightManager) launch(expenses []core.Expense) {
	if len(expenses) == 0 {
		// Nothing to reason about: resolve immediately, no network call.
		m.state = InsightState{Status: InsightReady, Text: ai.InsightNoDataMessage}
		return
	}
	if m.collab == nil {
		m.log.Warn("collaborator not configured, using fallback insight")
		m.state = InsightState{Status: InsightFailed, Text: ai.InsightFallbackMessage}
		return
	}

	m.inflight++
	m.state.Status = InsightPending

	go func() {
		text, err := m.collab.GenerateInsight(context.Background(), expenses)

		m.mu.Lock()
		defer m.mu.Unlock()
		m.inflight--

		status := InsightReady
		if err != nil {
			// Cause was already logged at the boundary.
			status = InsightFailed
			text = ai.InsightFallbackMessage
		}
		m.state.Text = text
		if m.inflight == 0 {
			m.state.Status = status
		}
	}()
}

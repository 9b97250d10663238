// Package session keeps one conversation slot per user: the active flow, its
// step, and the draft being assembled. Starting a flow replaces whatever was
// there; clearing removes the slot entirely. A slot never holds FlowNone.
package session

import (
	"sync"
	"time"

	"github.com/danindra/warungbot/internal/store"
)

// FlowKind identifies the active multi-step conversation.
type FlowKind int

const (
	// FlowNone means no active conversation; such a session is never stored.
	FlowNone FlowKind = iota
	// FlowAddProduct is the add-product conversation.
	FlowAddProduct
	// FlowAddTransaction is the add-transaction conversation.
	FlowAddTransaction
)

// Step identifies the position inside a flow.
type Step int

const (
	// StepProductName waits for the new product's name.
	StepProductName Step = iota
	// StepProductPrice waits for the new product's price.
	StepProductPrice
	// StepTxSelect waits for a product pick (button, not text).
	StepTxSelect
	// StepTxSearch waits for a search query.
	StepTxSearch
	// StepTxQuantity waits for the quantity of the pending selection.
	StepTxQuantity
	// StepTxSummary shows the draft summary (button-driven).
	StepTxSummary
	// StepTxBuyer waits for the buyer name.
	StepTxBuyer
)

// ProductRef is the pending selection: a snapshot of the picked product.
type ProductRef struct {
	ID    int64
	Name  string
	Price int64
}

// ProductDraft is the in-progress add-product entity.
type ProductDraft struct {
	Name string
}

// TxDraft is the in-progress transaction.
type TxDraft struct {
	Items []store.TransactionItem
}

// Session is the per-user conversation state.
type Session struct {
	Flow         FlowKind
	Step         Step
	ProductDraft ProductDraft
	TxDraft      TxDraft
	Selection    *ProductRef
	LastActiveAt time.Time
}

// Manager owns all sessions, one slot per user id. The transport delivers one
// event per user at a time, so per-user access is sequential; the mutex only
// guards cross-user map access and the sweeper.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

// NewManager constructs an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Get returns a copy of the user's session, touching its activity timestamp.
func (m *Manager) Get(userID int64) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		return Session{}, false
	}
	sess.LastActiveAt = m.now()
	return *sess, true
}

// Has reports whether the user currently has an active flow.
func (m *Manager) Has(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[userID]
	return ok
}

// Start replaces any existing session with a fresh one for the given flow.
// Starting FlowNone clears instead.
func (m *Manager) Start(userID int64, flow FlowKind, step Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if flow == FlowNone {
		delete(m.sessions, userID)
		return
	}
	m.sessions[userID] = &Session{
		Flow:         flow,
		Step:         step,
		LastActiveAt: m.now(),
	}
}

// Mutate applies fn to the user's session in place and reports whether a
// session existed. If fn leaves the session with FlowNone it is removed.
func (m *Manager) Mutate(userID int64, fn func(*Session)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		return false
	}
	fn(sess)
	if sess.Flow == FlowNone {
		delete(m.sessions, userID)
		return true
	}
	sess.LastActiveAt = m.now()
	return true
}

// Clear removes the user's session and discards its draft.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictIdle removes sessions idle longer than maxIdle and returns how many
// were dropped. Eviction is silent; the user simply has no session anymore.
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, sess := range m.sessions {
		if now.Sub(sess.LastActiveAt) > maxIdle {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

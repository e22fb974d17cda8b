// Package session keeps the in-memory item tables of the transient variant.
// Each login session owns one table; it is created when the session is first
// used and discarded when the session ends or sits idle past its TTL.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/inventario/internal/inventory"
	"github.com/erazemk/inventario/internal/model"
)

var (
	// ErrNoSession is returned when a table is requested without a session ID.
	ErrNoSession = errors.New("no session")
	// ErrSessionEnded is returned for a session that was explicitly ended.
	ErrSessionEnded = errors.New("session ended")
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 12 * time.Hour

// Table is an in-memory item table. Reads and writes copy the items.
type Table struct {
	mu    sync.Mutex
	items []model.Item
}

// Read implements inventory.Backend.
func (t *Table) Read(_ context.Context) ([]model.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.Item, len(t.items))
	copy(out, t.items)
	return out, nil
}

// Write implements inventory.Backend.
func (t *Table) Write(_ context.Context, items []model.Item) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = make([]model.Item, len(items))
	copy(t.items, items)
	return nil
}

type entry struct {
	table    *Table
	started  time.Time
	lastSeen time.Time
}

// Manager owns the tables of all live sessions.
type Manager struct {
	ttl   time.Duration
	now   func() time.Time
	onEnd func(inventory.Backend)

	mu       sync.Mutex
	sessions map[string]*entry
	// ended holds the IDs of sessions ended by End, with the time they ended.
	// Tokens outlive End by at most the TTL, so entries are dropped after it.
	ended map[string]time.Time
}

// NewManager creates a Manager that expires sessions idle for longer than ttl.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*entry),
		ended:    make(map[string]time.Time),
	}
}

// OnEnd registers a function called with a session's table after it ends.
func (m *Manager) OnEnd(fn func(inventory.Backend)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnd = fn
}

// For implements inventory.Backends. A session seen for the first time gets
// an empty table; a session ended by End gets ErrSessionEnded.
func (m *Manager) For(_ context.Context, sessionID string) (inventory.Backend, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ended[sessionID]; ok {
		return nil, ErrSessionEnded
	}

	now := m.now()
	e, ok := m.sessions[sessionID]
	if !ok {
		e = &entry{table: &Table{}, started: now}
		m.sessions[sessionID] = e
		slog.Info("session started", "session", sessionID)
	}
	e.lastSeen = now
	return e.table, nil
}

// End discards a session and its table. The session cannot be started again.
func (m *Manager) End(sessionID string) {
	if sessionID == "" {
		return
	}

	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.ended[sessionID] = m.now()
	onEnd := m.onEnd
	m.mu.Unlock()

	if ok {
		slog.Info("session ended", "session", sessionID)
		if onEnd != nil {
			onEnd(e.table)
		}
	}
}

// Sweep ends every session idle for longer than the TTL and returns how many
// were ended.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	cutoff := m.now().Add(-m.ttl)
	var expired []*entry
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e)
			delete(m.sessions, id)
		}
	}
	for id, at := range m.ended {
		if at.Before(cutoff) {
			delete(m.ended, id)
		}
	}
	onEnd := m.onEnd
	m.mu.Unlock()

	if onEnd != nil {
		for _, e := range expired {
			onEnd(e.table)
		}
	}
	if len(expired) > 0 {
		slog.Info("expired idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

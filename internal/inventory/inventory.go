// Package inventory holds the item table operations: filtering by location,
// appending new items, flipping status, and loading/persisting the whole
// table through a Backend.
package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/erazemk/inventario/internal/model"
)

// Backend is a full-snapshot table store. Write replaces everything Read
// would return; there is no row-level access.
type Backend interface {
	Read(ctx context.Context) ([]model.Item, error)
	Write(ctx context.Context, items []model.Item) error
}

// Backends resolves the Backend that serves a session.
type Backends interface {
	For(ctx context.Context, sessionID string) (Backend, error)
}

// Shared serves every session from the same Backend.
type Shared struct {
	Backend Backend
}

// For implements Backends.
func (s Shared) For(_ context.Context, _ string) (Backend, error) {
	return s.Backend, nil
}

// Store loads and persists the item table.
type Store struct {
	backend Backend
}

// NewStore wraps a Backend.
func NewStore(b Backend) *Store {
	return &Store{backend: b}
}

// Load returns the full ordered item table.
func (s *Store) Load(ctx context.Context) ([]model.Item, error) {
	items, err := s.backend.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: loading items: %w", model.ErrBackingStoreUnavailable, err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Persist replaces the stored table with items. The write is not read back.
func (s *Store) Persist(ctx context.Context, items []model.Item) error {
	if err := s.backend.Write(ctx, items); err != nil {
		return fmt.Errorf("%w: persisting items: %w", model.ErrBackingStoreUnavailable, err)
	}
	return nil
}

// Filter returns the items stored under key, in table order.
func Filter(items []model.Item, key model.LocationKey) []model.Item {
	out := []model.Item{}
	for _, item := range items {
		if key.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

// Append validates item and returns a copy of items with it added at the end.
// The new item gets ID len(items)+1 and status Stored. Duplicate names and
// locations are allowed.
func Append(items []model.Item, item model.Item) ([]model.Item, error) {
	if strings.TrimSpace(item.Name) == "" {
		return items, fmt.Errorf("%w: name required", model.ErrValidation)
	}

	item.ID = int64(len(items)) + 1
	item.Status = model.ItemStatusStored

	out := make([]model.Item, len(items), len(items)+1)
	copy(out, items)
	return append(out, item), nil
}

// UpdateStatus returns a copy of items with the first item matching id set to
// status. Unknown ids and disallowed transitions leave items unchanged; the
// bool reports whether anything changed.
func UpdateStatus(items []model.Item, id int64, status string) ([]model.Item, bool) {
	for i, item := range items {
		if item.ID != id {
			continue
		}
		if item.Status == status || !model.CanTransition(item.Status, status) {
			return items, false
		}
		out := make([]model.Item, len(items))
		copy(out, items)
		out[i].Status = status
		return out, true
	}
	return items, false
}

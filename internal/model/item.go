package model

import "time"

// Item is one tracked physical object and where it was put away.
type Item struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Location  string     `json:"location"`
	Furniture string     `json:"furniture,omitempty"`
	Container string     `json:"container"`
	Status    string     `json:"status"`
	PhotoURL  string     `json:"photo_url,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Item statuses.
const (
	ItemStatusStored  = "Stored"
	ItemStatusRemoved = "Removed"
)

// ValidStatus reports whether status is a known item status.
func ValidStatus(status string) bool {
	return status == ItemStatusStored || status == ItemStatusRemoved
}

// CanTransition reports whether an item may move from one status to another.
// Items only ever leave storage; re-setting the current status is allowed and
// changes nothing.
func CanTransition(from, to string) bool {
	if !ValidStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	return from == ItemStatusStored && to == ItemStatusRemoved
}

// LocationKey scopes which items are visible. An empty Furniture means the
// furniture level is not modeled and matches anything.
type LocationKey struct {
	Location  string `json:"location"`
	Furniture string `json:"furniture,omitempty"`
	Container string `json:"container"`
}

// Matches reports whether the item sits at the key's location.
func (k LocationKey) Matches(item Item) bool {
	if item.Location != k.Location || item.Container != k.Container {
		return false
	}
	return k.Furniture == "" || item.Furniture == k.Furniture
}

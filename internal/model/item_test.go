package model

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{ItemStatusStored, ItemStatusRemoved, true},
		{ItemStatusStored, ItemStatusStored, true},
		{ItemStatusRemoved, ItemStatusRemoved, true},
		// No way back into storage.
		{ItemStatusRemoved, ItemStatusStored, false},
		// Unknown statuses fail-closed.
		{ItemStatusStored, "Lost", false},
		{ItemStatusStored, "", false},
		{"", ItemStatusRemoved, false},
	}

	for _, tt := range tests {
		got := CanTransition(tt.from, tt.to)
		if got != tt.expected {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
		}
	}
}

func TestLocationKeyMatches(t *testing.T) {
	item := Item{Location: "Garage", Furniture: "Shelf A", Container: "Box1"}

	tests := []struct {
		key      LocationKey
		expected bool
	}{
		{LocationKey{Location: "Garage", Container: "Box1"}, true},
		{LocationKey{Location: "Garage", Furniture: "Shelf A", Container: "Box1"}, true},
		{LocationKey{Location: "Garage", Furniture: "Floor", Container: "Box1"}, false},
		{LocationKey{Location: "Garage", Container: "Box2"}, false},
		{LocationKey{Location: "Attic", Container: "Box1"}, false},
		{LocationKey{}, false},
	}

	for _, tt := range tests {
		got := tt.key.Matches(item)
		if got != tt.expected {
			t.Errorf("%+v.Matches = %v, want %v", tt.key, got, tt.expected)
		}
	}
}

package model

import "slices"

// Location is one selectable entry of the location catalog.
type Location struct {
	ID   int64  `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// Location kinds, from the outermost to the innermost level.
const (
	LocationKindLocation  = "location"
	LocationKindFurniture = "furniture"
	LocationKindContainer = "container"
)

// ValidLocationKind reports whether kind is a known catalog level.
func ValidLocationKind(kind string) bool {
	switch kind {
	case LocationKindLocation, LocationKindFurniture, LocationKindContainer:
		return true
	}
	return false
}

// Catalog lists the selectable names for each level, in display order.
type Catalog struct {
	Locations  []string `json:"locations"`
	Furniture  []string `json:"furniture"`
	Containers []string `json:"containers"`
}

// DefaultCatalog is seeded into a fresh database.
func DefaultCatalog() Catalog {
	return Catalog{
		Locations:  []string{"Nave", "Trastero", "Garaje"},
		Furniture:  []string{"Estantería A", "Armario 1", "Suelo"},
		Containers: []string{"Caja 1", "Caja 2", "Sin Caja"},
	}
}

// NewCatalog groups catalog entries by kind, keeping their order.
func NewCatalog(locations []Location) Catalog {
	var c Catalog
	for _, l := range locations {
		switch l.Kind {
		case LocationKindLocation:
			c.Locations = append(c.Locations, l.Name)
		case LocationKindFurniture:
			c.Furniture = append(c.Furniture, l.Name)
		case LocationKindContainer:
			c.Containers = append(c.Containers, l.Name)
		}
	}
	return c
}

// Contains reports whether every set field of key is listed in the catalog.
// An empty catalog level accepts any value.
func (c Catalog) Contains(key LocationKey) bool {
	if !listed(c.Locations, key.Location) || !listed(c.Containers, key.Container) {
		return false
	}
	return key.Furniture == "" || listed(c.Furniture, key.Furniture)
}

// DefaultKey returns the first location and container. Furniture is left
// empty so the key matches items on any furniture.
func (c Catalog) DefaultKey() LocationKey {
	var k LocationKey
	if len(c.Locations) > 0 {
		k.Location = c.Locations[0]
	}
	if len(c.Containers) > 0 {
		k.Container = c.Containers[0]
	}
	return k
}

// DefaultFurniture returns the first furniture entry, or "" if there is none.
func (c Catalog) DefaultFurniture() string {
	if len(c.Furniture) == 0 {
		return ""
	}
	return c.Furniture[0]
}

func listed(names []string, name string) bool {
	return len(names) == 0 || slices.Contains(names, name)
}

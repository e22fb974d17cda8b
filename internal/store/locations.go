package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/inventario/internal/model"
)

// CreateLocation adds a name to one level of the location catalog. It is
// placed after the existing entries of that level.
func CreateLocation(ctx context.Context, db *sql.DB, kind, name string) (*model.Location, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO locations (kind, name, position)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM locations WHERE kind = ?))`,
		kind, name, kind,
	)
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting location id: %w", err)
	}

	return GetLocation(ctx, db, id)
}

// GetLocation returns a catalog entry by ID.
func GetLocation(ctx context.Context, db *sql.DB, id int64) (*model.Location, error) {
	l := &model.Location{}
	err := db.QueryRowContext(ctx,
		`SELECT id, kind, name FROM locations WHERE id = ?`, id,
	).Scan(&l.ID, &l.Kind, &l.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	return l, nil
}

// ListLocations returns catalog entries in display order, optionally
// restricted to one kind.
func ListLocations(ctx context.Context, db *sql.DB, kind string) ([]model.Location, error) {
	var rows *sql.Rows
	var err error

	if kind != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT id, kind, name FROM locations WHERE kind = ? ORDER BY position, id`, kind,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT id, kind, name FROM locations ORDER BY kind, position, id`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Kind, &l.Name); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// DeleteLocation removes a catalog entry. Items recorded under that name are
// left as they are.
func DeleteLocation(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}
	return nil
}

// SeedLocations fills an empty catalog with c. A catalog that already has
// entries is left untouched.
func SeedLocations(ctx context.Context, db *sql.DB, c model.Catalog) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&count); err != nil {
		return fmt.Errorf("counting locations: %w", err)
	}
	if count > 0 {
		return nil
	}

	levels := []struct {
		kind  string
		names []string
	}{
		{model.LocationKindLocation, c.Locations},
		{model.LocationKindFurniture, c.Furniture},
		{model.LocationKindContainer, c.Containers},
	}
	for _, level := range levels {
		for _, name := range level.names {
			if _, err := CreateLocation(ctx, db, level.kind, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Catalog reads the location catalog from a database.
type Catalog struct {
	DB *sql.DB
}

// Catalog returns all levels of the catalog.
func (c Catalog) Catalog(ctx context.Context) (model.Catalog, error) {
	locations, err := ListLocations(ctx, c.DB, "")
	if err != nil {
		return model.Catalog{}, err
	}
	return model.NewCatalog(locations), nil
}

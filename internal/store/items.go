package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/inventario/internal/model"
)

// ReadItems returns the whole item table in stored order.
func ReadItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, location, furniture, container, status, photo_url, created_at
		 FROM items ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("reading items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Location, &item.Furniture, &item.Container,
			&item.Status, &item.PhotoURL, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// WriteItems replaces the whole item table with items in one transaction.
func WriteItems(ctx context.Context, db *sql.DB, items []model.Item) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO items (position, id, name, location, furniture, container, status, photo_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("preparing item insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		status := item.Status
		if status == "" {
			status = model.ItemStatusStored
		}
		if _, err := stmt.ExecContext(ctx, i+1, item.ID, item.Name, item.Location, item.Furniture,
			item.Container, status, item.PhotoURL, item.CreatedAt); err != nil {
			return fmt.Errorf("writing item %d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing items: %w", err)
	}
	return nil
}

// Table is the item table of a SQLite database.
type Table struct {
	DB *sql.DB
}

// Read implements inventory.Backend.
func (t *Table) Read(ctx context.Context) ([]model.Item, error) {
	return ReadItems(ctx, t.DB)
}

// Write implements inventory.Backend.
func (t *Table) Write(ctx context.Context, items []model.Item) error {
	return WriteItems(ctx, t.DB, items)
}

// Package sheet stores the item table in a CSV spreadsheet file. The whole
// file is read on every load and rewritten on every persist.
package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/inventario/internal/model"
)

// Header is the column layout written to the file.
var Header = []string{"ID", "Name", "Location", "Furniture", "Container", "Status", "PhotoURL", "CreatedAt"}

// aliases maps accepted header names to the canonical column. The Spanish
// names come from older sheets.
var aliases = map[string]string{
	"id":         "ID",
	"name":       "Name",
	"nombre":     "Name",
	"location":   "Location",
	"ubicación":  "Location",
	"ubicacion":  "Location",
	"furniture":  "Furniture",
	"mueble":     "Furniture",
	"container":  "Container",
	"contenedor": "Container",
	"status":     "Status",
	"estado":     "Status",
	"photourl":   "PhotoURL",
	"foto_url":   "PhotoURL",
	"createdat":  "CreatedAt",
	"creado":     "CreatedAt",
}

// statusAliases maps legacy status values to item statuses.
var statusAliases = map[string]string{
	"":         model.ItemStatusStored,
	"guardado": model.ItemStatusStored,
	"stored":   model.ItemStatusStored,
	"fuera":    model.ItemStatusRemoved,
	"removed":  model.ItemStatusRemoved,
}

// Sheet is a CSV file holding the item table.
type Sheet struct {
	Path string
}

// New returns a Sheet backed by the file at path.
func New(path string) *Sheet {
	return &Sheet{Path: path}
}

// Read implements inventory.Backend. A missing file is an empty table.
func (s *Sheet) Read(_ context.Context) ([]model.Item, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening sheet: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Write implements inventory.Backend. The table is written to a temporary
// file that then replaces the sheet.
func (s *Sheet) Write(_ context.Context, items []model.Item) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating sheet directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sheet-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := Encode(tmp, items); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("replacing sheet: %w", err)
	}
	return nil
}

// Encode writes items as CSV with Header as the first row.
func Encode(w io.Writer, items []model.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, item := range items {
		var created string
		if item.CreatedAt != nil {
			created = item.CreatedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			strconv.FormatInt(item.ID, 10),
			item.Name,
			item.Location,
			item.Furniture,
			item.Container,
			item.Status,
			item.PhotoURL,
			created,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing item %d: %w", item.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}
	return nil
}

// Decode reads items from CSV. Columns are matched by header name, in any
// order; unknown columns are ignored.
func Decode(r io.Reader) ([]model.Item, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return []model.Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := aliases[name]; ok {
			cols[canonical] = i
		}
	}
	for _, required := range []string{"Name", "Location", "Container"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("sheet has no %s column", required)
		}
	}

	items := []model.Item{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		item, err := decodeRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeRow(row []string, cols map[string]int) (model.Item, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	item := model.Item{
		Name:      field("Name"),
		Location:  field("Location"),
		Furniture: field("Furniture"),
		Container: field("Container"),
		PhotoURL:  field("PhotoURL"),
	}

	if id := field("ID"); id != "" {
		// Spreadsheets tend to turn integer columns into "3.0".
		n, err := strconv.ParseFloat(id, 64)
		if err != nil || n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return item, fmt.Errorf("invalid id %q", id)
		}
		item.ID = int64(n)
	}

	status, ok := statusAliases[strings.ToLower(field("Status"))]
	if !ok {
		return item, fmt.Errorf("invalid status %q", field("Status"))
	}
	item.Status = status

	if created := field("CreatedAt"); created != "" {
		ts, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return item, fmt.Errorf("invalid created time %q", created)
		}
		item.CreatedAt = &ts
	}
	return item, nil
}

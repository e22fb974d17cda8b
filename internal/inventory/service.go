package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/inventario/internal/model"
)

// Uploader turns raw photo bytes into a URL-addressable resource.
type Uploader interface {
	Upload(ctx context.Context, data []byte, mime, name string) (string, error)
}

// CatalogSource supplies the selectable location names.
type CatalogSource interface {
	Catalog(ctx context.Context) (model.Catalog, error)
}

// Photo is an already processed image waiting to be uploaded.
type Photo struct {
	Data []byte
	MIME string
}

// NewItem is the input of an add action.
type NewItem struct {
	Name  string
	Key   model.LocationKey
	Photo *Photo
}

// Options configure a Service.
type Options struct {
	// Uploader receives photos. Without one, photos are rejected.
	Uploader Uploader
	// Catalog, when set, restricts new items to listed locations.
	Catalog CatalogSource
	// RequirePhoto rejects new items without a photo.
	RequirePhoto bool
	// Now stamps CreatedAt. Defaults to time.Now.
	Now func() time.Time
}

// Service runs one load, mutate, persist cycle per user action.
//
// Cycles issued through the same Service are serialized. Separate processes
// sharing a backend still race: the last full-table write wins.
type Service struct {
	store *Store
	opts  Options
	mu    sync.Mutex
}

// NewService creates a Service over a backend.
func NewService(b Backend, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{store: NewStore(b), opts: opts}
}

// View returns the items stored under key.
func (s *Service) View(ctx context.Context, key model.LocationKey) ([]model.Item, error) {
	items, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(items, key), nil
}

// All returns the whole table.
func (s *Service) All(ctx context.Context) ([]model.Item, error) {
	return s.store.Load(ctx)
}

// Add records a new item under the given key, uploading its photo first.
func (s *Service) Add(ctx context.Context, in NewItem) (*model.Item, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	var photoURL string
	if in.Photo != nil {
		photoURL, err = s.opts.Uploader.Upload(ctx, in.Photo.Data, in.Photo.MIME, strings.TrimSpace(in.Name)+".jpg")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrUploadFailed, err)
		}
	}

	created := s.opts.Now().UTC()
	items, err = Append(items, model.Item{
		Name:      strings.TrimSpace(in.Name),
		Location:  in.Key.Location,
		Furniture: in.Key.Furniture,
		Container: in.Key.Container,
		PhotoURL:  photoURL,
		CreatedAt: &created,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Persist(ctx, items); err != nil {
		return nil, err
	}

	item := items[len(items)-1]
	slog.Info("item added", "id", item.ID, "name", item.Name, "location", item.Location, "container", item.Container)
	return &item, nil
}

// Remove marks the item with id as taken out. It reports false, without an
// error, when no stored item has that id.
func (s *Service) Remove(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}

	items, changed := UpdateStatus(items, id, model.ItemStatusRemoved)
	if !changed {
		slog.Info("remove matched no stored item", "id", id)
		return false, nil
	}

	if err := s.store.Persist(ctx, items); err != nil {
		return false, err
	}

	slog.Info("item removed", "id", id)
	return true, nil
}

func (s *Service) validate(ctx context.Context, in NewItem) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name required", model.ErrValidation)
	}
	if in.Key.Location == "" || in.Key.Container == "" {
		return fmt.Errorf("%w: location and container required", model.ErrValidation)
	}
	if in.Photo == nil && s.opts.RequirePhoto {
		return fmt.Errorf("%w: photo required", model.ErrValidation)
	}
	if in.Photo != nil && s.opts.Uploader == nil {
		return fmt.Errorf("%w: photos are not accepted", model.ErrValidation)
	}

	if s.opts.Catalog != nil {
		catalog, err := s.opts.Catalog.Catalog(ctx)
		if err != nil {
			return fmt.Errorf("%w: loading locations: %w", model.ErrBackingStoreUnavailable, err)
		}
		if !catalog.Contains(in.Key) {
			return fmt.Errorf("%w: unknown location", model.ErrValidation)
		}
	}
	return nil
}

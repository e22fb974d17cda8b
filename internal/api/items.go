package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/inventario/internal/imaging"
	"github.com/erazemk/inventario/internal/inventory"
	"github.com/erazemk/inventario/internal/model"
)

// maxFormSize bounds an add request: the photo plus a few short fields.
const maxFormSize = imaging.MaxInputSize + 1<<20

// ItemsHandler handles the inventory endpoints of a session.
type ItemsHandler struct {
	Services *inventory.Services
}

type itemsResponse struct {
	Key   model.LocationKey `json:"key"`
	Items []model.Item      `json:"items"`
}

// keyFromValues reads a location key from query or form values.
func keyFromValues(get func(string) string) model.LocationKey {
	return model.LocationKey{
		Location:  strings.TrimSpace(get("location")),
		Furniture: strings.TrimSpace(get("furniture")),
		Container: strings.TrimSpace(get("container")),
	}
}

func (h *ItemsHandler) service(w http.ResponseWriter, r *http.Request) *inventory.Service {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return nil
	}
	svc, err := h.Services.For(r.Context(), claims.SessionID())
	if err != nil {
		serviceError(w, "open inventory", err)
		return nil
	}
	return svc
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	key := keyFromValues(r.URL.Query().Get)
	if key.Location == "" || key.Container == "" {
		jsonError(w, http.StatusBadRequest, "location and container required")
		return
	}

	svc := h.service(w, r)
	if svc == nil {
		return
	}

	items, err := svc.View(r.Context(), key)
	if err != nil {
		serviceError(w, "list items", err)
		return
	}
	jsonResponse(w, http.StatusOK, itemsResponse{Key: key, Items: items})
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	in := inventory.NewItem{
		Name: r.FormValue("name"),
		Key:  keyFromValues(r.FormValue),
	}

	photo, err := readPhoto(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Photo = photo

	svc := h.service(w, r)
	if svc == nil {
		return
	}

	item, err := svc.Add(r.Context(), in)
	if err != nil {
		serviceError(w, "add item", err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Remove handles POST /api/items/{id}/remove.
func (h *ItemsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	svc := h.service(w, r)
	if svc == nil {
		return
	}

	removed, err := svc.Remove(r.Context(), id)
	if err != nil {
		serviceError(w, "remove item", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"removed": removed})
}

// readPhoto processes the optional "photo" form file. A missing file is not
// an error.
func readPhoto(r *http.Request) (*inventory.Photo, error) {
	file, _, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("invalid photo upload")
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		return nil, err
	}
	return &inventory.Photo{Data: result.Data, MIME: result.MIME}, nil
}

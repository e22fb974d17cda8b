package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/store"
)

// LocationsHandler manages the location catalog.
type LocationsHandler struct {
	DB *sql.DB
}

type createLocationRequest struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// List handles GET /api/locations.
func (h *LocationsHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind != "" && !model.ValidLocationKind(kind) {
		jsonError(w, http.StatusBadRequest, "invalid kind")
		return
	}

	locations, err := store.ListLocations(r.Context(), h.DB, kind)
	if err != nil {
		slog.Error("failed to list locations", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list locations")
		return
	}
	if locations == nil {
		locations = []model.Location{}
	}
	jsonResponse(w, http.StatusOK, locations)
}

// Create handles POST /api/locations.
func (h *LocationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}
	if !model.ValidLocationKind(req.Kind) {
		jsonError(w, http.StatusBadRequest, "kind must be location, furniture, or container")
		return
	}

	location, err := store.CreateLocation(r.Context(), h.DB, req.Kind, req.Name)
	if err != nil {
		slog.Error("failed to create location", "error", err)
		jsonError(w, http.StatusConflict, "location already exists")
		return
	}
	jsonResponse(w, http.StatusCreated, location)
}

// Delete handles DELETE /api/locations/{id}.
func (h *LocationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	location, err := store.GetLocation(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get location")
		return
	}
	if location == nil {
		jsonError(w, http.StatusNotFound, "location not found")
		return
	}

	if err := store.DeleteLocation(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete location")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "location deleted"})
}

package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/erazemk/inventario/internal/imaging"
	"github.com/erazemk/inventario/internal/inventory"
	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/session"
	"github.com/erazemk/inventario/internal/store"
)

const maxFormSize = imaging.MaxInputSize + 1<<20

var flashMessages = map[string]string{
	"added":     "Artículo guardado.",
	"removed":   "Artículo marcado como fuera.",
	"unchanged": "No había ningún artículo guardado con ese ID.",
}

type indexData struct {
	PageData
	Catalog model.Catalog
	Key     model.LocationKey
	Items   []model.Item
	// Name keeps the submitted name after a failed add.
	Name string
	// AddFurniture preselects the furniture of the add form.
	AddFurniture string
}

func keyFromValues(get func(string) string) model.LocationKey {
	return model.LocationKey{
		Location:  strings.TrimSpace(get("location")),
		Furniture: strings.TrimSpace(get("furniture")),
		Container: strings.TrimSpace(get("container")),
	}
}

// indexURL returns the address of the page showing key, with an optional
// flash message.
func indexURL(key model.LocationKey, flash string) string {
	v := url.Values{}
	v.Set("location", key.Location)
	v.Set("furniture", key.Furniture)
	v.Set("container", key.Container)
	if flash != "" {
		v.Set("ok", flash)
	}
	return "/?" + v.Encode()
}

// errorMessage turns an inventory error into a status and a message for the
// page. Failures other than validation are logged.
func errorMessage(action string, err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrSessionEnded):
		return http.StatusUnauthorized, "La sesión ha terminado. Vuelve a entrar."
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, "Datos no válidos: " + err.Error()
	case errors.Is(err, model.ErrUploadFailed):
		slog.Error("photo upload failed", "action", action, "error", err)
		return http.StatusBadGateway, "No se pudo subir la foto. El artículo no se ha guardado."
	case errors.Is(err, model.ErrBackingStoreUnavailable):
		slog.Error("backing store unavailable", "action", action, "error", err)
		return http.StatusServiceUnavailable, "No se pudo acceder al inventario. Inténtalo de nuevo."
	default:
		slog.Error("request failed", "action", action, "error", err)
		return http.StatusInternalServerError, "Error inesperado."
	}
}

// service resolves the inventory of the current session.
func (s *Server) service(r *http.Request) (*inventory.Service, error) {
	claims := GetWebClaims(r.Context())
	if claims == nil {
		return nil, errors.New("no session")
	}
	return s.Services.For(r.Context(), claims.SessionID())
}

// render loads the catalog and, when key is complete, the items stored
// under it, then renders the index page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data *indexData) {
	data.Title = "Inventario"
	data.Authenticated = true

	catalog, err := store.Catalog{DB: s.DB}.Catalog(r.Context())
	if err != nil {
		slog.Error("failed to load locations", "error", err)
		data.Error = "No se pudieron cargar las ubicaciones."
	}
	data.Catalog = catalog
	if data.Key == (model.LocationKey{}) {
		data.Key = catalog.DefaultKey()
	}
	data.AddFurniture = data.Key.Furniture
	if data.AddFurniture == "" {
		data.AddFurniture = catalog.DefaultFurniture()
	}

	if data.Key.Location != "" && data.Key.Container != "" {
		svc, err := s.service(r)
		if err == nil {
			data.Items, err = svc.View(r.Context(), data.Key)
		}
		if err != nil {
			st, msg := errorMessage("list items", err)
			if status == http.StatusOK {
				status = st
			}
			if data.Error == "" {
				data.Error = msg
			}
		}
	}

	s.Templates.Render(w, status, "index.html", data)
}

// IndexPage handles GET /.
func (s *Server) IndexPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.render(w, r, http.StatusOK, &indexData{
		Key:      keyFromValues(q.Get),
		PageData: PageData{Success: flashMessages[q.Get("ok")]},
	})
}

// ItemCreateSubmit handles POST /items.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		s.render(w, r, http.StatusBadRequest, &indexData{
			PageData: PageData{Error: "La foto es demasiado grande o el formulario no es válido."},
		})
		return
	}

	in := inventory.NewItem{
		Name: r.FormValue("name"),
		Key:  keyFromValues(r.FormValue),
	}
	failed := func(status int, msg string) {
		s.render(w, r, status, &indexData{
			Key:      in.Key,
			Name:     in.Name,
			PageData: PageData{Error: msg},
		})
	}

	file, _, err := r.FormFile("photo")
	switch {
	case err == nil:
		defer file.Close()
		result, err := imaging.Process(file)
		if err != nil {
			failed(http.StatusBadRequest, "Foto no válida: "+err.Error())
			return
		}
		in.Photo = &inventory.Photo{Data: result.Data, MIME: result.MIME}
	case !errors.Is(err, http.ErrMissingFile):
		failed(http.StatusBadRequest, "Foto no válida.")
		return
	}

	svc, err := s.service(r)
	if err == nil {
		_, err = svc.Add(r.Context(), in)
	}
	if err != nil {
		failed(errorMessage("add item", err))
		return
	}

	http.Redirect(w, r, indexURL(in.Key, "added"), http.StatusSeeOther)
}

// ItemRemoveSubmit handles POST /items/{id}/remove.
func (s *Server) ItemRemoveSubmit(w http.ResponseWriter, r *http.Request) {
	key := keyFromValues(r.FormValue)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	svc, err := s.service(r)
	var removed bool
	if err == nil {
		removed, err = svc.Remove(r.Context(), id)
	}
	if err != nil {
		status, msg := errorMessage("remove item", err)
		s.render(w, r, status, &indexData{Key: key, PageData: PageData{Error: msg}})
		return
	}

	flash := "removed"
	if !removed {
		flash = "unchanged"
	}
	http.Redirect(w, r, indexURL(key, flash), http.StatusSeeOther)
}

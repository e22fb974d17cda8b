package web

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/inventario/internal/inventory"
	"github.com/erazemk/inventario/internal/store"
	webembed "github.com/erazemk/inventario/web"
)

// Deps are the collaborators the page handlers need.
type Deps struct {
	DB         *sql.DB
	JWTSecret  string
	Services   *inventory.Services
	SessionTTL time.Duration
	// OnLogout, if set, is called with the ID of every ended session.
	OnLogout func(sessionID string)
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(d Deps) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:         d.DB,
		Templates:  templates,
		JWTSecret:  d.JWTSecret,
		Services:   d.Services,
		SessionTTL: d.SessionTTL,
		OnLogout:   d.OnLogout,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(d.JWTSecret, d.DB)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.IndexPage)))
	mux.Handle("POST /items", cookieAuth(http.HandlerFunc(s.ItemCreateSubmit)))
	mux.Handle("POST /items/{id}/remove", cookieAuth(http.HandlerFunc(s.ItemRemoveSubmit)))
	mux.Handle("GET /photos/{id}", cookieAuth(http.HandlerFunc(s.PhotoGet)))

	return mux, nil
}

// PhotoGet handles GET /photos/{id} (web route, cookie-authenticated).
func (s *Server) PhotoGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetPhoto(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get photo", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write photo response", "error", err)
	}
}

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/inventario/internal/inventory"
)

// Deps are the collaborators the API handlers need.
type Deps struct {
	DB        *sql.DB
	JWTSecret string
	Services  *inventory.Services
	// SessionTTL is the lifetime of issued tokens.
	SessionTTL time.Duration
	// OnLogout, if set, is called with the ID of every ended session.
	OnLogout func(sessionID string)
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d.DB, JWTSecret: d.JWTSecret, TTL: d.SessionTTL, OnLogout: d.OnLogout}
	itemsHandler := &ItemsHandler{Services: d.Services}
	locationsHandler := &LocationsHandler{DB: d.DB}
	photosHandler := &PhotosHandler{DB: d.DB}

	authMW := AuthMiddleware(d.JWTSecret, d.DB)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	mux.Handle("GET /api/locations", authMW(http.HandlerFunc(locationsHandler.List)))
	mux.Handle("POST /api/locations", authMW(http.HandlerFunc(locationsHandler.Create)))
	mux.Handle("DELETE /api/locations/{id}", authMW(http.HandlerFunc(locationsHandler.Delete)))

	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("POST /api/items/{id}/remove", authMW(http.HandlerFunc(itemsHandler.Remove)))

	mux.Handle("GET /api/photos/{id}", authMW(http.HandlerFunc(photosHandler.Get)))

	return mux
}

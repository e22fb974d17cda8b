package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/inventario/internal/auth"
	"github.com/erazemk/inventario/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusOK, "login.html", &PageData{Title: "Acceso"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	password := r.FormValue("password")
	if password == "" {
		s.Templates.Render(w, http.StatusBadRequest, "login.html", &PageData{
			Title: "Acceso",
			Error: "Introduce la contraseña.",
		})
		return
	}

	ok, err := auth.CheckPassword(r.Context(), s.DB, password)
	if err != nil {
		slog.Error("failed to check password", "error", err)
	}
	if !ok {
		slog.Warn("login failed", "remote", r.RemoteAddr)
		s.Templates.Render(w, http.StatusUnauthorized, "login.html", &PageData{
			Title: "Acceso",
			Error: "Contraseña incorrecta.",
		})
		return
	}

	token, claims, err := auth.NewSession(s.JWTSecret, s.SessionTTL)
	if err != nil {
		slog.Error("failed to create session", "error", err)
		s.Templates.Render(w, http.StatusInternalServerError, "login.html", &PageData{
			Title: "Acceso",
			Error: "Error al iniciar sesión.",
		})
		return
	}

	slog.Info("session opened", "session", claims.SessionID(), "remote", r.RemoteAddr)
	setAuthCookie(w, token, claims.ExpiresAt.Time)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout. The session behind a valid cookie is revoked
// and its in-memory inventory discarded.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(cookieName); err == nil {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil {
			if err := store.RevokeSession(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
				slog.Error("failed to revoke session", "error", err)
			}
			if s.OnLogout != nil {
				s.OnLogout(claims.SessionID())
			}
			slog.Info("session closed", "session", claims.SessionID())
		}
	}

	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

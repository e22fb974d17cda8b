package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/inventario/internal/auth"
	"github.com/erazemk/inventario/internal/store"
)

// AuthHandler handles session endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
	TTL       time.Duration
	OnLogout  func(sessionID string)
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		jsonError(w, http.StatusBadRequest, "password required")
		return
	}

	ok, err := auth.CheckPassword(r.Context(), h.DB, req.Password)
	if err != nil {
		slog.Error("failed to check password", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		slog.Warn("login failed", "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, claims, err := auth.NewSession(h.JWTSecret, h.TTL)
	if err != nil {
		slog.Error("failed to create session", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("session opened", "session", claims.SessionID(), "remote", r.RemoteAddr)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeSession(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		slog.Error("failed to revoke session", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to log out")
		return
	}
	if h.OnLogout != nil {
		h.OnLogout(claims.SessionID())
	}

	slog.Info("session closed", "session", claims.SessionID())
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := auth.CheckPassword(r.Context(), h.DB, req.CurrentPassword)
	if err != nil {
		slog.Error("failed to check password", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	if err := auth.SetPassword(r.Context(), h.DB, req.NewPassword); err != nil {
		slog.Error("failed to store password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	slog.Info("access password changed")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

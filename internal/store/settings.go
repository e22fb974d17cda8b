package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// Setting keys.
const (
	settingJWTSecret    = "jwt_secret"
	settingPasswordHash = "access_password_hash"
)

// GetSetting returns a setting value, or "" if it was never set.
func GetSetting(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting stores a setting value, replacing any previous one.
func SetSetting(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// GetJWTSecret retrieves the token signing secret, generating and storing
// one on first use. INSERT OR IGNORE followed by a re-read keeps concurrent
// first starts on the same secret.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		settingJWTSecret, hex.EncodeToString(buf),
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt secret: %w", err)
	}

	secret, err := GetSetting(ctx, db, settingJWTSecret)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", fmt.Errorf("jwt secret missing after insert")
	}
	return secret, nil
}

// GetPasswordHash returns the bcrypt hash of the access password, or "" if
// none has been set yet.
func GetPasswordHash(ctx context.Context, db *sql.DB) (string, error) {
	return GetSetting(ctx, db, settingPasswordHash)
}

// SetPasswordHash stores the bcrypt hash of the access password.
func SetPasswordHash(ctx context.Context, db *sql.DB, hash string) error {
	return SetSetting(ctx, db, settingPasswordHash, hash)
}

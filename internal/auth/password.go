package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/inventario/internal/store"
)

// MinPasswordLength is the shortest accepted access password.
const MinPasswordLength = 8

// ValidatePassword checks a new access password.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// GeneratePassword creates a random password of the given length.
func GeneratePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

// SetPassword hashes password and stores it as the access password.
func SetPassword(ctx context.Context, db *sql.DB, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return store.SetPasswordHash(ctx, db, string(hash))
}

// EnsurePassword generates and stores an access password if none exists yet.
// It returns the new password, or "" when one was already set.
func EnsurePassword(ctx context.Context, db *sql.DB) (string, error) {
	hash, err := store.GetPasswordHash(ctx, db)
	if err != nil {
		return "", err
	}
	if hash != "" {
		return "", nil
	}

	password, err := GeneratePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	if err := SetPassword(ctx, db, password); err != nil {
		return "", err
	}
	return password, nil
}

// CheckPassword reports whether password matches the stored access password.
// Without a stored password nothing matches.
func CheckPassword(ctx context.Context, db *sql.DB, password string) (bool, error) {
	hash, err := store.GetPasswordHash(ctx, db)
	if err != nil {
		return false, err
	}
	if hash == "" {
		return false, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("comparing password: %w", err)
	}
	return true, nil
}

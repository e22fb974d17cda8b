package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RevokeSession records that the session token with the given JTI must no
// longer be accepted. Revoking twice is harmless.
func RevokeSession(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// IsSessionRevoked reports whether the session token with the given JTI was revoked.
func IsSessionRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking session revocation: %w", err)
	}
	return count > 0, nil
}

// PurgeRevocations deletes revocations whose tokens expired before now and
// returns how many were removed.
func PurgeRevocations(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("purging revocations: %w", err)
	}
	return result.RowsAffected()
}

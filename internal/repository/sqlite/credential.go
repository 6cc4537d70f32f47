package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/nadhifra/portofolio-api/internal/apperror"
	"github.com/nadhifra/portofolio-api/internal/model"
	"github.com/nadhifra/portofolio-api/internal/repository"
)

// compile-time check that *DB implements repository.CredentialRepository
var _ repository.CredentialRepository = (*DB)(nil)

// CreateCredential inserts a local email/password account. A duplicate
// email surfaces as Conflict, same shape as a duplicate profile.
func (db *DB) CreateCredential(ctx context.Context, cred *model.Credential) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM credentials WHERE email = ?`, cred.Email,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up credential by email: %w", err)
	}
	if existingID != "" {
		return apperror.Conflict("an account already exists for this email")
	}

	cred.ID = xid.New().String()
	cred.CreatedAt = time.Now()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO credentials (id, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?)`,
		cred.ID,
		cred.Email,
		cred.PasswordHash,
		cred.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("an account already exists for this email")
		}
		return fmt.Errorf("sqlite: inserting credential: %w", err)
	}

	return nil
}

// GetCredentialByEmail retrieves a local account by email.
// Returns apperror.ErrNotFound for unknown emails.
func (db *DB) GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	var c model.Credential

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at
		 FROM credentials WHERE email = ?`,
		email,
	).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("credential", email)
		}
		return nil, fmt.Errorf("sqlite: getting credential for %s: %w", email, err)
	}

	return &c, nil
}

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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, subject_id, name, email, gender, address,
	study_program, profile_picture, role, created_at, updated_at`

// CreateUser inserts a new profile.
//
// The subject id is checked first so that "this identity already has a
// profile" surfaces as a Conflict the handler can map to 409, rather
// than as an opaque UNIQUE constraint failure. The pre-check is not
// atomic with the INSERT, so the UNIQUE indexes are the real guard:
// a constraint failure on the INSERT (concurrent create, or a reused
// email) maps to the same Conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE subject_id = ?`, user.SubjectID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by subject %s: %w", user.SubjectID, err)
	}
	if existingID != "" {
		return apperror.Conflict("a profile already exists for this identity")
	}

	now := time.Now()
	user.ID = xid.New().String()
	if user.Role == "" {
		user.Role = model.DefaultRole
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.SubjectID,
		user.Name,
		user.Email,
		user.Gender,
		user.Address,
		user.StudyProgram,
		user.ProfilePicture,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("a profile already exists for this identity or email")
		}
		return fmt.Errorf("sqlite: inserting user (subject=%s): %w", user.SubjectID, err)
	}

	return nil
}

// GetUserByID retrieves a profile by internal id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserBySubject retrieves a profile by external identity subject.
// Returns apperror.ErrNotFound if the identity has no profile yet.
func (db *DB) GetUserBySubject(ctx context.Context, subjectID string) (*model.User, error) {
	return db.getUser(ctx, `WHERE subject_id = ?`, subjectID)
}

func (db *DB) getUser(ctx context.Context, where string, arg string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users `+where, arg,
	).Scan(
		&u.ID,
		&u.SubjectID,
		&u.Name,
		&u.Email,
		&u.Gender,
		&u.Address,
		&u.StudyProgram,
		&u.ProfilePicture,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", arg)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", arg, err)
	}

	return &u, nil
}

// UpdateUser persists the full row. RowsAffected distinguishes "unknown
// id" from a successful write — no prior SELECT needed.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET name = ?, email = ?, gender = ?, address = ?,
		     study_program = ?, profile_picture = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name,
		user.Email,
		user.Gender,
		user.Address,
		user.StudyProgram,
		user.ProfilePicture,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

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

// compile-time check that *DB implements repository.PortfolioRepository
var _ repository.PortfolioRepository = (*DB)(nil)

// CreatePortfolio inserts a new portfolio entry. The caller has already
// resolved the owner; the FOREIGN KEY rejects a dangling user_id. The
// single INSERT is the whole write — atomic by construction.
func (db *DB) CreatePortfolio(ctx context.Context, portfolio *model.Portfolio) error {
	portfolio.ID = xid.New().String()

	now := time.Now()
	portfolio.CreatedAt = now
	portfolio.UpdatedAt = now
	if portfolio.Date.IsZero() {
		portfolio.Date = now
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO portfolios (id, title, level, category, description,
		                         docs_url, date, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		portfolio.ID,
		portfolio.Title,
		portfolio.Level,
		portfolio.Category,
		portfolio.Description,
		portfolio.DocsURL,
		portfolio.Date,
		portfolio.UserID,
		portfolio.CreatedAt,
		portfolio.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating portfolio: %w", err)
	}

	return nil
}

// GetPortfolioWithOwner returns one record joined with the full owner
// projection (summary fields plus profile picture).
func (db *DB) GetPortfolioWithOwner(ctx context.Context, id string) (*model.PortfolioDetail, error) {
	var d model.PortfolioDetail

	err := db.conn.QueryRowContext(ctx,
		`SELECT p.id, p.title, p.level, p.category, p.description,
		        p.docs_url, p.date, p.user_id, p.created_at, p.updated_at,
		        u.id, u.name, u.email, u.study_program, u.profile_picture
		 FROM portfolios p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.id = ?`,
		id,
	).Scan(
		&d.ID,
		&d.Title,
		&d.Level,
		&d.Category,
		&d.Description,
		&d.DocsURL,
		&d.Date,
		&d.UserID,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.User.ID,
		&d.User.Name,
		&d.User.Email,
		&d.User.StudyProgram,
		&d.User.ProfilePicture,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("portfolio", id)
		}
		return nil, fmt.Errorf("sqlite: getting portfolio %s: %w", id, err)
	}

	return &d, nil
}

// ListPortfolios returns all portfolio entries, newest first, each
// joined with the owner summary projection.
//
// ORDER BY created_at DESC, rowid ASC: rowid increases with insertion,
// so rows sharing a created_at come back in insertion order — a stable
// listing across requests.
func (db *DB) ListPortfolios(ctx context.Context, filter repository.PortfolioFilter) ([]model.PortfolioWithOwner, error) {
	query := `SELECT p.id, p.title, p.level, p.category, p.description,
	                 p.docs_url, p.date, p.user_id, p.created_at, p.updated_at,
	                 u.id, u.name, u.email, u.study_program
	          FROM portfolios p
	          JOIN users u ON u.id = p.user_id`

	var args []any
	if filter.Category != "" {
		query += ` WHERE p.category = ?`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY p.created_at DESC, p.rowid ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing portfolios: %w", err)
	}
	defer rows.Close()

	portfolios := []model.PortfolioWithOwner{}
	for rows.Next() {
		var p model.PortfolioWithOwner
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Level, &p.Category, &p.Description,
			&p.DocsURL, &p.Date, &p.UserID, &p.CreatedAt, &p.UpdatedAt,
			&p.User.ID, &p.User.Name, &p.User.Email, &p.User.StudyProgram,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning portfolio row: %w", err)
		}
		portfolios = append(portfolios, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating portfolios: %w", err)
	}

	return portfolios, nil
}

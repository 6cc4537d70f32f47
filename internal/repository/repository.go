// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage is the only implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/nadhifra/portofolio-api/internal/model"
)

// PortfolioFilter restricts ListWithOwners. The zero value lists
// everything.
type PortfolioFilter struct {
	Category string // "" = all categories
}

// UserRepository stores student profiles. Users are never hard-deleted.
type UserRepository interface {
	// CreateUser inserts a new profile. A profile already linked to the
	// same subject id yields apperror.ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByID returns apperror.ErrNotFound if no profile has that id.
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserBySubject looks a profile up by its external identity subject.
	// Returns apperror.ErrNotFound if the identity has no profile yet.
	GetUserBySubject(ctx context.Context, subjectID string) (*model.User, error)
	// UpdateUser persists the full row. Returns apperror.ErrNotFound if the
	// id is unknown.
	UpdateUser(ctx context.Context, user *model.User) error
}

// PortfolioRepository stores portfolio entries.
type PortfolioRepository interface {
	CreatePortfolio(ctx context.Context, portfolio *model.Portfolio) error
	// GetPortfolioWithOwner returns one record joined with the full owner
	// projection, or apperror.ErrNotFound.
	GetPortfolioWithOwner(ctx context.Context, id string) (*model.PortfolioDetail, error)
	// ListPortfolios returns all records (optionally one category),
	// each joined with the owner summary projection, newest first.
	// Rows sharing a created_at keep insertion order.
	ListPortfolios(ctx context.Context, filter PortfolioFilter) ([]model.PortfolioWithOwner, error)
}

// CredentialRepository stores local email/password accounts.
type CredentialRepository interface {
	// CreateCredential returns apperror.ErrConflict if the email is
	// already registered.
	CreateCredential(ctx context.Context, cred *model.Credential) error
	// GetCredentialByEmail returns apperror.ErrNotFound for unknown
	// emails.
	GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error)
}

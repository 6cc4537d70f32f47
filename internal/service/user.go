// Package service contains the business rules between the HTTP
// handlers and the repositories.
//
// Handlers parse requests; services validate payloads against the
// entity rule tables, resolve identities, and orchestrate repository
// calls; repositories talk SQL. Services return domain errors from
// apperror and never see a status code.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nadhifra/portofolio-api/internal/apperror"
	"github.com/nadhifra/portofolio-api/internal/auth"
	"github.com/nadhifra/portofolio-api/internal/model"
	"github.com/nadhifra/portofolio-api/internal/repository"
	"github.com/nadhifra/portofolio-api/internal/validate"
)

const (
	MinNameLength  = 3
	MaxNameLength  = 100
	MaxFieldLength = 255
)

// createUserRules is the declarative shape of a profile-create payload.
// The interpreter reports every violated field at once.
var createUserRules = []validate.Rule{
	{Field: "name", Kind: validate.String, Required: true, MaxLen: MaxNameLength},
	{Field: "gender", Kind: validate.String, Required: true, Enum: model.Genders},
	{Field: "address", Kind: validate.String, Required: true, MaxLen: MaxFieldLength},
	{Field: "studyProgram", Kind: validate.String, Required: true, MaxLen: MaxFieldLength},
	{Field: "profilePicture", Kind: validate.Path, Clearable: true, MaxLen: MaxFieldLength},
}

// updateUserRules governs profile edits. Every field is optional — a
// field absent from the payload is left untouched (partial update) —
// but a field that IS present must satisfy its constraints. Only the
// clearable fields accept ""; an empty gender or email is a violation,
// never a way to blank a constrained column.
var updateUserRules = []validate.Rule{
	{Field: "name", Kind: validate.String, MinLen: MinNameLength, MaxLen: MaxNameLength},
	{Field: "email", Kind: validate.Email, MaxLen: MaxFieldLength},
	{Field: "gender", Kind: validate.String, Enum: model.Genders},
	{Field: "address", Kind: validate.String, Clearable: true, MaxLen: MaxFieldLength},
	{Field: "studyProgram", Kind: validate.String, Clearable: true, MaxLen: MaxFieldLength},
	{Field: "profilePicture", Kind: validate.Path, Clearable: true, MaxLen: MaxFieldLength},
	{Field: "removeProfilePicture", Kind: validate.Bool},
}

// FileDeleter is the slice of the upload store the user service needs:
// best-effort removal of a replaced profile picture.
type FileDeleter interface {
	Delete(publicPath string) error
}

// UserService handles profile creation and edits.
type UserService struct {
	users  repository.UserRepository
	files  FileDeleter
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, files FileDeleter, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		files:  files,
		logger: logger,
	}
}

// Create makes the profile for an authenticated identity.
//
// The email comes from the identity provider, not the payload. A
// second create for the same subject is a Conflict — creation is
// explicit and never upserts.
func (s *UserService) Create(ctx context.Context, id auth.Identity, payload map[string]any) (*model.User, error) {
	if id.Subject == "" {
		return nil, apperror.Unauthorized("valid authentication required")
	}

	values, violations := validate.Apply(createUserRules, payload)
	if len(violations) > 0 {
		return nil, apperror.Invalid(violations)
	}

	user := &model.User{
		SubjectID:      id.Subject,
		Email:          id.Email,
		Name:           values.String("name"),
		Gender:         values.String("gender"),
		Address:        values.String("address"),
		StudyProgram:   values.String("studyProgram"),
		ProfilePicture: values.String("profilePicture"),
		Role:           model.DefaultRole,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("profile created",
		slog.String("id", user.ID),
		slog.String("subject", user.SubjectID),
	)

	return user, nil
}

// Update applies a partial profile edit.
//
// Picture policy: removeProfilePicture clears the stored reference; a
// new reference different from the stored one replaces it. Either way
// the old file is deleted AFTER the row commit, best effort — a failed
// cleanup is logged and never fails the request.
func (s *UserService) Update(ctx context.Context, id string, payload map[string]any) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	values, violations := validate.Apply(updateUserRules, payload)
	if len(violations) > 0 {
		return nil, apperror.Invalid(violations)
	}

	// Fetch-then-update: confirms the row exists (NotFound comes from
	// one place) and gives us the old picture path for cleanup.
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldPicture := user.ProfilePicture

	if values.Has("name") {
		user.Name = values.String("name")
	}
	if values.Has("email") {
		user.Email = values.String("email")
	}
	if values.Has("gender") {
		user.Gender = values.String("gender")
	}
	if values.Has("address") {
		user.Address = values.String("address")
	}
	if values.Has("studyProgram") {
		user.StudyProgram = values.String("studyProgram")
	}
	if values.Bool("removeProfilePicture") {
		user.ProfilePicture = ""
	} else if values.Has("profilePicture") {
		user.ProfilePicture = values.String("profilePicture")
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		s.logger.Error("failed to update user",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating user: %w", err)
	}

	// Cleanup after the commit so a delete failure can't lose the
	// mutation. The accepted race: two concurrent replaces may delete
	// each other's fresh file.
	if oldPicture != "" && oldPicture != user.ProfilePicture {
		if err := s.files.Delete(oldPicture); err != nil {
			s.logger.Warn("failed to delete replaced profile picture",
				slog.String("path", oldPicture),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("profile updated", slog.String("id", user.ID))

	return user, nil
}

// GetBySubject returns the profile linked to an identity, or NotFound
// if the identity hasn't created one yet.
func (s *UserService) GetBySubject(ctx context.Context, subjectID string) (*model.User, error) {
	if subjectID == "" {
		return nil, apperror.Unauthorized("valid authentication required")
	}
	return s.users.GetUserBySubject(ctx, subjectID)
}

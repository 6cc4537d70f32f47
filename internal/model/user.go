// Package model defines the data structures used throughout the application.
package model

import "time"

// Enumerated gender values. Stored as-is; the validator rejects
// anything outside this set.
const (
	GenderMale   = "pria"
	GenderFemale = "wanita"
)

// Genders lists the accepted gender values for validation tables.
var Genders = []string{GenderMale, GenderFemale}

// DefaultRole is assigned to every profile on creation. There is no
// role management in this system — the column exists so admin tooling
// can be layered on later without a migration.
const DefaultRole = "mahasiswa"

// User is a student profile.
//
// SubjectID is the external identity provider's stable identifier
// ("github:1234567" or "local:<credential id>"), distinct from our
// internal ID. We generate our own xid primary key so records aren't
// tied to a third party's numbering scheme, and keep subject_id UNIQUE
// so one external identity maps to exactly one profile.
//
// ProfilePicture holds only the public path of a managed upload (or
// ""). The record never stores bytes; the path is a loose pointer and
// the upload store owns the delete-on-replace policy.
type User struct {
	ID             string    `json:"id"`
	SubjectID      string    `json:"subjectId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Gender         string    `json:"gender"`
	Address        string    `json:"address"`
	StudyProgram   string    `json:"studyProgram"`
	ProfilePicture string    `json:"profilePicture"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// OwnerSummary is the projection of a User attached to portfolio list
// rows: never the full profile, just what the table needs.
type OwnerSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	StudyProgram string `json:"studyProgram"`
}

// OwnerDetail extends OwnerSummary with the profile picture for the
// single-portfolio detail view.
type OwnerDetail struct {
	OwnerSummary
	ProfilePicture string `json:"profilePicture"`
}

// Credential is a local email/password account, an alternative to the
// OAuth provider. Its subject id is "local:<ID>". The password hash is
// never serialized.
type Credential struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

package model

import "time"

// Enumerated portfolio levels — the scope of the achievement or
// activity. No free text is accepted.
const (
	LevelInternational = "internasional"
	LevelNational      = "nasional"
	LevelRegional      = "regional"
	LevelUniversity    = "universitas"
)

// Levels lists the accepted level values for validation tables.
var Levels = []string{LevelInternational, LevelNational, LevelRegional, LevelUniversity}

// Enumerated portfolio categories: achievement vs activity.
const (
	CategoryAchievement = "prestasi"
	CategoryActivity    = "kegiatan"
)

// Categories lists the accepted category values for validation tables.
var Categories = []string{CategoryAchievement, CategoryActivity}

// Portfolio is a single recorded achievement or activity belonging to
// one user.
//
// Date is when the achievement/activity occurred — a user-visible
// field distinct from CreatedAt, which is the server-assigned record
// timestamp that drives newest-first listing.
//
// DocsURL is the public path of an uploaded supporting PDF, or "".
type Portfolio struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Level       string    `json:"level"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	DocsURL     string    `json:"docsUrl"`
	Date        time.Time `json:"date"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PortfolioWithOwner is a list row: the record joined with the owner
// summary projection.
type PortfolioWithOwner struct {
	Portfolio
	User OwnerSummary `json:"user"`
}

// PortfolioDetail is the single-record view with the full owner
// projection (adds the profile picture).
type PortfolioDetail struct {
	Portfolio
	User OwnerDetail `json:"user"`
}

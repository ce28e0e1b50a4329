package database

import (
	"time"
)

type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Posting struct {
	ID              string // Identity hash of (title, company, location)
	Title           string
	Company         string
	Location        string
	Country         string // Empty string when the scraper could not tell
	JobType         string
	ExperienceLevel string
	JobURL          string
	PostedDate      string // Free-form text as published on the board
	Description     string
	EasyApply       bool
	Remote          bool
	Applied         bool // Legacy single-user flag, kept for backward compatibility
	Rejected        bool // Legacy single-user flag, kept for backward compatibility
	Excluded        bool
	ScrapedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Signature records that some user evaluated an opening with this
// (company, normalized title, country) shape. It deliberately carries no
// foreign key: it must outlive the posting that created it.
type Signature struct {
	ID              int64
	Company         string // Case-folded
	NormalizedTitle string
	Country         string // Empty string acts as a wildcard
	PostingID       string
	LastAppliedAt   time.Time
}

type Interaction struct {
	ID         string
	UserID     string
	PostingID  string
	Applied    bool
	Rejected   bool
	Saved      bool
	Hidden     bool
	AppliedAt  *time.Time
	RejectedAt *time.Time
	SavedAt    *time.Time
	HiddenAt   *time.Time
	Notes      string
	Rating     *int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Preferences struct {
	UserID             string
	JobTypes           []string
	IncludeKeywords    []string
	ExcludeKeywords    []string
	ExperienceLevels   []string
	Countries          []string
	Cities             []string
	PreferredCompanies []string
	ExcludedCompanies  []string
	RemoteOnly         bool
	EasyApplyOnly      bool
	ExcludeSenior      bool
	UpdatedAt          time.Time
}

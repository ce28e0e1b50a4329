package database

import (
	"time"
)

type PostingRepository interface {
	GetPosting(id string) (*Posting, error)
	GetPostingIDs() (map[string]struct{}, error)
	GetActivePostings() ([]Posting, error)
	GetPostingCount() (int, error)
	CountByCountry() (map[string]int, error)

	InsertPosting(p Posting) error
	UpdatePosting(p Posting) error

	// DeleteBeyondLimit evicts postings in the given country partition that
	// rank outside the newest `limit` by scraped time, returning the number
	// of rows actually deleted. Postings with live interactions survive.
	DeleteBeyondLimit(country string, limit int) (int, error)

	// DeletePosting removes one posting outright, cascading to its
	// interaction rows. Signatures are unaffected.
	DeletePosting(id string) (int, error)
}

type SignatureRepository interface {
	RecordApplied(company, normalizedTitle, country, postingID string, at time.Time) error
	Lookup(company, normalizedTitle, country string, windowDays int) (*Signature, error)
	GetSignatureCount() (int, error)
}

type InteractionRepository interface {
	GetInteraction(userID, postingID string) (*Interaction, error)
	GetInteractionsForUser(userID string) ([]Interaction, error)
	GetInteractionPostingIDs(userID string) (map[string]struct{}, error)
	GetInteractionCount() (int, error)

	UpsertInteraction(ix Interaction) error
}

type UserRepository interface {
	GetUserByName(name string) (*User, error)
	GetUserCount() (int, error)
	UpsertUser(id, name string) error

	GetPreferences(userID string) (*Preferences, error)
	UpsertPreferences(p Preferences) error
}

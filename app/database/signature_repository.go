package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SignatureRepository = (*SignatureRepo)(nil)

// SignatureRepo handles database operations for applied-opening signatures
type SignatureRepo struct {
	db *DB
}

func NewSignatureRepository(db *DB) *SignatureRepo {
	return &SignatureRepo{db: db}
}

// RecordApplied upserts the signature keyed by (company, normalized title,
// country), refreshing last_applied_at and the posting id that triggered it.
// Company is expected case-folded and country may be empty.
func (r *SignatureRepo) RecordApplied(company, normalizedTitle, country, postingID string, at time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO signatures (company, normalized_title, country, posting_id, last_applied_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (company, normalized_title, country) DO UPDATE SET
			posting_id = excluded.posting_id,
			last_applied_at = excluded.last_applied_at
	`, company, normalizedTitle, country, postingID, at.UTC())

	if err != nil {
		return fmt.Errorf("failed to record signature: %w", err)
	}

	return nil
}

// Lookup returns the most recent signature matching (company, normalized
// title, country) with last_applied_at inside the trailing window. An empty
// country acts as a wildcard on both sides of the match.
func (r *SignatureRepo) Lookup(company, normalizedTitle, country string, windowDays int) (*Signature, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)

	row := r.db.QueryRow(`
		SELECT id, company, normalized_title, country, posting_id, last_applied_at
		FROM signatures
		WHERE company = ?
		  AND normalized_title = ?
		  AND (country = '' OR ? = '' OR country = ?)
		  AND last_applied_at >= ?
		ORDER BY last_applied_at DESC
		LIMIT 1
	`, company, normalizedTitle, country, country, cutoff)

	var s Signature
	err := row.Scan(&s.ID, &s.Company, &s.NormalizedTitle, &s.Country, &s.PostingID, &s.LastAppliedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up signature: %w", err)
	}

	return &s, nil
}

func (r *SignatureRepo) GetSignatureCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM signatures`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get signature count: %w", err)
	}
	return count, nil
}

package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ PostingRepository = (*PostingRepo)(nil)

// PostingRepo handles database operations for canonical postings
type PostingRepo struct {
	db *DB
}

func NewPostingRepository(db *DB) *PostingRepo {
	return &PostingRepo{db: db}
}

const postingColumns = `id, title, company, location, country, job_type,
	experience_level, job_url, posted_date, description, easy_apply, remote,
	applied, rejected, excluded, scraped_at, created_at, updated_at`

func scanPosting(row interface{ Scan(...any) error }) (*Posting, error) {
	var p Posting
	err := row.Scan(
		&p.ID, &p.Title, &p.Company, &p.Location, &p.Country, &p.JobType,
		&p.ExperienceLevel, &p.JobURL, &p.PostedDate, &p.Description,
		&p.EasyApply, &p.Remote, &p.Applied, &p.Rejected, &p.Excluded,
		&p.ScrapedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostingRepo) GetPosting(id string) (*Posting, error) {
	row := r.db.QueryRow(`SELECT `+postingColumns+` FROM postings WHERE id = ?`, id)

	p, err := scanPosting(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get posting: %w", err)
	}
	return p, nil
}

// GetPostingIDs returns the set of all canonical posting ids. The ingestion
// pipeline uses this as an immutable snapshot for its merge decision.
func (r *PostingRepo) GetPostingIDs() (map[string]struct{}, error) {
	rows, err := r.db.Query(`SELECT id FROM postings`)
	if err != nil {
		return nil, fmt.Errorf("failed to get posting ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan posting id: %w", err)
		}
		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posting ids: %w", err)
	}

	return ids, nil
}

// GetActivePostings returns non-excluded postings ordered by scraped time
// descending, newest insertions first among equal timestamps.
func (r *PostingRepo) GetActivePostings() ([]Posting, error) {
	rows, err := r.db.Query(`
		SELECT ` + postingColumns + `
		FROM postings
		WHERE excluded = 0
		ORDER BY scraped_at IS NULL, scraped_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get active postings: %w", err)
	}
	defer rows.Close()

	var postings []Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan posting row: %w", err)
		}
		postings = append(postings, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posting rows: %w", err)
	}

	return postings, nil
}

func (r *PostingRepo) GetPostingCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM postings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get posting count: %w", err)
	}
	return count, nil
}

func (r *PostingRepo) CountByCountry() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT country, COUNT(*) FROM postings GROUP BY country`)
	if err != nil {
		return nil, fmt.Errorf("failed to count postings by country: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var country string
		var count int
		if err := rows.Scan(&country, &count); err != nil {
			return nil, fmt.Errorf("failed to scan country count: %w", err)
		}
		counts[country] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating country counts: %w", err)
	}

	return counts, nil
}

func (r *PostingRepo) InsertPosting(p Posting) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		INSERT INTO postings (
			id, title, company, location, country, job_type, experience_level,
			job_url, posted_date, description, easy_apply, remote,
			applied, rejected, excluded, scraped_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Company, p.Location, p.Country, p.JobType,
		p.ExperienceLevel, p.JobURL, p.PostedDate, p.Description,
		p.EasyApply, p.Remote, p.Applied, p.Rejected, p.Excluded,
		p.ScrapedAt, now, now)

	if err != nil {
		return fmt.Errorf("failed to insert posting: %w", err)
	}

	return nil
}

// UpdatePosting refreshes the mutable fields of an existing posting. The
// legacy applied/rejected flags and the excluded flag are left untouched.
func (r *PostingRepo) UpdatePosting(p Posting) error {
	_, err := r.db.Exec(`
		UPDATE postings
		SET title = ?, company = ?, location = ?, country = ?, job_type = ?,
		    experience_level = ?, job_url = ?, posted_date = ?, description = ?,
		    easy_apply = ?, remote = ?, scraped_at = ?, updated_at = ?
		WHERE id = ?
	`, p.Title, p.Company, p.Location, p.Country, p.JobType,
		p.ExperienceLevel, p.JobURL, p.PostedDate, p.Description,
		p.EasyApply, p.Remote, p.ScrapedAt, time.Now().UTC(), p.ID)

	if err != nil {
		return fmt.Errorf("failed to update posting: %w", err)
	}

	return nil
}

// DeleteBeyondLimit evicts postings in one country partition that rank
// outside the newest `limit`, ordered by scraped time descending with NULLs
// last and insertion order as the tie-break. Postings a user has interacted
// with are never evicted. Cascades remove interaction rows; signatures are
// untouched by design of the schema.
func (r *PostingRepo) DeleteBeyondLimit(country string, limit int) (int, error) {
	result, err := r.db.Exec(`
		DELETE FROM postings
		WHERE country = ?
		  AND id NOT IN (
			SELECT id FROM postings
			WHERE country = ?
			ORDER BY scraped_at IS NULL, scraped_at DESC, rowid DESC
			LIMIT ?
		  )
		  AND id NOT IN (SELECT posting_id FROM interactions)
	`, country, country, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete postings beyond limit: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted row count: %w", err)
	}

	return int(deleted), nil
}

func (r *PostingRepo) DeletePosting(id string) (int, error) {
	result, err := r.db.Exec(`DELETE FROM postings WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete posting: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted row count: %w", err)
	}

	return int(deleted), nil
}

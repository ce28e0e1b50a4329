package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ InteractionRepository = (*InteractionRepo)(nil)

// InteractionRepo handles database operations for per-user overlay rows
type InteractionRepo struct {
	db *DB
}

func NewInteractionRepository(db *DB) *InteractionRepo {
	return &InteractionRepo{db: db}
}

const interactionColumns = `id, user_id, posting_id, applied, rejected, saved,
	hidden, applied_at, rejected_at, saved_at, hidden_at, notes, rating,
	created_at, updated_at`

func scanInteraction(row interface{ Scan(...any) error }) (*Interaction, error) {
	var ix Interaction
	var rating sql.NullInt64
	err := row.Scan(
		&ix.ID, &ix.UserID, &ix.PostingID, &ix.Applied, &ix.Rejected,
		&ix.Saved, &ix.Hidden, &ix.AppliedAt, &ix.RejectedAt, &ix.SavedAt,
		&ix.HiddenAt, &ix.Notes, &rating, &ix.CreatedAt, &ix.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rating.Valid {
		v := int(rating.Int64)
		ix.Rating = &v
	}
	return &ix, nil
}

func (r *InteractionRepo) GetInteraction(userID, postingID string) (*Interaction, error) {
	row := r.db.QueryRow(`
		SELECT `+interactionColumns+`
		FROM interactions
		WHERE user_id = ? AND posting_id = ?
	`, userID, postingID)

	ix, err := scanInteraction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interaction: %w", err)
	}
	return ix, nil
}

func (r *InteractionRepo) GetInteractionsForUser(userID string) ([]Interaction, error) {
	rows, err := r.db.Query(`
		SELECT `+interactionColumns+`
		FROM interactions
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get interactions: %w", err)
	}
	defer rows.Close()

	var interactions []Interaction
	for rows.Next() {
		ix, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interaction row: %w", err)
		}
		interactions = append(interactions, *ix)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interaction rows: %w", err)
	}

	return interactions, nil
}

// GetInteractionPostingIDs returns the ids of every posting this user has an
// interaction row for. Used by the read-time signature probe.
func (r *InteractionRepo) GetInteractionPostingIDs(userID string) (map[string]struct{}, error) {
	rows, err := r.db.Query(`SELECT posting_id FROM interactions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get interaction posting ids: %w", err)
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

func (r *InteractionRepo) GetInteractionCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM interactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get interaction count: %w", err)
	}
	return count, nil
}

// UpsertInteraction writes the full interaction row keyed by
// (user_id, posting_id). Field-level patch semantics live in the overlay
// service; the repository persists whatever state it is handed.
func (r *InteractionRepo) UpsertInteraction(ix Interaction) error {
	var rating sql.NullInt64
	if ix.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*ix.Rating), Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO interactions (
			id, user_id, posting_id, applied, rejected, saved, hidden,
			applied_at, rejected_at, saved_at, hidden_at, notes, rating,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, posting_id) DO UPDATE SET
			applied = excluded.applied,
			rejected = excluded.rejected,
			saved = excluded.saved,
			hidden = excluded.hidden,
			applied_at = excluded.applied_at,
			rejected_at = excluded.rejected_at,
			saved_at = excluded.saved_at,
			hidden_at = excluded.hidden_at,
			notes = excluded.notes,
			rating = excluded.rating,
			updated_at = excluded.updated_at
	`, ix.ID, ix.UserID, ix.PostingID, ix.Applied, ix.Rejected, ix.Saved,
		ix.Hidden, ix.AppliedAt, ix.RejectedAt, ix.SavedAt, ix.HiddenAt,
		ix.Notes, rating, time.Now().UTC(), time.Now().UTC())

	if err != nil {
		return fmt.Errorf("failed to upsert interaction: %w", err)
	}

	return nil
}

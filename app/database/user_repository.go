package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

var _ UserRepository = (*UserRepo)(nil)

// UserRepo handles database operations for users and their preferences
type UserRepo struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetUserByName(name string) (*User, error) {
	var u User
	err := r.db.QueryRow(`
		SELECT id, name, created_at FROM users WHERE name = ?
	`, name).Scan(&u.ID, &u.Name, &u.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

func (r *UserRepo) GetUserCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get user count: %w", err)
	}
	return count, nil
}

func (r *UserRepo) UpsertUser(id, name string) error {
	_, err := r.db.Exec(`
		INSERT INTO users (id, name) VALUES (?, ?)
		ON CONFLICT (name) DO NOTHING
	`, id, name)

	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

func (r *UserRepo) GetPreferences(userID string) (*Preferences, error) {
	var p Preferences
	var jobTypes, includeKw, excludeKw, expLevels, countries, cities, prefCos, exclCos string

	err := r.db.QueryRow(`
		SELECT user_id, job_types, include_keywords, exclude_keywords,
		       experience_levels, countries, cities, preferred_companies,
		       excluded_companies, remote_only, easy_apply_only, exclude_senior,
		       updated_at
		FROM preferences
		WHERE user_id = ?
	`, userID).Scan(&p.UserID, &jobTypes, &includeKw, &excludeKw, &expLevels,
		&countries, &cities, &prefCos, &exclCos,
		&p.RemoteOnly, &p.EasyApplyOnly, &p.ExcludeSenior, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	for _, pair := range []struct {
		raw  string
		dest *[]string
	}{
		{jobTypes, &p.JobTypes},
		{includeKw, &p.IncludeKeywords},
		{excludeKw, &p.ExcludeKeywords},
		{expLevels, &p.ExperienceLevels},
		{countries, &p.Countries},
		{cities, &p.Cities},
		{prefCos, &p.PreferredCompanies},
		{exclCos, &p.ExcludedCompanies},
	} {
		if err := json.Unmarshal([]byte(pair.raw), pair.dest); err != nil {
			return nil, fmt.Errorf("failed to decode preference list: %w", err)
		}
	}

	return &p, nil
}

func (r *UserRepo) UpsertPreferences(p Preferences) error {
	encoded := make([]string, 0, 8)
	for _, list := range [][]string{
		p.JobTypes, p.IncludeKeywords, p.ExcludeKeywords, p.ExperienceLevels,
		p.Countries, p.Cities, p.PreferredCompanies, p.ExcludedCompanies,
	} {
		if list == nil {
			list = []string{}
		}
		data, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("failed to encode preference list: %w", err)
		}
		encoded = append(encoded, string(data))
	}

	_, err := r.db.Exec(`
		INSERT INTO preferences (
			user_id, job_types, include_keywords, exclude_keywords,
			experience_levels, countries, cities, preferred_companies,
			excluded_companies, remote_only, easy_apply_only, exclude_senior,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			job_types = excluded.job_types,
			include_keywords = excluded.include_keywords,
			exclude_keywords = excluded.exclude_keywords,
			experience_levels = excluded.experience_levels,
			countries = excluded.countries,
			cities = excluded.cities,
			preferred_companies = excluded.preferred_companies,
			excluded_companies = excluded.excluded_companies,
			remote_only = excluded.remote_only,
			easy_apply_only = excluded.easy_apply_only,
			exclude_senior = excluded.exclude_senior,
			updated_at = excluded.updated_at
	`, p.UserID, encoded[0], encoded[1], encoded[2], encoded[3], encoded[4],
		encoded[5], encoded[6], encoded[7],
		p.RemoteOnly, p.EasyApplyOnly, p.ExcludeSenior, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}

	return nil
}

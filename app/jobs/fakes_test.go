package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nickykapur/jobpool/app/database"
)

// In-memory repository fakes shared by the pipeline, overlay, viewer and
// enforcer tests.

type fakePostingRepo struct {
	postings  map[string]database.Posting
	order     []string // insertion sequence, oldest first
	failFor   map[string]error
	protected map[string]struct{} // ids with interactions, exempt from eviction
}

func newFakePostingRepo() *fakePostingRepo {
	return &fakePostingRepo{
		postings:  make(map[string]database.Posting),
		failFor:   make(map[string]error),
		protected: make(map[string]struct{}),
	}
}

func (r *fakePostingRepo) GetPosting(id string) (*database.Posting, error) {
	p, ok := r.postings[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePostingRepo) GetPostingIDs() (map[string]struct{}, error) {
	ids := make(map[string]struct{}, len(r.postings))
	for id := range r.postings {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (r *fakePostingRepo) GetActivePostings() ([]database.Posting, error) {
	var postings []database.Posting
	for _, id := range r.rankedIDs("") {
		p := r.postings[id]
		if !p.Excluded {
			postings = append(postings, p)
		}
	}
	return postings, nil
}

func (r *fakePostingRepo) GetPostingCount() (int, error) {
	return len(r.postings), nil
}

func (r *fakePostingRepo) CountByCountry() (map[string]int, error) {
	counts := make(map[string]int)
	for _, p := range r.postings {
		counts[p.Country]++
	}
	return counts, nil
}

func (r *fakePostingRepo) InsertPosting(p database.Posting) error {
	if err := r.failFor[p.ID]; err != nil {
		return err
	}
	if _, exists := r.postings[p.ID]; exists {
		return fmt.Errorf("duplicate posting id %s", p.ID)
	}
	r.postings[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

func (r *fakePostingRepo) UpdatePosting(p database.Posting) error {
	if err := r.failFor[p.ID]; err != nil {
		return err
	}
	existing, ok := r.postings[p.ID]
	if !ok {
		return fmt.Errorf("posting %s not found", p.ID)
	}
	// Mutable fields only; overlay and legacy flags survive
	existing.Title = p.Title
	existing.Company = p.Company
	existing.Location = p.Location
	existing.Country = p.Country
	existing.JobType = p.JobType
	existing.ExperienceLevel = p.ExperienceLevel
	existing.JobURL = p.JobURL
	existing.PostedDate = p.PostedDate
	existing.Description = p.Description
	existing.EasyApply = p.EasyApply
	existing.Remote = p.Remote
	existing.ScrapedAt = p.ScrapedAt
	r.postings[p.ID] = existing
	return nil
}

// rankedIDs orders ids by scraped time descending with nil timestamps last,
// later insertions winning ties, mirroring the SQL ranking.
func (r *fakePostingRepo) rankedIDs(country string) []string {
	seq := make(map[string]int, len(r.order))
	for i, id := range r.order {
		seq[id] = i
	}

	var ids []string
	for id, p := range r.postings {
		if country == "" || p.Country == country {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := r.postings[ids[i]], r.postings[ids[j]]
		switch {
		case a.ScrapedAt == nil && b.ScrapedAt == nil:
			return seq[ids[i]] > seq[ids[j]]
		case a.ScrapedAt == nil:
			return false
		case b.ScrapedAt == nil:
			return true
		case !a.ScrapedAt.Equal(*b.ScrapedAt):
			return a.ScrapedAt.After(*b.ScrapedAt)
		default:
			return seq[ids[i]] > seq[ids[j]]
		}
	})
	return ids
}

func (r *fakePostingRepo) DeleteBeyondLimit(country string, limit int) (int, error) {
	if err := r.failFor["country:"+country]; err != nil {
		return 0, err
	}

	deleted := 0
	for i, id := range r.rankedIDs(country) {
		if i < limit {
			continue
		}
		if _, protected := r.protected[id]; protected {
			continue
		}
		delete(r.postings, id)
		deleted++
	}
	return deleted, nil
}

func (r *fakePostingRepo) DeletePosting(id string) (int, error) {
	if _, ok := r.postings[id]; !ok {
		return 0, nil
	}
	delete(r.postings, id)
	return 1, nil
}

// databasePosting builds a minimal valid posting row for repository fakes.
func databasePosting(id, country string, scrapedAt *time.Time) database.Posting {
	return database.Posting{
		ID:        id,
		Title:     "Posting " + id,
		Company:   "ACME",
		Location:  country,
		Country:   country,
		JobURL:    "https://example.com/" + id,
		ScrapedAt: scrapedAt,
	}
}

type signatureKey struct {
	company, title, country string
}

type fakeSignatureRepo struct {
	signatures map[signatureKey]database.Signature
	lookupErr  error
}

func newFakeSignatureRepo() *fakeSignatureRepo {
	return &fakeSignatureRepo{signatures: make(map[signatureKey]database.Signature)}
}

func (r *fakeSignatureRepo) RecordApplied(company, normalizedTitle, country, postingID string, at time.Time) error {
	key := signatureKey{company, normalizedTitle, country}
	r.signatures[key] = database.Signature{
		Company:         company,
		NormalizedTitle: normalizedTitle,
		Country:         country,
		PostingID:       postingID,
		LastAppliedAt:   at,
	}
	return nil
}

func (r *fakeSignatureRepo) Lookup(company, normalizedTitle, country string, windowDays int) (*database.Signature, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)
	var best *database.Signature
	for key, sig := range r.signatures {
		if key.company != company || key.title != normalizedTitle {
			continue
		}
		if key.country != "" && country != "" && key.country != country {
			continue
		}
		if sig.LastAppliedAt.Before(cutoff) {
			continue
		}
		if best == nil || sig.LastAppliedAt.After(best.LastAppliedAt) {
			s := sig
			best = &s
		}
	}
	return best, nil
}

func (r *fakeSignatureRepo) GetSignatureCount() (int, error) {
	return len(r.signatures), nil
}

type interactionKey struct {
	userID, postingID string
}

type fakeInteractionRepo struct {
	interactions map[interactionKey]database.Interaction
}

func newFakeInteractionRepo() *fakeInteractionRepo {
	return &fakeInteractionRepo{interactions: make(map[interactionKey]database.Interaction)}
}

func (r *fakeInteractionRepo) GetInteraction(userID, postingID string) (*database.Interaction, error) {
	ix, ok := r.interactions[interactionKey{userID, postingID}]
	if !ok {
		return nil, nil
	}
	return &ix, nil
}

func (r *fakeInteractionRepo) GetInteractionsForUser(userID string) ([]database.Interaction, error) {
	var result []database.Interaction
	for key, ix := range r.interactions {
		if key.userID == userID {
			result = append(result, ix)
		}
	}
	return result, nil
}

func (r *fakeInteractionRepo) GetInteractionPostingIDs(userID string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	for key := range r.interactions {
		if key.userID == userID {
			ids[key.postingID] = struct{}{}
		}
	}
	return ids, nil
}

func (r *fakeInteractionRepo) GetInteractionCount() (int, error) {
	return len(r.interactions), nil
}

func (r *fakeInteractionRepo) UpsertInteraction(ix database.Interaction) error {
	r.interactions[interactionKey{ix.UserID, ix.PostingID}] = ix
	return nil
}

type fakeViewCache struct {
	entries       map[string]string
	invalidations []string
}

func newFakeViewCache() *fakeViewCache {
	return &fakeViewCache{entries: make(map[string]string)}
}

func (c *fakeViewCache) Get(ctx context.Context, key string) (string, error) {
	return c.entries[key], nil
}

func (c *fakeViewCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = string(data)
	return nil
}

func (c *fakeViewCache) Invalidate(ctx context.Context, pattern string) error {
	c.invalidations = append(c.invalidations, pattern)
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		for key := range c.entries {
			if strings.HasPrefix(key, prefix) {
				delete(c.entries, key)
			}
		}
		return nil
	}
	delete(c.entries, pattern)
	return nil
}

type fakeUserRepo struct {
	users map[string]database.User
	prefs map[string]database.Preferences
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[string]database.User),
		prefs: make(map[string]database.Preferences),
	}
}

func (r *fakeUserRepo) GetUserByName(name string) (*database.User, error) {
	for _, u := range r.users {
		if u.Name == name {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserCount() (int, error) {
	return len(r.users), nil
}

func (r *fakeUserRepo) UpsertUser(id, name string) error {
	r.users[id] = database.User{ID: id, Name: name}
	return nil
}

func (r *fakeUserRepo) GetPreferences(userID string) (*database.Preferences, error) {
	p, ok := r.prefs[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeUserRepo) UpsertPreferences(p database.Preferences) error {
	r.prefs[p.UserID] = p
	return nil
}

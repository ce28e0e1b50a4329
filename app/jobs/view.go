package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nickykapur/jobpool/app/database"
)

const viewCachePrefix = "view:"

func viewCacheKey(userID string) string {
	return viewCachePrefix + userID
}

// ViewCache is the optional read-view cache. Implemented by the redis cache;
// a nil cache disables caching entirely.
type ViewCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// Viewer builds each user's visible slice of the pool: canonical postings
// filtered by preferences and merged with the user's overlay. Nothing here
// is persisted; the computation is request-scoped.
type Viewer struct {
	postings     database.PostingRepository
	interactions database.InteractionRepository
	signatures   database.SignatureRepository
	users        database.UserRepository
	cache        ViewCache
	cacheTTL     time.Duration
	windowDays   int
}

func NewViewer(postings database.PostingRepository, interactions database.InteractionRepository,
	signatures database.SignatureRepository, users database.UserRepository,
	cache ViewCache, cacheTTL time.Duration, windowDays int) *Viewer {
	return &Viewer{
		postings:     postings,
		interactions: interactions,
		signatures:   signatures,
		users:        users,
		cache:        cache,
		cacheTTL:     cacheTTL,
		windowDays:   windowDays,
	}
}

// GetVisibleJobs returns the postings visible to one user, newest scrape
// first, with the user's overlay merged in.
func (v *Viewer) GetVisibleJobs(ctx context.Context, userID string) ([]JobView, error) {
	if v.cache != nil {
		if cached, err := v.cache.Get(ctx, viewCacheKey(userID)); err != nil {
			slog.Warn("View cache read failed", "user", userID, "error", err)
		} else if cached != "" {
			var views []JobView
			if err := json.Unmarshal([]byte(cached), &views); err == nil {
				return views, nil
			}
			slog.Warn("Discarding undecodable view cache entry", "user", userID)
		}
	}

	prefs, err := v.users.GetPreferences(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	if prefs == nil {
		prefs = &database.Preferences{UserID: userID}
	}

	postings, err := v.postings.GetActivePostings()
	if err != nil {
		return nil, fmt.Errorf("failed to load postings: %w", err)
	}

	interactions, err := v.interactions.GetInteractionsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interactions: %w", err)
	}
	byPosting := make(map[string]database.Interaction, len(interactions))
	history := make(map[string]struct{}, len(interactions))
	for _, ix := range interactions {
		byPosting[ix.PostingID] = ix
		history[ix.PostingID] = struct{}{}
	}

	views := make([]JobView, 0, len(postings))
	for _, posting := range postings {
		if !v.matchesPreferences(posting, prefs) {
			continue
		}

		view, visible := v.mergeOverlay(posting, byPosting, history)
		if !visible {
			continue
		}
		views = append(views, view)
	}

	if v.cache != nil {
		if err := v.cache.Set(ctx, viewCacheKey(userID), views, v.cacheTTL); err != nil {
			slog.Warn("View cache write failed", "user", userID, "error", err)
		}
	}

	return views, nil
}

// matchesPreferences runs the six-step preference filter. Checks fire only
// on facts: an unknown field falls back to its heuristic or passes.
func (v *Viewer) matchesPreferences(p database.Posting, prefs *database.Preferences) bool {
	// 1. Job type, classifying unknowns from posting text
	if len(prefs.JobTypes) > 0 {
		jobType := p.JobType
		if jobType == "" {
			if category := Classify(p.Title, p.Description, p.Location); category != CategoryUnknown {
				jobType = string(category)
			}
		}
		if jobType != "" && !containsFold(prefs.JobTypes, jobType) {
			return false
		}
	}

	// 2. Experience level, with a binary seniority heuristic for unknowns
	if p.ExperienceLevel != "" {
		if len(prefs.ExperienceLevels) > 0 && !containsFold(prefs.ExperienceLevels, p.ExperienceLevel) {
			return false
		}
	} else if len(prefs.ExperienceLevels) > 0 || prefs.ExcludeSenior {
		seniorAllowed := containsFold(prefs.ExperienceLevels, "mid") ||
			containsFold(prefs.ExperienceLevels, "senior")
		if LooksSenior(p.Title) && !seniorAllowed {
			return false
		}
	}

	// 3. Country, substring-matching the location text for unknowns
	if len(prefs.Countries) > 0 {
		if p.Country != "" {
			if !containsFold(prefs.Countries, p.Country) {
				return false
			}
		} else {
			names := append([]string{"remote"}, prefs.Countries...)
			names = append(names, prefs.Cities...)
			if !anySubstring(p.Location, names) {
				return false
			}
		}
	}

	// 4. Keyword allow and deny lists across all posting text
	haystack := p.Title + " " + p.Description + " " + p.Location
	if anySubstring(haystack, prefs.ExcludeKeywords) {
		return false
	}
	if len(prefs.IncludeKeywords) > 0 && !anySubstring(haystack, prefs.IncludeKeywords) {
		return false
	}

	// Excluded companies
	if containsFold(prefs.ExcludedCompanies, p.Company) {
		return false
	}

	// 5. Remote only
	if prefs.RemoteOnly && !p.Remote && !strings.Contains(strings.ToLower(p.Location), "remote") {
		return false
	}

	// 6. Easy apply only
	if prefs.EasyApplyOnly && !p.EasyApply {
		return false
	}

	return true
}

// mergeOverlay layers the user's interaction over the canonical posting.
// Overlay flags shadow the legacy posting columns. When no interaction row
// exists, a signature probe catches reposts the pipeline let through: if the
// matching signature points at a posting in this user's own history, the
// view reports applied without writing anything.
func (v *Viewer) mergeOverlay(p database.Posting, byPosting map[string]database.Interaction,
	history map[string]struct{}) (JobView, bool) {
	view := JobView{Posting: p}

	if ix, ok := byPosting[p.ID]; ok {
		if ix.Hidden {
			return view, false
		}
		view.Applied = ix.Applied
		view.Rejected = ix.Rejected
		view.Saved = ix.Saved
		view.Notes = ix.Notes
		view.Rating = ix.Rating
		return view, true
	}

	view.Applied = p.Applied
	view.Rejected = p.Rejected

	signature, err := v.signatures.Lookup(
		FoldCompany(p.Company), NormalizeTitle(p.Title), p.Country, v.windowDays)
	if err != nil {
		slog.Warn("Read-time signature probe failed", "posting", p.ID, "error", err)
		return view, true
	}
	if signature != nil {
		if _, mine := history[signature.PostingID]; mine {
			view.Applied = true
		}
	}

	return view, true
}

func containsFold(list []string, value string) bool {
	for _, entry := range list {
		if strings.EqualFold(entry, value) {
			return true
		}
	}
	return false
}

func anySubstring(text string, needles []string) bool {
	lowered := strings.ToLower(text)
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

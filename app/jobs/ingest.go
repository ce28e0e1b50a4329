package jobs

import (
	"context"
	"log/slog"

	"github.com/nickykapur/jobpool/app/database"
)

// Pipeline merges scraped batches into the canonical store. A batch is not
// one transaction: each record commits individually and a failing record
// never aborts the rest.
type Pipeline struct {
	postings   database.PostingRepository
	signatures database.SignatureRepository
	enforcer   *Enforcer
	cache      ViewCache
	windowDays int
	limit      int
}

func NewPipeline(postings database.PostingRepository, signatures database.SignatureRepository,
	enforcer *Enforcer, cache ViewCache, windowDays, countryLimit int) *Pipeline {
	return &Pipeline{
		postings:   postings,
		signatures: signatures,
		enforcer:   enforcer,
		cache:      cache,
		windowDays: windowDays,
		limit:      countryLimit,
	}
}

// Ingest merges one batch keyed by posting id into the canonical store and
// runs the retention pass afterwards. Records already known are refreshed in
// place; never-seen identifiers are checked against the signature index and
// skipped when they are judged reposts of an opening some user already
// evaluated inside the trailing window.
func (p *Pipeline) Ingest(ctx context.Context, batch map[string]RawRecord) IngestResult {
	var result IngestResult

	existing, err := p.postings.GetPostingIDs()
	if err != nil {
		slog.Error("Failed to snapshot canonical store", "error", err)
		result.Errors = len(batch)
		return result
	}

	plan := PlanMerge(existing, batch)
	result.Errors += len(plan.Invalid)
	for _, id := range plan.Invalid {
		slog.Warn("Rejected record with missing essential fields", "id", id)
	}

	for _, id := range plan.Updates {
		if err := p.postings.UpdatePosting(p.toPosting(id, batch[id])); err != nil {
			slog.Error("Failed to update posting", "id", id, "error", err)
			result.Errors++
			continue
		}
		result.Updated++
	}

	for _, id := range plan.Inserts {
		record := batch[id]

		signature, err := p.signatures.Lookup(
			FoldCompany(record.Company), NormalizeTitle(record.Title),
			record.Country, p.windowDays)
		if err != nil {
			slog.Error("Signature lookup failed", "id", id, "error", err)
			result.Errors++
			continue
		}
		if signature != nil {
			slog.Debug("Skipping repost of evaluated opening",
				"id", id, "company", record.Company, "title", record.Title,
				"original", signature.PostingID)
			result.SkippedReposts++
			continue
		}

		if err := p.postings.InsertPosting(p.toPosting(id, record)); err != nil {
			slog.Error("Failed to insert posting", "id", id, "error", err)
			result.Errors++
			continue
		}
		result.New++
	}

	quota, err := p.enforcer.EnforceCountryLimit(p.limit)
	if err != nil {
		slog.Error("Retention pass failed", "error", err)
	}
	result.Deleted = quota.Deleted

	if p.cache != nil && (result.New > 0 || result.Updated > 0 || result.Deleted > 0) {
		if err := p.cache.Invalidate(ctx, viewCachePrefix+"*"); err != nil {
			slog.Warn("Failed to invalidate view cache", "error", err)
		}
	}

	slog.Info("Batch ingested",
		"total", len(batch),
		"new", result.New,
		"updated", result.Updated,
		"skipped_reposts", result.SkippedReposts,
		"deleted", result.Deleted,
		"errors", result.Errors)

	return result
}

// toPosting maps a raw record onto a canonical posting, backfilling the
// job type from the shared classifier when the scraper left it empty.
func (p *Pipeline) toPosting(id string, record RawRecord) database.Posting {
	jobType := record.JobType
	if jobType == "" {
		if category := Classify(record.Title, record.Description, record.Location); category != CategoryUnknown {
			jobType = string(category)
		}
	}

	return database.Posting{
		ID:              id,
		Title:           record.Title,
		Company:         record.Company,
		Location:        record.Location,
		Country:         record.Country,
		JobType:         jobType,
		ExperienceLevel: record.ExperienceLevel,
		JobURL:          record.JobURL,
		PostedDate:      record.PostedDate,
		Description:     record.Description,
		EasyApply:       record.EasyApply,
		Remote:          record.Remote,
		ScrapedAt:       record.ScrapedAt,
	}
}

package tasks

import (
	"context"
	"log/slog"

	"github.com/nickykapur/jobpool/app/jobs"
	"github.com/nickykapur/jobpool/app/profiles"
	"github.com/nickykapur/jobpool/app/scraper"
)

// IngestRunTask performs one full scrape-and-ingest cycle: collect every
// profile's queries, fan them out over the scrape worker pool, and hand the
// merged batch to the ingestion pipeline.
type IngestRunTask struct {
	Task
	profileCache *profiles.Cache
	collector    *scraper.Collector
	pipeline     *jobs.Pipeline
}

func NewIngestRunTask(profileCache *profiles.Cache, collector *scraper.Collector,
	pipeline *jobs.Pipeline) *IngestRunTask {
	return &IngestRunTask{
		Task:         NewTask(TaskTypeIngestRun),
		profileCache: profileCache,
		collector:    collector,
		pipeline:     pipeline,
	}
}

func (t *IngestRunTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	queries := t.collectQueries()
	if len(queries) == 0 {
		slog.Debug("No scrape queries configured, skipping ingest run")
		return nil
	}

	batch := t.collector.Run(ctx, queries)
	result := t.pipeline.Ingest(ctx, batch)

	slog.Info("Task completed",
		"type", "IngestRun",
		"duration", t.GetDuration(),
		"queries", len(queries),
		"new", result.New,
		"updated", result.Updated,
		"skipped_reposts", result.SkippedReposts,
		"deleted", result.Deleted,
		"errors", result.Errors)

	return nil
}

// collectQueries merges every profile's queries, dropping exact repeats so
// two users tracking the same search cost one fetch.
func (t *IngestRunTask) collectQueries() []scraper.Query {
	seen := make(map[scraper.Query]struct{})
	var queries []scraper.Query

	for _, profile := range t.profileCache.GetProfiles() {
		for _, q := range profile.Queries {
			query := scraper.Query{Term: q.Term, Location: q.Location, Country: q.Country}
			if _, ok := seen[query]; ok {
				continue
			}
			seen[query] = struct{}{}
			queries = append(queries, query)
		}
	}

	return queries
}

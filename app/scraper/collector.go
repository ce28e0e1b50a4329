package scraper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nickykapur/jobpool/app/jobs"
)

// Collector fans one scrape run out over a bounded worker pool, one query
// per worker slot, and merges every worker's results into a single batch
// keyed by posting id. Two workers discovering the same posting collapse to
// one record. All workers join before the batch is returned, so the caller
// always hands a complete run to the ingestion pipeline.
type Collector struct {
	source       Source
	workerCount  int
	fetchTimeout time.Duration
}

func NewCollector(source Source, workerCount int, fetchTimeout time.Duration) *Collector {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Collector{
		source:       source,
		workerCount:  workerCount,
		fetchTimeout: fetchTimeout,
	}
}

// Run executes every query and returns the merged batch. A failing query is
// logged and skipped; its results are simply absent from the batch.
func (c *Collector) Run(ctx context.Context, queries []Query) map[string]jobs.RawRecord {
	batch := make(map[string]jobs.RawRecord)
	var mu sync.Mutex

	queryChan := make(chan Query)
	var wg sync.WaitGroup

	for i := 0; i < c.workerCount; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for query := range queryChan {
				records, err := c.fetch(ctx, query)
				if err != nil {
					slog.Warn("Scrape query failed",
						"worker", worker, "term", query.Term,
						"location", query.Location, "error", err)
					continue
				}

				mu.Lock()
				for _, record := range records {
					if record.Country == "" {
						record.Country = query.Country
					}
					id := jobs.PostingID(record.Title, record.Company, record.Location)
					batch[id] = record
				}
				mu.Unlock()

				slog.Debug("Scrape query completed",
					"worker", worker, "term", query.Term,
					"location", query.Location, "records", len(records))
			}
		}(i)
	}

	for _, query := range queries {
		select {
		case queryChan <- query:
		case <-ctx.Done():
		}
	}
	close(queryChan)

	wg.Wait()

	slog.Info("Scrape run collected", "queries", len(queries), "postings", len(batch))
	return batch
}

func (c *Collector) fetch(ctx context.Context, query Query) ([]jobs.RawRecord, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	return c.source.Fetch(fetchCtx, query)
}

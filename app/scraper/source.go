package scraper

import (
	"context"

	"github.com/nickykapur/jobpool/app/jobs"
)

// Source is the external scraper collaborator. Implementations perform
// blocking network or browser I/O and must honor the context deadline.
type Source interface {
	Fetch(ctx context.Context, query Query) ([]jobs.RawRecord, error)
}

// Query is one search the collector fans out to the source.
type Query struct {
	Term     string
	Location string
	Country  string
}

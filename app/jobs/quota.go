package jobs

import (
	"log/slog"

	"github.com/nickykapur/jobpool/app/database"
)

// Enforcer bounds the canonical pool per country partition.
type Enforcer struct {
	postings database.PostingRepository
}

func NewEnforcer(postings database.PostingRepository) *Enforcer {
	return &Enforcer{postings: postings}
}

// EnforceCountryLimit evicts the oldest postings in every country partition
// holding more than maxPerCountry rows. Postings with live interaction rows
// are protected, so a partition can stay above the cap only when interacted
// postings alone exceed it. A failure in one partition does not stop the
// others; the returned counts cover completed deletions only.
func (e *Enforcer) EnforceCountryLimit(maxPerCountry int) (QuotaResult, error) {
	var result QuotaResult

	if maxPerCountry <= 0 {
		return result, nil
	}

	counts, err := e.postings.CountByCountry()
	if err != nil {
		return result, err
	}

	for country, count := range counts {
		if count <= maxPerCountry {
			continue
		}

		deleted, err := e.postings.DeleteBeyondLimit(country, maxPerCountry)
		if err != nil {
			slog.Error("Failed to enforce retention for country",
				"country", country, "error", err)
			continue
		}

		slog.Info("Evicted postings beyond retention cap",
			"country", country, "count", count, "cap", maxPerCountry, "deleted", deleted)
		result.Deleted += deleted
		result.PartitionsProcessed++
	}

	return result, nil
}

package jobs

// MergePlan is the outcome of a pure merge decision between a snapshot of
// existing posting ids and one scraped batch. It contains ids only; applying
// the plan against storage is the pipeline's job.
type MergePlan struct {
	Inserts []string // Identifiers not present in the snapshot
	Updates []string // Identifiers already present in the snapshot
	Invalid []string // Identifiers whose records are missing title or URL
}

// PlanMerge classifies each batch record against an immutable snapshot of
// the canonical store. It has no side effects and no shared state, so two
// plans over the same inputs are always identical.
func PlanMerge(existing map[string]struct{}, batch map[string]RawRecord) MergePlan {
	var plan MergePlan

	for id, record := range batch {
		if record.Title == "" || record.JobURL == "" {
			plan.Invalid = append(plan.Invalid, id)
			continue
		}

		if _, ok := existing[id]; ok {
			plan.Updates = append(plan.Updates, id)
		} else {
			plan.Inserts = append(plan.Inserts, id)
		}
	}

	return plan
}

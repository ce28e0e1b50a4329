package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestPipeline(postings *fakePostingRepo, signatures *fakeSignatureRepo) *Pipeline {
	return NewPipeline(postings, signatures, NewEnforcer(postings), nil, 30, 500)
}

func testBatch(records ...RawRecord) map[string]RawRecord {
	batch := make(map[string]RawRecord, len(records))
	for _, record := range records {
		batch[PostingID(record.Title, record.Company, record.Location)] = record
	}
	return batch
}

func TestPipeline_Ingest_NewPostings(t *testing.T) {
	postings := newFakePostingRepo()
	pipeline := newTestPipeline(postings, newFakeSignatureRepo())

	batch := testBatch(
		RawRecord{Title: "Backend Engineer", Company: "ACME", Location: "Dublin", Country: "Ireland", JobURL: "https://example.com/1"},
		RawRecord{Title: "Frontend Engineer", Company: "ACME", Location: "Dublin", Country: "Ireland", JobURL: "https://example.com/2"},
	)

	result := pipeline.Ingest(context.Background(), batch)

	if result.New != 2 {
		t.Errorf("Expected 2 new postings, got %d", result.New)
	}
	if result.Updated != 0 || result.SkippedReposts != 0 || result.Errors != 0 {
		t.Errorf("Expected clean insert-only result, got %+v", result)
	}
	if len(postings.postings) != 2 {
		t.Errorf("Expected 2 stored postings, got %d", len(postings.postings))
	}
}

func TestPipeline_Ingest_Idempotent(t *testing.T) {
	postings := newFakePostingRepo()
	pipeline := newTestPipeline(postings, newFakeSignatureRepo())

	batch := testBatch(
		RawRecord{Title: "Backend Engineer", Company: "ACME", Location: "Dublin", Country: "Ireland", JobURL: "https://example.com/1"},
	)

	first := pipeline.Ingest(context.Background(), batch)
	second := pipeline.Ingest(context.Background(), batch)

	if first.New != 1 {
		t.Errorf("Expected first ingest to insert, got %+v", first)
	}
	if second.New != 0 || second.Updated != 1 {
		t.Errorf("Expected second ingest to update in place, got %+v", second)
	}
	if len(postings.postings) != 1 {
		t.Errorf("Expected a single canonical row, got %d", len(postings.postings))
	}
}

func TestPipeline_Ingest_UpdatePreservesOverlayFlags(t *testing.T) {
	postings := newFakePostingRepo()
	pipeline := newTestPipeline(postings, newFakeSignatureRepo())

	batch := testBatch(
		RawRecord{Title: "Backend Engineer", Company: "ACME", Location: "Dublin", Country: "Ireland", JobURL: "https://example.com/1", Description: "old"},
	)
	pipeline.Ingest(context.Background(), batch)

	id := PostingID("Backend Engineer", "ACME", "Dublin")
	p := postings.postings[id]
	p.Applied = true
	p.Excluded = true
	postings.postings[id] = p

	refreshed := testBatch(
		RawRecord{Title: "Backend Engineer", Company: "ACME", Location: "Dublin", Country: "Ireland", JobURL: "https://example.com/1", Description: "new"},
	)
	pipeline.Ingest(context.Background(), refreshed)

	p = postings.postings[id]
	if p.Description != "new" {
		t.Errorf("Expected refreshed description, got %q", p.Description)
	}
	if !p.Applied || !p.Excluded {
		t.Errorf("Expected applied and excluded flags to survive refresh, got applied=%v excluded=%v",
			p.Applied, p.Excluded)
	}
}

func TestPipeline_Ingest_SkipsRepostOfEvaluatedOpening(t *testing.T) {
	postings := newFakePostingRepo()
	signatures := newFakeSignatureRepo()
	pipeline := newTestPipeline(postings, signatures)

	// A user evaluated this opening two days ago under a different posting id
	signatures.RecordApplied("acme", "backend engineer", "Ireland", "old-posting-id",
		time.Now().UTC().AddDate(0, 0, -2))

	batch := testBatch(
		RawRecord{Title: "Senior Backend Engineer", Company: "ACME", Location: "Cork", Country: "Ireland", JobURL: "https://example.com/1"},
	)

	result := pipeline.Ingest(context.Background(), batch)

	if result.SkippedReposts != 1 {
		t.Errorf("Expected 1 skipped repost, got %+v", result)
	}
	if result.New != 0 {
		t.Errorf("Expected no insert for a suppressed repost, got %+v", result)
	}
	if len(postings.postings) != 0 {
		t.Errorf("Expected repost to stay out of the store, got %d rows", len(postings.postings))
	}
}

func TestPipeline_Ingest_ExpiredSignatureDoesNotSuppress(t *testing.T) {
	postings := newFakePostingRepo()
	signatures := newFakeSignatureRepo()
	pipeline := newTestPipeline(postings, signatures)

	// Evaluated well outside the 30 day window
	signatures.RecordApplied("acme", "backend engineer", "Ireland", "old-posting-id",
		time.Now().UTC().AddDate(0, 0, -45))

	batch := testBatch(
		RawRecord{Title: "Backend Engineer", Company: "ACME", Location: "Dublin", Country: "Ireland", JobURL: "https://example.com/1"},
	)

	result := pipeline.Ingest(context.Background(), batch)

	if result.New != 1 || result.SkippedReposts != 0 {
		t.Errorf("Expected expired signature to be ignored, got %+v", result)
	}
}

func TestPipeline_Ingest_RecordErrorsIsolated(t *testing.T) {
	postings := newFakePostingRepo()
	pipeline := newTestPipeline(postings, newFakeSignatureRepo())

	failing := RawRecord{Title: "Broken Record", Company: "ACME", Location: "Dublin", Country: "Ireland", JobURL: "https://example.com/1"}
	postings.failFor[PostingID(failing.Title, failing.Company, failing.Location)] = errors.New("disk full")

	batch := testBatch(
		failing,
		RawRecord{Title: "Backend Engineer", Company: "ACME", Location: "Dublin", Country: "Ireland", JobURL: "https://example.com/2"},
	)

	result := pipeline.Ingest(context.Background(), batch)

	if result.Errors != 1 {
		t.Errorf("Expected 1 error, got %+v", result)
	}
	if result.New != 1 {
		t.Errorf("Expected the healthy record to commit, got %+v", result)
	}
}

func TestPipeline_Ingest_InvalidRecordsCounted(t *testing.T) {
	postings := newFakePostingRepo()
	pipeline := newTestPipeline(postings, newFakeSignatureRepo())

	batch := map[string]RawRecord{
		"missing-title": {Company: "ACME", JobURL: "https://example.com/1"},
		"missing-url":   {Title: "Backend Engineer", Company: "ACME"},
	}

	result := pipeline.Ingest(context.Background(), batch)

	if result.Errors != 2 {
		t.Errorf("Expected 2 errors for invalid records, got %+v", result)
	}
	if len(postings.postings) != 0 {
		t.Errorf("Expected no rows from invalid records, got %d", len(postings.postings))
	}
}

func TestPipeline_Ingest_BackfillsJobType(t *testing.T) {
	postings := newFakePostingRepo()
	pipeline := newTestPipeline(postings, newFakeSignatureRepo())

	batch := testBatch(
		RawRecord{Title: "HR Business Partner", Company: "ACME", Location: "Dublin", Country: "Ireland", JobURL: "https://example.com/1"},
	)

	pipeline.Ingest(context.Background(), batch)

	id := PostingID("HR Business Partner", "ACME", "Dublin")
	if got := postings.postings[id].JobType; got != "hr" {
		t.Errorf("Expected backfilled job type hr, got %q", got)
	}
}

func TestPipeline_Ingest_RunsRetentionPass(t *testing.T) {
	postings := newFakePostingRepo()
	signatures := newFakeSignatureRepo()
	pipeline := NewPipeline(postings, signatures, NewEnforcer(postings), nil, 30, 2)

	var records []RawRecord
	for i := 0; i < 4; i++ {
		records = append(records, RawRecord{
			Title:   fmt.Sprintf("Engineer %d", i),
			Company: "ACME", Location: "Dublin", Country: "Ireland",
			JobURL: fmt.Sprintf("https://example.com/%d", i),
		})
	}

	result := pipeline.Ingest(context.Background(), testBatch(records...))

	if result.New != 4 {
		t.Errorf("Expected 4 inserts, got %+v", result)
	}
	if result.Deleted != 2 {
		t.Errorf("Expected 2 evictions over the cap of 2, got %+v", result)
	}
	if len(postings.postings) != 2 {
		t.Errorf("Expected 2 surviving rows, got %d", len(postings.postings))
	}
}

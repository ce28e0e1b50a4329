package jobs

import (
	"time"

	"github.com/nickykapur/jobpool/app/database"
)

// RawRecord is one freshly scraped posting as delivered by a scrape source.
// Every field except Title and JobURL may be missing or empty.
type RawRecord struct {
	Title           string     `json:"title"`
	Company         string     `json:"company"`
	Location        string     `json:"location"`
	JobURL          string     `json:"job_url"`
	PostedDate      string     `json:"posted_date"`
	Country         string     `json:"country,omitempty"`
	JobType         string     `json:"job_type,omitempty"`
	ExperienceLevel string     `json:"experience_level,omitempty"`
	Description     string     `json:"description,omitempty"`
	EasyApply       bool       `json:"easy_apply,omitempty"`
	Remote          bool       `json:"remote,omitempty"`
	ScrapedAt       *time.Time `json:"scraped_at,omitempty"`
}

// IngestResult reports what one batch did. Counts reflect only operations
// that completed; a record that errored contributes to Errors alone.
type IngestResult struct {
	New            int `json:"new_jobs"`
	Updated        int `json:"updated_jobs"`
	SkippedReposts int `json:"skipped_reposts"`
	Deleted        int `json:"deleted_jobs"`
	Errors         int `json:"errors"`
}

// QuotaResult reports one retention pass.
type QuotaResult struct {
	Deleted             int `json:"jobs_deleted"`
	PartitionsProcessed int `json:"countries_processed"`
}

// InteractionPatch is a partial update to one user's overlay on one posting.
// Nil fields are left unchanged.
type InteractionPatch struct {
	Applied  *bool   `json:"applied,omitempty"`
	Rejected *bool   `json:"rejected,omitempty"`
	Saved    *bool   `json:"saved,omitempty"`
	Hidden   *bool   `json:"hidden,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Rating   *int    `json:"rating,omitempty"`
}

// JobView is a canonical posting with one user's overlay merged in. The
// overlay flags shadow the posting's legacy applied/rejected columns.
type JobView struct {
	database.Posting
	Applied  bool   `json:"applied"`
	Rejected bool   `json:"rejected"`
	Saved    bool   `json:"saved"`
	Notes    string `json:"notes,omitempty"`
	Rating   *int   `json:"rating,omitempty"`
}

package docmirror

import (
	"context"
	"time"
)

// Page outcome statuses recorded in the run report.
const (
	PageSaved   = "saved"
	PageSkipped = "skipped"

	// PageDuplicate marks a retained link that repeats an already-fetched
	// href. Its file name points at the earlier download's file.
	PageDuplicate = "duplicate"
)

// Run represents one mirroring run.
type Run struct {
	ID         string    `json:"id"`
	BaseURL    string    `json:"baseUrl"`
	OutputPath string    `json:"outputPath"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Saved      int       `json:"saved"`
	Skipped    int       `json:"skipped"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.ID == "" {
		return Errorf(EINVALID, "run ID required")
	}
	if r.BaseURL == "" {
		return Errorf(EINVALID, "run base URL required")
	}
	return nil
}

// PageRecord is the recorded outcome for a single retained link within a run.
type PageRecord struct {
	RunID       string    `json:"runId"`
	URL         string    `json:"url"`
	Label       string    `json:"label"`
	FileName    string    `json:"fileName"`
	Status      string    `json:"status"`
	Error       string    `json:"error"`
	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Validate returns an error if the record contains invalid fields.
func (p *PageRecord) Validate() error {
	if p.RunID == "" {
		return Errorf(EINVALID, "page record run ID required")
	}
	if p.URL == "" {
		return Errorf(EINVALID, "page record URL required")
	}
	return nil
}

// ManifestWriter persists a machine-readable description of the mirror
// alongside the output tree.
type ManifestWriter interface {
	// WriteManifest writes one entry per saved page with its source URL,
	// local file, and content digest.
	WriteManifest(ctx context.Context, run *Run, pages []*PageRecord) error
}

// ReportService records run outcomes so completeness can be inspected after
// the fact. Failures are surfaced only through logs during a run; the report
// is the structured record of what actually happened.
type ReportService interface {
	// CreateRun records the start of a run.
	CreateRun(ctx context.Context, run *Run) error

	// FinishRun records a run's final counters and finish time.
	// Returns ENOTFOUND if the run does not exist.
	FinishRun(ctx context.Context, run *Run) error

	// RecordPage records the outcome for one retained link.
	RecordPage(ctx context.Context, rec *PageRecord) error

	// FindPagesByRun returns all page records for a run in fetch order.
	FindPagesByRun(ctx context.Context, runID string) ([]*PageRecord, error)
}

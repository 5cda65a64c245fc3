package sqlite

import (
	"context"
	"time"

	"github.com/fwojciec/docmirror"
)

// Ensure ReportService implements docmirror.ReportService at compile time.
var _ docmirror.ReportService = (*ReportService)(nil)

// ReportService records mirroring runs and per-page outcomes in SQLite.
type ReportService struct {
	db *DB
}

// NewReportService creates a new ReportService backed by db.
func NewReportService(db *DB) *ReportService {
	return &ReportService{db: db}
}

// CreateRun records the start of a run.
func (s *ReportService) CreateRun(ctx context.Context, run *docmirror.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, base_url, output_path, started_at)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.BaseURL, run.OutputPath, formatTime(run.StartedAt))
	return err
}

// FinishRun records a run's final counters and finish time.
func (s *ReportService) FinishRun(ctx context.Context, run *docmirror.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, saved = ?, skipped = ?
		WHERE id = ?
	`, formatTime(run.FinishedAt), run.Saved, run.Skipped, run.ID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return docmirror.Errorf(docmirror.ENOTFOUND, "run %q not found", run.ID)
	}
	return nil
}

// RecordPage records the outcome for one retained link.
func (s *ReportService) RecordPage(ctx context.Context, rec *docmirror.PageRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (run_id, url, label, file_name, status, error, content_hash, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.RunID, rec.URL, rec.Label, rec.FileName, rec.Status, rec.Error, rec.ContentHash, formatTime(rec.FetchedAt))
	return err
}

// FindPagesByRun returns all page records for a run in fetch order.
func (s *ReportService) FindPagesByRun(ctx context.Context, runID string) ([]*docmirror.PageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, url, label, file_name, status, error, content_hash, fetched_at
		FROM pages
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*docmirror.PageRecord
	for rows.Next() {
		var rec docmirror.PageRecord
		var fetchedAt string
		if err := rows.Scan(
			&rec.RunID,
			&rec.URL,
			&rec.Label,
			&rec.FileName,
			&rec.Status,
			&rec.Error,
			&rec.ContentHash,
			&fetchedAt,
		); err != nil {
			return nil, err
		}
		rec.FetchedAt = parseTime(fetchedAt)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// formatTime serializes a time for storage, normalized to UTC.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime deserializes a stored time. Unparseable values yield the zero
// time rather than an error; stored values are always produced by
// formatTime.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

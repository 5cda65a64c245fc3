package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.ReportService = (*ReportService)(nil)

// ReportService is a mock implementation of docmirror.ReportService.
type ReportService struct {
	CreateRunFn      func(ctx context.Context, run *docmirror.Run) error
	FinishRunFn      func(ctx context.Context, run *docmirror.Run) error
	RecordPageFn     func(ctx context.Context, rec *docmirror.PageRecord) error
	FindPagesByRunFn func(ctx context.Context, runID string) ([]*docmirror.PageRecord, error)
}

func (s *ReportService) CreateRun(ctx context.Context, run *docmirror.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *ReportService) FinishRun(ctx context.Context, run *docmirror.Run) error {
	return s.FinishRunFn(ctx, run)
}

func (s *ReportService) RecordPage(ctx context.Context, rec *docmirror.PageRecord) error {
	return s.RecordPageFn(ctx, rec)
}

func (s *ReportService) FindPagesByRun(ctx context.Context, runID string) ([]*docmirror.PageRecord, error) {
	return s.FindPagesByRunFn(ctx, runID)
}

var _ docmirror.ManifestWriter = (*ManifestWriter)(nil)

// ManifestWriter is a mock implementation of docmirror.ManifestWriter.
type ManifestWriter struct {
	WriteManifestFn func(ctx context.Context, run *docmirror.Run, pages []*docmirror.PageRecord) error
}

func (w *ManifestWriter) WriteManifest(ctx context.Context, run *docmirror.Run, pages []*docmirror.PageRecord) error {
	return w.WriteManifestFn(ctx, run, pages)
}

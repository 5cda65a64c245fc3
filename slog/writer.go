// Package slog provides logging decorators for docmirror interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docmirror"
)

// Ensure LoggingWriter implements docmirror.OutputWriter.
var _ docmirror.OutputWriter = (*LoggingWriter)(nil)

// LoggingWriter wraps an OutputWriter with debug logging.
type LoggingWriter struct {
	next   docmirror.OutputWriter
	logger *slog.Logger
}

// NewLoggingWriter creates a new LoggingWriter.
func NewLoggingWriter(next docmirror.OutputWriter, logger *slog.Logger) *LoggingWriter {
	return &LoggingWriter{next: next, logger: logger}
}

// WriteIndex logs the write and delegates to the wrapped writer.
func (w *LoggingWriter) WriteIndex(ctx context.Context, html string) (err error) {
	defer func(begin time.Time) {
		w.logger.Info("write index",
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteIndex(ctx, html)
}

// ReadIndex delegates to the wrapped writer.
func (w *LoggingWriter) ReadIndex(ctx context.Context) (string, error) {
	return w.next.ReadIndex(ctx)
}

// WritePage logs the write and delegates to the wrapped writer.
func (w *LoggingWriter) WritePage(ctx context.Context, page *docmirror.SanitizedPage) (err error) {
	defer func(begin time.Time) {
		w.logger.Info("write page",
			"file", page.FileName,
			"bytes", len(page.Content),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WritePage(ctx, page)
}

// PageExists delegates to the wrapped writer.
func (w *LoggingWriter) PageExists(name string) bool {
	return w.next.PageExists(name)
}

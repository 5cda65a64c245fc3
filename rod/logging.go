package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docmirror"
)

// Ensure LoggingSession implements docmirror.Session.
var _ docmirror.Session = (*LoggingSession)(nil)

// LoggingSession wraps a Session with debug logging for the operations that
// touch the network or mutate page state.
type LoggingSession struct {
	next   docmirror.Session
	logger *slog.Logger
}

// NewLoggingSession creates a new LoggingSession.
func NewLoggingSession(next docmirror.Session, logger *slog.Logger) *LoggingSession {
	return &LoggingSession{next: next, logger: logger}
}

// Navigate logs the URL being loaded and delegates to the wrapped session.
func (s *LoggingSession) Navigate(ctx context.Context, url string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("navigate",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Navigate(ctx, url)
}

// Find delegates to the wrapped session.
func (s *LoggingSession) Find(selector string) (docmirror.Element, error) {
	return s.next.Find(selector)
}

// FindAll delegates to the wrapped session.
func (s *LoggingSession) FindAll(selector string) ([]docmirror.Element, error) {
	return s.next.FindAll(selector)
}

// WaitUntil delegates to the wrapped session.
func (s *LoggingSession) WaitUntil(ctx context.Context, timeout time.Duration, pred func() (bool, error)) error {
	return s.next.WaitUntil(ctx, timeout, pred)
}

// VisibleHTML logs the probe target and delegates to the wrapped session.
func (s *LoggingSession) VisibleHTML(ctx context.Context, selector string) (markup string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("visibility probe",
			"selector", selector,
			"bytes", len(markup),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.VisibleHTML(ctx, selector)
}

// Close delegates to the wrapped session.
func (s *LoggingSession) Close() error {
	return s.next.Close()
}

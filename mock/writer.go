package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.OutputWriter = (*OutputWriter)(nil)

// OutputWriter is a mock implementation of docmirror.OutputWriter.
type OutputWriter struct {
	WriteIndexFn func(ctx context.Context, html string) error
	ReadIndexFn  func(ctx context.Context) (string, error)
	WritePageFn  func(ctx context.Context, page *docmirror.SanitizedPage) error
	PageExistsFn func(name string) bool
}

func (w *OutputWriter) WriteIndex(ctx context.Context, html string) error {
	return w.WriteIndexFn(ctx, html)
}

func (w *OutputWriter) ReadIndex(ctx context.Context) (string, error) {
	return w.ReadIndexFn(ctx)
}

func (w *OutputWriter) WritePage(ctx context.Context, page *docmirror.SanitizedPage) error {
	return w.WritePageFn(ctx, page)
}

func (w *OutputWriter) PageExists(name string) bool {
	return w.PageExistsFn(name)
}

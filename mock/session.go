// Package mock provides function-field mock implementations of the
// docmirror interfaces.
package mock

import (
	"context"
	"time"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.Session = (*Session)(nil)

// Session is a mock implementation of docmirror.Session.
//
// WaitUntil has a default behavior when WaitUntilFn is nil: it polls pred in
// a tight loop for at most the given timeout, which is what most tests want.
type Session struct {
	NavigateFn    func(ctx context.Context, url string) error
	FindFn        func(selector string) (docmirror.Element, error)
	FindAllFn     func(selector string) ([]docmirror.Element, error)
	WaitUntilFn   func(ctx context.Context, timeout time.Duration, pred func() (bool, error)) error
	VisibleHTMLFn func(ctx context.Context, selector string) (string, error)
	CloseFn       func() error
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.NavigateFn(ctx, url)
}

func (s *Session) Find(selector string) (docmirror.Element, error) {
	return s.FindFn(selector)
}

func (s *Session) FindAll(selector string) ([]docmirror.Element, error) {
	return s.FindAllFn(selector)
}

func (s *Session) WaitUntil(ctx context.Context, timeout time.Duration, pred func() (bool, error)) error {
	if s.WaitUntilFn != nil {
		return s.WaitUntilFn(ctx, timeout, pred)
	}
	deadline := time.Now().Add(timeout)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := pred()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return docmirror.Errorf(docmirror.ETIMEOUT, "condition not met within %s", timeout)
		}
	}
}

func (s *Session) VisibleHTML(ctx context.Context, selector string) (string, error) {
	return s.VisibleHTMLFn(ctx, selector)
}

func (s *Session) Close() error {
	return s.CloseFn()
}

var _ docmirror.Element = (*Element)(nil)

// Element is a mock implementation of docmirror.Element.
type Element struct {
	AttrFn    func(name string) (string, error)
	TextFn    func() (string, error)
	HTMLFn    func() (string, error)
	ClickFn   func(ctx context.Context) error
	FindFn    func(selector string) (docmirror.Element, error)
	FindAllFn func(selector string) ([]docmirror.Element, error)
}

func (e *Element) Attr(name string) (string, error) {
	return e.AttrFn(name)
}

func (e *Element) Text() (string, error) {
	return e.TextFn()
}

func (e *Element) HTML() (string, error) {
	return e.HTMLFn()
}

func (e *Element) Click(ctx context.Context) error {
	return e.ClickFn(ctx)
}

func (e *Element) Find(selector string) (docmirror.Element, error) {
	return e.FindFn(selector)
}

func (e *Element) FindAll(selector string) ([]docmirror.Element, error) {
	return e.FindAllFn(selector)
}

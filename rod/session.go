// Package rod implements the rendered-session capability on go-rod driven
// Chrome browser automation.
package rod

import (
	"context"
	"time"

	"github.com/fwojciec/docmirror"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultPollInterval is the polling cadence used by WaitUntil.
const DefaultPollInterval = 100 * time.Millisecond

// visibleHTMLJS reconstructs the markup of a subtree keeping only elements
// that are rendered visible. Invisible elements are dropped together with
// their descendants; attributes of visible elements are preserved verbatim.
const visibleHTMLJS = `(selector) => {
	const root = document.querySelector(selector);
	if (!root) {
		return "";
	}
	const visible = (el) => {
		if (el.hidden) {
			return false;
		}
		const style = window.getComputedStyle(el);
		if (style.display === "none" || style.visibility === "hidden") {
			return false;
		}
		const rect = el.getBoundingClientRect();
		return rect.width > 0 || rect.height > 0;
	};
	const rebuild = (el) => {
		if (!visible(el)) {
			return null;
		}
		const clone = el.cloneNode(false);
		for (const child of el.childNodes) {
			if (child.nodeType === Node.TEXT_NODE) {
				clone.appendChild(child.cloneNode(true));
			} else if (child.nodeType === Node.ELEMENT_NODE) {
				const rebuilt = rebuild(child);
				if (rebuilt) {
					clone.appendChild(rebuilt);
				}
			}
		}
		return clone;
	};
	const rebuilt = rebuild(root);
	return rebuilt ? rebuilt.outerHTML : "";
}`

// Ensure Session implements docmirror.Session at compile time.
var _ docmirror.Session = (*Session)(nil)

// Session drives a single browser page through the whole mirroring run.
// A Session is not safe for concurrent use; the mirroring engine issues one
// logical sequence of operations.
type Session struct {
	manager      *BrowserManager
	ownsManager  bool
	page         *rod.Page
	pollInterval time.Duration
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithManager makes the Session use a shared BrowserManager instead of
// launching its own browser. The caller remains responsible for closing the
// manager.
func WithManager(m *BrowserManager) SessionOption {
	return func(s *Session) {
		s.manager = m
		s.ownsManager = false
	}
}

// WithPollInterval sets the polling cadence used by WaitUntil.
func WithPollInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		s.pollInterval = d
	}
}

// NewSession creates a Session backed by a headless Chrome page. Close must
// be called when the Session is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewSession(opts ...SessionOption) (*Session, error) {
	s := &Session{
		ownsManager:  true,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.manager == nil {
		m, err := NewBrowserManager()
		if err != nil {
			return nil, err
		}
		s.manager = m
	}

	page, err := s.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		if s.ownsManager {
			_ = s.manager.Close()
		}
		return nil, docmirror.Errorf(docmirror.EUNAVAILABLE, "opening browser page: %v", err)
	}
	s.page = page

	return s, nil
}

// Navigate implements docmirror.Session.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	page := s.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return docmirror.Errorf(docmirror.EUNAVAILABLE, "navigating to %s: %v", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return docmirror.Errorf(docmirror.EUNAVAILABLE, "waiting for %s to load: %v", url, err)
	}

	s.manager.IncrementPageCount()
	return nil
}

// Find implements docmirror.Session. The lookup does not wait: an element
// absent from the current document returns ENOTFOUND immediately.
func (s *Session) Find(selector string) (docmirror.Element, error) {
	found, el, err := s.page.Has(selector)
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINTERNAL, "finding %q: %v", selector, err)
	}
	if !found {
		return nil, docmirror.Errorf(docmirror.ENOTFOUND, "no element matches %q", selector)
	}
	return &element{el: el}, nil
}

// FindAll implements docmirror.Session.
func (s *Session) FindAll(selector string) ([]docmirror.Element, error) {
	els, err := s.page.Elements(selector)
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINTERNAL, "finding %q: %v", selector, err)
	}
	out := make([]docmirror.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out, nil
}

// WaitUntil implements docmirror.Session.
func (s *Session) WaitUntil(ctx context.Context, timeout time.Duration, pred func() (bool, error)) error {
	deadline := time.Now().Add(timeout)
	for {
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
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}

// VisibleHTML implements docmirror.Session by evaluating a DOM-walking
// probe inside the page.
func (s *Session) VisibleHTML(ctx context.Context, selector string) (string, error) {
	obj, err := s.page.Context(ctx).Eval(visibleHTMLJS, selector)
	if err != nil {
		return "", docmirror.Errorf(docmirror.EINTERNAL, "visibility probe for %q: %v", selector, err)
	}
	markup := obj.Value.Str()
	if markup == "" {
		return "", docmirror.Errorf(docmirror.ENOTFOUND, "no visible content matches %q", selector)
	}
	return markup, nil
}

// Close releases the page and, when the Session launched its own browser,
// the browser as well.
func (s *Session) Close() error {
	err := s.page.Close()
	if s.ownsManager {
		if cerr := s.manager.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// element adapts a rod element to docmirror.Element.
type element struct {
	el *rod.Element
}

var _ docmirror.Element = (*element)(nil)

func (e *element) Attr(name string) (string, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", docmirror.Errorf(docmirror.EINTERNAL, "reading attribute %q: %v", name, err)
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

func (e *element) Text() (string, error) {
	return e.el.Text()
}

func (e *element) HTML() (string, error) {
	return e.el.HTML()
}

func (e *element) Click(ctx context.Context) error {
	if err := e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return docmirror.Errorf(docmirror.EUNAVAILABLE, "clicking element: %v", err)
	}
	return nil
}

func (e *element) Find(selector string) (docmirror.Element, error) {
	found, el, err := e.el.Has(selector)
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINTERNAL, "finding %q: %v", selector, err)
	}
	if !found {
		return nil, docmirror.Errorf(docmirror.ENOTFOUND, "no element matches %q", selector)
	}
	return &element{el: el}, nil
}

func (e *element) FindAll(selector string) ([]docmirror.Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINTERNAL, "finding %q: %v", selector, err)
	}
	out := make([]docmirror.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out, nil
}

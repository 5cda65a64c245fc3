package docmirror

import (
	"context"
	"time"
)

// Element is a handle to one element in the live rendered DOM.
//
// Handles are bound to the session's current document and are invalidated by
// navigation or by re-renders triggered through Click. After any mutating
// interaction callers must re-resolve the element by a stable identifier
// rather than reuse a held handle.
type Element interface {
	// Attr returns the value of the named attribute, or "" if the
	// attribute is absent.
	Attr(name string) (string, error)

	// Text returns the element's visible text content.
	Text() (string, error)

	// HTML returns the element's outer markup.
	HTML() (string, error)

	// Click triggers the element's default interaction.
	Click(ctx context.Context) error

	// Find returns the first descendant matching the selector.
	// Returns ENOTFOUND if no descendant matches.
	Find(selector string) (Element, error)

	// FindAll returns all descendants matching the selector.
	FindAll(selector string) ([]Element, error)
}

// Session is the rendered-page capability consumed by the mirroring engine.
// Implementations drive a real browser; the engine only depends on this
// surface. A Session is not safe for concurrent use: the engine issues a
// single logical sequence of operations.
type Session interface {
	// Navigate loads the URL and waits for the initial render.
	Navigate(ctx context.Context, url string) error

	// Find returns the first element in the current document matching the
	// selector. Returns ENOTFOUND if no element matches.
	Find(selector string) (Element, error)

	// FindAll returns all elements in the current document matching the
	// selector.
	FindAll(selector string) ([]Element, error)

	// WaitUntil polls pred until it reports true or the timeout elapses.
	// Returns ETIMEOUT when the timeout elapses first. Errors returned by
	// pred end the wait immediately.
	WaitUntil(ctx context.Context, timeout time.Duration, pred func() (bool, error)) error

	// VisibleHTML reconstructs the markup of the subtree rooted at the
	// first element matching the selector, keeping only elements that are
	// rendered visible (not display:none, not hidden, non-zero box) with
	// their attributes verbatim. Invisible subtrees are dropped entirely.
	VisibleHTML(ctx context.Context, selector string) (string, error)

	// Close releases the underlying browser resources.
	// Must be called when the Session is no longer needed.
	Close() error
}

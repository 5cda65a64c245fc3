package docmirror

import "context"

// SanitizedPage is the cleaned markup of one downloaded page plus its target
// filename. Created once per retained link, written once, never mutated
// after the write.
type SanitizedPage struct {
	// URL is the remote page the content was fetched from.
	URL string

	// FileName is the local file name derived by FileName from the
	// page's retained link.
	FileName string

	// Content is the sanitized markup.
	Content string
}

// ContentSanitizer cleans the visible-content markup of a downloaded page.
type ContentSanitizer interface {
	// Sanitize removes the fixed set of noise regions and interactive
	// controls, strips every remaining attribute, and appends the
	// back-to-menu affordance. Applying Sanitize to its own output is a
	// no-op apart from appending a second back link.
	Sanitize(contentHTML string) (string, error)
}

// OutputWriter persists the mirror's output tree: one navigation file plus a
// flat directory of page files.
type OutputWriter interface {
	// WriteIndex writes the navigation file.
	WriteIndex(ctx context.Context, html string) error

	// ReadIndex reads the navigation file back.
	// Returns ENOTFOUND if it has not been written.
	ReadIndex(ctx context.Context) (string, error)

	// WritePage writes one page file under the pages directory, creating
	// the directory if absent. A later write to the same name silently
	// overwrites an earlier one.
	WritePage(ctx context.Context, page *SanitizedPage) error

	// PageExists reports whether a page file with the given name exists.
	PageExists(name string) bool
}

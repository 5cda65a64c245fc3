package docmirror

// RetainedLink is a navigation entry whose target lies under the site root
// and therefore qualifies for download. It is the unit of work for page
// fetching and the unit of correspondence for index link rewriting: the local
// filename derived from it is a pure function of (URL, Label), so download
// and rewrite passes agree by construction.
type RetainedLink struct {
	// URL is the absolute remote target.
	URL string

	// Label is the link's display text at extraction time.
	Label string
}

// MenuSanitizer reduces the fully expanded navigation tree markup to a
// minimal tree of nested lists and anchors.
type MenuSanitizer interface {
	// Sanitize prunes list items whose direct link target does not start
	// with baseURL, strips all attributes except link hrefs, and appends
	// the CLI pivot marker to each retained href.
	Sanitize(menuHTML string, baseURL string) (string, error)
}

// LinkExtractor extracts retained links from sanitized menu markup.
type LinkExtractor interface {
	// RetainedLinks returns every link in the menu whose target starts
	// with baseURL, in document order.
	RetainedLinks(menuHTML string, baseURL string) ([]RetainedLink, error)
}

// IndexRewriter rewrites the saved navigation page so retained links point
// at local files.
type IndexRewriter interface {
	// Rewrite replaces the target of every link starting with baseURL
	// with the relative path of its local page file, derived from the
	// link's current label text.
	Rewrite(indexHTML string, baseURL string) (string, error)
}

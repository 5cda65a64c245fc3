package docmirror

import "strings"

// Config holds the two values every stage of the pipeline needs. It is read
// once at startup and threaded explicitly through constructors; nothing in
// the pipeline reads ambient configuration.
type Config struct {
	// BaseURL is the site root. Only links whose target starts with it
	// are retained.
	BaseURL string

	// OutputPath is the destination directory for the mirror.
	OutputPath string
}

// Validate returns an error if the configuration is incomplete.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return Errorf(EINVALID, "base URL required")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return Errorf(EINVALID, "output path required")
	}
	return nil
}

// MirrorProgress reports progress while pages are downloaded.
type MirrorProgress struct {
	URL       string
	Completed int
	Total     int
	Error     error
}

// MirrorProgressFunc is called once per retained link as the download batch
// proceeds.
type MirrorProgressFunc func(MirrorProgress)

// Result holds the outcome of one mirroring run.
type Result struct {
	// Expanded is the number of tree items successfully expanded.
	Expanded int

	// ExpandFailed is the number of tree items skipped because their
	// expansion failed; their subtrees remain unmirrored.
	ExpandFailed int

	// Links is the number of retained links discovered in the menu.
	Links int

	// Saved is the number of page files written.
	Saved int

	// Skipped is the number of retained links that produced no new page
	// file: fetch failures and duplicates of an already-fetched href.
	Skipped int
}

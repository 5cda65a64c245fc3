package mock

import "github.com/fwojciec/docmirror"

var _ docmirror.MenuSanitizer = (*MenuSanitizer)(nil)

// MenuSanitizer is a mock implementation of docmirror.MenuSanitizer.
type MenuSanitizer struct {
	SanitizeFn func(menuHTML string, baseURL string) (string, error)
}

func (s *MenuSanitizer) Sanitize(menuHTML string, baseURL string) (string, error) {
	return s.SanitizeFn(menuHTML, baseURL)
}

var _ docmirror.ContentSanitizer = (*ContentSanitizer)(nil)

// ContentSanitizer is a mock implementation of docmirror.ContentSanitizer.
type ContentSanitizer struct {
	SanitizeFn func(contentHTML string) (string, error)
}

func (s *ContentSanitizer) Sanitize(contentHTML string) (string, error) {
	return s.SanitizeFn(contentHTML)
}

var _ docmirror.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of docmirror.LinkExtractor.
type LinkExtractor struct {
	RetainedLinksFn func(menuHTML string, baseURL string) ([]docmirror.RetainedLink, error)
}

func (e *LinkExtractor) RetainedLinks(menuHTML string, baseURL string) ([]docmirror.RetainedLink, error) {
	return e.RetainedLinksFn(menuHTML, baseURL)
}

var _ docmirror.IndexRewriter = (*IndexRewriter)(nil)

// IndexRewriter is a mock implementation of docmirror.IndexRewriter.
type IndexRewriter struct {
	RewriteFn func(indexHTML string, baseURL string) (string, error)
}

func (r *IndexRewriter) Rewrite(indexHTML string, baseURL string) (string, error) {
	return r.RewriteFn(indexHTML, baseURL)
}

package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docmirror"
)

// Ensure LinkExtractor implements docmirror.LinkExtractor at compile time.
var _ docmirror.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor extracts retained links from sanitized menu markup.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// RetainedLinks implements docmirror.LinkExtractor. Links are returned in
// document order; the label is the anchor's trimmed text, exactly the value
// FileName is fed at download time.
func (e *LinkExtractor) RetainedLinks(menuHTML string, baseURL string) ([]docmirror.RetainedLink, error) {
	body, err := fragment(menuHTML)
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "failed to parse menu markup: %v", err)
	}

	var links []docmirror.RetainedLink
	body.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, baseURL) {
			return
		}
		links = append(links, docmirror.RetainedLink{
			URL:   href,
			Label: strings.TrimSpace(a.Text()),
		})
	})

	return links, nil
}

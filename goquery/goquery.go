// Package goquery implements the markup transforms of the mirroring
// pipeline: menu sanitization, page content sanitization, retained-link
// extraction, and index link rewriting.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// pivotMarker is the query marker appended to every retained menu link so
// downloaded pages render their CLI variant.
const pivotMarker = "pivots=cli"

// resolveURL resolves a relative href against a base URL.
// Returns empty string if the href cannot be parsed.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// withPivotMarker appends the pivot marker to a URL's query string, using
// "&" if the URL already has one. Fragments stay at the end.
func withPivotMarker(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.RawQuery == "" {
		u.RawQuery = pivotMarker
	} else {
		u.RawQuery += "&" + pivotMarker
	}
	return u.String()
}

// stripAttributes removes every attribute from every element in the
// selection and its descendants. Anchors keep a single href attribute with
// the given value computed from the original; keepHref returning "" drops
// the href as well.
func stripAttributes(sel *goquery.Selection, keepHref func(href string) string) {
	sel.AddSelection(sel.Find("*")).Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			if node.Type != html.ElementNode {
				continue
			}
			if node.Data == "a" && keepHref != nil {
				if href, ok := s.Attr("href"); ok {
					if kept := keepHref(href); kept != "" {
						node.Attr = []html.Attribute{{Key: "href", Val: kept}}
						continue
					}
				}
			}
			node.Attr = nil
		}
	})
}

// fragment parses an HTML fragment and returns its body selection, which
// goquery guarantees to exist after parsing.
func fragment(markup string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	return doc.Find("body"), nil
}

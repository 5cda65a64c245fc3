package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docmirror"
)

// Ensure MenuSanitizer implements docmirror.MenuSanitizer at compile time.
var _ docmirror.MenuSanitizer = (*MenuSanitizer)(nil)

// MenuSanitizer reduces the fully expanded navigation tree to a minimal tree
// of nested lists and anchors: entries outside the site root are pruned,
// presentation attributes are stripped, and every retained href carries the
// CLI pivot marker.
type MenuSanitizer struct{}

// NewMenuSanitizer creates a new MenuSanitizer.
func NewMenuSanitizer() *MenuSanitizer {
	return &MenuSanitizer{}
}

// Sanitize implements docmirror.MenuSanitizer.
func (s *MenuSanitizer) Sanitize(menuHTML string, baseURL string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", docmirror.Errorf(docmirror.EINVALID, "invalid base URL: %v", err)
	}

	body, err := fragment(menuHTML)
	if err != nil {
		return "", docmirror.Errorf(docmirror.EINVALID, "failed to parse menu markup: %v", err)
	}

	root := body.Children().First()
	if root.Length() == 0 {
		return "", docmirror.Errorf(docmirror.EINVALID, "empty menu markup")
	}

	// Prune list items whose direct link child's target does not start
	// with the site root. Relative hrefs are resolved against the base
	// first and written back absolute, so the retained tree is
	// self-contained.
	root.Find("li").Each(func(_ int, li *goquery.Selection) {
		a := li.ChildrenFiltered("a").First()
		if a.Length() == 0 {
			return
		}
		href, _ := a.Attr("href")
		resolved := resolveURL(base, href)
		if !strings.HasPrefix(resolved, baseURL) {
			li.Remove()
			return
		}
		a.SetAttr("href", resolved)
	})

	// Anchors not guarded by a direct-child list item still must not leak
	// targets outside the site root.
	root.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		resolved := resolveURL(base, href)
		if !strings.HasPrefix(resolved, baseURL) {
			a.Remove()
			return
		}
		a.SetAttr("href", resolved)
	})

	stripAttributes(root, func(href string) string {
		return withPivotMarker(href)
	})

	return goquery.OuterHtml(root)
}

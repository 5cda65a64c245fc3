package crawl

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/docmirror"
)

// Default selectors for the navigation widget. They target ARIA tree
// markup inside the initial table-of-contents region, which is how the
// supported documentation sites render their collapsible navigation.
const (
	// DefaultTreeSelector selects candidate navigation containers.
	DefaultTreeSelector = `#affixed-left-container ul[role="tree"]`

	// DefaultItemLinkSelector finds the first entry link inside a
	// candidate container.
	DefaultItemLinkSelector = `li[role="treeitem"] a`
)

// Locator finds the canonical navigation tree on the rendered page: the
// candidate container whose first entry links back to the site root. Pages
// can carry several tree-like widgets (version pickers, language menus); the
// root-link test disambiguates.
type Locator struct {
	// TreeSelector selects candidate containers. Defaults to
	// DefaultTreeSelector.
	TreeSelector string

	// ItemLinkSelector finds the first entry link within a candidate.
	// Defaults to DefaultItemLinkSelector.
	ItemLinkSelector string
}

// Locate scans candidate containers and returns the first whose first entry
// link target has baseURL as a prefix. Candidates that raise lookup errors
// or have no qualifying first entry are skipped. Returns ENOTFOUND when no
// candidate matches; the caller treats that as fatal for the run.
func (l *Locator) Locate(ctx context.Context, sess docmirror.Session, baseURL string) (docmirror.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "invalid base URL: %v", err)
	}

	candidates, err := sess.FindAll(l.treeSelector())
	if err != nil {
		return nil, err
	}

	for _, cand := range candidates {
		a, err := cand.Find(l.itemLinkSelector())
		if err != nil {
			continue
		}
		href, err := a.Attr("href")
		if err != nil || href == "" {
			continue
		}
		if strings.HasPrefix(resolveURL(base, href), baseURL) {
			return cand, nil
		}
	}

	return nil, docmirror.Errorf(docmirror.ENOTFOUND, "no navigation tree matches %s", baseURL)
}

func (l *Locator) treeSelector() string {
	if l.TreeSelector != "" {
		return l.TreeSelector
	}
	return DefaultTreeSelector
}

func (l *Locator) itemLinkSelector() string {
	if l.ItemLinkSelector != "" {
		return l.ItemLinkSelector
	}
	return DefaultItemLinkSelector
}

// resolveURL resolves a relative href against a base URL.
// Returns empty string if the href cannot be parsed.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

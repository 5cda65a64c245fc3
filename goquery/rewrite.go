package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docmirror"
)

// Ensure IndexRewriter implements docmirror.IndexRewriter at compile time.
var _ docmirror.IndexRewriter = (*IndexRewriter)(nil)

// IndexRewriter rewrites the saved navigation page so every retained link
// points at its local page file. The file name is re-derived from the href
// and label present in the saved file with the same pure function the
// download pass used, so both passes agree for labels that survived
// serialization unchanged.
type IndexRewriter struct{}

// NewIndexRewriter creates a new IndexRewriter.
func NewIndexRewriter() *IndexRewriter {
	return &IndexRewriter{}
}

// Rewrite implements docmirror.IndexRewriter.
func (r *IndexRewriter) Rewrite(indexHTML string, baseURL string) (string, error) {
	body, err := fragment(indexHTML)
	if err != nil {
		return "", docmirror.Errorf(docmirror.EINVALID, "failed to parse navigation markup: %v", err)
	}

	body.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, baseURL) {
			return
		}
		label := strings.TrimSpace(a.Text())
		a.SetAttr("href", "pages/"+docmirror.FileName(href, label))
	})

	return body.Html()
}

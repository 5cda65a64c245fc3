package goquery

import (
	"github.com/fwojciec/docmirror"
)

// Ensure ContentSanitizer implements docmirror.ContentSanitizer at compile time.
var _ docmirror.ContentSanitizer = (*ContentSanitizer)(nil)

// noiseIDs are the fixed page regions removed from every downloaded page:
// the site header, the article metadata bar, the two live-region announcers,
// the additional-resources panel, and the inline-notifications panel.
var noiseIDs = []string{
	"headerAreaHolder",
	"article-header",
	"assertive-live-region",
	"polite-live-region",
	"ms--additional-resources",
	"ms--inline-notifications",
}

// feedbackSelector matches the page feedback widgets.
const feedbackSelector = ".feedback-section"

// backLinkHTML is the affordance appended to every sanitized page. Pages
// live in the pages directory, one level below the navigation file.
const backLinkHTML = `<div><a href="../index.html">Back to menu</a></div>`

// ContentSanitizer cleans the visible-content markup of a downloaded page.
// Sanitize is order-independent and idempotent on its own output apart from
// appending a second back link, which normal operation never does.
type ContentSanitizer struct{}

// NewContentSanitizer creates a new ContentSanitizer.
func NewContentSanitizer() *ContentSanitizer {
	return &ContentSanitizer{}
}

// Sanitize implements docmirror.ContentSanitizer.
func (s *ContentSanitizer) Sanitize(contentHTML string) (string, error) {
	body, err := fragment(contentHTML)
	if err != nil {
		return "", docmirror.Errorf(docmirror.EINVALID, "failed to parse page markup: %v", err)
	}

	for _, id := range noiseIDs {
		body.Find("#" + id).Remove()
	}
	body.Find(feedbackSelector).Remove()
	body.Find("button, form").Remove()

	stripAttributes(body.Children(), nil)

	// The back link becomes the last child of the main content region when
	// one survived sanitization, of the body otherwise.
	if main := body.Find("main").First(); main.Length() > 0 {
		main.AppendHtml(backLinkHTML)
	} else {
		body.AppendHtml(backLinkHTML)
	}

	return body.Html()
}

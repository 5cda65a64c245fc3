package crawl_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/bloom"
	"github.com/fwojciec/docmirror/crawl"
	"github.com/fwojciec/docmirror/goquery"
	"github.com/fwojciec/docmirror/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteRoot = "https://example.com/docs"

// site simulates a rendered documentation site behind the session interface
// plus an in-memory output tree behind the writer interface, so a whole run
// can execute against real markup transforms without a browser.
type site struct {
	mu sync.Mutex

	menuHTML string
	content  map[string]string // raw visible content by URL

	current string
	navs    []string

	index string
	files map[string]string
}

func newSite(menuHTML string, content map[string]string) *site {
	return &site{
		menuHTML: menuHTML,
		content:  content,
		files:    map[string]string{},
	}
}

func (s *site) session() *mock.Session {
	tree := &mock.Element{
		FindFn: func(selector string) (docmirror.Element, error) {
			return &mock.Element{
				AttrFn: func(name string) (string, error) { return siteRoot, nil },
			}, nil
		},
		FindAllFn: func(selector string) ([]docmirror.Element, error) {
			return nil, nil
		},
		HTMLFn: func() (string, error) { return s.menuHTML, nil },
	}
	return &mock.Session{
		NavigateFn: func(ctx context.Context, url string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.current = url
			s.navs = append(s.navs, url)
			return nil
		},
		FindFn: func(selector string) (docmirror.Element, error) {
			return &mock.Element{}, nil
		},
		FindAllFn: func(selector string) ([]docmirror.Element, error) {
			return []docmirror.Element{tree}, nil
		},
		VisibleHTMLFn: func(ctx context.Context, selector string) (string, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			raw, ok := s.content[s.current]
			if !ok {
				return "", docmirror.Errorf(docmirror.ENOTFOUND, "no visible content at %s", s.current)
			}
			return raw, nil
		},
		CloseFn: func() error { return nil },
	}
}

func (s *site) writer() *mock.OutputWriter {
	return &mock.OutputWriter{
		WriteIndexFn: func(ctx context.Context, html string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.index = html
			return nil
		},
		ReadIndexFn: func(ctx context.Context) (string, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.index, nil
		},
		WritePageFn: func(ctx context.Context, page *docmirror.SanitizedPage) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.files[page.FileName] = page.Content
			return nil
		},
		PageExistsFn: func(name string) bool {
			s.mu.Lock()
			defer s.mu.Unlock()
			_, ok := s.files[name]
			return ok
		},
	}
}

func newMirror(s *site) *crawl.Mirror {
	return &crawl.Mirror{
		Session:     s.session(),
		Expander:    testExpander(),
		Menu:        goquery.NewMenuSanitizer(),
		Links:       goquery.NewLinkExtractor(),
		Content:     goquery.NewContentSanitizer(),
		Rewriter:    goquery.NewIndexRewriter(),
		Writer:      s.writer(),
		WaitTimeout: 25 * time.Millisecond,
		PagePacer:   crawl.NewPacer(time.Millisecond),
	}
}

func testConfig() docmirror.Config {
	return docmirror.Config{BaseURL: siteRoot, OutputPath: "out"}
}

func TestMirror_Run(t *testing.T) {
	t.Parallel()

	menu := `<ul role="tree"><li role="treeitem" id="a1" aria-expanded="true"><a class="tree-link" href="https://example.com/docs">Overview</a><ul role="group"><li role="treeitem" id="a2"><a href="/docs/guides/intro">Intro</a></li><li role="treeitem" id="a3"><a href="https://other.com/x">External</a></li></ul></li></ul>`

	t.Run("mirrors every retained page and rewrites the navigation file", func(t *testing.T) {
		t.Parallel()

		s := newSite(menu, map[string]string{
			"https://example.com/docs?pivots=cli":              `<main><h1 class="title">Overview</h1><button>Share</button></main>`,
			"https://example.com/docs/guides/intro?pivots=cli": `<main><p>Intro body</p></main>`,
		})
		m := newMirror(s)

		result, err := m.Run(context.Background(), testConfig())

		require.NoError(t, err)
		assert.Equal(t, 2, result.Links)
		assert.Equal(t, 2, result.Saved)
		assert.Zero(t, result.Skipped)

		// Pages carry sanitized content and the back link.
		require.Contains(t, s.files, "Overview_docs.html")
		require.Contains(t, s.files, "Intro_intro.html")
		assert.Equal(t, `<main><h1>Overview</h1><div><a href="../index.html">Back to menu</a></div></main>`, s.files["Overview_docs.html"])
		assert.Contains(t, s.files["Intro_intro.html"], "Intro body")

		// The navigation file points at the local files and nothing else.
		assert.Contains(t, s.index, `href="pages/Overview_docs.html"`)
		assert.Contains(t, s.index, `href="pages/Intro_intro.html"`)
		assert.NotContains(t, s.index, "other.com")

		// The session visited the base page first, then each retained link
		// in menu order with the pivot marker attached.
		assert.Equal(t, []string{
			"https://example.com/docs",
			"https://example.com/docs?pivots=cli",
			"https://example.com/docs/guides/intro?pivots=cli",
		}, s.navs)
	})

	t.Run("a failed page is skipped while the rest of the run completes", func(t *testing.T) {
		t.Parallel()

		s := newSite(menu, map[string]string{
			"https://example.com/docs?pivots=cli": `<main><p>Overview</p></main>`,
			// The intro page never renders content.
		})
		m := newMirror(s)

		var records []*docmirror.PageRecord
		m.Reports = &mock.ReportService{
			CreateRunFn: func(ctx context.Context, run *docmirror.Run) error { return nil },
			FinishRunFn: func(ctx context.Context, run *docmirror.Run) error {
				assert.Equal(t, 1, run.Saved)
				assert.Equal(t, 1, run.Skipped)
				return nil
			},
			RecordPageFn: func(ctx context.Context, rec *docmirror.PageRecord) error {
				records = append(records, rec)
				return nil
			},
		}

		result, err := m.Run(context.Background(), testConfig())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 1, result.Skipped)
		assert.NotContains(t, s.files, "Intro_intro.html")

		require.Len(t, records, 2)
		assert.Equal(t, docmirror.PageSaved, records[0].Status)
		assert.NotEmpty(t, records[0].ContentHash)
		assert.Equal(t, docmirror.PageSkipped, records[1].Status)
		assert.NotEmpty(t, records[1].Error)
	})

	t.Run("duplicate menu entries download once and stay inspectable", func(t *testing.T) {
		t.Parallel()

		dupMenu := `<ul role="tree"><li id="a1"><a href="https://example.com/docs/guides/intro">Intro</a></li><li id="a2"><a href="https://example.com/docs/guides/intro">Intro</a></li></ul>`
		s := newSite(dupMenu, map[string]string{
			"https://example.com/docs/guides/intro?pivots=cli": `<main><p>Intro body</p></main>`,
		})
		m := newMirror(s)
		m.Seen = bloom.NewFilter(1000, 0.0001)

		var records []*docmirror.PageRecord
		m.Reports = &mock.ReportService{
			CreateRunFn: func(ctx context.Context, run *docmirror.Run) error { return nil },
			FinishRunFn: func(ctx context.Context, run *docmirror.Run) error { return nil },
			RecordPageFn: func(ctx context.Context, rec *docmirror.PageRecord) error {
				records = append(records, rec)
				return nil
			},
		}

		result, err := m.Run(context.Background(), testConfig())

		require.NoError(t, err)
		assert.Equal(t, 2, result.Links)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 1, result.Skipped)
		// Base navigation plus a single page visit.
		assert.Len(t, s.navs, 2)

		// The duplicate leaves a record pointing at the first download's
		// file rather than vanishing from the report.
		require.Len(t, records, 2)
		assert.Equal(t, docmirror.PageSaved, records[0].Status)
		assert.Equal(t, docmirror.PageDuplicate, records[1].Status)
		assert.Equal(t, records[0].FileName, records[1].FileName)
		assert.Empty(t, records[1].Error)
	})

	t.Run("a dedup false positive is flagged on its record", func(t *testing.T) {
		t.Parallel()

		s := newSite(menu, map[string]string{
			"https://example.com/docs?pivots=cli": `<main><p>Overview</p></main>`,
		})
		m := newMirror(s)
		m.Seen = bloom.NewFilter(1000, 0.0001)
		// The intro page was never fetched, but the filter claims it was.
		m.Seen.Add("https://example.com/docs/guides/intro?pivots=cli")

		var records []*docmirror.PageRecord
		m.Reports = &mock.ReportService{
			CreateRunFn: func(ctx context.Context, run *docmirror.Run) error { return nil },
			FinishRunFn: func(ctx context.Context, run *docmirror.Run) error { return nil },
			RecordPageFn: func(ctx context.Context, rec *docmirror.PageRecord) error {
				records = append(records, rec)
				return nil
			},
		}

		result, err := m.Run(context.Background(), testConfig())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 1, result.Skipped)
		assert.NotContains(t, s.files, "Intro_intro.html")

		require.Len(t, records, 2)
		dup := records[1]
		assert.Equal(t, docmirror.PageDuplicate, dup.Status)
		assert.Equal(t, "no file written for duplicate entry", dup.Error)
	})

	t.Run("progress stays contiguous across duplicate skips", func(t *testing.T) {
		t.Parallel()

		threeMenu := `<ul role="tree"><li id="a1"><a href="https://example.com/docs/guides/intro">Intro</a></li><li id="a2"><a href="https://example.com/docs/guides/intro">Intro</a></li><li id="a3"><a href="https://example.com/docs/guides/setup">Setup</a></li></ul>`
		s := newSite(threeMenu, map[string]string{
			"https://example.com/docs/guides/intro?pivots=cli": `<main><p>Intro body</p></main>`,
			"https://example.com/docs/guides/setup?pivots=cli": `<main><p>Setup body</p></main>`,
		})
		m := newMirror(s)
		m.Seen = bloom.NewFilter(1000, 0.0001)

		var completed []int
		m.Progress = func(p docmirror.MirrorProgress) {
			assert.Equal(t, 3, p.Total)
			completed = append(completed, p.Completed)
		}

		result, err := m.Run(context.Background(), testConfig())

		require.NoError(t, err)
		assert.Equal(t, 2, result.Saved)
		assert.Equal(t, []int{1, 2}, completed)
	})

	t.Run("reports progress for every download attempt", func(t *testing.T) {
		t.Parallel()

		s := newSite(menu, map[string]string{
			"https://example.com/docs?pivots=cli":              `<main><p>Overview</p></main>`,
			"https://example.com/docs/guides/intro?pivots=cli": `<main><p>Intro body</p></main>`,
		})
		m := newMirror(s)

		var progress []docmirror.MirrorProgress
		m.Progress = func(p docmirror.MirrorProgress) {
			progress = append(progress, p)
		}

		_, err := m.Run(context.Background(), testConfig())

		require.NoError(t, err)
		require.Len(t, progress, 2)
		assert.Equal(t, 1, progress[0].Completed)
		assert.Equal(t, 2, progress[0].Total)
		assert.Equal(t, 2, progress[1].Completed)
	})

	t.Run("a run report failure disables reporting without failing the run", func(t *testing.T) {
		t.Parallel()

		s := newSite(menu, map[string]string{
			"https://example.com/docs?pivots=cli":              `<main><p>Overview</p></main>`,
			"https://example.com/docs/guides/intro?pivots=cli": `<main><p>Intro body</p></main>`,
		})
		m := newMirror(s)

		var recorded, finished int
		m.Reports = &mock.ReportService{
			CreateRunFn: func(ctx context.Context, run *docmirror.Run) error {
				return docmirror.Errorf(docmirror.EUNAVAILABLE, "database locked")
			},
			FinishRunFn: func(ctx context.Context, run *docmirror.Run) error {
				finished++
				return nil
			},
			RecordPageFn: func(ctx context.Context, rec *docmirror.PageRecord) error {
				recorded++
				return nil
			},
		}

		result, err := m.Run(context.Background(), testConfig())

		require.NoError(t, err)
		assert.Equal(t, 2, result.Saved)
		assert.Zero(t, recorded)
		assert.Zero(t, finished)
	})

	t.Run("writes the manifest after the download batch", func(t *testing.T) {
		t.Parallel()

		s := newSite(menu, map[string]string{
			"https://example.com/docs?pivots=cli":              `<main><p>Overview</p></main>`,
			"https://example.com/docs/guides/intro?pivots=cli": `<main><p>Intro body</p></main>`,
		})
		m := newMirror(s)

		var manifestPages int
		m.Manifest = &mock.ManifestWriter{
			WriteManifestFn: func(ctx context.Context, run *docmirror.Run, pages []*docmirror.PageRecord) error {
				manifestPages = len(pages)
				assert.Equal(t, siteRoot, run.BaseURL)
				return nil
			},
		}

		_, err := m.Run(context.Background(), testConfig())

		require.NoError(t, err)
		assert.Equal(t, 2, manifestPages)
	})

	t.Run("fails before any output when no navigation tree is found", func(t *testing.T) {
		t.Parallel()

		s := newSite(menu, nil)
		m := newMirror(s)
		sess := s.session()
		sess.FindAllFn = func(selector string) ([]docmirror.Element, error) {
			return nil, nil
		}
		m.Session = sess

		var indexWrites int
		m.Writer = &mock.OutputWriter{
			WriteIndexFn: func(ctx context.Context, html string) error {
				indexWrites++
				return nil
			},
		}

		_, err := m.Run(context.Background(), testConfig())

		require.Error(t, err)
		assert.Equal(t, docmirror.ENOTFOUND, docmirror.ErrorCode(err))
		assert.Zero(t, indexWrites)
	})

	t.Run("a menu sanitizer failure aborts before any output", func(t *testing.T) {
		t.Parallel()

		s := newSite(menu, nil)
		m := newMirror(s)
		m.Menu = &mock.MenuSanitizer{
			SanitizeFn: func(menuHTML string, baseURL string) (string, error) {
				return "", docmirror.Errorf(docmirror.EINVALID, "empty menu markup")
			},
		}

		_, err := m.Run(context.Background(), testConfig())

		require.Error(t, err)
		assert.Equal(t, docmirror.EINVALID, docmirror.ErrorCode(err))
		assert.Empty(t, s.index)
		assert.Empty(t, s.files)
	})

	t.Run("an index rewrite failure leaves the downloaded pages intact", func(t *testing.T) {
		t.Parallel()

		s := newSite(menu, map[string]string{
			"https://example.com/docs?pivots=cli":              `<main><p>Overview</p></main>`,
			"https://example.com/docs/guides/intro?pivots=cli": `<main><p>Intro body</p></main>`,
		})
		m := newMirror(s)
		m.Rewriter = &mock.IndexRewriter{
			RewriteFn: func(indexHTML string, baseURL string) (string, error) {
				return "", docmirror.Errorf(docmirror.EINTERNAL, "rewrite broke")
			},
		}

		result, err := m.Run(context.Background(), testConfig())

		require.NoError(t, err)
		assert.Equal(t, 2, result.Saved)
		assert.Len(t, s.files, 2)
		// The navigation file keeps its remote links.
		assert.Contains(t, s.index, "https://example.com/docs/guides/intro?pivots=cli")
	})

	t.Run("rejects an incomplete configuration", func(t *testing.T) {
		t.Parallel()

		m := &crawl.Mirror{}
		_, err := m.Run(context.Background(), docmirror.Config{BaseURL: siteRoot})

		require.Error(t, err)
		assert.Equal(t, docmirror.EINVALID, docmirror.ErrorCode(err))
	})
}

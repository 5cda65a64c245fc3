// Package crawl provides the mirroring pipeline: locating and expanding the
// site's navigation tree, downloading and sanitizing every page reachable
// from it, and keeping the local navigation file consistent with the
// downloaded pages.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/bloom"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Defaults for the page download stage.
const (
	// DefaultContentSelector matches the main content region of a page.
	DefaultContentSelector = "main"

	// DefaultWaitTimeout bounds the wait for the content region.
	DefaultWaitTimeout = 10 * time.Second

	// DefaultWriteConcurrency bounds concurrent page file writes. Only
	// file writes fan out; the session itself is used strictly
	// sequentially.
	DefaultWriteConcurrency = 4
)

// Mirror orchestrates one mirroring run. All fields except Session, Menu,
// Links, Content, Rewriter, and Writer are optional.
type Mirror struct {
	Session  docmirror.Session
	Locator  *Locator
	Expander *Expander
	Menu     docmirror.MenuSanitizer
	Links    docmirror.LinkExtractor
	Content  docmirror.ContentSanitizer
	Rewriter docmirror.IndexRewriter
	Writer   docmirror.OutputWriter

	// Manifest, when set, receives the run's page records after the
	// download batch completes.
	Manifest docmirror.ManifestWriter

	// Reports, when set, records the run and its page outcomes.
	Reports docmirror.ReportService

	// Seen, when set, deduplicates menu entries that repeat an href so
	// each URL downloads once.
	Seen *bloom.Filter

	// ContentSelector matches the main content region on downloaded
	// pages. Defaults to DefaultContentSelector.
	ContentSelector string

	// WaitTimeout bounds the content-region wait per page. Defaults to
	// DefaultWaitTimeout.
	WaitTimeout time.Duration

	// PagePacer spaces out page downloads. Defaults to a pacer with
	// PageInterval.
	PagePacer *Pacer

	// WriteConcurrency bounds concurrent page file writes. Defaults to
	// DefaultWriteConcurrency.
	WriteConcurrency int

	// Logger receives warnings and errors for every recovered failure.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// Progress, when set, is called once per retained link during the
	// download batch.
	Progress docmirror.MirrorProgressFunc
}

// Run executes the pipeline: locate the tree, expand it fully, sanitize the
// menu, download every retained page, rewrite the navigation file, and
// record the outcome. Only pre-output failures (navigation to the base URL,
// tree location, menu sanitization, the initial index write) and context
// cancellation return an error; per-page failures are logged and skipped.
func (m *Mirror) Run(ctx context.Context, cfg docmirror.Config) (*docmirror.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	run := &docmirror.Run{
		ID:         uuid.New().String(),
		BaseURL:    cfg.BaseURL,
		OutputPath: cfg.OutputPath,
		StartedAt:  time.Now(),
	}
	logger := m.logger().With("run", run.ID)

	if err := m.Session.Navigate(ctx, cfg.BaseURL); err != nil {
		return nil, err
	}

	locator := m.locator()
	tree, err := locator.Locate(ctx, m.Session, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	stats, err := m.expander(logger).Expand(ctx, m.Session, tree)
	if err != nil {
		return nil, err
	}

	// Re-read the expanded tree through the locator: handles held during
	// expansion are stale by now.
	tree, err = locator.Locate(ctx, m.Session, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	menuHTML, err := tree.HTML()
	if err != nil {
		return nil, err
	}

	sanitized, err := m.Menu.Sanitize(menuHTML, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	links, err := m.Links.RetainedLinks(sanitized, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	if err := m.Writer.WriteIndex(ctx, sanitized); err != nil {
		return nil, err
	}

	reports := m.Reports
	if reports != nil {
		if err := reports.CreateRun(ctx, run); err != nil {
			logger.Error("run report disabled", "err", err)
			reports = nil
		}
	}

	result := &docmirror.Result{
		Expanded:     stats.Expanded,
		ExpandFailed: stats.Failed,
		Links:        len(links),
	}

	records, canceled := m.fetchPages(ctx, logger, run.ID, links)

	// Reconcile records against the output tree: a page counts as saved
	// only if its file actually exists, and a duplicate skip whose file is
	// absent is a dedup false positive leaving a dangling index link.
	for _, rec := range records {
		switch rec.Status {
		case docmirror.PageSaved:
			if !m.Writer.PageExists(rec.FileName) {
				rec.Status = docmirror.PageSkipped
				rec.Error = "page file missing after write"
				result.Skipped++
				logger.Error("page file missing after write", "url", rec.URL, "file", rec.FileName)
				continue
			}
			result.Saved++
		case docmirror.PageDuplicate:
			result.Skipped++
			if !m.Writer.PageExists(rec.FileName) {
				rec.Error = "no file written for duplicate entry"
				logger.Error("duplicate entry has no page file", "url", rec.URL, "file", rec.FileName)
			}
		default:
			result.Skipped++
		}
	}

	if canceled == nil {
		m.rewriteIndex(ctx, logger, cfg.BaseURL)
	}

	run.FinishedAt = time.Now()
	run.Saved = result.Saved
	run.Skipped = result.Skipped

	if m.Manifest != nil && canceled == nil {
		if err := m.Manifest.WriteManifest(ctx, run, records); err != nil {
			logger.Error("manifest write failed", "err", err)
		}
	}

	if reports != nil {
		rctx := ctx
		if canceled != nil {
			// The run context is gone; give the report a short grace
			// window so the partial outcome is still recorded.
			var cancel context.CancelFunc
			rctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
		}
		for _, rec := range records {
			if err := reports.RecordPage(rctx, rec); err != nil {
				logger.Error("page record failed", "url", rec.URL, "err", err)
			}
		}
		if err := reports.FinishRun(rctx, run); err != nil {
			logger.Error("run record failed", "err", err)
		}
	}

	if canceled != nil {
		return result, canceled
	}
	return result, nil
}

// fetchPages downloads every retained link in order. The session is used
// strictly sequentially; only the resulting file writes fan out. Returns
// the page records and a non-nil error when the context was canceled
// mid-batch, in which case remaining links are abandoned and files already
// written stay intact.
func (m *Mirror) fetchPages(ctx context.Context, logger *slog.Logger, runID string, links []docmirror.RetainedLink) ([]*docmirror.PageRecord, error) {
	var (
		g         errgroup.Group
		mu        sync.Mutex
		writeErrs = make(map[string]error)
	)
	g.SetLimit(m.writeConcurrency())

	records := make([]*docmirror.PageRecord, 0, len(links))
	var canceled error
	attempted := 0

	for _, link := range links {
		if err := ctx.Err(); err != nil {
			canceled = err
			break
		}

		rec := &docmirror.PageRecord{
			RunID:     runID,
			URL:       link.URL,
			Label:     link.Label,
			FileName:  docmirror.FileName(link.URL, link.Label),
			FetchedAt: time.Now(),
		}

		if m.Seen != nil && m.Seen.Test(link.URL) {
			// Recorded, not silently dropped: a bloom false positive
			// leaves the index pointing at a file nothing wrote, and the
			// record is what makes that gap inspectable.
			rec.Status = docmirror.PageDuplicate
			logger.Debug("duplicate menu entry skipped", "url", link.URL)
			records = append(records, rec)
			continue
		}
		attempted++

		content, ferr := m.fetchPage(ctx, link)
		if ferr != nil {
			rec.Status = docmirror.PageSkipped
			rec.Error = ferr.Error()
			logger.Error("page fetch failed", "url", link.URL, "err", ferr)
		} else {
			rec.Status = docmirror.PageSaved
			rec.ContentHash = fmt.Sprintf("%016x", xxhash.Sum64String(content))
			page := &docmirror.SanitizedPage{
				URL:      link.URL,
				FileName: rec.FileName,
				Content:  content,
			}
			g.Go(func() error {
				if err := m.Writer.WritePage(ctx, page); err != nil {
					mu.Lock()
					writeErrs[page.FileName] = err
					mu.Unlock()
				}
				return nil
			})
			if m.Seen != nil {
				m.Seen.Add(link.URL)
			}
		}

		if m.Progress != nil {
			m.Progress(docmirror.MirrorProgress{
				URL:       link.URL,
				Completed: attempted,
				Total:     len(links),
				Error:     ferr,
			})
		}
		records = append(records, rec)

		if err := m.pagePacer().Wait(ctx); err != nil {
			canceled = err
			break
		}
	}

	_ = g.Wait()

	mu.Lock()
	defer mu.Unlock()
	for _, rec := range records {
		if rec.Status != docmirror.PageSaved {
			continue
		}
		if err, ok := writeErrs[rec.FileName]; ok {
			rec.Status = docmirror.PageSkipped
			rec.Error = err.Error()
			logger.Error("page write failed", "url", rec.URL, "file", rec.FileName, "err", err)
		}
	}

	return records, canceled
}

// fetchPage navigates to one retained link, waits for the main content
// region, probes it for visible content, and sanitizes the result.
func (m *Mirror) fetchPage(ctx context.Context, link docmirror.RetainedLink) (string, error) {
	if err := m.Session.Navigate(ctx, link.URL); err != nil {
		return "", err
	}

	err := m.Session.WaitUntil(ctx, m.waitTimeout(), func() (bool, error) {
		_, err := m.Session.Find(m.contentSelector())
		if err != nil {
			if docmirror.ErrorCode(err) == docmirror.ENOTFOUND {
				return false, nil
			}
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return "", err
	}

	visible, err := m.Session.VisibleHTML(ctx, m.contentSelector())
	if err != nil {
		return "", err
	}

	return m.Content.Sanitize(visible)
}

// rewriteIndex re-reads the saved navigation file and points every retained
// link at its local page file. Failures leave some or all links remote and
// are logged; the run still completes.
func (m *Mirror) rewriteIndex(ctx context.Context, logger *slog.Logger, baseURL string) {
	index, err := m.Writer.ReadIndex(ctx)
	if err != nil {
		logger.Error("index rewrite failed", "stage", "read", "err", err)
		return
	}
	rewritten, err := m.Rewriter.Rewrite(index, baseURL)
	if err != nil {
		logger.Error("index rewrite failed", "stage", "rewrite", "err", err)
		return
	}
	if err := m.Writer.WriteIndex(ctx, rewritten); err != nil {
		logger.Error("index rewrite failed", "stage", "write", "err", err)
	}
}

func (m *Mirror) locator() *Locator {
	if m.Locator != nil {
		return m.Locator
	}
	return &Locator{}
}

func (m *Mirror) expander(logger *slog.Logger) *Expander {
	if m.Expander != nil {
		if m.Expander.Logger == nil {
			m.Expander.Logger = logger
		}
		return m.Expander
	}
	return &Expander{Logger: logger}
}

func (m *Mirror) contentSelector() string {
	if m.ContentSelector != "" {
		return m.ContentSelector
	}
	return DefaultContentSelector
}

func (m *Mirror) waitTimeout() time.Duration {
	if m.WaitTimeout > 0 {
		return m.WaitTimeout
	}
	return DefaultWaitTimeout
}

func (m *Mirror) pagePacer() *Pacer {
	if m.PagePacer == nil {
		m.PagePacer = NewPacer(PageInterval)
	}
	return m.PagePacer
}

func (m *Mirror) writeConcurrency() int {
	if m.WriteConcurrency > 0 {
		return m.WriteConcurrency
	}
	return DefaultWriteConcurrency
}

func (m *Mirror) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

package fs

import (
	"context"
	"path/filepath"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/docmirror"
)

// ManifestFile is the name of the mirror manifest.
const ManifestFile = "manifest.xml"

// Ensure Manifest implements docmirror.ManifestWriter at compile time.
var _ docmirror.ManifestWriter = (*Manifest)(nil)

// Manifest writes an XML description of the mirror next to the output tree:
// one entry per saved page with its source URL, local file, and content
// digest. Skipped pages are recorded too so gaps are visible without
// reading logs.
type Manifest struct {
	baseDir string
}

// NewManifest creates a new Manifest that writes under the given base
// directory.
func NewManifest(baseDir string) *Manifest {
	return &Manifest{baseDir: baseDir}
}

// WriteManifest implements docmirror.ManifestWriter.
func (m *Manifest) WriteManifest(ctx context.Context, run *docmirror.Run, pages []*docmirror.PageRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("mirror")
	root.CreateAttr("base", run.BaseURL)
	root.CreateAttr("run", run.ID)
	root.CreateAttr("generated", run.FinishedAt.UTC().Format(time.RFC3339))

	index := root.CreateElement("index")
	index.CreateAttr("file", IndexFile)

	for _, p := range pages {
		el := root.CreateElement("page")
		el.CreateAttr("url", p.URL)
		el.CreateAttr("status", p.Status)
		switch p.Status {
		case docmirror.PageSaved:
			el.CreateAttr("file", filepath.Join(PagesDir, p.FileName))
			el.CreateAttr("digest", p.ContentHash)
		case docmirror.PageDuplicate:
			// Points at the earlier download of the same href.
			el.CreateAttr("file", filepath.Join(PagesDir, p.FileName))
		}
	}

	doc.Indent(2)
	return doc.WriteToFile(filepath.Join(m.baseDir, ManifestFile))
}

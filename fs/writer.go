// Package fs provides file-based storage for the mirror's output tree: one
// navigation file plus a flat directory of page files.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/docmirror"
)

// File and directory names of the output tree.
const (
	IndexFile = "index.html"
	PagesDir  = "pages"
)

// Ensure Writer implements docmirror.OutputWriter at compile time.
var _ docmirror.OutputWriter = (*Writer)(nil)

// Writer writes the mirror's output tree under a base directory. Writes are
// direct, not staged: a canceled run leaves already-written files intact.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteIndex writes the navigation file, creating the base directory if
// absent.
func (w *Writer) WriteIndex(ctx context.Context, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(w.baseDir, IndexFile), []byte(html), 0644)
}

// ReadIndex reads the navigation file back.
func (w *Writer) ReadIndex(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := os.ReadFile(filepath.Join(w.baseDir, IndexFile))
	if os.IsNotExist(err) {
		return "", docmirror.Errorf(docmirror.ENOTFOUND, "navigation file not written yet")
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WritePage writes one page file under the pages directory, creating it if
// absent. A later write to the same name silently overwrites an earlier one.
func (w *Writer) WritePage(ctx context.Context, page *docmirror.SanitizedPage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validatePageName(page.FileName); err != nil {
		return err
	}
	dir := filepath.Join(w.baseDir, PagesDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, page.FileName), []byte(page.Content), 0644)
}

// PageExists reports whether a page file with the given name exists.
func (w *Writer) PageExists(name string) bool {
	if validatePageName(name) != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(w.baseDir, PagesDir, name))
	return err == nil && !info.IsDir()
}

// validatePageName rejects names that would escape the pages directory.
// FileName never produces such names; this guards direct callers.
func validatePageName(name string) error {
	if name == "" {
		return docmirror.Errorf(docmirror.EINVALID, "page file name required")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return docmirror.Errorf(docmirror.EINVALID, "invalid page file name %q", name)
	}
	return nil
}

package slog_test

import (
	"bytes"
	"context"
	stdslog "log/slog"
	"testing"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/mock"
	"github.com/fwojciec/docmirror/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingWriter(t *testing.T) {
	t.Parallel()

	t.Run("logs index writes and delegates", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := stdslog.New(stdslog.NewTextHandler(&buf, nil))

		var gotHTML string
		next := &mock.OutputWriter{
			WriteIndexFn: func(ctx context.Context, html string) error {
				gotHTML = html
				return nil
			},
		}

		w := slog.NewLoggingWriter(next, logger)
		require.NoError(t, w.WriteIndex(context.Background(), "<ul></ul>"))

		assert.Equal(t, "<ul></ul>", gotHTML)
		assert.Contains(t, buf.String(), "write index")
		assert.Contains(t, buf.String(), "bytes=9")
	})

	t.Run("logs page writes including failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := stdslog.New(stdslog.NewTextHandler(&buf, nil))

		next := &mock.OutputWriter{
			WritePageFn: func(ctx context.Context, page *docmirror.SanitizedPage) error {
				return docmirror.Errorf(docmirror.EINTERNAL, "disk full")
			},
		}

		w := slog.NewLoggingWriter(next, logger)
		err := w.WritePage(context.Background(), &docmirror.SanitizedPage{FileName: "a.html", Content: "x"})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "write page")
		assert.Contains(t, buf.String(), "a.html")
		assert.Contains(t, buf.String(), "disk full")
	})

	t.Run("delegates reads without logging", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := stdslog.New(stdslog.NewTextHandler(&buf, nil))

		next := &mock.OutputWriter{
			ReadIndexFn:  func(ctx context.Context) (string, error) { return "stored", nil },
			PageExistsFn: func(name string) bool { return name == "a.html" },
		}

		w := slog.NewLoggingWriter(next, logger)

		got, err := w.ReadIndex(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "stored", got)
		assert.True(t, w.PageExists("a.html"))
		assert.False(t, w.PageExists("b.html"))
		assert.Empty(t, buf.String())
	})
}

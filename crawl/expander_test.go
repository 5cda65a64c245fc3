package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/docmirror"
	"github.com/fwojciec/docmirror/crawl"
	"github.com/fwojciec/docmirror/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeItem models one expandable navigation entry. Clicking a non-stuck item
// flips it to expanded and reveals its child container, mimicking a lazily
// rendered tree.
type fakeItem struct {
	id       string
	expanded bool
	revealed bool
	stuck    bool // clicks take no effect, the entry never expands
	children []*fakeItem
}

// newFakeTree wires a mock session over the items and returns it together
// with the root container element. Lookups go through the same id-based
// selectors the expander issues, so handle re-resolution is exercised for
// real.
func newFakeTree(roots []*fakeItem) (*mock.Session, docmirror.Element) {
	all := map[string]*fakeItem{}
	var walk func(items []*fakeItem)
	walk = func(items []*fakeItem) {
		for _, it := range items {
			all[it.id] = it
			walk(it.children)
		}
	}
	walk(roots)

	var itemElem func(it *fakeItem) docmirror.Element
	var groupElem func(items []*fakeItem) docmirror.Element

	itemElem = func(it *fakeItem) docmirror.Element {
		return &mock.Element{
			AttrFn: func(name string) (string, error) {
				switch name {
				case "id":
					return it.id, nil
				case "aria-expanded":
					if it.expanded {
						return "true", nil
					}
					return "false", nil
				}
				return "", nil
			},
			ClickFn: func(ctx context.Context) error {
				if it.stuck {
					return nil
				}
				it.expanded = true
				it.revealed = true
				return nil
			},
		}
	}

	groupElem = func(items []*fakeItem) docmirror.Element {
		return &mock.Element{
			FindAllFn: func(selector string) ([]docmirror.Element, error) {
				var out []docmirror.Element
				for _, it := range items {
					if !it.expanded {
						out = append(out, itemElem(it))
					}
				}
				return out, nil
			},
		}
	}

	sess := &mock.Session{
		FindFn: func(selector string) (docmirror.Element, error) {
			for id, it := range all {
				switch selector {
				case `li[id="` + id + `"]`:
					return itemElem(it), nil
				case `li[id="` + id + `"] > ul[role="group"]`:
					if it.revealed {
						return groupElem(it.children), nil
					}
				}
			}
			return nil, docmirror.Errorf(docmirror.ENOTFOUND, "no element matches %q", selector)
		},
	}

	return sess, groupElem(roots)
}

func testExpander() *crawl.Expander {
	return &crawl.Expander{
		StateTimeout: 25 * time.Millisecond,
		Pacer:        crawl.NewPacer(time.Millisecond),
	}
}

func TestExpander_Expand(t *testing.T) {
	t.Parallel()

	t.Run("expands every entry including lazily revealed descendants", func(t *testing.T) {
		t.Parallel()

		grandchild := &fakeItem{id: "a2"}
		child := &fakeItem{id: "a1", children: []*fakeItem{grandchild}}
		roots := []*fakeItem{
			{id: "a", children: []*fakeItem{child}},
			{id: "b"},
		}
		sess, container := newFakeTree(roots)

		stats, err := testExpander().Expand(context.Background(), sess, container)

		require.NoError(t, err)
		assert.Equal(t, 4, stats.Expanded)
		assert.Zero(t, stats.Failed)
		for _, it := range []*fakeItem{roots[0], roots[1], child, grandchild} {
			assert.True(t, it.expanded, "entry %s should be expanded", it.id)
		}
	})

	t.Run("a failed entry does not stop its siblings", func(t *testing.T) {
		t.Parallel()

		roots := []*fakeItem{
			{id: "a", stuck: true},
			{id: "b"},
		}
		sess, container := newFakeTree(roots)

		stats, err := testExpander().Expand(context.Background(), sess, container)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.Expanded)
		assert.Equal(t, 1, stats.Failed)
		assert.False(t, roots[0].expanded)
		assert.True(t, roots[1].expanded)
	})

	t.Run("a fully revealed container needs no work", func(t *testing.T) {
		t.Parallel()

		roots := []*fakeItem{{id: "a", expanded: true, revealed: true}}
		sess, container := newFakeTree(roots)

		stats, err := testExpander().Expand(context.Background(), sess, container)

		require.NoError(t, err)
		assert.Zero(t, stats.Expanded)
		assert.Zero(t, stats.Failed)
	})

	t.Run("a stale container skips its subtree without failing the run", func(t *testing.T) {
		t.Parallel()

		container := &mock.Element{
			FindAllFn: func(selector string) ([]docmirror.Element, error) {
				return nil, docmirror.Errorf(docmirror.EUNAVAILABLE, "node detached")
			},
		}

		stats, err := testExpander().Expand(context.Background(), &mock.Session{}, container)

		require.NoError(t, err)
		assert.Zero(t, stats.Expanded)
		assert.Zero(t, stats.Failed)
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		roots := []*fakeItem{{id: "a"}, {id: "b"}}
		sess, container := newFakeTree(roots)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		stats, err := testExpander().Expand(ctx, sess, container)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, stats.Expanded)
	})
}

package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docmirror"
)

// Defaults for the expansion algorithm.
const (
	// DefaultCollapsedSelector enumerates a container's direct child
	// entries that are currently collapsed.
	DefaultCollapsedSelector = `:scope > li[aria-expanded="false"]`

	// DefaultChildGroupSelector matches the child container an entry
	// reveals once expanded.
	DefaultChildGroupSelector = `ul[role="group"]`

	// DefaultStateTimeout bounds each structural wait.
	DefaultStateTimeout = 10 * time.Second
)

// ExpandStats counts expansion outcomes across the whole tree.
type ExpandStats struct {
	// Expanded is the number of entries successfully expanded.
	Expanded int

	// Failed is the number of entries skipped after an expansion error;
	// their subtrees remain collapsed and unmirrored.
	Failed int
}

// Expander recursively expands every collapsed entry under a tree container
// until none remain. The tree's structure is unknown until each entry is
// expanded: child containers are rendered lazily, so the recursion discovers
// the hierarchy as it reveals it.
//
// Expansion invalidates element handles held across interactions, so every
// entry is re-resolved by its DOM id before use; entries without an id fall
// back to their held handle and are skipped if it has gone stale. A failed
// entry never stops its siblings.
type Expander struct {
	// CollapsedSelector enumerates collapsed direct children. Defaults to
	// DefaultCollapsedSelector.
	CollapsedSelector string

	// ChildGroupSelector matches revealed child containers. Defaults to
	// DefaultChildGroupSelector.
	ChildGroupSelector string

	// StateTimeout bounds the expanded-state wait and the child-container
	// wait for each entry. Defaults to DefaultStateTimeout.
	StateTimeout time.Duration

	// Pacer spaces out expansion attempts. Defaults to a pacer with
	// ExpandInterval.
	Pacer *Pacer

	// Logger receives skip warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Expand expands everything under container. The returned error is non-nil
// only when the context is canceled; all per-entry failures are recorded in
// the stats and logged as warnings.
func (e *Expander) Expand(ctx context.Context, sess docmirror.Session, container docmirror.Element) (*ExpandStats, error) {
	stats := &ExpandStats{}
	if err := e.expand(ctx, sess, container, 0, stats); err != nil {
		return stats, err
	}
	return stats, nil
}

func (e *Expander) expand(ctx context.Context, sess docmirror.Session, container docmirror.Element, depth int, stats *ExpandStats) error {
	items, err := container.FindAll(e.collapsedSelector())
	if err != nil {
		// The container handle itself went stale; its subtree stays as is.
		e.logger().Warn("skipping container", "depth", depth, "err", err)
		return nil
	}

	// A container with no collapsed children is fully revealed.
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		node, err := snapshot(item)
		if err != nil {
			stats.Failed++
			e.logger().Warn("skipping tree entry", "depth", depth, "err", err)
			continue
		}
		if node.Expanded {
			// Raced with a re-render; nothing to do for this entry.
			continue
		}
		if err := e.expandItem(ctx, sess, item, node.ID, depth, stats); err != nil {
			stats.Failed++
			e.logger().Warn("skipping tree entry", "id", node.ID, "depth", depth, "err", err)
		}

		if err := e.pacer().Wait(ctx); err != nil {
			return err
		}
	}

	return nil
}

// expandItem clicks one collapsed entry, waits for its expanded state and
// its child container, and recurses into the revealed container.
func (e *Expander) expandItem(ctx context.Context, sess docmirror.Session, item docmirror.Element, id string, depth int, stats *ExpandStats) error {
	// Fresh handle before the click: a sibling's expansion may already
	// have invalidated the one from enumeration.
	target, err := e.resolve(sess, item, id)
	if err != nil {
		return err
	}
	if err := target.Click(ctx); err != nil {
		return err
	}

	err = sess.WaitUntil(ctx, e.stateTimeout(), func() (bool, error) {
		cur, err := e.resolve(sess, item, id)
		if err != nil {
			if docmirror.ErrorCode(err) == docmirror.ENOTFOUND {
				// Mid-render; keep polling.
				return false, nil
			}
			return false, err
		}
		state, err := cur.Attr("aria-expanded")
		if err != nil {
			return false, err
		}
		return state == "true", nil
	})
	if err != nil {
		return err
	}

	var child docmirror.Element
	err = sess.WaitUntil(ctx, e.stateTimeout(), func() (bool, error) {
		c, err := e.childContainer(sess, item, id)
		if err != nil {
			if docmirror.ErrorCode(err) == docmirror.ENOTFOUND {
				return false, nil
			}
			return false, err
		}
		child = c
		return true, nil
	})
	if err != nil {
		return err
	}

	stats.Expanded++
	return e.expand(ctx, sess, child, depth+1, stats)
}

// snapshot reads the entry attributes that survive a re-render. The element
// handle itself may already be stale by the time the snapshot is inspected;
// only the ID is safe to resolve against the session again.
func snapshot(item docmirror.Element) (docmirror.TreeNode, error) {
	id, err := item.Attr("id")
	if err != nil {
		return docmirror.TreeNode{}, err
	}
	state, err := item.Attr("aria-expanded")
	if err != nil {
		return docmirror.TreeNode{}, err
	}
	return docmirror.TreeNode{ID: id, Expanded: state == "true"}, nil
}

// resolve returns a fresh handle for the entry, by DOM id when it has one.
func (e *Expander) resolve(sess docmirror.Session, item docmirror.Element, id string) (docmirror.Element, error) {
	if id == "" {
		return item, nil
	}
	return sess.Find(`li[id="` + id + `"]`)
}

// childContainer returns the entry's revealed child container.
func (e *Expander) childContainer(sess docmirror.Session, item docmirror.Element, id string) (docmirror.Element, error) {
	if id == "" {
		return item.Find(e.childGroupSelector())
	}
	return sess.Find(`li[id="` + id + `"] > ` + e.childGroupSelector())
}

func (e *Expander) collapsedSelector() string {
	if e.CollapsedSelector != "" {
		return e.CollapsedSelector
	}
	return DefaultCollapsedSelector
}

func (e *Expander) childGroupSelector() string {
	if e.ChildGroupSelector != "" {
		return e.ChildGroupSelector
	}
	return DefaultChildGroupSelector
}

func (e *Expander) stateTimeout() time.Duration {
	if e.StateTimeout > 0 {
		return e.StateTimeout
	}
	return DefaultStateTimeout
}

func (e *Expander) pacer() *Pacer {
	if e.Pacer == nil {
		e.Pacer = NewPacer(ExpandInterval)
	}
	return e.Pacer
}

func (e *Expander) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

package docmirror

// TreeNode is a point-in-time snapshot of one entry in the navigation tree,
// read from the live DOM at expansion time. It is never persisted: the DOM
// handle it was read from may already be stale by the time the snapshot is
// inspected, so the ID is the only field safe to resolve against the session
// again.
type TreeNode struct {
	// ID uniquely identifies the entry within the document. Entries are
	// re-resolved by ID after every mutating interaction.
	ID string

	// Expanded reports the entry's disclosure state.
	Expanded bool

	// Target is the entry's link destination. Container-only entries have
	// no target.
	Target string

	// HasChildren reports whether a child container is present in the DOM.
	// Collapsed entries typically have none until expanded.
	HasChildren bool
}

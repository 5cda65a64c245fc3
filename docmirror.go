// Package docmirror produces offline, navigable mirrors of documentation
// sites that hide their content behind a collapsible, lazily-rendered
// navigation tree. It drives a rendered browser session to fully expand the
// tree, downloads and sanitizes every page reachable from it, and rewrites
// the navigation page so all links resolve to local files.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package docmirror

package docmirror

import (
	"net/url"
	"strings"
)

// maxNameLen bounds the cleaned label portion of a generated file name.
const maxNameLen = 50

// FileName derives the local file name for a retained link. It is a pure
// function of (url, label): the download pass and the index rewrite pass call
// it independently and must agree on the result.
//
// The cleaned label is composed with the URL path's last non-empty segment as
// "{label}_{segment}.html". There is no collision avoidance: two links that
// derive the same name overwrite each other's file.
func FileName(rawURL, label string) string {
	name := strings.TrimSpace(label)
	if name == "" {
		name = "page"
	}
	name = strings.Map(replaceUnsafe, name)
	name = strings.TrimLeft(name, ".")
	// Truncate by runes, not bytes: a byte cut can split a multi-byte rune
	// and yield an invalid-UTF-8 file name.
	if r := []rune(name); len(r) > maxNameLen {
		name = string(r[:maxNameLen])
	}
	return name + "_" + lastPathSegment(rawURL) + ".html"
}

// replaceUnsafe maps characters that are invalid in file names, or that make
// them awkward to handle in shells and URLs, to underscores.
func replaceUnsafe(r rune) rune {
	switch r {
	case ' ', ':', '/', '\\', '?', '&', '%', '<', '>', '"', '|', '*':
		return '_'
	}
	if r < 0x20 {
		return '_'
	}
	return r
}

// lastPathSegment returns the final non-empty segment of the URL's path, or
// "index" when the path has none.
func lastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "index"
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return "index"
}

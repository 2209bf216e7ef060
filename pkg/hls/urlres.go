package hls

import (
	"net/url"
	"strings"
)

// FilenameOf returns the last path segment of a URL with any query string
// stripped. A URL ending in a slash yields an empty string.
func FilenameOf(rawURL string) string {
	s := rawURL
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// BaseOf returns everything up to, but not including, the last path
// segment of a URL. It is the default resolution base for references
// found inside a playlist served from that URL.
func BaseOf(rawURL string) string {
	if i := strings.LastIndexByte(rawURL, '/'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// Resolve combines a base URL (treated as a directory) with a reference.
// Absolute references are returned unchanged; relative references follow
// standard hierarchical URI resolution, including "../" traversal and
// root-relative paths.
func Resolve(base, ref string) string {
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if r.IsAbs() {
		return ref
	}

	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

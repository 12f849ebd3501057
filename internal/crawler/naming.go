package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// lastSegmentNames derives the display and percent-encoded folder names
// from the final segment of a location. The root location "/" has no
// final segment and yields empty names.
func lastSegmentNames(location string) (display, encoded string) {
	idx := strings.LastIndex(location, "/")
	if idx < 0 {
		return "", ""
	}
	seg := location[idx+1:]
	if seg == "" {
		return "", ""
	}

	display, err := url.PathUnescape(seg)
	if err != nil {
		// Malformed escapes in remote-produced locations are kept verbatim.
		display = seg
	}
	return display, encodeName(display)
}

// encodeName percent-encodes a folder name, leaving only unreserved
// characters (RFC 3986) intact. Unlike url.PathEscape it also encodes
// the segment separators, so the result is a single opaque token.
func encodeName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// isUnreserved reports whether c is an RFC 3986 unreserved byte.
func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	}
	return false
}

// matchesExtension reports whether name ends with one of the allow-listed
// suffixes, compared case-insensitively.
func matchesExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

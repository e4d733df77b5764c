package internal

import (
	"net/url"
	"strings"
)

// FilenameFromURL extracts the filename portion of a URL, e.g.
// "https://example.com/2016/10/taimatsu_olympic.png" -> "taimatsu_olympic.png".
// Query strings and fragments are ignored. Returns "" when the URL has no
// path component to take a name from.
func FilenameFromURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}

	// Prefer proper URL parsing so queries/fragments don't leak into the name
	if u, err := url.Parse(trimmed); err == nil && u.Path != "" {
		trimmed = u.Path
	}

	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return trimmed
}

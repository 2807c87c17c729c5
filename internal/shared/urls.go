// URL helpers for the styling service.
package shared

import (
	"fmt"
	"strings"
	"time"
)

// AbsoluteURL normalizes a possibly-relative URL returned by the styling
// service against the API base URL.
func AbsoluteURL(base, raw string) string {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}

	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return base + raw
}

// CacheBust appends a timestamp query parameter to a URL so browsers and
// caches re-fetch the image instead of reusing a stale copy. The busted URL
// is display-only; the canonical URL is what gets persisted and linked.
func CacheBust(url string, now time.Time) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%st=%d", url, sep, now.UnixMilli())
}

// FilenameFromURL extracts the last path segment of a URL with any query
// string stripped.
func FilenameFromURL(url string) string {
	segments := strings.Split(url, "/")
	name := segments[len(segments)-1]
	if i := strings.Index(name, "?"); i >= 0 {
		name = name[:i]
	}
	return name
}

// DownloadURL builds the canonical download link for a styled image URL.
func DownloadURL(base, styledURL string) string {
	name := FilenameFromURL(styledURL)
	if name == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/download/" + name
}

package bff

import (
	"path"
	"strings"
)

// cleanName converts a stored record name to a slash-separated relative
// path in fs.ValidPath form. Leading and trailing slashes are dropped, so
// absolute names extract relative to the destination. The result is "."
// for names that reduce to the archive root, and may still contain ".."
// elements for names that try to escape; callers reject those with
// fs.ValidPath.
func cleanName(name string) string {
	return path.Clean(strings.Trim(name, "/"))
}

package ninja

import "strings"

var pathEscaper = strings.NewReplacer("$", "$$", " ", "$ ", ":", "$:")

// Escape escapes a path for use in a build statement.
func Escape(path string) string {
	return pathEscaper.Replace(path)
}

// EscapeAll escapes every path in paths.
func EscapeAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = Escape(p)
	}
	return out
}

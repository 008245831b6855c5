package logger

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ErrorEntry is one level of an error chain.
type ErrorEntry struct {
	Message string
	// Metadata is nil for errors that are not zerr errors.
	Metadata map[string]any
}

// collectErrorEntries flattens the chain of err. zerr levels contribute
// their own message and metadata, and the first foreign error ends the
// chain with its full text. Metadata of a level without a message is
// carried onto the next level.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var pending map[string]any

	for err != nil {
		z, ok := err.(*zerr.Error) //nolint:errorlint // Each level of the chain is inspected on its own
		if !ok {
			entries = append(entries, ErrorEntry{Message: err.Error(), Metadata: pending})
			break
		}

		md := z.Metadata()
		if z.Message() == "" {
			if pending == nil {
				pending = make(map[string]any)
			}
			maps.Copy(pending, md)
			err = errors.Unwrap(err)
			continue
		}
		if pending != nil {
			maps.Copy(md, pending)
			pending = nil
		}
		entries = append(entries, ErrorEntry{Message: z.Message(), Metadata: md})
		err = errors.Unwrap(err)
	}

	return entries
}

// formatErrorEntries renders entries as an "Error:" line followed by a
// "Caused by:" list. Metadata is printed below its message, sorted by key.
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		prefix, indent := "    → ", "      "
		if i == 0 {
			prefix, indent = "Error: ", "       "
		} else if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}

		lines = append(lines, prefix+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}
		for _, key := range slices.Sorted(maps.Keys(entry.Metadata)) {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, key, entry.Metadata[key]))
		}
	}

	return strings.Join(lines, "\n")
}

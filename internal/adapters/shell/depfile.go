package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	includeNote = "Note: including file:"
	// deprecatedOptionWarning is cl's notice for /Yd, which the PCH flags still pass.
	deprecatedOptionWarning = "D9035"
)

// clReport is the interpretation of a cl log produced with /showIncludes.
type clReport struct {
	includes []string
	// log is the cl output without include notes and deprecation notices.
	log     []byte
	problem bool
}

func parseShowIncludes(output []byte) clReport {
	var r clReport
	var log bytes.Buffer
	for line := range strings.Lines(string(output)) {
		text := strings.TrimRight(line, "\r\n")
		if inc, ok := strings.CutPrefix(text, includeNote); ok {
			r.includes = append(r.includes, filepath.Clean(strings.TrimSpace(inc)))
			continue
		}
		if strings.Contains(text, deprecatedOptionWarning) {
			continue
		}
		if strings.Contains(text, " error ") || strings.Contains(text, " warning ") {
			r.problem = true
		}
		log.WriteString(text)
		log.WriteByte('\n')
	}
	r.log = log.Bytes()
	return r
}

// makeDepfile renders a make-style dependency file for target.
func makeDepfile(target string, includes []string) []byte {
	var b strings.Builder
	b.WriteString(escapeDepPath(target))
	b.WriteString(":")
	for _, inc := range includes {
		b.WriteString(" \\\n  ")
		b.WriteString(escapeDepPath(inc))
	}
	b.WriteString("\n")
	return []byte(b.String())
}

func escapeDepPath(path string) string {
	return strings.ReplaceAll(path, " ", `\ `)
}

// retargetDepfile moves the dependency file nvcc wrote at tmp to dest and
// makes target its rule target. A missing tmp file leaves dest untouched.
func retargetDepfile(tmp, dest, target string) error {
	content, err := os.ReadFile(tmp)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read depfile"), "depfile", tmp)
	}
	if err := os.Remove(tmp); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove depfile"), "depfile", tmp)
	}

	first, rest, multiline := strings.Cut(string(content), "\n")
	if _, deps, ok := strings.Cut(first, " : "); ok {
		first = escapeDepPath(target) + " : " + deps
	}
	out := first
	if multiline {
		out += "\n" + rest
	}
	if err := os.WriteFile(dest, []byte(out), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write depfile"), "depfile", dest)
	}
	return nil
}

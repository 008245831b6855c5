// Package toolchain renders compile, archive and link tasks for the gcc,
// clang, msvc and nvcc compiler families.
package toolchain

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory builds toolchains whose rules call back into Invoker.
type Factory struct {
	// Invoker is the command prefix that runs an invocation kind, for
	// example `"/usr/local/bin/weave" invoke`.
	Invoker string
}

// NewFactory creates a new Factory.
func NewFactory(invoker string) *Factory {
	return &Factory{Invoker: invoker}
}

// New returns the toolchain described by spec.
func (f *Factory) New(spec domain.ToolchainSpec) (ports.ToolChain, error) {
	switch spec.Family {
	case domain.FamilyGCC, domain.FamilyClang:
		return NewGCC(spec, f.Invoker), nil
	case domain.FamilyMSVC:
		return NewMSVC(spec, f.Invoker), nil
	case domain.FamilyNVCC:
		return NewNVCC(spec, f.Invoker)
	default:
		err := zerr.Wrap(domain.ErrUnknownToolchainFamily, "cannot build toolchain")
		err = zerr.With(err, "toolchain", spec.Name)
		return nil, zerr.With(err, "family", string(spec.Family))
	}
}

func checkRange(option string, value, lo, hi int) error {
	if value >= lo && value <= hi {
		return nil
	}
	err := zerr.Wrap(domain.ErrInvalidOption, fmt.Sprintf("%s must be between %d-%d", option, lo, hi))
	err = zerr.With(err, "option", option)
	return zerr.With(err, "value", value)
}

func checkNotEmpty(option string, values []string, output string) error {
	for _, v := range values {
		if v == "" {
			err := zerr.Wrap(domain.ErrEmptyOption, "empty "+option)
			err = zerr.With(err, "option", option)
			return zerr.With(err, "output", output)
		}
	}
	return nil
}

func quote(s string) string {
	return `"` + s + `"`
}

func logPath(output string) string {
	return output + ".log"
}

func describe(src, out string) string {
	return filepath.Base(src) + " -> " + filepath.Base(out)
}

// stripExt removes the last extension of a PCH path, yielding its header.
func stripExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

func concat(lists ...[]string) []string {
	var n int
	for _, l := range lists {
		n += len(l)
	}
	out := make([]string, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

func absolute(paths []string) []string {
	var out []string
	for _, p := range paths {
		if filepath.IsAbs(p) {
			out = append(out, p)
		}
	}
	return out
}

func ruleHeader(w ports.BuildWriter, name string, rules ...domain.Rule) error {
	if err := w.Section(name); err != nil {
		return err
	}
	for _, r := range rules {
		if err := w.Rule(r); err != nil {
			return err
		}
	}
	return nil
}

// linkOutputs lists the outputs of a link edge: the binary, any extra
// outputs, the import library when it differs, and the log.
func linkOutputs(t *domain.LinkTask) []string {
	outs := concat([]string{t.OutputPath}, t.ExtraOutputs)
	if t.LibraryPath != "" && t.LibraryPath != t.OutputPath {
		outs = append(outs, t.LibraryPath)
	}
	return append(outs, logPath(t.OutputPath))
}

package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// OutputKind is the primary output a declarative project produces.
type OutputKind string

const (
	// OutputNone produces no archive or link step.
	OutputNone OutputKind = "none"
	// OutputStatic produces a static library.
	OutputStatic OutputKind = "static"
	// OutputShared produces a shared library.
	OutputShared OutputKind = "shared"
	// OutputExecutable produces an executable.
	OutputExecutable OutputKind = "executable"
)

// ParseOutputKind validates an output kind. The empty string means OutputNone.
func ParseOutputKind(s string) (OutputKind, error) {
	switch OutputKind(s) {
	case "", OutputNone:
		return OutputNone, nil
	case OutputStatic, OutputShared, OutputExecutable:
		return OutputKind(s), nil
	default:
		return "", zerr.With(zerr.Wrap(ErrUnknownOutputKind, "invalid output"), "output", s)
	}
}

// CompileSettings overrides compile task options. Nil fields leave the
// task default in place.
type CompileSettings struct {
	OptLevel         *int
	DebugLevel       *int
	WarnLevel        *int
	WarningsAsErrors *bool
	Std              *string
	AddressModel     *string
	ExtraOptions     []string
}

// Apply writes the set fields onto t. Extra options are appended.
func (s CompileSettings) Apply(t *CompileTask) {
	if s.OptLevel != nil {
		t.OptLevel = *s.OptLevel
	}
	if s.DebugLevel != nil {
		t.DebugLevel = *s.DebugLevel
	}
	if s.WarnLevel != nil {
		t.WarnLevel = *s.WarnLevel
	}
	if s.WarningsAsErrors != nil {
		t.WarningsAsErrors = *s.WarningsAsErrors
	}
	if s.Std != nil {
		t.Std = *s.Std
	}
	if s.AddressModel != nil {
		t.AddressModel = *s.AddressModel
	}
	t.ExtraOptions = append(t.ExtraOptions, s.ExtraOptions...)
}

// LinkSettings overrides link task options.
type LinkSettings struct {
	KeepDebugInfo *bool
	NoUndefined   *bool
	ExtraOptions  []string
}

// Apply writes the set fields onto t. Extra options are appended.
func (s LinkSettings) Apply(t *LinkTask) {
	if s.KeepDebugInfo != nil {
		t.KeepDebugInfo = *s.KeepDebugInfo
	}
	if s.NoUndefined != nil {
		t.NoUndefined = *s.NoUndefined
	}
	t.ExtraOptions = append(t.ExtraOptions, s.ExtraOptions...)
}

// FileGroup compiles a subset of sources with their own settings.
type FileGroup struct {
	Sources []string
	Compile CompileSettings
}

// Overlay applies settings when the variant matches every pair in Match.
type Overlay struct {
	Match    map[string]string
	Compile  CompileSettings
	Defines  []string
	Includes []string
}

// CopySpec copies a project file into the build output tree.
type CopySpec struct {
	From  string
	To    string
	Alias string
}

// CommandSpec is an ad hoc build step.
type CommandSpec struct {
	Command     string
	Description string
	Inputs      []string
	Outputs     []string
}

// ProjectSpec is the declarative definition of one project.
type ProjectSpec struct {
	Name string
	// Dir is the absolute project directory.
	Dir string
	// RelDir is Dir relative to the workspace root.
	RelDir string
	// File is the absolute path of the definition file.
	File string

	Output        OutputKind
	OutputName    string
	Sources       []string
	PCH           string
	NoPCH         bool
	Includes      []string
	Defines       []string
	Deps          []string
	Libs          []string
	Inputs        []string
	ForcedDeps    []string
	OrderOnlyDeps []string
	Compile       CompileSettings
	Link          LinkSettings
	Files         []FileGroup
	When          []Overlay
	Copies        []CopySpec
	Commands      []CommandSpec
}

// TargetSpec requests a project for a list of variants.
type TargetSpec struct {
	Project  string
	Variants []string
	Deploy   string
}

// Workspace is the loaded configuration of one generation run.
type Workspace struct {
	Root string
	// BuiltDir is the absolute output root. The build file lives here.
	BuiltDir        string
	Schema          *Schema
	ToolchainFields []string
	// Toolchains are sorted by name.
	Toolchains []ToolchainSpec
	Projects   map[string]*ProjectSpec
	Targets    []TargetSpec
	// Files lists every configuration file that was read.
	Files []string
	// Ignore lists absolute paths that watch mode never descends into.
	Ignore []string
}

// ToolchainName derives the toolchain a variant selects by joining the
// values of the toolchain fields.
func (w *Workspace) ToolchainName(v Variant) string {
	parts := make([]string, 0, len(w.ToolchainFields))
	for _, f := range w.ToolchainFields {
		parts = append(parts, v.Get(f))
	}
	return strings.Join(parts, VariantSeparator)
}

// ProjectNames returns the defined project names in sorted order.
func (w *Workspace) ProjectNames() []string {
	names := make([]string, 0, len(w.Projects))
	for name := range w.Projects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

package generator

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

// Project is one project built for one variant. It exists for a single
// generation run.
type Project struct {
	reg     *Registry
	name    string
	variant domain.Variant

	// Dir is the absolute project directory. Relative sources resolve here.
	Dir string
	// RelDir is Dir relative to the workspace root.
	RelDir string
	// BuiltDir is where the project writes its outputs.
	BuiltDir string

	// Defines and IncludePaths are added to every compile task.
	Defines      []string
	IncludePaths []string
	// LinkLibraries are what dependents link against.
	LinkLibraries []string
	// CompileHook, when set, runs on every compile task after the project
	// defines and include paths are applied.
	CompileHook func(*domain.CompileTask)

	toolchain   ports.ToolChain
	outputPath  string
	libraryPath string
	inputs      []string
	inputLibs   []string
	forcedDeps  []string
	runtimeDeps map[string]string
	refs        map[*Project]struct{}
	deployed    bool
	makeFiles   []string
}

func newProject(r *Registry, name string, v domain.Variant, def definition) *Project {
	return &Project{
		reg:         r,
		name:        name,
		variant:     v,
		Dir:         def.dir,
		RelDir:      def.relDir,
		BuiltDir:    filepath.Join(r.opts.BuiltDir, def.relDir, v.String()),
		runtimeDeps: make(map[string]string),
		refs:        make(map[*Project]struct{}),
	}
}

// Name returns the project name.
func (p *Project) Name() string { return p.name }

// Variant returns the variant the project is built for.
func (p *Project) Variant() domain.Variant { return p.variant }

// Registry returns the registry that owns p.
func (p *Project) Registry() *Registry { return p.reg }

// OutputPath returns the primary output, or "" if none was selected.
func (p *Project) OutputPath() string { return p.outputPath }

// LibraryPath returns the file dependents link against.
func (p *Project) LibraryPath() string { return p.libraryPath }

// Inputs returns the objects and files passed to the archiver or linker.
func (p *Project) Inputs() []string { return slices.Clone(p.inputs) }

// InputLibraries returns the libraries passed to the linker.
func (p *Project) InputLibraries() []string { return slices.Clone(p.inputLibs) }

// ResponseFiles returns the response files written for p's tasks.
func (p *Project) ResponseFiles() []string { return slices.Clone(p.makeFiles) }

// RuntimeDependencies returns a copy of the destination to source map.
func (p *Project) RuntimeDependencies() map[string]string { return maps.Clone(p.runtimeDeps) }

// References returns the names of every project p depends on, directly or
// transitively, as "<name> <variant>" in sorted order.
func (p *Project) References() []string {
	out := make([]string, 0, len(p.refs))
	for ref := range p.refs {
		out = append(out, ref.name+" "+ref.variant.String())
	}
	slices.Sort(out)
	return out
}

// Toolchain resolves the toolchain the variant selects.
func (p *Project) Toolchain() (ports.ToolChain, error) {
	if p.toolchain != nil {
		return p.toolchain, nil
	}
	name := p.variant.String()
	if p.reg.opts.SelectToolchain != nil {
		name = p.reg.opts.SelectToolchain(p.variant)
	}
	tc, err := p.reg.Toolchain(name)
	if err != nil {
		return nil, zerr.With(err, "project", p.name)
	}
	p.toolchain = tc
	return tc, nil
}

// AddInput adds a file to the archiver or linker command line.
func (p *Project) AddInput(path string) {
	p.inputs = append(p.inputs, path)
}

// AddInputLibrary adds a library to the linker command line. Shared
// objects also become runtime dependencies.
func (p *Project) AddInputLibrary(path string) error {
	p.inputLibs = append(p.inputLibs, path)
	if strings.HasSuffix(path, ".so") {
		return p.AddRuntimeDependency(path, "", "")
	}
	return nil
}

// AddInputLibraries adds libraries without registering runtime dependencies.
func (p *Project) AddInputLibraries(paths ...string) {
	p.inputLibs = append(p.inputLibs, paths...)
}

// AddForcedDependency adds paths to the extra dependencies of every
// compile task emitted from now on.
func (p *Project) AddForcedDependency(paths ...string) {
	for _, path := range paths {
		if !slices.Contains(p.forcedDeps, path) {
			p.forcedDeps = append(p.forcedDeps, path)
		}
	}
}

// AddLibraryDependency links p against other and inherits its runtime
// dependencies.
func (p *Project) AddLibraryDependency(other *Project) error {
	p.inputLibs = append(p.inputLibs, other.LinkLibraries...)
	return p.AddRuntimeDependencyProject(other, "")
}

// AddRuntimeDependency registers src to be deployed at dest. dest
// defaults to the base name of src and is joined to destDir when relative.
func (p *Project) AddRuntimeDependency(src, dest, destDir string) error {
	src = filepath.Clean(src)
	if !filepath.IsAbs(src) {
		return zerr.With(zerr.Wrap(domain.ErrRelativeRuntimePath, "cannot add runtime dependency"), "src", src)
	}
	if dest == "" {
		dest = filepath.Base(src)
	}
	if destDir != "" && !filepath.IsAbs(dest) {
		dest = filepath.Join(destDir, dest)
	}
	dest = filepath.Clean(dest)

	cur, ok := p.runtimeDeps[dest]
	if !ok {
		p.runtimeDeps[dest] = src
		return nil
	}
	if cur != src {
		err := zerr.Wrap(domain.ErrRuntimeDependencyConflict, "conflicting runtime dependencies")
		err = zerr.With(err, "project", p.name)
		err = zerr.With(err, "dest", dest)
		err = zerr.With(err, "old", cur)
		return zerr.With(err, "new", src)
	}
	return nil
}

// AddRuntimeDependencyProject merges the runtime dependencies of other
// and records it as a reference.
func (p *Project) AddRuntimeDependencyProject(other *Project, destDir string) error {
	for _, dest := range slices.Sorted(maps.Keys(other.runtimeDeps)) {
		if err := p.AddRuntimeDependency(other.runtimeDeps[dest], dest, destDir); err != nil {
			return err
		}
	}
	p.refs[other] = struct{}{}
	for ref := range other.refs {
		p.refs[ref] = struct{}{}
	}
	return nil
}

// parentToken replaces leading ".." segments of a source path in its
// output path.
const parentToken = "__"

// sourceAndOutput resolves src against the project directory and derives
// the output path inside BuiltDir with ext appended. Absolute sources
// only keep their base name; sources above the project directory keep
// their shape with each leading ".." renamed, so outputs never leave
// BuiltDir.
func (p *Project) sourceAndOutput(src, ext string) (string, string) {
	src = filepath.Clean(src)
	if filepath.IsAbs(src) {
		return src, filepath.Join(p.BuiltDir, filepath.Base(src)+ext)
	}
	return filepath.Join(p.Dir, src), filepath.Join(p.BuiltDir, outputRel(src)+ext)
}

// outputRel maps a cleaned relative path to one that stays below its base.
func outputRel(rel string) string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, part := range parts {
		if part != ".." {
			break
		}
		parts[i] = parentToken
	}
	return filepath.FromSlash(strings.Join(parts, "/"))
}

func (p *Project) applyCompileOptions(t *domain.CompileTask) {
	t.Defines = append(t.Defines, p.Defines...)
	t.IncludePaths = append(t.IncludePaths, p.IncludePaths...)
	if p.CompileHook != nil {
		p.CompileHook(t)
	}
}

// CompileOne returns a pending compile task for src. Its object becomes an
// input of the project.
func (p *Project) CompileOne(src string) (*domain.CompileTask, error) {
	tc, err := p.Toolchain()
	if err != nil {
		return nil, err
	}
	src, out := p.sourceAndOutput(src, tc.Traits().ObjectExt)
	task := domain.NewCompileTask(src, out, p.Dir)
	p.applyCompileOptions(task)
	p.AddInput(out)
	task.Bind(p.compileEmitter(tc, task))
	return task, nil
}

// Compile returns a pending group with one compile task per source.
func (p *Project) Compile(srcs ...string) (*domain.TaskGroup[*domain.CompileTask], error) {
	tasks := make([]*domain.CompileTask, 0, len(srcs))
	for _, src := range srcs {
		task, err := p.CompileOne(src)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return domain.NewTaskGroup(tasks...), nil
}

// MakePrecompiledHeader returns a pending task that creates a PCH from
// src. When the toolchain has no PCH support or reallyCreate is false, it
// returns an inert task whose output is the header itself, so callers can
// force-include it the same way.
func (p *Project) MakePrecompiledHeader(src string, reallyCreate bool) (*domain.CompileTask, error) {
	tc, err := p.Toolchain()
	if err != nil {
		return nil, err
	}
	traits := tc.Traits()
	if !traits.SupportsPCH || !reallyCreate {
		header, _ := p.sourceAndOutput(src, "")
		return domain.NewCompileTask(header, header, p.Dir), nil
	}

	src, out := p.sourceAndOutput(src, traits.PCHExt)
	task := domain.NewCompileTask(src, out, p.Dir)
	task.CreatePCH = true
	p.applyCompileOptions(task)
	if traits.MSVCStyle {
		p.AddInput(out + traits.ObjectExt)
	}
	task.Bind(p.compileEmitter(tc, task))
	return task, nil
}

func (p *Project) compileEmitter(tc ports.ToolChain, t *domain.CompileTask) domain.Emitter {
	return func() error {
		t.ExtraDeps = append(t.ExtraDeps, p.forcedDeps...)
		if err := tc.RenderCompile(p.emission(), t); err != nil {
			return zerr.With(err, "project", p.name)
		}
		p.registerAlias(&t.TaskBase, t.OutputPath)
		return nil
	}
}

func (p *Project) selectOutput(output, library string) error {
	if p.outputPath != "" {
		err := zerr.Wrap(domain.ErrOutputAlreadySelected, "cannot select a second output")
		err = zerr.With(err, "project", p.name)
		return zerr.With(err, "output", p.outputPath)
	}
	p.outputPath = output
	p.libraryPath = library
	return nil
}

// MakeStaticLibrary returns a pending archive task producing lib<name>.a,
// or <name>.lib for MSVC-style toolchains.
func (p *Project) MakeStaticLibrary(name string) (*domain.ArchiveTask, error) {
	tc, err := p.Toolchain()
	if err != nil {
		return nil, err
	}
	name = filepath.Clean(name)
	out := filepath.Join(p.BuiltDir, "lib"+name+".a")
	if tc.Traits().MSVCStyle {
		out = filepath.Join(p.BuiltDir, name+".lib")
	}
	if err := p.selectOutput(out, out); err != nil {
		return nil, err
	}
	p.LinkLibraries = append(p.LinkLibraries, out)
	p.LinkLibraries = append(p.LinkLibraries, p.inputLibs...)

	task := domain.NewArchiveTask(out, p.Dir)
	task.PhonyAlias = name
	task.Bind(func() error {
		task.Inputs = concat(p.inputs, task.Inputs)
		if err := tc.RenderArchive(p.emission(), task); err != nil {
			return zerr.With(err, "project", p.name)
		}
		p.registerAlias(&task.TaskBase, task.OutputPath)
		return nil
	})
	return task, nil
}

// MakeSharedLibrary returns a pending link task producing a shared library.
func (p *Project) MakeSharedLibrary(name string) (*domain.LinkTask, error) {
	tc, err := p.Toolchain()
	if err != nil {
		return nil, err
	}
	traits := tc.Traits()
	name = filepath.Clean(name)

	var out, lib string
	switch {
	case traits.TargetWindows && traits.MSVCStyle:
		out = filepath.Join(p.BuiltDir, name+".dll")
		lib = filepath.Join(p.BuiltDir, name+".lib")
	case traits.TargetWindows:
		// mingw links against the DLL directly.
		out = filepath.Join(p.BuiltDir, name+".dll")
		lib = out
	default:
		out = filepath.Join(p.BuiltDir, "lib"+name+".so")
		lib = out
	}
	if err := p.selectOutput(out, lib); err != nil {
		return nil, err
	}
	p.LinkLibraries = append(p.LinkLibraries, lib)
	if err := p.AddRuntimeDependency(out, "", ""); err != nil {
		return nil, err
	}

	task := domain.NewLinkTask(out, p.Dir, false)
	task.LibraryPath = lib
	task.PhonyAlias = name
	task.Bind(p.linkEmitter(tc, task))
	return task, nil
}

// MakeExecutable returns a pending link task producing an executable.
// Release variants get link-time optimization when the toolchain supports it.
func (p *Project) MakeExecutable(name string) (*domain.LinkTask, error) {
	tc, err := p.Toolchain()
	if err != nil {
		return nil, err
	}
	traits := tc.Traits()
	name = filepath.Clean(name)

	out := filepath.Join(p.BuiltDir, name)
	if traits.TargetWindows {
		out += ".exe"
	}
	if err := p.selectOutput(out, ""); err != nil {
		return nil, err
	}
	if err := p.AddRuntimeDependency(out, "", ""); err != nil {
		return nil, err
	}

	task := domain.NewLinkTask(out, p.Dir, true)
	task.PhonyAlias = name
	if p.variant.Has("config", "rel") {
		task.LTO = traits.LTOSupport
	}
	task.Bind(p.linkEmitter(tc, task))
	return task, nil
}

func (p *Project) linkEmitter(tc ports.ToolChain, t *domain.LinkTask) domain.Emitter {
	return func() error {
		t.Inputs = concat(p.inputs, p.inputLibs, t.Inputs)
		if err := tc.RenderLink(p.emission(), t); err != nil {
			return zerr.With(err, "project", p.name)
		}
		p.registerAlias(&t.TaskBase, t.OutputPath)
		return nil
	}
}

func (p *Project) registerAlias(b *domain.TaskBase, output string) {
	if b.PhonyAlias != "" {
		p.reg.AddPhonyTarget(b.PhonyAlias, output)
	}
}

func (p *Project) emission() emission {
	return emission{reg: p.reg, p: p}
}

// CustomCommand emits an edge running command. Relative inputs resolve
// against the project directory and relative outputs against BuiltDir.
func (p *Project) CustomCommand(command, desc string, inputs, outputs []string) error {
	ins := make([]string, 0, len(inputs))
	for _, in := range inputs {
		ins = append(ins, resolvePath(p.Dir, in))
	}
	outs := make([]string, 0, len(outputs))
	for _, out := range outputs {
		outs = append(outs, resolvePath(p.BuiltDir, out))
	}
	return p.reg.customCommand(command, desc, ins, outs)
}

// Copy emits a file copy from src, relative to the project directory, to
// dest, relative to BuiltDir. A non-empty alias names a phony target
// covering dest.
func (p *Project) Copy(src, dest, alias string) error {
	return p.reg.copyFile(p.reg.edges, resolvePath(p.Dir, src), resolvePath(p.BuiltDir, dest), alias)
}

// Deploy copies every runtime dependency of p into destDir. It may be
// called once per project.
func (p *Project) Deploy(destDir, alias string) error {
	if p.deployed {
		return zerr.With(zerr.Wrap(domain.ErrDeployTwice, "cannot deploy"), "project", p.name)
	}
	p.deployed = true
	return p.reg.Deploy(p.runtimeDeps, destDir, alias)
}

func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

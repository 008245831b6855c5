// Package generator assembles the build graph: it constructs projects per
// variant, emits their tasks through toolchains and writes the final build
// file through a ports.BuildWriter.
package generator

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

// ConfigureFunc builds one project. It runs once per (name, variant) pair.
type ConfigureFunc func(ctx context.Context, p *Project) error

// Options configure a Registry.
type Options struct {
	// Root is the workspace root project directories are made relative to.
	Root string
	// BuildFile is the absolute path of the build file being generated.
	BuildFile string
	// BuiltDir is the absolute output root. Projects build into
	// BuiltDir/<project rel dir>/<variant>.
	BuiltDir string
	// Invoker is the command prefix of the invocation wrapper.
	Invoker string
	// Regenerate is the command that rewrites the build file.
	Regenerate string
	// SelectToolchain maps a variant to the name of its toolchain.
	SelectToolchain func(domain.Variant) string
	// Tracer is optional.
	Tracer ports.Tracer
}

// ResponseFile is the content of one response file recorded during a run.
type ResponseFile struct {
	Path    string
	Content []byte
}

// Result describes a finished generation run.
type Result struct {
	ResponseFiles []ResponseFile
	// Projects lists "<name> <variant>" for every constructed project, sorted.
	Projects []string
	Variants []string
	Edges    int
	// Inputs are the generator inputs, sorted.
	Inputs []string
}

type constructionState uint8

const (
	underConstruction constructionState = iota + 1
	registered
)

type projectKey struct {
	name    string
	variant string
}

type projectEntry struct {
	state   constructionState
	project *Project
}

type definition struct {
	dir       string
	relDir    string
	configure ConfigureFunc
}

type deployFile struct {
	src   string
	alias string
}

// Registry owns every project, toolchain and phony alias of one generation
// run. It is not safe for concurrent use.
type Registry struct {
	opts Options

	toolchains map[string]ports.ToolChain
	defs       map[string]definition
	projects   map[projectKey]*projectEntry
	stack      []projectKey

	phony         map[string][]string
	responseFiles []ResponseFile
	edges         *buffer
	deploys       map[string]deployFile
	inputs        []string
	seenInputs    map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:       opts,
		toolchains: make(map[string]ports.ToolChain),
		defs:       make(map[string]definition),
		projects:   make(map[projectKey]*projectEntry),
		phony:      make(map[string][]string),
		edges:      &buffer{},
		deploys:    make(map[string]deployFile),
		seenInputs: make(map[string]struct{}),
	}
}

// BuildFile returns the absolute path of the build file.
func (r *Registry) BuildFile() string {
	return r.opts.BuildFile
}

// AddToolchain registers tc under its name.
func (r *Registry) AddToolchain(tc ports.ToolChain) error {
	if _, ok := r.toolchains[tc.Name()]; ok {
		return zerr.With(zerr.Wrap(domain.ErrDuplicateToolchain, "cannot add toolchain"), "toolchain", tc.Name())
	}
	r.toolchains[tc.Name()] = tc
	return nil
}

// Toolchain returns the toolchain registered under name.
func (r *Registry) Toolchain(name string) (ports.ToolChain, error) {
	tc, ok := r.toolchains[name]
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrToolchainNotFound, "cannot resolve toolchain"), "toolchain", name)
		return nil, zerr.With(err, "available", slices.Sorted(maps.Keys(r.toolchains)))
	}
	return tc, nil
}

// Define registers the configure callback of a project kind. Defining the
// same name from the same directory again is a no-op.
func (r *Registry) Define(name, dir string, configure ConfigureFunc) error {
	if d, ok := r.defs[name]; ok {
		if d.dir == dir {
			return nil
		}
		err := zerr.Wrap(domain.ErrDuplicateProject, "project defined twice")
		err = zerr.With(err, "project", name)
		err = zerr.With(err, "first_occurrence", d.dir)
		return zerr.With(err, "duplicate_at", dir)
	}

	rel, err := filepath.Rel(r.opts.Root, dir)
	if r.opts.Root == "" || err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		rel = name
	}
	r.defs[name] = definition{dir: dir, relDir: rel, configure: configure}
	return nil
}

// Project returns the project name built for v, constructing it on first
// use. A project that requests itself while under construction fails with
// ErrCyclicDependency.
func (r *Registry) Project(ctx context.Context, name string, v domain.Variant) (*Project, error) {
	key := projectKey{name: name, variant: v.String()}
	if e, ok := r.projects[key]; ok {
		if e.state == registered {
			return e.project, nil
		}
		err := zerr.Wrap(domain.ErrCyclicDependency, "project requested while under construction")
		err = zerr.With(err, "project", name)
		return nil, zerr.With(err, "cycle", r.cycle(key))
	}

	def, ok := r.defs[name]
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrProjectNotFound, "cannot resolve project"), "project", name)
		return nil, zerr.With(err, "variant", v.String())
	}

	p := newProject(r, name, v, def)
	entry := &projectEntry{state: underConstruction, project: p}
	r.projects[key] = entry
	r.stack = append(r.stack, key)

	ctx, span := r.startSpan(ctx, "project "+name+" "+v.String())
	err := def.configure(ctx, p)
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		span.RecordError(err)
		span.End()
		delete(r.projects, key)
		err = zerr.Wrap(err, "failed to configure project")
		err = zerr.With(err, "project", name)
		return nil, zerr.With(err, "variant", v.String())
	}
	span.End()

	entry.state = registered
	return p, nil
}

// cycle lists the project names from the first construction of key to the
// repeated request.
func (r *Registry) cycle(key projectKey) []string {
	start := slices.Index(r.stack, key)
	if start < 0 {
		return []string{key.name}
	}
	names := make([]string, 0, len(r.stack)-start+1)
	for _, k := range r.stack[start:] {
		names = append(names, k.name)
	}
	return append(names, key.name)
}

// AddPhonyTarget adds path to the phony alias.
func (r *Registry) AddPhonyTarget(alias, path string) {
	r.phony[alias] = append(r.phony[alias], path)
}

// AddGeneratorInput records files whose change regenerates the build file.
func (r *Registry) AddGeneratorInput(paths ...string) {
	for _, p := range paths {
		if _, ok := r.seenInputs[p]; ok {
			continue
		}
		r.seenInputs[p] = struct{}{}
		r.inputs = append(r.inputs, p)
	}
}

// Deploy schedules files (destination to source) to be copied under
// destDir. A destination claimed by a different source fails with
// ErrRuntimeDependencyConflict. The first non-empty alias is kept.
func (r *Registry) Deploy(files map[string]string, destDir, alias string) error {
	if destDir != "" {
		destDir = filepath.Clean(destDir)
		if !filepath.IsAbs(destDir) {
			return zerr.With(zerr.Wrap(domain.ErrRelativeRuntimePath, "deploy directory must be absolute"), "dir", destDir)
		}
	}

	for _, dest := range slices.Sorted(maps.Keys(files)) {
		src := files[dest]
		if destDir != "" && !filepath.IsAbs(dest) {
			dest = filepath.Join(destDir, dest)
		}
		cur, ok := r.deploys[dest]
		if !ok {
			r.deploys[dest] = deployFile{src: src, alias: alias}
			continue
		}
		if cur.src != src {
			err := zerr.Wrap(domain.ErrRuntimeDependencyConflict, "conflicting deploy files")
			err = zerr.With(err, "dest", dest)
			err = zerr.With(err, "old", cur.src)
			return zerr.With(err, "new", src)
		}
		if cur.alias == "" && alias != "" {
			r.deploys[dest] = deployFile{src: src, alias: alias}
		}
	}
	return nil
}

func (r *Registry) customCommand(command, desc string, inputs, outputs []string) error {
	if desc == "" {
		desc = command
	}
	return r.edges.Build(domain.Edge{
		Outputs: outputs,
		Rule:    domain.CustomCommandRule,
		Inputs:  inputs,
		Vars: []domain.Var{
			{Name: domain.VarCommand, Value: command},
			{Name: domain.VarDesc, Value: desc},
		},
	})
}

func (r *Registry) copyFile(w ports.BuildWriter, src, dest, alias string) error {
	if err := w.Build(domain.Edge{
		Outputs: []string{dest},
		Rule:    domain.FileCopyRule,
		Inputs:  []string{src},
	}); err != nil {
		return err
	}
	if alias != "" {
		r.AddPhonyTarget(alias, dest)
	}
	return nil
}

func (r *Registry) writeResponseFile(output string, options []string) string {
	path := domain.ResponseFilePath(output)
	r.responseFiles = append(r.responseFiles, ResponseFile{
		Path:    path,
		Content: []byte(strings.Join(options, "\n")),
	})
	return path
}

// Finish writes the complete build file to w: the shared rules, toolchain
// rules, every buffered edge, deploy copies, phony aliases and the
// regenerator.
func (r *Registry) Finish(ctx context.Context, w ports.BuildWriter) (*Result, error) {
	_, span := r.startSpan(ctx, "finish")
	defer span.End()

	cw := &countingWriter{BuildWriter: w}
	if err := r.finish(cw); err != nil {
		span.RecordError(err)
		return nil, err
	}

	res := &Result{
		ResponseFiles: slices.Clone(r.responseFiles),
		Edges:         cw.edges,
		Inputs:        slices.Sorted(slices.Values(r.inputs)),
	}
	variants := make(map[string]struct{})
	for key, e := range r.projects {
		if e.state != registered {
			continue
		}
		res.Projects = append(res.Projects, key.name+" "+key.variant)
		variants[key.variant] = struct{}{}
	}
	slices.Sort(res.Projects)
	res.Variants = slices.Sorted(maps.Keys(variants))
	span.SetAttribute("edges", res.Edges)
	return res, nil
}

func (r *Registry) finish(w ports.BuildWriter) error {
	if err := r.writeSharedRules(w); err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(r.toolchains)) {
		if err := r.toolchains[name].WriteRules(w); err != nil {
			return err
		}
	}

	if err := w.Section("build edges"); err != nil {
		return err
	}
	if err := r.edges.replay(w); err != nil {
		return err
	}

	if len(r.deploys) > 0 {
		if err := w.Section("deploy"); err != nil {
			return err
		}
		for _, dest := range slices.Sorted(maps.Keys(r.deploys)) {
			d := r.deploys[dest]
			if err := r.copyFile(w, d.src, dest, d.alias); err != nil {
				return err
			}
		}
	}

	if err := r.writePhonyTargets(w); err != nil {
		return err
	}
	return r.writeRegenerator(w)
}

func (r *Registry) writeSharedRules(w ports.BuildWriter) error {
	if err := w.Section(domain.CustomCommandRule); err != nil {
		return err
	}
	if err := w.Rule(domain.Rule{
		Name:        domain.CustomCommandRule,
		Command:     "$" + domain.VarCommand,
		Description: "$" + domain.VarDesc,
		Restat:      true,
	}); err != nil {
		return err
	}
	if err := w.Section("File copy"); err != nil {
		return err
	}
	return w.Rule(domain.Rule{
		Name:        domain.FileCopyRule,
		Command:     r.opts.Invoker + ` copy "$in" "$out"`,
		Description: "Copy $in -> $out",
		Restat:      true,
	})
}

func (r *Registry) writePhonyTargets(w ports.BuildWriter) error {
	if len(r.phony) == 0 {
		return nil
	}
	if err := w.Section("phony targets"); err != nil {
		return err
	}
	for _, alias := range slices.Sorted(maps.Keys(r.phony)) {
		if err := w.Build(domain.Edge{
			Outputs: []string{alias},
			Rule:    domain.PhonyRule,
			Inputs:  slices.Compact(slices.Sorted(slices.Values(r.phony[alias]))),
		}); err != nil {
			return err
		}
	}
	return nil
}

// writeRegenerator declares the build file as the output of the generator
// so ninja reruns it when any generator input changes. Response files are
// outputs too, so deleting one triggers regeneration.
func (r *Registry) writeRegenerator(w ports.BuildWriter) error {
	if err := w.Section("Remake " + domain.BuildFileName + " if any generator input changed."); err != nil {
		return err
	}
	if err := w.Rule(domain.Rule{
		Name:        domain.RegenerateRule,
		Command:     r.opts.Regenerate,
		Description: "Regenerating " + domain.BuildFileName,
		Generator:   true,
		Restat:      true,
	}); err != nil {
		return err
	}

	rsp := make([]string, 0, len(r.responseFiles))
	for _, f := range r.responseFiles {
		rsp = append(rsp, f.Path)
	}
	inputs := slices.Sorted(slices.Values(r.inputs))

	// ninja matches the manifest by the name it was loaded with, which is
	// the bare file name when run with -C <built dir>.
	if err := w.Build(domain.Edge{
		Outputs:         []string{filepath.Base(r.opts.BuildFile)},
		ImplicitOutputs: rsp,
		Rule:            domain.RegenerateRule,
		ImplicitDeps:    inputs,
	}); err != nil {
		return err
	}
	if len(inputs) == 0 {
		return nil
	}
	// A deleted configuration file must not fail the build as a missing input.
	return w.Build(domain.Edge{Outputs: inputs, Rule: domain.PhonyRule})
}

func (r *Registry) startSpan(ctx context.Context, name string) (context.Context, ports.Span) {
	if r.opts.Tracer == nil {
		return ctx, noopSpan{}
	}
	return r.opts.Tracer.Start(ctx, name)
}

type noopSpan struct{}

func (noopSpan) Write(p []byte) (int, error) { return len(p), nil }
func (noopSpan) End() {}
func (noopSpan) RecordError(error) {}
func (noopSpan) SetAttribute(string, any) {}

package generator

import (
	"context"
	"path/filepath"
	"strings"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

// DeployAlias is the phony target covering every deployed file.
const DeployAlias = "deploy"

// Load registers the toolchains and project definitions of ws, and every
// configuration file as a generator input.
func Load(r *Registry, factory ports.ToolchainFactory, ws *domain.Workspace) error {
	for _, spec := range ws.Toolchains {
		tc, err := factory.New(spec)
		if err != nil {
			return err
		}
		if err := r.AddToolchain(tc); err != nil {
			return err
		}
	}
	for _, name := range ws.ProjectNames() {
		spec := ws.Projects[name]
		if err := r.Define(spec.Name, spec.Dir, FromSpec(spec)); err != nil {
			return err
		}
	}
	r.AddGeneratorInput(ws.Files...)
	return nil
}

// BuildTargets constructs every requested (project, variant) pair and
// schedules deployments.
func BuildTargets(ctx context.Context, r *Registry, ws *domain.Workspace, targets []domain.TargetSpec) error {
	if len(targets) == 0 {
		return domain.ErrNoTargets
	}
	// A pair named twice deploys once per distinct directory.
	deployed := make(map[projectKey]string)
	for _, t := range targets {
		for _, key := range t.Variants {
			v, err := ws.Schema.Parse(key)
			if err != nil {
				return zerr.With(err, "project", t.Project)
			}
			p, err := r.Project(ctx, t.Project, v)
			if err != nil {
				return err
			}
			if t.Deploy == "" {
				continue
			}
			dir := filepath.Join(resolvePath(ws.Root, t.Deploy), v.String())
			pk := projectKey{name: t.Project, variant: v.String()}
			if deployed[pk] == dir {
				continue
			}
			if err := p.Deploy(dir, DeployAlias); err != nil {
				return err
			}
			deployed[pk] = dir
		}
	}
	return nil
}

// FromSpec returns the ConfigureFunc of a declarative project. Library
// dependencies are resolved first, so their edges precede the project's.
func FromSpec(spec *domain.ProjectSpec) ConfigureFunc {
	return func(ctx context.Context, p *Project) error {
		r := p.Registry()
		if spec.File != "" {
			r.AddGeneratorInput(spec.File)
		}

		for _, dep := range spec.Deps {
			other, err := r.Project(ctx, dep, p.Variant())
			if err != nil {
				return err
			}
			if err := p.AddLibraryDependency(other); err != nil {
				return err
			}
		}
		for _, lib := range spec.Libs {
			if err := p.AddInputLibrary(libraryPath(p.Dir, lib)); err != nil {
				return err
			}
		}
		for _, in := range spec.Inputs {
			p.AddInput(resolvePath(p.Dir, in))
		}
		for _, dep := range spec.ForcedDeps {
			p.AddForcedDependency(resolvePath(p.Dir, dep))
		}

		overlays := matchingOverlays(spec.When, p.Variant())
		p.Defines = append(p.Defines, spec.Defines...)
		for _, inc := range spec.Includes {
			p.IncludePaths = append(p.IncludePaths, resolvePath(p.Dir, inc))
		}
		for _, o := range overlays {
			p.Defines = append(p.Defines, o.Defines...)
			for _, inc := range o.Includes {
				p.IncludePaths = append(p.IncludePaths, resolvePath(p.Dir, inc))
			}
		}

		orderOnly := make([]string, 0, len(spec.OrderOnlyDeps))
		for _, dep := range spec.OrderOnlyDeps {
			orderOnly = append(orderOnly, resolvePath(p.Dir, dep))
		}
		p.CompileHook = func(t *domain.CompileTask) {
			spec.Compile.Apply(t)
			for _, o := range overlays {
				o.Compile.Apply(t)
			}
			t.OrderOnlyDeps = append(t.OrderOnlyDeps, orderOnly...)
		}

		for _, c := range spec.Commands {
			if err := p.CustomCommand(c.Command, c.Description, c.Inputs, c.Outputs); err != nil {
				return err
			}
		}
		for _, c := range spec.Copies {
			if err := p.Copy(c.From, c.To, c.Alias); err != nil {
				return err
			}
		}

		usePCH, err := compilePCH(p, spec)
		if err != nil {
			return err
		}
		if err := compileGroup(p, spec.Sources, domain.CompileSettings{}, usePCH); err != nil {
			return err
		}
		for _, f := range spec.Files {
			if err := compileGroup(p, f.Sources, f.Compile, usePCH); err != nil {
				return err
			}
		}

		return makeOutput(p, spec)
	}
}

func compilePCH(p *Project, spec *domain.ProjectSpec) (string, error) {
	if spec.PCH == "" {
		return "", nil
	}
	pch, err := p.MakePrecompiledHeader(spec.PCH, !spec.NoPCH)
	if err != nil {
		return "", err
	}
	if err := pch.EmitNow(); err != nil {
		return "", err
	}
	return pch.OutputPath, nil
}

func compileGroup(p *Project, sources []string, settings domain.CompileSettings, usePCH string) error {
	if len(sources) == 0 {
		return nil
	}
	group, err := p.Compile(sources...)
	if err != nil {
		return err
	}
	return domain.Configure(group, func(g *domain.TaskGroup[*domain.CompileTask]) error {
		g.Set(func(t *domain.CompileTask) {
			settings.Apply(t)
			t.UsePCH = usePCH
		})
		return nil
	})
}

func makeOutput(p *Project, spec *domain.ProjectSpec) error {
	name := spec.OutputName
	if name == "" {
		name = spec.Name
	}

	switch spec.Output {
	case domain.OutputStatic:
		task, err := p.MakeStaticLibrary(name)
		if err != nil {
			return err
		}
		return task.EmitNow()
	case domain.OutputShared, domain.OutputExecutable:
		var (
			task *domain.LinkTask
			err  error
		)
		if spec.Output == domain.OutputShared {
			task, err = p.MakeSharedLibrary(name)
		} else {
			task, err = p.MakeExecutable(name)
		}
		if err != nil {
			return err
		}
		return domain.Configure(task, func(t *domain.LinkTask) error {
			spec.Link.Apply(t)
			return nil
		})
	default:
		// Pseudo projects forward their input libraries.
		p.LinkLibraries = append(p.LinkLibraries, p.InputLibraries()...)
		return nil
	}
}

func matchingOverlays(when []domain.Overlay, v domain.Variant) []domain.Overlay {
	var out []domain.Overlay
	for _, o := range when {
		if v.Matches(o.Match) {
			out = append(out, o)
		}
	}
	return out
}

// libraryPath keeps bare library names such as "pthread" for the linker
// search path and resolves anything that looks like a file.
func libraryPath(dir, lib string) string {
	if !strings.ContainsAny(lib, `/\`) && filepath.Ext(lib) == "" {
		return lib
	}
	return resolvePath(dir, lib)
}

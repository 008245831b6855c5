package generator_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/engine/generator"
)

// project constructs a project through the registry and hands it to fn
// while it is under construction.
func project(t *testing.T, reg *generator.Registry, name, key string, fn func(p *generator.Project) error) *generator.Project {
	t.Helper()
	require.NoError(t, reg.Define(name, "/ws/"+name, func(_ context.Context, p *generator.Project) error {
		return fn(p)
	}))
	p, err := reg.Project(context.Background(), name, variant(t, key))
	require.NoError(t, err)
	return p
}

func responseFile(t *testing.T, res *generator.Result, path string) string {
	t.Helper()
	for _, f := range res.ResponseFiles {
		if f.Path == path {
			return string(f.Content)
		}
	}
	require.Failf(t, "response file not written", "%s", path)
	return ""
}

func TestProject_RuntimeDependencies(t *testing.T) {
	reg := newRegistry(t)
	project(t, reg, "app", testVariant, func(p *generator.Project) error {
		require.NoError(t, p.AddRuntimeDependency("/opt/lib/libz.so", "", ""))
		require.NoError(t, p.AddRuntimeDependency("/opt/lib/libz.so", "", ""))
		require.NoError(t, p.AddRuntimeDependency("/opt/share/data.bin", "", "res"))

		err := p.AddRuntimeDependency("/other/libz.so", "", "")
		require.ErrorIs(t, err, domain.ErrRuntimeDependencyConflict)
		md := metadata(err)
		assert.Equal(t, "libz.so", md["dest"])
		assert.Equal(t, "/opt/lib/libz.so", md["old"])
		assert.Equal(t, "/other/libz.so", md["new"])

		require.ErrorIs(t, p.AddRuntimeDependency("rel/libz.so", "", ""), domain.ErrRelativeRuntimePath)

		assert.Equal(t, map[string]string{
			"libz.so":      "/opt/lib/libz.so",
			"res/data.bin": "/opt/share/data.bin",
		}, p.RuntimeDependencies())
		return nil
	})
}

func TestProject_LibraryDependencyMergesRuntimeDeps(t *testing.T) {
	reg := newRegistry(t)
	base := project(t, reg, "base", testVariant, func(p *generator.Project) error {
		_, err := p.MakeSharedLibrary("base")
		return err
	})
	mid := project(t, reg, "mid", testVariant, func(p *generator.Project) error {
		_, err := p.MakeSharedLibrary("mid")
		if err != nil {
			return err
		}
		return p.AddLibraryDependency(base)
	})
	app := project(t, reg, "app", testVariant, func(p *generator.Project) error {
		return p.AddLibraryDependency(mid)
	})

	assert.Equal(t, []string{"/ws/built/mid/" + testVariant + "/libmid.so"}, app.InputLibraries())
	assert.Equal(t, map[string]string{
		"libbase.so": "/ws/built/base/" + testVariant + "/libbase.so",
		"libmid.so":  "/ws/built/mid/" + testVariant + "/libmid.so",
	}, app.RuntimeDependencies())
	assert.Equal(t, []string{"base " + testVariant, "mid " + testVariant}, app.References())
}

func TestProject_OutputAlreadySelected(t *testing.T) {
	reg := newRegistry(t)
	project(t, reg, "lib", testVariant, func(p *generator.Project) error {
		_, err := p.MakeStaticLibrary("lib")
		require.NoError(t, err)

		_, err = p.MakeExecutable("lib")
		require.ErrorIs(t, err, domain.ErrOutputAlreadySelected)
		assert.Equal(t, p.OutputPath(), metadata(err)["output"])
		return nil
	})
}

func TestProject_OutputNaming(t *testing.T) {
	tests := []struct {
		name     string
		variant  string
		make     func(p *generator.Project) error
		output   string
		library  string
		linkLibs []string
	}{
		{
			name:    "gcc static",
			variant: testVariant,
			make: func(p *generator.Project) error {
				_, err := p.MakeStaticLibrary("foo")
				return err
			},
			output:   "libfoo.a",
			library:  "libfoo.a",
			linkLibs: []string{"libfoo.a"},
		},
		{
			name:    "msvc static",
			variant: "windows-msvc-amd64-dbg-dcrt",
			make: func(p *generator.Project) error {
				_, err := p.MakeStaticLibrary("foo")
				return err
			},
			output:   "foo.lib",
			library:  "foo.lib",
			linkLibs: []string{"foo.lib"},
		},
		{
			name:    "gcc shared",
			variant: testVariant,
			make: func(p *generator.Project) error {
				_, err := p.MakeSharedLibrary("foo")
				return err
			},
			output:   "libfoo.so",
			library:  "libfoo.so",
			linkLibs: []string{"libfoo.so"},
		},
		{
			name:    "msvc shared uses an import library",
			variant: "windows-msvc-amd64-dbg-dcrt",
			make: func(p *generator.Project) error {
				_, err := p.MakeSharedLibrary("foo")
				return err
			},
			output:   "foo.dll",
			library:  "foo.lib",
			linkLibs: []string{"foo.lib"},
		},
		{
			name:    "mingw shared links the dll",
			variant: "windows-gcc-x86-dbg-dcrt",
			make: func(p *generator.Project) error {
				_, err := p.MakeSharedLibrary("foo")
				return err
			},
			output:   "foo.dll",
			library:  "foo.dll",
			linkLibs: []string{"foo.dll"},
		},
		{
			name:    "windows executable",
			variant: "windows-gcc-x86-dbg-dcrt",
			make: func(p *generator.Project) error {
				_, err := p.MakeExecutable("foo")
				return err
			},
			output: "foo.exe",
		},
		{
			name:    "linux executable",
			variant: testVariant,
			make: func(p *generator.Project) error {
				_, err := p.MakeExecutable("foo")
				return err
			},
			output: "foo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newRegistry(t)
			p := project(t, reg, "foo", tt.variant, tt.make)

			dir := "/ws/built/foo/" + tt.variant + "/"
			assert.Equal(t, dir+tt.output, p.OutputPath())
			if tt.library != "" {
				assert.Equal(t, dir+tt.library, p.LibraryPath())
			}
			var linkLibs []string
			for _, l := range tt.linkLibs {
				linkLibs = append(linkLibs, dir+l)
			}
			assert.Equal(t, linkLibs, p.LinkLibraries)
		})
	}
}

func TestProject_CompilePaths(t *testing.T) {
	reg := newRegistry(t)
	p := project(t, reg, "lib", testVariant, func(p *generator.Project) error {
		rel, err := p.CompileOne("src/../src/a.cpp")
		require.NoError(t, err)
		assert.Equal(t, "/ws/lib/src/a.cpp", rel.SourcePath)
		assert.Equal(t, "/ws/built/lib/"+testVariant+"/src/a.cpp.o", rel.OutputPath)
		assert.Equal(t, "/ws/lib", rel.WorkingDir)

		abs, err := p.CompileOne("/elsewhere/gen/b.cpp")
		require.NoError(t, err)
		assert.Equal(t, "/elsewhere/gen/b.cpp", abs.SourcePath)
		assert.Equal(t, "/ws/built/lib/"+testVariant+"/b.cpp.o", abs.OutputPath)
		return nil
	})

	assert.Equal(t, []string{
		"/ws/built/lib/" + testVariant + "/src/a.cpp.o",
		"/ws/built/lib/" + testVariant + "/b.cpp.o",
	}, p.Inputs())
}

func TestProject_ParentSourcesStayInVariantDir(t *testing.T) {
	reg := newRegistry(t)
	outputs := make(map[string]string)
	require.NoError(t, reg.Define("lib", "/ws/lib", func(_ context.Context, p *generator.Project) error {
		task, err := p.CompileOne("../common/x.cpp")
		if err != nil {
			return err
		}
		assert.Equal(t, "/ws/common/x.cpp", task.SourcePath)
		outputs[p.Variant().String()] = task.OutputPath
		return nil
	}))

	keys := []string{"linux-gcc-amd64-dbg-dcrt", "linux-gcc-amd64-rel-dcrt"}
	for _, key := range keys {
		_, err := reg.Project(context.Background(), "lib", variant(t, key))
		require.NoError(t, err)
	}

	require.Len(t, outputs, 2)
	for _, key := range keys {
		assert.Equal(t, "/ws/built/lib/"+key+"/__/common/x.cpp.o", outputs[key])
	}
	assert.NotEqual(t, outputs[keys[0]], outputs[keys[1]])
}

func TestProject_AbandonedTaskWritesNothing(t *testing.T) {
	reg := newRegistry(t)
	project(t, reg, "lib", testVariant, func(p *generator.Project) error {
		_, err := p.CompileOne("a.cpp")
		return err
	})

	out, log, res := finish(t, reg)
	assert.Empty(t, log.byRule("gcc-amd64_cxx"))
	assert.Empty(t, res.ResponseFiles)
	assert.NotContains(t, out, "a.cpp")
}

func TestProject_BroadcastWarnLevel(t *testing.T) {
	reg := newRegistry(t)
	project(t, reg, "lib", testVariant, func(p *generator.Project) error {
		group, err := p.Compile("a.cpp", "b.cpp", "c.cpp")
		require.NoError(t, err)
		require.Equal(t, 3, group.Len())

		return domain.Configure(group, func(g *domain.TaskGroup[*domain.CompileTask]) error {
			g.Set(func(t *domain.CompileTask) { t.WarnLevel = 1 })
			return nil
		})
	})

	_, log, res := finish(t, reg)
	assert.Len(t, log.byRule("gcc-amd64_cxx"), 3)
	require.Len(t, res.ResponseFiles, 3)
	for _, f := range res.ResponseFiles {
		lines := strings.Split(string(f.Content), "\n")
		assert.Contains(t, lines, "-Wall", f.Path)
		assert.NotContains(t, lines, "-Wextra", f.Path)
	}
}

func TestProject_ForcedDependencies(t *testing.T) {
	reg := newRegistry(t)
	project(t, reg, "lib", testVariant, func(p *generator.Project) error {
		task, err := p.CompileOne("a.cpp")
		require.NoError(t, err)
		task.ExtraDeps = append(task.ExtraDeps, "/ws/extra.h")
		task.OrderOnlyDeps = append(task.OrderOnlyDeps, "/ws/stamp")

		p.AddForcedDependency("/ws/gen/version.h", "/ws/gen/version.h")
		return task.EmitNow()
	})

	_, log, _ := finish(t, reg)
	edges := log.byRule("gcc-amd64_cxx")
	require.Len(t, edges, 1)
	assert.Equal(t, []string{
		"/ws/built/lib/" + testVariant + "/a.cpp.o.rsp",
		"/ws/extra.h",
		"/ws/gen/version.h",
	}, edges[0].ImplicitDeps)
	assert.Equal(t, []string{"/ws/stamp"}, edges[0].OrderOnlyDeps)
}

func TestProject_LinkTakesInputsAtEmission(t *testing.T) {
	reg := newRegistry(t)
	p := project(t, reg, "app", "linux-gcc-amd64-rel-dcrt", func(p *generator.Project) error {
		exe, err := p.MakeExecutable("app")
		require.NoError(t, err)
		assert.True(t, exe.LTO)

		objs, err := p.Compile("main.cpp")
		require.NoError(t, err)
		require.NoError(t, objs.EmitNow())
		require.NoError(t, p.AddInputLibrary("/opt/lib/libz.so"))
		p.AddInputLibraries("pthread")

		return exe.EmitNow()
	})

	_, log, res := finish(t, reg)
	links := log.byRule("gcc-amd64_link")
	require.Len(t, links, 1)
	dir := "/ws/built/app/linux-gcc-amd64-rel-dcrt/"
	assert.Equal(t, []string{dir + "main.cpp.o", "/opt/lib/libz.so"}, links[0].Inputs)
	assert.Contains(t, responseFile(t, res, dir+"app.rsp"), `"pthread"`)
	assert.Equal(t, "/opt/lib/libz.so", p.RuntimeDependencies()["libz.so"])

	phony := log.byRule(domain.PhonyRule)
	require.NotEmpty(t, phony)
	assert.Equal(t, []string{"app"}, phony[0].Outputs)
	assert.Equal(t, []string{dir + "app"}, phony[0].Inputs)
}

func TestProject_PrecompiledHeader(t *testing.T) {
	t.Run("gcc creates a pch", func(t *testing.T) {
		reg := newRegistry(t)
		project(t, reg, "lib", testVariant, func(p *generator.Project) error {
			pch, err := p.MakePrecompiledHeader("pch.h", true)
			require.NoError(t, err)
			assert.True(t, pch.CreatePCH)
			assert.Equal(t, "/ws/built/lib/"+testVariant+"/pch.h.gch", pch.OutputPath)
			assert.Empty(t, p.Inputs())
			return pch.EmitNow()
		})

		_, log, _ := finish(t, reg)
		copies := log.byRule(domain.FileCopyRule)
		require.Len(t, copies, 1)
		assert.Equal(t, []string{"/ws/built/lib/" + testVariant + "/pch.h"}, copies[0].Outputs)
	})

	t.Run("msvc adds the pch object as an input", func(t *testing.T) {
		reg := newRegistry(t)
		key := "windows-msvc-amd64-dbg-dcrt"
		project(t, reg, "lib", key, func(p *generator.Project) error {
			pch, err := p.MakePrecompiledHeader("pch.h", true)
			require.NoError(t, err)
			assert.Equal(t, []string{"/ws/built/lib/" + key + "/pch.h.pch.obj"}, p.Inputs())
			return pch.EmitNow()
		})
	})

	t.Run("disabled pch is the header itself", func(t *testing.T) {
		reg := newRegistry(t)
		project(t, reg, "lib", testVariant, func(p *generator.Project) error {
			pch, err := p.MakePrecompiledHeader("pch.h", false)
			require.NoError(t, err)
			assert.False(t, pch.CreatePCH)
			assert.Equal(t, "/ws/lib/pch.h", pch.OutputPath)
			return pch.EmitNow()
		})

		_, log, res := finish(t, reg)
		assert.Empty(t, log.byRule("gcc-amd64_cxx"))
		assert.Empty(t, res.ResponseFiles)
	})
}

func TestProject_CustomCommandAndCopy(t *testing.T) {
	reg := newRegistry(t)
	project(t, reg, "gen", testVariant, func(p *generator.Project) error {
		require.NoError(t, p.CustomCommand("python gen.py", "", []string{"gen.py"}, []string{"out/version.h"}))
		return p.Copy("data/x.txt", "data/x.txt", "data")
	})

	_, log, _ := finish(t, reg)
	dir := "/ws/built/gen/" + testVariant + "/"

	cmds := log.byRule(domain.CustomCommandRule)
	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"/ws/gen/gen.py"}, cmds[0].Inputs)
	assert.Equal(t, []string{dir + "out/version.h"}, cmds[0].Outputs)
	assert.Equal(t, []domain.Var{
		{Name: domain.VarCommand, Value: "python gen.py"},
		{Name: domain.VarDesc, Value: "python gen.py"},
	}, cmds[0].Vars)

	copies := log.byRule(domain.FileCopyRule)
	require.Len(t, copies, 1)
	assert.Equal(t, []string{"/ws/gen/data/x.txt"}, copies[0].Inputs)

	phony := log.byRule(domain.PhonyRule)
	require.NotEmpty(t, phony)
	assert.Equal(t, []string{"data"}, phony[0].Outputs)
}

func TestProject_DeployOnce(t *testing.T) {
	reg := newRegistry(t)
	project(t, reg, "app", testVariant, func(p *generator.Project) error {
		_, err := p.MakeExecutable("app")
		require.NoError(t, err)
		require.NoError(t, p.Deploy("/ws/dist", "deploy"))
		require.ErrorIs(t, p.Deploy("/ws/dist", "deploy"), domain.ErrDeployTwice)
		return nil
	})

	_, log, _ := finish(t, reg)
	copies := log.byRule(domain.FileCopyRule)
	require.Len(t, copies, 1)
	assert.Equal(t, []string{"/ws/dist/app"}, copies[0].Outputs)
}

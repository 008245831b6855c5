package generator_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weave/internal/adapters/ninja"
	"go.trai.ch/weave/internal/adapters/toolchain"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/engine/generator"
)

func testWorkspace(t *testing.T) *domain.Workspace {
	t.Helper()
	return &domain.Workspace{
		Root:            "/ws",
		BuiltDir:        "/ws/built",
		Schema:          testSchema(t),
		ToolchainFields: []string{"toolchain", "arch"},
		Toolchains: []domain.ToolchainSpec{
			{Name: "gcc-amd64", Family: domain.FamilyGCC, InstallDir: "/usr", AddressModel: "-m64"},
		},
		Projects: map[string]*domain.ProjectSpec{
			"lib": {
				Name:     "lib",
				Dir:      "/ws/lib",
				File:     "/ws/lib/weave.yaml",
				Output:   domain.OutputStatic,
				Sources:  []string{"src/a.cpp", "src/b.cpp"},
				Includes: []string{"include"},
				Defines:  []string{"LIB=1"},
			},
			"app": {
				Name:    "app",
				Dir:     "/ws/app",
				File:    "/ws/app/weave.yaml",
				Output:  domain.OutputExecutable,
				Sources: []string{"main.cpp"},
				Deps:    []string{"lib"},
			},
		},
		Targets: []domain.TargetSpec{{Project: "app", Variants: []string{testVariant}}},
		Files:   []string{"/ws/weave.work.yaml"},
	}
}

type generated struct {
	buildFile string
	log       *edgeLog
	result    *generator.Result
}

func generate(t *testing.T, ws *domain.Workspace) generated {
	t.Helper()
	reg := generator.NewRegistry(generator.Options{
		Root:            ws.Root,
		BuildFile:       domain.BuildFilePath(ws.BuiltDir),
		BuiltDir:        ws.BuiltDir,
		Invoker:         "weave invoke",
		Regenerate:      "weave generate",
		SelectToolchain: ws.ToolchainName,
	})
	require.NoError(t, generator.Load(reg, toolchain.NewFactory("weave invoke"), ws))
	require.NoError(t, generator.BuildTargets(context.Background(), reg, ws, ws.Targets))

	var sb strings.Builder
	log := &edgeLog{Writer: ninja.NewWriter(&sb)}
	res, err := reg.Finish(context.Background(), log)
	require.NoError(t, err)
	return generated{buildFile: sb.String(), log: log, result: res}
}

func TestGenerate_LibAndApp(t *testing.T) {
	out := generate(t, testWorkspace(t))

	libDir := "/ws/built/lib/" + testVariant + "/"
	appDir := "/ws/built/app/" + testVariant + "/"

	var toolchainEdges []domain.Edge
	for _, e := range out.log.edges {
		if strings.HasPrefix(e.Rule, "gcc-amd64_") {
			toolchainEdges = append(toolchainEdges, e)
		}
	}
	require.Len(t, toolchainEdges, 5)

	rules := make([]string, 0, len(toolchainEdges))
	primary := make([]string, 0, len(toolchainEdges))
	for _, e := range toolchainEdges {
		rules = append(rules, e.Rule)
		primary = append(primary, e.Outputs[0])
	}
	assert.Equal(t, []string{
		"gcc-amd64_cxx", "gcc-amd64_cxx", "gcc-amd64_lib",
		"gcc-amd64_cxx", "gcc-amd64_link",
	}, rules)
	assert.Equal(t, []string{
		libDir + "src/a.cpp.o",
		libDir + "src/b.cpp.o",
		libDir + "liblib.a",
		appDir + "main.cpp.o",
		appDir + "app",
	}, primary)

	assert.Equal(t, []string{libDir + "src/a.cpp.o", libDir + "src/b.cpp.o"}, toolchainEdges[2].Inputs)
	assert.Contains(t, toolchainEdges[4].Inputs, libDir+"liblib.a")

	libCompile := responseFile(t, out.result, libDir+"src/a.cpp.o.rsp")
	assert.Contains(t, libCompile, "-DLIB=1")
	assert.Contains(t, libCompile, `-I"/ws/lib/include"`)
	assert.NotContains(t, responseFile(t, out.result, appDir+"main.cpp.o.rsp"), "-DLIB=1")

	appLink := responseFile(t, out.result, appDir+"app.rsp")
	assert.Contains(t, appLink, `-L"`+strings.TrimSuffix(libDir, "/")+`"`)
	assert.Contains(t, appLink, `-l"lib"`)

	assert.Equal(t, []string{"app " + testVariant, "lib " + testVariant}, out.result.Projects)
	assert.Equal(t, []string{testVariant}, out.result.Variants)
	assert.Equal(t, []string{"/ws/app/weave.yaml", "/ws/lib/weave.yaml", "/ws/weave.work.yaml"}, out.result.Inputs)

	regen := out.log.byRule(domain.RegenerateRule)
	require.Len(t, regen, 1)
	assert.Equal(t, []string{"build.ninja"}, regen[0].Outputs)
	assert.Len(t, regen[0].ImplicitOutputs, 5)
	assert.Equal(t, out.result.Inputs, regen[0].ImplicitDeps)
}

func TestGenerate_RerunsAreByteIdentical(t *testing.T) {
	first := generate(t, testWorkspace(t))
	second := generate(t, testWorkspace(t))

	assert.Equal(t, first.buildFile, second.buildFile)
	assert.Equal(t, first.result.ResponseFiles, second.result.ResponseFiles)
}

func TestGenerate_LocalChangeStaysLocal(t *testing.T) {
	before := generate(t, testWorkspace(t))

	ws := testWorkspace(t)
	ws.Projects["lib"].Defines = []string{"LIB=2"}
	after := generate(t, ws)

	assert.Equal(t, before.buildFile, after.buildFile)

	var changed []string
	require.Len(t, after.result.ResponseFiles, len(before.result.ResponseFiles))
	for i, f := range after.result.ResponseFiles {
		require.Equal(t, before.result.ResponseFiles[i].Path, f.Path)
		if string(before.result.ResponseFiles[i].Content) != string(f.Content) {
			changed = append(changed, f.Path)
		}
	}
	libDir := "/ws/built/lib/" + testVariant + "/"
	assert.Equal(t, []string{libDir + "src/a.cpp.o.rsp", libDir + "src/b.cpp.o.rsp"}, changed)
}

func TestGenerate_ProjectSettings(t *testing.T) {
	ws := testWorkspace(t)
	warn, opt := 1, 0
	lib := ws.Projects["lib"]
	lib.PCH = "include/pch.h"
	lib.ForcedDeps = []string{"gen/version.h"}
	lib.OrderOnlyDeps = []string{"gen/stamp"}
	lib.Files = []domain.FileGroup{{
		Sources: []string{"src/sloppy.cpp"},
		Compile: domain.CompileSettings{WarnLevel: &warn},
	}}
	lib.When = []domain.Overlay{
		{Match: map[string]string{"config": "dbg"}, Compile: domain.CompileSettings{OptLevel: &opt}, Defines: []string{"DEBUG"}},
		{Match: map[string]string{"config": "rel"}, Defines: []string{"NDEBUG"}},
	}
	lib.Commands = []domain.CommandSpec{{
		Command: "python gen.py", Inputs: []string{"gen.py"}, Outputs: []string{"gen/version.h"},
	}}

	out := generate(t, ws)
	libDir := "/ws/built/lib/" + testVariant + "/"

	compiles := out.log.byRule("gcc-amd64_cxx")
	require.Len(t, compiles, 5)
	assert.Equal(t, libDir+"include/pch.h.gch", compiles[0].Outputs[0])

	a := compiles[1]
	assert.Equal(t, []string{
		libDir + "src/a.cpp.o.rsp",
		"/ws/lib/gen/version.h",
		libDir + "include/pch.h",
		libDir + "include/pch.h.gch",
	}, a.ImplicitDeps)
	assert.Equal(t, []string{"/ws/lib/gen/stamp"}, a.OrderOnlyDeps)

	aOptions := strings.Split(responseFile(t, out.result, libDir+"src/a.cpp.o.rsp"), "\n")
	assert.Contains(t, aOptions, "-O0")
	assert.Contains(t, aOptions, "-DDEBUG")
	assert.NotContains(t, aOptions, "-DNDEBUG")
	assert.Contains(t, aOptions, "-Wextra")

	sloppy := strings.Split(responseFile(t, out.result, libDir+"src/sloppy.cpp.o.rsp"), "\n")
	assert.Contains(t, sloppy, "-Wall")
	assert.NotContains(t, sloppy, "-Wextra")

	archives := out.log.byRule("gcc-amd64_lib")
	require.Len(t, archives, 1)
	assert.Equal(t, []string{
		libDir + "src/a.cpp.o", libDir + "src/b.cpp.o", libDir + "src/sloppy.cpp.o",
	}, archives[0].Inputs)

	cmds := out.log.byRule(domain.CustomCommandRule)
	require.Len(t, cmds, 1)
	assert.Equal(t, []string{libDir + "gen/version.h"}, cmds[0].Outputs)
}

func TestBuildTargets(t *testing.T) {
	t.Run("no targets", func(t *testing.T) {
		ws := testWorkspace(t)
		reg := generator.NewRegistry(generator.Options{BuiltDir: ws.BuiltDir, SelectToolchain: ws.ToolchainName})
		require.NoError(t, generator.Load(reg, toolchain.NewFactory("weave invoke"), ws))
		require.ErrorIs(t, generator.BuildTargets(context.Background(), reg, ws, nil), domain.ErrNoTargets)
	})

	t.Run("bad variant", func(t *testing.T) {
		ws := testWorkspace(t)
		reg := generator.NewRegistry(generator.Options{BuiltDir: ws.BuiltDir, SelectToolchain: ws.ToolchainName})
		require.NoError(t, generator.Load(reg, toolchain.NewFactory("weave invoke"), ws))
		err := generator.BuildTargets(context.Background(), reg, ws, []domain.TargetSpec{
			{Project: "app", Variants: []string{"linux-bogus-amd64-dbg-dcrt"}},
		})
		require.ErrorIs(t, err, domain.ErrSchemaViolation)
		assert.Equal(t, "app", metadata(err)["project"])
	})

	t.Run("deploy", func(t *testing.T) {
		ws := testWorkspace(t)
		ws.Targets[0].Deploy = "dist"
		out := generate(t, ws)

		copies := out.log.byRule(domain.FileCopyRule)
		require.Len(t, copies, 1)
		assert.Equal(t, []string{"/ws/dist/" + testVariant + "/app"}, copies[0].Outputs)
		assert.Contains(t, out.buildFile, "build deploy : phony /ws/dist/"+testVariant+"/app\n")
	})

	t.Run("repeated target deploys once", func(t *testing.T) {
		ws := testWorkspace(t)
		ws.Targets[0].Deploy = "dist"
		ws.Targets = append(ws.Targets, ws.Targets[0])
		out := generate(t, ws)

		copies := out.log.byRule(domain.FileCopyRule)
		require.Len(t, copies, 1)
		assert.Equal(t, []string{"/ws/dist/" + testVariant + "/app"}, copies[0].Outputs)
	})
}

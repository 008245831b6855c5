package generator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weave/internal/adapters/ninja"
	"go.trai.ch/weave/internal/adapters/toolchain"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/weave/internal/core/ports/mocks"
	"go.trai.ch/weave/internal/engine/generator"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const (
	testBuildFile = "/ws/built/build.ninja"
	testVariant   = "linux-gcc-amd64-dbg-dcrt"
)

func testSchema(t *testing.T) *domain.Schema {
	t.Helper()
	schema, err := domain.NewSchema(
		domain.Field{Name: "os", Options: []string{"linux", "windows"}},
		domain.Field{Name: "toolchain", Options: []string{"gcc", "clang", "msvc"}},
		domain.Field{Name: "arch", Options: []string{"x86", "amd64"}},
		domain.Field{Name: "config", Options: []string{"dbg", "rel"}},
		domain.Field{Name: "crt", Options: []string{"dcrt", "scrt"}},
	)
	require.NoError(t, err)
	return schema
}

func variant(t *testing.T, key string) domain.Variant {
	t.Helper()
	v, err := testSchema(t).Parse(key)
	require.NoError(t, err)
	return v
}

func selectToolchain(v domain.Variant) string {
	return v.Get("toolchain") + "-" + v.Get("arch")
}

func newRegistry(t *testing.T) *generator.Registry {
	t.Helper()
	reg := generator.NewRegistry(generator.Options{
		Root:            "/ws",
		BuildFile:       testBuildFile,
		BuiltDir:        "/ws/built",
		Invoker:         "weave invoke",
		Regenerate:      "weave generate",
		SelectToolchain: selectToolchain,
	})
	factory := toolchain.NewFactory("weave invoke")
	for _, spec := range []domain.ToolchainSpec{
		{Name: "gcc-amd64", Family: domain.FamilyGCC, InstallDir: "/usr", AddressModel: "-m64", LTO: true},
		{Name: "msvc-amd64", Family: domain.FamilyMSVC, InstallDir: "/vs", Arch: "amd64"},
		{Name: "gcc-x86", Family: domain.FamilyGCC, InstallDir: "/usr", AddressModel: "-m32", TargetWindows: true},
	} {
		tc, err := factory.New(spec)
		require.NoError(t, err)
		require.NoError(t, reg.AddToolchain(tc))
	}
	return reg
}

// edgeLog records every edge on its way to the ninja writer.
type edgeLog struct {
	*ninja.Writer
	edges []domain.Edge
}

func (l *edgeLog) Build(edge domain.Edge) error {
	l.edges = append(l.edges, edge)
	return l.Writer.Build(edge)
}

func (l *edgeLog) byRule(rule string) []domain.Edge {
	var out []domain.Edge
	for _, e := range l.edges {
		if e.Rule == rule {
			out = append(out, e)
		}
	}
	return out
}

func finish(t *testing.T, reg *generator.Registry) (string, *edgeLog, *generator.Result) {
	t.Helper()
	var sb strings.Builder
	log := &edgeLog{Writer: ninja.NewWriter(&sb)}
	res, err := reg.Finish(context.Background(), log)
	require.NoError(t, err)
	return sb.String(), log, res
}

func metadata(err error) map[string]any {
	out := make(map[string]any)
	for err != nil {
		var zErr *zerr.Error
		if errors.As(err, &zErr) {
			for k, v := range zErr.Metadata() {
				if _, ok := out[k]; !ok {
					out[k] = v
				}
			}
		}
		err = errors.Unwrap(err)
	}
	return out
}

func noop(context.Context, *generator.Project) error { return nil }

func TestRegistry_MemoizesProjects(t *testing.T) {
	reg := newRegistry(t)
	calls := 0
	require.NoError(t, reg.Define("lib", "/ws/lib", func(context.Context, *generator.Project) error {
		calls++
		return nil
	}))

	ctx := context.Background()
	first, err := reg.Project(ctx, "lib", variant(t, testVariant))
	require.NoError(t, err)
	second, err := reg.Project(ctx, "lib", variant(t, testVariant))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	other, err := reg.Project(ctx, "lib", variant(t, "linux-gcc-amd64-rel-dcrt"))
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "/ws/built/lib/linux-gcc-amd64-rel-dcrt", other.BuiltDir)
}

func TestRegistry_CyclicDependency(t *testing.T) {
	reg := newRegistry(t)
	dependsOn := func(dep string) generator.ConfigureFunc {
		return func(ctx context.Context, p *generator.Project) error {
			_, err := p.Registry().Project(ctx, dep, p.Variant())
			return err
		}
	}
	require.NoError(t, reg.Define("a", "/ws/a", dependsOn("b")))
	require.NoError(t, reg.Define("b", "/ws/b", dependsOn("a")))

	_, err := reg.Project(context.Background(), "a", variant(t, testVariant))
	require.ErrorIs(t, err, domain.ErrCyclicDependency)

	var cycle []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		var zErr *zerr.Error
		if errors.As(e, &zErr) {
			if c, ok := zErr.Metadata()["cycle"].([]string); ok {
				cycle = c
			}
		}
	}
	assert.Equal(t, []string{"a", "b", "a"}, cycle)

	_, _, res := finish(t, reg)
	assert.Empty(t, res.Projects)
}

func TestRegistry_FailedConfigureLeavesProjectUnregistered(t *testing.T) {
	reg := newRegistry(t)
	fail := true
	boom := errors.New("boom")
	require.NoError(t, reg.Define("lib", "/ws/lib", func(context.Context, *generator.Project) error {
		if fail {
			return boom
		}
		return nil
	}))

	_, err := reg.Project(context.Background(), "lib", variant(t, testVariant))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "lib", metadata(err)["project"])

	fail = false
	_, err = reg.Project(context.Background(), "lib", variant(t, testVariant))
	require.NoError(t, err)
}

func TestRegistry_ProjectNotFound(t *testing.T) {
	reg := newRegistry(t)
	_, err := reg.Project(context.Background(), "ghost", variant(t, testVariant))
	require.ErrorIs(t, err, domain.ErrProjectNotFound)
	assert.Equal(t, "ghost", metadata(err)["project"])
}

func TestRegistry_Define(t *testing.T) {
	reg := newRegistry(t)
	require.NoError(t, reg.Define("lib", "/ws/lib", noop))
	require.NoError(t, reg.Define("lib", "/ws/lib", noop))

	err := reg.Define("lib", "/ws/other", noop)
	require.ErrorIs(t, err, domain.ErrDuplicateProject)
	md := metadata(err)
	assert.Equal(t, "/ws/lib", md["first_occurrence"])
	assert.Equal(t, "/ws/other", md["duplicate_at"])
}

func TestRegistry_Toolchains(t *testing.T) {
	ctrl := gomock.NewController(t)
	reg := generator.NewRegistry(generator.Options{BuildFile: testBuildFile})

	tc := mocks.NewMockToolChain(ctrl)
	tc.EXPECT().Name().Return("gcc").AnyTimes()

	require.NoError(t, reg.AddToolchain(tc))
	require.ErrorIs(t, reg.AddToolchain(tc), domain.ErrDuplicateToolchain)

	got, err := reg.Toolchain("gcc")
	require.NoError(t, err)
	assert.Same(t, ports.ToolChain(tc), got)

	_, err = reg.Toolchain("msvc")
	require.ErrorIs(t, err, domain.ErrToolchainNotFound)
	assert.Equal(t, []string{"gcc"}, metadata(err)["available"])
}

func TestRegistry_ProjectWithUnknownToolchain(t *testing.T) {
	reg := newRegistry(t)
	require.NoError(t, reg.Define("lib", "/ws/lib", func(_ context.Context, p *generator.Project) error {
		_, err := p.CompileOne("a.cpp")
		return err
	}))

	_, err := reg.Project(context.Background(), "lib", variant(t, "linux-clang-amd64-dbg-dcrt"))
	require.ErrorIs(t, err, domain.ErrToolchainNotFound)
	assert.Equal(t, "clang-amd64", metadata(err)["toolchain"])
}

func TestRegistry_FinishLayout(t *testing.T) {
	reg := newRegistry(t)
	reg.AddPhonyTarget("zeta", "/ws/built/z")
	reg.AddPhonyTarget("alpha", "/ws/built/a2")
	reg.AddPhonyTarget("alpha", "/ws/built/a1")
	reg.AddPhonyTarget("alpha", "/ws/built/a2")
	reg.AddGeneratorInput("/ws/weave.work.yaml", "/ws/lib/weave.yaml", "/ws/weave.work.yaml")

	out, log, res := finish(t, reg)

	order := []string{
		"rule CUSTOM_COMMAND\n  command = $COMMAND\n  description = $DESC\n  restat = 1\n",
		"rule FILE_COPY\n  command = weave invoke copy \"$in\" \"$out\"\n",
		"rule gcc-amd64_cxx\n",
		"rule gcc-x86_cxx\n",
		"rule msvc-amd64_cxx\n",
		"build alpha : phony /ws/built/a1 /ws/built/a2\n",
		"build zeta : phony /ws/built/z\n",
		"rule REGENERATE\n  command = weave generate\n",
		"build build.ninja : REGENERATE | /ws/lib/weave.yaml /ws/weave.work.yaml\n",
		"build /ws/lib/weave.yaml /ws/weave.work.yaml : phony\n",
	}
	last := -1
	for _, want := range order {
		idx := strings.Index(out, want)
		require.Greater(t, idx, last, "%q out of order in\n%s", want, out)
		last = idx
	}
	assert.Contains(t, out, "  generator = 1\n")

	assert.Equal(t, []string{"/ws/lib/weave.yaml", "/ws/weave.work.yaml"}, res.Inputs)
	assert.Equal(t, len(log.edges), res.Edges)
}

func TestRegistry_Deploy(t *testing.T) {
	reg := newRegistry(t)

	require.NoError(t, reg.Deploy(map[string]string{"app": "/ws/built/app/app"}, "/ws/dist", ""))
	require.NoError(t, reg.Deploy(map[string]string{"app": "/ws/built/app/app"}, "/ws/dist", "deploy"))
	require.NoError(t, reg.Deploy(map[string]string{"app": "/ws/built/app/app"}, "/ws/dist", "later"))

	err := reg.Deploy(map[string]string{"app": "/ws/built/other/app"}, "/ws/dist", "")
	require.ErrorIs(t, err, domain.ErrRuntimeDependencyConflict)
	assert.Equal(t, "/ws/dist/app", metadata(err)["dest"])

	require.ErrorIs(t, reg.Deploy(nil, "dist", ""), domain.ErrRelativeRuntimePath)

	_, log, _ := finish(t, reg)
	copies := log.byRule(domain.FileCopyRule)
	require.Len(t, copies, 1)
	assert.Equal(t, []string{"/ws/dist/app"}, copies[0].Outputs)
	assert.Equal(t, []string{"/ws/built/app/app"}, copies[0].Inputs)

	phony := log.byRule(domain.PhonyRule)
	require.NotEmpty(t, phony)
	assert.Equal(t, []string{"deploy"}, phony[0].Outputs)
}

func TestRegistry_Tracer(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)

	reg := generator.NewRegistry(generator.Options{
		BuildFile:       testBuildFile,
		BuiltDir:        "/ws/built",
		SelectToolchain: selectToolchain,
		Tracer:          tracer,
	})
	require.NoError(t, reg.Define("lib", "/ws/lib", noop))

	ctx := context.Background()
	gomock.InOrder(
		tracer.EXPECT().Start(ctx, "project lib "+testVariant).Return(ctx, span),
		span.EXPECT().End(),
	)
	_, err := reg.Project(ctx, "lib", variant(t, testVariant))
	require.NoError(t, err)

	tracer.EXPECT().Start(ctx, "finish").Return(ctx, span)
	span.EXPECT().SetAttribute("edges", gomock.Any())
	span.EXPECT().End()
	_, err = reg.Finish(ctx, ninja.NewWriter(&strings.Builder{}))
	require.NoError(t, err)
}

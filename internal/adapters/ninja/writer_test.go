package ninja_test

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weave/internal/adapters/ninja"
	"go.trai.ch/weave/internal/core/domain"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain/path.o", want: "plain/path.o"},
		{in: "with space.o", want: "with$ space.o"},
		{in: "C:/src/a.cpp", want: "C$:/src/a.cpp"},
		{in: "$dollar", want: "$$dollar"},
		{in: "a $b:c", want: "a$ $$b$:c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ninja.Escape(tt.in), tt.in)
	}
	assert.Equal(t, []string{"a$ b", "c"}, ninja.EscapeAll([]string{"a b", "c"}))
}

func TestWriter_Golden(t *testing.T) {
	var sb strings.Builder
	w := ninja.NewWriter(&sb)

	require.NoError(t, w.Section("gcc"))
	require.NoError(t, w.Rule(domain.Rule{
		Name:        "cc",
		Command:     "gcc -c $in -o $out",
		Description: "CC $out",
		Depfile:     "$out.d",
		Restat:      true,
	}))
	require.NoError(t, w.Build(domain.Edge{
		Outputs:       []string{"out/a.o"},
		Rule:          "cc",
		Inputs:        []string{"src/a b.c"},
		ImplicitDeps:  []string{"gen:x.h"},
		OrderOnlyDeps: []string{"stamp"},
		Vars:          []domain.Var{{Name: "DESC", Value: "a"}},
	}))
	require.NoError(t, w.Comment("two\nlines"))
	require.NoError(t, w.Build(domain.Edge{
		Outputs:         []string{"all"},
		ImplicitOutputs: []string{"all.log"},
		Rule:            domain.PhonyRule,
		Inputs:          []string{"out/a.o"},
	}))
	require.NoError(t, w.BlankLine())
	require.NoError(t, w.BlankLine())
	require.NoError(t, w.Default("all"))

	assert.Equal(t, 2, w.Edges())

	g := goldie.New(t)
	g.Assert(t, "writer_basic", []byte(sb.String()))
}

func TestWriter_Wrap(t *testing.T) {
	var sb strings.Builder
	w := ninja.NewWriter(&sb)

	a := strings.Repeat("a", 30)
	b := strings.Repeat("b", 30)
	c := strings.Repeat("c", 10)

	require.NoError(t, w.Build(domain.Edge{Outputs: []string{a, b}, Rule: "cc", Inputs: []string{c}}))

	want := "build " + a + " " + b + " : cc $\n    " + c + "\n\n"
	assert.Equal(t, want, sb.String())
	for line := range strings.SplitSeq(sb.String(), "\n") {
		assert.LessOrEqual(t, len(line), 80)
	}
}

func TestWriter_GeneratorRule(t *testing.T) {
	var sb strings.Builder
	w := ninja.NewWriter(&sb)

	require.NoError(t, w.Rule(domain.Rule{Name: "REGENERATE", Command: "weave generate", Generator: true, Restat: true}))

	assert.Equal(t, "rule REGENERATE\n  command = weave generate\n  generator = 1\n  restat = 1\n\n", sb.String())
}

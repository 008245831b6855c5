package generator

import (
	"slices"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
)

// buffer records statements in emission order so that they can be written
// after the rules they reference.
type buffer struct {
	stmts []func(ports.BuildWriter) error
}

func (b *buffer) add(stmt func(ports.BuildWriter) error) error {
	b.stmts = append(b.stmts, stmt)
	return nil
}

func (b *buffer) Comment(text string) error {
	return b.add(func(w ports.BuildWriter) error { return w.Comment(text) })
}

func (b *buffer) Section(title string) error {
	return b.add(func(w ports.BuildWriter) error { return w.Section(title) })
}

func (b *buffer) Rule(rule domain.Rule) error {
	return b.add(func(w ports.BuildWriter) error { return w.Rule(rule) })
}

func (b *buffer) Build(edge domain.Edge) error {
	edge = cloneEdge(edge)
	return b.add(func(w ports.BuildWriter) error { return w.Build(edge) })
}

func (b *buffer) Default(targets ...string) error {
	targets = slices.Clone(targets)
	return b.add(func(w ports.BuildWriter) error { return w.Default(targets...) })
}

func (b *buffer) BlankLine() error {
	return b.add(func(w ports.BuildWriter) error { return w.BlankLine() })
}

func (b *buffer) replay(w ports.BuildWriter) error {
	for _, stmt := range b.stmts {
		if err := stmt(w); err != nil {
			return err
		}
	}
	return nil
}

// cloneEdge detaches the edge from task slices that may still grow.
func cloneEdge(e domain.Edge) domain.Edge {
	return domain.Edge{
		Outputs:         slices.Clone(e.Outputs),
		ImplicitOutputs: slices.Clone(e.ImplicitOutputs),
		Rule:            e.Rule,
		Inputs:          slices.Clone(e.Inputs),
		ImplicitDeps:    slices.Clone(e.ImplicitDeps),
		OrderOnlyDeps:   slices.Clone(e.OrderOnlyDeps),
		Vars:            slices.Clone(e.Vars),
	}
}

type countingWriter struct {
	ports.BuildWriter
	edges int
}

func (c *countingWriter) Build(edge domain.Edge) error {
	c.edges++
	return c.BuildWriter.Build(edge)
}

// emission is the ports.Emission handed to toolchains while a task of p
// is rendered.
type emission struct {
	reg *Registry
	p   *Project
}

func (e emission) Writer() ports.BuildWriter {
	return e.reg.edges
}

func (e emission) WriteResponseFile(output string, options []string) (string, error) {
	path := e.reg.writeResponseFile(output, options)
	e.p.makeFiles = append(e.p.makeFiles, path)
	return path, nil
}

func (e emission) Copy(src, dest, alias string) error {
	return e.reg.copyFile(e.reg.edges, src, dest, alias)
}

func (e emission) BuildFile() string {
	return e.reg.opts.BuildFile
}

// Package ninja writes Ninja build files.
package ninja

import (
	"io"
	"strings"
	"unicode"

	"go.trai.ch/weave/internal/core/domain"
)

const (
	indentWidth = 4
	lineWidth   = 80
	bindIndent  = "  "
	banner      = "#############################################"
)

var indentString = strings.Repeat(" ", indentWidth)

// Writer implements ports.BuildWriter on top of a string writer.
type Writer struct {
	writer io.StringWriter

	justDidBlankLine bool
	edges            int
}

// NewWriter returns a Writer that appends to w.
func NewWriter(w io.StringWriter) *Writer {
	return &Writer{writer: w}
}

// Edges returns the number of build statements written, phony edges included.
func (n *Writer) Edges() int {
	return n.edges
}

// Comment writes one comment line per line of text.
func (n *Writer) Comment(text string) error {
	n.justDidBlankLine = false
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimRightFunc("# "+line, unicode.IsSpace)
		if _, err := n.writer.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Section writes a banner followed by the title and a blank line.
func (n *Writer) Section(title string) error {
	if _, err := n.writer.WriteString(banner + "\n"); err != nil {
		return err
	}
	if err := n.Comment(title); err != nil {
		return err
	}
	return n.BlankLine()
}

// Rule writes a rule declaration followed by a blank line.
func (n *Writer) Rule(rule domain.Rule) error {
	n.justDidBlankLine = false
	if _, err := n.writer.WriteString("rule " + rule.Name + "\n"); err != nil {
		return err
	}

	bindings := []domain.Var{{Name: "command", Value: rule.Command}}
	if rule.Description != "" {
		bindings = append(bindings, domain.Var{Name: "description", Value: rule.Description})
	}
	if rule.Depfile != "" {
		bindings = append(bindings, domain.Var{Name: "depfile", Value: rule.Depfile})
	}
	if rule.Generator {
		bindings = append(bindings, domain.Var{Name: "generator", Value: "1"})
	}
	if rule.Restat {
		bindings = append(bindings, domain.Var{Name: "restat", Value: "1"})
	}
	if err := n.bindings(bindings); err != nil {
		return err
	}
	return n.BlankLine()
}

// Build writes a build statement, its bindings and a blank line.
func (n *Writer) Build(edge domain.Edge) error {
	n.justDidBlankLine = false
	n.edges++

	wrapper := writerWithWrap{Writer: n, maxLineLen: lineWidth - len(" $")}

	wrapper.WriteString("build")
	for _, out := range edge.Outputs {
		wrapper.WriteStringWithSpace(Escape(out))
	}
	if len(edge.ImplicitOutputs) > 0 {
		wrapper.WriteStringWithSpace("|")
		for _, out := range edge.ImplicitOutputs {
			wrapper.WriteStringWithSpace(Escape(out))
		}
	}

	wrapper.WriteStringWithSpace(":")
	wrapper.WriteStringWithSpace(edge.Rule)

	for _, in := range edge.Inputs {
		wrapper.WriteStringWithSpace(Escape(in))
	}
	if len(edge.ImplicitDeps) > 0 {
		wrapper.WriteStringWithSpace("|")
		for _, dep := range edge.ImplicitDeps {
			wrapper.WriteStringWithSpace(Escape(dep))
		}
	}
	if len(edge.OrderOnlyDeps) > 0 {
		wrapper.WriteStringWithSpace("||")
		for _, dep := range edge.OrderOnlyDeps {
			wrapper.WriteStringWithSpace(Escape(dep))
		}
	}

	if err := wrapper.Flush(); err != nil {
		return err
	}
	if err := n.bindings(edge.Vars); err != nil {
		return err
	}
	return n.BlankLine()
}

// Default writes a default statement.
func (n *Writer) Default(targets ...string) error {
	n.justDidBlankLine = false

	wrapper := writerWithWrap{Writer: n, maxLineLen: lineWidth - len(" $")}
	wrapper.WriteString("default")
	for _, target := range targets {
		wrapper.WriteStringWithSpace(Escape(target))
	}
	return wrapper.Flush()
}

// BlankLine writes an empty line unless the previous statement was one.
func (n *Writer) BlankLine() (err error) {
	if !n.justDidBlankLine {
		n.justDidBlankLine = true
		_, err = n.writer.WriteString("\n")
	}
	return err
}

func (n *Writer) bindings(vars []domain.Var) error {
	for _, v := range vars {
		if _, err := n.writer.WriteString(bindIndent + v.Name + " = " + v.Value + "\n"); err != nil {
			return err
		}
	}
	return nil
}

type writerWithWrap struct {
	*Writer
	maxLineLen int
	writtenLen int
	err        error
}

func (n *writerWithWrap) writeString(s string, space bool) {
	if n.err != nil {
		return
	}

	spaceLen := 0
	if space {
		spaceLen = 1
	}

	if n.writtenLen > 0 && n.writtenLen+len(s)+spaceLen > n.maxLineLen {
		_, n.err = n.writer.WriteString(" $\n" + indentString)
		if n.err != nil {
			return
		}
		n.writtenLen = indentWidth
	} else if space {
		_, n.err = n.writer.WriteString(" ")
		if n.err != nil {
			return
		}
		n.writtenLen++
	}

	_, n.err = n.writer.WriteString(s)
	n.writtenLen += len(s)
}

func (n *writerWithWrap) WriteString(s string) {
	n.writeString(s, false)
}

func (n *writerWithWrap) WriteStringWithSpace(s string) {
	n.writeString(s, true)
}

func (n *writerWithWrap) Flush() error {
	if n.err != nil {
		return n.err
	}
	_, err := n.writer.WriteString("\n")
	return err
}

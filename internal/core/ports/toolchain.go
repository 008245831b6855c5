package ports

import "go.trai.ch/weave/internal/core/domain"

//go:generate mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks

// BuildWriter writes build file statements.
type BuildWriter interface {
	Comment(text string) error
	// Section writes a banner comment that opens a block of statements.
	Section(title string) error
	Rule(rule domain.Rule) error
	Build(edge domain.Edge) error
	Default(targets ...string) error
	// BlankLine writes an empty line. Consecutive blank lines collapse.
	BlankLine() error
}

// Emission is what a toolchain sees while rendering one task.
type Emission interface {
	// Writer receives the task's edges.
	Writer() BuildWriter
	// WriteResponseFile records the options of a task and returns the
	// response file path, <output>.rsp.
	WriteResponseFile(output string, options []string) (string, error)
	// Copy emits a FILE_COPY edge from src to dest.
	Copy(src, dest, alias string) error
	// BuildFile is the absolute path of the build file being generated.
	BuildFile() string
}

// ToolChain renders compile, archive and link tasks into build edges.
type ToolChain interface {
	Name() string
	Traits() domain.ToolchainTraits
	// WriteRules declares the toolchain's rules. It is called once per run.
	WriteRules(w BuildWriter) error
	RenderCompile(e Emission, t *domain.CompileTask) error
	RenderArchive(e Emission, t *domain.ArchiveTask) error
	RenderLink(e Emission, t *domain.LinkTask) error
}

// ToolchainFactory builds toolchains from their declarative definition.
type ToolchainFactory interface {
	New(spec domain.ToolchainSpec) (ToolChain, error)
}

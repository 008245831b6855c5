package domain

// Var is a variable binding scoped to a single edge.
type Var struct {
	Name  string
	Value string
}

// Rule is a named command template in the build file.
type Rule struct {
	Name        string
	Command     string
	Description string
	Depfile     string
	Restat      bool
	Generator   bool
}

// Edge maps inputs to outputs through a rule. Paths are unescaped; the
// writer escapes them. Every list keeps the order it was built in.
type Edge struct {
	Outputs         []string
	ImplicitOutputs []string
	Rule            string
	Inputs          []string
	ImplicitDeps    []string
	OrderOnlyDeps   []string
	Vars            []Var
}

// PhonyRule is the built-in rule that aliases a set of paths.
const PhonyRule = "phony"

// Rule names the registry always declares.
const (
	CustomCommandRule = "CUSTOM_COMMAND"
	FileCopyRule      = "FILE_COPY"
	RegenerateRule    = "REGENERATE"
)

// Variable names bound on toolchain edges.
const (
	VarWorkingDir = "WORKING_DIR"
	VarSrcFile    = "SRC_FILE"
	VarObjFile    = "OBJ_FILE"
	VarPdbFile    = "PDB_FILE"
	VarDepFile    = "DEP_FILE"
	VarLogFile    = "LOG_FILE"
	VarRspFile    = "RSP_FILE"
	VarToolName   = "TOOL_NAME"
	VarDesc       = "DESC"
	VarCommand    = "COMMAND"
)

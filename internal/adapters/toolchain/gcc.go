package toolchain

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
)

// cDialects are the -std values that compile a header as C.
var cDialects = []string{
	"c90", "c98", "c99", "c9x",
	"iso9899:1990", "iso9899:199409", "iso9899:1999", "iso9899:199x",
	"gnu90", "gnu89", "gnu99", "gnu9x",
}

// GCC drives gcc or clang through the gcc-* invocation kinds.
type GCC struct {
	spec     domain.ToolchainSpec
	invoker  string
	compiler string
	archiver string
	traits   domain.ToolchainTraits
}

// NewGCC creates a gcc-family toolchain. Clang differs only in its
// compiler name and PCH extension.
func NewGCC(spec domain.ToolchainSpec, invoker string) *GCC {
	g := &GCC{
		spec:     spec,
		invoker:  invoker,
		compiler: spec.Prefix + "g++" + spec.Suffix,
		archiver: spec.Prefix + "ar" + spec.Suffix,
		traits: domain.ToolchainTraits{
			Family:        spec.Family,
			ObjectExt:     ".o",
			PCHExt:        ".gch",
			SupportsPCH:   true,
			TargetWindows: spec.TargetWindows,
			LTOSupport:    spec.LTO,
		},
	}
	if spec.Family == domain.FamilyClang {
		g.compiler = spec.Prefix + "clang++" + spec.Suffix
		g.traits.PCHExt = ".pch"
	}
	return g
}

// Name returns the toolchain name.
func (g *GCC) Name() string { return g.spec.Name }

// Traits returns the toolchain traits.
func (g *GCC) Traits() domain.ToolchainTraits { return g.traits }

// WriteRules declares <name>_cxx, <name>_lib and <name>_link.
func (g *GCC) WriteRules(w ports.BuildWriter) error {
	name, dir := g.spec.Name, quote(g.spec.InstallDir)
	return ruleHeader(w, name,
		domain.Rule{
			Name: name + "_cxx",
			Command: fmt.Sprintf(`%s gcc-cxx "$WORKING_DIR" "$SRC_FILE" "$OBJ_FILE" "$DEP_FILE" "$LOG_FILE" %s $TOOL_NAME "$RSP_FILE"`,
				g.invoker, dir),
			Description: name + "_cxx $DESC",
			Depfile:     "$DEP_FILE",
			Restat:      true,
		},
		domain.Rule{
			Name: name + "_lib",
			Command: fmt.Sprintf(`%s gcc-lib "$WORKING_DIR" "$LOG_FILE" %s %s "$RSP_FILE"`,
				g.invoker, dir, g.archiver),
			Description: name + "_lib $DESC",
			Restat:      true,
		},
		domain.Rule{
			Name: name + "_link",
			Command: fmt.Sprintf(`%s gcc-link "$WORKING_DIR" "$LOG_FILE" %s $TOOL_NAME "$RSP_FILE"`,
				g.invoker, dir),
			Description: name + "_link $DESC",
			Restat:      true,
		},
	)
}

// RenderCompile writes the response file and compile edge of t.
func (g *GCC) RenderCompile(e ports.Emission, t *domain.CompileTask) error {
	options := concat([]string{"-c"}, g.spec.DefaultCompileOptions)
	options, err := g.compileOptions(options, t)
	if err != nil {
		return err
	}
	rsp, err := e.WriteResponseFile(t.OutputPath, options)
	if err != nil {
		return err
	}

	if t.CreatePCH {
		// The header is copied next to the PCH so that it is the one force-included.
		if err := e.Copy(t.SourcePath, stripExt(t.OutputPath), ""); err != nil {
			return err
		}
	}

	return e.Writer().Build(domain.Edge{
		Outputs:       concat([]string{t.OutputPath}, t.ExtraOutputs, []string{logPath(t.OutputPath)}),
		Rule:          g.spec.Name + "_cxx",
		Inputs:        []string{t.SourcePath},
		ImplicitDeps:  concat([]string{rsp}, t.ExtraDeps),
		OrderOnlyDeps: t.OrderOnlyDeps,
		Vars: []domain.Var{
			{Name: domain.VarWorkingDir, Value: t.WorkingDir},
			{Name: domain.VarSrcFile, Value: t.SourcePath},
			{Name: domain.VarObjFile, Value: t.OutputPath},
			{Name: domain.VarDepFile, Value: t.OutputPath + ".d"},
			{Name: domain.VarLogFile, Value: logPath(t.OutputPath)},
			{Name: domain.VarRspFile, Value: rsp},
			{Name: domain.VarToolName, Value: g.compiler},
			{Name: domain.VarDesc, Value: describe(t.SourcePath, t.OutputPath)},
		},
	})
}

// compileOptions appends dialect, optimization, debug, warning, address
// model, include, define, PCH and extra options, in that order.
func (g *GCC) compileOptions(options []string, t *domain.CompileTask) ([]string, error) {
	if t.Std != "" {
		options = append(options, "-std="+t.Std)
	}
	opt, err := gccOptLevel(t)
	if err != nil {
		return nil, err
	}
	options = append(options, opt...)
	if err := checkRange("debugLevel", t.DebugLevel, 0, 3); err != nil {
		return nil, err
	}
	options = append(options, fmt.Sprintf("-g%d", t.DebugLevel))
	warn, err := gccWarnings{}.warningFlags(t)
	if err != nil {
		return nil, err
	}
	options = append(options, warn...)
	if addr := g.addressModel(t.AddressModel); addr != "" {
		options = append(options, addr)
	}
	incs, err := gccIncludesAndDefines(t)
	if err != nil {
		return nil, err
	}
	options = append(options, incs...)
	options = append(options, g.pchOptions(t)...)
	return append(options, t.ExtraOptions...), nil
}

// pchOptions must run before extra force includes are appended. Using a
// PCH adds the header, and the PCH itself, as extra dependencies.
func (g *GCC) pchOptions(t *domain.CompileTask) []string {
	var options []string
	if t.CreatePCH {
		if slices.Contains(cDialects, t.Std) {
			options = append(options, "-x c-header")
		} else {
			options = append(options, "-x c++-header")
		}
	}
	if t.UsePCH == "" {
		return options
	}

	header := t.UsePCH
	if strings.HasSuffix(t.UsePCH, ".gch") || strings.HasSuffix(t.UsePCH, ".pch") {
		header = stripExt(t.UsePCH)
		t.ExtraDeps = append(t.ExtraDeps, header, t.UsePCH)
	} else {
		t.ExtraDeps = append(t.ExtraDeps, t.UsePCH)
	}
	return append(options, "-include "+quote(binutilsPath(header)), "-H", "-Winvalid-pch")
}

// RenderArchive writes the response file and archive edge of t.
func (g *GCC) RenderArchive(e ports.Emission, t *domain.ArchiveTask) error {
	options := concat([]string{"rc", quote(binutilsPath(t.OutputPath))}, linkerInputs(t.Inputs))
	rsp, err := e.WriteResponseFile(t.OutputPath, options)
	if err != nil {
		return err
	}

	return e.Writer().Build(domain.Edge{
		Outputs:       concat([]string{t.OutputPath}, t.ExtraOutputs, []string{logPath(t.OutputPath)}),
		Rule:          g.spec.Name + "_lib",
		Inputs:        t.Inputs,
		ImplicitDeps:  concat([]string{rsp}, t.ExtraDeps),
		OrderOnlyDeps: t.OrderOnlyDeps,
		Vars: []domain.Var{
			{Name: domain.VarWorkingDir, Value: t.WorkingDir},
			{Name: domain.VarLogFile, Value: logPath(t.OutputPath)},
			{Name: domain.VarRspFile, Value: rsp},
			{Name: domain.VarDesc, Value: filepath.Base(t.OutputPath)},
		},
	})
}

// RenderLink writes the response file and link edge of t.
func (g *GCC) RenderLink(e ports.Emission, t *domain.LinkTask) error {
	options := slices.Clone(g.spec.DefaultLinkOptions)
	if !t.Executable {
		options = append(options, "-shared")
	}
	options = append(options, "-o "+quote(binutilsPath(t.OutputPath)))
	if addr := g.addressModel(t.AddressModel); addr != "" {
		options = append(options, addr)
	}
	if !t.KeepDebugInfo {
		options = append(options, "--strip-debug")
	}
	if t.LTO {
		options = append(options, "-O3", "-flto")
	}
	if t.NoUndefined {
		options = append(options, "-Wl,--no-undefined")
	}
	options = append(options, linkerInputs(t.Inputs)...)
	options = append(options, t.ExtraOptions...)

	rsp, err := e.WriteResponseFile(t.OutputPath, options)
	if err != nil {
		return err
	}

	return e.Writer().Build(domain.Edge{
		Outputs:       linkOutputs(t),
		Rule:          g.spec.Name + "_link",
		Inputs:        absolute(t.Inputs),
		ImplicitDeps:  concat([]string{rsp}, t.ExtraDeps),
		OrderOnlyDeps: t.OrderOnlyDeps,
		Vars: []domain.Var{
			{Name: domain.VarWorkingDir, Value: t.WorkingDir},
			{Name: domain.VarLogFile, Value: logPath(t.OutputPath)},
			{Name: domain.VarRspFile, Value: rsp},
			{Name: domain.VarToolName, Value: g.compiler},
			{Name: domain.VarDesc, Value: filepath.Base(t.OutputPath)},
		},
	})
}

func (g *GCC) addressModel(task string) string {
	if task != "" {
		return task
	}
	return g.spec.AddressModel
}

// gccWarnings translates warning levels into gcc flags.
type gccWarnings struct{}

func (gccWarnings) warningFlags(t *domain.CompileTask) ([]string, error) {
	if err := checkRange("warnLevel", t.WarnLevel, 0, 4); err != nil {
		return nil, err
	}
	var options []string
	if t.WarnLevel == 0 {
		options = append(options, "-w")
	}
	if t.WarnLevel >= 1 {
		options = append(options, "-Wall")
	}
	if t.WarnLevel >= 2 {
		options = append(options, "-Wconversion")
	}
	if t.WarnLevel >= 3 {
		options = append(options, "-Wextra")
	}
	if t.WarnLevel == 4 {
		options = append(options, "-Wpedantic")
	}
	if t.WarningsAsErrors {
		options = append(options, "-Werror")
	}
	return options, nil
}

func gccOptLevel(t *domain.CompileTask) ([]string, error) {
	if err := checkRange("optLevel", t.OptLevel, 0, 3); err != nil {
		return nil, err
	}
	options := []string{fmt.Sprintf("-O%d", t.OptLevel)}
	if t.OptLevel >= 2 && t.LTO {
		options = append(options, "-flto")
	}
	return options, nil
}

func gccIncludesAndDefines(t *domain.CompileTask) ([]string, error) {
	if err := checkNotEmpty("includePath", t.IncludePaths, t.OutputPath); err != nil {
		return nil, err
	}
	if err := checkNotEmpty("define", t.Defines, t.OutputPath); err != nil {
		return nil, err
	}
	options := make([]string, 0, len(t.IncludePaths)+len(t.Defines))
	for _, inc := range t.IncludePaths {
		options = append(options, "-I"+quote(binutilsPath(inc)))
	}
	for _, def := range t.Defines {
		options = append(options, "-D"+def)
	}
	return options, nil
}

// linkerInputs passes lib<name>.a archives as a search path and library
// name, and every other input as a quoted path.
func linkerInputs(inputs []string) []string {
	var options []string
	for _, in := range inputs {
		if name, ok := archiveLibName(in); ok {
			options = append(options,
				"-L"+quote(binutilsPath(filepath.Dir(in))),
				"-l"+quote(name))
			continue
		}
		options = append(options, quote(binutilsPath(in)))
	}
	return options
}

func archiveLibName(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".a") || !strings.HasPrefix(base, "lib") {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(base, "lib"), ".a")
	return name, name != ""
}

func binutilsPath(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

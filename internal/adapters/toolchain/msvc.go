package toolchain

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
)

// MSVC drives cl, lib and link through the msvc-* invocation kinds.
type MSVC struct {
	spec    domain.ToolchainSpec
	invoker string
	traits  domain.ToolchainTraits
}

// NewMSVC creates an msvc toolchain.
func NewMSVC(spec domain.ToolchainSpec, invoker string) *MSVC {
	return &MSVC{
		spec:    spec,
		invoker: invoker,
		traits: domain.ToolchainTraits{
			Family:        domain.FamilyMSVC,
			ObjectExt:     ".obj",
			PCHExt:        ".pch",
			SupportsPCH:   true,
			TargetWindows: true,
			MSVCStyle:     true,
			LTOSupport:    spec.LTO,
		},
	}
}

// Name returns the toolchain name.
func (m *MSVC) Name() string { return m.spec.Name }

// Traits returns the toolchain traits.
func (m *MSVC) Traits() domain.ToolchainTraits { return m.traits }

// WriteRules declares <name>_cxx, <name>_lib and <name>_link.
func (m *MSVC) WriteRules(w ports.BuildWriter) error {
	name, dir, arch := m.spec.Name, quote(m.spec.InstallDir), m.spec.Arch
	return ruleHeader(w, name,
		domain.Rule{
			Name: name + "_cxx",
			Command: fmt.Sprintf(`%s msvc-cxx "$WORKING_DIR" "$SRC_FILE" "$OBJ_FILE" "$PDB_FILE" "$DEP_FILE" "$LOG_FILE" %s %s "$RSP_FILE"`,
				m.invoker, dir, arch),
			Description: name + "_cxx $DESC",
			Depfile:     "$DEP_FILE",
			Restat:      true,
		},
		domain.Rule{
			Name:        name + "_lib",
			Command:     fmt.Sprintf(`%s msvc-lib "$WORKING_DIR" "$LOG_FILE" %s %s "$RSP_FILE"`, m.invoker, dir, arch),
			Description: name + "_lib $DESC",
			Restat:      true,
		},
		domain.Rule{
			Name:        name + "_link",
			Command:     fmt.Sprintf(`%s msvc-link "$WORKING_DIR" "$LOG_FILE" %s %s "$RSP_FILE"`, m.invoker, dir, arch),
			Description: name + "_link $DESC",
			Restat:      true,
		},
	)
}

// RenderCompile writes the response file and compile edge of t.
func (m *MSVC) RenderCompile(e ports.Emission, t *domain.CompileTask) error {
	options := concat([]string{"/nologo", "/c"}, m.spec.DefaultCompileOptions)
	options, err := m.compileOptions(options, t)
	if err != nil {
		return err
	}
	rsp, err := e.WriteResponseFile(t.OutputPath, options)
	if err != nil {
		return err
	}

	outputs := []string{t.OutputPath}
	if t.CreatePCH {
		outputs = append(outputs, t.OutputPath+".obj")
	}
	var pdb string
	if t.DebugLevel >= 1 {
		if m.pchInvolved(t) {
			// Symbols are embedded in the object files.
			pdb = "none"
		} else {
			pdb = t.OutputPath + ".pdb"
			outputs = append(outputs, pdb)
		}
	}
	outputs = concat(outputs, t.ExtraOutputs, []string{logPath(t.OutputPath)})

	implicit := []string{rsp}
	if t.UsePCH != "" {
		implicit = append(implicit, t.UsePCH)
	}

	if err := e.Writer().Build(domain.Edge{
		Outputs:       outputs,
		Rule:          m.spec.Name + "_cxx",
		Inputs:        []string{t.SourcePath},
		ImplicitDeps:  concat(implicit, t.ExtraDeps),
		OrderOnlyDeps: concat([]string{e.BuildFile()}, t.OrderOnlyDeps),
		Vars: []domain.Var{
			{Name: domain.VarWorkingDir, Value: t.WorkingDir},
			{Name: domain.VarSrcFile, Value: t.SourcePath},
			{Name: domain.VarObjFile, Value: t.OutputPath},
			{Name: domain.VarPdbFile, Value: pdb},
			{Name: domain.VarDepFile, Value: t.OutputPath + ".d"},
			{Name: domain.VarLogFile, Value: logPath(t.OutputPath)},
			{Name: domain.VarRspFile, Value: rsp},
			{Name: domain.VarDesc, Value: describe(t.SourcePath, t.OutputPath)},
		},
	}); err != nil {
		return err
	}

	if t.CreatePCH {
		return e.Copy(t.SourcePath, stripExt(t.OutputPath), "")
	}
	return nil
}

func (m *MSVC) pchInvolved(t *domain.CompileTask) bool {
	return m.traits.SupportsPCH && (t.CreatePCH || t.UsePCH != "")
}

// compileOptions appends optimization, debug, warning, CRT, include,
// define, PCH and extra options, in that order.
func (m *MSVC) compileOptions(options []string, t *domain.CompileTask) ([]string, error) {
	if err := checkRange("optLevel", t.OptLevel, 0, 3); err != nil {
		return nil, err
	}
	switch t.OptLevel {
	case 0:
		options = append(options, "/Od")
	case 3:
		options = append(options, "/Ox")
	default:
		options = append(options, fmt.Sprintf("/O%d", t.OptLevel))
	}

	if err := checkRange("debugLevel", t.DebugLevel, 0, 3); err != nil {
		return nil, err
	}
	options = append(options, m.debugFlags(t)...)

	warn, err := msvcWarnings{}.warningFlags(t)
	if err != nil {
		return nil, err
	}
	options = append(options, warn...)
	options = append(options, crtFlag(t))

	if err := checkNotEmpty("includePath", t.IncludePaths, t.OutputPath); err != nil {
		return nil, err
	}
	if err := checkNotEmpty("define", t.Defines, t.OutputPath); err != nil {
		return nil, err
	}
	for _, inc := range t.IncludePaths {
		options = append(options, "/I"+quote(inc))
	}
	for _, def := range t.Defines {
		options = append(options, "/D"+def)
	}

	options = append(options, m.pchOptions(t)...)
	return append(options, t.ExtraOptions...), nil
}

// debugFlags embeds symbols in the objects when a PCH is created or used,
// since a PCH must share its PDB with every compilation unit.
func (m *MSVC) debugFlags(t *domain.CompileTask) []string {
	if t.DebugLevel == 0 {
		return nil
	}
	if m.pchInvolved(t) {
		if t.DebugLevel == 1 {
			return []string{"/Zd"}
		}
		return []string{"/Z7"}
	}
	return []string{[...]string{1: "/Zd", 2: "/Zi", 3: "/ZI"}[t.DebugLevel]}
}

func crtFlag(t *domain.CompileTask) string {
	switch {
	case t.OptLevel == 0 && t.DynamicCRT:
		return "/MDd"
	case t.OptLevel == 0:
		return "/MTd"
	case t.DynamicCRT:
		return "/MD"
	default:
		return "/MT"
	}
}

func (m *MSVC) pchOptions(t *domain.CompileTask) []string {
	var options []string
	if t.CreatePCH {
		options = append(options, "/TP", "/Yc")
		if t.DebugLevel > 0 {
			options = append(options, "/Yd")
		}
	}
	switch {
	case t.UsePCH == "":
	case strings.HasSuffix(t.UsePCH, ".pch"):
		header := stripExt(t.UsePCH)
		options = append(options, "/Yu"+quote(header), "/FI"+quote(header), "/Fp"+quote(t.UsePCH))
	default:
		options = append(options, "/FI"+quote(t.UsePCH))
	}
	return options
}

// RenderArchive writes the response file and archive edge of t.
func (m *MSVC) RenderArchive(e ports.Emission, t *domain.ArchiveTask) error {
	options := []string{"/nologo", quote("/OUT:" + t.OutputPath)}
	for _, in := range t.Inputs {
		options = append(options, quote(in))
	}
	rsp, err := e.WriteResponseFile(t.OutputPath, options)
	if err != nil {
		return err
	}

	return e.Writer().Build(domain.Edge{
		Outputs:       concat([]string{t.OutputPath}, t.ExtraOutputs, []string{logPath(t.OutputPath)}),
		Rule:          m.spec.Name + "_lib",
		Inputs:        t.Inputs,
		ImplicitDeps:  concat([]string{rsp}, t.ExtraDeps),
		OrderOnlyDeps: concat([]string{e.BuildFile()}, t.OrderOnlyDeps),
		Vars: []domain.Var{
			{Name: domain.VarWorkingDir, Value: t.WorkingDir},
			{Name: domain.VarLogFile, Value: logPath(t.OutputPath)},
			{Name: domain.VarRspFile, Value: rsp},
			{Name: domain.VarDesc, Value: filepath.Base(t.OutputPath)},
		},
	})
}

// RenderLink writes the response file and link edge of t.
func (m *MSVC) RenderLink(e ports.Emission, t *domain.LinkTask) error {
	options := concat([]string{"/nologo"}, m.spec.DefaultLinkOptions)
	if !t.Executable {
		options = append(options, "/DLL")
	}
	options = append(options, quote("/OUT:"+t.OutputPath))
	if t.KeepDebugInfo {
		options = append(options, "/DEBUG")
	}
	for _, in := range t.Inputs {
		options = append(options, quote(in))
	}
	options = append(options, t.ExtraOptions...)

	rsp, err := e.WriteResponseFile(t.OutputPath, options)
	if err != nil {
		return err
	}

	return e.Writer().Build(domain.Edge{
		Outputs:       linkOutputs(t),
		Rule:          m.spec.Name + "_link",
		Inputs:        absolute(t.Inputs),
		ImplicitDeps:  concat([]string{rsp}, t.ExtraDeps),
		OrderOnlyDeps: concat([]string{e.BuildFile()}, t.OrderOnlyDeps),
		Vars: []domain.Var{
			{Name: domain.VarWorkingDir, Value: t.WorkingDir},
			{Name: domain.VarLogFile, Value: logPath(t.OutputPath)},
			{Name: domain.VarRspFile, Value: rsp},
			{Name: domain.VarDesc, Value: filepath.Base(t.OutputPath)},
		},
	})
}

// msvcWarnings translates warning levels into cl flags.
type msvcWarnings struct{}

func (msvcWarnings) warningFlags(t *domain.CompileTask) ([]string, error) {
	if err := checkRange("warnLevel", t.WarnLevel, 0, 4); err != nil {
		return nil, err
	}
	options := []string{"/WL", fmt.Sprintf("/W%d", t.WarnLevel)}
	if t.WarningsAsErrors {
		options = append(options, "/WX")
	}
	return options, nil
}

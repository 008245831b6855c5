package toolchain

import (
	"fmt"
	"path/filepath"
	"slices"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

// hostDialect is the part of a host compiler's flag syntax that nvcc
// forwards through -Xcompiler.
type hostDialect interface {
	warningFlags(t *domain.CompileTask) ([]string, error)
}

// NVCC drives the CUDA compiler on top of a gcc or msvc host compiler.
type NVCC struct {
	spec    domain.ToolchainSpec
	invoker string
	host    hostDialect
	traits  domain.ToolchainTraits
}

// NewNVCC creates an nvcc toolchain for the host family named in spec.
func NewNVCC(spec domain.ToolchainSpec, invoker string) (*NVCC, error) {
	n := &NVCC{
		spec:    spec,
		invoker: invoker,
		traits: domain.ToolchainTraits{
			Family:        domain.FamilyNVCC,
			TargetWindows: spec.TargetWindows,
		},
	}
	switch spec.Host {
	case domain.FamilyGCC, domain.FamilyClang:
		n.host = gccWarnings{}
		n.traits.ObjectExt = ".o"
		n.traits.PCHExt = ".gch"
		n.traits.LTOSupport = spec.LTO
	case domain.FamilyMSVC:
		n.host = msvcWarnings{}
		n.traits.ObjectExt = ".obj"
		n.traits.PCHExt = ".pch"
		n.traits.MSVCStyle = true
		n.traits.LTOSupport = true
	default:
		err := zerr.Wrap(domain.ErrUnknownToolchainFamily, "unsupported nvcc host compiler")
		err = zerr.With(err, "toolchain", spec.Name)
		return nil, zerr.With(err, "host", string(spec.Host))
	}
	return n, nil
}

// Name returns the toolchain name.
func (n *NVCC) Name() string { return n.spec.Name }

// Traits returns the toolchain traits.
func (n *NVCC) Traits() domain.ToolchainTraits { return n.traits }

// WriteRules declares <name>_cxx and <name>_invoke. Archives and links
// both go through nvcc itself.
func (n *NVCC) WriteRules(w ports.BuildWriter) error {
	name := n.spec.Name
	args := fmt.Sprintf(`%s %s %s %s`,
		quote(n.spec.InstallDir), n.spec.Host, quote(n.spec.HostInstallDir), n.spec.AddressModel)
	return ruleHeader(w, name,
		domain.Rule{
			Name: name + "_cxx",
			Command: fmt.Sprintf(`%s nvcc-cxx "$WORKING_DIR" "$SRC_FILE" "$OBJ_FILE" "$DEP_FILE" "$LOG_FILE" %s "$RSP_FILE"`,
				n.invoker, args),
			Description: name + "_cxx $DESC",
			Depfile:     "$DEP_FILE",
			Restat:      true,
		},
		domain.Rule{
			Name:        name + "_invoke",
			Command:     fmt.Sprintf(`%s nvcc "$WORKING_DIR" "$LOG_FILE" %s "$RSP_FILE"`, n.invoker, args),
			Description: "$DESC",
			Restat:      true,
		},
	)
}

// RenderCompile writes the response file and compile edge of t.
func (n *NVCC) RenderCompile(e ports.Emission, t *domain.CompileTask) error {
	options, err := n.compileOptions(slices.Clone(n.spec.DefaultCompileOptions), t)
	if err != nil {
		return err
	}
	rsp, err := e.WriteResponseFile(t.OutputPath, options)
	if err != nil {
		return err
	}

	return e.Writer().Build(domain.Edge{
		Outputs:       concat([]string{t.OutputPath}, t.ExtraOutputs, []string{logPath(t.OutputPath)}),
		Rule:          n.spec.Name + "_cxx",
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
			{Name: domain.VarDesc, Value: describe(t.SourcePath, t.OutputPath)},
		},
	})
}

// compileOptions appends optimization, host debug, device debug,
// relocatable device code, warning, address model, PCH, include, define
// and extra options, in that order.
func (n *NVCC) compileOptions(options []string, t *domain.CompileTask) ([]string, error) {
	opt, err := gccOptLevel(t)
	if err != nil {
		return nil, err
	}
	options = append(options, opt...)

	if err := checkRange("debugLevel", t.DebugLevel, 0, 3); err != nil {
		return nil, err
	}
	if t.DebugLevel > 0 {
		options = append(options, "--debug")
	}

	if err := checkRange("deviceDebugLevel", t.DeviceDebugLevel, 0, 2); err != nil {
		return nil, err
	}
	switch t.DeviceDebugLevel {
	case 1:
		options = append(options, "-lineinfo")
	case 2:
		options = append(options, "-G")
	}

	if t.RelocatableDeviceCode {
		options = append(options, "-rdc=true")
	} else {
		options = append(options, "-rdc=false")
	}

	if err := checkRange("warnLevel", t.WarnLevel, 0, 4); err != nil {
		return nil, err
	}
	if t.WarnLevel == 0 {
		options = append(options, "-w")
	} else {
		hostOptions, err := n.host.warningFlags(t)
		if err != nil {
			return nil, err
		}
		for _, o := range hostOptions {
			options = append(options, "-Xcompiler "+o)
		}
	}

	if n.spec.AddressModel != "" {
		options = append(options, n.spec.AddressModel)
	}

	if t.UsePCH != "" {
		options = append(options, "-include "+quote(binutilsPath(t.UsePCH)))
		t.ExtraDeps = append(t.ExtraDeps, t.UsePCH)
	}

	incs, err := gccIncludesAndDefines(t)
	if err != nil {
		return nil, err
	}
	options = append(options, incs...)
	return append(options, t.ExtraOptions...), nil
}

// RenderArchive writes the response file and archive edge of t.
func (n *NVCC) RenderArchive(e ports.Emission, t *domain.ArchiveTask) error {
	options := concat([]string{"-lib", "-o " + quote(binutilsPath(t.OutputPath))}, linkerInputs(t.Inputs))
	rsp, err := e.WriteResponseFile(t.OutputPath, options)
	if err != nil {
		return err
	}

	return e.Writer().Build(domain.Edge{
		Outputs:       concat([]string{t.OutputPath}, t.ExtraOutputs, []string{logPath(t.OutputPath)}),
		Rule:          n.spec.Name + "_invoke",
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
func (n *NVCC) RenderLink(e ports.Emission, t *domain.LinkTask) error {
	options := concat(n.spec.DefaultLinkOptions, []string{"-link"})
	if !t.Executable {
		options = append(options, "-shared")
	}
	options = append(options, "-o "+quote(binutilsPath(t.OutputPath)))
	if n.spec.AddressModel != "" {
		options = append(options, n.spec.AddressModel)
	}
	switch {
	case t.KeepDebugInfo && n.traits.MSVCStyle:
		options = append(options, "-Xlinker /DEBUG")
	case !t.KeepDebugInfo && !n.traits.MSVCStyle:
		options = append(options, "-Xlinker --strip-debug")
	}
	options = append(options, linkerInputs(t.Inputs)...)
	options = append(options, t.ExtraOptions...)

	rsp, err := e.WriteResponseFile(t.OutputPath, options)
	if err != nil {
		return err
	}

	return e.Writer().Build(domain.Edge{
		Outputs:       linkOutputs(t),
		Rule:          n.spec.Name + "_invoke",
		Inputs:        absolute(t.Inputs),
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

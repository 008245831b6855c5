package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// ToolchainFamily selects the flag dialect and invocation wrapper of a toolchain.
type ToolchainFamily string

const (
	// FamilyGCC drives gcc and binutils.
	FamilyGCC ToolchainFamily = "gcc"
	// FamilyClang drives clang with gcc-compatible flags.
	FamilyClang ToolchainFamily = "clang"
	// FamilyMSVC drives cl, lib and link.
	FamilyMSVC ToolchainFamily = "msvc"
	// FamilyNVCC drives nvcc on top of a gcc or msvc host compiler.
	FamilyNVCC ToolchainFamily = "nvcc"
)

var knownFamilies = []ToolchainFamily{FamilyGCC, FamilyClang, FamilyMSVC, FamilyNVCC}

// ParseToolchainFamily validates a family name.
func ParseToolchainFamily(s string) (ToolchainFamily, error) {
	f := ToolchainFamily(s)
	if !slices.Contains(knownFamilies, f) {
		return "", zerr.With(zerr.Wrap(ErrUnknownToolchainFamily, "unsupported family"), "family", s)
	}
	return f, nil
}

// ToolchainTraits are the toolchain-wide properties projects consult when
// naming outputs.
type ToolchainTraits struct {
	Family        ToolchainFamily
	ObjectExt     string
	PCHExt        string
	SupportsPCH   bool
	TargetWindows bool
	// MSVCStyle is set for msvc and for nvcc on an msvc host. It selects
	// .lib archive naming, import libraries and the PCH object side file.
	MSVCStyle  bool
	LTOSupport bool
}

// ToolchainSpec is the declarative definition of one toolchain.
type ToolchainSpec struct {
	Name          string
	Family        ToolchainFamily
	InstallDir    string
	Prefix        string
	Suffix        string
	AddressModel  string
	TargetWindows bool
	LTO           bool

	// nvcc
	Host           ToolchainFamily
	HostInstallDir string

	// msvc, nvcc on an msvc host
	Arch string

	DefaultCompileOptions []string
	DefaultLinkOptions    []string
}

package config

// Workfile represents the structure of the weave.work.yaml configuration file.
type Workfile struct {
	Version         string                   `yaml:"version"`
	Built           string                   `yaml:"built"`
	Schema          []FieldDTO               `yaml:"schema"`
	ToolchainFields []string                 `yaml:"toolchainFields"`
	Toolchains      map[string]*ToolchainDTO `yaml:"toolchains"`
	Projects        []string                 `yaml:"projects"`
	Ignore          []string                 `yaml:"ignore"`
	Targets         []TargetDTO              `yaml:"targets"`
}

// FieldDTO is one variant schema field.
type FieldDTO struct {
	Field  string   `yaml:"field"`
	Values []string `yaml:"values"`
}

// ToolchainDTO represents a toolchain definition in the workspace.
type ToolchainDTO struct {
	Family                string   `yaml:"family"`
	InstallDir            string   `yaml:"installDir"`
	Prefix                string   `yaml:"prefix"`
	Suffix                string   `yaml:"suffix"`
	AddressModel          string   `yaml:"addressModel"`
	TargetWindows         bool     `yaml:"targetWindows"`
	LTO                   bool     `yaml:"lto"`
	Host                  string   `yaml:"host"`
	HostInstallDir        string   `yaml:"hostInstallDir"`
	Arch                  string   `yaml:"arch"`
	DefaultCompileOptions []string `yaml:"defaultCompileOptions"`
	DefaultLinkOptions    []string `yaml:"defaultLinkOptions"`
}

// TargetDTO requests a project for a list of variants.
type TargetDTO struct {
	Project  string   `yaml:"project"`
	Variants []string `yaml:"variants"`
	Deploy   string   `yaml:"deploy"`
}

// Weavefile represents the structure of a weave.yaml project file.
type Weavefile struct {
	Version       string       `yaml:"version"`
	Project       string       `yaml:"project"`
	Output        string       `yaml:"output"`
	Name          string       `yaml:"name"`
	Sources       []string     `yaml:"sources"`
	PCH           string       `yaml:"pch"`
	NoPCH         bool         `yaml:"noPCH"`
	Includes      []string     `yaml:"includes"`
	Defines       []string     `yaml:"defines"`
	Deps          []string     `yaml:"deps"`
	Libs          []string     `yaml:"libs"`
	Inputs        []string     `yaml:"inputs"`
	ForcedDeps    []string     `yaml:"forcedDeps"`
	OrderOnlyDeps []string     `yaml:"orderOnlyDeps"`
	Compile       CompileDTO   `yaml:"compile"`
	Link          LinkDTO      `yaml:"link"`
	Files         []FileDTO    `yaml:"files"`
	When          []OverlayDTO `yaml:"when"`
	Copies        []CopyDTO    `yaml:"copies"`
	Commands      []CommandDTO `yaml:"commands"`
}

// CompileDTO overrides compile options. Unset fields keep the defaults.
type CompileDTO struct {
	OptLevel         *int     `yaml:"optLevel"`
	DebugLevel       *int     `yaml:"debugLevel"`
	WarnLevel        *int     `yaml:"warnLevel"`
	WarningsAsErrors *bool    `yaml:"warningsAsErrors"`
	Std              *string  `yaml:"std"`
	AddressModel     *string  `yaml:"addressModel"`
	ExtraOptions     []string `yaml:"extraOptions"`
}

// LinkDTO overrides link options.
type LinkDTO struct {
	KeepDebugInfo *bool    `yaml:"keepDebugInfo"`
	NoUndefined   *bool    `yaml:"noUndefined"`
	ExtraOptions  []string `yaml:"extraOptions"`
}

// FileDTO compiles a subset of sources with its own settings.
type FileDTO struct {
	Sources []string   `yaml:"sources"`
	Compile CompileDTO `yaml:"compile"`
}

// OverlayDTO applies settings to matching variants.
type OverlayDTO struct {
	Match    map[string]string `yaml:"match"`
	Compile  CompileDTO        `yaml:"compile"`
	Defines  []string          `yaml:"defines"`
	Includes []string          `yaml:"includes"`
}

// CopyDTO copies a project file into the build tree.
type CopyDTO struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Alias string `yaml:"alias"`
}

// CommandDTO is an ad hoc build step.
type CommandDTO struct {
	Command     string   `yaml:"command"`
	Description string   `yaml:"description"`
	Inputs      []string `yaml:"inputs"`
	Outputs     []string `yaml:"outputs"`
}

package config

import (
	"maps"
	"slices"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	defaultArch         = "x64"
	defaultAddressModel = "-m64"
)

func buildSchema(dtos []FieldDTO) (*domain.Schema, error) {
	fields := make([]domain.Field, 0, len(dtos))
	for _, dto := range dtos {
		fields = append(fields, domain.Field{Name: dto.Field, Options: dto.Values})
	}
	return domain.NewSchema(fields...)
}

// buildToolchains converts the toolchain map into specs sorted by name.
func buildToolchains(dtos map[string]*ToolchainDTO) ([]domain.ToolchainSpec, error) {
	specs := make([]domain.ToolchainSpec, 0, len(dtos))
	for _, name := range slices.Sorted(maps.Keys(dtos)) {
		dto := dtos[name]
		if dto == nil {
			dto = &ToolchainDTO{}
		}

		family, err := domain.ParseToolchainFamily(dto.Family)
		if err != nil {
			return nil, zerr.With(err, "toolchain", name)
		}

		spec := domain.ToolchainSpec{
			Name:                  name,
			Family:                family,
			InstallDir:            dto.InstallDir,
			Prefix:                dto.Prefix,
			Suffix:                dto.Suffix,
			AddressModel:          dto.AddressModel,
			TargetWindows:         dto.TargetWindows,
			LTO:                   dto.LTO,
			HostInstallDir:        dto.HostInstallDir,
			Arch:                  dto.Arch,
			DefaultCompileOptions: dto.DefaultCompileOptions,
			DefaultLinkOptions:    dto.DefaultLinkOptions,
		}

		// Invocation arguments are positional, so these may not be empty.
		switch family {
		case domain.FamilyMSVC:
			spec.Arch = defaultString(spec.Arch, defaultArch)
		case domain.FamilyNVCC:
			if spec.Host, err = parseHost(dto.Host); err != nil {
				return nil, zerr.With(err, "toolchain", name)
			}
			spec.AddressModel = defaultString(spec.AddressModel, defaultAddressModel)
		}

		specs = append(specs, spec)
	}
	return specs, nil
}

// parseHost accepts the host families nvcc can drive. gcc is the default.
func parseHost(s string) (domain.ToolchainFamily, error) {
	if s == "" {
		return domain.FamilyGCC, nil
	}
	host, err := domain.ParseToolchainFamily(s)
	if err != nil {
		return "", err
	}
	if host != domain.FamilyGCC && host != domain.FamilyMSVC {
		return "", zerr.With(zerr.Wrap(domain.ErrUnknownToolchainFamily, "nvcc host must be gcc or msvc"), "host", s)
	}
	return host, nil
}

func buildTargets(dtos []TargetDTO) ([]domain.TargetSpec, error) {
	targets := make([]domain.TargetSpec, 0, len(dtos))
	for i, dto := range dtos {
		if dto.Project == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrMissingProjectName, "invalid target"), "target", i)
		}
		targets = append(targets, domain.TargetSpec{
			Project:  dto.Project,
			Variants: dto.Variants,
			Deploy:   dto.Deploy,
		})
	}
	return targets, nil
}

func buildProject(w *Weavefile, schema *domain.Schema) (*domain.ProjectSpec, error) {
	output, err := domain.ParseOutputKind(w.Output)
	if err != nil {
		return nil, err
	}

	spec := &domain.ProjectSpec{
		Name:          w.Project,
		Output:        output,
		OutputName:    defaultString(w.Name, w.Project),
		Sources:       w.Sources,
		PCH:           w.PCH,
		NoPCH:         w.NoPCH,
		Includes:      w.Includes,
		Defines:       w.Defines,
		Deps:          w.Deps,
		Libs:          w.Libs,
		Inputs:        w.Inputs,
		ForcedDeps:    w.ForcedDeps,
		OrderOnlyDeps: w.OrderOnlyDeps,
		Compile:       w.Compile.settings(),
		Link: domain.LinkSettings{
			KeepDebugInfo: w.Link.KeepDebugInfo,
			NoUndefined:   w.Link.NoUndefined,
			ExtraOptions:  w.Link.ExtraOptions,
		},
	}

	for _, f := range w.Files {
		spec.Files = append(spec.Files, domain.FileGroup{Sources: f.Sources, Compile: f.Compile.settings()})
	}

	for _, o := range w.When {
		for field := range o.Match {
			if !hasField(schema, field) {
				err := zerr.Wrap(domain.ErrSchemaViolation, "overlay matches an unknown field")
				return nil, zerr.With(err, "field", field)
			}
		}
		spec.When = append(spec.When, domain.Overlay{
			Match:    o.Match,
			Compile:  o.Compile.settings(),
			Defines:  o.Defines,
			Includes: o.Includes,
		})
	}

	for _, c := range w.Copies {
		spec.Copies = append(spec.Copies, domain.CopySpec{From: c.From, To: defaultString(c.To, c.From), Alias: c.Alias})
	}

	for _, c := range w.Commands {
		spec.Commands = append(spec.Commands, domain.CommandSpec{
			Command:     c.Command,
			Description: c.Description,
			Inputs:      c.Inputs,
			Outputs:     c.Outputs,
		})
	}

	return spec, nil
}

func (c CompileDTO) settings() domain.CompileSettings {
	return domain.CompileSettings{
		OptLevel:         c.OptLevel,
		DebugLevel:       c.DebugLevel,
		WarnLevel:        c.WarnLevel,
		WarningsAsErrors: c.WarningsAsErrors,
		Std:              c.Std,
		AddressModel:     c.AddressModel,
		ExtraOptions:     c.ExtraOptions,
	}
}

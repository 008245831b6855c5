// Package config provides the workspace configuration loader for weave.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"regexp"
	"slices"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

var validProjectNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Loader implements ports.ConfigLoader on weave.work.yaml and weave.yaml files.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a Loader reading from the host file system.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: OSFS{}}
}

// DiscoverRoot walks up from cwd to the directory holding weave.work.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	path, err := l.findWorkfile(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// Load reads the workspace that contains cwd.
func (l *Loader) Load(cwd string) (*domain.Workspace, error) {
	workfilePath, err := l.findWorkfile(cwd)
	if err != nil {
		return nil, err
	}

	var workfile Workfile
	if err := l.readAndUnmarshalYAML(workfilePath, &workfile); err != nil {
		return nil, err
	}

	root := filepath.Dir(workfilePath)
	ws := &domain.Workspace{
		Root:            root,
		BuiltDir:        resolvePath(root, defaultString(workfile.Built, domain.DefaultBuiltDir)),
		ToolchainFields: workfile.ToolchainFields,
		Projects:        make(map[string]*domain.ProjectSpec),
		Files:           []string{workfilePath},
	}

	if ws.Schema, err = buildSchema(workfile.Schema); err != nil {
		return nil, zerr.With(err, "path", workfilePath)
	}
	if err := validateToolchainFields(ws.Schema, workfile.ToolchainFields); err != nil {
		return nil, zerr.With(err, "path", workfilePath)
	}
	if ws.Toolchains, err = buildToolchains(workfile.Toolchains); err != nil {
		return nil, zerr.With(err, "path", workfilePath)
	}
	if ws.Targets, err = buildTargets(workfile.Targets); err != nil {
		return nil, zerr.With(err, "path", workfilePath)
	}
	for _, ignore := range workfile.Ignore {
		ws.Ignore = append(ws.Ignore, resolvePath(root, ignore))
	}

	projectPaths, err := l.resolveProjectPaths(root, workfile.Projects)
	if err != nil {
		return nil, err
	}

	projectDirs := make(map[string]string)
	for _, projectPath := range projectPaths {
		if err := l.processProject(ws, projectPath, projectDirs); err != nil {
			return nil, err
		}
	}

	return ws, nil
}

func (l *Loader) findWorkfile(cwd string) (string, error) {
	currentDir := filepath.Clean(cwd)
	for {
		workfilePath := filepath.Join(currentDir, domain.WorkFileName)
		if _, err := l.FS.Stat(workfilePath); err == nil {
			return workfilePath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no workspace above directory"), "cwd", cwd)
}

func (l *Loader) resolveProjectPaths(root string, patterns []string) ([]string, error) {
	projectPaths := make(map[string]struct{})
	for _, pattern := range patterns {
		matches, err := l.FS.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "glob pattern failed"), "pattern", pattern)
		}
		for _, match := range matches {
			projectPaths[match] = struct{}{}
		}
	}
	// Map order is random; sorting keeps duplicate reports and file order stable.
	return slices.Sorted(maps.Keys(projectPaths)), nil
}

func (l *Loader) processProject(ws *domain.Workspace, projectPath string, projectDirs map[string]string) error {
	relPath, err := filepath.Rel(ws.Root, projectPath)
	if err != nil {
		relPath = projectPath
	}

	info, err := l.FS.Stat(projectPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat project directory"), "directory", relPath)
	}
	if !info.IsDir() {
		return nil
	}

	weavefilePath := filepath.Join(projectPath, domain.ProjectFileName)
	if _, err := l.FS.Stat(weavefilePath); errors.Is(err, fs.ErrNotExist) {
		l.Logger.Warn(fmt.Sprintf("%s missing in project %s, skipping", domain.ProjectFileName, relPath))
		return nil
	}

	var weavefile Weavefile
	if err := l.readAndUnmarshalYAML(weavefilePath, &weavefile); err != nil {
		return zerr.With(err, "directory", relPath)
	}
	if err := validateProjectName(weavefile.Project, relPath); err != nil {
		return err
	}

	if existing, exists := projectDirs[weavefile.Project]; exists {
		err := zerr.With(zerr.Wrap(domain.ErrDuplicateProject, "project defined twice"), "project", weavefile.Project)
		err = zerr.With(err, "first_occurrence", existing)
		return zerr.With(err, "duplicate_at", relPath)
	}
	projectDirs[weavefile.Project] = relPath

	spec, err := buildProject(&weavefile, ws.Schema)
	if err != nil {
		return zerr.With(err, "project", weavefile.Project)
	}
	spec.Dir = projectPath
	spec.RelDir = filepath.ToSlash(relPath)
	spec.File = weavefilePath

	ws.Projects[spec.Name] = spec
	ws.Files = append(ws.Files, weavefilePath)
	return nil
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into target.
func (l *Loader) readAndUnmarshalYAML(path string, target any) error {
	data, err := l.FS.ReadFile(path)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", path)
	}
	return nil
}

func validateProjectName(name, relPath string) error {
	if name == "" {
		return zerr.With(zerr.Wrap(domain.ErrMissingProjectName, "invalid project file"), "directory", relPath)
	}
	if !validProjectNameRegex.MatchString(name) {
		err := zerr.With(zerr.Wrap(domain.ErrInvalidProjectName, "invalid project file"), "project", name)
		return zerr.With(err, "directory", relPath)
	}
	return nil
}

func validateToolchainFields(schema *domain.Schema, fields []string) error {
	if len(fields) == 0 {
		return zerr.Wrap(domain.ErrInvalidSchema, "toolchainFields must name at least one schema field")
	}
	for _, name := range fields {
		if !hasField(schema, name) {
			err := zerr.Wrap(domain.ErrInvalidSchema, "toolchainFields names an unknown field")
			return zerr.With(err, "field", name)
		}
	}
	return nil
}

func hasField(schema *domain.Schema, name string) bool {
	return slices.ContainsFunc(schema.Fields(), func(f domain.Field) bool {
		return f.Name == name
	})
}

func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

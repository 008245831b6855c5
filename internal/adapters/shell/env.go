package shell

import (
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// toolEnv describes how a tool's environment differs from the caller's.
type toolEnv struct {
	// path entries are prepended to PATH in order.
	path []string
	vars map[string]string
}

func (e *toolEnv) prependPath(dirs ...string) {
	e.path = append(slices.Clone(dirs), e.path...)
}

func (e *toolEnv) set(key, value string) {
	if e.vars == nil {
		e.vars = make(map[string]string)
	}
	e.vars[key] = value
}

// gccEnv points PATH, INCLUDE and LIB at a gcc-style install tree.
func gccEnv(env *toolEnv, installDir string) {
	env.prependPath(filepath.Join(installDir, "bin"))
	env.set("INCLUDE", filepath.Join(installDir, "include"))
	env.set("LIB", filepath.Join(installDir, "lib"))
}

// msvcEnv points PATH, INCLUDE and LIB at a Visual C++ install for arch.
func msvcEnv(env *toolEnv, installDir, arch string) {
	vc := filepath.Join(installDir, "VC")
	ide := filepath.Join(installDir, "Common7", "IDE")
	env.set("INCLUDE", filepath.Join(vc, "include"))

	if arch == "x86" {
		env.set("LIB", filepath.Join(vc, "lib"))
		env.prependPath(filepath.Join(vc, "bin"), ide)
		return
	}

	env.set("LIB", filepath.Join(vc, "lib", "amd64"))
	native := filepath.Join(vc, "bin", "amd64")
	if is64BitHost() && fileExists(filepath.Join(native, "cl.exe")) {
		env.prependPath(native, ide)
		return
	}
	env.prependPath(filepath.Join(vc, "bin", "x86_amd64"), ide)
}

func is64BitHost() bool {
	return strings.EqualFold(os.Getenv("PROCESSOR_ARCHITECTURE"), "amd64") ||
		strings.EqualFold(os.Getenv("PROCESSOR_ARCHITEW6432"), "amd64")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// resolveEnvironment merges env into the system environment. PATH entries
// from env are prepended to the system PATH.
func resolveEnvironment(sysEnv []string, env toolEnv) []string {
	envMap := make(map[string]string, len(sysEnv))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}

	if len(env.path) > 0 {
		path := strings.Join(env.path, string(os.PathListSeparator))
		if sysPath := envMap["PATH"]; sysPath != "" {
			path += string(os.PathListSeparator) + sysPath
		}
		envMap["PATH"] = path
	}

	for k, v := range env.vars {
		envMap[k] = v
	}

	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH
// entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "PATH="); ok {
			path = after
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}

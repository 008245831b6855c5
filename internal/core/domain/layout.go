package domain

import "path/filepath"

const (
	// WeaveDirName is the name of the internal workspace directory.
	WeaveDirName = ".weave"

	// StoreDirName is the name of the generation record directory.
	StoreDirName = "store"

	// ProjectFileName is the name of the project configuration file.
	ProjectFileName = "weave.yaml"

	// WorkFileName is the name of the workspace configuration file.
	WorkFileName = "weave.work.yaml"

	// BuildFileName is the name of the generated build file.
	BuildFileName = "build.ninja"

	// LockSuffix is appended to the build file path to form its lock file.
	LockSuffix = ".lock"

	// ResponseFileSuffix is appended to a primary output to form its response file.
	ResponseFileSuffix = ".rsp"

	// DefaultBuiltDir is the default build output root relative to the workspace.
	DefaultBuiltDir = "built"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultStorePath returns the default path for generation records.
// It joins .weave and store.
func DefaultStorePath() string {
	return filepath.Join(WeaveDirName, StoreDirName)
}

// BuildFilePath returns the build file location inside the given output root.
func BuildFilePath(builtDir string) string {
	return filepath.Join(builtDir, BuildFileName)
}

// LockFilePath returns the lock file guarding the given build file.
func LockFilePath(buildFile string) string {
	return buildFile + LockSuffix
}

// ResponseFilePath returns the response file of a task's primary output.
func ResponseFilePath(output string) string {
	return output + ResponseFileSuffix
}

package domain

import "go.trai.ch/zerr"

var (
	// ErrSchemaViolation is returned when a variant key does not match its schema.
	ErrSchemaViolation = zerr.New("variant does not match schema")

	// ErrInvalidSchema is returned when a variant schema is malformed.
	ErrInvalidSchema = zerr.New("invalid variant schema")

	// ErrOutputAlreadySelected is returned when a project declares a second primary output.
	ErrOutputAlreadySelected = zerr.New("project output already selected")

	// ErrAlreadyEmitted is returned when a task or task group is emitted twice.
	ErrAlreadyEmitted = zerr.New("task already emitted")

	// ErrReuseAfterEmission is returned when a configuration scope is opened on an emitted task.
	// It matches ErrAlreadyEmitted under errors.Is.
	ErrReuseAfterEmission = zerr.Wrap(ErrAlreadyEmitted, "task must not be reused after emission")

	// ErrDuplicateToolchain is returned when two toolchains share a name.
	ErrDuplicateToolchain = zerr.New("toolchain already defined")

	// ErrDuplicateProject is returned when a project name is defined from two different locations.
	ErrDuplicateProject = zerr.New("duplicate project")

	// ErrProjectNotFound is returned when a requested project has no definition.
	ErrProjectNotFound = zerr.New("project not found")

	// ErrRuntimeDependencyConflict is returned when two sources map to the same destination.
	ErrRuntimeDependencyConflict = zerr.New("conflicting runtime dependencies")

	// ErrToolchainNotFound is returned when a variant selects an unknown toolchain.
	ErrToolchainNotFound = zerr.New("toolchain not found")

	// ErrUnknownToolchainFamily is returned when a toolchain definition names an unsupported family.
	ErrUnknownToolchainFamily = zerr.New("unknown toolchain family")

	// ErrCyclicDependency is returned when a project depends on itself, directly or transitively.
	ErrCyclicDependency = zerr.New("cyclic project dependency")

	// ErrConcurrentGenerationLock is returned when the build file lock is already held.
	ErrConcurrentGenerationLock = zerr.New("failed to acquire lock file due to possible concurrent build")

	// ErrSubprocessFailure is returned when a wrapped compiler, archiver or linker exits non-zero.
	ErrSubprocessFailure = zerr.New("subprocess failed")

	// ErrUnknownInvocation is returned when the invoke wrapper is asked for an unknown tool kind.
	ErrUnknownInvocation = zerr.New("unknown invocation kind")

	// ErrInvalidOption is returned when a numeric task option is out of range.
	ErrInvalidOption = zerr.New("option out of range")

	// ErrEmptyOption is returned when an include path or define is empty.
	ErrEmptyOption = zerr.New("empty option")

	// ErrRelativeRuntimePath is returned when a runtime dependency source is not absolute.
	ErrRelativeRuntimePath = zerr.New("runtime dependency source must be an absolute path")

	// ErrDeployTwice is returned when a project deploys more than once.
	ErrDeployTwice = zerr.New("deploy may only be called once per project")

	// ErrUnknownOutputKind is returned when a project file names an unsupported output kind.
	ErrUnknownOutputKind = zerr.New("unknown output kind, expected 'static', 'shared', 'executable' or 'none'")

	// ErrNoTargets is returned when a generation run requests no targets.
	ErrNoTargets = zerr.New("no targets specified")

	// ErrConfigNotFound is returned when no workspace file is found.
	ErrConfigNotFound = zerr.New("could not find " + WorkFileName)

	// ErrConfigReadFailed is returned when a configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config")

	// ErrConfigParseFailed is returned when a configuration file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config")

	// ErrMissingProjectName is returned when a project file has no project name.
	ErrMissingProjectName = zerr.New("missing project name")

	// ErrInvalidProjectName is returned when a project name is invalid.
	ErrInvalidProjectName = zerr.New("project name can only contain alphanumeric characters, hyphens and underscores")

	// ErrBuildFileWriteFailed is returned when the build file cannot be written.
	ErrBuildFileWriteFailed = zerr.New("failed to write build file")

	// ErrStoreReadFailed is returned when a generation record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read generation record")

	// ErrStoreUnmarshalFailed is returned when a generation record cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal generation record")

	// ErrStoreMarshalFailed is returned when a generation record cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal generation record")

	// ErrStoreWriteFailed is returned when a generation record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write generation record")
)

package domain

import (
	"errors"
	"iter"
)

// TaskState is the lifecycle state of a task or task group.
type TaskState uint8

const (
	// TaskPending means the task has not been written to the build graph yet.
	TaskPending TaskState = iota
	// TaskEmitted means the task has been written. It is terminal.
	TaskEmitted
)

// String returns the state name.
func (s TaskState) String() string {
	if s == TaskEmitted {
		return "emitted"
	}
	return "pending"
}

// Emitter writes a task into the build graph.
type Emitter func() error

// Task is a unit of graph work with a one-shot emission lifecycle.
type Task interface {
	Base() *TaskBase
	PrimaryOutput() string
}

// Configurable is anything that opens a configuration scope.
type Configurable interface {
	Configure() (*Scope, error)
}

// TaskBase carries the fields every task shares and its lifecycle.
type TaskBase struct {
	// ExtraDeps are rebuild-triggering inputs beyond the primary inputs.
	ExtraDeps []string
	// OrderOnlyDeps must exist before the task runs but do not trigger rebuilds.
	OrderOnlyDeps []string
	// ExtraOutputs are additional files the task produces.
	ExtraOutputs []string
	// PhonyAlias, when set, names a phony target that includes the primary output.
	PhonyAlias string

	state TaskState
	emit  Emitter
}

// Bind sets the function that writes the task. A task without an emitter
// transitions to emitted without writing anything.
func (b *TaskBase) Bind(emit Emitter) {
	b.emit = emit
}

// Base returns b. It lets embedding task types satisfy Task.
func (b *TaskBase) Base() *TaskBase {
	return b
}

// State returns the lifecycle state.
func (b *TaskBase) State() TaskState {
	return b.state
}

// Emitted reports whether the task has been emitted.
func (b *TaskBase) Emitted() bool {
	return b.state == TaskEmitted
}

// Configure opens a configuration scope. Closing the scope emits the task
// exactly once.
func (b *TaskBase) Configure() (*Scope, error) {
	if b.Emitted() {
		return nil, ErrReuseAfterEmission
	}
	return &Scope{close: b.emitOnce}, nil
}

// EmitNow emits the task immediately.
func (b *TaskBase) EmitNow() error {
	if b.Emitted() {
		return ErrAlreadyEmitted
	}
	return b.emitOnce()
}

func (b *TaskBase) emitOnce() error {
	if b.Emitted() {
		return nil
	}
	b.state = TaskEmitted
	if b.emit == nil {
		return nil
	}
	return b.emit()
}

// Scope is an open configuration block on a task or task group.
type Scope struct {
	closed bool
	close  func() error
}

// Close ends the scope and emits its owner if it has not been emitted.
// Closing an already closed scope does nothing.
func (s *Scope) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.close()
}

// Configure opens a scope on c, runs fn and closes the scope on every path.
func Configure[C Configurable](c C, fn func(C) error) (err error) {
	scope, err := c.Configure()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, scope.Close())
	}()
	return fn(c)
}

// TaskGroup is an ordered set of tasks sharing one lifecycle.
type TaskGroup[T Task] struct {
	tasks []T
	state TaskState
}

// NewTaskGroup returns a pending group over tasks.
func NewTaskGroup[T Task](tasks ...T) *TaskGroup[T] {
	return &TaskGroup[T]{tasks: tasks}
}

// Len returns the number of tasks in the group.
func (g *TaskGroup[T]) Len() int {
	return len(g.tasks)
}

// At returns the i-th task.
func (g *TaskGroup[T]) At(i int) T {
	return g.tasks[i]
}

// All yields the tasks in insertion order.
func (g *TaskGroup[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, t := range g.tasks {
			if !yield(i, t) {
				return
			}
		}
	}
}

// Set applies fn to every task in the group.
func (g *TaskGroup[T]) Set(fn func(T)) {
	for _, t := range g.tasks {
		fn(t)
	}
}

// Emitted reports whether the group has been emitted.
func (g *TaskGroup[T]) Emitted() bool {
	return g.state == TaskEmitted
}

// Configure opens a configuration scope over the whole group.
func (g *TaskGroup[T]) Configure() (*Scope, error) {
	if g.Emitted() {
		return nil, ErrReuseAfterEmission
	}
	return &Scope{close: g.emitOnce}, nil
}

// EmitNow emits every task in the group that has not been emitted yet.
func (g *TaskGroup[T]) EmitNow() error {
	if g.Emitted() {
		return ErrAlreadyEmitted
	}
	return g.emitOnce()
}

func (g *TaskGroup[T]) emitOnce() error {
	if g.Emitted() {
		return nil
	}
	g.state = TaskEmitted
	for _, t := range g.tasks {
		if err := t.Base().emitOnce(); err != nil {
			return err
		}
	}
	return nil
}

// CompileTask translates one source file into an object file or precompiled header.
type CompileTask struct {
	TaskBase

	SourcePath string
	OutputPath string
	WorkingDir string

	ExtraOptions     []string
	OptLevel         int
	DebugLevel       int
	WarnLevel        int
	WarningsAsErrors bool
	IncludePaths     []string
	Defines          []string
	// CreatePCH marks the task as producing a precompiled header.
	CreatePCH bool
	// UsePCH points at a precompiled header, or a plain header to force-include.
	UsePCH string

	// gcc family
	AddressModel string
	Std          string
	LTO          bool

	// msvc
	DynamicCRT bool

	// nvcc
	RelocatableDeviceCode bool
	DeviceDebugLevel      int
}

// NewCompileTask returns a pending compile task with default options.
func NewCompileTask(source, output, workingDir string) *CompileTask {
	return &CompileTask{
		SourcePath:            source,
		OutputPath:            output,
		WorkingDir:            workingDir,
		OptLevel:              3,
		DebugLevel:            2,
		WarnLevel:             3,
		DynamicCRT:            true,
		RelocatableDeviceCode: true,
		DeviceDebugLevel:      1,
	}
}

// PrimaryOutput returns the object or PCH path.
func (t *CompileTask) PrimaryOutput() string {
	return t.OutputPath
}

// ArchiveTask bundles object files into a static library.
type ArchiveTask struct {
	TaskBase

	OutputPath string
	WorkingDir string
	Inputs     []string
}

// NewArchiveTask returns a pending archive task.
func NewArchiveTask(output, workingDir string) *ArchiveTask {
	return &ArchiveTask{OutputPath: output, WorkingDir: workingDir}
}

// PrimaryOutput returns the archive path.
func (t *ArchiveTask) PrimaryOutput() string {
	return t.OutputPath
}

// LinkTask links objects and libraries into an executable or shared library.
type LinkTask struct {
	TaskBase

	OutputPath string
	// LibraryPath is the file dependents link against. It differs from
	// OutputPath for import libraries.
	LibraryPath   string
	WorkingDir    string
	Inputs        []string
	ExtraOptions  []string
	Executable    bool
	KeepDebugInfo bool

	// gcc family
	AddressModel string
	LTO          bool
	NoUndefined  bool
}

// NewLinkTask returns a pending link task with default options.
func NewLinkTask(output, workingDir string, executable bool) *LinkTask {
	return &LinkTask{
		OutputPath:    output,
		WorkingDir:    workingDir,
		Executable:    executable,
		KeepDebugInfo: true,
		NoUndefined:   true,
	}
}

// PrimaryOutput returns the executable or shared library path.
func (t *LinkTask) PrimaryOutput() string {
	return t.OutputPath
}

// Package app implements the application layer for weave.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/weave/internal/adapters/ninja"
	"go.trai.ch/weave/internal/adapters/toolchain"
	"go.trai.ch/weave/internal/adapters/watcher"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/weave/internal/engine/generator"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	factory      ports.ToolchainFactory
	writer       ports.FileWriter
	locker       ports.Locker
	hasher       ports.Hasher
	store        ports.GenerationStore
	invoker      ports.Invoker
	watcher      ports.Watcher
	tracer       ports.Tracer
	logger       ports.Logger

	executable string
	debounce   time.Duration
	now        func() time.Time
}

// New creates a new App instance. executable is the weave binary that
// generated rules call back into.
func New(
	loader ports.ConfigLoader,
	factory ports.ToolchainFactory,
	writer ports.FileWriter,
	locker ports.Locker,
	hasher ports.Hasher,
	store ports.GenerationStore,
	invoker ports.Invoker,
	fileWatcher ports.Watcher,
	tracer ports.Tracer,
	log ports.Logger,
	executable string,
) *App {
	return &App{
		configLoader: loader,
		factory:      factory,
		writer:       writer,
		locker:       locker,
		hasher:       hasher,
		store:        store,
		invoker:      invoker,
		watcher:      fileWatcher,
		tracer:       tracer,
		logger:       log,
		executable:   executable,
		debounce:     watcher.DefaultDebounceWindow,
		now:          time.Now,
	}
}

// WithDebounce sets the quiet period watch mode waits for before regenerating.
func (a *App) WithDebounce(d time.Duration) *App {
	a.debounce = d
	return a
}

// WithClock replaces the clock used to stamp generation records.
// This is primarily used for testing.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// GenerateOptions configure a generation run.
type GenerateOptions struct {
	// Dir is any directory inside the workspace.
	Dir string
	// Projects restricts generation to the targets of these projects.
	// Empty means every target.
	Projects []string
}

// Generate writes the build file of the workspace containing opts.Dir.
func (a *App) Generate(ctx context.Context, opts GenerateOptions) (*domain.Record, error) {
	_, rec, err := a.generate(ctx, opts)
	return rec, err
}

func (a *App) generate(ctx context.Context, opts GenerateOptions) (ws *domain.Workspace, rec *domain.Record, err error) {
	ws, err = a.configLoader.Load(opts.Dir)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}

	projects := distinct(opts.Projects)
	targets, err := selectTargets(ws.Targets, projects)
	if err != nil {
		return ws, nil, err
	}

	buildFile := domain.BuildFilePath(ws.BuiltDir)
	release, err := a.locker.Acquire(domain.LockFilePath(buildFile))
	if err != nil {
		return ws, nil, err
	}
	defer func() {
		err = errors.Join(err, release())
	}()

	ctx, span := a.tracer.Start(ctx, "generate", ports.WithAttribute("root", ws.Root))
	defer span.End()

	reg := generator.NewRegistry(generator.Options{
		Root:            ws.Root,
		BuildFile:       buildFile,
		BuiltDir:        ws.BuiltDir,
		Invoker:         toolchain.InvokerCommand(a.executable),
		Regenerate:      regenerateCommand(a.executable, ws.Root, projects),
		SelectToolchain: ws.ToolchainName,
		Tracer:          a.tracer,
	})
	if err := generator.Load(reg, a.factory, ws); err != nil {
		span.RecordError(err)
		return ws, nil, err
	}
	if err := generator.BuildTargets(ctx, reg, ws, targets); err != nil {
		span.RecordError(err)
		return ws, nil, err
	}

	var content strings.Builder
	res, err := reg.Finish(ctx, ninja.NewWriter(&content))
	if err != nil {
		span.RecordError(err)
		return ws, nil, err
	}

	rec, err = a.write(ws.Root, buildFile, []byte(content.String()), res)
	if err != nil {
		span.RecordError(err)
		return ws, nil, err
	}
	return ws, rec, nil
}

// write stores the response files, the build file and the generation record.
func (a *App) write(root, buildFile string, content []byte, res *generator.Result) (*domain.Record, error) {
	for _, rsp := range res.ResponseFiles {
		if _, err := a.writer.WriteIfDifferent(rsp.Path, rsp.Content); err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrBuildFileWriteFailed, err.Error()), "path", rsp.Path)
		}
	}

	changed, err := a.writer.WriteIfDifferent(buildFile, content)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrBuildFileWriteFailed, err.Error()), "path", buildFile)
	}

	rec := domain.Record{
		BuildFile:   buildFile,
		Digest:      a.hasher.Digest(content),
		Changed:     changed,
		Inputs:      res.Inputs,
		Variants:    res.Variants,
		Projects:    res.Projects,
		Edges:       res.Edges,
		GeneratedAt: a.now().UTC(),
	}
	if err := a.store.Put(root, rec); err != nil {
		return nil, err
	}

	if changed {
		a.logger.Info(fmt.Sprintf("wrote %s (%d projects, %d edges)", buildFile, len(rec.Projects), rec.Edges))
	} else {
		a.logger.Info(fmt.Sprintf("%s is up to date", buildFile))
	}
	return &rec, nil
}

// Invoke runs a compiler, archiver or linker on behalf of a build edge.
func (a *App) Invoke(ctx context.Context, kind string, args []string, stdout io.Writer) error {
	return a.invoker.Invoke(ctx, kind, args, stdout)
}

// Status describes the last generation of a workspace's build file.
type Status struct {
	BuildFile string
	// Record is nil when the build file was never generated.
	Record *domain.Record
	// Modified is set when the build file is missing or no longer matches
	// the recorded digest.
	Modified bool
}

// Status reports the last generation of the workspace containing dir.
func (a *App) Status(_ context.Context, dir string) (*Status, error) {
	ws, err := a.configLoader.Load(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	buildFile := domain.BuildFilePath(ws.BuiltDir)
	rec, err := a.store.Get(ws.Root, buildFile)
	if err != nil {
		return nil, err
	}

	status := &Status{BuildFile: buildFile, Record: rec}
	if rec == nil {
		return status, nil
	}
	digest, err := a.hasher.DigestFile(buildFile)
	status.Modified = err != nil || digest != rec.Digest
	return status, nil
}

// selectTargets keeps the targets of the named projects.
func selectTargets(targets []domain.TargetSpec, projects []string) ([]domain.TargetSpec, error) {
	if len(projects) == 0 {
		return targets, nil
	}
	var out []domain.TargetSpec
	for _, name := range projects {
		idx := slices.IndexFunc(targets, func(t domain.TargetSpec) bool { return t.Project == name })
		if idx < 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrProjectNotFound, "project is not a target"), "project", name)
		}
		for _, t := range targets {
			if t.Project == name {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

// distinct drops repeated names, keeping the first occurrence.
func distinct(names []string) []string {
	var out []string
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// regenerateCommand is the command the build file runs to rebuild itself.
func regenerateCommand(executable, root string, projects []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `"%s" generate -C "%s"`, executable, filepath.Clean(root))
	for _, p := range projects {
		fmt.Fprintf(&b, " --project %s", p)
	}
	return b.String()
}

package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/weave/internal/adapters/watcher"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// triggers is the set of paths whose change regenerates the build file.
type triggers struct {
	mu     sync.RWMutex
	inputs map[string]struct{}
}

func (t *triggers) update(rec *domain.Record) {
	if rec == nil {
		return
	}
	inputs := make(map[string]struct{}, len(rec.Inputs))
	for _, in := range rec.Inputs {
		inputs[filepath.Clean(in)] = struct{}{}
	}
	t.mu.Lock()
	t.inputs = inputs
	t.mu.Unlock()
}

// match reports whether path is a recorded generator input or a
// configuration file that may have just appeared.
func (t *triggers) match(path string) bool {
	switch filepath.Base(path) {
	case domain.ProjectFileName, domain.WorkFileName:
		return true
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.inputs[filepath.Clean(path)]
	return ok
}

// Watch generates the build file, then regenerates it whenever a generator
// input changes, until ctx is cancelled. Failed regenerations are logged
// and watching continues.
func (a *App) Watch(ctx context.Context, opts GenerateOptions) error {
	root, err := a.configLoader.DiscoverRoot(opts.Dir)
	if err != nil {
		return zerr.Wrap(err, "failed to find workspace")
	}
	opts.Dir = root

	var (
		mu  sync.Mutex
		set triggers
	)
	regenerate := func() *domain.Workspace {
		mu.Lock()
		defer mu.Unlock()
		ws, rec, err := a.generate(ctx, opts)
		if err != nil {
			a.logger.Error(err)
		}
		set.update(rec)
		return ws
	}

	ws := regenerate()
	if err := a.watcher.Start(ctx, root, watchIgnore(root, ws)); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start watcher"), "root", root)
	}
	a.logger.Info(fmt.Sprintf("watching %s", root))

	debouncer := watcher.NewDebouncer(a.debounce, func(paths []string) {
		a.logger.Info(fmt.Sprintf("%s changed, regenerating", describePaths(root, paths)))
		regenerate()
	})
	defer func() {
		debouncer.Stop()
		// Wait for a regeneration that is already running.
		mu.Lock()
		mu.Unlock() //nolint:staticcheck // empty critical section
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return a.watcher.Stop()
	})
	g.Go(func() error {
		defer cancel()
		for event := range a.watcher.Events() {
			if set.match(event.Path) {
				debouncer.Add(event.Path)
			}
		}
		return nil
	})
	return g.Wait()
}

// watchIgnore keeps the watcher out of the output tree and the configured
// ignore paths.
func watchIgnore(root string, ws *domain.Workspace) []string {
	if ws == nil {
		return []string{filepath.Join(root, domain.DefaultBuiltDir)}
	}
	return append([]string{ws.BuiltDir}, ws.Ignore...)
}

func describePaths(root string, paths []string) string {
	rel := make([]string, 0, len(paths))
	for _, p := range paths {
		if r, err := filepath.Rel(root, p); err == nil {
			p = r
		}
		rel = append(rel, filepath.ToSlash(p))
	}
	return strings.Join(rel, ", ")
}

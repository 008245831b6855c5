package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/weave/internal/adapters/telemetry"
	"go.trai.ch/weave/internal/adapters/toolchain"
	"go.trai.ch/weave/internal/app"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	loader  *mocks.MockConfigLoader
	invoker *mocks.MockInvoker
	logger  *mocks.MockLogger
	app     *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		loader:  mocks.NewMockConfigLoader(ctrl),
		invoker: mocks.NewMockInvoker(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
	}
	f.logger.EXPECT().SetJSON(gomock.Any()).AnyTimes()
	f.logger.EXPECT().SetVerbose(gomock.Any()).AnyTimes()

	f.app = app.New(
		f.loader,
		toolchain.NewFactory(toolchain.InvokerCommand("/bin/weave")),
		mocks.NewMockFileWriter(ctrl),
		mocks.NewMockLocker(ctrl),
		mocks.NewMockHasher(ctrl),
		mocks.NewMockGenerationStore(ctrl),
		f.invoker,
		mocks.NewMockWatcher(ctrl),
		telemetry.NewNoOpTracer(),
		f.logger,
		"/bin/weave",
	)
	return f
}

func (f *fixture) provider(_ context.Context) (*app.Components, func(), error) {
	return &app.Components{App: f.app, Logger: f.logger}, func() {}, nil
}

func TestRun_Success(t *testing.T) {
	f := newFixture(t)

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, new(bytes.Buffer), f.provider)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "weave version")
}

func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

func TestRun_ExecutionError(t *testing.T) {
	f := newFixture(t)
	loadErr := errors.New("load failed")
	f.loader.EXPECT().Load(gomock.Any()).Return(nil, loadErr)
	f.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, loadErr)
	})

	exitCode := run(context.Background(), []string{"generate", "-C", t.TempDir()},
		new(bytes.Buffer), new(bytes.Buffer), f.provider)

	assert.Equal(t, 1, exitCode)
}

func TestRun_InvokePropagatesToolExitCode(t *testing.T) {
	f := newFixture(t)
	failure := zerr.With(zerr.With(zerr.Wrap(domain.ErrSubprocessFailure, "tool failed"), "tool", "cc"), "exit_code", 3)
	f.invoker.EXPECT().
		Invoke(gomock.Any(), "gcc-lib", []string{"a", "b", "c", "d", "e"}, gomock.Any()).
		Return(failure)

	exitCode := run(context.Background(), []string{"invoke", "gcc-lib", "a", "b", "c", "d", "e"},
		new(bytes.Buffer), new(bytes.Buffer), f.provider)

	assert.Equal(t, 3, exitCode)
}

func TestRun_InvokeStartFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	failure := zerr.With(zerr.Wrap(domain.ErrSubprocessFailure, "failed to start tool"), "tool", "cc")
	f.invoker.EXPECT().Invoke(gomock.Any(), "copy", []string{"a", "b"}, gomock.Any()).Return(failure)
	f.logger.EXPECT().Error(gomock.Any())

	exitCode := run(context.Background(), []string{"invoke", "copy", "a", "b"},
		new(bytes.Buffer), new(bytes.Buffer), f.provider)

	assert.Equal(t, 1, exitCode)
}

// Package shell runs compilers, archivers and linkers on behalf of build
// edges. It backs the `weave invoke` command that generated rules call.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

// runFunc handles one invocation kind. args has already been checked
// against the kind's arity.
type runFunc func(i *Invoker, ctx context.Context, args []string, stdout io.Writer) error

type kind struct {
	argc int
	run  runFunc
}

var kinds = map[string]kind{
	"gcc-cxx":   {argc: 8, run: (*Invoker).gccCompile},
	"gcc-lib":   {argc: 5, run: (*Invoker).gccTool},
	"gcc-link":  {argc: 5, run: (*Invoker).gccTool},
	"msvc-cxx":  {argc: 9, run: (*Invoker).msvcCompile},
	"msvc-lib":  {argc: 5, run: msvcTool("lib")},
	"msvc-link": {argc: 5, run: msvcTool("link")},
	"nvcc-cxx":  {argc: 10, run: (*Invoker).nvccCompile},
	"nvcc":      {argc: 7, run: (*Invoker).nvccTool},
	"copy":      {argc: 2, run: (*Invoker).copy},
}

// Invoker implements ports.Invoker using os/exec.
type Invoker struct {
	logger ports.Logger
	writer ports.FileWriter
}

// NewInvoker creates a new Invoker.
func NewInvoker(logger ports.Logger, writer ports.FileWriter) *Invoker {
	return &Invoker{
		logger: logger,
		writer: writer,
	}
}

// Invoke runs the named invocation kind with its positional arguments.
func (i *Invoker) Invoke(ctx context.Context, name string, args []string, stdout io.Writer) error {
	k, ok := kinds[name]
	if !ok {
		return zerr.With(zerr.Wrap(domain.ErrUnknownInvocation, "no such kind"), "kind", name)
	}
	if len(args) != k.argc {
		err := zerr.Wrap(domain.ErrUnknownInvocation, "wrong number of arguments")
		err = zerr.With(err, "kind", name)
		err = zerr.With(err, "expected", k.argc)
		return zerr.With(err, "got", len(args))
	}
	return k.run(i, ctx, args, stdout)
}

// tool is one subprocess run with its combined output captured in a log file.
type tool struct {
	dir  string
	log  string
	env  toolEnv
	name string
	args []string
}

// run executes t and writes its combined output to the log file. A non-zero
// exit is reported through the returned exit code, not the error.
func (i *Invoker) run(ctx context.Context, t tool) ([]byte, int, error) {
	env := resolveEnvironment(os.Environ(), t.env)

	executable := t.name
	if !filepath.IsAbs(t.name) {
		if lp, err := lookPath(t.name, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, t.args...) //nolint:gosec // tool named by the build file
	cmd.Args[0] = t.name
	cmd.Dir = t.dir
	cmd.Env = env

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	i.logger.Debug(fmt.Sprintf("running %s %s", t.name, strings.Join(t.args, " ")))
	runErr := cmd.Run()

	if err := os.WriteFile(inDir(t.dir, t.log), out.Bytes(), domain.FilePerm); err != nil {
		return nil, 0, zerr.With(zerr.Wrap(err, "failed to write log file"), "log", t.log)
	}

	if runErr == nil {
		return out.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return out.Bytes(), exitErr.ExitCode(), nil
	}
	err := zerr.Wrap(domain.ErrSubprocessFailure, runErr.Error())
	return nil, 0, zerr.With(err, "tool", t.name)
}

// runReported runs t, prints its log when the log mentions a warning or
// an error or the tool fails, and turns a non-zero exit into an error.
func (i *Invoker) runReported(ctx context.Context, t tool, stdout io.Writer) error {
	output, code, err := i.run(ctx, t)
	if err != nil {
		return err
	}
	if code != 0 || mentionsProblem(output) {
		printLog(stdout, output)
	}
	if code != 0 {
		return failure(t.name, code)
	}
	return nil
}

func (i *Invoker) gccCompile(ctx context.Context, args []string, stdout io.Writer) error {
	dir, src, obj, dep, log, installDir, name, rsp := args[0], args[1], args[2], args[3], args[4], args[5], args[6], args[7]

	var env toolEnv
	gccEnv(&env, installDir)
	return i.runReported(ctx, tool{
		dir:  dir,
		log:  log,
		env:  env,
		name: name,
		args: []string{"@" + rsp, src, "-o", obj, "-MD", "-MF", dep},
	}, stdout)
}

func (i *Invoker) gccTool(ctx context.Context, args []string, stdout io.Writer) error {
	dir, log, installDir, name, rsp := args[0], args[1], args[2], args[3], args[4]

	var env toolEnv
	gccEnv(&env, installDir)
	return i.runReported(ctx, tool{dir: dir, log: log, env: env, name: name, args: []string{"@" + rsp}}, stdout)
}

func msvcTool(name string) runFunc {
	return func(i *Invoker, ctx context.Context, args []string, stdout io.Writer) error {
		dir, log, installDir, rawArch, rsp := args[0], args[1], args[2], args[3], args[4]

		arch, err := msvcArch(rawArch)
		if err != nil {
			return err
		}
		var env toolEnv
		msvcEnv(&env, installDir, arch)
		return i.runReported(ctx, tool{dir: dir, log: log, env: env, name: name, args: []string{"@" + rsp}}, stdout)
	}
}

func (i *Invoker) msvcCompile(ctx context.Context, args []string, stdout io.Writer) error {
	dir, src, out, pdb, dep, log, installDir, rawArch, rsp := args[0], args[1], args[2], args[3], args[4], args[5], args[6], args[7], args[8]

	arch, err := msvcArch(rawArch)
	if err != nil {
		return err
	}
	var env toolEnv
	msvcEnv(&env, installDir, arch)

	obj := out
	var pch []string
	if strings.HasSuffix(out, ".pch") {
		obj = out + ".obj"
		pch = []string{"/Fp" + out}
	}
	clArgs := []string{"/showIncludes", src, "@" + rsp, "/Fo" + obj}
	if pdb != "" && pdb != "none" {
		clArgs = append(clArgs, "/Fd"+pdb)
	}
	clArgs = append(clArgs, pch...)

	output, code, err := i.run(ctx, tool{dir: dir, log: log, env: env, name: "cl", args: clArgs})
	if err != nil {
		return err
	}

	report := parseShowIncludes(output)
	if err := os.WriteFile(inDir(dir, dep), makeDepfile(out, report.includes), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write depfile"), "depfile", dep)
	}
	if code != 0 || report.problem {
		printLog(stdout, report.log)
	}
	if code != 0 {
		return failure("cl", code)
	}
	return nil
}

func (i *Invoker) nvccCompile(ctx context.Context, args []string, stdout io.Writer) error {
	dir, src, obj, dep, log := args[0], args[1], args[2], args[3], args[4]
	env, hostArgs, err := nvccEnv(args[5], args[6], args[7], args[8])
	if err != nil {
		return err
	}
	rsp := slashPath(args[9])

	tmp := dep + ".tmp"
	deps := tool{
		dir:  dir,
		log:  log,
		env:  env,
		name: "nvcc",
		args: append(append([]string{"-M"}, hostArgs...), slashPath(src), "-optf", rsp, "-o", slashPath(tmp)),
	}
	if err := i.runReported(ctx, deps, stdout); err != nil {
		return err
	}
	if err := retargetDepfile(inDir(dir, tmp), inDir(dir, dep), obj); err != nil {
		return err
	}

	return i.runReported(ctx, tool{
		dir:  dir,
		log:  log,
		env:  env,
		name: "nvcc",
		args: append(append([]string{"-c"}, hostArgs...), slashPath(src), "-optf", rsp, "-o", slashPath(obj)),
	}, stdout)
}

func (i *Invoker) nvccTool(ctx context.Context, args []string, stdout io.Writer) error {
	dir, log := args[0], args[1]
	env, hostArgs, err := nvccEnv(args[2], args[3], args[4], args[5])
	if err != nil {
		return err
	}
	return i.runReported(ctx, tool{
		dir:  dir,
		log:  log,
		env:  env,
		name: "nvcc",
		args: append(hostArgs, "-optf", slashPath(args[6])),
	}, stdout)
}

// copy writes src to dest. An unchanged destination keeps its timestamp so
// restat can prune dependents.
func (i *Invoker) copy(_ context.Context, args []string, _ io.Writer) error {
	src, dest := args[0], args[1]

	content, err := os.ReadFile(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read copy source"), "path", src)
	}
	if _, err := i.writer.WriteIfDifferent(dest, content); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write copy destination"), "path", dest)
	}
	return nil
}

// msvcArch normalizes an architecture name to the one the Visual C++
// directory layout uses.
func msvcArch(arch string) (string, error) {
	switch arch {
	case "x86":
		return "x86", nil
	case "amd64", "x64":
		return "amd64", nil
	}
	return "", zerr.With(zerr.Wrap(domain.ErrInvalidOption, "invalid msvc architecture"), "arch", arch)
}

// nvccEnv returns the environment and extra arguments nvcc needs for the
// given host compiler.
func nvccEnv(installDir, host, hostDir, addressModel string) (toolEnv, []string, error) {
	var env toolEnv
	env.prependPath(filepath.Join(installDir, "bin"))

	switch domain.ToolchainFamily(host) {
	case domain.FamilyGCC:
		gccEnv(&env, hostDir)
		return env, nil, nil
	case domain.FamilyMSVC:
		arch := "amd64"
		if addressModel == "-m32" {
			arch = "x86"
		}
		msvcEnv(&env, hostDir, arch)
		return env, []string{"--use-local-env"}, nil
	}
	err := zerr.Wrap(domain.ErrUnknownToolchainFamily, "unsupported nvcc host compiler")
	return toolEnv{}, nil, zerr.With(err, "host", host)
}

// ExitCode returns the exit code carried by a subprocess failure in err.
func ExitCode(err error) (int, bool) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		zErr, ok := e.(*zerr.Error)
		if !ok {
			continue
		}
		if code, ok := zErr.Metadata()["exit_code"].(int); ok && code > 0 {
			return code, true
		}
	}
	return 0, false
}

func failure(name string, code int) error {
	err := zerr.Wrap(domain.ErrSubprocessFailure, fmt.Sprintf("%s exited with status %d", name, code))
	err = zerr.With(err, "tool", name)
	return zerr.With(err, "exit_code", code)
}

func mentionsProblem(log []byte) bool {
	return bytes.Contains(log, []byte("warning")) || bytes.Contains(log, []byte("error"))
}

func printLog(w io.Writer, log []byte) {
	if len(log) == 0 {
		return
	}
	_, _ = w.Write(log)
	if log[len(log)-1] != '\n' {
		_, _ = io.WriteString(w, "\n")
	}
}

func inDir(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func slashPath(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

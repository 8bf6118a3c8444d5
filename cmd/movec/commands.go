package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/dfinance/move-tools/internal/compiler"
	"github.com/dfinance/move-tools/internal/config"
	cerrors "github.com/dfinance/move-tools/internal/errors"
	"github.com/dfinance/move-tools/internal/file"
	"github.com/dfinance/move-tools/internal/toolchain"
	"github.com/dfinance/move-tools/internal/toolchain/move"
)

// UnitExtension is the suffix of compiled units written by build.
const UnitExtension = ".mv"

var errCompilationFailed = errors.New("compilation failed")

// session is what both commands need after the flags are resolved.
type session struct {
	compiler *compiler.Compiler
	targets  []file.File
	deps     []file.File
	sources  map[string]string
}

func newSession(settings config.Config, args []string) (*session, error) {
	if len(args) == 0 {
		return nil, errors.New("no input files")
	}
	dialect, err := settings.BuildDialect()
	if err != nil {
		return nil, err
	}
	c, err := compiler.New(move.New(), dialect, settings.Sender,
		compiler.WithStdlibDir(settings.StdlibDir),
		compiler.WithParallelism(settings.Parallelism))
	if err != nil {
		return nil, err
	}

	targets, err := file.LoadAll(args)
	if err != nil {
		return nil, err
	}
	deps, err := file.LoadAll(settings.Modules)
	if err != nil {
		return nil, err
	}
	deps = withoutTargets(deps, targets)

	sources := make(map[string]string, len(targets)+len(deps))
	for _, f := range append(append([]file.File{}, targets...), deps...) {
		sources[f.Path] = f.Content
	}
	return &session{compiler: c, targets: targets, deps: deps, sources: sources}, nil
}

// withoutTargets drops dependencies that are also given as targets, so a
// module directory can be checked against itself.
func withoutTargets(deps, targets []file.File) []file.File {
	isTarget := make(map[string]bool, len(targets))
	for _, t := range targets {
		isTarget[filepath.Clean(t.Path)] = true
	}
	out := deps[:0:0]
	for _, d := range deps {
		if !isTarget[filepath.Clean(d.Path)] {
			out = append(out, d)
		}
	}
	return out
}

// fail prints compiler errors as snippets and replaces them with
// errCompilationFailed. Any other error is returned unchanged.
func (s *session) fail(w io.Writer, err error) error {
	var list cerrors.List
	if !errors.As(err, &list) {
		return err
	}
	s.report(w, list)
	return errCompilationFailed
}

func (s *session) report(w io.Writer, list cerrors.List) {
	if len(list) == 0 {
		return
	}
	fmt.Fprint(w, cerrors.NewErrorReporter(s.sources).FormatErrors(list))
}

func check(ctx *cli.Context) error {
	start := time.Now()
	settings, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	s, err := newSession(settings, ctx.Args().Slice())
	if err != nil {
		return err
	}

	outcome, err := compiler.Run[compiler.Outcome](s.compiler, s.targets, s.deps, compiler.Checker{})
	if err != nil {
		failed := s.fail(os.Stderr, err)
		color.Red("Check failed after %s", formatDuration(time.Since(start)))
		return failed
	}
	s.report(os.Stderr, outcome.Meta.Warnings)
	color.Green("Checked %d files in %s", len(s.targets), formatDuration(time.Since(start)))
	return nil
}

func build(ctx *cli.Context) error {
	start := time.Now()
	settings, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	s, err := newSession(settings, ctx.Args().Slice())
	if err != nil {
		return err
	}

	program, err := compiler.Run[*compiler.Program](s.compiler, s.targets, s.deps, compiler.Builder{})
	if err != nil {
		failed := s.fail(os.Stderr, err)
		color.Red("Compilation failed after %s", formatDuration(time.Since(start)))
		return failed
	}
	s.report(os.Stderr, program.Warnings)

	printUnits(os.Stdout, program.Units)
	if out := ctx.String(outFlag.Name); out != "" {
		if err := writeUnits(out, program.Units); err != nil {
			return err
		}
	}
	color.Green("Built %d units in %s", len(program.Units), formatDuration(time.Since(start)))
	return nil
}

func printUnits(w io.Writer, units []toolchain.CompiledUnit) {
	for _, unit := range units {
		kind := "module"
		if unit.IsScript() {
			kind = "script"
		}
		fmt.Fprintf(w, "%-6s %s (%s) %d bytes %s\n", kind, unitName(unit), unit.File, len(unit.Bytecode), hex.EncodeToString(unit.Digest[:8]))
	}
}

func unitName(unit toolchain.CompiledUnit) string {
	if unit.IsScript() {
		return unit.Name
	}
	return "0x" + hex.EncodeToString(unit.Address) + "::" + unit.Name
}

// writeUnits stores modules under modules/ and scripts under scripts/. Two
// scripts from the same file are told apart by their index.
func writeUnits(dir string, units []toolchain.CompiledUnit) error {
	for i, unit := range units {
		sub, name := "modules", hex.EncodeToString(unit.Address)+"_"+unit.Name
		if unit.IsScript() {
			base := filepath.Base(unit.File)
			sub, name = "scripts", fmt.Sprintf("%s_%d", base[:len(base)-len(filepath.Ext(base))], i)
		}
		path := filepath.Join(dir, sub, name+UnitExtension)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, unit.Bytecode, 0o644); err != nil {
			return fmt.Errorf("cannot write %s: %w", path, err)
		}
	}
	return nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}

// Package compiler drives normalized sources through the parse, check and
// translate stages and returns every diagnostic in the coordinates of the
// files as written.
package compiler

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/dfinance/move-tools/internal/address"
	"github.com/dfinance/move-tools/internal/dialects"
	"github.com/dfinance/move-tools/internal/file"
	"github.com/dfinance/move-tools/internal/normalize"
	"github.com/dfinance/move-tools/internal/sourcemap"
	"github.com/dfinance/move-tools/internal/toolchain"
)

var log = commonlog.GetLogger("movec.compiler")

type Options struct {
	StdlibDir   string
	Parallelism int
	Cache       *normalize.Cache
}

type Option func(*Options)

// WithStdlibDir marks a directory whose files skip address rewriting.
func WithStdlibDir(dir string) Option {
	return func(o *Options) {
		o.StdlibDir = dir
	}
}

func WithParallelism(n int) Option {
	return func(o *Options) {
		o.Parallelism = n
	}
}

func WithCache(cache *normalize.Cache) Option {
	return func(o *Options) {
		o.Cache = cache
	}
}

// Compiler holds what stays fixed for one invocation.
type Compiler struct {
	Toolchain toolchain.Toolchain
	Dialect   dialects.Dialect
	Sender    address.AccountAddress
	Options   Options
}

// New validates the sender against the dialect.
func New(tc toolchain.Toolchain, dialect dialects.Dialect, sender string, opts ...Option) (*Compiler, error) {
	addr, err := dialect.NormalizeAccountAddress(sender)
	if err != nil {
		return nil, fmt.Errorf("invalid sender %q for dialect %s: %w", sender, dialect.Name(), err)
	}
	c := &Compiler{Toolchain: tc, Dialect: dialect, Sender: addr}
	for _, opt := range opts {
		opt(&c.Options)
	}
	return c, nil
}

func (c *Compiler) project() *normalize.Project {
	return &normalize.Project{
		Normalizer: &normalize.Normalizer{
			Dialect:   c.Dialect,
			Sender:    c.Sender,
			StdlibDir: c.Options.StdlibDir,
		},
		Parallelism: c.Options.Parallelism,
		Cache:       c.Options.Cache,
	}
}

// Run normalizes and parses every file, then hands control to flow after
// each successful stage. Errors are returned as a cerrors.List already
// translated to original coordinates.
func Run[R any](c *Compiler, targets, deps []file.File, flow Flow[R]) (R, error) {
	var zero R
	id := uuid.NewString()
	log.Infof("[%s] %s: %d targets, %d deps, sender %s", id, c.Dialect.Name(), len(targets), len(deps), c.Sender.Literal)

	meta, program, failed := c.parse(id, targets, deps)
	if !failed.Empty() {
		log.Infof("[%s] stopped while %s with %d errors", id, Parsing, len(failed.Errors))
		return zero, failed.Translate()
	}

	parsed := flow.AfterParsing(ParserArtifact{Meta: meta, Program: program})
	if parsed.Stopped() {
		log.Debugf("[%s] policy stopped after %s", id, Parsing)
		return parsed.Result(), nil
	}
	artifact := parsed.Payload()

	log.Debugf("[%s] %s %d definitions", id, Checking, len(artifact.Program.Targets)+len(artifact.Program.Deps))
	checked, errs := c.Toolchain.Check(artifact.Program, meta.Sender)
	if len(errs) > 0 {
		log.Infof("[%s] stopped while %s with %d errors", id, Checking, len(errs))
		return zero, sourcemap.NewExecError(errs, meta.Offsets).Translate()
	}
	if len(checked.Warnings) > 0 {
		meta.Warnings = sourcemap.NewExecError(checked.Warnings, meta.Offsets).Translate()
	}

	checkedStep := flow.AfterCheck(meta, checked)
	if checkedStep.Stopped() {
		log.Debugf("[%s] policy stopped after %s", id, Checking)
		return checkedStep.Result(), nil
	}
	checkedArtifact := checkedStep.Payload()

	units, errs := c.Toolchain.Translate(checkedArtifact.Program)
	if len(errs) > 0 {
		log.Infof("[%s] stopped while %s with %d errors", id, Translating, len(errs))
		return zero, sourcemap.NewExecError(errs, meta.Offsets).Translate()
	}
	log.Infof("[%s] %s: %d units", id, Done, len(units))
	return flow.AfterTranslate(checkedArtifact.Meta, units), nil
}

// parse normalizes the project and parses every file that normalized.
// Normalization and syntax errors are both file-local, so they are
// gathered together and ordered by the file they were raised in.
func (c *Compiler) parse(id string, targets, deps []file.File) (ParsingMeta, toolchain.Program, *sourcemap.ExecError) {
	out, failed := c.project().Normalize(targets, deps)
	if failed == nil {
		failed = sourcemap.NewExecError(nil, out.Offsets)
	}

	meta := ParsingMeta{
		ID:       id,
		Sender:   c.Sender,
		Sources:  make(map[string]string, len(targets)+len(deps)),
		Offsets:  out.Offsets,
		Comments: out.Comments,
	}
	order := make(map[string]int, len(targets)+len(deps))
	for i, f := range append(append([]file.File{}, targets...), deps...) {
		meta.Sources[f.Path] = f.Content
		if _, ok := order[f.Path]; !ok {
			order[f.Path] = i
		}
	}

	var program toolchain.Program
	for i, n := range out.Files {
		defs, errs := c.Toolchain.ParseFile(n.File.Path, n.File.Content)
		if len(errs) > 0 {
			failed.Errors = append(failed.Errors, errs...)
			continue
		}
		if i < out.Targets {
			program.Targets = append(program.Targets, defs...)
		} else {
			program.Deps = append(program.Deps, defs...)
		}
	}
	log.Debugf("[%s] %s %d files: %d failed", id, Parsing, len(targets)+len(deps), len(failed.Errors))

	sort.SliceStable(failed.Errors, func(i, j int) bool {
		return order[failed.Errors[i].Primary().Location.File] < order[failed.Errors[j].Primary().Location.File]
	})
	return meta, program, failed
}

// Check reports whether target and deps parse and check. The returned
// error is nil or a cerrors.List in original coordinates; an invalid sender
// yields a plain error.
func Check(tc toolchain.Toolchain, dialect dialects.Dialect, target file.File, deps []file.File, sender string, opts ...Option) error {
	c, err := New(tc, dialect, sender, opts...)
	if err != nil {
		return err
	}
	_, err = Run[Outcome](c, []file.File{target}, deps, Checker{})
	return err
}

// CompileToProgram runs target and deps through translation and also
// returns the doc comments and offsets gathered on the way.
func CompileToProgram(tc toolchain.Toolchain, dialect dialects.Dialect, target file.File, deps []file.File, sender string, opts ...Option) (*Program, normalize.CommentMap, *sourcemap.ProjectOffsetMap, error) {
	program, err := Build(tc, dialect, []file.File{target}, deps, sender, opts...)
	if err != nil {
		return nil, nil, nil, err
	}
	return program, program.Meta.Comments, program.Meta.Offsets, nil
}

// Build compiles several targets against shared dependencies.
func Build(tc toolchain.Toolchain, dialect dialects.Dialect, targets, deps []file.File, sender string, opts ...Option) (*Program, error) {
	c, err := New(tc, dialect, sender, opts...)
	if err != nil {
		return nil, err
	}
	return Run[*Program](c, targets, deps, Builder{})
}

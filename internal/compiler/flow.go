package compiler

import (
	"github.com/dfinance/move-tools/internal/address"
	cerrors "github.com/dfinance/move-tools/internal/errors"
	"github.com/dfinance/move-tools/internal/normalize"
	"github.com/dfinance/move-tools/internal/sourcemap"
	"github.com/dfinance/move-tools/internal/toolchain"
)

// Stage is a state of a compile run.
type Stage int

const (
	Parsing Stage = iota
	Checking
	Translating
	Done
)

func (s Stage) String() string {
	switch s {
	case Parsing:
		return "parsing"
	case Checking:
		return "checking"
	case Translating:
		return "translating"
	case Done:
		return "done"
	}
	return "unknown"
}

// Step is what a hook returns: either continue with the next payload or
// stop the run with a result.
type Step[R, N any] struct {
	next   N
	result R
	stop   bool
}

func Next[R, N any](payload N) Step[R, N] {
	return Step[R, N]{next: payload}
}

func Stop[R, N any](result R) Step[R, N] {
	return Step[R, N]{result: result, stop: true}
}

func (s Step[R, N]) Stopped() bool {
	return s.stop
}

func (s Step[R, N]) Result() R {
	return s.result
}

func (s Step[R, N]) Payload() N {
	return s.next
}

// ParsingMeta is carried through every stage of a run.
type ParsingMeta struct {
	// ID correlates the log lines of one run.
	ID     string
	Sender address.AccountAddress
	// Sources holds the original text of every input file by path.
	Sources  map[string]string
	Offsets  *sourcemap.ProjectOffsetMap
	Comments normalize.CommentMap
	// Warnings from the checker, in original coordinates.
	Warnings cerrors.List
}

type ParserArtifact struct {
	Meta    ParsingMeta
	Program toolchain.Program
}

type CheckedArtifact struct {
	Meta    ParsingMeta
	Program *toolchain.CheckedProgram
}

// Flow decides after each successful stage whether the run goes on. A
// failing stage ends the run before its hook is called, so a policy can
// never hide errors.
type Flow[R any] interface {
	AfterParsing(artifact ParserArtifact) Step[R, ParserArtifact]
	AfterCheck(meta ParsingMeta, program *toolchain.CheckedProgram) Step[R, CheckedArtifact]
	AfterTranslate(meta ParsingMeta, units []toolchain.CompiledUnit) R
}

// Outcome is the result of the SyntaxOnly and Checker policies.
type Outcome struct {
	Stage   Stage
	Meta    ParsingMeta
	Parsed  toolchain.Program
	Checked *toolchain.CheckedProgram
}

// SyntaxOnly stops once every file parsed.
type SyntaxOnly struct{}

func (SyntaxOnly) AfterParsing(artifact ParserArtifact) Step[Outcome, ParserArtifact] {
	return Stop[Outcome, ParserArtifact](Outcome{Stage: Parsing, Meta: artifact.Meta, Parsed: artifact.Program})
}

func (SyntaxOnly) AfterCheck(meta ParsingMeta, program *toolchain.CheckedProgram) Step[Outcome, CheckedArtifact] {
	return Stop[Outcome, CheckedArtifact](Outcome{Stage: Checking, Meta: meta, Checked: program})
}

func (SyntaxOnly) AfterTranslate(meta ParsingMeta, _ []toolchain.CompiledUnit) Outcome {
	return Outcome{Stage: Done, Meta: meta}
}

// Checker stops once the program checked.
type Checker struct{}

func (Checker) AfterParsing(artifact ParserArtifact) Step[Outcome, ParserArtifact] {
	return Next[Outcome](artifact)
}

func (Checker) AfterCheck(meta ParsingMeta, program *toolchain.CheckedProgram) Step[Outcome, CheckedArtifact] {
	return Stop[Outcome, CheckedArtifact](Outcome{Stage: Checking, Meta: meta, Checked: program})
}

func (Checker) AfterTranslate(meta ParsingMeta, _ []toolchain.CompiledUnit) Outcome {
	return Outcome{Stage: Done, Meta: meta}
}

// Builder runs to translation and collects the compiled units.
type Builder struct{}

func (Builder) AfterParsing(artifact ParserArtifact) Step[*Program, ParserArtifact] {
	return Next[*Program](artifact)
}

func (Builder) AfterCheck(meta ParsingMeta, program *toolchain.CheckedProgram) Step[*Program, CheckedArtifact] {
	return Next[*Program](CheckedArtifact{Meta: meta, Program: program})
}

func (Builder) AfterTranslate(meta ParsingMeta, units []toolchain.CompiledUnit) *Program {
	return &Program{Units: units, Warnings: meta.Warnings, Meta: meta}
}

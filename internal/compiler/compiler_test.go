package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfinance/move-tools/internal/address"
	"github.com/dfinance/move-tools/internal/dialects"
	cerrors "github.com/dfinance/move-tools/internal/errors"
	"github.com/dfinance/move-tools/internal/file"
	"github.com/dfinance/move-tools/internal/normalize"
	"github.com/dfinance/move-tools/internal/toolchain"
	"github.com/dfinance/move-tools/internal/toolchain/move"
)

func dialect(t *testing.T, name dialects.Name) dialects.Dialect {
	t.Helper()
	d, err := dialects.New(name)
	require.NoError(t, err)
	return d
}

func errorList(t *testing.T, err error) cerrors.List {
	t.Helper()
	require.Error(t, err)
	list, ok := err.(cerrors.List)
	require.True(t, ok, "expected cerrors.List, got %T", err)
	return list
}

func TestCheckSuccess(t *testing.T) {
	target := file.New("main.move", "script {\n    use {{sender}}::Coins;\n    fun main() {}\n}\n")
	deps := []file.File{file.New("coins.move", "/// Coins\nmodule Coins { public fun mint() {} }")}

	err := Check(move.New(), dialect(t, dialects.Libra), target, deps, "0x1")
	assert.NoError(t, err)
}

func TestCheckInvalidSender(t *testing.T) {
	err := Check(move.New(), dialect(t, dialects.Libra), file.New("a.move", "script {}"), nil, "wallet1xyz")
	require.Error(t, err)
	_, isList := err.(cerrors.List)
	assert.False(t, isList)
	assert.Contains(t, err.Error(), "invalid sender")
}

func TestCheckUnboundInOriginalCoordinates(t *testing.T) {
	source := "script { let a = {{sender}}; use {{sender}}::Missing; fun main() {} }"
	err := Check(move.New(), dialect(t, dialects.Libra), file.New("main.move", source), nil, "0x1")

	list := errorList(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, cerrors.ErrorUnboundModule, list[0].Code)
	span := list[0].Primary().Location.Span
	assert.Equal(t, "Missing", source[span.Start:span.End])
}

func TestSyntaxErrorsIdenticalAcrossPolicies(t *testing.T) {
	source := "script {\r\n  use {{sender}}::Coins\r\n  fun main() {}\r\n}\r\n"
	target := file.New("main.move", source)

	c, err := New(move.New(), dialect(t, dialects.Libra), "0x1")
	require.NoError(t, err)

	_, syntaxErr := Run[Outcome](c, []file.File{target}, nil, SyntaxOnly{})
	_, buildErr := Run[*Program](c, []file.File{target}, nil, Builder{})

	syntaxList := errorList(t, syntaxErr)
	buildList := errorList(t, buildErr)
	assert.Equal(t, syntaxList, buildList)

	require.Len(t, syntaxList, 1)
	span := syntaxList[0].Primary().Location.Span
	assert.Equal(t, strings.Index(source, "fun"), span.Start)
	assert.Equal(t, "fun", source[span.Start:span.End])
}

func TestFileLocalErrorsAccumulate(t *testing.T) {
	target := file.New("main.move", "script { fun main() {} }")
	deps := []file.File{
		file.New("a.move", "module A { fun a() {} } /* open"),
		file.New("b.move", "module B { fun b() {} }"),
		file.New("c.move", "module C { fun c( }"),
	}

	err := Check(move.New(), dialect(t, dialects.Libra), target, deps, "0x1")
	list := errorList(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "a.move", list[0].Primary().Location.File)
	assert.Equal(t, cerrors.CommentStripError, list[0].Kind)
	assert.Equal(t, "c.move", list[1].Primary().Location.File)
	assert.Equal(t, cerrors.SyntaxError, list[1].Kind)
}

func TestDuplicateModuleRelatedAcrossFiles(t *testing.T) {
	wallet, err := address.EncodeBech32(bytes.Repeat([]byte{0x21}, address.DfinanceLength))
	require.NoError(t, err)

	depSource := "// coins\nmodule " + wallet + "::Coins { fun a() {} }"
	targetSource := "module {{sender}}::Coins { fun b() {} }"

	err = Check(move.New(), dialect(t, dialects.Dfinance),
		file.New("target.move", targetSource),
		[]file.File{file.New("dep.move", depSource)},
		wallet)

	list := errorList(t, err)
	require.Len(t, list, 1)
	dup := list[0]
	assert.Equal(t, cerrors.ErrorDuplicateModule, dup.Code)

	primary := dup.Primary()
	assert.Equal(t, "target.move", primary.Location.File)
	assert.Equal(t, "Coins", targetSource[primary.Location.Span.Start:primary.Location.Span.End])

	require.Len(t, dup.Related(), 1)
	related := dup.Related()[0]
	assert.Equal(t, "dep.move", related.Location.File)
	assert.False(t, related.Unmapped)
	assert.Equal(t, "Coins", depSource[related.Location.Span.Start:related.Location.Span.End])
}

type recordingFlow struct {
	calls []Stage
}

func (f *recordingFlow) AfterParsing(artifact ParserArtifact) Step[int, ParserArtifact] {
	f.calls = append(f.calls, Parsing)
	return Next[int](artifact)
}

func (f *recordingFlow) AfterCheck(meta ParsingMeta, program *toolchain.CheckedProgram) Step[int, CheckedArtifact] {
	f.calls = append(f.calls, Checking)
	return Next[int](CheckedArtifact{Meta: meta, Program: program})
}

func (f *recordingFlow) AfterTranslate(_ ParsingMeta, units []toolchain.CompiledUnit) int {
	f.calls = append(f.calls, Translating)
	return len(units)
}

func TestHooksOnlySeeSuccessfulStages(t *testing.T) {
	c, err := New(move.New(), dialect(t, dialects.Libra), "0x1")
	require.NoError(t, err)

	flow := &recordingFlow{}
	n, err := Run[int](c, []file.File{file.New("ok.move", "module M { fun f() {} }\nscript { fun main() {} }")}, nil, flow)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []Stage{Parsing, Checking, Translating}, flow.calls)

	flow = &recordingFlow{}
	_, err = Run[int](c, []file.File{file.New("bad.move", "module {")}, nil, flow)
	require.Error(t, err)
	assert.Empty(t, flow.calls)

	flow = &recordingFlow{}
	_, err = Run[int](c, []file.File{file.New("empty.move", "script { }")}, nil, flow)
	list := errorList(t, err)
	assert.Equal(t, cerrors.TranslationError, list[0].Kind)
	assert.Equal(t, []Stage{Parsing, Checking}, flow.calls)
}

func TestCheckerPolicyStopsBeforeTranslation(t *testing.T) {
	c, err := New(move.New(), dialect(t, dialects.Libra), "0x1")
	require.NoError(t, err)

	// An empty script only fails at translation
	outcome, err := Run[Outcome](c, []file.File{file.New("s.move", "script { }")}, nil, Checker{})
	require.NoError(t, err)
	assert.Equal(t, Checking, outcome.Stage)
	require.NotNil(t, outcome.Checked)
	assert.Len(t, outcome.Checked.Targets, 1)
}

func TestCompileToProgram(t *testing.T) {
	target := file.New("main.move", "script {\n    use {{sender}}::Coins;\n    fun main() {}\n}\n")
	deps := []file.File{file.New("coins.move", "/// Mints coins\nmodule Coins { public fun mint() {} }\nmodule Empty {}")}

	program, comments, offsets, err := CompileToProgram(move.New(), dialect(t, dialects.Libra), target, deps, "0x1",
		WithParallelism(2))
	require.NoError(t, err)

	script, modules, err := program.ScriptAndModules()
	require.NoError(t, err)
	assert.Equal(t, "main.move", script.File)
	assert.Empty(t, modules)
	assert.Empty(t, program.Modules())

	require.Len(t, program.Warnings, 1)
	span := program.Warnings[0].Primary().Location.Span
	assert.Equal(t, "Empty", deps[0].Content[span.Start:span.End])

	require.Contains(t, comments, "coins.move")
	assert.Equal(t, "Mints coins", comments["coins.move"][cerrors.Span{Start: 0, End: len("/// Mints coins")}])

	fmap, ok := offsets.Get("main.move")
	require.True(t, ok)
	assert.Equal(t, 1, fmap.Len())
}

func TestBuildMultipleTargets(t *testing.T) {
	cache, err := normalize.NewCache(16)
	require.NoError(t, err)

	targets := []file.File{
		file.New("coins.move", "module Coins { public fun mint() {} }"),
		file.New("main.move", "script { use 0x1::Coins; fun main() {} }"),
		file.New("other.move", "script { fun other() {} }"),
	}
	program, err := Build(move.New(), dialect(t, dialects.Libra), targets, nil, "0x1", WithCache(cache))
	require.NoError(t, err)
	require.Len(t, program.Units, 3)
	assert.Equal(t, "Coins", program.Units[0].Name)
	assert.Len(t, program.Modules(), 1)

	_, _, err = program.ScriptAndModules()
	assert.EqualError(t, err, "expected exactly one script unit, found 2")
	assert.Equal(t, 3, cache.Len())
}

func TestBuildUnderStdlibDir(t *testing.T) {
	wallet, err := address.EncodeBech32(bytes.Repeat([]byte{0x01}, address.DfinanceLength))
	require.NoError(t, err)

	// Stdlib files are parsed as written, so a bech32 literal there is a
	// syntax error instead of being rewritten.
	deps := []file.File{file.New("stdlib/lib.move", "module "+wallet+"::Lib { fun f() {} }")}
	target := file.New("main.move", "script { fun main() {} }")

	err = Check(move.New(), dialect(t, dialects.Dfinance), target, deps, "0x1", WithStdlibDir("stdlib"))
	list := errorList(t, err)
	assert.Equal(t, "stdlib/lib.move", list[0].Primary().Location.File)

	err = Check(move.New(), dialect(t, dialects.Dfinance), target, deps, "0x1")
	assert.NoError(t, err)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "parsing", Parsing.String())
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "unknown", Stage(42).String())
}

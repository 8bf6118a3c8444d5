package move

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfinance/move-tools/internal/address"
	cerrors "github.com/dfinance/move-tools/internal/errors"
	"github.com/dfinance/move-tools/internal/toolchain"
)

func sender(t *testing.T) address.AccountAddress {
	t.Helper()
	addr, err := address.ParseHex("0x1", address.LibraLength)
	require.NoError(t, err)
	return addr
}

func TestScanner(t *testing.T) {
	tokens, errs := NewScanner("s.move", `module 0x1::M { fun f(x: u64): vector<u8> { b"hi"; 10u8 } }`).ScanTokens()
	require.Empty(t, errs)

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{
		MODULE, ADDRESS, DOUBLE_COLON, IDENTIFIER, LEFT_BRACE,
		FUN, IDENTIFIER, LEFT_PAREN, IDENTIFIER, COLON, IDENTIFIER, RIGHT_PAREN,
		COLON, IDENTIFIER, PUNCT, IDENTIFIER, PUNCT,
		LEFT_BRACE, BYTE_STRING, SEMICOLON, NUMBER, RIGHT_BRACE,
		RIGHT_BRACE, EOF,
	}, types)
	assert.Equal(t, "0x1", tokens[1].Lexeme)
	assert.Equal(t, 7, tokens[1].Offset)
}

func TestScannerErrors(t *testing.T) {
	_, errs := NewScanner("s.move", `script { let s = b"open`).ScanTokens()
	require.Len(t, errs, 1)
	assert.Equal(t, cerrors.ErrorUnterminatedString, errs[0].Code)

	_, errs = NewScanner("s.move", `module 0x::M {}`).ScanTokens()
	require.Len(t, errs, 1)
	assert.Equal(t, cerrors.ErrorUnexpectedToken, errs[0].Code)
}

func TestParseFile(t *testing.T) {
	source := `
address 0x2 {
    module Coins {
        struct Coin { value: u64 }
        public fun mint(v: u64): Coin { Coin { value: v } }
        native fun burn(c: Coin);
    }
}
module Bank {
    use 0x2::Coins;
    use 0x2::Coins::{mint, burn};
    fun deposit<T: copyable>(x: T) acquires Coins { if (true) { } }
}
script {
    use 0x2::Coins as C;
    fun main() { C::mint(1); }
}
`
	defs, errs := ParseFile("f.move", source)
	require.Empty(t, errs)
	require.Len(t, defs, 3)

	coins := defs[0]
	assert.Equal(t, toolchain.ModuleDefinition, coins.Kind)
	assert.Equal(t, "Coins", coins.Name)
	assert.Equal(t, "0x2", coins.Address)
	require.Len(t, coins.Functions, 2)
	assert.True(t, coins.Functions[0].Public)
	assert.True(t, coins.Functions[1].Native)
	assert.Equal(t, strings.Index(source, "Coins {"), coins.Loc.Span.Start)

	bank := defs[1]
	assert.Equal(t, "", bank.Address)
	require.Len(t, bank.Uses, 2)
	assert.Equal(t, "Coins", bank.Uses[0].Module)
	require.Len(t, bank.Functions, 1)
	assert.Equal(t, "deposit", bank.Functions[0].Name)

	script := defs[2]
	assert.Equal(t, toolchain.ScriptDefinition, script.Kind)
	require.Len(t, script.Uses, 1)
	assert.Equal(t, "C", script.Uses[0].Alias)
	assert.Equal(t, strings.Index(source, "script"), script.Loc.Span.Start)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
		at       string
	}{
		{"missing module name", "module { }", "module name", "{"},
		{"bad top level", "fun f() {}", "'address', 'module' or 'script'", "fun"},
		{"use without address", "script { use Coins; fun main() {} }", "address literal", "Coins"},
		{"bech32 left as written", "module wallet1xyz::M {}", "'{'", "::"},
		{"unclosed script", "script { fun main() {} ", "'}'", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ParseFile("e.move", tt.source)
			require.NotEmpty(t, errs)
			err := errs[0]
			assert.Equal(t, cerrors.SyntaxError, err.Kind)
			assert.Contains(t, err.Primary().Message, "expected "+tt.expected)
			if tt.at != "" {
				assert.Equal(t, strings.Index(tt.source, tt.at), err.Primary().Location.Span.Start)
			} else {
				assert.Equal(t, len(tt.source), err.Primary().Location.Span.Start)
			}
		})
	}
}

func TestParseRecoversAcrossDefinitions(t *testing.T) {
	source := "module { }\nmodule Good { fun f() {} }\nscript ( }"
	_, errs := ParseFile("r.move", source)
	require.Len(t, errs, 2)
	assert.Equal(t, strings.Index(source, "{"), errs[0].Primary().Location.Span.Start)
	assert.Equal(t, strings.Index(source, "("), errs[1].Primary().Location.Span.Start)
}

func parseAll(t *testing.T, files map[string]string, order []string) []toolchain.Definition {
	t.Helper()
	var defs []toolchain.Definition
	for _, path := range order {
		d, errs := ParseFile(path, files[path])
		require.Empty(t, errs, path)
		defs = append(defs, d...)
	}
	return defs
}

func TestCheckDuplicateModuleAcrossFiles(t *testing.T) {
	files := map[string]string{
		"dep.move":    "module Coins { fun a() {} }",
		"target.move": "module 0x1::Coins { fun b() {} }",
	}
	deps := parseAll(t, files, []string{"dep.move"})
	targets := parseAll(t, files, []string{"target.move"})

	_, errs := Check(toolchain.Program{Targets: targets, Deps: deps}, sender(t))
	require.Len(t, errs, 1)
	err := errs[0]
	assert.Equal(t, cerrors.ErrorDuplicateModule, err.Code)
	assert.Equal(t, "target.move", err.Primary().Location.File)
	require.Len(t, err.Related(), 1)
	assert.Equal(t, "dep.move", err.Related()[0].Location.File)
	assert.Equal(t, strings.Index(files["dep.move"], "Coins"), err.Related()[0].Location.Span.Start)
}

func TestCheckUnboundAndDuplicateFunction(t *testing.T) {
	files := map[string]string{
		"lib.move":    "module Account { fun x() {} }",
		"script.move": "script { use 0x1::Acount; fun main() {} fun main() {} }",
	}
	deps := parseAll(t, files, []string{"lib.move"})
	targets := parseAll(t, files, []string{"script.move"})

	_, errs := Check(toolchain.Program{Targets: targets, Deps: deps}, sender(t))
	require.Len(t, errs, 2)
	assert.Equal(t, cerrors.ErrorDuplicateFunction, errs[0].Code)
	assert.Equal(t, cerrors.ErrorUnboundModule, errs[1].Code)
	assert.Contains(t, errs[1].Suggestions[0].Message, "did you mean 'Account'")
}

func TestCheckResolvesSenderAddress(t *testing.T) {
	files := map[string]string{
		"lib.move":    "module Coins { public fun mint() {} }\nmodule Empty {}",
		"script.move": "script { use 0x0001::Coins; fun main() {} }",
	}
	checked, errs := Check(toolchain.Program{
		Targets: parseAll(t, files, []string{"script.move"}),
		Deps:    parseAll(t, files, []string{"lib.move"}),
	}, sender(t))
	require.Empty(t, errs)
	require.Len(t, checked.Deps, 2)
	assert.Equal(t, "0x00000000000000000000000000000001::Coins", checked.Deps[0].QualifiedName())
	require.Len(t, checked.Warnings, 1)
	assert.Equal(t, cerrors.WarningEmptyModule, checked.Warnings[0].Code)
}

func TestTranslate(t *testing.T) {
	files := map[string]string{
		"m.move": "module Coins { public fun mint() {} }\nscript { use 0x1::Coins; fun main() {} }",
	}
	checked, errs := Check(toolchain.Program{Targets: parseAll(t, files, []string{"m.move"})}, sender(t))
	require.Empty(t, errs)

	units, errs := Translate(checked)
	require.Empty(t, errs)
	require.Len(t, units, 2)
	assert.False(t, units[0].IsScript())
	assert.True(t, units[1].IsScript())
	assert.Equal(t, unitMagic, units[0].Bytecode[:4])
	assert.NotEqual(t, units[0].Digest, units[1].Digest)

	again, _ := Translate(checked)
	assert.Equal(t, units[0].Digest, again[0].Digest)
}

func TestTranslateEmptyScript(t *testing.T) {
	source := "script { use 0x1::Coins; }\nmodule Coins { fun f() {} }"
	checked, errs := Check(toolchain.Program{Targets: parseAll(t, map[string]string{"s.move": source}, []string{"s.move"})}, sender(t))
	require.Empty(t, errs)

	_, errs = Translate(checked)
	require.Len(t, errs, 1)
	assert.Equal(t, cerrors.TranslationError, errs[0].Kind)
	assert.Equal(t, cerrors.ErrorEmptyScript, errs[0].Code)
	assert.Equal(t, 0, errs[0].Primary().Location.Span.Start)
}

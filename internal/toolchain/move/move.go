// Package move is a structural Move toolchain: it parses module and script
// declarations, checks module references across files, and emits a compact
// unit encoding. It does not type-check function bodies.
package move

import (
	"github.com/dfinance/move-tools/internal/address"
	cerrors "github.com/dfinance/move-tools/internal/errors"
	"github.com/dfinance/move-tools/internal/toolchain"
)

// Toolchain implements toolchain.Toolchain.
type Toolchain struct{}

func New() *Toolchain {
	return &Toolchain{}
}

func (*Toolchain) ParseFile(path, text string) ([]toolchain.Definition, cerrors.List) {
	return ParseFile(path, text)
}

func (*Toolchain) Check(program toolchain.Program, sender address.AccountAddress) (*toolchain.CheckedProgram, cerrors.List) {
	return Check(program, sender)
}

func (*Toolchain) Translate(program *toolchain.CheckedProgram) ([]toolchain.CompiledUnit, cerrors.List) {
	return Translate(program)
}

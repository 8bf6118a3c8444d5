// Package toolchain declares the parse, check and translate stages the
// compiler drives. Implementations work on normalized text and report spans
// in normalized coordinates.
package toolchain

import (
	"encoding/hex"

	"github.com/dfinance/move-tools/internal/address"
	cerrors "github.com/dfinance/move-tools/internal/errors"
)

type DefinitionKind int

const (
	ModuleDefinition DefinitionKind = iota
	ScriptDefinition
)

func (k DefinitionKind) String() string {
	if k == ScriptDefinition {
		return "script"
	}
	return "module"
}

// Use is a `use ADDR::Module` declaration.
type Use struct {
	Address string
	Module  string
	Alias   string
	Loc     cerrors.Location
}

type Function struct {
	Name   string
	Public bool
	Native bool
	Loc    cerrors.Location
}

// Definition is one top-level module or script of a file. Address is the
// literal written in the source, empty when the module takes the sender's.
type Definition struct {
	Kind      DefinitionKind
	Name      string
	Address   string
	Loc       cerrors.Location
	Uses      []Use
	Functions []Function
}

// Program is everything the parser produced for one invocation. Only
// target definitions are translated; dependencies are checked against.
type Program struct {
	Targets []Definition
	Deps    []Definition
}

// CheckedUnit is a definition with its address resolved.
type CheckedUnit struct {
	Definition
	AddressBytes []byte
}

// QualifiedName renders the unit as `0x..::Name`.
func (u CheckedUnit) QualifiedName() string {
	if u.Kind == ScriptDefinition {
		return "script"
	}
	return "0x" + hex.EncodeToString(u.AddressBytes) + "::" + u.Name
}

type CheckedProgram struct {
	Sender   address.AccountAddress
	Targets  []CheckedUnit
	Deps     []CheckedUnit
	Warnings cerrors.List
}

// CompiledUnit is the bytecode of one script or module.
type CompiledUnit struct {
	Kind     DefinitionKind
	Name     string
	Address  []byte
	File     string
	Bytecode []byte
	Digest   [32]byte
}

func (u CompiledUnit) IsScript() bool {
	return u.Kind == ScriptDefinition
}

type Parser interface {
	ParseFile(path, text string) ([]Definition, cerrors.List)
}

type Checker interface {
	Check(program Program, sender address.AccountAddress) (*CheckedProgram, cerrors.List)
}

type Translator interface {
	Translate(program *CheckedProgram) ([]CompiledUnit, cerrors.List)
}

// Toolchain bundles the three stages.
type Toolchain interface {
	Parser
	Checker
	Translator
}

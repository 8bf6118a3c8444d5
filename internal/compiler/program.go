package compiler

import (
	"fmt"

	cerrors "github.com/dfinance/move-tools/internal/errors"
	"github.com/dfinance/move-tools/internal/toolchain"
)

// Program is the output of a successful build.
type Program struct {
	Units    []toolchain.CompiledUnit
	Warnings cerrors.List
	Meta     ParsingMeta
}

// ScriptAndModules splits the units into the single script and the
// modules. Any other number of scripts is an error.
func (p *Program) ScriptAndModules() (toolchain.CompiledUnit, []toolchain.CompiledUnit, error) {
	var (
		scripts []toolchain.CompiledUnit
		modules []toolchain.CompiledUnit
	)
	for _, unit := range p.Units {
		if unit.IsScript() {
			scripts = append(scripts, unit)
		} else {
			modules = append(modules, unit)
		}
	}
	if len(scripts) != 1 {
		return toolchain.CompiledUnit{}, nil, fmt.Errorf("expected exactly one script unit, found %d", len(scripts))
	}
	return scripts[0], modules, nil
}

// Modules returns the module units in build order.
func (p *Program) Modules() []toolchain.CompiledUnit {
	var modules []toolchain.CompiledUnit
	for _, unit := range p.Units {
		if !unit.IsScript() {
			modules = append(modules, unit)
		}
	}
	return modules
}

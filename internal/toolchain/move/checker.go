package move

import (
	"encoding/hex"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/dfinance/move-tools/internal/address"
	cerrors "github.com/dfinance/move-tools/internal/errors"
	"github.com/dfinance/move-tools/internal/toolchain"
)

type moduleKey struct {
	address string
	name    string
}

// checker resolves module addresses and cross-file references.
type checker struct {
	sender  address.AccountAddress
	width   int
	modules map[moduleKey]toolchain.CheckedUnit
	errors  cerrors.List
	warns   cerrors.List
}

// Check resolves every definition against the others. Dependencies are
// registered before targets so duplicates are reported in target files.
func Check(program toolchain.Program, sender address.AccountAddress) (*toolchain.CheckedProgram, cerrors.List) {
	c := &checker{
		sender:  sender,
		width:   len(sender.Bytes),
		modules: make(map[moduleKey]toolchain.CheckedUnit),
	}
	if c.width == 0 {
		c.width = address.LibraLength
	}

	deps := c.declareAll(program.Deps)
	targets := c.declareAll(program.Targets)

	for _, unit := range deps {
		c.checkUnit(unit)
	}
	for _, unit := range targets {
		c.checkUnit(unit)
	}

	if len(c.errors) > 0 {
		return nil, c.errors
	}
	return &toolchain.CheckedProgram{
		Sender:   sender,
		Targets:  targets,
		Deps:     deps,
		Warnings: c.warns,
	}, nil
}

func (c *checker) declareAll(defs []toolchain.Definition) []toolchain.CheckedUnit {
	units := make([]toolchain.CheckedUnit, 0, len(defs))
	for _, def := range defs {
		unit, ok := c.declare(def)
		if ok {
			units = append(units, unit)
		}
	}
	return units
}

func (c *checker) declare(def toolchain.Definition) (toolchain.CheckedUnit, bool) {
	unit := toolchain.CheckedUnit{Definition: def, AddressBytes: c.sender.Bytes}
	if def.Kind == toolchain.ScriptDefinition {
		return unit, true
	}

	if def.Address != "" {
		addr, err := address.ParseHex(def.Address, c.width)
		if err != nil {
			c.errors = append(c.errors, cerrors.NewError(cerrors.SemanticError, cerrors.ErrorMalformedAddress,
				def.Loc, err.Error()).Build())
			return unit, false
		}
		unit.AddressBytes = addr.Bytes
	}

	key := moduleKey{address: hex.EncodeToString(unit.AddressBytes), name: def.Name}
	if first, exists := c.modules[key]; exists {
		c.errors = append(c.errors, cerrors.DuplicateModule(def.Name, def.Loc, first.Loc))
		return unit, false
	}
	c.modules[key] = unit
	return unit, true
}

func (c *checker) checkUnit(unit toolchain.CheckedUnit) {
	seen := make(map[string]toolchain.Function, len(unit.Functions))
	for _, fn := range unit.Functions {
		if first, exists := seen[fn.Name]; exists {
			c.errors = append(c.errors, cerrors.DuplicateFunction(fn.Name, fn.Loc, first.Loc))
			continue
		}
		seen[fn.Name] = fn
	}

	for _, use := range unit.Uses {
		addr, err := address.ParseHex(use.Address, c.width)
		if err != nil {
			c.errors = append(c.errors, cerrors.NewError(cerrors.SemanticError, cerrors.ErrorMalformedAddress,
				use.Loc, err.Error()).Build())
			continue
		}
		key := moduleKey{address: hex.EncodeToString(addr.Bytes), name: use.Module}
		if _, ok := c.modules[key]; !ok {
			c.errors = append(c.errors, cerrors.UnboundModule(use.Module, use.Loc, c.moduleNames()))
		}
	}

	if unit.Kind == toolchain.ModuleDefinition && len(unit.Functions) == 0 {
		c.warns = append(c.warns, cerrors.EmptyModule(unit.Name, unit.Loc))
	}
}

// moduleNames lists the declared module names, each once, sorted.
func (c *checker) moduleNames() []string {
	names := mapset.NewThreadUnsafeSet[string]()
	for key := range c.modules {
		names.Add(key.name)
	}
	out := names.ToSlice()
	sort.Strings(out)
	return out
}

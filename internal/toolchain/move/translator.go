package move

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	cerrors "github.com/dfinance/move-tools/internal/errors"
	"github.com/dfinance/move-tools/internal/toolchain"
)

var unitMagic = []byte{0xa1, 0x1c, 0xeb, 0x0b}

// Translate serializes every target unit. Dependencies are not emitted.
func Translate(program *toolchain.CheckedProgram) ([]toolchain.CompiledUnit, cerrors.List) {
	var (
		units []toolchain.CompiledUnit
		errs  cerrors.List
	)
	for _, unit := range program.Targets {
		if unit.Kind == toolchain.ScriptDefinition && len(unit.Functions) == 0 {
			errs = append(errs, cerrors.EmptyScript(unit.Loc))
			continue
		}
		code := encodeUnit(unit)
		units = append(units, toolchain.CompiledUnit{
			Kind:     unit.Kind,
			Name:     unit.Name,
			Address:  unit.AddressBytes,
			File:     unit.Loc.File,
			Bytecode: code,
			Digest:   blake2b.Sum256(code),
		})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return units, nil
}

// encodeUnit writes the unit header followed by its function table. Each
// string is length-prefixed with a uvarint.
func encodeUnit(unit toolchain.CheckedUnit) []byte {
	var buf bytes.Buffer
	buf.Write(unitMagic)
	buf.WriteByte(byte(unit.Kind))
	writeBytes(&buf, unit.AddressBytes)
	writeBytes(&buf, []byte(unit.Name))

	writeUvarint(&buf, uint64(len(unit.Uses)))
	for _, use := range unit.Uses {
		writeBytes(&buf, []byte(use.Address))
		writeBytes(&buf, []byte(use.Module))
	}

	writeUvarint(&buf, uint64(len(unit.Functions)))
	for _, fn := range unit.Functions {
		var flags byte
		if fn.Public {
			flags |= 1
		}
		if fn.Native {
			flags |= 2
		}
		buf.WriteByte(flags)
		writeBytes(&buf, []byte(fn.Name))
	}
	return buf.Bytes()
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

// Package address converts the account-address notations accepted by the
// supported dialects into the canonical `0x` hex form.
package address

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// LibraLength is the size in bytes of a canonical libra address.
	LibraLength = 16
	// DfinanceLength is the size in bytes of a dfinance wallet address.
	DfinanceLength = 20
)

// AccountAddress is a validated address. Literal is the form spliced into
// source text, Bytes the left-padded raw value.
type AccountAddress struct {
	Original string
	Literal  string
	Bytes    []byte
}

func (a AccountAddress) String() string {
	return a.Literal
}

// Hex renders the padded bytes as `0x` followed by lower-case hex digits.
func (a AccountAddress) Hex() string {
	return "0x" + hex.EncodeToString(a.Bytes)
}

// Equal compares the raw bytes, so `0x1` and `0x0001` are equal.
func (a AccountAddress) Equal(other AccountAddress) bool {
	return string(a.Bytes) == string(other.Bytes)
}

// ParseHex accepts `0x` followed by 1 to 2*length hex digits and pads the
// value on the left to length bytes. The literal is kept as written.
func ParseHex(text string, length int) (AccountAddress, error) {
	if !strings.HasPrefix(text, "0x") {
		return AccountAddress{}, fmt.Errorf("address %q must start with 0x", text)
	}
	digits := text[2:]
	if digits == "" {
		return AccountAddress{}, fmt.Errorf("address %q has no hex digits", text)
	}
	if len(digits) > length*2 {
		return AccountAddress{}, fmt.Errorf("address %q is longer than %d bytes", text, length)
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return AccountAddress{}, fmt.Errorf("address %q: %w", text, err)
	}
	return AccountAddress{
		Original: text,
		Literal:  text,
		Bytes:    leftPad(raw, length),
	}, nil
}

// FromBytes builds an address whose literal is the full-width hex form.
func FromBytes(original string, raw []byte, length int, upper bool) AccountAddress {
	padded := leftPad(raw, length)
	digits := hex.EncodeToString(padded)
	if upper {
		digits = strings.ToUpper(digits)
	}
	return AccountAddress{Original: original, Literal: "0x" + digits, Bytes: padded}
}

func leftPad(raw []byte, length int) []byte {
	if len(raw) >= length {
		return raw
	}
	out := make([]byte, length)
	copy(out[length-len(raw):], raw)
	return out
}

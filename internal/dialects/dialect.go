// Package dialects describes the Move address conventions a source tree can
// be written in and rewrites their address literals into the canonical
// hex form understood by the toolchain.
package dialects

import (
	"fmt"

	"github.com/dfinance/move-tools/internal/address"
	"github.com/dfinance/move-tools/internal/sourcemap"
)

// Name selects a dialect. The set is closed.
type Name string

const (
	Libra    Name = "libra"
	Dfinance Name = "dfinance"
	Polkadot Name = "polkadot"
)

// Names lists every supported dialect in a stable order.
var Names = []Name{Libra, Dfinance, Polkadot}

// ParseName resolves a dialect name as written in config files and flags.
func ParseName(s string) (Name, error) {
	switch Name(s) {
	case Libra, Dfinance, Polkadot:
		return Name(s), nil
	}
	return "", fmt.Errorf("invalid dialect %q", s)
}

// Dialect is chosen once per invocation and never changes afterwards.
type Dialect interface {
	Name() string

	// NormalizeAccountAddress validates a user-supplied address, such as the
	// sender, and returns its canonical form.
	NormalizeAccountAddress(text string) (address.AccountAddress, error)

	CostTable() CostTable

	// Policy is the malformed address policy ReplaceAddresses applies.
	Policy() MalformedPolicy

	// ReplaceAddresses rewrites every dialect-specific address literal into
	// canonical hex and appends one edit per rewritten literal to fmap.
	// The error is non-nil only under the Report policy and is then a
	// MalformedAddresses value.
	ReplaceAddresses(text string, fmap *sourcemap.FileOffsetMap) (string, error)
}

// MalformedPolicy decides what happens to a literal that looks like a
// dialect address but fails validation.
type MalformedPolicy string

const (
	// Ignore leaves the literal untouched; the parser sees it as written.
	Ignore MalformedPolicy = "ignore"
	// Report turns the literal into a format error.
	Report MalformedPolicy = "report"
)

func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch MalformedPolicy(s) {
	case "":
		return Ignore, nil
	case Ignore, Report:
		return MalformedPolicy(s), nil
	}
	return "", fmt.Errorf("invalid malformed address policy %q", s)
}

type options struct {
	malformed MalformedPolicy
}

type Option func(*options)

// WithMalformedPolicy sets the policy for address-looking literals that fail
// validation. Only the dfinance dialect distinguishes them.
func WithMalformedPolicy(policy MalformedPolicy) Option {
	return func(o *options) {
		o.malformed = policy
	}
}

// New builds the dialect for name.
func New(name Name, opts ...Option) (Dialect, error) {
	o := options{malformed: Ignore}
	for _, opt := range opts {
		opt(&o)
	}
	switch name {
	case Libra:
		return libraDialect{}, nil
	case Dfinance:
		return dfinanceDialect{policy: o.malformed}, nil
	case Polkadot:
		return polkadotDialect{}, nil
	}
	return nil, fmt.Errorf("invalid dialect %q", string(name))
}

// Get parses name and builds the dialect in one step.
func Get(name string, opts ...Option) (Dialect, error) {
	n, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	return New(n, opts...)
}

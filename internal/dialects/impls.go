package dialects

import (
	"strings"

	"github.com/dfinance/move-tools/internal/address"
	"github.com/dfinance/move-tools/internal/sourcemap"
)

// libra addresses are already canonical hex.
type libraDialect struct{}

func (libraDialect) Name() string {
	return string(Libra)
}

func (libraDialect) NormalizeAccountAddress(text string) (address.AccountAddress, error) {
	return address.ParseHex(text, address.LibraLength)
}

func (libraDialect) CostTable() CostTable {
	return ZeroCostTable(1_000_000)
}

func (libraDialect) Policy() MalformedPolicy {
	return Ignore
}

func (libraDialect) ReplaceAddresses(text string, _ *sourcemap.FileOffsetMap) (string, error) {
	return text, nil
}

// dfinance writes addresses as bech32 `wallet1...` strings.
type dfinanceDialect struct {
	policy MalformedPolicy
}

func (dfinanceDialect) Name() string {
	return string(Dfinance)
}

func (dfinanceDialect) NormalizeAccountAddress(text string) (address.AccountAddress, error) {
	if address.IsBech32Candidate(text) {
		return address.DecodeBech32(text)
	}
	return address.ParseHex(text, address.DfinanceLength)
}

func (dfinanceDialect) CostTable() CostTable {
	return ZeroCostTable(1_000_000)
}

func (d dfinanceDialect) Policy() MalformedPolicy {
	return d.policy
}

func (d dfinanceDialect) ReplaceAddresses(text string, fmap *sourcemap.FileOffsetMap) (string, error) {
	return rewrite(text, fmap, convertBech32, d.policy)
}

func convertBech32(w string) (string, bool, error) {
	if !address.IsBech32Candidate(w) {
		return "", false, nil
	}
	addr, err := address.DecodeBech32(w)
	if err != nil {
		return "", true, err
	}
	return addr.Literal, true, nil
}

// polkadot writes addresses as ss58 strings and maps them to the first
// 16 bytes of the public key.
type polkadotDialect struct{}

func (polkadotDialect) Name() string {
	return string(Polkadot)
}

func (polkadotDialect) NormalizeAccountAddress(text string) (address.AccountAddress, error) {
	if strings.HasPrefix(text, "0x") {
		return address.ParseHex(text, address.LibraLength)
	}
	return address.DecodeSS58(text)
}

func (polkadotDialect) CostTable() CostTable {
	return ZeroCostTable(1_000_000)
}

func (polkadotDialect) Policy() MalformedPolicy {
	return Ignore
}

// Words that fail to decode are left alone under every policy.
func (polkadotDialect) ReplaceAddresses(text string, fmap *sourcemap.FileOffsetMap) (string, error) {
	return rewrite(text, fmap, convertSS58, Ignore)
}

func convertSS58(w string) (string, bool, error) {
	if len(w) < address.SS58MinLength || strings.HasPrefix(w, "0x") || !address.IsBase58Word(w) {
		return "", false, nil
	}
	addr, err := address.DecodeSS58(w)
	if err != nil {
		return "", true, err
	}
	return addr.Literal, true, nil
}

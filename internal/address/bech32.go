package address

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// WalletHRP is the human-readable part of dfinance wallet addresses.
const WalletHRP = "wallet"

// IsBech32Candidate reports whether word looks like a wallet address and
// should be validated.
func IsBech32Candidate(word string) bool {
	return strings.HasPrefix(word, WalletHRP+"1") && len(word) > len(WalletHRP)+1
}

// DecodeBech32 validates a bech32 wallet address and returns it in the
// canonical 0x form, 20 bytes wide.
func DecodeBech32(text string) (AccountAddress, error) {
	hrp, data, err := bech32.Decode(text)
	if err != nil {
		return AccountAddress{}, err
	}
	if hrp != WalletHRP {
		return AccountAddress{}, fmt.Errorf("unexpected prefix %q, want %q", hrp, WalletHRP)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return AccountAddress{}, err
	}
	if len(payload) != DfinanceLength {
		return AccountAddress{}, fmt.Errorf("payload is %d bytes, want %d", len(payload), DfinanceLength)
	}
	return FromBytes(text, payload, DfinanceLength, false), nil
}

// EncodeBech32 renders a 20-byte payload as a wallet address.
func EncodeBech32(payload []byte) (string, error) {
	if len(payload) != DfinanceLength {
		return "", fmt.Errorf("payload is %d bytes, want %d", len(payload), DfinanceLength)
	}
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(WalletHRP, data)
}

package address

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

const (
	ss58Prefix   = "SS58PRE"
	pubKeyLength = 32
	// SS58MinLength is the shortest word considered as an ss58 candidate.
	SS58MinLength = 40
)

var (
	ErrInvalidBase58 = errors.New("wrong base58")
	ErrSS58Checksum  = errors.New("wrong address checksum")
)

func ss58Checksum(data []byte) []byte {
	hash := blake2b.Sum512(append([]byte(ss58Prefix), data...))
	return hash[:2]
}

// DecodeSS58 validates an ss58 address (1 prefix byte, 32 public key bytes,
// 2 checksum bytes) and maps it to the first 16 bytes of the public key.
func DecodeSS58(text string) (AccountAddress, error) {
	raw := base58.Decode(text)
	if len(raw) == 0 {
		return AccountAddress{}, ErrInvalidBase58
	}
	if len(raw) != pubKeyLength+3 {
		return AccountAddress{}, fmt.Errorf("address length must be equal %d bytes, got %d", pubKeyLength+3, len(raw))
	}
	sum := ss58Checksum(raw[:pubKeyLength+1])
	if raw[pubKeyLength+1] != sum[0] || raw[pubKeyLength+2] != sum[1] {
		return AccountAddress{}, ErrSS58Checksum
	}
	return FromBytes(text, raw[1:LibraLength+1], LibraLength, true), nil
}

// EncodeSS58 builds the ss58 text for a network prefix and public key.
func EncodeSS58(prefix byte, pubKey []byte) (string, error) {
	if len(pubKey) != pubKeyLength {
		return "", fmt.Errorf("public key is %d bytes, want %d", len(pubKey), pubKeyLength)
	}
	data := append([]byte{prefix}, pubKey...)
	data = append(data, ss58Checksum(data)...)
	return base58.Encode(data), nil
}

// IsBase58Word reports whether every byte of word is in the base58 alphabet.
func IsBase58Word(word string) bool {
	for i := 0; i < len(word); i++ {
		c := word[i]
		switch {
		case c >= '1' && c <= '9':
		case c >= 'A' && c <= 'H', c >= 'J' && c <= 'N', c >= 'P' && c <= 'Z':
		case c >= 'a' && c <= 'k', c >= 'm' && c <= 'z':
		default:
			return false
		}
	}
	return true
}

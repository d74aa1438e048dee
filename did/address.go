package did

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/anchorid/go-credential-sdk/credential/common/crypto"
)

// DeriveSecpAddress derives the canonical 20-byte account address from a
// secp256k1 public key: keccak-256 of the uncompressed point without its
// 0x04 tag, truncated to the low 20 bytes, checksummed for display.
func DeriveSecpAddress(pub []byte) (string, error) {
	uncompressed, err := crypto.DecompressSecpPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to derive address: %w", err)
	}

	hash := ethcrypto.Keccak256(uncompressed[1:])

	return common.BytesToAddress(hash[12:]).Hex(), nil
}

// DeriveBlsAddress derives the canonical 20-byte account address from a
// BLS12-381 G2 public key in either wire encoding: the key is normalized to
// the compressed 96-byte form, then hashed like a secp key. Both encodings of
// one logical point derive the same address.
func DeriveBlsAddress(pub []byte) (string, error) {
	normalized, err := crypto.NormalizeBlsPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to derive address: %w", err)
	}

	hash := ethcrypto.Keccak256(normalized)

	return common.BytesToAddress(hash[12:]).Hex(), nil
}

// EqualAddresses compares two display addresses on their raw bytes, ignoring
// checksum casing.
func EqualAddresses(a, b string) bool {
	return strings.EqualFold(a, b)
}

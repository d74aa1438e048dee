package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	bls12381 "github.com/kilic/bls12-381"
)

// ErrInvalidKeyLength is returned when a key's byte length does not match any
// known encoding for its claimed family.
var ErrInvalidKeyLength = errors.New("invalid key length")

// Known public key encodings, in bytes.
const (
	SecpCompressedKeyLength   = 33
	SecpUncompressedKeyLength = 65
	BlsCompressedKeyLength    = 96
	BlsUncompressedKeyLength  = 192

	PrivateKeyLength = 32
)

// KeyToBytes converts a hex string, with or without a 0x prefix, to bytes.
func KeyToBytes(key string) ([]byte, error) {
	key = strings.TrimPrefix(key, "0x")

	b, err := hex.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("key is not in hex format: %w", err)
	}

	return b, nil
}

// NormalizeBlsPublicKey converts either wire encoding of a BLS12-381 G2
// public key to the canonical compressed form. Both encodings of the same
// logical point normalize to identical bytes.
func NormalizeBlsPublicKey(pub []byte) ([]byte, error) {
	g2 := bls12381.NewG2()

	switch len(pub) {
	case BlsCompressedKeyLength:
		// Round-trip to reject bytes that are not a valid G2 point.
		p, err := g2.FromCompressed(pub)
		if err != nil {
			return nil, fmt.Errorf("invalid compressed G2 point: %w", err)
		}

		return g2.ToCompressed(p), nil
	case BlsUncompressedKeyLength:
		p, err := g2.FromUncompressed(pub)
		if err != nil {
			return nil, fmt.Errorf("invalid uncompressed G2 point: %w", err)
		}

		return g2.ToCompressed(p), nil
	default:
		return nil, fmt.Errorf("%w: BLS public key must be %d or %d bytes, got %d",
			ErrInvalidKeyLength, BlsCompressedKeyLength, BlsUncompressedKeyLength, len(pub))
	}
}

// UncompressBlsPublicKey returns the uncompressed (192-byte) encoding of a
// compressed G2 public key.
func UncompressBlsPublicKey(pub []byte) ([]byte, error) {
	if len(pub) != BlsCompressedKeyLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidKeyLength, BlsCompressedKeyLength, len(pub))
	}

	g2 := bls12381.NewG2()

	p, err := g2.FromCompressed(pub)
	if err != nil {
		return nil, fmt.Errorf("invalid compressed G2 point: %w", err)
	}

	return g2.ToUncompressed(p), nil
}

// DecompressSecpPublicKey converts either encoding of a secp256k1 public key
// to the uncompressed (65-byte) form used for address derivation.
func DecompressSecpPublicKey(pub []byte) ([]byte, error) {
	switch len(pub) {
	case SecpCompressedKeyLength:
		parsed, err := btcec.ParsePubKey(pub)
		if err != nil {
			return nil, fmt.Errorf("failed to parse compressed public key: %w", err)
		}

		return parsed.SerializeUncompressed(), nil
	case SecpUncompressedKeyLength:
		if pub[0] != 0x04 {
			return nil, fmt.Errorf("uncompressed secp256k1 key must start with 0x04")
		}

		return pub, nil
	default:
		return nil, fmt.Errorf("%w: secp256k1 public key must be %d or %d bytes, got %d",
			ErrInvalidKeyLength, SecpCompressedKeyLength, SecpUncompressedKeyLength, len(pub))
	}
}

package crypto

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// ECDSASign signs a 32-byte digest with secp256k1, producing a hex-encoded
// 65-byte [r, s, v] signature.
func ECDSASign(digest []byte, hexPrivateKey string) (string, error) {
	privKey, err := crypto.HexToECDSA(strings.TrimPrefix(hexPrivateKey, "0x"))
	if err != nil {
		return "", fmt.Errorf("ecdsa: invalid private key: %w", err)
	}

	signature, err := crypto.Sign(digest, privKey)
	if err != nil {
		return "", fmt.Errorf("ecdsa: sign error: %w", err)
	}

	if len(signature) != 65 {
		return "", fmt.Errorf("ecdsa: invalid signature length, expected 65 bytes")
	}

	return hex.EncodeToString(signature), nil
}

// ECDSARecoverAddress recovers the checksummed signer address from a 65-byte
// signature over the given digest.
func ECDSARecoverAddress(digest, signature []byte) (string, error) {
	if len(signature) != 65 {
		return "", fmt.Errorf("ecdsa: invalid signature length: got %d, want 65 bytes", len(signature))
	}

	recovered, err := crypto.Ecrecover(digest, signature)
	if err != nil {
		return "", fmt.Errorf("ecdsa: failed to recover public key: %w", err)
	}

	pubKey, err := crypto.UnmarshalPubkey(recovered)
	if err != nil {
		return "", fmt.Errorf("ecdsa: failed to parse recovered public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey).Hex(), nil
}

// ECDSAVerifyByAddress checks a hex signature over the digest by recovering
// the signer address and comparing it, case-insensitively, to the expected
// address. Any recovery failure is converted to false.
func ECDSAVerifyByAddress(digest []byte, hexSignature, expectedAddress string) bool {
	signature, err := hex.DecodeString(strings.TrimPrefix(hexSignature, "0x"))
	if err != nil {
		logger.Debugf("invalid signature encoding: %v", err)

		return false
	}

	recovered, err := ECDSARecoverAddress(digest, signature)
	if err != nil {
		logger.Debugf("address recovery failed: %v", err)

		return false
	}

	return strings.EqualFold(recovered, expectedAddress)
}

package crypto

import (
	"encoding/base64"
	"fmt"

	bbs12381g2pub "github.com/hyperledger/aries-framework-go/component/kmscrypto/crypto/primitive/bbs12381g2pub"
	"github.com/hyperledger/aries-framework-go/component/log"
)

var logger = log.New("credential-sdk/crypto")

var bbsSuite = bbs12381g2pub.New()

// BBSSign signs the statement set with a BLS12-381 G2 private key and returns
// the base64 proof value together with the signer's compressed public key.
// The public key is returned separately so callers can attach it to the proof
// after the signature has been computed.
func BBSSign(messages [][]byte, privKey []byte) (string, []byte, error) {
	priv, err := bbs12381g2pub.UnmarshalPrivateKey(privKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal BLS private key: %w", err)
	}

	sig, err := bbsSuite.SignWithKey(messages, priv)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign statements: %w", err)
	}

	pub, err := priv.PublicKey().Marshal()
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal BLS public key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(sig), pub, nil
}

// BBSVerify checks a BbsBlsSignature2020 proof value over the full statement
// set. Any failure inside the pairing primitive is converted to false.
func BBSVerify(messages [][]byte, pubKey []byte, proofValue string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf("signature verification panicked: %v", r)

			ok = false
		}
	}()

	sig, err := base64.StdEncoding.DecodeString(proofValue)
	if err != nil {
		logger.Debugf("invalid proof value encoding: %v", err)

		return false
	}

	if err := bbsSuite.Verify(messages, sig, pubKey); err != nil {
		logger.Debugf("signature verification failed: %v", err)

		return false
	}

	return true
}

// BBSDeriveProof derives a selective-disclosure proof revealing only the
// statements at the given indexes.
func BBSDeriveProof(messages [][]byte, proofValue string, nonce, pubKey []byte,
	revealedIndexes []int) (string, error) {
	sig, err := base64.StdEncoding.DecodeString(proofValue)
	if err != nil {
		return "", fmt.Errorf("invalid proof value encoding: %w", err)
	}

	proof, err := bbsSuite.DeriveProof(messages, sig, nonce, pubKey, revealedIndexes)
	if err != nil {
		return "", fmt.Errorf("failed to derive proof: %w", err)
	}

	return base64.StdEncoding.EncodeToString(proof), nil
}

// BBSVerifyProof checks a BbsBlsSignatureProof2020 proof value against the
// revealed statement set. Any failure inside the pairing primitive is
// converted to false.
func BBSVerifyProof(revealed [][]byte, proofValue string, nonce, pubKey []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf("proof verification panicked: %v", r)

			ok = false
		}
	}()

	proof, err := base64.StdEncoding.DecodeString(proofValue)
	if err != nil {
		logger.Debugf("invalid proof value encoding: %v", err)

		return false
	}

	if err := bbsSuite.VerifyProof(revealed, proof, nonce, pubKey); err != nil {
		logger.Debugf("proof verification failed: %v", err)

		return false
	}

	return true
}

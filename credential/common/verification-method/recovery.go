// Package verificationmethod resolves the key material a proof must be
// checked against, either from the key embedded in the proof itself or from
// an authority document.
package verificationmethod

import (
	"errors"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/mr-tron/base58"

	"github.com/anchorid/go-credential-sdk/credential/common/crypto"
	"github.com/anchorid/go-credential-sdk/credential/common/model"
	"github.com/anchorid/go-credential-sdk/did"
)

var logger = log.New("credential-sdk/verification-method")

// ErrMissingEmbeddedKey is returned when a proof that must be verified
// through key recovery carries no embedded public key.
var ErrMissingEmbeddedKey = errors.New("proof has no embedded public key")

// RecoveryMethod verifies pairing-key proofs without a key registry: the
// proof's embedded public key is accepted iff the address derived from it
// matches the address the identifier (or the authority document) binds.
type RecoveryMethod struct {
	publicKey       []byte
	expectedAddress string
	derivedAddress  string
}

// NewRecoveryMethod builds a RecoveryMethod from a proof and the claimed
// signer identifier. The expected address is taken from the identifier's
// pairing-key slot; the derived address is computed once, here.
func NewRecoveryMethod(proof *model.Proof, signer *did.DID) (*RecoveryMethod, error) {
	return NewRecoveryMethodForAccount(proof, signer.VerificationAddress())
}

// NewRecoveryMethodForAccount builds a RecoveryMethod whose expected address
// comes from an authority document's bound account rather than from the
// identifier itself.
func NewRecoveryMethodForAccount(proof *model.Proof, expectedAddress string) (*RecoveryMethod, error) {
	if proof.PublicKeyBase58 == "" {
		return nil, ErrMissingEmbeddedKey
	}

	raw, err := base58.Decode(proof.PublicKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded public key: %w", err)
	}

	normalized, err := crypto.NormalizeBlsPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize embedded public key: %w", err)
	}

	derived, err := did.DeriveBlsAddress(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to derive address from embedded public key: %w", err)
	}

	return &RecoveryMethod{
		publicKey:       normalized,
		expectedAddress: expectedAddress,
		derivedAddress:  derived,
	}, nil
}

// PublicKey returns the canonical compressed form of the embedded key.
func (m *RecoveryMethod) PublicKey() []byte {
	return m.publicKey
}

// Verify checks a signature over the full statement set. The address
// comparison runs first: a swapped key is rejected without any pairing work,
// and a failed address check never reaches the signature primitive.
func (m *RecoveryMethod) Verify(messages [][]byte, proofValue string) bool {
	if !m.addressMatches() {
		return false
	}

	return crypto.BBSVerify(messages, m.publicKey, proofValue)
}

// VerifyProof checks a selective-disclosure proof over the revealed
// statement set, with the same address-first ordering as Verify.
func (m *RecoveryMethod) VerifyProof(revealed [][]byte, proofValue string, nonce []byte) bool {
	if !m.addressMatches() {
		return false
	}

	return crypto.BBSVerifyProof(revealed, proofValue, nonce, m.publicKey)
}

func (m *RecoveryMethod) addressMatches() bool {
	if !did.EqualAddresses(m.derivedAddress, m.expectedAddress) {
		logger.Debugf("embedded key derives %s, identifier binds %s", m.derivedAddress, m.expectedAddress)

		return false
	}

	return true
}

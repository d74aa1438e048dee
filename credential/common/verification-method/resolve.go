package verificationmethod

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/anchorid/go-credential-sdk/credential/common/crypto"
	"github.com/anchorid/go-credential-sdk/credential/common/model"
	"github.com/anchorid/go-credential-sdk/credential/common/provider"
	"github.com/anchorid/go-credential-sdk/did"
)

// ErrMethodNotFound is returned when the referenced verification method is
// absent from the authority document or lacks the required capability. It is
// evidence of an invalid (possibly revoked) credential, not of a transport
// problem.
var ErrMethodNotFound = errors.New("verification method not found in DID document")

// Method is the result of verification-method resolution: either an
// embedded-key recovery verifier or an authoritative document entry. The two
// cases form a closed variant; callers dispatch on which field is set rather
// than re-inspecting proof fields.
type Method struct {
	// Recovery is set for the embedded-key tier, and for authoritative
	// entries that bind an account instead of key material.
	Recovery *RecoveryMethod

	// Entry is the authoritative document entry, nil for the pure
	// embedded-key tier.
	Entry *model.VerificationMethodEntry

	// PublicKey is the pairing key of an authoritative entry that embeds
	// key material directly.
	PublicKey []byte
}

// Resolve picks the verification method for a proof.
//
// Tier 1: when the proof carries an embedded key, the caller permits it, and
// the reference identifier parses under the recoverable scheme, the embedded
// key is checked against the identifier's bound address with no lookup at
// all. Tier 2: otherwise the authority document is consulted. Resolve never
// falls from tier 1 to tier 2 on its own; the resolution orchestrator owns
// that decision through the allowEmbedded flag and the provider it supplies.
func Resolve(proof *model.Proof, p provider.Provider, allowEmbedded bool) (*Method, error) {
	ref := proof.VerificationMethod

	didPart, _, _ := strings.Cut(ref, "#")
	if didPart == "" {
		return nil, fmt.Errorf("invalid verification method reference: %q", ref)
	}

	signer, err := did.Parse(didPart)
	if err != nil {
		return nil, fmt.Errorf("failed to parse verification method identifier: %w", err)
	}

	if allowEmbedded && proof.PublicKeyBase58 != "" {
		recovery, err := NewRecoveryMethod(proof, signer)
		if err != nil {
			return nil, err
		}

		return &Method{Recovery: recovery}, nil
	}

	doc, err := p.DIDResolver(didPart)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DID %q: %w", didPart, err)
	}

	entry := doc.FindVerificationMethod(ref)
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, ref)
	}

	if proof.ProofPurpose != "" && !doc.HasCapability(proof.ProofPurpose, entry.ID) {
		return nil, fmt.Errorf("%w: %s is not authorized for %s", ErrMethodNotFound, ref, proof.ProofPurpose)
	}

	m := &Method{Entry: entry}

	switch {
	case entry.PublicKeyBase58 != "":
		raw, err := base58.Decode(entry.PublicKeyBase58)
		if err != nil {
			return nil, fmt.Errorf("failed to decode document public key: %w", err)
		}

		m.PublicKey, err = crypto.NormalizeBlsPublicKey(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize document public key: %w", err)
		}
	case entry.PublicKeyHex != "" && entry.Type != model.VerificationTypeEcdsaRecovery:
		raw, err := crypto.KeyToBytes(entry.PublicKeyHex)
		if err != nil {
			return nil, fmt.Errorf("failed to decode document public key: %w", err)
		}

		m.PublicKey, err = crypto.NormalizeBlsPublicKey(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize document public key: %w", err)
		}
	case entry.BlockchainAccountID != "" && entry.Type == model.VerificationTypeBlsRecovery:
		// The document binds only an account: the proof must still carry
		// the key, checked against the authoritative address.
		recovery, err := NewRecoveryMethodForAccount(proof, did.AccountAddress(entry.BlockchainAccountID))
		if err != nil {
			return nil, err
		}

		m.Recovery = recovery
	}

	return m, nil
}

// BoundAddress returns the account address the resolved entry binds, or ""
// for the embedded-key tier.
func (m *Method) BoundAddress() string {
	if m.Entry == nil || m.Entry.BlockchainAccountID == "" {
		return ""
	}

	return did.AccountAddress(m.Entry.BlockchainAccountID)
}

// VerifySignature checks a BbsBlsSignature2020 value over the full statement
// set using whichever key source was resolved.
func (m *Method) VerifySignature(messages [][]byte, proofValue string) bool {
	switch {
	case m.Recovery != nil:
		return m.Recovery.Verify(messages, proofValue)
	case m.PublicKey != nil:
		return crypto.BBSVerify(messages, m.PublicKey, proofValue)
	default:
		logger.Debugf("resolved method has no usable key material")

		return false
	}
}

// VerifyDerived checks a BbsBlsSignatureProof2020 value over the revealed
// statement set.
func (m *Method) VerifyDerived(revealed [][]byte, proofValue string, nonce []byte) bool {
	switch {
	case m.Recovery != nil:
		return m.Recovery.VerifyProof(revealed, proofValue, nonce)
	case m.PublicKey != nil:
		return crypto.BBSVerifyProof(revealed, proofValue, nonce, m.PublicKey)
	default:
		logger.Debugf("resolved method has no usable key material")

		return false
	}
}

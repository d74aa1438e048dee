package jsonmap

import (
	"fmt"
	"time"

	"github.com/anchorid/go-credential-sdk/credential/common/crypto"
	"github.com/anchorid/go-credential-sdk/credential/common/model"
	"github.com/anchorid/go-credential-sdk/credential/common/processor"
)

// AddECDSAProof signs the document digest with a secp256k1 key and attaches
// an EcdsaSecp256k1RecoverySignature2020 proof. The proof itself is not part
// of the signed bytes.
func (m JSONMap) AddECDSAProof(privHex, verificationMethod, proofPurpose string,
	procOpts ...processor.Opt) error {
	if verificationMethod == "" {
		return fmt.Errorf("verification method is required")
	}

	if proofPurpose == "" {
		return fmt.Errorf("proof purpose is required")
	}

	digest, err := processor.Digest(m.WithoutProof(), procOpts...)
	if err != nil {
		return fmt.Errorf("failed to canonicalize document: %w", err)
	}

	signature, err := crypto.ECDSASign(digest, privHex)
	if err != nil {
		return fmt.Errorf("failed to sign document: %w", err)
	}

	return m.SetProof(&model.Proof{
		Type:               model.ProofTypeEcdsaRecovery2020,
		Created:            time.Now().UTC().Format(time.RFC3339),
		VerificationMethod: verificationMethod,
		ProofPurpose:       proofPurpose,
		ProofValue:         signature,
	})
}

// VerifyECDSAProof recomputes the document digest, recovers the signer
// address from the proof value and compares it to the expected address.
func (m JSONMap) VerifyECDSAProof(expectedAddress string, procOpts ...processor.Opt) (bool, error) {
	proof, err := m.Proof()
	if err != nil {
		return false, err
	}

	digest, err := processor.Digest(m.WithoutProof(), procOpts...)
	if err != nil {
		return false, fmt.Errorf("failed to canonicalize document: %w", err)
	}

	return crypto.ECDSAVerifyByAddress(digest, proof.ProofValue, expectedAddress), nil
}

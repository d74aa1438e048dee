package model

// Proof type vocabulary.
const (
	ProofTypeBbsBlsSignature2020      = "BbsBlsSignature2020"
	ProofTypeBbsBlsSignatureProof2020 = "BbsBlsSignatureProof2020"
	ProofTypeEcdsaRecovery2020        = "EcdsaSecp256k1RecoverySignature2020"
)

// Bounds describes a numeric predicate disclosed in place of an attribute
// value: Min <= value < Max.
type Bounds struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Proof represents a Linked Data Proof attached to a credential or a
// presentation.
//
// PublicKeyBase58 carries the signer's public key inside the proof itself.
// It is appended after the signature is computed and is stripped before the
// signed statements are rebuilt at verification time, so it is never part of
// the signed byte sequence.
type Proof struct {
	Type               string            `json:"type"`
	Created            string            `json:"created"`
	VerificationMethod string            `json:"verificationMethod"`
	ProofPurpose       string            `json:"proofPurpose"`
	ProofValue         string            `json:"proofValue,omitempty"`
	PublicKeyBase58    string            `json:"publicKeyBase58,omitempty"`
	Nonce              string            `json:"nonce,omitempty"`
	ProofBounds        map[string]Bounds `json:"proofBounds,omitempty"`
	Challenge          string            `json:"challenge,omitempty"`
	Domain             string            `json:"domain,omitempty"`
}

// Copy returns a deep copy of the proof.
func (p *Proof) Copy() *Proof {
	cp := *p

	if p.ProofBounds != nil {
		cp.ProofBounds = make(map[string]Bounds, len(p.ProofBounds))
		for k, v := range p.ProofBounds {
			cp.ProofBounds[k] = v
		}
	}

	return &cp
}

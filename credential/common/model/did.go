package model

// Verification method type vocabulary. The recovery variants carry a bound
// blockchain account instead of key material; the key is supplied by the
// proof itself and checked against the account address.
const (
	VerificationTypeEcdsaRecovery = "EcdsaSecp256k1RecoveryMethod2020"
	VerificationTypeBlsRecovery   = "Bls12381G2RecoveryMethod2020"
	VerificationTypeBlsKey        = "Bls12381G2Key2020"
)

// DIDDocument represents the structure of a resolved DID Document.
type DIDDocument struct {
	Context             []string                  `json:"@context"`
	ID                  string                    `json:"id"`
	Controller          string                    `json:"controller"`
	VerificationMethod  []VerificationMethodEntry `json:"verificationMethod"`
	Authentication      []string                  `json:"authentication"`
	AssertionMethod     []string                  `json:"assertionMethod"`
	DIDDocumentMetadata map[string]interface{}    `json:"didDocumentMetadata,omitempty"`
}

// VerificationMethodEntry represents a single verification method in a DID
// Document. Exactly one of BlockchainAccountID, PublicKeyBase58 or
// PublicKeyHex is set, depending on the entry type.
type VerificationMethodEntry struct {
	ID                  string `json:"id"`
	Type                string `json:"type"`
	Controller          string `json:"controller"`
	BlockchainAccountID string `json:"blockchainAccountId,omitempty"`
	PublicKeyBase58     string `json:"publicKeyBase58,omitempty"`
	PublicKeyHex        string `json:"publicKeyHex,omitempty"`
}

// FindVerificationMethod returns the entry whose id matches the given
// verification method reference, or nil.
func (d *DIDDocument) FindVerificationMethod(id string) *VerificationMethodEntry {
	for i := range d.VerificationMethod {
		if d.VerificationMethod[i].ID == id {
			return &d.VerificationMethod[i]
		}
	}

	return nil
}

// HasCapability reports whether the verification method id is referenced by
// the capability list for the given proof purpose.
func (d *DIDDocument) HasCapability(purpose, id string) bool {
	var refs []string

	switch purpose {
	case "authentication":
		refs = d.Authentication
	case "assertionMethod":
		refs = d.AssertionMethod
	default:
		return false
	}

	for _, ref := range refs {
		if ref == id {
			return true
		}
	}

	return false
}

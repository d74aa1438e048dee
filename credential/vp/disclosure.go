package vp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/anchorid/go-credential-sdk/credential/common/crypto"
	"github.com/anchorid/go-credential-sdk/credential/common/model"
	"github.com/anchorid/go-credential-sdk/credential/common/processor"
	verificationmethod "github.com/anchorid/go-credential-sdk/credential/common/verification-method"
	"github.com/anchorid/go-credential-sdk/credential/vc"
)

// Disclosure accumulates credentials and per-credential reveal requests, then
// derives unlinkable selective-disclosure credentials from them.
//
// The signer's public key is captured when a credential is added, before any
// statement is dropped: a derived proof no longer contains the attributes a
// verifier would need to re-resolve the key, so the extraction result travels
// with the derived proof instead.
type Disclosure struct {
	options *presentationOptions
	entries []*disclosureEntry
}

type disclosureEntry struct {
	credential *vc.Credential
	proof      *model.Proof
	publicKey  []byte
	reveal     []string
	bounds     map[string]model.Bounds
}

// NewDisclosure creates an empty disclosure builder.
func NewDisclosure(opts ...PresentationOpt) *Disclosure {
	return &Disclosure{options: GetOptions(opts...)}
}

// AddCredential registers a credential for derivation and returns its index.
// The credential must carry a BbsBlsSignature2020 proof; its signer key is
// extracted here, from the embedded key when present, otherwise from the
// resolved authority document.
func (d *Disclosure) AddCredential(credential *vc.Credential) (int, error) {
	proof, err := credential.Proof()
	if err != nil {
		return 0, fmt.Errorf("failed to read credential proof: %w", err)
	}

	if proof.Type != model.ProofTypeBbsBlsSignature2020 {
		return 0, fmt.Errorf("cannot derive from proof type %q", proof.Type)
	}

	publicKey, err := d.extractPublicKey(proof)
	if err != nil {
		return 0, err
	}

	d.entries = append(d.entries, &disclosureEntry{
		credential: credential,
		proof:      proof,
		publicKey:  publicKey,
		bounds:     map[string]model.Bounds{},
	})

	return len(d.entries) - 1, nil
}

// AddReveal requests full disclosure of the given dot-delimited attribute
// paths of the credential at index.
func (d *Disclosure) AddReveal(index int, paths ...string) error {
	entry, err := d.entry(index)
	if err != nil {
		return err
	}

	for _, path := range paths {
		if _, ok := processor.SelectValue(entry.credential.JSON(), path); !ok {
			return fmt.Errorf("reveal path %q not found in credential", path)
		}
	}

	entry.reveal = append(entry.reveal, paths...)

	return nil
}

// AddBound requests a range predicate over the attribute at path: the derived
// credential proves min <= value < max without disclosing the value. The
// attribute itself is withheld from the reveal document.
func (d *Disclosure) AddBound(index int, path string, min, max int64) error {
	entry, err := d.entry(index)
	if err != nil {
		return err
	}

	if min >= max {
		return fmt.Errorf("bound for %q is empty: min %d, max %d", path, min, max)
	}

	value, ok := processor.SelectValue(entry.credential.JSON(), path)
	if !ok {
		return fmt.Errorf("bound path %q not found in credential", path)
	}

	switch value.(type) {
	case float64, float32, int, int32, int64, json.Number:
	default:
		return fmt.Errorf("bound path %q is not numeric", path)
	}

	entry.bounds[path] = model.Bounds{Min: min, Max: max}

	return nil
}

// Derive produces one selective-disclosure credential per added credential.
// All derived proofs share the verifier-supplied nonce.
func (d *Disclosure) Derive(nonce []byte) ([]*vc.Credential, error) {
	if len(d.entries) == 0 {
		return nil, fmt.Errorf("no credentials to derive from")
	}

	derived := make([]*vc.Credential, 0, len(d.entries))

	for i, entry := range d.entries {
		credential, err := d.deriveOne(entry, nonce)
		if err != nil {
			return nil, fmt.Errorf("failed to derive credential %d: %w", i, err)
		}

		derived = append(derived, credential)
	}

	return derived, nil
}

func (d *Disclosure) deriveOne(entry *disclosureEntry, nonce []byte) (*vc.Credential, error) {
	fullMessages, err := entry.credential.SignedStatements(entry.proof, d.credOpts()...)
	if err != nil {
		return nil, err
	}

	revealDoc, err := processor.BuildRevealDocument(
		entry.credential.JSON().WithoutProof(), entry.revealPaths())
	if err != nil {
		return nil, err
	}

	revealStatements, err := processor.Statements(revealDoc, d.options.procOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize reveal document: %w", err)
	}

	// Document statement positions sit after the proof configuration
	// statement at index zero, which is always revealed.
	docIndexes, err := processor.RevealedIndexes(fullMessages[1:], revealStatements)
	if err != nil {
		return nil, err
	}

	revealedIndexes := make([]int, 0, len(docIndexes)+1)
	revealedIndexes = append(revealedIndexes, 0)

	for _, idx := range docIndexes {
		revealedIndexes = append(revealedIndexes, idx+1)
	}

	proofValue, err := crypto.BBSDeriveProof(fullMessages, entry.proof.ProofValue,
		nonce, entry.publicKey, revealedIndexes)
	if err != nil {
		return nil, fmt.Errorf("failed to derive proof: %w", err)
	}

	derivedProof := entry.proof.Copy()
	derivedProof.Type = model.ProofTypeBbsBlsSignatureProof2020
	derivedProof.ProofValue = proofValue
	derivedProof.Nonce = base64.StdEncoding.EncodeToString(nonce)
	derivedProof.PublicKeyBase58 = base58.Encode(entry.publicKey)

	if len(entry.bounds) > 0 {
		derivedProof.ProofBounds = entry.bounds
	}

	credential := vc.FromMap(revealDoc)
	if err := credential.JSON().SetProof(derivedProof); err != nil {
		return nil, err
	}

	return credential, nil
}

// revealPaths returns the requested paths minus any path under a range
// predicate: a bounded attribute is proven, never shown.
func (e *disclosureEntry) revealPaths() []string {
	paths := make([]string, 0, len(e.reveal))

	for _, path := range e.reveal {
		if _, bounded := e.bounds[path]; bounded {
			continue
		}

		paths = append(paths, path)
	}

	return paths
}

func (d *Disclosure) extractPublicKey(proof *model.Proof) ([]byte, error) {
	if proof.PublicKeyBase58 != "" {
		raw, err := base58.Decode(proof.PublicKeyBase58)
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedded public key: %w", err)
		}

		return crypto.NormalizeBlsPublicKey(raw)
	}

	if d.options.provider == nil {
		return nil, fmt.Errorf("proof embeds no key and no provider is configured")
	}

	method, err := verificationmethod.Resolve(proof, d.options.provider, false)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve signer key: %w", err)
	}

	switch {
	case method.PublicKey != nil:
		return method.PublicKey, nil
	case method.Recovery != nil:
		return method.Recovery.PublicKey(), nil
	default:
		return nil, fmt.Errorf("verification method %s exposes no key material",
			proof.VerificationMethod)
	}
}

func (d *Disclosure) entry(index int) (*disclosureEntry, error) {
	if index < 0 || index >= len(d.entries) {
		return nil, fmt.Errorf("credential index %d out of range", index)
	}

	return d.entries[index], nil
}

func (d *Disclosure) credOpts() []vc.CredentialOpt {
	return d.options.credOpts
}

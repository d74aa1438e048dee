// Package vp builds and verifies verifiable presentations: envelopes that
// bundle credentials under a holder's proof, including presentations of
// selectively disclosed credentials.
package vp

import (
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/piprate/json-gold/ld"

	"github.com/anchorid/go-credential-sdk/credential/common/jsonmap"
	"github.com/anchorid/go-credential-sdk/credential/common/model"
	"github.com/anchorid/go-credential-sdk/credential/common/processor"
	"github.com/anchorid/go-credential-sdk/credential/common/provider"
	verificationmethod "github.com/anchorid/go-credential-sdk/credential/common/verification-method"
	"github.com/anchorid/go-credential-sdk/credential/vc"
	"github.com/anchorid/go-credential-sdk/did"
)

var logger = log.New("credential-sdk/vp")

// PresentationOpt configures presentation processing options.
type PresentationOpt func(*presentationOptions)

type presentationOptions struct {
	provider      provider.Provider
	authoritative bool
	procOpts      []processor.Opt
	credOpts      []vc.CredentialOpt
}

// WithProvider sets the DID resolver used during verification.
func WithProvider(p provider.Provider) PresentationOpt {
	return func(o *presentationOptions) {
		o.provider = p
		o.credOpts = append(o.credOpts, vc.WithProvider(p))
	}
}

// WithAuthoritativeResolution disables the embedded-key fast path for every
// proof in the presentation.
func WithAuthoritativeResolution() PresentationOpt {
	return func(o *presentationOptions) {
		o.authoritative = true
		o.credOpts = append(o.credOpts, vc.WithAuthoritativeResolution())
	}
}

// WithDocumentLoader sets the JSON-LD document loader used for
// canonicalization.
func WithDocumentLoader(loader ld.DocumentLoader) PresentationOpt {
	return func(o *presentationOptions) {
		o.procOpts = append(o.procOpts, processor.WithDocumentLoader(loader))
		o.credOpts = append(o.credOpts, vc.WithDocumentLoader(loader))
	}
}

// GetOptions merges the presentation options over the package defaults.
func GetOptions(opts ...PresentationOpt) *presentationOptions {
	options := &presentationOptions{}

	for _, opt := range opts {
		opt(options)
	}

	return options
}

// Presentation is a verifiable presentation held as a JSON object.
type Presentation struct {
	doc jsonmap.JSONMap
}

// New creates a presentation for a holder over a set of credentials.
func New(holder string, credentials []*vc.Credential, opts ...PresentationOpt) (*Presentation, error) {
	if _, err := did.Parse(holder); err != nil {
		return nil, fmt.Errorf("failed to parse holder: %w", err)
	}

	embedded := make([]interface{}, len(credentials))

	for i, credential := range credentials {
		copied, err := credential.JSON().Copy()
		if err != nil {
			return nil, fmt.Errorf("failed to copy credential: %w", err)
		}

		embedded[i] = map[string]interface{}(copied)
	}

	return &Presentation{doc: jsonmap.JSONMap{
		"@context":             []interface{}{"https://www.w3.org/2018/credentials/v1"},
		"type":                 []interface{}{"VerifiablePresentation"},
		"holder":               holder,
		"verifiableCredential": embedded,
	}}, nil
}

// Parse parses a JSON presentation.
func Parse(raw []byte, opts ...PresentationOpt) (*Presentation, error) {
	m, err := jsonmap.FromJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse presentation: %w", err)
	}

	return &Presentation{doc: m}, nil
}

// JSON returns the underlying JSON object.
func (p *Presentation) JSON() jsonmap.JSONMap {
	return p.doc
}

// ToJSON serializes the presentation.
func (p *Presentation) ToJSON() ([]byte, error) {
	return p.doc.ToJSON()
}

// Holder returns the holder identifier string.
func (p *Presentation) Holder() (string, error) {
	holder, ok := p.doc["holder"].(string)
	if !ok || holder == "" {
		return "", fmt.Errorf("presentation has no holder")
	}

	return holder, nil
}

// Credentials returns the embedded credentials.
func (p *Presentation) Credentials() ([]*vc.Credential, error) {
	raw, ok := p.doc["verifiableCredential"]
	if !ok {
		return nil, nil
	}

	entries, ok := raw.([]interface{})
	if !ok {
		if single, ok := raw.(map[string]interface{}); ok {
			entries = []interface{}{single}
		} else {
			return nil, fmt.Errorf("verifiableCredential has unexpected shape")
		}
	}

	credentials := make([]*vc.Credential, 0, len(entries))

	for i, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("embedded credential %d has unexpected shape", i)
		}

		credentials = append(credentials, vc.FromMap(m))
	}

	return credentials, nil
}

// ParticipantDIDs returns the holder plus every distinct credential issuer,
// normalized and deduplicated.
func (p *Presentation) ParticipantDIDs() ([]string, error) {
	holder, err := p.Holder()
	if err != nil {
		return nil, err
	}

	normalizedHolder, err := did.Normalize(holder)
	if err != nil {
		return nil, fmt.Errorf("failed to parse holder: %w", err)
	}

	participants := []string{normalizedHolder}
	seen := map[string]struct{}{normalizedHolder: {}}

	credentials, err := p.Credentials()
	if err != nil {
		return nil, err
	}

	for _, credential := range credentials {
		issuer, err := credential.Issuer()
		if err != nil {
			return nil, err
		}

		normalized, err := did.Normalize(issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to parse issuer: %w", err)
		}

		if _, ok := seen[normalized]; ok {
			continue
		}

		seen[normalized] = struct{}{}
		participants = append(participants, normalized)
	}

	return participants, nil
}

// AddProof signs the presentation with the holder's secp256k1 key and
// attaches an authentication proof.
func (p *Presentation) AddProof(privHex string, opts ...PresentationOpt) error {
	o := GetOptions(opts...)

	holder, err := p.Holder()
	if err != nil {
		return err
	}

	holderDID, err := did.Parse(holder)
	if err != nil {
		return fmt.Errorf("failed to parse holder: %w", err)
	}

	return p.doc.AddECDSAProof(privHex,
		holderDID.VerificationMethodID(did.FragmentController),
		"authentication", o.procOpts...)
}

// Verify checks the holder's proof and every embedded credential. It returns
// (false, nil) on rejection and a non-nil error only when verification could
// not be completed.
func (p *Presentation) Verify(opts ...PresentationOpt) (bool, error) {
	o := GetOptions(opts...)

	if o.provider == nil {
		return false, fmt.Errorf("a provider is required to verify a presentation")
	}

	ok, err := p.verifyHolderProof(o)
	if err != nil || !ok {
		return false, err
	}

	credentials, err := p.Credentials()
	if err != nil {
		return false, err
	}

	for i, credential := range credentials {
		ok, err := credential.Verify(o.credOpts...)
		if err != nil {
			return false, fmt.Errorf("failed to verify credential %d: %w", i, err)
		}

		if !ok {
			logger.Debugf("credential %d rejected", i)

			return false, nil
		}
	}

	return true, nil
}

// verifyHolderProof checks the presentation-level proof. The holder's key is
// secp256k1, so there is never an embedded-key fast path: the bound account
// always comes from the holder's document.
func (p *Presentation) verifyHolderProof(o *presentationOptions) (bool, error) {
	proof, err := p.doc.Proof()
	if err != nil {
		return false, fmt.Errorf("failed to read presentation proof: %w", err)
	}

	if proof.Type != model.ProofTypeEcdsaRecovery2020 {
		return false, fmt.Errorf("unsupported presentation proof type %q", proof.Type)
	}

	method, err := verificationmethod.Resolve(proof, o.provider, false)
	if err != nil {
		if provider.IsTransportError(err) {
			return false, err
		}

		logger.Debugf("holder method resolution rejected: %v", err)

		return false, nil
	}

	address := method.BoundAddress()
	if address == "" {
		logger.Debugf("holder method %s binds no account", proof.VerificationMethod)

		return false, nil
	}

	return p.doc.VerifyECDSAProof(address, o.procOpts...)
}

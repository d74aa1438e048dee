package vc

import (
	"fmt"

	"github.com/piprate/json-gold/ld"

	"github.com/anchorid/go-credential-sdk/credential/common/jsonmap"
	"github.com/anchorid/go-credential-sdk/credential/common/model"
	"github.com/anchorid/go-credential-sdk/credential/common/processor"
	"github.com/anchorid/go-credential-sdk/credential/common/provider"
	"github.com/anchorid/go-credential-sdk/did"
)

// Config holds package configuration.
var config = struct {
	BaseURL string
}{
	BaseURL: "https://resolver.anchorid.io/api/v1/did",
}

// Init initializes the package with a resolver base URL.
func Init(baseURL string) {
	if baseURL != "" {
		config.BaseURL = baseURL
	}
}

// Credential is a verifiable credential held as a JSON object with at most
// one attached proof.
type Credential struct {
	doc jsonmap.JSONMap
}

// CredentialOpt configures credential processing options.
type CredentialOpt func(*credentialOptions)

// credentialOptions holds configuration for credential processing.
type credentialOptions struct {
	provider      provider.Provider
	authoritative bool
	fragment      string
	procOpts      []processor.Opt
}

// WithProvider sets the DID resolver used during verification.
func WithProvider(p provider.Provider) CredentialOpt {
	return func(o *credentialOptions) {
		o.provider = p
	}
}

// WithAuthoritativeResolution disables the embedded-key fast path: every
// verification method is looked up in the resolved authority document.
func WithAuthoritativeResolution() CredentialOpt {
	return func(o *credentialOptions) {
		o.authoritative = true
	}
}

// WithDocumentLoader sets the JSON-LD document loader used for
// canonicalization.
func WithDocumentLoader(loader ld.DocumentLoader) CredentialOpt {
	return func(o *credentialOptions) {
		o.procOpts = append(o.procOpts, processor.WithDocumentLoader(loader))
	}
}

// WithVerificationMethodFragment overrides the fragment of the verification
// method referenced by a new proof (default: "bbs" for BBS proofs,
// "controller" for ECDSA proofs).
func WithVerificationMethodFragment(fragment string) CredentialOpt {
	return func(o *credentialOptions) {
		o.fragment = fragment
	}
}

// GetOptions merges the credential options over the package defaults.
func GetOptions(opts ...CredentialOpt) *credentialOptions {
	options := &credentialOptions{}

	for _, opt := range opts {
		opt(options)
	}

	if options.provider == nil {
		options.provider = provider.NewDefaultProvider(config.BaseURL)
	}

	return options
}

// New creates a credential from structured contents.
func New(contents CredentialContents, opts ...CredentialOpt) (*Credential, error) {
	m, err := serializeCredentialContents(&contents)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize credential contents: %w", err)
	}

	return &Credential{doc: m}, nil
}

// Parse parses a JSON credential.
func Parse(raw []byte, opts ...CredentialOpt) (*Credential, error) {
	m, err := jsonmap.FromJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credential: %w", err)
	}

	return &Credential{doc: m}, nil
}

// FromMap wraps an existing JSON object as a credential.
func FromMap(m jsonmap.JSONMap) *Credential {
	return &Credential{doc: m}
}

// JSON returns the underlying JSON object.
func (c *Credential) JSON() jsonmap.JSONMap {
	return c.doc
}

// ToJSON serializes the credential.
func (c *Credential) ToJSON() ([]byte, error) {
	return c.doc.ToJSON()
}

// Issuer returns the issuer identifier string.
func (c *Credential) Issuer() (string, error) {
	issuer, ok := c.doc["issuer"].(string)
	if !ok || issuer == "" {
		return "", fmt.Errorf("credential has no issuer")
	}

	return issuer, nil
}

// IssuerDID returns the parsed issuer identifier.
func (c *Credential) IssuerDID() (*did.DID, error) {
	issuer, err := c.Issuer()
	if err != nil {
		return nil, err
	}

	d, err := did.Parse(issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to parse issuer: %w", err)
	}

	return d, nil
}

// Proof returns the parsed proof.
func (c *Credential) Proof() (*model.Proof, error) {
	return c.doc.Proof()
}

// Statements canonicalizes the credential without its proof into the ordered
// statement set the BBS suite signs.
func (c *Credential) Statements(opts ...CredentialOpt) ([][]byte, error) {
	o := GetOptions(opts...)

	return processor.Statements(c.doc.WithoutProof(), o.procOpts...)
}

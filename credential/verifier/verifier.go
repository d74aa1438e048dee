// Package verifier implements the optimistic resolution strategy: artifacts
// are first verified against locally synthesized default authority documents
// with no network I/O, and only identifiers observed to diverge from their
// default are looked up authoritatively on later verifications.
package verifier

import (
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/piprate/json-gold/ld"

	credentialstatus "github.com/anchorid/go-credential-sdk/credential/common/credential-status"
	"github.com/anchorid/go-credential-sdk/credential/common/memory"
	"github.com/anchorid/go-credential-sdk/credential/common/provider"
	"github.com/anchorid/go-credential-sdk/credential/vc"
	"github.com/anchorid/go-credential-sdk/credential/vp"
	"github.com/anchorid/go-credential-sdk/did"
)

var logger = log.New("credential-sdk/verifier")

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

// Verifier is a verification session. The resolution memory is injected, not
// ambient: distinct sessions never observe each other's divergence markings
// unless the caller shares a store between them.
type Verifier struct {
	authoritative provider.Provider
	synthetic     provider.Provider
	memory        memory.Store
	status        *credentialstatus.Client
	credOpts      []vc.CredentialOpt
	presOpts      []vp.PresentationOpt
}

// VerifierOpt configures a verification session.
type VerifierOpt func(*Verifier)

// WithProvider sets the authoritative resolver. Defaults to the HTTP resolver
// at the configured base URL.
func WithProvider(p provider.Provider) VerifierOpt {
	return func(v *Verifier) {
		v.authoritative = p
	}
}

// WithMemory sets the resolution memory store. Without one, every
// verification starts optimistic and divergence is rediscovered each time.
func WithMemory(store memory.Store) VerifierOpt {
	return func(v *Verifier) {
		v.memory = store
	}
}

// WithNetworkParams sets the network parameters used when synthesizing
// default authority documents.
func WithNetworkParams(params did.NetworkParams) VerifierOpt {
	return func(v *Verifier) {
		v.synthetic = provider.NewSyntheticProvider(params)
	}
}

// WithStatusCheck enables StatusList2021 revocation checks after a
// credential's proof verifies.
func WithStatusCheck() VerifierOpt {
	return func(v *Verifier) {
		v.status = credentialstatus.NewClient()
	}
}

// WithDocumentLoader sets the JSON-LD document loader used for
// canonicalization.
func WithDocumentLoader(loader ld.DocumentLoader) VerifierOpt {
	return func(v *Verifier) {
		v.credOpts = append(v.credOpts, vc.WithDocumentLoader(loader))
		v.presOpts = append(v.presOpts, vp.WithDocumentLoader(loader))
	}
}

// NewVerifier creates a verification session.
func NewVerifier(opts ...VerifierOpt) *Verifier {
	v := &Verifier{
		synthetic: provider.NewSyntheticProvider(did.DefaultNetworkParams),
	}

	for _, opt := range opts {
		opt(v)
	}

	if v.authoritative == nil {
		v.authoritative = provider.NewDefaultProvider(config.BaseURL)
	}

	return v
}

// VerifyCredential verifies a single credential. An issuer not marked in
// resolution memory is tried optimistically first: embedded keys are trusted
// against the identifier's address and any document lookup is served by local
// synthesis. On optimistic failure the issuer is marked and the credential is
// re-verified authoritatively; that result is returned unconditionally.
func (v *Verifier) VerifyCredential(credential *vc.Credential) (bool, error) {
	issuer, err := credential.Issuer()
	if err != nil {
		return false, err
	}

	if !v.isMarked(issuer) {
		ok, err := credential.Verify(v.optimisticCredOpts()...)
		if err != nil {
			return false, err
		}

		if ok {
			return v.checkStatus(credential)
		}

		v.mark(issuer)
	}

	ok, err := credential.Verify(v.authoritativeCredOpts()...)
	if err != nil || !ok {
		return false, err
	}

	return v.checkStatus(credential)
}

// checkStatus runs the optional revocation check; without one, a verified
// credential passes as is.
func (v *Verifier) checkStatus(credential *vc.Credential) (bool, error) {
	if v.status == nil {
		return true, nil
	}

	revoked, err := v.status.CheckRevocation(credential.JSON())
	if err != nil {
		return false, fmt.Errorf("failed to check credential status: %w", err)
	}

	if revoked {
		logger.Debugf("credential revoked by its status list")

		return false, nil
	}

	return true, nil
}

// VerifyPresentation verifies a presentation with granular divergence
// detection: when the all-optimistic attempt fails, each credential and the
// presenter are re-tested individually so only the identifiers that actually
// diverged from their defaults are marked, then one authoritative
// verification decides the result.
func (v *Verifier) VerifyPresentation(presentation *vp.Presentation) (bool, error) {
	participants, err := presentation.ParticipantDIDs()
	if err != nil {
		return false, err
	}

	anyMarked := false

	for _, participant := range participants {
		if v.isMarked(participant) {
			anyMarked = true

			break
		}
	}

	if !anyMarked {
		ok, err := presentation.Verify(v.optimisticPresOpts()...)
		if err != nil {
			return false, err
		}

		if ok {
			return v.checkPresentationStatus(presentation)
		}

		if err := v.detectDivergence(presentation); err != nil {
			return false, err
		}
	}

	ok, err := presentation.Verify(v.authoritativePresOpts()...)
	if err != nil || !ok {
		return false, err
	}

	return v.checkPresentationStatus(presentation)
}

func (v *Verifier) checkPresentationStatus(presentation *vp.Presentation) (bool, error) {
	if v.status == nil {
		return true, nil
	}

	credentials, err := presentation.Credentials()
	if err != nil {
		return false, err
	}

	for _, credential := range credentials {
		ok, err := v.checkStatus(credential)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

// detectDivergence attributes an optimistic presentation failure to specific
// participants. Credentials are re-verified one at a time against synthesized
// documents; a failing credential marks its issuer. The presenter is tested
// by re-verifying the presentation with authoritative lookup for the holder
// only; success there means the holder's document, not an issuer's, explains
// the failure.
func (v *Verifier) detectDivergence(presentation *vp.Presentation) error {
	credentials, err := presentation.Credentials()
	if err != nil {
		return err
	}

	for i, credential := range credentials {
		ok, err := credential.Verify(v.optimisticCredOpts()...)
		if err != nil {
			return fmt.Errorf("failed to re-verify credential %d: %w", i, err)
		}

		if ok {
			continue
		}

		issuer, err := credential.Issuer()
		if err != nil {
			return err
		}

		v.mark(issuer)
	}

	holder, err := presentation.Holder()
	if err != nil {
		// No extractable presenter: issuer checks already ran, skip the
		// presenter check.
		logger.Debugf("presenter check skipped: %v", err)

		return nil
	}

	hybrid := provider.NewHybridProvider(v.authoritative, v.synthetic, holder)

	hybridOpts := append(append([]vp.PresentationOpt{}, v.presOpts...), vp.WithProvider(hybrid))

	ok, err := presentation.Verify(hybridOpts...)
	if err != nil {
		return fmt.Errorf("failed to re-verify presenter: %w", err)
	}

	if ok {
		v.mark(holder)
	}

	return nil
}

func (v *Verifier) isMarked(identifier string) bool {
	return v.memory != nil && v.memory.Has(identifier)
}

func (v *Verifier) mark(identifier string) {
	if v.memory == nil {
		return
	}

	logger.Warnf("identifier %s diverged from its default document, marking for authoritative resolution", identifier)
	v.memory.Set(identifier)
}

func (v *Verifier) optimisticCredOpts() []vc.CredentialOpt {
	return append(append([]vc.CredentialOpt{}, v.credOpts...), vc.WithProvider(v.synthetic))
}

func (v *Verifier) authoritativeCredOpts() []vc.CredentialOpt {
	return append(append([]vc.CredentialOpt{}, v.credOpts...),
		vc.WithProvider(v.authoritative), vc.WithAuthoritativeResolution())
}

func (v *Verifier) optimisticPresOpts() []vp.PresentationOpt {
	return append(append([]vp.PresentationOpt{}, v.presOpts...), vp.WithProvider(v.synthetic))
}

func (v *Verifier) authoritativePresOpts() []vp.PresentationOpt {
	return append(append([]vp.PresentationOpt{}, v.presOpts...),
		vp.WithProvider(v.authoritative), vp.WithAuthoritativeResolution())
}

package verifier_test

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	bbs12381g2pub "github.com/hyperledger/aries-framework-go/component/kmscrypto/crypto/primitive/bbs12381g2pub"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorid/go-credential-sdk/credential/common/ldtestutil"
	"github.com/anchorid/go-credential-sdk/credential/common/memory"
	"github.com/anchorid/go-credential-sdk/credential/common/model"
	"github.com/anchorid/go-credential-sdk/credential/common/provider"
	"github.com/anchorid/go-credential-sdk/credential/vc"
	"github.com/anchorid/go-credential-sdk/credential/verifier"
	"github.com/anchorid/go-credential-sdk/credential/vp"
	"github.com/anchorid/go-credential-sdk/did"
)

// registry is a fake authoritative resolver. It serves synthesized default
// documents unless a DID's document has been overridden, and counts lookups.
type registry struct {
	mu        sync.Mutex
	overrides map[string]*model.DIDDocument
	lookups   int
}

func newRegistry() *registry {
	return &registry{overrides: make(map[string]*model.DIDDocument)}
}

func (r *registry) override(didStr string, doc *model.DIDDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.overrides[didStr] = doc
}

func (r *registry) lookupCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lookups
}

func (r *registry) DIDResolver(didStr string) (*model.DIDDocument, error) {
	r.mu.Lock()
	r.lookups++

	for key, doc := range r.overrides {
		if did.Equal(key, didStr) {
			r.mu.Unlock()

			return doc, nil
		}
	}
	r.mu.Unlock()

	d, err := did.Parse(didStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrResolutionTransport, err)
	}

	return did.Synthesize(d, did.DefaultNetworkParams), nil
}

func issueCredential(t *testing.T, issuerDID, blsPrivHex string) *vc.Credential {
	t.Helper()

	credential, err := vc.New(vc.CredentialContents{
		Context: []string{ldtestutil.ContextCredentials, ldtestutil.ContextExamples},
		Types:   []string{"VerifiableCredential", "AlumniCredential"},
		Issuer:  issuerDID,
		Subject: []vc.Subject{{
			ID:           "did:anchor:0xd1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
			CustomFields: map[string]interface{}{"alumniOf": "Example University"},
		}},
	})
	require.NoError(t, err)

	err = credential.AddBBSProof(blsPrivHex,
		vc.WithDocumentLoader(ldtestutil.DocumentLoader()))
	require.NoError(t, err)

	return credential
}

func newVerifier(reg *registry, store memory.Store) *verifier.Verifier {
	return verifier.NewVerifier(
		verifier.WithProvider(reg),
		verifier.WithMemory(store),
		verifier.WithDocumentLoader(ldtestutil.DocumentLoader()),
	)
}

// rotateBlsKey generates a fresh BLS key for an existing identifier and
// publishes a document whose pairing entry carries the new key material, the
// way an on-chain attribute update replaces the default document.
func rotateBlsKey(t *testing.T, reg *registry, registration *did.Registration) (privHex string) {
	t.Helper()

	seed := sha256.Sum256([]byte("rotated:" + registration.DID))

	pubKey, privKey, err := bbs12381g2pub.GenerateKeyPair(sha256.New, seed[:])
	require.NoError(t, err)

	priv, err := privKey.Marshal()
	require.NoError(t, err)

	pub, err := pubKey.Marshal()
	require.NoError(t, err)

	d, err := did.Parse(registration.DID)
	require.NoError(t, err)

	doc := did.Synthesize(d, did.DefaultNetworkParams)
	doc.VerificationMethod[1].Type = model.VerificationTypeBlsKey
	doc.VerificationMethod[1].BlockchainAccountID = ""
	doc.VerificationMethod[1].PublicKeyBase58 = base58.Encode(pub)

	reg.override(registration.DID, doc)

	return "0x" + hex.EncodeToString(priv)
}

func TestVerifyCredentialOptimistic(t *testing.T) {
	reg := newRegistry()
	store := memory.NewMapStore()
	issuer, err := did.NewGenerator(did.DefaultMethod).GenerateDualDID()
	require.NoError(t, err)

	credential := issueCredential(t, issuer.DID, issuer.Secrets.BlsPrivateKeyHex)

	v := newVerifier(reg, store)

	ok, err := v.VerifyCredential(credential)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, reg.lookupCount(), "unmodified issuer verifies with no authoritative I/O")
	assert.False(t, store.Has(issuer.DID))
}

func TestVerifyCredentialDivergedIssuer(t *testing.T) {
	reg := newRegistry()
	store := memory.NewMapStore()
	issuer, err := did.NewGenerator(did.DefaultMethod).GenerateDualDID()
	require.NoError(t, err)

	rotatedPrivHex := rotateBlsKey(t, reg, issuer)
	credential := issueCredential(t, issuer.DID, rotatedPrivHex)

	v := newVerifier(reg, store)

	// The embedded rotated key no longer derives the identifier's address, so
	// the optimistic pass fails; the authoritative document carries the
	// rotated key and accepts the signature.
	ok, err := v.VerifyCredential(credential)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, store.Has(issuer.DID), "diverged issuer is remembered")

	lookupsAfterFirst := reg.lookupCount()
	assert.Positive(t, lookupsAfterFirst)

	// A second verification skips the optimistic attempt entirely.
	ok, err = v.VerifyCredential(credential)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyCredentialRevokedKey(t *testing.T) {
	reg := newRegistry()
	store := memory.NewMapStore()
	issuer, err := did.NewGenerator(did.DefaultMethod).GenerateDualDID()
	require.NoError(t, err)

	credential := issueCredential(t, issuer.DID, issuer.Secrets.BlsPrivateKeyHex)

	// The issuer's authority removed the pairing entry after issuance.
	d, err := did.Parse(issuer.DID)
	require.NoError(t, err)

	doc := did.Synthesize(d, did.DefaultNetworkParams)
	doc.VerificationMethod = doc.VerificationMethod[:1]
	doc.AssertionMethod = doc.AssertionMethod[:1]
	reg.override(issuer.DID, doc)

	t.Run("marked issuer is rejected", func(t *testing.T) {
		store.Set(issuer.DID)

		v := newVerifier(reg, store)

		ok, err := v.VerifyCredential(credential)
		require.NoError(t, err)
		assert.False(t, ok, "authoritative document no longer authorizes the key")
	})
}

func TestVerifyPresentationGranularMarking(t *testing.T) {
	reg := newRegistry()
	store := memory.NewMapStore()
	g := did.NewGenerator(did.DefaultMethod)

	issuerA, err := g.GenerateDualDID()
	require.NoError(t, err)

	issuerB, err := g.GenerateDualDID()
	require.NoError(t, err)

	holder, err := g.GenerateDID()
	require.NoError(t, err)

	credentialA := issueCredential(t, issuerA.DID, issuerA.Secrets.BlsPrivateKeyHex)

	rotatedPrivHex := rotateBlsKey(t, reg, issuerB)
	credentialB := issueCredential(t, issuerB.DID, rotatedPrivHex)

	presentation, err := vp.New(holder.DID, []*vc.Credential{credentialA, credentialB})
	require.NoError(t, err)

	err = presentation.AddProof(holder.Secrets.ECDSAPrivateKeyHex,
		vp.WithDocumentLoader(ldtestutil.DocumentLoader()))
	require.NoError(t, err)

	v := newVerifier(reg, store)

	ok, err := v.VerifyPresentation(presentation)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.False(t, store.Has(issuerA.DID), "unmodified issuer keeps the optimistic path")
	assert.True(t, store.Has(issuerB.DID), "only the diverged issuer is marked")
	assert.False(t, store.Has(holder.DID), "holder did not diverge")
}

func TestVerifyPresentationDivergedPresenter(t *testing.T) {
	reg := newRegistry()
	store := memory.NewMapStore()
	g := did.NewGenerator(did.DefaultMethod)

	issuer, err := g.GenerateDualDID()
	require.NoError(t, err)

	holder, err := g.GenerateDID()
	require.NoError(t, err)

	credential := issueCredential(t, issuer.DID, issuer.Secrets.BlsPrivateKeyHex)

	// The holder rotated their controller key: the authoritative document
	// binds a fresh secp256k1 account the synthesized default knows nothing
	// about.
	rotatedKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	rotatedPrivHex := "0x" + hex.EncodeToString(ethcrypto.FromECDSA(rotatedKey))
	rotatedAddress := ethcrypto.PubkeyToAddress(rotatedKey.PublicKey).Hex()

	d, err := did.Parse(holder.DID)
	require.NoError(t, err)

	doc := did.Synthesize(d, did.DefaultNetworkParams)
	doc.VerificationMethod[0].BlockchainAccountID = did.DefaultNetworkParams.AccountID(rotatedAddress)
	reg.override(holder.DID, doc)

	presentation, err := vp.New(holder.DID, []*vc.Credential{credential})
	require.NoError(t, err)

	err = presentation.AddProof(rotatedPrivHex,
		vp.WithDocumentLoader(ldtestutil.DocumentLoader()))
	require.NoError(t, err)

	v := newVerifier(reg, store)

	ok, err := v.VerifyPresentation(presentation)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, store.Has(holder.DID), "presenter divergence is attributed to the holder")
	assert.False(t, store.Has(issuer.DID), "issuer stays unmarked")
}

func TestVerifyPresentationAllDefault(t *testing.T) {
	reg := newRegistry()
	store := memory.NewMapStore()
	g := did.NewGenerator(did.DefaultMethod)

	issuer, err := g.GenerateDualDID()
	require.NoError(t, err)

	holder, err := g.GenerateDID()
	require.NoError(t, err)

	credential := issueCredential(t, issuer.DID, issuer.Secrets.BlsPrivateKeyHex)

	presentation, err := vp.New(holder.DID, []*vc.Credential{credential})
	require.NoError(t, err)

	err = presentation.AddProof(holder.Secrets.ECDSAPrivateKeyHex,
		vp.WithDocumentLoader(ldtestutil.DocumentLoader()))
	require.NoError(t, err)

	v := newVerifier(reg, store)

	ok, err := v.VerifyPresentation(presentation)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, reg.lookupCount(), "fully default participants need no authoritative I/O")
}

package vc

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/mr-tron/base58"

	"github.com/anchorid/go-credential-sdk/credential/common/crypto"
	"github.com/anchorid/go-credential-sdk/credential/common/model"
	"github.com/anchorid/go-credential-sdk/credential/common/provider"
	verificationmethod "github.com/anchorid/go-credential-sdk/credential/common/verification-method"
	"github.com/anchorid/go-credential-sdk/did"
)

var logger = log.New("credential-sdk/vc")

// ProofConfigStatement serializes the proof metadata that is bound into the
// signature as statement zero. The signature value, the embedded key, the
// nonce and any disclosure bounds are excluded so that the statement stays
// identical between the issued credential and every proof derived from it; a
// derived proof's type maps back to the parent signature type for the same
// reason.
func ProofConfigStatement(proof *model.Proof) ([]byte, error) {
	config := proof.Copy()
	config.ProofValue = ""
	config.PublicKeyBase58 = ""
	config.Nonce = ""
	config.ProofBounds = nil

	if config.Type == model.ProofTypeBbsBlsSignatureProof2020 {
		config.Type = model.ProofTypeBbsBlsSignature2020
	}

	statement, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize proof configuration: %w", err)
	}

	return statement, nil
}

// SignedStatements returns the full ordered message set a BBS signature
// covers: the proof configuration statement followed by the canonicalized
// document statements.
func (c *Credential) SignedStatements(proof *model.Proof, opts ...CredentialOpt) ([][]byte, error) {
	configStatement, err := ProofConfigStatement(proof)
	if err != nil {
		return nil, err
	}

	docStatements, err := c.Statements(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize credential: %w", err)
	}

	return append([][]byte{configStatement}, docStatements...), nil
}

// AddBBSProof signs the credential with a BLS12-381 key and attaches a
// BbsBlsSignature2020 proof. The signer's public key is embedded in the proof
// after signing, so the embedded key is never part of the signed statements.
func (c *Credential) AddBBSProof(blsPrivKeyHex string, opts ...CredentialOpt) error {
	o := GetOptions(opts...)

	issuer, err := c.IssuerDID()
	if err != nil {
		return err
	}

	fragment := o.fragment
	if fragment == "" {
		fragment = did.FragmentBBS
	}

	proof := &model.Proof{
		Type:               model.ProofTypeBbsBlsSignature2020,
		Created:            time.Now().UTC().Format(time.RFC3339),
		VerificationMethod: issuer.VerificationMethodID(fragment),
		ProofPurpose:       "assertionMethod",
	}

	messages, err := c.SignedStatements(proof, opts...)
	if err != nil {
		return err
	}

	privKey, err := crypto.KeyToBytes(blsPrivKeyHex)
	if err != nil {
		return fmt.Errorf("failed to decode signing key: %w", err)
	}

	signature, publicKey, err := crypto.BBSSign(messages, privKey)
	if err != nil {
		return fmt.Errorf("failed to sign credential: %w", err)
	}

	proof.ProofValue = signature
	proof.PublicKeyBase58 = base58.Encode(publicKey)

	return c.doc.SetProof(proof)
}

// AddECDSAProof signs the credential digest with the issuer's secp256k1 key
// and attaches an EcdsaSecp256k1RecoverySignature2020 proof.
func (c *Credential) AddECDSAProof(privHex string, opts ...CredentialOpt) error {
	o := GetOptions(opts...)

	issuer, err := c.IssuerDID()
	if err != nil {
		return err
	}

	fragment := o.fragment
	if fragment == "" {
		fragment = did.FragmentController
	}

	return c.doc.AddECDSAProof(privHex, issuer.VerificationMethodID(fragment),
		"assertionMethod", o.procOpts...)
}

// Verify checks the credential's proof. It returns (false, nil) when the
// credential is well formed but invalid, and a non-nil error only when
// verification could not be completed, e.g. the resolver was unreachable.
func (c *Credential) Verify(opts ...CredentialOpt) (bool, error) {
	o := GetOptions(opts...)

	proof, err := c.Proof()
	if err != nil {
		return false, fmt.Errorf("failed to read credential proof: %w", err)
	}

	switch proof.Type {
	case model.ProofTypeBbsBlsSignature2020:
		return c.verifyBBS(proof, o)
	case model.ProofTypeBbsBlsSignatureProof2020:
		return c.verifyBBSDerived(proof, o)
	case model.ProofTypeEcdsaRecovery2020:
		return c.verifyECDSA(proof, o)
	default:
		return false, fmt.Errorf("unsupported proof type %q", proof.Type)
	}
}

func (c *Credential) verifyBBS(proof *model.Proof, o *credentialOptions) (bool, error) {
	method, err := c.resolveMethod(proof, o)
	if err != nil || method == nil {
		return false, err
	}

	messages, err := c.SignedStatements(proof, withOptions(o))
	if err != nil {
		return false, err
	}

	return method.VerifySignature(messages, proof.ProofValue), nil
}

func (c *Credential) verifyBBSDerived(proof *model.Proof, o *credentialOptions) (bool, error) {
	method, err := c.resolveMethod(proof, o)
	if err != nil || method == nil {
		return false, err
	}

	nonce, err := base64.StdEncoding.DecodeString(proof.Nonce)
	if err != nil {
		logger.Debugf("malformed proof nonce: %v", err)

		return false, nil
	}

	revealed, err := c.SignedStatements(proof, withOptions(o))
	if err != nil {
		return false, err
	}

	return method.VerifyDerived(revealed, proof.ProofValue, nonce), nil
}

func (c *Credential) verifyECDSA(proof *model.Proof, o *credentialOptions) (bool, error) {
	method, err := c.resolveMethod(proof, o)
	if err != nil || method == nil {
		return false, err
	}

	address := method.BoundAddress()
	if address == "" {
		logger.Debugf("verification method %s binds no account", proof.VerificationMethod)

		return false, nil
	}

	return c.doc.VerifyECDSAProof(address, o.procOpts...)
}

// resolveMethod resolves the proof's verification method, translating
// resolution failures into the (false, nil) rejection convention. A nil
// method with a nil error means the credential must be rejected.
func (c *Credential) resolveMethod(proof *model.Proof,
	o *credentialOptions) (*verificationmethod.Method, error) {
	method, err := verificationmethod.Resolve(proof, o.provider, !o.authoritative)
	if err != nil {
		if errors.Is(err, provider.ErrResolutionTransport) {
			return nil, err
		}

		logger.Debugf("verification method resolution rejected: %v", err)

		return nil, nil
	}

	return method, nil
}

// withOptions re-packages merged options for nested calls.
func withOptions(o *credentialOptions) CredentialOpt {
	return func(target *credentialOptions) {
		*target = *o
	}
}

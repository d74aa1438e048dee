package did

import (
	"fmt"
	"strings"

	"github.com/anchorid/go-credential-sdk/credential/common/model"
)

// NetworkParams carries the chain parameters used when binding accounts in
// synthesized documents.
type NetworkParams struct {
	ChainID int64
}

// DefaultNetworkParams is used when no explicit parameters are supplied.
var DefaultNetworkParams = NetworkParams{ChainID: 1}

// AccountID formats an address as a CAIP-10 account reference.
func (p NetworkParams) AccountID(address string) string {
	return fmt.Sprintf("eip155:%d:%s", p.ChainID, address)
}

// AccountAddress extracts the address from a CAIP-10 account reference.
func AccountAddress(accountID string) string {
	idx := strings.LastIndex(accountID, ":")
	if idx < 0 {
		return accountID
	}

	return accountID[idx+1:]
}

// Synthesize produces the default authority document for an identifier: the
// document that exists when the identifier's authority has never been
// modified on chain. It is pure and deterministic: identical inputs yield
// byte-identical documents.
//
// The #controller entry is the recoverable-key entry bound to the first
// address; the #bbs entry is the pairing-key entry bound to the second
// address of the dual form, or to the sole address otherwise. Both entries
// are authorized for assertion; only #controller is authorized for
// authentication.
func Synthesize(d *DID, params NetworkParams) *model.DIDDocument {
	id := d.String()
	controllerID := d.VerificationMethodID(FragmentController)
	bbsID := d.VerificationMethodID(FragmentBBS)

	return &model.DIDDocument{
		Context: []string{
			"https://w3id.org/security/v1",
			"https://www.w3.org/ns/did/v1",
		},
		ID:         id,
		Controller: id,
		VerificationMethod: []model.VerificationMethodEntry{
			{
				ID:                  controllerID,
				Type:                model.VerificationTypeEcdsaRecovery,
				Controller:          id,
				BlockchainAccountID: params.AccountID(d.Address),
			},
			{
				ID:                  bbsID,
				Type:                model.VerificationTypeBlsRecovery,
				Controller:          id,
				BlockchainAccountID: params.AccountID(d.VerificationAddress()),
			},
		},
		Authentication:  []string{controllerID},
		AssertionMethod: []string{controllerID, bbsID},
	}
}

package provider

import (
	"fmt"

	"github.com/anchorid/go-credential-sdk/credential/common/model"
	"github.com/anchorid/go-credential-sdk/did"
)

type syntheticProvider struct {
	params did.NetworkParams
}

// NewSyntheticProvider creates a resolver that synthesizes the default
// authority document for every identifier, without any network I/O. It is
// the optimistic half of the resolution orchestrator.
func NewSyntheticProvider(params did.NetworkParams) Provider {
	return &syntheticProvider{params: params}
}

func (p *syntheticProvider) DIDResolver(didStr string) (*model.DIDDocument, error) {
	d, err := did.Parse(didStr)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize document: %w", err)
	}

	return did.Synthesize(d, p.params), nil
}

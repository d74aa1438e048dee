package provider

import (
	"github.com/anchorid/go-credential-sdk/credential/common/model"
	"github.com/anchorid/go-credential-sdk/did"
)

type hybridProvider struct {
	authoritative Provider
	fallback      Provider
	selected      []string
}

// NewHybridProvider routes resolution of the selected identifiers to the
// authoritative resolver and everything else to the fallback. It is used to
// test a single participant's divergence in isolation.
func NewHybridProvider(authoritative, fallback Provider, selected ...string) Provider {
	return &hybridProvider{
		authoritative: authoritative,
		fallback:      fallback,
		selected:      selected,
	}
}

func (p *hybridProvider) DIDResolver(didStr string) (*model.DIDDocument, error) {
	for _, s := range p.selected {
		if did.Equal(s, didStr) {
			return p.authoritative.DIDResolver(didStr)
		}
	}

	return p.fallback.DIDResolver(didStr)
}

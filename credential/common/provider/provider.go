package provider

import (
	"errors"

	"github.com/anchorid/go-credential-sdk/credential/common/model"
)

// ErrResolutionTransport marks a resolver failure that is not evidence of an
// invalid credential: the authority could not be reached. Callers may retry
// these; cryptographic rejections are never retried.
var ErrResolutionTransport = errors.New("DID resolution transport failure")

// IsTransportError reports whether err stems from a resolver transport
// failure rather than from an invalid credential.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrResolutionTransport)
}

// Provider resolves a DID string into its authority document. The default
// implementation performs network I/O; the synthetic implementation is pure.
type Provider interface {
	DIDResolver(did string) (*model.DIDDocument, error)
}

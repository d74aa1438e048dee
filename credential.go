// Package credential is the SDK entry point. It wires the resolver endpoint
// into every subpackage that performs authoritative DID resolution.
package credential

import (
	"github.com/anchorid/go-credential-sdk/credential/vc"
	"github.com/anchorid/go-credential-sdk/credential/verifier"
)

// Init points the SDK at a DID resolver endpoint. Subpackages fall back to
// the public default when Init is never called.
func Init(baseURL string) {
	vc.Init(baseURL)
	verifier.Init(baseURL)
}

package vp

import (
	"fmt"

	"github.com/anchorid/go-credential-sdk/credential/common/util"
)

// ToCompact serializes the presentation into a gzip-compressed, URL-safe
// string suitable for QR codes and deep links.
func (p *Presentation) ToCompact() (string, error) {
	raw, err := p.ToJSON()
	if err != nil {
		return "", err
	}

	return util.CompressToBase64URL(raw)
}

// ParseCompact parses a presentation produced by ToCompact.
func ParseCompact(compact string, opts ...PresentationOpt) (*Presentation, error) {
	raw, err := util.DecompressFromBase64URL(compact)
	if err != nil {
		return nil, fmt.Errorf("failed to decode compact presentation: %w", err)
	}

	return Parse(raw, opts...)
}

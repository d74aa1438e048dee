package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/anchorid/go-credential-sdk/credential/common/model"
)

var logger = log.New("credential-sdk/provider")

type defaultProvider struct {
	baseURL string
	client  *http.Client
	group   singleflight.Group
}

// NewDefaultProvider creates the authoritative HTTP resolver. Concurrent
// resolutions of the same DID are collapsed into a single request.
func NewDefaultProvider(baseURL string) Provider {
	return &defaultProvider{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (p *defaultProvider) DIDResolver(did string) (*model.DIDDocument, error) {
	doc, err, _ := p.group.Do(did, func() (interface{}, error) {
		return p.resolve(did)
	})
	if err != nil {
		return nil, err
	}

	return doc.(*model.DIDDocument), nil
}

func (p *defaultProvider) resolve(did string) (*model.DIDDocument, error) {
	apiURL := p.baseURL + "/" + url.PathEscape(did)

	logger.Debugf("resolving %s", did)

	resp, err := p.client.Get(apiURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolutionTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: resolver returned non-200 status: %s", ErrResolutionTransport, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read resolver response: %v", ErrResolutionTransport, err)
	}

	var doc model.DIDDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DID document JSON: %w", err)
	}

	return &doc, nil
}

// Package credentialstatus checks StatusList2021 revocation entries: a
// credential points at a hosted bitstring and the bit at its index says
// whether the issuer has revoked it since issuance.
package credentialstatus

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/anchorid/go-credential-sdk/credential/common/jsonmap"
	"github.com/anchorid/go-credential-sdk/credential/common/util"
)

// Client fetches status list credentials over HTTP.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a status client with a sensible default timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Entry extracts the StatusList2021Entry from a credential document. It
// returns (nil, nil) when the credential declares no status.
func Entry(doc jsonmap.JSONMap) (*StatusEntry, error) {
	raw, ok := doc["credentialStatus"]
	if !ok {
		return nil, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentialStatus: %w", err)
	}

	var entry StatusEntry
	if err := json.Unmarshal(encoded, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse credentialStatus: %w", err)
	}

	if entry.Type != StatusTypeStatusList2021 {
		return nil, fmt.Errorf("unsupported credential status type %q", entry.Type)
	}

	return &entry, nil
}

// CheckRevocation resolves a credential's status entry and reports whether
// the credential is revoked. Credentials without a status entry are never
// revoked.
func (c *Client) CheckRevocation(doc jsonmap.JSONMap) (bool, error) {
	entry, err := Entry(doc)
	if err != nil {
		return false, err
	}

	if entry == nil {
		return false, nil
	}

	index, err := strconv.Atoi(entry.StatusListIndex)
	if err != nil {
		return false, fmt.Errorf("invalid statusListIndex %q: %w", entry.StatusListIndex, err)
	}

	list, err := c.fetchEncodedList(entry.StatusListCredential)
	if err != nil {
		return false, err
	}

	return IsRevoked(list, index)
}

func (c *Client) fetchEncodedList(url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("statusListCredential URL is empty")
	}

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch status list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status list endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read status list: %w", err)
	}

	var listCredential StatusListCredential
	if err := json.Unmarshal(body, &listCredential); err != nil {
		return "", fmt.Errorf("failed to parse status list credential: %w", err)
	}

	if listCredential.CredentialSubject.EncodedList == "" {
		return "", fmt.Errorf("status list credential has no encodedList")
	}

	return listCredential.CredentialSubject.EncodedList, nil
}

// IsRevoked checks the bit at index in a base64, gzip-compressed bitstring.
func IsRevoked(encodedList string, index int) (bool, error) {
	compressed, err := base64.StdEncoding.DecodeString(encodedList)
	if err != nil {
		return false, fmt.Errorf("failed to decode status list: %w", err)
	}

	bits, err := util.Decompress(compressed)
	if err != nil {
		return false, fmt.Errorf("failed to decompress status list: %w", err)
	}

	if index < 0 || index/8 >= len(bits) {
		return false, fmt.Errorf("status index %d outside list of %d bits", index, len(bits)*8)
	}

	return bits[index/8]&(1<<(7-uint(index%8))) != 0, nil
}

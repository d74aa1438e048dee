package util

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat(`{"verifiableCredential":[]}`, 50))

	compressed, err := Compress(payload)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(payload))

	decompressed, err := Decompress(compressed)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, decompressed))
}

func TestCompressToBase64URLRoundTrip(t *testing.T) {
	payload := []byte(`{"holder":"did:anchor:0x8ba1f109551bD432803012645Ac136ddd64DBA72"}`)

	encoded, err := CompressToBase64URL(payload)
	require.NoError(t, err)
	assert.NotContains(t, encoded, "+")
	assert.NotContains(t, encoded, "/")
	assert.NotContains(t, encoded, "=")

	decoded, err := DecompressFromBase64URL(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := Decompress([]byte("not gzip"))
	assert.Error(t, err)

	_, err = DecompressFromBase64URL("!!!")
	assert.Error(t, err)
}

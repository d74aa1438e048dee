package did

import (
	"crypto/sha256"
	"strings"
	"testing"

	bbs12381g2pub "github.com/hyperledger/aries-framework-go/component/kmscrypto/crypto/primitive/bbs12381g2pub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorid/go-credential-sdk/credential/common/crypto"
	"github.com/anchorid/go-credential-sdk/credential/common/model"
)

const (
	addrA = "0x8ba1f109551bd432803012645ac136ddd64dba72"
	addrB = "0xd1220a0cf47c7b9be7a2e6ba89f429762e7b9adb"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DID
		wantErr bool
	}{
		{
			name:  "single address",
			input: "did:anchor:" + addrA,
			want:  DID{Method: "anchor", Address: addrA},
		},
		{
			name:  "single address with network",
			input: "did:anchor:testnet:" + addrA,
			want:  DID{Method: "anchor", Network: "testnet", Address: addrA},
		},
		{
			name:  "dual address",
			input: "did:anchor:" + addrA + ":" + addrB,
			want:  DID{Method: "anchor", Address: addrA, BlsAddress: addrB},
		},
		{
			name:  "dual address with network",
			input: "did:anchor:testnet:" + addrA + ":" + addrB,
			want:  DID{Method: "anchor", Network: "testnet", Address: addrA, BlsAddress: addrB},
		},
		{name: "missing did prefix", input: "id:anchor:" + addrA, wantErr: true},
		{name: "missing address", input: "did:anchor", wantErr: true},
		{name: "short address", input: "did:anchor:0x1234", wantErr: true},
		{name: "address without 0x", input: "did:anchor:" + addrA[2:] + "00", wantErr: true},
		{name: "too many segments", input: "did:anchor:net:" + addrA + ":" + addrB + ":" + addrA, wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedDID)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.Method, got.Method)
			assert.Equal(t, tt.want.Network, got.Network)
			assert.True(t, EqualAddresses(tt.want.Address, got.Address))
			assert.True(t, EqualAddresses(tt.want.BlsAddress, got.BlsAddress))
		})
	}
}

func TestParseChecksumsAddresses(t *testing.T) {
	d, err := Parse("did:anchor:" + strings.ToUpper(addrA[2:]) + "")
	require.Error(t, err, "uppercase without 0x prefix is not an address")

	d, err = Parse("did:anchor:" + addrA)
	require.NoError(t, err)

	// EIP-55 output is mixed case and stable.
	assert.Equal(t, "0x8ba1f109551bD432803012645Ac136ddd64DBA72", d.Address)
	assert.Equal(t, d.String(), "did:anchor:"+d.Address)
}

func TestNormalizeAndEqual(t *testing.T) {
	lower := "did:anchor:" + addrA
	upper := "did:anchor:0x" + strings.ToUpper(addrA[2:])

	normLower, err := Normalize(lower)
	require.NoError(t, err)

	normUpper, err := Normalize(upper)
	require.NoError(t, err)

	assert.Equal(t, normLower, normUpper)
	assert.True(t, Equal(lower, upper))
	assert.False(t, Equal(lower, "did:anchor:"+addrB))
	assert.False(t, Equal(lower, "not-a-did"))
}

func TestVerificationAddress(t *testing.T) {
	single, err := Parse("did:anchor:" + addrA)
	require.NoError(t, err)
	assert.False(t, single.IsDual())
	assert.Equal(t, single.Address, single.VerificationAddress())

	dual, err := Parse("did:anchor:" + addrA + ":" + addrB)
	require.NoError(t, err)
	assert.True(t, dual.IsDual())
	assert.Equal(t, dual.BlsAddress, dual.VerificationAddress())
	assert.NotEqual(t, dual.Address, dual.VerificationAddress())
}

func TestDeriveBlsAddressEncodingsAgree(t *testing.T) {
	seed := sha256.Sum256([]byte("address-derivation-test"))

	pubKey, _, err := bbs12381g2pub.GenerateKeyPair(sha256.New, seed[:])
	require.NoError(t, err)

	compressed, err := pubKey.Marshal()
	require.NoError(t, err)
	require.Len(t, compressed, crypto.BlsCompressedKeyLength)

	uncompressed, err := crypto.UncompressBlsPublicKey(compressed)
	require.NoError(t, err)
	require.Len(t, uncompressed, crypto.BlsUncompressedKeyLength)

	fromCompressed, err := DeriveBlsAddress(compressed)
	require.NoError(t, err)

	fromUncompressed, err := DeriveBlsAddress(uncompressed)
	require.NoError(t, err)

	assert.Equal(t, fromCompressed, fromUncompressed)
	assert.Regexp(t, "^0x[0-9a-fA-F]{40}$", fromCompressed)

	again, err := DeriveBlsAddress(compressed)
	require.NoError(t, err)
	assert.Equal(t, fromCompressed, again)
}

func TestSynthesize(t *testing.T) {
	dual, err := Parse("did:anchor:" + addrA + ":" + addrB)
	require.NoError(t, err)

	doc := Synthesize(dual, DefaultNetworkParams)
	require.Len(t, doc.VerificationMethod, 2)

	controller := doc.FindVerificationMethod(dual.VerificationMethodID(FragmentController))
	require.NotNil(t, controller)
	assert.Equal(t, model.VerificationTypeEcdsaRecovery, controller.Type)
	assert.Equal(t, DefaultNetworkParams.AccountID(dual.Address), controller.BlockchainAccountID)

	bbs := doc.FindVerificationMethod(dual.VerificationMethodID(FragmentBBS))
	require.NotNil(t, bbs)
	assert.Equal(t, model.VerificationTypeBlsRecovery, bbs.Type)
	assert.Equal(t, DefaultNetworkParams.AccountID(dual.BlsAddress), bbs.BlockchainAccountID)

	assert.True(t, doc.HasCapability("assertionMethod", bbs.ID))
	assert.True(t, doc.HasCapability("authentication", controller.ID))
	assert.False(t, doc.HasCapability("authentication", bbs.ID))
}

func TestSynthesizeSingleBindsBothEntriesToSoleAddress(t *testing.T) {
	single, err := Parse("did:anchor:" + addrA)
	require.NoError(t, err)

	doc := Synthesize(single, DefaultNetworkParams)
	require.Len(t, doc.VerificationMethod, 2)

	for _, entry := range doc.VerificationMethod {
		assert.Equal(t, DefaultNetworkParams.AccountID(single.Address), entry.BlockchainAccountID)
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	d, err := Parse("did:anchor:testnet:" + addrA + ":" + addrB)
	require.NoError(t, err)

	first := Synthesize(d, NetworkParams{ChainID: 5})
	second := Synthesize(d, NetworkParams{ChainID: 5})

	assert.Equal(t, first, second)
}

func TestGenerator(t *testing.T) {
	g := NewGenerator("", WithNetwork("testnet"))

	t.Run("single", func(t *testing.T) {
		reg, err := g.GenerateDID()
		require.NoError(t, err)

		d, err := Parse(reg.DID)
		require.NoError(t, err)
		assert.Equal(t, DefaultMethod, d.Method)
		assert.Equal(t, "testnet", d.Network)
		assert.False(t, d.IsDual())
		assert.NotEmpty(t, reg.Secrets.ECDSAPrivateKeyHex)
		assert.Equal(t, reg.DID, reg.Document.ID)
	})

	t.Run("dual", func(t *testing.T) {
		reg, err := g.GenerateDualDID()
		require.NoError(t, err)

		d, err := Parse(reg.DID)
		require.NoError(t, err)
		assert.True(t, d.IsDual())
		assert.NotEmpty(t, reg.Secrets.ECDSAPrivateKeyHex)
		assert.NotEmpty(t, reg.Secrets.BlsPrivateKeyHex)
	})

	t.Run("bls single", func(t *testing.T) {
		reg, err := g.GenerateBlsDID()
		require.NoError(t, err)

		d, err := Parse(reg.DID)
		require.NoError(t, err)
		assert.False(t, d.IsDual())
		assert.Empty(t, reg.Secrets.ECDSAPrivateKeyHex)
		assert.NotEmpty(t, reg.Secrets.BlsPrivateKeyHex)

		// The sole address is the pairing-key address, so it is also the
		// verification address.
		privBytes, err := crypto.KeyToBytes(reg.Secrets.BlsPrivateKeyHex)
		require.NoError(t, err)

		priv, err := bbs12381g2pub.UnmarshalPrivateKey(privBytes)
		require.NoError(t, err)

		pub, err := priv.PublicKey().Marshal()
		require.NoError(t, err)

		addr, err := DeriveBlsAddress(pub)
		require.NoError(t, err)
		assert.True(t, EqualAddresses(addr, d.VerificationAddress()))
	})
}

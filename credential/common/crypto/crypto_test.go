package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	bbs12381g2pub "github.com/hyperledger/aries-framework-go/component/kmscrypto/crypto/primitive/bbs12381g2pub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateBlsKeyPair(t *testing.T, seed string) (priv, pub []byte) {
	t.Helper()

	digest := sha256.Sum256([]byte(seed))

	pubKey, privKey, err := bbs12381g2pub.GenerateKeyPair(sha256.New, digest[:])
	require.NoError(t, err)

	priv, err = privKey.Marshal()
	require.NoError(t, err)

	pub, err = pubKey.Marshal()
	require.NoError(t, err)

	return priv, pub
}

func TestBBSSignVerify(t *testing.T) {
	priv, pub := generateBlsKeyPair(t, "bbs-sign-verify")

	messages := [][]byte{
		[]byte("statement one"),
		[]byte("statement two"),
		[]byte("statement three"),
	}

	proofValue, signerPub, err := BBSSign(messages, priv)
	require.NoError(t, err)
	assert.Equal(t, pub, signerPub, "returned key is the signer's compressed key")

	assert.True(t, BBSVerify(messages, pub, proofValue))

	t.Run("tampered message", func(t *testing.T) {
		tampered := [][]byte{messages[0], []byte("statement 2"), messages[2]}
		assert.False(t, BBSVerify(tampered, pub, proofValue))
	})

	t.Run("wrong key", func(t *testing.T) {
		_, otherPub := generateBlsKeyPair(t, "bbs-other-key")
		assert.False(t, BBSVerify(messages, otherPub, proofValue))
	})

	t.Run("garbage proof value", func(t *testing.T) {
		assert.False(t, BBSVerify(messages, pub, "not-base64!"))
		assert.False(t, BBSVerify(messages, pub, "AAAA"))
	})

	t.Run("garbage key never panics", func(t *testing.T) {
		assert.False(t, BBSVerify(messages, []byte{0x01, 0x02}, proofValue))
	})
}

func TestBBSDeriveProof(t *testing.T) {
	priv, pub := generateBlsKeyPair(t, "bbs-derive")

	messages := [][]byte{
		[]byte("config"),
		[]byte("name is hidden"),
		[]byte("degree is revealed"),
		[]byte("age is hidden"),
	}

	proofValue, _, err := BBSSign(messages, priv)
	require.NoError(t, err)

	nonce := []byte("verifier-nonce")
	revealed := []int{0, 2}

	derived, err := BBSDeriveProof(messages, proofValue, nonce, pub, revealed)
	require.NoError(t, err)

	revealedMessages := [][]byte{messages[0], messages[2]}
	assert.True(t, BBSVerifyProof(revealedMessages, derived, nonce, pub))

	t.Run("wrong nonce", func(t *testing.T) {
		assert.False(t, BBSVerifyProof(revealedMessages, derived, []byte("other"), pub))
	})

	t.Run("wrong revealed set", func(t *testing.T) {
		assert.False(t, BBSVerifyProof([][]byte{messages[0], messages[1]}, derived, nonce, pub))
	})
}

func TestECDSASignRecover(t *testing.T) {
	privKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	privHex := "0x" + hex.EncodeToString(ethcrypto.FromECDSA(privKey))
	address := ethcrypto.PubkeyToAddress(privKey.PublicKey).Hex()

	digest := sha256.Sum256([]byte("document digest"))

	signature, err := ECDSASign(digest[:], privHex)
	require.NoError(t, err)

	rawSignature, err := hex.DecodeString(signature)
	require.NoError(t, err)

	recovered, err := ECDSARecoverAddress(digest[:], rawSignature)
	require.NoError(t, err)
	assert.Equal(t, address, recovered)

	assert.True(t, ECDSAVerifyByAddress(digest[:], signature, address))

	t.Run("wrong digest", func(t *testing.T) {
		other := sha256.Sum256([]byte("another document"))
		assert.False(t, ECDSAVerifyByAddress(other[:], signature, address))
	})

	t.Run("wrong address", func(t *testing.T) {
		assert.False(t, ECDSAVerifyByAddress(digest[:], signature, "0x8ba1f109551bD432803012645Ac136ddd64DBA72"))
	})

	t.Run("garbage signature", func(t *testing.T) {
		assert.False(t, ECDSAVerifyByAddress(digest[:], "zz", address))
	})
}

func TestNormalizeBlsPublicKey(t *testing.T) {
	_, pub := generateBlsKeyPair(t, "normalize")

	normalized, err := NormalizeBlsPublicKey(pub)
	require.NoError(t, err)
	assert.Equal(t, pub, normalized, "compressed input is already canonical")

	uncompressed, err := UncompressBlsPublicKey(pub)
	require.NoError(t, err)
	require.Len(t, uncompressed, BlsUncompressedKeyLength)

	fromUncompressed, err := NormalizeBlsPublicKey(uncompressed)
	require.NoError(t, err)
	assert.Equal(t, pub, fromUncompressed, "both encodings normalize to identical bytes")

	t.Run("bad length", func(t *testing.T) {
		_, err := NormalizeBlsPublicKey(make([]byte, 48))
		assert.ErrorIs(t, err, ErrInvalidKeyLength)
	})

	t.Run("not a point", func(t *testing.T) {
		garbage := make([]byte, BlsCompressedKeyLength)
		for i := range garbage {
			garbage[i] = 0xff
		}

		_, err := NormalizeBlsPublicKey(garbage)
		assert.Error(t, err)
	})
}

func TestDecompressSecpPublicKey(t *testing.T) {
	privKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	uncompressed := ethcrypto.FromECDSAPub(&privKey.PublicKey)
	compressed := ethcrypto.CompressPubkey(&privKey.PublicKey)

	fromCompressed, err := DecompressSecpPublicKey(compressed)
	require.NoError(t, err)
	assert.Equal(t, uncompressed, fromCompressed)

	fromUncompressed, err := DecompressSecpPublicKey(uncompressed)
	require.NoError(t, err)
	assert.Equal(t, uncompressed, fromUncompressed)

	_, err = DecompressSecpPublicKey(make([]byte, 10))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestKeyToBytes(t *testing.T) {
	want := []byte{0xde, 0xad, 0xbe, 0xef}

	withPrefix, err := KeyToBytes("0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, want, withPrefix)

	withoutPrefix, err := KeyToBytes("deadbeef")
	require.NoError(t, err)
	assert.Equal(t, want, withoutPrefix)

	_, err = KeyToBytes("0xnothex")
	assert.Error(t, err)
}

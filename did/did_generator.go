package did

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	bbs12381g2pub "github.com/hyperledger/aries-framework-go/component/kmscrypto/crypto/primitive/bbs12381g2pub"

	"github.com/anchorid/go-credential-sdk/credential/common/model"
)

// Generator mints identifiers and their default documents. It performs no
// chain interaction; registering attributes on chain is the caller's concern.
type Generator struct {
	method  string
	network string
	params  NetworkParams
}

// GeneratorOpt configures a Generator.
type GeneratorOpt func(*Generator)

// WithNetwork sets the network label minted into identifiers.
func WithNetwork(network string) GeneratorOpt {
	return func(g *Generator) {
		g.network = network
	}
}

// WithNetworkParams sets the chain parameters used for account binding.
func WithNetworkParams(params NetworkParams) GeneratorOpt {
	return func(g *Generator) {
		g.params = params
	}
}

// NewGenerator creates a Generator for the given DID method.
func NewGenerator(method string, opts ...GeneratorOpt) *Generator {
	if method == "" {
		method = DefaultMethod
	}

	g := &Generator{method: method, params: DefaultNetworkParams}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Secrets holds the private keys backing a freshly minted identifier.
type Secrets struct {
	ECDSAPrivateKeyHex string `json:"ecdsaPrivateKeyHex,omitempty"`
	BlsPrivateKeyHex   string `json:"blsPrivateKeyHex,omitempty"`
}

// Registration is the result of minting an identifier: the DID string, its
// default document and the generated secrets.
type Registration struct {
	DID      string            `json:"did"`
	Document model.DIDDocument `json:"document"`
	Secrets  Secrets           `json:"secrets"`
}

// GenerateDID mints a single-address identifier from a fresh secp256k1 key.
func (g *Generator) GenerateDID() (*Registration, error) {
	privHex, address, err := generateECDSAAccount()
	if err != nil {
		return nil, err
	}

	d := &DID{Method: g.method, Network: g.network, Address: address}

	return &Registration{
		DID:      d.String(),
		Document: *Synthesize(d, g.params),
		Secrets:  Secrets{ECDSAPrivateKeyHex: privHex},
	}, nil
}

// GenerateDualDID mints a dual-address identifier binding a fresh secp256k1
// account and a fresh BLS12-381 G2 account.
func (g *Generator) GenerateDualDID() (*Registration, error) {
	ecdsaPrivHex, address, err := generateECDSAAccount()
	if err != nil {
		return nil, err
	}

	blsPrivHex, blsAddress, err := generateBlsAccount()
	if err != nil {
		return nil, err
	}

	d := &DID{Method: g.method, Network: g.network, Address: address, BlsAddress: blsAddress}

	return &Registration{
		DID:      d.String(),
		Document: *Synthesize(d, g.params),
		Secrets: Secrets{
			ECDSAPrivateKeyHex: ecdsaPrivHex,
			BlsPrivateKeyHex:   blsPrivHex,
		},
	}, nil
}

// GenerateBlsDID mints a single-address identifier whose address is derived
// from a fresh BLS12-381 G2 key. Credentials issued under it verify through
// the embedded-key recovery path.
func (g *Generator) GenerateBlsDID() (*Registration, error) {
	blsPrivHex, blsAddress, err := generateBlsAccount()
	if err != nil {
		return nil, err
	}

	d := &DID{Method: g.method, Network: g.network, Address: blsAddress}

	return &Registration{
		DID:      d.String(),
		Document: *Synthesize(d, g.params),
		Secrets:  Secrets{BlsPrivateKeyHex: blsPrivHex},
	}, nil
}

func generateECDSAAccount() (privHex, address string, err error) {
	privateKey, err := ethcrypto.GenerateKey()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return "", "", fmt.Errorf("error casting public key to ECDSA")
	}

	privHex = "0x" + hex.EncodeToString(ethcrypto.FromECDSA(privateKey))

	return privHex, ethcrypto.PubkeyToAddress(*publicKey).Hex(), nil
}

func generateBlsAccount() (privHex, address string, err error) {
	pubKey, privKey, err := bbs12381g2pub.GenerateKeyPair(sha256.New, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate BLS key pair: %w", err)
	}

	privBytes, err := privKey.Marshal()
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal BLS private key: %w", err)
	}

	pubBytes, err := pubKey.Marshal()
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal BLS public key: %w", err)
	}

	address, err = DeriveBlsAddress(pubBytes)
	if err != nil {
		return "", "", err
	}

	return "0x" + hex.EncodeToString(privBytes), address, nil
}

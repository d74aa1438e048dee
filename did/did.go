package did

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrMalformedDID is returned when an identifier string does not match the
// did:<method>[:network]:<address>[:<address>] grammar.
var ErrMalformedDID = errors.New("malformed DID")

// DefaultMethod is the method name used when minting identifiers.
const DefaultMethod = "anchor"

// Fragment convention for synthesized verification methods.
const (
	FragmentController = "controller"
	FragmentBBS        = "bbs"
)

var (
	methodPattern  = regexp.MustCompile(`^[a-z0-9]+$`)
	networkPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// DID is a parsed identifier. The single-address form binds one account; the
// dual-address form binds a secp256k1-derived account (first slot) and a
// BLS12-381 G2-derived account (second slot). A DID is immutable once parsed.
type DID struct {
	Method     string
	Network    string
	Address    string
	BlsAddress string
}

// Parse parses an identifier string into a DID. The dual-address form is
// matched first; the single-address form is the fallback. Addresses are
// re-checksummed so that String() output is canonical.
func Parse(s string) (*DID, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || parts[0] != "did" || !methodPattern.MatchString(parts[1]) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedDID, s)
	}

	d := &DID{Method: parts[1]}
	rest := parts[2:]

	switch {
	case len(rest) == 3 && networkPattern.MatchString(rest[0]) &&
		isAddress(rest[1]) && isAddress(rest[2]):
		d.Network = rest[0]
		d.Address = checksum(rest[1])
		d.BlsAddress = checksum(rest[2])
	case len(rest) == 2 && isAddress(rest[0]) && isAddress(rest[1]):
		d.Address = checksum(rest[0])
		d.BlsAddress = checksum(rest[1])
	case len(rest) == 2 && networkPattern.MatchString(rest[0]) && isAddress(rest[1]):
		d.Network = rest[0]
		d.Address = checksum(rest[1])
	case len(rest) == 1 && isAddress(rest[0]):
		d.Address = checksum(rest[0])
	default:
		return nil, fmt.Errorf("%w: %q", ErrMalformedDID, s)
	}

	return d, nil
}

// Normalize parses an identifier and re-serializes it in canonical form.
func Normalize(s string) (string, error) {
	d, err := Parse(s)
	if err != nil {
		return "", err
	}

	return d.String(), nil
}

// Equal reports whether two identifier strings name the same DID, ignoring
// checksum casing.
func Equal(a, b string) bool {
	da, err := Parse(a)
	if err != nil {
		return false
	}

	db, err := Parse(b)
	if err != nil {
		return false
	}

	return strings.EqualFold(da.String(), db.String())
}

// IsDual reports whether the identifier binds two addresses.
func (d *DID) IsDual() bool {
	return d.BlsAddress != ""
}

// VerificationAddress returns the address a pairing-key proof is checked
// against: the second slot for the dual form, the only slot otherwise.
func (d *DID) VerificationAddress() string {
	if d.IsDual() {
		return d.BlsAddress
	}

	return d.Address
}

// String re-serializes the DID. Round-trips with Parse modulo checksum
// casing of the input.
func (d *DID) String() string {
	var b strings.Builder

	b.WriteString("did:")
	b.WriteString(d.Method)

	if d.Network != "" {
		b.WriteString(":")
		b.WriteString(d.Network)
	}

	b.WriteString(":")
	b.WriteString(d.Address)

	if d.BlsAddress != "" {
		b.WriteString(":")
		b.WriteString(d.BlsAddress)
	}

	return b.String()
}

// VerificationMethodID builds the id of the verification method with the
// given fragment.
func (d *DID) VerificationMethodID(fragment string) string {
	return d.String() + "#" + fragment
}

func isAddress(s string) bool {
	return addressPattern.MatchString(s)
}

func checksum(addr string) string {
	return common.HexToAddress(addr).Hex()
}

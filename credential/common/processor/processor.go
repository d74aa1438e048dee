// Package processor provides the canonicalization boundary of the SDK: it
// turns JSON-LD documents into ordered statement sets for multi-message
// signing and into digests for single-signature proofs.
package processor

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/piprate/json-gold/ld"
)

const (
	format           = "application/n-quads"
	defaultAlgorithm = "URDNA2015"
)

// Options holds canonicalization configuration.
type Options struct {
	DocumentLoader ld.DocumentLoader
	Algorithm      string
}

// Opt configures canonicalization.
type Opt func(*Options)

// WithDocumentLoader sets the JSON-LD document loader. Callers that must not
// perform network I/O supply a preloaded loader here.
func WithDocumentLoader(loader ld.DocumentLoader) Opt {
	return func(o *Options) {
		o.DocumentLoader = loader
	}
}

func prepareOpts(opts []Opt) *Options {
	o := &Options{
		DocumentLoader: ld.NewDefaultDocumentLoader(nil),
		Algorithm:      defaultAlgorithm,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Normalize returns the canonical N-Quads form of a JSON-LD document.
func Normalize(doc map[string]interface{}, opts ...Opt) (string, error) {
	o := prepareOpts(opts)

	plain, err := jsonRoundTrip(doc)
	if err != nil {
		return "", err
	}

	ldOptions := ld.NewJsonLdOptions("")
	ldOptions.ProcessingMode = ld.JsonLd_1_1
	ldOptions.Algorithm = o.Algorithm
	ldOptions.Format = format
	ldOptions.ProduceGeneralizedRdf = true
	ldOptions.DocumentLoader = o.DocumentLoader

	proc := ld.NewJsonLdProcessor()

	view, err := proc.Normalize(plain, ldOptions)
	if err != nil {
		return "", fmt.Errorf("failed to normalize JSON-LD document: %w", err)
	}

	result, ok := view.(string)
	if !ok {
		return "", errors.New("failed to normalize JSON-LD document, invalid view")
	}

	return result, nil
}

// Statements canonicalizes a document and splits it into its individual
// statements, the unit of selective disclosure.
func Statements(doc map[string]interface{}, opts ...Opt) ([][]byte, error) {
	normalized, err := Normalize(doc, opts...)
	if err != nil {
		return nil, err
	}

	return SplitStatements(normalized), nil
}

// SplitStatements splits a canonical document into statement lines.
func SplitStatements(normalized string) [][]byte {
	lines := strings.Split(normalized, "\n")
	statements := make([][]byte, 0, len(lines))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		statements = append(statements, []byte(line))
	}

	return statements
}

// Digest returns the SHA-256 digest of the canonical document.
func Digest(doc map[string]interface{}, opts ...Opt) ([]byte, error) {
	normalized, err := Normalize(doc, opts...)
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256([]byte(normalized))

	return digest[:], nil
}

// RevealedIndexes maps each revealed statement to its position in the full
// statement set. Duplicate statements are consumed left to right. A revealed
// statement absent from the full set is an error: it means the reveal
// document drifted from the signed document.
func RevealedIndexes(all, revealed [][]byte) ([]int, error) {
	used := make([]bool, len(all))
	indexes := make([]int, 0, len(revealed))

	for _, statement := range revealed {
		found := -1

		for i, candidate := range all {
			if !used[i] && bytes.Equal(candidate, statement) {
				found = i

				break
			}
		}

		if found < 0 {
			return nil, fmt.Errorf("revealed statement not present in source document: %s", statement)
		}

		used[found] = true
		indexes = append(indexes, found)
	}

	return indexes, nil
}

func jsonRoundTrip(doc map[string]interface{}) (map[string]interface{}, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	var plain map[string]interface{}
	if err := json.Unmarshal(encoded, &plain); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return plain, nil
}

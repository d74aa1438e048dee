// Package ldtestutil supplies an offline JSON-LD document loader with the
// contexts used across the SDK's tests, so canonicalization never touches
// the network.
package ldtestutil

import (
	"fmt"
	"strings"

	"github.com/piprate/json-gold/ld"
)

// Context URLs served by the test loader.
const (
	ContextCredentials = "https://www.w3.org/2018/credentials/v1"
	ContextExamples    = "https://example.org/credentials/examples/v1"
)

const credentialsContext = `{
  "@context": {
    "@version": 1.1,
    "id": "@id",
    "type": "@type",
    "cred": "https://www.w3.org/2018/credentials#",
    "xsd": "http://www.w3.org/2001/XMLSchema#",
    "VerifiableCredential": "cred:VerifiableCredential",
    "VerifiablePresentation": "cred:VerifiablePresentation",
    "verifiableCredential": {"@id": "cred:verifiableCredential", "@type": "@id", "@container": "@graph"},
    "credentialSubject": {"@id": "cred:credentialSubject", "@type": "@id"},
    "issuer": {"@id": "cred:issuer", "@type": "@id"},
    "holder": {"@id": "cred:holder", "@type": "@id"},
    "issuanceDate": {"@id": "cred:issuanceDate", "@type": "xsd:dateTime"},
    "expirationDate": {"@id": "cred:expirationDate", "@type": "xsd:dateTime"}
  }
}`

const examplesContext = `{
  "@context": {
    "@version": 1.1,
    "ex": "https://example.org/examples#",
    "schema": "https://schema.org/",
    "xsd": "http://www.w3.org/2001/XMLSchema#",
    "AlumniCredential": "ex:AlumniCredential",
    "BachelorDegree": "ex:BachelorDegree",
    "alumniOf": {"@id": "schema:alumniOf"},
    "givenName": {"@id": "schema:givenName"},
    "familyName": {"@id": "schema:familyName"},
    "degree": {"@id": "ex:degree", "@type": "@id"},
    "degreeType": {"@id": "ex:degreeType"},
    "age": {"@id": "schema:age", "@type": "xsd:integer"}
  }
}`

type staticLoader struct {
	docs map[string]interface{}
}

func (l *staticLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	doc, ok := l.docs[u]
	if !ok {
		return nil, fmt.Errorf("context %q not preloaded", u)
	}

	return &ld.RemoteDocument{DocumentURL: u, Document: doc}, nil
}

// DocumentLoader returns a loader preloaded with the test contexts.
func DocumentLoader() ld.DocumentLoader {
	docs := make(map[string]interface{})

	for url, raw := range map[string]string{
		ContextCredentials: credentialsContext,
		ContextExamples:    examplesContext,
	} {
		doc, err := ld.DocumentFromReader(strings.NewReader(raw))
		if err != nil {
			panic(fmt.Sprintf("invalid embedded context %s: %v", url, err))
		}

		docs[url] = doc
	}

	return &staticLoader{docs: docs}
}

package vc

import (
	"fmt"
	"time"

	"github.com/anchorid/go-credential-sdk/credential/common/jsonmap"
)

// Subject is one credentialSubject entry.
type Subject struct {
	ID           string
	CustomFields map[string]interface{}
}

// CredentialContents is the structured input for building a credential.
type CredentialContents struct {
	Context      []string
	ID           string
	Types        []string
	Issuer       string
	IssuanceDate string
	Subject      []Subject
}

func serializeSubject(s *Subject) map[string]interface{} {
	out := make(map[string]interface{}, len(s.CustomFields)+1)

	for k, v := range s.CustomFields {
		out[k] = v
	}

	if s.ID != "" {
		out["id"] = s.ID
	}

	return out
}

func serializeCredentialContents(contents *CredentialContents) (jsonmap.JSONMap, error) {
	if contents.Issuer == "" {
		return nil, fmt.Errorf("issuer is required")
	}

	if len(contents.Subject) == 0 {
		return nil, fmt.Errorf("at least one credential subject is required")
	}

	m := jsonmap.JSONMap{}

	context := contents.Context
	if len(context) == 0 {
		context = []string{"https://www.w3.org/2018/credentials/v1"}
	}

	m["@context"] = toInterfaceSlice(context)

	if contents.ID != "" {
		m["id"] = contents.ID
	}

	types := contents.Types
	if len(types) == 0 {
		types = []string{"VerifiableCredential"}
	}

	m["type"] = toInterfaceSlice(types)
	m["issuer"] = contents.Issuer

	issuanceDate := contents.IssuanceDate
	if issuanceDate == "" {
		issuanceDate = time.Now().UTC().Format(time.RFC3339)
	}

	m["issuanceDate"] = issuanceDate

	if len(contents.Subject) == 1 {
		m["credentialSubject"] = serializeSubject(&contents.Subject[0])
	} else {
		subjects := make([]interface{}, len(contents.Subject))
		for i := range contents.Subject {
			subjects[i] = serializeSubject(&contents.Subject[i])
		}

		m["credentialSubject"] = subjects
	}

	return m, nil
}

func toInterfaceSlice(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}

	return out
}

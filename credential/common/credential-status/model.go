package credentialstatus

// StatusTypeStatusList2021 is the supported credentialStatus entry type.
const StatusTypeStatusList2021 = "StatusList2021Entry"

// StatusEntry is a credential's credentialStatus field.
type StatusEntry struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	StatusPurpose        string `json:"statusPurpose"`
	StatusListIndex      string `json:"statusListIndex"`
	StatusListCredential string `json:"statusListCredential"`
}

// StatusListCredential is the hosted credential carrying the status
// bitstring.
type StatusListCredential struct {
	ID                string `json:"id"`
	CredentialSubject struct {
		Type          string `json:"type"`
		StatusPurpose string `json:"statusPurpose"`
		EncodedList   string `json:"encodedList"`
	} `json:"credentialSubject"`
}

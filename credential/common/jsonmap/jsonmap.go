package jsonmap

import (
	"encoding/json"
	"fmt"

	"github.com/anchorid/go-credential-sdk/credential/common/model"
)

// JSONMap represents a JSON object as a map.
type JSONMap map[string]interface{}

// FromJSON parses raw JSON into a JSONMap.
func FromJSON(raw []byte) (JSONMap, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("JSON string is empty")
	}

	var m JSONMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON object: %w", err)
	}

	return m, nil
}

// ToJSON serializes the JSONMap to JSON.
func (m *JSONMap) ToJSON() ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("JSONMap is nil")
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSONMap: %w", err)
	}

	return data, nil
}

// Copy returns a deep copy of the JSONMap.
func (m JSONMap) Copy() (JSONMap, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSONMap: %w", err)
	}

	var cp JSONMap
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to copy JSONMap: %w", err)
	}

	return cp, nil
}

// WithoutProof returns a shallow copy of the JSONMap with the proof field
// removed. The returned map is the byte source for signing and verification.
func (m JSONMap) WithoutProof() JSONMap {
	cp := make(JSONMap, len(m))

	for k, v := range m {
		if k != "proof" {
			cp[k] = v
		}
	}

	return cp
}

// Proof extracts and parses the proof field. A proof stored as a
// single-element array is unwrapped.
func (m JSONMap) Proof() (*model.Proof, error) {
	raw, ok := m["proof"]
	if !ok || raw == nil {
		return nil, fmt.Errorf("document has no proof")
	}

	if list, ok := raw.([]interface{}); ok {
		if len(list) == 0 {
			return nil, fmt.Errorf("document has an empty proof list")
		}

		raw = list[0]
	}

	return ParseRawToProof(raw)
}

// SetProof attaches a proof to the JSONMap as a plain JSON object.
func (m JSONMap) SetProof(proof *model.Proof) error {
	if proof == nil {
		return fmt.Errorf("proof is nil")
	}

	data, err := json.Marshal(proof)
	if err != nil {
		return fmt.Errorf("failed to marshal proof: %w", err)
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("failed to serialize proof: %w", err)
	}

	m["proof"] = obj

	return nil
}

// ParseRawToProof converts a decoded JSON value to a Proof.
func ParseRawToProof(raw interface{}) (*model.Proof, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid proof format: expected map[string]interface{}, got %T", raw)
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal proof object: %w", err)
	}

	var proof model.Proof
	if err := json.Unmarshal(data, &proof); err != nil {
		return nil, fmt.Errorf("failed to parse proof: %w", err)
	}

	return &proof, nil
}

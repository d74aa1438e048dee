package processor

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Structural fields disclosed in every derived credential regardless of the
// requested paths.
var alwaysRevealed = []string{"@context", "id", "type", "issuer"}

// BuildRevealDocument constructs the disclosed subset of a credential from
// dot-delimited attribute paths. A path naming an intermediate object
// discloses the whole subtree; a path naming a leaf discloses that field
// only. Structural fields are always carried over, as is the id of a
// partially disclosed credential subject.
func BuildRevealDocument(doc map[string]interface{}, paths []string) (map[string]interface{}, error) {
	reveal := make(map[string]interface{})

	for _, field := range alwaysRevealed {
		if v, ok := doc[field]; ok {
			reveal[field] = v
		}
	}

	for _, path := range paths {
		segments := strings.Split(path, ".")
		if slices.Contains(alwaysRevealed, segments[0]) && len(segments) == 1 {
			continue
		}

		if err := copyPath(doc, reveal, segments, path); err != nil {
			return nil, err
		}
	}

	// A partially disclosed subject keeps its id so the statement subject
	// stays stable across canonicalizations.
	if subject, ok := reveal["credentialSubject"].(map[string]interface{}); ok {
		if source, ok := doc["credentialSubject"].(map[string]interface{}); ok {
			if id, ok := source["id"]; ok {
				subject["id"] = id
			}
		}
	}

	return reveal, nil
}

// SelectValue walks a dot-delimited path through nested objects.
func SelectValue(doc map[string]interface{}, path string) (interface{}, bool) {
	segments := strings.Split(path, ".")
	var current interface{} = doc

	for _, segment := range segments {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}

		current, ok = obj[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

func copyPath(source, target map[string]interface{}, segments []string, fullPath string) error {
	key := segments[0]

	value, ok := source[key]
	if !ok {
		return fmt.Errorf("reveal path %q not found in credential", fullPath)
	}

	if len(segments) == 1 {
		target[key] = value

		return nil
	}

	sourceChild, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("reveal path %q traverses a non-object field", fullPath)
	}

	targetChild, ok := target[key].(map[string]interface{})
	if !ok {
		targetChild = make(map[string]interface{})
		target[key] = targetChild
	}

	return copyPath(sourceChild, targetChild, segments[1:], fullPath)
}

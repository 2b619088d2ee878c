// Package signature computes content signatures over metric data. The same
// semantic content always hashes to the same value, so callers can detect
// "nothing changed" without comparing documents field by field.
package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of v's canonical JSON encoding. v must only
// contain semantically meaningful fields: no timestamps, no row identifiers.
// Map keys are sorted by the encoder, so field order in v's maps does not
// affect the result.
func Hash(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

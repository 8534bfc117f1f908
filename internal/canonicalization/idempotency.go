// Package canonicalization provides deterministic ID generation shared
// across task-lifecycle operations.
package canonicalization

import (
	"crypto/sha256"
	"encoding/hex"
)

// GenerateIdempotencyKeyFromParts generates a deterministic idempotency key
// from an ordered sequence of stable components.
//
// Parameters are concatenated in the order given; callers must pass
// components in a fixed, documented order so identical requests always
// hash identically.
//
// Returns: 64-character lowercase hex string (SHA256 output).
func GenerateIdempotencyKeyFromParts(parts ...string) string {
	var input string
	for _, p := range parts {
		input += p
	}

	return hashSHA256(input)
}

// hashSHA256 computes the SHA256 hash of the input string.
func hashSHA256(input string) string {
	hash := sha256.Sum256([]byte(input))

	return hex.EncodeToString(hash[:])
}

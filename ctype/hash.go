package ctype

import "crypto/sha256"

// Hash returns the SHA-256 digest of t's canonical signature string. Two
// types that print the same signature always hash the same, regardless of
// how they were constructed.
func Hash(t *Type) [32]byte {
	return sha256.Sum256([]byte(t.String()))
}

// Package signature implements the HMAC scheme shared between the desk and
// the dupe platforms: sha256=<hex(HMAC-SHA256(secret, body))> over the exact
// wire bytes. Any re-serialization of the body (key reordering, whitespace)
// invalidates the signature, so callers must sign the bytes they send and
// verify the bytes they received.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Prefix is the scheme tag prepended to the hex digest.
const Prefix = "sha256="

// Sign computes the signature of body under secret.
// Deterministic, no side effects.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return Prefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the expected signature of raw under secret and compares
// it to supplied in constant time. Returns false for a missing, malformed or
// mismatched signature; never panics.
func Verify(raw []byte, supplied, secret string) bool {
	if supplied == "" {
		return false
	}
	expected := Sign(raw, secret)
	return hmac.Equal([]byte(expected), []byte(supplied))
}

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// verifierLength is the provider-mandated code verifier length used by this app.
const verifierLength = 64

const verifierCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

// GenerateVerifier returns a random 64-character PKCE code verifier drawn from
// the RFC 7636 unreserved character set.
func GenerateVerifier() (string, error) {
	buf := make([]byte, verifierLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate code verifier: %w", err)
	}

	for i, b := range buf {
		buf[i] = verifierCharset[int(b)%len(verifierCharset)]
	}
	return string(buf), nil
}

// Challenge derives the S256 code challenge for a verifier: SHA-256 then
// base64url without padding.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

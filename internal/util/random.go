package util

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const sessionTokenBytes = 32

// SessionToken returns a fresh URL-safe session token with 256 bits of
// entropy from crypto/rand.
func SessionToken() string {
	b, err := RandomBytes(sessionTokenBytes)
	if err != nil {
		// crypto/rand never fails on supported platforms; a failure here
		// means the process cannot do anything security-relevant.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// RandomBytes returns n bytes from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generating random bytes: %w", err)
	}
	return b, nil
}

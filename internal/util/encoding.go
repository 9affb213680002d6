package util

import (
	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC normalization. Passwords are normalized before
// hashing and verification so that visually identical input encoded
// differently by client platforms still matches.
func Normalize(s string) string {
	return norm.NFKC.String(s)
}

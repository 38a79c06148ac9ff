package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomString returns a URL-safe random string from n bytes of entropy.
func RandomString(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

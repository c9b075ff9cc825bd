package config

import (
	"math/rand"
	"time"
)

// identifierCharset matches what spec.md calls "filename-safe": lowercase
// letters and digits only, safe to embed directly in a segment filename.
const identifierCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

const identifierLength = 8

// NewIdentifier returns a short opaque token, at least identifierLength
// characters, fit to prefix every artifact filename for one Stream.
// Uniqueness against the live registry is the registry's job, not this
// generator's; callers retry on collision.
func NewIdentifier() string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	res := make([]byte, identifierLength)
	for i := range res {
		res[i] = identifierCharset[r.Intn(len(identifierCharset))]
	}
	return string(res)
}

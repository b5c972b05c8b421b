package random

import (
	"crypto/rand"
	"math/big"
)

// Random is the randomness source injected into deals, join codes, and
// strategies, so tests can queue outcomes
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String draws a string of the given length from the alphabet
	String(length int, alphabet string) string
}

type cryptoSource struct{}

// New returns a Random backed by crypto/rand
func New() Random {
	return cryptoSource{}
}

func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func (s cryptoSource) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[s.Intn(len(alphabet))]
	}
	return string(out)
}

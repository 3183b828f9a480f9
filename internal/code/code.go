package code

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Alphabet is the fixed allow-list for join codes: uppercase letters and
// digits with the visually ambiguous 0/O/1/I removed. 32 symbols.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Length of a join code. 32^5 codes vastly exceeds concurrent room counts.
const Length = 5

// Generate produces a random join code. It does not check for collisions;
// reservation against live rooms is the room store's job.
func Generate() (string, error) {
	out := make([]byte, Length)
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(Alphabet))))
		if err != nil {
			return "", err
		}
		out[i] = Alphabet[n.Int64()]
	}
	return string(out), nil
}

// Normalize prepares a human-entered code for lookup: trimmed and uppercased.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

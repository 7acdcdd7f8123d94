// Package random generates cryptographically secure random strings,
// used for collision-free upload filenames.
package random

import "crypto/rand"

// TokenLen is the default token length (~95 bits of entropy over the standard charset).
const TokenLen = 16

// stdChars is the set of characters allowed in generated tokens.
var stdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// Token returns a new random string of the default length.
func Token() string {
	return TokenN(TokenLen)
}

// TokenN returns a new random string of length n consisting of standard characters.
func TokenN(n int) string {
	if n == 0 {
		return ""
	}

	clen := len(stdChars)
	// reject byte values above maxRb to avoid modulo bias
	maxRb := 255 - (256 % clen)

	out := make([]byte, n)
	buf := make([]byte, n*2)

	i := 0
	for {
		if _, err := rand.Read(buf); err != nil {
			panic("random: error reading random bytes: " + err.Error())
		}

		for _, rb := range buf {
			if int(rb) > maxRb {
				continue
			}

			out[i] = stdChars[int(rb)%clen]
			i++

			if i == n {
				return string(out)
			}
		}
	}
}

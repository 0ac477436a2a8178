package registry

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Token is a 32-character lowercase hex bearer credential. It is a
// single-field wrapper, not a string alias, so a token cannot be
// confused with an arbitrary string at call sites.
type Token struct {
	value string
}

// String returns the 32-hex representation.
func (t Token) String() string {
	return t.value
}

// Empty reports the zero Token.
func (t Token) Empty() bool {
	return t.value == ""
}

// newToken draws 128 bits from the OS entropy source and renders them as
// 32 lowercase hex characters, zero-padded.
func newToken() (Token, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return Token{}, fmt.Errorf("generate token: %w", err)
	}
	return Token{value: hex.EncodeToString(buf)}, nil
}

// TokenFromString wraps an externally-supplied token string verbatim:
// a bearer token from a request, or the stored token that snapshot
// restore re-joins with.
func TokenFromString(s string) Token {
	return Token{value: s}
}

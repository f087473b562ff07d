package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// CodeLength is the fixed width of every generated code.
const CodeLength = 6

// NewCode generates a uniformly random 6-digit code in [100000, 999999].
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

// SanitizeCode strips everything but digits from raw user input. Returns the
// cleaned code and whether it has the expected fixed width.
func SanitizeCode(raw string) (string, bool) {
	code := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	return code, len(code) == CodeLength
}

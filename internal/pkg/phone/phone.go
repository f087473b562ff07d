package phone

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidFormat is returned when input cannot be normalized into the
// supported numbering plan.
var ErrInvalidFormat = errors.New("invalid phone format")

// Normalizer canonicalizes raw phone input into a single +<cc><local digits>
// form for one regional numbering plan.
type Normalizer struct {
	countryCode string
	localDigits int
	canonical   *regexp.Regexp
}

// NewNormalizer builds a normalizer for the given country calling code
// (digits only, e.g. "216") and local number length.
func NewNormalizer(countryCode string, localDigits int) *Normalizer {
	return &Normalizer{
		countryCode: countryCode,
		localDigits: localDigits,
		canonical:   regexp.MustCompile(fmt.Sprintf(`^\+%s\d{%d}$`, countryCode, localDigits)),
	}
}

// Normalize canonicalizes raw input. Accepted shapes (for cc=216, 8 digits):
//
//	0XXXXXXXX     local form with trunk zero
//	XXXXXXXX      bare local form
//	216XXXXXXXX   country code without plus
//	+216XXXXXXXX  already canonical
//
// A bare number is treated as country-code form only when its length matches
// exactly; Tunisian mobiles start with 2, so "21612345" is a local number,
// not a truncated "+216" form. Normalize is pure and idempotent.
func (n *Normalizer) Normalize(raw string) (string, error) {
	s := stripPunctuation(raw)
	if s == "" {
		return "", ErrInvalidFormat
	}

	switch {
	case strings.HasPrefix(s, "+"):
		// keep as-is, validated below
	case strings.HasPrefix(s, "0"):
		s = "+" + n.countryCode + s[1:]
	case strings.HasPrefix(s, n.countryCode) && len(s) == len(n.countryCode)+n.localDigits:
		s = "+" + s
	default:
		s = "+" + n.countryCode + s
	}

	if !n.canonical.MatchString(s) {
		return "", ErrInvalidFormat
	}
	return s, nil
}

func stripPunctuation(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}

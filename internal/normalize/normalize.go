// Package normalize cleans user-supplied names before they are stored or compared.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Name returns the canonical form of a tag or ingredient name.
//
// The result is NFC-normalized with surrounding whitespace and NUL bytes
// removed. Case is preserved: "Salt" and "salt" are different names.
func Name(raw string) string {
	s := strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, raw)
	s = norm.NFC.String(s)
	return strings.TrimFunc(s, unicode.IsSpace)
}

// Text trims surrounding whitespace from free-text fields such as titles.
func Text(raw string) string {
	return strings.TrimSpace(norm.NFC.String(raw))
}

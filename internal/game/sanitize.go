package game

import (
	"strings"
	"unicode"
)

// sanitizeInput scrubs one line of client input before it reaches a
// command handler. Telnet clients can leak whole escape sequences into a
// pasted line, not just stray control bytes, so escapes are swallowed as
// sequences; exotic whitespace folds to a plain space and anything
// unprintable is dropped.
func sanitizeInput(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		if r == escapeRune {
			i = skipEscape(runes, i)
			continue
		}
		i++
		switch {
		case r == ' ':
			b.WriteRune(r)
		case r == '\r', r == '\n':
			// line assembly already consumed the terminator; a stray
			// one inside the line is dropped
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case r < 0x20 || r == 0x7f || unicode.IsControl(r):
		case unicode.Is(unicode.Cf, r) || unicode.In(r, unicode.Zl, unicode.Zp):
		case !unicode.IsPrint(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

package game

import (
	"fmt"
	"strings"
)

const (
	AnsiReset     = "\x1b[0m"
	AnsiBold      = "\x1b[1m"
	AnsiDim       = "\x1b[2m"
	AnsiItalic    = "\x1b[3m"
	AnsiUnderline = "\x1b[4m"
	AnsiCyan      = "\x1b[36m"
	AnsiYellow    = "\x1b[33m"
	AnsiGreen     = "\x1b[32m"
	AnsiMagenta   = "\x1b[35m"
)

// Style wraps text with the provided ANSI attributes.
func Style(text string, attrs ...string) string {
	if len(attrs) == 0 {
		return text
	}
	return strings.Join(attrs, "") + text + AnsiReset
}

// HighlightName formats player names consistently.
func HighlightName(name string) string {
	return Style(name, AnsiBold, AnsiCyan)
}

// HighlightNames formats each name in the slice.
func HighlightNames(list []string) []string {
	out := make([]string, len(list))
	for i, name := range list {
		out[i] = HighlightName(name)
	}
	return out
}

// Trim normalises an input line: escape sequences, control and format
// characters are stripped, exotic whitespace becomes plain spaces, and
// the ends are trimmed.
func Trim(s string) string {
	return strings.TrimSpace(sanitizeInput(s))
}

const escapeRune = '\x1b'

// skipEscape returns the index just past the escape sequence starting at
// i. CSI sequences run to their final byte; a bare escape is one rune.
func skipEscape(runes []rune, i int) int {
	i++
	if i < len(runes) && runes[i] == '[' {
		i++
		for i < len(runes) {
			r := runes[i]
			i++
			if r >= '@' && r <= '~' {
				break
			}
		}
	}
	return i
}

// StripAnsi removes colour and style sequences while leaving the text,
// line breaks included, untouched.
func StripAnsi(s string) string {
	if !strings.ContainsRune(s, escapeRune) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); {
		if runes[i] == escapeRune {
			i = skipEscape(runes, i)
			continue
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String()
}

// VisibleLen counts the characters a string occupies on screen, skipping
// escape sequences.
func VisibleLen(s string) int {
	n := 0
	runes := []rune(s)
	for i := 0; i < len(runes); {
		if runes[i] == escapeRune {
			i = skipEscape(runes, i)
			continue
		}
		n++
		i++
	}
	return n
}

// Ansi ensures output strings end with a reset sequence.
func Ansi(c string) string {
	if strings.Contains(c, "\x1b[") && !strings.HasSuffix(c, AnsiReset) {
		return c + AnsiReset
	}
	return c
}

// Prompt renders the player prompt. In battle it carries current HP and
// MP so fighters see their state every round.
func Prompt(s *Session) string {
	if s != nil && s.Char != nil && s.Char.Battle != nil {
		status := fmt.Sprintf("\r\n[HP %d/%d MP %d/%d]> ", s.Char.HP, s.Char.MaxHP, s.Char.MP, s.Char.MaxMP)
		return Ansi(Style(status, AnsiBold, AnsiYellow))
	}
	return Ansi(Style("\r\n> ", AnsiBold, AnsiYellow))
}

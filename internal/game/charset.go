package game

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// knownCharmaps maps normalized charset tokens to single-byte encodings.
// UTF-8 and plain ASCII pass through unencoded and so have no entry here.
var knownCharmaps = map[string]*charmap.Charmap{
	"ISO88591":    charmap.ISO8859_1,
	"LATIN1":      charmap.ISO8859_1,
	"CP437":       charmap.CodePage437,
	"IBM437":      charmap.CodePage437,
	"WINDOWS1252": charmap.Windows1252,
	"CP1252":      charmap.Windows1252,
}

// normalizeToken folds a charset name to a comparable form: uppercase
// letters and digits only, so "Utf-8", "utf8" and "UTF_8" all match.
func normalizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseCharsetList splits a CHARSET REQUEST payload into candidate
// charset names. The list is semicolon separated and may carry leading,
// trailing or embedded whitespace.
func parseCharsetList(s string) []string {
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// encodeWithCharmap converts UTF-8 text to the charmap's single-byte
// encoding. Runes the charmap cannot represent become '?'.
func encodeWithCharmap(cm *charmap.Charmap, data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, r := range string(data) {
		b, ok := cm.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

// decodeWithCharmap converts charmap-encoded bytes back to UTF-8.
func decodeWithCharmap(cm *charmap.Charmap, data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(cm.DecodeByte(c))
	}
	return b.String()
}

// sanitizeTelnetString strips control bytes from subnegotiation payloads
// before they are interpreted as text.
func sanitizeTelnetString(raw []byte) string {
	out := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b < 0x20 || b == 0x7f {
			continue
		}
		out = append(out, b)
	}
	return string(out)
}

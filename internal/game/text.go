package game

import "strings"

// minWrapWidth keeps output readable when a client reports a tiny window.
const minWrapWidth = 20

// WrapText folds the text to the given column width, preserving blank-line
// paragraph breaks. Width counts characters as they appear on screen, so
// ANSI colour sequences never cause premature breaks.
func WrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	if width < minWrapWidth {
		width = minWrapWidth
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			out = append(out, "")
			continue
		}
		out = append(out, wrapLine(line, width))
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) string {
	var b strings.Builder
	used := 0
	for _, word := range strings.Fields(line) {
		for VisibleLen(word) > width {
			if used != 0 {
				b.WriteByte('\n')
			}
			head, rest := splitVisible(word, width)
			b.WriteString(head)
			b.WriteByte('\n')
			used = 0
			word = rest
		}
		n := VisibleLen(word)
		switch {
		case used == 0:
			b.WriteString(word)
			used = n
		case used+1+n > width:
			b.WriteByte('\n')
			b.WriteString(word)
			used = n
		default:
			b.WriteByte(' ')
			b.WriteString(word)
			used += 1 + n
		}
	}
	return b.String()
}

// splitVisible cuts the string after n on-screen characters. Escape
// sequences stay with the head they appear in and take no width.
func splitVisible(s string, n int) (string, string) {
	runes := []rune(s)
	count := 0
	i := 0
	for i < len(runes) && count < n {
		if runes[i] == escapeRune {
			i = skipEscape(runes, i)
			continue
		}
		i++
		count++
	}
	return string(runes[:i]), string(runes[i:])
}

package game

import "strings"

// matchable is one candidate in a target search: the display name plus
// any builder-assigned keywords that should also answer for it.
type matchable struct {
	name     string
	keywords []string
}

type matchKind int

const (
	matchNone matchKind = iota
	matchPrefix
	matchExact
)

// match grades how well this candidate answers the (already lowercased)
// target. An exact name or keyword outranks any prefix hit.
func (m matchable) match(want string) matchKind {
	name := strings.ToLower(strings.TrimSpace(m.name))
	if name == want {
		return matchExact
	}
	for _, kw := range m.keywords {
		if strings.ToLower(strings.TrimSpace(kw)) == want {
			return matchExact
		}
	}
	if strings.HasPrefix(name, want) {
		return matchPrefix
	}
	for _, word := range strings.Fields(name) {
		if strings.HasPrefix(word, want) {
			return matchPrefix
		}
	}
	for _, kw := range m.keywords {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(kw)), want) {
			return matchPrefix
		}
	}
	return matchNone
}

const matchAmbiguous = -2

// resolveTarget picks the single candidate the player meant. An exact
// name or keyword hit wins outright; otherwise prefix hits count, but
// only when exactly one candidate matches that way.
func resolveTarget(target string, candidates []matchable) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(target))
	if want == "" {
		return -1, false
	}
	found := -1
	for i, c := range candidates {
		switch c.match(want) {
		case matchExact:
			return i, true
		case matchPrefix:
			if found == -1 {
				found = i
			} else {
				found = matchAmbiguous
			}
		}
	}
	if found >= 0 {
		return found, true
	}
	return -1, false
}

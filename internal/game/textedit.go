package game

import "strings"

// TextEditMode collects a multi-line text body. Lines accumulate until
// the player types .save or .cancel; either way the session returns to
// the mode it was in before the editor opened.
type TextEditMode struct {
	subject string
	lines   []string
	apply   func(text string)
}

// NewTextEditMode opens an editor for the named subject. The apply
// callback receives the finished text on save and is skipped on cancel.
func NewTextEditMode(subject string, apply func(text string)) *TextEditMode {
	return &TextEditMode{subject: subject, apply: apply}
}

func (m *TextEditMode) Name() string { return ModeTextEdit }

// Greet explains the editor controls.
func (m *TextEditMode) Greet(s *Session) {
	s.Sendf("Editing %s. End with '.save' to keep or '.cancel' to discard.", m.subject)
}

func (m *TextEditMode) ProcessLine(w *World, s *Session, line string) {
	switch strings.TrimSpace(line) {
	case ".save":
		if m.apply != nil {
			m.apply(strings.Join(m.lines, "\n"))
		}
		s.Sendf("%s saved.", m.subject)
		s.ExitNested()
	case ".cancel":
		s.Send("Edit cancelled.")
		s.ExitNested()
	default:
		m.lines = append(m.lines, line)
	}
}

package game

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"unicode"
)

// Mode is a session's current interaction state. Each queued input line is
// handed to the mode during the session tick phase.
type Mode interface {
	Name() string
	ProcessLine(w *World, s *Session, line string)
}

const (
	ModeLogin    = "login"
	ModeCreation = "creation"
	ModeNormal   = "normal"
	ModeBuild    = "build"
	ModeBattle   = "battle"
	ModeTextEdit = "textedit"
	ModePassword = "password"
)

const maxPasswordAttempts = 3

// dispatchMode routes lines through the world's command dispatcher. The
// normal, build, and battle modes differ only in which command table the
// dispatcher consults.
type dispatchMode struct {
	name string
}

func (m *dispatchMode) Name() string { return m.name }

func (m *dispatchMode) ProcessLine(w *World, s *Session, line string) {
	if w.Dispatch == nil {
		log.Printf("session %s: no dispatcher installed", s.ID)
		return
	}
	w.Dispatch(w, s, m.name, line)
}

// NewNormalMode returns the default play mode.
func NewNormalMode() Mode { return &dispatchMode{name: ModeNormal} }

// NewBuildMode returns build mode, which overlays builder commands on
// top of normal play.
func NewBuildMode() Mode { return &dispatchMode{name: ModeBuild} }

// NewBattleMode returns battle mode, which restricts the command table to
// combat actions.
func NewBattleMode() Mode { return &dispatchMode{name: ModeBattle} }

type loginStage int

const (
	loginAskName loginStage = iota
	loginAskPassword
	loginConfirmNew
)

// LoginMode is the entry state for every fresh connection: resolve an
// account name, then either verify the password or hand off to character
// creation. Three failed password attempts force a disconnect.
type LoginMode struct {
	stage    loginStage
	name     string
	attempts int
}

// NewLoginMode returns the initial mode for a new session.
func NewLoginMode() *LoginMode {
	return &LoginMode{stage: loginAskName}
}

func (m *LoginMode) Name() string { return ModeLogin }

func (m *LoginMode) ProcessLine(w *World, s *Session, line string) {
	line = strings.TrimSpace(line)
	switch m.stage {
	case loginAskName:
		m.handleName(w, s, line)
	case loginAskPassword:
		m.handlePassword(w, s, line)
	case loginConfirmNew:
		m.handleConfirm(w, s, line)
	}
}

func (m *LoginMode) handleName(w *World, s *Session, line string) {
	name, err := normalizeName(line)
	if err != nil {
		s.Sendf("%v", err)
		s.Send("By what name are you known?")
		return
	}
	exists, err := w.AccountExists(name)
	if err != nil {
		log.Printf("session %s: account lookup for %q: %v", s.ID, name, err)
		s.Send("Something went wrong. Try again.")
		return
	}
	m.name = name
	if !exists {
		m.stage = loginConfirmNew
		s.Sendf("There is no one named %s here. Create a new character? (y/n)", name)
		return
	}
	if w.FindSessionByName(name) != nil {
		s.Sendf("%s is already connected.", name)
		s.Send("By what name are you known?")
		m.name = ""
		return
	}
	m.stage = loginAskPassword
	s.Send("Password:")
}

func (m *LoginMode) handlePassword(w *World, s *Session, line string) {
	ok, err := w.VerifyAccount(m.name, line)
	if err != nil {
		log.Printf("session %s: password check for %q: %v", s.ID, m.name, err)
	}
	if !ok {
		m.attempts++
		if m.attempts >= maxPasswordAttempts {
			s.Send("Too many failed attempts. Goodbye.")
			s.BeginQuit()
			return
		}
		s.Send("Incorrect password.")
		s.Send("Password:")
		return
	}
	char, err := w.LoadCharacter(m.name)
	if err != nil {
		log.Printf("session %s: load character %q: %v", s.ID, m.name, err)
		s.Send("Your character could not be loaded. Goodbye.")
		s.BeginQuit()
		return
	}
	w.EnterWorld(s, char)
}

func (m *LoginMode) handleConfirm(w *World, s *Session, line string) {
	switch strings.ToLower(line) {
	case "y", "yes":
		s.SetMode(NewCreationMode(m.name))
		s.Send("Choose a password:")
	case "n", "no":
		m.stage = loginAskName
		m.name = ""
		s.Send("By what name are you known?")
	default:
		s.Send("Please answer y or n.")
	}
}

type creationStage int

const (
	creationPassword creationStage = iota
	creationConfirmPassword
	creationGender
	creationEmail
	creationStats
)

// statPool is how many points a new character distributes across their
// four attributes on top of the base values.
const statPool = 10

var allocatableStats = []string{"strength", "intellect", "dexterity", "speed"}

// CreationMode walks a new player through character creation: password,
// gender, optional email, then stat allocation. The character is only
// persisted once every step completes.
type CreationMode struct {
	stage     creationStage
	name      string
	password  string
	gender    string
	email     string
	remaining int
	allocated map[string]int
}

// NewCreationMode starts character creation for the given name.
func NewCreationMode(name string) *CreationMode {
	return &CreationMode{
		stage:     creationPassword,
		name:      name,
		remaining: statPool,
		allocated: make(map[string]int),
	}
}

func (m *CreationMode) Name() string { return ModeCreation }

func (m *CreationMode) ProcessLine(w *World, s *Session, line string) {
	line = strings.TrimSpace(line)
	switch m.stage {
	case creationPassword:
		if len(line) < 4 {
			s.Send("Passwords must be at least 4 characters. Choose a password:")
			return
		}
		m.password = line
		m.stage = creationConfirmPassword
		s.Send("Confirm your password:")
	case creationConfirmPassword:
		if line != m.password {
			m.password = ""
			m.stage = creationPassword
			s.Send("Passwords do not match. Choose a password:")
			return
		}
		m.stage = creationGender
		s.Send("What is your gender? (male/female/neutral)")
	case creationGender:
		gender := strings.ToLower(line)
		switch gender {
		case "male", "female", "neutral":
			m.gender = gender
			m.stage = creationEmail
			s.Send("Email address for password recovery? (or 'none')")
		default:
			s.Send("Please answer male, female, or neutral.")
		}
	case creationEmail:
		if !strings.EqualFold(line, "none") {
			m.email = line
		}
		m.stage = creationStats
		s.Sendf("You have %d points to spend on strength, intellect, dexterity, and speed.", m.remaining)
		s.Send("Spend them with '<stat> <points>', then type 'done'.")
	case creationStats:
		m.handleStats(w, s, line)
	}
}

func (m *CreationMode) handleStats(w *World, s *Session, line string) {
	if strings.EqualFold(line, "done") {
		if m.remaining > 0 {
			s.Sendf("You still have %d points to spend.", m.remaining)
			return
		}
		m.complete(w, s)
		return
	}
	fields := strings.Fields(line)
	if len(fields) != 2 {
		s.Send("Spend points with '<stat> <points>', then type 'done'.")
		return
	}
	stat := strings.ToLower(fields[0])
	if !isCreationStat(stat) {
		s.Sendf("Unknown stat %q. Choose from strength, intellect, dexterity, speed.", fields[0])
		return
	}
	points, err := strconv.Atoi(fields[1])
	if err != nil || points <= 0 {
		s.Send("Points must be a positive number.")
		return
	}
	if points > m.remaining {
		s.Sendf("You only have %d points left.", m.remaining)
		return
	}
	m.allocated[stat] += points
	m.remaining -= points
	s.Sendf("%s is now %d. %d points remain.", stat, baseStat+m.allocated[stat], m.remaining)
}

func (m *CreationMode) complete(w *World, s *Session) {
	char := NewCharacter(m.name)
	char.Gender = m.gender
	char.Attrs.Strength += m.allocated["strength"]
	char.Attrs.Intellect += m.allocated["intellect"]
	char.Attrs.Dexterity += m.allocated["dexterity"]
	char.Attrs.Speed += m.allocated["speed"]
	if err := w.CreateAccount(m.name, m.password, m.email, char); err != nil {
		log.Printf("session %s: create account %q: %v", s.ID, m.name, err)
		s.Send("Your character could not be saved. Goodbye.")
		s.BeginQuit()
		return
	}
	s.Sendf("Welcome, %s!", m.name)
	w.EnterWorld(s, char)
}

func isCreationStat(stat string) bool {
	for _, known := range allocatableStats {
		if known == stat {
			return true
		}
	}
	return false
}

type passwordStage int

const (
	passwordCurrent passwordStage = iota
	passwordNew
	passwordConfirm
)

// PasswordChangeMode lets a logged-in player change their password. It is
// entered as a nested mode and restores the prior mode when done.
type PasswordChangeMode struct {
	stage    passwordStage
	newValue string
}

// NewPasswordChangeMode starts a password change for the session's character.
func NewPasswordChangeMode() *PasswordChangeMode {
	return &PasswordChangeMode{stage: passwordCurrent}
}

func (m *PasswordChangeMode) Name() string { return ModePassword }

func (m *PasswordChangeMode) ProcessLine(w *World, s *Session, line string) {
	line = strings.TrimSpace(line)
	switch m.stage {
	case passwordCurrent:
		ok, err := w.VerifyAccount(s.Char.Name, line)
		if err != nil {
			log.Printf("session %s: password check: %v", s.ID, err)
		}
		if !ok {
			s.Send("That is not your current password.")
			s.ExitNested()
			return
		}
		m.stage = passwordNew
		s.Send("New password:")
	case passwordNew:
		if len(line) < 4 {
			s.Send("Passwords must be at least 4 characters. New password:")
			return
		}
		m.newValue = line
		m.stage = passwordConfirm
		s.Send("Confirm new password:")
	case passwordConfirm:
		if line != m.newValue {
			s.Send("Passwords do not match.")
			s.ExitNested()
			return
		}
		if err := w.UpdatePassword(s.Char.Name, m.newValue); err != nil {
			log.Printf("session %s: update password: %v", s.ID, err)
			s.Send("Your password could not be changed.")
		} else {
			s.Send("Password changed.")
		}
		s.ExitNested()
	}
}

// normalizeName validates and canonicalizes a character name: letters
// only, 3 to 12 characters, first letter capitalized.
func normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if len(name) < 3 || len(name) > 12 {
		return "", fmt.Errorf("names must be 3 to 12 letters")
	}
	for _, r := range name {
		if !unicode.IsLetter(r) {
			return "", fmt.Errorf("names may only contain letters")
		}
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:]), nil
}

package game

import (
	"strings"
	"testing"
)

func feed(w *World, s *Session, lines ...string) {
	for _, line := range lines {
		s.Mode.ProcessLine(w, s, line)
	}
}

func outboundContains(s *Session, want string) bool {
	for _, line := range s.outbound {
		if strings.Contains(line, want) {
			return true
		}
	}
	return false
}

func TestLoginRejectsBadNames(t *testing.T) {
	w := newStoredWorld()
	s := attachSession(w, newFakeConn())
	s.Mode = NewLoginMode()

	feed(w, s, "xy")
	if !outboundContains(s, "names must be 3 to 12 letters") {
		t.Fatalf("short name accepted: %v", s.outbound)
	}
	feed(w, s, "r2d2")
	if !outboundContains(s, "names may only contain letters") {
		t.Fatalf("digits accepted: %v", s.outbound)
	}
}

func TestLoginLockoutAfterThreeFailures(t *testing.T) {
	w := newStoredWorld()
	if err := w.CreateAccount("Alice", "hunter22", "", NewCharacter("Alice")); err != nil {
		t.Fatalf("create account: %v", err)
	}
	s := attachSession(w, newFakeConn())
	s.Mode = NewLoginMode()

	feed(w, s, "alice", "wrong1", "wrong2")
	if s.Quitting() {
		t.Fatal("disconnected before the third failure")
	}
	feed(w, s, "wrong3")
	if !s.Quitting() {
		t.Fatal("third failure should force a disconnect")
	}
	if !outboundContains(s, "Too many failed attempts. Goodbye.") {
		t.Fatalf("missing lockout message: %v", s.outbound)
	}
}

func TestLoginSuccessEntersWorld(t *testing.T) {
	w := newStoredWorld()
	if err := w.CreateAccount("Alice", "hunter22", "", NewCharacter("Alice")); err != nil {
		t.Fatalf("create account: %v", err)
	}
	s := attachSession(w, newFakeConn())
	s.Mode = NewLoginMode()

	feed(w, s, "Alice", "hunter22")

	if s.Char == nil || s.Char.Name != "Alice" {
		t.Fatalf("character not bound: %+v", s.Char)
	}
	if s.Mode.Name() != ModeNormal {
		t.Fatalf("expected normal mode, got %s", s.Mode.Name())
	}
	if s.Char.Room() == nil {
		t.Fatal("character not placed in a room")
	}
	if s.Char.Room().Occupants["alice"] != s {
		t.Fatal("room occupancy not recorded")
	}
}

func TestLoginRestoresSavedRoom(t *testing.T) {
	w := newStoredWorld()
	area := w.Areas["start"]
	attic := area.NewRoom("The Dusty Attic")
	attic.Description = "Cobwebs drape every beam."

	char := NewCharacter("Alice")
	w.MoveCharacter(char, attic)
	if err := w.CreateAccount("Alice", "hunter22", "", char); err != nil {
		t.Fatalf("create account: %v", err)
	}

	s := attachSession(w, newFakeConn())
	s.Mode = NewLoginMode()
	feed(w, s, "Alice", "hunter22")

	if s.Char == nil || s.Char.Room() != attic {
		t.Fatalf("character not restored to saved room: %+v", s.Char)
	}
	if !outboundContains(s, "The Dusty Attic") {
		t.Fatalf("saved room title not shown: %v", s.outbound)
	}
	if !outboundContains(s, "Cobwebs drape every beam.") {
		t.Fatalf("saved room description not shown: %v", s.outbound)
	}
}

func TestLoginRejectsDuplicateConnection(t *testing.T) {
	w := newStoredWorld()
	if err := w.CreateAccount("Alice", "hunter22", "", NewCharacter("Alice")); err != nil {
		t.Fatalf("create account: %v", err)
	}
	first := attachSession(w, newFakeConn())
	first.Mode = NewLoginMode()
	feed(w, first, "Alice", "hunter22")

	second := attachSession(w, newFakeConn())
	second.Mode = NewLoginMode()
	feed(w, second, "Alice")

	if !outboundContains(second, "Alice is already connected.") {
		t.Fatalf("duplicate connection not rejected: %v", second.outbound)
	}
}

func TestCreationFlowBuildsCharacter(t *testing.T) {
	w := newStoredWorld()
	s := attachSession(w, newFakeConn())
	s.Mode = NewLoginMode()

	feed(w, s,
		"zoe",
		"y",
		"secret99",
		"secret99",
		"female",
		"none",
		"strength 4",
		"speed 6",
		"done",
	)

	if s.Char == nil {
		t.Fatalf("creation did not produce a character: %v", s.outbound)
	}
	if s.Char.Name != "Zoe" {
		t.Fatalf("name not canonicalized: %q", s.Char.Name)
	}
	if s.Char.Attrs.Strength != baseStat+4 || s.Char.Attrs.Speed != baseStat+6 {
		t.Fatalf("stat allocation wrong: %+v", s.Char.Attrs)
	}
	if s.Mode.Name() != ModeNormal {
		t.Fatalf("expected normal mode after creation, got %s", s.Mode.Name())
	}
	exists, err := w.AccountExists("zoe")
	if err != nil || !exists {
		t.Fatalf("account not persisted: %v %v", exists, err)
	}
}

func TestCreationRefusesEarlyDone(t *testing.T) {
	w := newStoredWorld()
	s := attachSession(w, newFakeConn())
	s.Mode = NewLoginMode()

	feed(w, s, "zoe", "y", "secret99", "secret99", "neutral", "none", "strength 4", "done")

	if s.Char != nil {
		t.Fatal("creation completed with unspent points")
	}
	if !outboundContains(s, "You still have 6 points to spend.") {
		t.Fatalf("missing remaining-points message: %v", s.outbound)
	}
}

func TestCreationRejectsOverspend(t *testing.T) {
	w := newStoredWorld()
	s := attachSession(w, newFakeConn())
	s.Mode = NewLoginMode()

	feed(w, s, "zoe", "y", "secret99", "secret99", "male", "none", "intellect 11")

	if !outboundContains(s, "You only have 10 points left.") {
		t.Fatalf("overspend accepted: %v", s.outbound)
	}
}

func TestPasswordChangeRoundTrip(t *testing.T) {
	w := newStoredWorld()
	if err := w.CreateAccount("Alice", "hunter22", "", NewCharacter("Alice")); err != nil {
		t.Fatalf("create account: %v", err)
	}
	s, _ := newTestPlayer(w, "Alice")
	s.EnterNested(NewPasswordChangeMode())

	feed(w, s, "hunter22", "newpass1", "newpass1")

	if !outboundContains(s, "Password changed.") {
		t.Fatalf("password change failed: %v", s.outbound)
	}
	if s.Mode.Name() != ModeNormal {
		t.Fatalf("nested mode did not restore, in %s", s.Mode.Name())
	}
	ok, err := w.VerifyAccount("Alice", "newpass1")
	if err != nil || !ok {
		t.Fatalf("new password does not verify: %v %v", ok, err)
	}
	if ok, _ := w.VerifyAccount("Alice", "hunter22"); ok {
		t.Fatal("old password still verifies")
	}
}

func TestPasswordChangeAbortsOnWrongCurrent(t *testing.T) {
	w := newStoredWorld()
	if err := w.CreateAccount("Alice", "hunter22", "", NewCharacter("Alice")); err != nil {
		t.Fatalf("create account: %v", err)
	}
	s, _ := newTestPlayer(w, "Alice")
	s.EnterNested(NewPasswordChangeMode())

	feed(w, s, "notmypassword")

	if s.Mode.Name() != ModeNormal {
		t.Fatalf("wrong current password should abort, in %s", s.Mode.Name())
	}
	if ok, _ := w.VerifyAccount("Alice", "hunter22"); !ok {
		t.Fatal("password was changed despite failed verification")
	}
}

func TestNestedModeKeepsOneLevel(t *testing.T) {
	s := attachSession(NewWorldForTest(), newFakeConn())
	s.SetMode(NewBuildMode())

	s.EnterNested(NewPasswordChangeMode())
	if s.Mode.Name() != ModePassword {
		t.Fatalf("not in nested mode: %s", s.Mode.Name())
	}
	s.ExitNested()
	if s.Mode.Name() != ModeBuild {
		t.Fatalf("expected to restore build mode, got %s", s.Mode.Name())
	}

	// only one level is remembered
	s.EnterNested(NewPasswordChangeMode())
	s.EnterNested(NewTextEditMode("scratch", func(string) {}))
	s.ExitNested()
	if s.Mode.Name() != ModePassword {
		t.Fatalf("expected first nested mode back, got %s", s.Mode.Name())
	}
	s.ExitNested()
	if s.Mode.Name() != ModeNormal {
		t.Fatalf("expected normal fallback, got %s", s.Mode.Name())
	}
}

func TestTextEditSaveAndCancel(t *testing.T) {
	w := NewWorldForTest()
	s := attachSession(w, newFakeConn())
	var saved string
	s.EnterNested(NewTextEditMode("room description", func(text string) { saved = text }))

	feed(w, s, "A dusty hall.", "Cobwebs everywhere.", ".save")
	if saved != "A dusty hall.\nCobwebs everywhere." {
		t.Fatalf("unexpected saved text: %q", saved)
	}
	if s.Mode.Name() != ModeNormal {
		t.Fatalf("editor did not exit: %s", s.Mode.Name())
	}

	saved = ""
	s.EnterNested(NewTextEditMode("room description", func(text string) { saved = text }))
	feed(w, s, "Discard me.", ".cancel")
	if saved != "" {
		t.Fatalf("cancel should not apply, got %q", saved)
	}
}

func TestNormalizeName(t *testing.T) {
	got, err := normalizeName("  aLiCe ")
	if err != nil || got != "Alice" {
		t.Fatalf("got %q %v", got, err)
	}
	for _, bad := range []string{"ab", "thisnameiswaytoolong", "h4cker", "a b"} {
		if _, err := normalizeName(bad); err == nil {
			t.Fatalf("%q should be rejected", bad)
		}
	}
}

package game

import "testing"

func TestLinkExitsCreatesBothSides(t *testing.T) {
	area := NewArea("test", "Test")
	a := area.NewRoom("A")
	b := area.NewRoom("B")

	if err := LinkExits(a, North, b); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	exit := a.Exits[North]
	if exit == nil || exit.ToArea != "test" || exit.ToRoom != b.ID {
		t.Fatalf("forward exit wrong: %+v", exit)
	}
	back := b.Exits[South]
	if back == nil || back.ToArea != "test" || back.ToRoom != a.ID {
		t.Fatalf("reverse exit wrong: %+v", back)
	}
	if exit.LinkedExit != South || back.LinkedExit != North {
		t.Fatalf("linked pair not recorded: %v / %v", exit.LinkedExit, back.LinkedExit)
	}
}

func TestLinkExitsConflictHasNoSideEffects(t *testing.T) {
	area := NewArea("test", "Test")
	a := area.NewRoom("A")
	b := area.NewRoom("B")
	c := area.NewRoom("C")

	if err := LinkExits(a, North, b); err != nil {
		t.Fatalf("first link failed: %v", err)
	}
	if err := LinkExits(a, North, c); err == nil {
		t.Fatal("expected conflict linking north twice")
	}
	if a.Exits[North].ToRoom != b.ID {
		t.Fatalf("original exit was clobbered: %+v", a.Exits[North])
	}
	if c.Exits[South] != nil {
		t.Fatalf("conflicting link left an exit on room C")
	}
}

func TestRelinkSamePairIsAllowed(t *testing.T) {
	area := NewArea("test", "Test")
	a := area.NewRoom("A")
	b := area.NewRoom("B")
	if err := LinkExits(a, North, b); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if err := LinkExits(a, North, b); err != nil {
		t.Fatalf("relinking the same pair should succeed: %v", err)
	}
}

func TestUnlinkExitClearsBothSides(t *testing.T) {
	w := NewWorldForTest()
	area := w.Areas["start"]
	a := area.Rooms[1]
	b := area.NewRoom("B")
	if err := LinkExits(a, East, b); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	w.UnlinkExit(a, East)
	if a.Exits[East] != nil {
		t.Fatal("near side still has an exit")
	}
	if b.Exits[West] != nil {
		t.Fatal("far side still has an exit")
	}
}

func TestExitNamesFollowDisplayOrder(t *testing.T) {
	area := NewArea("test", "Test")
	a := area.NewRoom("A")
	b := area.NewRoom("B")
	c := area.NewRoom("C")
	if err := LinkExits(a, Down, b); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if err := LinkExits(a, North, c); err != nil {
		t.Fatalf("link failed: %v", err)
	}
	names := a.ExitNames()
	if len(names) != 2 || names[0] != "north" || names[1] != "down" {
		t.Fatalf("unexpected exit order: %v", names)
	}
}

func TestRoomRefParsing(t *testing.T) {
	areaName, id, err := RoomRef("midgaard:42")
	if err != nil || areaName != "midgaard" || id != 42 {
		t.Fatalf("got %q %d %v", areaName, id, err)
	}
	if _, _, err := RoomRef("no-colon"); err == nil {
		t.Fatal("expected error for reference without a colon")
	}
	if _, _, err := RoomRef("area:notanumber"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestDirectionFromString(t *testing.T) {
	if dir, ok := DirectionFromString(" N "); !ok || dir != North {
		t.Fatalf("shorthand lookup failed: %v %v", dir, ok)
	}
	if _, ok := DirectionFromString("sideways"); ok {
		t.Fatal("bogus direction resolved")
	}
}

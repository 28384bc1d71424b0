package game

import "testing"

func TestSaveAreaRoundTripsThroughStore(t *testing.T) {
	w := newStoredWorld()
	area := buildExportArea(w)

	if err := w.SaveArea(area); err != nil {
		t.Fatalf("save: %v", err)
	}

	other := NewWorld(w.cfg, w.store)
	if err := other.LoadAreas(); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, ok := other.Areas["harbor"]
	if !ok {
		t.Fatal("saved area not loaded")
	}
	if got.Title != "The Old Harbor" || !got.IsBuilder("alice") {
		t.Fatalf("area header lost: %q %v", got.Title, got.Builders)
	}
	if len(got.Rooms) != 2 || len(got.Items) != 2 || len(got.NPCs) != 1 || len(got.Scripts) != 1 {
		t.Fatalf("content counts wrong: %d rooms %d items %d npcs %d scripts",
			len(got.Rooms), len(got.Items), len(got.NPCs), len(got.Scripts))
	}
	if got.NPCs[1].ScriptID != 1 || got.NPCs[1].MaxHP != 30 {
		t.Fatalf("npc stats column lost: %+v", got.NPCs[1])
	}
	if got.Items[1].Equippable == nil || got.Items[1].Equippable.Damage["slash"].Max != 5 {
		t.Fatalf("item facets column lost: %+v", got.Items[1])
	}
	exit := got.Rooms[1].Exits[North]
	if exit == nil || exit.ToRoom != 2 || !exit.Closed {
		t.Fatalf("exit column lost: %+v", exit)
	}
	if len(got.Rooms[2].Spawns) != 2 {
		t.Fatalf("spawns column lost: %+v", got.Rooms[2].Spawns)
	}
}

func TestSaveAreaReplacesPreviousRows(t *testing.T) {
	w := newStoredWorld()
	area := buildExportArea(w)
	if err := w.SaveArea(area); err != nil {
		t.Fatalf("first save: %v", err)
	}
	delete(area.Items, 2)
	area.Title = "The New Harbor"
	if err := w.SaveArea(area); err != nil {
		t.Fatalf("second save: %v", err)
	}

	other := NewWorld(w.cfg, w.store)
	if err := other.LoadAreas(); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := other.Areas["harbor"]
	if got == nil || got.Title != "The New Harbor" {
		t.Fatalf("area row not updated: %+v", got)
	}
	if len(got.Items) != 1 {
		t.Fatalf("stale item rows survived: %d", len(got.Items))
	}
	if len(other.Areas) != 1 {
		t.Fatalf("duplicate area rows: %d", len(other.Areas))
	}
}

func TestChannelSettingsSurviveCharacterSave(t *testing.T) {
	w := newStoredWorld()
	char := NewCharacter("Alice")
	char.SetChannel(ChannelChat, false)
	if err := w.CreateAccount("Alice", "hunter22", "", char); err != nil {
		t.Fatalf("create account: %v", err)
	}

	loaded, err := w.LoadCharacter("Alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ChannelEnabled(ChannelChat) {
		t.Fatal("disabled channel came back enabled")
	}
	if !loaded.ChannelEnabled(ChannelSay) {
		t.Fatal("untouched channel lost its default")
	}
}

func TestGodAccountCarriesAllPermissions(t *testing.T) {
	w := newStoredWorld()
	if err := w.CreateGod("deus", "omnipotent1"); err != nil {
		t.Fatalf("create god: %v", err)
	}
	char, err := w.LoadCharacter("Deus")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, perm := range []Perm{PermPlayer, PermBuilder, PermAdmin, PermGod} {
		if !char.Permissions.Has(perm) {
			t.Fatalf("god account missing permission %b", perm)
		}
	}
}

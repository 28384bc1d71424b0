package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func buildExportArea(w *World) *Area {
	area := NewArea("harbor", "The Old Harbor")
	area.AddBuilder("alice")
	w.Areas[area.Name] = area

	sword := area.NewItem("a cutlass")
	sword.Description = "Notched but serviceable."
	sword.Keywords = []string{"cutlass", "sword"}
	sword.Equippable = &EquippableFacet{
		Slot: SlotWield, Hit: 2,
		Damage: map[string]DamageRange{"slash": {Min: 2, Max: 5}},
	}
	chest := area.NewItem("a sea chest")
	chest.Container = &ContainerFacet{Capacity: 6}

	guard := area.NewNPC("a harbor guard")
	guard.MaxHP = 30
	guard.Hit = 3
	guard.Wander = true

	script := area.NewScript("greeter", greeterScript)
	guard.ScriptID = script.ID

	dock := area.NewRoom("The Dock")
	dock.Description = "Gulls wheel overhead."
	warehouse := area.NewRoom("The Warehouse")
	_ = LinkExits(dock, North, warehouse)
	dock.Exits[North].Openable = true
	dock.Exits[North].Closed = true
	warehouse.Exits[South].Openable = true
	warehouse.Exits[South].Closed = true

	chestSpawn := area.AddSpawn(warehouse, SpawnItem, chest.ID, 0)
	area.AddSpawn(warehouse, SpawnItem, sword.ID, chestSpawn.ID)
	area.AddSpawn(dock, SpawnNPC, guard.ID, 0)
	return area
}

func TestAreaFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	source := NewWorldForTest()
	area := buildExportArea(source)

	path, err := source.ExportArea(area, dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "harbor.area" {
		t.Fatalf("unexpected file name %s", path)
	}

	dest := NewWorldForTest()
	if err := dest.ImportAreaFile(path); err != nil {
		t.Fatalf("import: %v", err)
	}
	got, ok := dest.Areas["harbor"]
	if !ok {
		t.Fatal("imported area not installed")
	}

	if got.Title != "The Old Harbor" || !got.IsBuilder("alice") {
		t.Fatalf("header lost: %q builders=%v", got.Title, got.Builders)
	}
	if len(got.Rooms) != 2 || len(got.Items) != 2 || len(got.NPCs) != 1 || len(got.Scripts) != 1 {
		t.Fatalf("content counts wrong: %d rooms %d items %d npcs %d scripts",
			len(got.Rooms), len(got.Items), len(got.NPCs), len(got.Scripts))
	}

	sword := got.Items[1]
	if sword.Equippable == nil || sword.Equippable.Slot != SlotWield ||
		sword.Equippable.Damage["slash"] != (DamageRange{Min: 2, Max: 5}) {
		t.Fatalf("equippable facet lost: %+v", sword.Equippable)
	}
	guard := got.NPCs[1]
	if guard.MaxHP != 30 || !guard.Wander || guard.ScriptID != 1 {
		t.Fatalf("npc prototype lost fields: %+v", guard)
	}

	dock := got.Rooms[1]
	exit := dock.Exits[North]
	if exit == nil || !exit.Openable || !exit.Closed || exit.LinkedExit != South {
		t.Fatalf("door state lost: %+v", exit)
	}
	warehouse := got.Rooms[2]
	if len(warehouse.Spawns) != 2 || warehouse.Spawns[1].ContainerID != warehouse.Spawns[0].ID {
		t.Fatalf("spawn rules lost: %+v", warehouse.Spawns)
	}

	// imported ids must not collide with new creations
	if room := got.NewRoom("Annex"); room.ID != 3 {
		t.Fatalf("id counters not adopted, new room got %d", room.ID)
	}
}

func TestImportReplacesAreaAndMigratesPlayers(t *testing.T) {
	dir := t.TempDir()
	source := NewWorldForTest()
	area := buildExportArea(source)
	path, err := source.ExportArea(area, dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	w := NewWorldForTest()
	if err := w.ImportAreaFile(path); err != nil {
		t.Fatalf("first import: %v", err)
	}
	s, _ := newTestPlayer(w, "Alice")
	w.MoveCharacter(s.Char, w.Areas["harbor"].Rooms[1])

	if err := w.ImportAreaFile(path); err != nil {
		t.Fatalf("second import: %v", err)
	}
	room := s.Char.Room()
	if room == nil || room.Area != w.Areas["harbor"] || room.ID != 1 {
		t.Fatalf("player not migrated into the replacement area: %+v", room)
	}
	if room.Occupants["alice"] != s {
		t.Fatal("occupancy not rebuilt in the replacement room")
	}
}

func TestImportRejectsMissingHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.area")
	body := "[Rooms]\n" + `{"id":1,"title":"Nowhere"}` + "\n[End Rooms]\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	w := NewWorldForTest()
	err := w.ImportAreaFile(path)
	if err == nil || !strings.Contains(err.Error(), "missing [Area] header") {
		t.Fatalf("expected header error, got %v", err)
	}
}

func TestLoadAreaDirToleratesMissingDirectory(t *testing.T) {
	w := NewWorldForTest()
	if err := w.LoadAreaDir(filepath.Join(t.TempDir(), "never-created")); err != nil {
		t.Fatalf("missing directory should not error: %v", err)
	}
}

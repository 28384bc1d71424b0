package game

import (
	"strings"
	"testing"
	"time"
)

func TestMoveCharacterKeepsOccupancyConsistent(t *testing.T) {
	w := NewWorldForTest()
	area := w.Areas["start"]
	first := area.Rooms[1]
	second := area.NewRoom("Second")
	s, _ := newTestPlayer(w, "Alice")

	w.MoveCharacter(s.Char, first)
	if first.Occupants["alice"] != s {
		t.Fatal("arrival not recorded in occupancy")
	}
	if area.Visits != 1 {
		t.Fatalf("player arrival should count a visit, got %d", area.Visits)
	}

	w.MoveCharacter(s.Char, second)
	if _, still := first.Occupants["alice"]; still {
		t.Fatal("old room still lists the character")
	}
	if second.Occupants["alice"] != s || s.Char.Room() != second {
		t.Fatal("new room and back-reference out of step")
	}
}

func TestTickFlushesOutputWithPrompt(t *testing.T) {
	w := NewWorldForTest()
	s, conn := newTestPlayer(w, "Alice")
	s.Send("Hello there.")

	w.Tick(time.Now())

	out := conn.output()
	if !strings.Contains(out, "Hello there.") {
		t.Fatalf("queued output not flushed: %q", out)
	}
	if !strings.Contains(out, "> ") {
		t.Fatalf("flush missing prompt: %q", out)
	}
	if len(s.outbound) != 0 {
		t.Fatalf("outbound queue not cleared: %v", s.outbound)
	}
}

func TestTickProcessesQueuedInputInOrder(t *testing.T) {
	w := NewWorldForTest()
	var got []string
	w.Dispatch = func(_ *World, _ *Session, _ string, line string) {
		got = append(got, line)
	}
	s, _ := newTestPlayer(w, "Alice")
	s.QueueLine("first")
	s.QueueLine("second")

	w.Tick(time.Now())

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("input lines out of order: %v", got)
	}
	if _, gone := s.drainInput(); gone {
		t.Fatal("session wrongly marked disconnected")
	}
}

func TestPanickingCommandIsContained(t *testing.T) {
	w := NewWorldForTest()
	w.Dispatch = func(_ *World, _ *Session, _, _ string) {
		panic("handler exploded")
	}
	s, conn := newTestPlayer(w, "Alice")
	s.QueueLine("boom")

	w.Tick(time.Now())

	if s.Quitting() {
		t.Fatal("panic should not disconnect the session")
	}
	if !strings.Contains(conn.output(), "Something went wrong with that command.") {
		t.Fatalf("player not told about the failure: %q", conn.output())
	}
	if len(w.snapshotSessions()) != 1 {
		t.Fatal("session dropped after panic")
	}
}

func TestDisconnectedSessionIsCleanedUp(t *testing.T) {
	w := NewWorldForTest()
	room := w.Areas["start"].Rooms[1]
	s, _ := newTestPlayer(w, "Alice")
	w.MoveCharacter(s.Char, room)

	s.MarkDisconnected()
	w.Tick(time.Now())

	if len(w.snapshotSessions()) != 0 {
		t.Fatal("disconnected session still registered")
	}
	if _, still := room.Occupants["alice"]; still {
		t.Fatal("disconnected character still occupies the room")
	}
}

func TestFailedFlushQuitsTheSession(t *testing.T) {
	w := NewWorldForTest()
	s, conn := newTestPlayer(w, "Alice")
	conn.failWrites = true
	s.Send("this will not arrive")

	w.Tick(time.Now())

	if len(w.snapshotSessions()) != 0 {
		t.Fatal("session with a dead connection still registered")
	}
}

func TestQuitStillFlushesPendingOutput(t *testing.T) {
	w := NewWorldForTest()
	s, conn := newTestPlayer(w, "Alice")
	s.Send("Goodbye.")
	s.BeginQuit()

	w.Tick(time.Now())

	if !strings.Contains(conn.output(), "Goodbye.") {
		t.Fatalf("farewell lost: %q", conn.output())
	}
	if len(w.snapshotSessions()) != 0 {
		t.Fatal("quitting session still registered")
	}
}

func TestRemoveSessionPersistsCharacter(t *testing.T) {
	w := newStoredWorld()
	if err := w.CreateAccount("Alice", "hunter22", "", NewCharacter("Alice")); err != nil {
		t.Fatalf("create account: %v", err)
	}
	s := attachSession(w, newFakeConn())
	s.Mode = NewLoginMode()
	feed(w, s, "Alice", "hunter22")
	second := w.Areas["start"].NewRoom("Second")
	w.MoveCharacter(s.Char, second)

	s.BeginQuit()
	w.Tick(time.Now())

	char, err := w.LoadCharacter("Alice")
	if err != nil {
		t.Fatalf("reload character: %v", err)
	}
	if char.savedArea != "start" || char.savedRoom != second.ID {
		t.Fatalf("location not persisted: %s:%d", char.savedArea, char.savedRoom)
	}
}

func TestResolveExitSeversDanglingLink(t *testing.T) {
	w := NewWorldForTest()
	room := w.Areas["start"].Rooms[1]
	room.Exits[North] = &Exit{Direction: North, ToArea: "gone", ToRoom: 4}

	if _, ok := w.ResolveExit(room, North); ok {
		t.Fatal("dangling exit resolved")
	}
	if room.Exits[North] != nil {
		t.Fatal("dangling exit not severed")
	}
}

func TestSweepResetsOnlyVisitedAreas(t *testing.T) {
	w := NewWorldForTest()
	area := w.Areas["start"]
	room := area.Rooms[1]
	sword := area.NewItem("a training sword")
	area.AddSpawn(room, SpawnItem, sword.ID, 0)
	area.LastReset = time.Now().Add(-2 * w.cfg.ResetInterval)

	w.sweepResets(time.Now())
	if len(room.Items) != 0 {
		t.Fatal("unvisited area was reset")
	}

	area.Visits = 1
	w.sweepResets(time.Now())
	if len(room.Items) != 1 {
		t.Fatal("visited stale area was not reset")
	}
	if area.Visits != 0 {
		t.Fatalf("visit tally not cleared: %d", area.Visits)
	}
}

func TestBroadcastChannelRespectsPreferences(t *testing.T) {
	w := NewWorldForTest()
	speaker, _ := newTestPlayer(w, "Alice")
	listener, _ := newTestPlayer(w, "Bob")
	deaf, _ := newTestPlayer(w, "Carol")
	deaf.Char.SetChannel(ChannelChat, false)

	w.BroadcastChannel(ChannelChat, speaker.Char, "[chat] Alice: hi")

	if !outboundContains(listener, "[chat] Alice: hi") {
		t.Fatal("listener missed the broadcast")
	}
	if outboundContains(deaf, "[chat]") {
		t.Fatal("disabled channel still delivered")
	}
	if outboundContains(speaker, "[chat]") {
		t.Fatal("broadcast echoed to the speaker")
	}
}

func TestHandleDeathRespawnsPlayer(t *testing.T) {
	w := NewWorldForTest()
	start := w.Areas["start"].Rooms[1]
	second := w.Areas["start"].NewRoom("Second")
	s, _ := newTestPlayer(w, "Alice")
	w.MoveCharacter(s.Char, second)
	s.Char.HP = 0

	w.handleDeath(s.Char)

	if s.Char.HP != 1 {
		t.Fatalf("dead player should wake with 1 HP, has %d", s.Char.HP)
	}
	if s.Char.Room() != start {
		t.Fatalf("dead player should wake at the start room, is in %s", s.Char.Room().Ref())
	}
	if !outboundContains(s, "You have died.") {
		t.Fatalf("no death notice: %v", s.outbound)
	}
}

func TestHandleDeathDropsNpcInventory(t *testing.T) {
	w := NewWorldForTest()
	area := w.Areas["start"]
	room := area.Rooms[1]
	proto := area.NewNPC("a goblin")
	npc := proto.Load()
	w.PlaceNPC(npc, room)
	loot := area.NewItem("a rusty dagger").Load()
	npc.Char.CarryItem(loot)
	npc.Char.HP = 0

	w.handleDeath(npc.Char)

	if len(room.NPCs) != 0 {
		t.Fatal("dead npc still in the room")
	}
	if npc.Active() {
		t.Fatal("dead npc still active")
	}
	found := false
	for _, item := range room.Items {
		if item == loot {
			found = true
		}
	}
	if !found {
		t.Fatal("npc inventory did not drop to the floor")
	}
}

func TestOnlineNamesFollowJoinOrder(t *testing.T) {
	w := NewWorldForTest()
	newTestPlayer(w, "Alice")
	newTestPlayer(w, "Bob")

	names := w.OnlineNames()
	if len(names) != 2 || names[0] != "Alice" || names[1] != "Bob" {
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestSessionWidthFollowsClientWindow(t *testing.T) {
	w := NewWorldForTest()

	wide := attachSession(w, &sizedConn{fakeConn: newFakeConn(), width: 120, height: 40})
	if got := wide.Width(); got != 120 {
		t.Fatalf("negotiated width ignored: %d", got)
	}
	tiny := attachSession(w, &sizedConn{fakeConn: newFakeConn(), width: 4, height: 4})
	if got := tiny.Width(); got != 78 {
		t.Fatalf("unusable width should fall back to the default: %d", got)
	}
	plain := attachSession(w, newFakeConn())
	if got := plain.Width(); got != 78 {
		t.Fatalf("transport without size reporting should use the default: %d", got)
	}
}

func TestLookWrapsToClientWidth(t *testing.T) {
	w := NewWorldForTest()
	room := w.Areas["start"].Rooms[1]
	room.Description = strings.Repeat("cobwebs everywhere ", 8)

	conn := &sizedConn{fakeConn: newFakeConn(), width: 40, height: 24}
	s := attachSession(w, conn)
	char := NewCharacter("Alice")
	char.Session = s
	s.Char = char
	w.MoveCharacter(char, room)

	LookAt(w, s)
	for _, line := range s.outbound {
		for _, part := range strings.Split(line, "\n") {
			if VisibleLen(part) > 40 {
				t.Fatalf("line exceeds client width: %q", part)
			}
		}
	}
}

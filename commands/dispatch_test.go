package commands

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"CinderMUD/internal/game"
)

// fakeConn satisfies game.Conn without a network. ReadLine blocks on a
// channel so the session's reader goroutine parks until Close.
type fakeConn struct {
	mu    sync.Mutex
	wrote []string
	lines chan string
	once  sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{lines: make(chan string)}
}

func (c *fakeConn) ReadLine() (string, error) {
	line, ok := <-c.lines
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

func (c *fakeConn) WriteString(msg string) error {
	c.mu.Lock()
	c.wrote = append(c.wrote, msg)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (c *fakeConn) RemoteAddr() string               { return "test" }

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.lines) })
	return nil
}

// take returns everything written so far and clears the capture buffer.
func (c *fakeConn) take() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := strings.Join(c.wrote, "")
	c.wrote = nil
	return out
}

func newPlayer(t *testing.T, w *game.World, name string) (*game.Session, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	s := w.Attach(conn)
	t.Cleanup(func() { _ = conn.Close() })

	char := game.NewCharacter(name)
	char.Session = s
	s.Char = char
	s.SetMode(game.NewNormalMode())
	room, ok := w.FindRoom("start", 1)
	if !ok {
		t.Fatal("test world has no start room")
	}
	w.MoveCharacter(char, room)

	// flush the login banner so tests only see their own output
	w.Tick(time.Now())
	conn.take()
	return s, conn
}

func newDispatchWorld() *game.World {
	w := game.NewWorldForTest()
	w.Dispatch = Dispatch
	return w
}

func TestUnknownCommandMessage(t *testing.T) {
	w := newDispatchWorld()
	s, conn := newPlayer(t, w, "Alice")

	Dispatch(w, s, game.ModeNormal, "frobnicate the widget")
	w.Tick(time.Now())
	if out := conn.take(); !strings.Contains(out, "Unknown command. Type 'help'.") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestBattleModeBlocksOutOfCombatCommands(t *testing.T) {
	w := newDispatchWorld()
	s, conn := newPlayer(t, w, "Alice")
	s.SetMode(game.NewBattleMode())

	Dispatch(w, s, game.ModeBattle, "dig north")
	w.Tick(time.Now())
	if out := conn.take(); !strings.Contains(out, "You can't do that in the middle of a fight!") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestPermissionGateRefusesTheCommand(t *testing.T) {
	w := newDispatchWorld()
	s, conn := newPlayer(t, w, "Alice")
	s.Char.Permissions = game.PermPlayer | game.PermBuilder
	s.SetMode(game.NewBuildMode())

	Dispatch(w, s, game.ModeBuild, "import harbor.area")
	w.Tick(time.Now())
	if out := conn.take(); !strings.Contains(out, "You don't have permission to do that.") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestAliasSharesTheHandler(t *testing.T) {
	w := newDispatchWorld()
	s, conn := newPlayer(t, w, "Alice")

	Dispatch(w, s, game.ModeNormal, "n")
	w.Tick(time.Now())
	if out := conn.take(); !strings.Contains(out, "You can't go north.") {
		t.Fatalf("alias did not reach the move handler: %q", out)
	}
}

func TestSayReachesTheRoom(t *testing.T) {
	w := newDispatchWorld()
	alice, aliceConn := newPlayer(t, w, "Alice")
	_, bobConn := newPlayer(t, w, "Bob")
	aliceConn.take()

	Dispatch(w, alice, game.ModeNormal, "say hello there")
	w.Tick(time.Now())
	if out := aliceConn.take(); !strings.Contains(out, "You say, \"hello there\"") {
		t.Fatalf("speaker echo missing: %q", out)
	}
	if out := bobConn.take(); !strings.Contains(out, "says, \"hello there\"") {
		t.Fatalf("room delivery missing: %q", out)
	}
}

func TestChatWhileDisabledTurnsTheChannelBackOn(t *testing.T) {
	w := newDispatchWorld()
	s, conn := newPlayer(t, w, "Alice")
	_, listenerConn := newPlayer(t, w, "Bob")
	deaf, deafConn := newPlayer(t, w, "Carol")
	deaf.Char.SetChannel(game.ChannelChat, false)
	conn.take()

	Dispatch(w, s, game.ModeNormal, "channel chat off")
	w.Tick(time.Now())
	if out := conn.take(); !strings.Contains(out, "Your chat channel has been turned off.") {
		t.Fatalf("toggle confirmation missing: %q", out)
	}
	listenerConn.take()
	deafConn.take()

	Dispatch(w, s, game.ModeNormal, "chat anyone around?")
	w.Tick(time.Now())
	out := conn.take()
	if !strings.Contains(out, "Your chat channel has been turned on.") {
		t.Fatalf("chat did not re-enable the channel: %q", out)
	}
	if !strings.Contains(out, "[chat] You: anyone around?") {
		t.Fatalf("speaker missing the broadcast echo: %q", out)
	}
	if !s.Char.ChannelEnabled(game.ChannelChat) {
		t.Fatal("channel still disabled after chat")
	}
	if out := listenerConn.take(); !strings.Contains(out, "anyone around?") {
		t.Fatalf("chat-on listener missed the broadcast: %q", out)
	}
	if out := deafConn.take(); strings.Contains(out, "anyone around?") {
		t.Fatalf("chat-off session received the broadcast: %q", out)
	}
}

func TestHelpHidesUnavailableCommands(t *testing.T) {
	w := newDispatchWorld()
	s, conn := newPlayer(t, w, "Alice")

	Dispatch(w, s, game.ModeNormal, "help")
	w.Tick(time.Now())
	out := conn.take()
	if !strings.Contains(out, "look") {
		t.Fatalf("player command missing from help: %q", out)
	}
	if strings.Contains(out, "dig") {
		t.Fatalf("builder command leaked into player help: %q", out)
	}
}

func TestBuildTogglesMode(t *testing.T) {
	w := newDispatchWorld()
	s, conn := newPlayer(t, w, "Alice")
	s.Char.Permissions |= game.PermBuilder

	Dispatch(w, s, game.ModeNormal, "build")
	if s.Mode.Name() != game.ModeBuild {
		t.Fatalf("expected build mode, got %q", s.Mode.Name())
	}
	Dispatch(w, s, game.ModeBuild, "build")
	if s.Mode.Name() != game.ModeNormal {
		t.Fatalf("expected normal mode, got %q", s.Mode.Name())
	}
	w.Tick(time.Now())
	out := conn.take()
	if !strings.Contains(out, "Build mode on.") || !strings.Contains(out, "Build mode off.") {
		t.Fatalf("toggle messages missing: %q", out)
	}
}

func TestAttackEntersBattle(t *testing.T) {
	w := newDispatchWorld()
	s, conn := newPlayer(t, w, "Alice")
	room := s.Char.Room()
	proto := w.Areas["start"].NewNPC("a goblin")
	w.PlaceNPC(proto.Load(), room)

	Dispatch(w, s, game.ModeNormal, "attack goblin")
	if s.Char.Battle == nil {
		t.Fatal("attack did not start a battle")
	}
	if s.Mode.Name() != game.ModeBattle {
		t.Fatalf("expected battle mode, got %q", s.Mode.Name())
	}
	w.Tick(time.Now())
	if out := conn.take(); !strings.Contains(out, "You attack a goblin!") {
		t.Fatalf("attack echo missing: %q", out)
	}
}

func TestQuitFlagsTheSession(t *testing.T) {
	w := newDispatchWorld()
	s, conn := newPlayer(t, w, "Alice")

	Dispatch(w, s, game.ModeNormal, "quit")
	if !s.Quitting() {
		t.Fatal("quit did not flag the session")
	}
	w.Tick(time.Now())
	if out := conn.take(); !strings.Contains(out, "Goodbye.") {
		t.Fatalf("farewell missing: %q", out)
	}
}

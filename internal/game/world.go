package game

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"CinderMUD/internal/config"
	"CinderMUD/internal/store"
)

// DispatchFunc routes one input line through a mode's command table. The
// command package installs its dispatcher here to avoid a package cycle.
type DispatchFunc func(w *World, s *Session, mode, line string)

const flushWriteTimeout = 2 * time.Second

// World owns all live game state. Every field except the session map is
// mutated exclusively by the tick goroutine; sessionsMu guards only
// insertion, snapshot, and removal of sessions, because Attach runs on
// the acceptor goroutines.
type World struct {
	cfg   *config.Config
	store store.Store

	sessionsMu sync.Mutex
	sessions   map[string]*Session
	order      []string

	Areas map[string]*Area
	// StartRef is the area:id room where new and displaced characters land.
	StartRef string

	battles      map[int]*Battle
	nextBattleID int
	npcs         []*NPC

	Dispatch DispatchFunc

	// DieRoll rolls a die with the given number of sides, returning 1..sides.
	// Tests replace it with a deterministic roller.
	DieRoll func(sides int) int

	scripts *scriptEngine
	watcher *AreaWatcher
}

// NewWorld builds an empty world around the given store.
func NewWorld(cfg *config.Config, st store.Store) *World {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &World{
		cfg:      cfg,
		store:    st,
		sessions: make(map[string]*Session),
		Areas:    make(map[string]*Area),
		battles:  make(map[int]*Battle),
		DieRoll: func(sides int) int {
			if sides <= 1 {
				return 1
			}
			return rng.Intn(sides) + 1
		},
		scripts: newScriptEngine(),
	}
}

// NewWorldForTest builds a world with default config, no persistence, and
// a starting area with one room.
func NewWorldForTest() *World {
	w := NewWorld(config.Default(), nil)
	area := NewArea("start", "The Starting Area")
	room := area.NewRoom("The First Room")
	w.Areas[area.Name] = area
	w.StartRef = room.Ref()
	return w
}

// Config exposes the server configuration.
func (w *World) Config() *config.Config {
	return w.cfg
}

// Store exposes the persistence gateway.
func (w *World) Store() store.Store {
	return w.store
}

// RollBetween returns a uniform value in [low, high].
func (w *World) RollBetween(low, high int) int {
	if high <= low {
		return low
	}
	return low + w.DieRoll(high-low+1) - 1
}

// Run drives the fixed-interval tick loop until stop closes. On shutdown
// every connected character is persisted and every connection closed.
func (w *World) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(w.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			w.shutdown()
			return
		case now := <-ticker.C:
			w.Tick(now)
		}
	}
}

// Tick advances the world one step. Phases run in a fixed order: NPC
// behaviour, session input, battle rounds, area resets, output flush and
// session cleanup. A slow tick is logged but never aborts the loop.
func (w *World) Tick(now time.Time) {
	start := time.Now()

	w.tickNPCs()
	w.tickSessions()
	w.tickBattles()
	w.sweepResets(now)
	w.flushAndClean()

	if elapsed := time.Since(start); elapsed > w.cfg.TickBudget {
		log.Printf("tick overran budget: took %v", elapsed)
	}
}

// tickNPCs gives each active NPC its behaviour turn and compacts the
// active list.
func (w *World) tickNPCs() {
	kept := w.npcs[:0]
	for _, npc := range w.npcs {
		if !npc.Active() {
			continue
		}
		kept = append(kept, npc)
	}
	w.npcs = kept
	for _, npc := range w.npcs {
		npc.Act(w)
	}
}

// tickSessions snapshots the session map and feeds each session's queued
// input to its mode. A panicking command is caught, logged, and reported
// to the player as a generic failure.
func (w *World) tickSessions() {
	for _, s := range w.snapshotSessions() {
		lines, gone := s.drainInput()
		if gone {
			s.BeginQuit()
		}
		for _, line := range lines {
			if s.Quitting() {
				break
			}
			w.processLine(s, line)
		}
	}
}

func (w *World) processLine(s *Session, line string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("session %s: input %q panicked: %v", s.ID, line, r)
			s.Send("Something went wrong with that command.")
		}
	}()
	if s.Mode == nil {
		s.Mode = NewLoginMode()
	}
	s.Mode.ProcessLine(w, s, line)
}

// tickBattles runs one round per live battle in id order and deletes the
// finished ones.
func (w *World) tickBattles() {
	ids := make([]int, 0, len(w.battles))
	for id := range w.battles {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		battle := w.battles[id]
		battle.PerformRound()
		if battle.Done() {
			delete(w.battles, id)
		}
	}
}

// sweepResets reloads changed area files and resets visited areas whose
// reset interval elapsed.
func (w *World) sweepResets(now time.Time) {
	if w.watcher != nil {
		for _, path := range w.watcher.TakePending() {
			if err := w.ImportAreaFile(path); err != nil {
				log.Printf("reimport %s: %v", path, err)
			} else {
				log.Printf("reimported area file %s", path)
			}
		}
	}
	for _, name := range w.sortedAreaNames() {
		area := w.Areas[name]
		if area.Visits > 0 && now.Sub(area.LastReset) > w.cfg.ResetInterval {
			area.Reset(w)
		}
	}
}

// flushAndClean writes queued output, appending the prompt, and removes
// sessions that quit or whose connection failed. A failed flush is an
// implicit quit handled by next tick's cleanup.
func (w *World) flushAndClean() {
	for _, s := range w.snapshotSessions() {
		if len(s.outbound) > 0 {
			payload := strings.Join(s.outbound, "\n") + Prompt(s)
			s.outbound = nil
			_ = s.conn.SetWriteDeadline(time.Now().Add(flushWriteTimeout))
			if err := s.conn.WriteString(payload); err != nil {
				log.Printf("session %s: flush failed: %v", s.ID, err)
				s.BeginQuit()
			}
			_ = s.conn.SetWriteDeadline(time.Time{})
		}
		if s.Quitting() {
			w.removeSession(s)
		}
	}
}

func (w *World) snapshotSessions() []*Session {
	w.sessionsMu.Lock()
	defer w.sessionsMu.Unlock()
	out := make([]*Session, 0, len(w.order))
	for _, id := range w.order {
		if s, ok := w.sessions[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Attach registers a new connection and starts its reader goroutine.
// Called from acceptor goroutines.
func (w *World) Attach(conn Conn) *Session {
	s := newSession(conn)
	s.Mode = NewLoginMode()
	s.Send(Style("Welcome to CinderMUD.", AnsiBold, AnsiCyan))
	s.Send("By what name are you known?")

	w.sessionsMu.Lock()
	w.sessions[s.ID] = s
	w.order = append(w.order, s.ID)
	w.sessionsMu.Unlock()

	go func() {
		for {
			line, err := conn.ReadLine()
			if err != nil {
				s.MarkDisconnected()
				return
			}
			s.QueueLine(Trim(line))
		}
	}()
	return s
}

// removeSession persists the character, vacates the room, closes the
// connection, and drops the session from the map.
func (w *World) removeSession(s *Session) {
	if s.Char != nil {
		room := s.Char.Room()
		if room != nil {
			delete(room.Occupants, strings.ToLower(s.Char.Name))
		}
		if s.Char.Battle != nil {
			s.Char.Battle.stageRemoval(s.Char)
			s.Char.Battle.applyRemovals()
		}
		if w.store != nil {
			if err := w.SaveCharacter(s.Char); err != nil {
				log.Printf("session %s: save on quit: %v", s.ID, err)
			}
		}
		if room != nil {
			w.BroadcastToRoom(room, fmt.Sprintf("%s has left the world.", s.Char.Name), s)
		}
		s.Char.Session = nil
		s.Char = nil
	}
	_ = s.conn.Close()

	w.sessionsMu.Lock()
	delete(w.sessions, s.ID)
	for i, id := range w.order {
		if id == s.ID {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.sessionsMu.Unlock()
}

func (w *World) shutdown() {
	for _, s := range w.snapshotSessions() {
		s.Send("The world is shutting down. Goodbye.")
		_ = s.conn.WriteString(strings.Join(s.outbound, "\n") + "\r\n")
		s.outbound = nil
		w.removeSession(s)
	}
}

// EnterWorld binds a character to its session and places it in the world
// at its saved location, falling back to the start room.
func (w *World) EnterWorld(s *Session, char *Character) {
	char.Session = s
	s.Char = char
	s.SetMode(NewNormalMode())

	room, ok := w.FindRoom(char.savedArea, char.savedRoom)
	if !ok {
		room, ok = w.startRoom()
		if !ok {
			log.Printf("session %s: no start room for %s", s.ID, char.Name)
			s.Send("The world has no rooms yet. Goodbye.")
			s.BeginQuit()
			return
		}
	}
	w.MoveCharacter(char, room)
	w.BroadcastToRoom(room, fmt.Sprintf("%s has entered the world.", char.Name), s)
	s.Sendf("Welcome back, %s.", char.Name)
	LookAt(w, s)
}

func (w *World) startRoom() (*Room, bool) {
	if area, id, err := RoomRef(w.StartRef); err == nil {
		if room, ok := w.FindRoom(area, id); ok {
			return room, true
		}
	}
	for _, name := range w.sortedAreaNames() {
		rooms := sortedRooms(w.Areas[name].Rooms)
		if len(rooms) > 0 {
			return rooms[0], true
		}
	}
	return nil, false
}

// MoveCharacter places a character in a room, vacating the old one. Both
// the room occupancy set and the character's back-reference change in the
// same step. Player arrivals count toward the area's visit tally.
func (w *World) MoveCharacter(char *Character, dest *Room) {
	if old := char.Room(); old != nil {
		if char.IsNPC() {
			if npc := w.npcFor(char); npc != nil {
				old.RemoveNPC(npc)
			}
		} else {
			delete(old.Occupants, strings.ToLower(char.Name))
		}
	}
	char.room = dest
	if char.IsNPC() {
		if npc := w.npcFor(char); npc != nil {
			dest.NPCs = append(dest.NPCs, npc)
		}
		return
	}
	dest.Occupants[strings.ToLower(char.Name)] = char.Session
	dest.Area.Visits++
}

func (w *World) npcFor(char *Character) *NPC {
	for _, npc := range w.npcs {
		if npc.Char == char {
			return npc
		}
	}
	return nil
}

// PlaceNPC registers a loaded NPC and puts it in a room.
func (w *World) PlaceNPC(npc *NPC, room *Room) {
	w.npcs = append(w.npcs, npc)
	npc.Char.room = room
	room.NPCs = append(room.NPCs, npc)
}

// RemoveNPC deactivates an NPC and takes it out of its room.
func (w *World) RemoveNPC(npc *NPC) {
	npc.Deactivate()
	if room := npc.Char.Room(); room != nil {
		room.RemoveNPC(npc)
	}
}

// handleDeath handles a combatant reaching zero HP. Players wake at the
// start room with a single hit point; NPCs are removed from the world.
func (w *World) handleDeath(char *Character) {
	if char.IsNPC() {
		if npc := w.npcFor(char); npc != nil {
			if room := char.Room(); room != nil {
				for _, item := range char.Inventory {
					room.Items = append(room.Items, item)
				}
				char.Inventory = nil
			}
			w.RemoveNPC(npc)
		}
		return
	}
	char.HP = 1
	char.Send(Style("You have died.", AnsiBold, AnsiMagenta))
	if room, ok := w.startRoom(); ok {
		w.MoveCharacter(char, room)
	}
	if char.Session != nil {
		char.Session.SetMode(NewNormalMode())
		LookAt(w, char.Session)
	}
}

// StartBattle opens combat between two characters, or pulls the attacker
// into the target's existing battle on the team opposing the target.
func (w *World) StartBattle(attacker, target *Character) *Battle {
	if battle := target.Battle; battle != nil {
		if contains(battle.TeamA, target) {
			battle.TeamB = append(battle.TeamB, attacker)
		} else {
			battle.TeamA = append(battle.TeamA, attacker)
		}
		attacker.Battle = battle
		attacker.NextAction = &BattleAction{Kind: ActionAttack, Cost: attackCost, Target: target}
		w.enterBattleMode(attacker)
		return battle
	}
	w.nextBattleID++
	battle := &Battle{
		ID:    w.nextBattleID,
		world: w,
		room:  attacker.Room(),
		TeamA: []*Character{attacker},
		TeamB: []*Character{target},
	}
	w.battles[battle.ID] = battle
	attacker.Battle = battle
	target.Battle = battle
	attacker.NextAction = &BattleAction{Kind: ActionAttack, Cost: attackCost, Target: target}
	target.NextAction = &BattleAction{Kind: ActionAttack, Cost: attackCost, Target: attacker}
	w.enterBattleMode(attacker)
	w.enterBattleMode(target)
	return battle
}

func (w *World) enterBattleMode(char *Character) {
	if char.Session != nil {
		char.Session.SetMode(NewBattleMode())
	}
}

// fleeDestination picks the first open exit that resolves, in fixed
// direction order.
func (w *World) fleeDestination(room *Room) (*Room, Direction, bool) {
	if room == nil {
		return nil, "", false
	}
	for _, dir := range AllDirections {
		exit := room.Exits[dir]
		if exit == nil || exit.Closed || exit.Locked {
			continue
		}
		if dest, ok := w.ResolveExit(room, dir); ok {
			return dest, dir, true
		}
	}
	return nil, "", false
}

// FindRoom resolves an area name and local room id.
func (w *World) FindRoom(areaName string, id int) (*Room, bool) {
	area, ok := w.Areas[strings.ToLower(areaName)]
	if !ok {
		return nil, false
	}
	room, ok := area.Rooms[id]
	return room, ok
}

// ResolveExit follows an exit to its destination room. A dangling exit,
// one whose destination was deleted, is severed on discovery and logged.
func (w *World) ResolveExit(room *Room, dir Direction) (*Room, bool) {
	exit := room.Exits[dir]
	if exit == nil {
		return nil, false
	}
	dest, ok := w.FindRoom(exit.ToArea, exit.ToRoom)
	if !ok {
		log.Printf("severing dangling exit %s from %s to %s:%d", dir, room.Ref(), exit.ToArea, exit.ToRoom)
		w.UnlinkExit(room, dir)
		return nil, false
	}
	return dest, true
}

// FindSessionByName returns the connected session playing the named
// character, if any.
func (w *World) FindSessionByName(name string) *Session {
	for _, s := range w.snapshotSessions() {
		if s.Char != nil && strings.EqualFold(s.Char.Name, name) {
			return s
		}
	}
	return nil
}

// BroadcastToRoom sends a message to every player in the room except the
// given session.
func (w *World) BroadcastToRoom(room *Room, msg string, except *Session) {
	if room == nil {
		return
	}
	for _, s := range room.Occupants {
		if s == except {
			continue
		}
		s.Send(msg)
	}
}

// BroadcastChannel delivers a channel message to every connected player
// listening on that channel.
func (w *World) BroadcastChannel(channel Channel, from *Character, msg string) {
	for _, s := range w.snapshotSessions() {
		if s.Char == nil || s.Char == from {
			continue
		}
		if !s.Char.ChannelEnabled(channel) {
			continue
		}
		s.Send(msg)
	}
}

// HearSay offers spoken text to scripted NPCs in the room.
func (w *World) HearSay(room *Room, speaker *Character, text string) {
	if room == nil {
		return
	}
	for _, npc := range room.NPCs {
		if npc.Proto.ScriptID == 0 || npc.Char == speaker {
			continue
		}
		area, ok := w.Areas[npc.Proto.AreaName]
		if !ok {
			continue
		}
		script, ok := area.Scripts[npc.Proto.ScriptID]
		if !ok {
			continue
		}
		w.scripts.callOnHear(w, room, npc, script, speaker.Name, text)
	}
}

// OnlineNames lists connected character names in join order.
func (w *World) OnlineNames() []string {
	names := make([]string, 0)
	for _, s := range w.snapshotSessions() {
		if s.Char != nil {
			names = append(names, s.Char.Name)
		}
	}
	return names
}

func (w *World) sortedAreaNames() []string {
	names := make([]string, 0, len(w.Areas))
	for name := range w.Areas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookAt renders the session character's current room.
func LookAt(w *World, s *Session) {
	if s.Char == nil {
		return
	}
	room := s.Char.Room()
	if room == nil {
		s.Send("You float in a formless void.")
		return
	}
	s.Send(Style(room.Title, AnsiBold, AnsiGreen))
	if room.Description != "" {
		s.Send(WrapText(room.Description, s.Width()))
	}
	if exits := room.ExitNames(); len(exits) > 0 {
		s.Sendf("Exits: %s", strings.Join(exits, ", "))
	} else {
		s.Send("Exits: none")
	}
	for _, item := range room.Items {
		s.Sendf("  %s lies here.", item.Name)
	}
	for _, npc := range room.NPCs {
		s.Sendf("  %s is here.", npc.Char.Name)
	}
	self := strings.ToLower(s.Char.Name)
	for _, name := range room.OccupantNames() {
		if name == self {
			continue
		}
		other := room.Occupants[name]
		if other != nil && other.Char != nil {
			s.Sendf("  %s is here.", HighlightName(other.Char.Name))
		}
	}
}

package game

import (
	"fmt"
	"sort"
	"strings"
)

// Direction is one of the six fixed exit directions.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
	Up    Direction = "up"
	Down  Direction = "down"
)

// AllDirections lists the six directions in display order.
var AllDirections = []Direction{North, South, East, West, Up, Down}

var directionLookup = map[string]Direction{
	"north": North, "n": North,
	"south": South, "s": South,
	"east": East, "e": East,
	"west": West, "w": West,
	"up": Up, "u": Up,
	"down": Down, "d": Down,
}

// Opposites maps each direction to its reverse.
var Opposites = map[Direction]Direction{
	North: South, South: North,
	East: West, West: East,
	Up: Down, Down: Up,
}

// DirectionFromString resolves a direction name or shorthand.
func DirectionFromString(name string) (Direction, bool) {
	dir, ok := directionLookup[strings.ToLower(strings.TrimSpace(name))]
	return dir, ok
}

// Exit is a directional edge out of a room. The destination is a weak
// reference resolved lazily by area name and local id.
type Exit struct {
	Direction Direction
	ToArea    string
	ToRoom    int

	// LinkedExit names the reverse direction on the destination room when
	// the two exits were linked as a pair. Unlinking clears both sides.
	LinkedExit Direction

	Openable bool
	Closed   bool
	Locked   bool
	KeyArea  string
	KeyID    int
}

// Room belongs to exactly one area. Occupants are weak references kept
// consistent with each session character's room back-reference.
type Room struct {
	Area        *Area
	ID          int
	Title       string
	Description string
	Exits       map[Direction]*Exit
	Items       []*ItemInstance
	NPCs        []*NPC
	Occupants   map[string]*Session
	Spawns      []Spawn
}

func newRoom(area *Area, id int, title string) *Room {
	return &Room{
		Area:      area,
		ID:        id,
		Title:     title,
		Exits:     make(map[Direction]*Exit),
		Occupants: make(map[string]*Session),
	}
}

// Ref renders the canonical area:id reference for the room.
func (r *Room) Ref() string {
	return fmt.Sprintf("%s:%d", r.Area.Name, r.ID)
}

// ExitNames lists the directions that currently have exits, in display order.
func (r *Room) ExitNames() []string {
	names := make([]string, 0, len(r.Exits))
	for _, dir := range AllDirections {
		if r.Exits[dir] != nil {
			names = append(names, string(dir))
		}
	}
	return names
}

// FindItem resolves an item lying in the room by name prefix.
func (r *Room) FindItem(target string) (*ItemInstance, bool) {
	idx := findInstanceIndex(r.Items, target)
	if idx < 0 {
		return nil, false
	}
	return r.Items[idx], true
}

// FindNPC resolves an NPC in the room by name prefix.
func (r *Room) FindNPC(target string) (*NPC, bool) {
	if strings.TrimSpace(target) == "" {
		return nil, false
	}
	candidates := make([]matchable, len(r.NPCs))
	for i, npc := range r.NPCs {
		candidates[i] = matchable{name: npc.Char.Name, keywords: npc.Proto.Keywords}
	}
	idx, ok := resolveTarget(target, candidates)
	if !ok {
		return nil, false
	}
	return r.NPCs[idx], true
}

// RemoveItem takes an instance off the room floor.
func (r *Room) RemoveItem(item *ItemInstance) bool {
	for i, present := range r.Items {
		if present == item {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveNPC takes an NPC out of the room.
func (r *Room) RemoveNPC(npc *NPC) bool {
	for i, present := range r.NPCs {
		if present == npc {
			r.NPCs = append(r.NPCs[:i], r.NPCs[i+1:]...)
			return true
		}
	}
	return false
}

// OccupantNames returns the occupant names sorted for stable display.
func (r *Room) OccupantNames() []string {
	names := make([]string, 0, len(r.Occupants))
	for name := range r.Occupants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LinkExits creates a bidirectional pair of exits between two rooms.
// Linking a direction that is already linked to a different room fails
// without side effects on either room.
func LinkExits(from *Room, dir Direction, to *Room) error {
	back, ok := Opposites[dir]
	if !ok {
		return fmt.Errorf("unknown direction: %s", dir)
	}
	if existing := from.Exits[dir]; existing != nil && existing.LinkedExit != "" {
		if existing.ToArea != to.Area.Name || existing.ToRoom != to.ID {
			return fmt.Errorf("%s already has a linked exit %s", from.Ref(), dir)
		}
	}
	if existing := to.Exits[back]; existing != nil && existing.LinkedExit != "" {
		if existing.ToArea != from.Area.Name || existing.ToRoom != from.ID {
			return fmt.Errorf("%s already has a linked exit %s", to.Ref(), back)
		}
	}
	from.Exits[dir] = &Exit{
		Direction:  dir,
		ToArea:     to.Area.Name,
		ToRoom:     to.ID,
		LinkedExit: back,
	}
	to.Exits[back] = &Exit{
		Direction:  back,
		ToArea:     from.Area.Name,
		ToRoom:     from.ID,
		LinkedExit: dir,
	}
	return nil
}

// UnlinkExit removes the exit in the given direction and, when it was part
// of a linked pair, clears the far side in the same operation.
func (w *World) UnlinkExit(room *Room, dir Direction) {
	exit := room.Exits[dir]
	if exit == nil {
		return
	}
	if exit.LinkedExit != "" {
		if far, ok := w.FindRoom(exit.ToArea, exit.ToRoom); ok {
			if farExit := far.Exits[exit.LinkedExit]; farExit != nil &&
				farExit.ToArea == room.Area.Name && farExit.ToRoom == room.ID {
				delete(far.Exits, exit.LinkedExit)
			}
		}
	}
	delete(room.Exits, dir)
}

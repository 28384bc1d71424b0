package game

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// Script is builder-authored behaviour source attached to NPC prototypes.
type Script struct {
	AreaName string
	ID       int
	Name     string
	Source   string
}

// SpawnKind identifies what a spawn rule instantiates.
type SpawnKind string

const (
	SpawnItem SpawnKind = "item"
	SpawnNPC  SpawnKind = "npc"
)

// Spawn declares what prototype should be (re)populated into a room on
// area reset. A spawn may nest inside another spawned container item.
type Spawn struct {
	ID          int       `json:"id"`
	Kind        SpawnKind `json:"kind"`
	ProtoID     int       `json:"proto_id"`
	ContainerID int       `json:"container_id,omitempty"`
}

// Area is the unit of content authorship: a named namespace of rooms,
// item and NPC prototypes, and scripts, with a builder access list.
// Local ids are area-scoped and monotonically increasing per object kind.
type Area struct {
	Name     string
	Title    string
	Builders map[string]bool

	Rooms   map[int]*Room
	Items   map[int]*ItemPrototype
	NPCs    map[int]*NpcPrototype
	Scripts map[int]*Script

	nextRoomID   int
	nextItemID   int
	nextNpcID    int
	nextScriptID int
	nextSpawnID  int

	// Visits counts room entries since the last reset and is zeroed
	// immediately after a successful reset sweep.
	Visits    int
	LastReset time.Time
}

// NewArea constructs an empty area.
func NewArea(name, title string) *Area {
	return &Area{
		Name:      name,
		Title:     title,
		Builders:  make(map[string]bool),
		Rooms:     make(map[int]*Room),
		Items:     make(map[int]*ItemPrototype),
		NPCs:      make(map[int]*NpcPrototype),
		Scripts:   make(map[int]*Script),
		LastReset: time.Now(),
	}
}

// IsBuilder reports whether the named character may edit this area.
func (a *Area) IsBuilder(name string) bool {
	return a.Builders[strings.ToLower(name)]
}

// AddBuilder grants edit access to the named character.
func (a *Area) AddBuilder(name string) {
	a.Builders[strings.ToLower(name)] = true
}

// RemoveBuilder revokes edit access.
func (a *Area) RemoveBuilder(name string) {
	delete(a.Builders, strings.ToLower(name))
}

// NewRoom creates a room with the next local id.
func (a *Area) NewRoom(title string) *Room {
	a.nextRoomID++
	room := newRoom(a, a.nextRoomID, title)
	a.Rooms[room.ID] = room
	return room
}

// NewItem creates an item prototype with the next local id.
func (a *Area) NewItem(name string) *ItemPrototype {
	a.nextItemID++
	proto := &ItemPrototype{AreaName: a.Name, ID: a.nextItemID, Name: name}
	a.Items[proto.ID] = proto
	return proto
}

// NewNPC creates an NPC prototype with the next local id.
func (a *Area) NewNPC(name string) *NpcPrototype {
	a.nextNpcID++
	proto := &NpcPrototype{AreaName: a.Name, ID: a.nextNpcID, Name: name}
	a.NPCs[proto.ID] = proto
	return proto
}

// NewScript records a script with the next local id.
func (a *Area) NewScript(name, source string) *Script {
	a.nextScriptID++
	script := &Script{AreaName: a.Name, ID: a.nextScriptID, Name: name, Source: source}
	a.Scripts[script.ID] = script
	return script
}

// AddSpawn attaches a spawn rule to a room, assigning its area-unique id.
func (a *Area) AddSpawn(room *Room, kind SpawnKind, protoID, containerID int) Spawn {
	a.nextSpawnID++
	spawn := Spawn{ID: a.nextSpawnID, Kind: kind, ProtoID: protoID, ContainerID: containerID}
	room.Spawns = append(room.Spawns, spawn)
	return spawn
}

// adoptIDs advances the local-id counters past imported content so that
// later creations never collide.
func (a *Area) adoptIDs() {
	for id := range a.Rooms {
		if id > a.nextRoomID {
			a.nextRoomID = id
		}
	}
	for id := range a.Items {
		if id > a.nextItemID {
			a.nextItemID = id
		}
	}
	for id := range a.NPCs {
		if id > a.nextNpcID {
			a.nextNpcID = id
		}
	}
	for id := range a.Scripts {
		if id > a.nextScriptID {
			a.nextScriptID = id
		}
	}
	for _, room := range a.Rooms {
		for _, spawn := range room.Spawns {
			if spawn.ID > a.nextSpawnID {
				a.nextSpawnID = spawn.ID
			}
		}
	}
}

// Reset repopulates every room from its spawn list. Spawning is idempotent:
// an instance produced by a spawn rule carries the rule's id, and a rule
// whose instance is still present is skipped. Rules pointing at deleted
// prototypes are skipped and logged as anomalies.
func (a *Area) Reset(w *World) {
	for _, room := range sortedRooms(a.Rooms) {
		spawned := make(map[int]*ItemInstance)
		for _, spawn := range room.Spawns {
			switch spawn.Kind {
			case SpawnItem:
				if inst := roomSpawnedItem(room, spawn.ID); inst != nil {
					spawned[spawn.ID] = inst
					continue
				}
				proto, ok := a.Items[spawn.ProtoID]
				if !ok {
					log.Printf("area %s: spawn %d references deleted item prototype %d", a.Name, spawn.ID, spawn.ProtoID)
					continue
				}
				inst := proto.Load()
				inst.SpawnID = spawn.ID
				if spawn.ContainerID != 0 {
					container := spawned[spawn.ContainerID]
					if container == nil {
						container = roomSpawnedItem(room, spawn.ContainerID)
					}
					if container != nil && container.HasContainer() {
						if err := container.PutInside(inst); err == nil {
							spawned[spawn.ID] = inst
							continue
						}
					}
				}
				room.Items = append(room.Items, inst)
				spawned[spawn.ID] = inst
			case SpawnNPC:
				if roomHasSpawnedNPC(room, spawn.ID) {
					continue
				}
				proto, ok := a.NPCs[spawn.ProtoID]
				if !ok {
					log.Printf("area %s: spawn %d references deleted npc prototype %d", a.Name, spawn.ID, spawn.ProtoID)
					continue
				}
				npc := proto.Load()
				npc.SpawnID = spawn.ID
				w.PlaceNPC(npc, room)
			}
		}
	}
	a.LastReset = time.Now()
	a.Visits = 0
}

func roomSpawnedItem(room *Room, spawnID int) *ItemInstance {
	for _, item := range room.Items {
		if item.SpawnID == spawnID {
			return item
		}
		if item.HasContainer() {
			for _, held := range item.Container.Items {
				if held.SpawnID == spawnID {
					return held
				}
			}
		}
	}
	return nil
}

func roomHasSpawnedNPC(room *Room, spawnID int) bool {
	for _, npc := range room.NPCs {
		if npc.SpawnID == spawnID {
			return true
		}
	}
	return false
}

func sortedRooms(rooms map[int]*Room) []*Room {
	ids := make([]int, 0, len(rooms))
	for id := range rooms {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*Room, 0, len(ids))
	for _, id := range ids {
		out = append(out, rooms[id])
	}
	return out
}

// RoomRef parses an "area:id" reference.
func RoomRef(ref string) (string, int, error) {
	parts := strings.SplitN(strings.TrimSpace(ref), ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("room reference must be area:id")
	}
	var id int
	if _, err := fmt.Sscanf(parts[1], "%d", &id); err != nil {
		return "", 0, fmt.Errorf("room reference must be area:id")
	}
	return parts[0], id, nil
}

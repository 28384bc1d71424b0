package game

import "fmt"

// NpcPrototype is the authored template for a non-player character.
type NpcPrototype struct {
	AreaName    string
	ID          int
	Name        string
	Description string
	Keywords    []string

	MaxHP  int
	MaxMP  int
	Attrs  Attributes
	Hit    int
	Evade  int
	Damage map[string]DamageRange
	Absorb map[string]int

	// Wander makes loaded instances drift through linked exits.
	Wander bool
	// ScriptID references a script in the owning area; zero means none.
	ScriptID int
}

// NPC is a live instance of an NPC prototype placed in a room.
type NPC struct {
	Proto   *NpcPrototype
	Char    *Character
	SpawnID int
	active  bool
}

// Load creates a live NPC from the prototype.
func (p *NpcPrototype) Load() *NPC {
	maxHP := p.MaxHP
	if maxHP <= 0 {
		maxHP = 20
	}
	maxMP := p.MaxMP
	if maxMP < 0 {
		maxMP = 0
	}
	char := NewCharacter(p.Name)
	char.HP = maxHP
	char.MaxHP = maxHP
	char.MP = maxMP
	char.MaxMP = maxMP
	if p.Attrs != (Attributes{}) {
		char.Attrs = p.Attrs
	}
	char.Hit = p.Hit
	char.Evade = p.Evade
	if len(p.Damage) > 0 {
		char.Damage = cloneDamage(p.Damage)
	}
	if len(p.Absorb) > 0 {
		char.Absorb = cloneAbsorb(p.Absorb)
	}
	return &NPC{Proto: p, Char: char, active: true}
}

// Active reports whether the NPC still participates in the NPC tick phase.
func (n *NPC) Active() bool {
	return n.active && n.Char.HP > 0
}

// Deactivate flags the NPC for removal from the active list at the next
// tick's NPC phase.
func (n *NPC) Deactivate() {
	n.active = false
}

// Act gives the NPC its once-per-tick chance to behave. NPCs in battle
// leave their turns to the battle round phase.
func (n *NPC) Act(w *World) {
	if n.Char.Battle != nil {
		return
	}
	room := n.Char.Room()
	if room == nil {
		return
	}
	if n.Proto.ScriptID != 0 {
		if area, ok := w.Areas[n.Proto.AreaName]; ok {
			if script, ok := area.Scripts[n.Proto.ScriptID]; ok {
				w.scripts.callOnTick(w, room, n, script)
			}
		}
	}
	if n.Proto.Wander && w.DieRoll(10) == 1 {
		n.wander(w, room)
	}
}

func (n *NPC) wander(w *World, room *Room) {
	for _, dir := range AllDirections {
		exit := room.Exits[dir]
		if exit == nil || exit.Closed || exit.Locked {
			continue
		}
		dest, ok := w.ResolveExit(room, dir)
		if !ok {
			continue
		}
		if w.DieRoll(len(AllDirections)) != 1 {
			continue
		}
		room.RemoveNPC(n)
		dest.NPCs = append(dest.NPCs, n)
		n.Char.room = dest
		w.BroadcastToRoom(room, fmt.Sprintf("%s leaves %s.", n.Char.Name, dir), nil)
		w.BroadcastToRoom(dest, fmt.Sprintf("%s arrives.", n.Char.Name), nil)
		return
	}
}

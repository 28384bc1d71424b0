package game

import "fmt"

// Perm is a permission bitmask checked before command execution.
type Perm uint32

const (
	PermPlayer Perm = 1 << iota
	PermBuilder
	PermAdmin
	PermGod
)

// Has reports whether every bit in required is present.
func (p Perm) Has(required Perm) bool {
	return p&required == required
}

// Attributes are the four rolled statistics shared by players and NPCs.
type Attributes struct {
	Strength  int
	Intellect int
	Dexterity int
	Speed     int
}

// DamageRange is an inclusive damage span for one damage type.
type DamageRange struct {
	Min int
	Max int
}

// EquipSlot identifies where an equippable item is worn.
type EquipSlot string

const (
	SlotHead  EquipSlot = "head"
	SlotBody  EquipSlot = "body"
	SlotHands EquipSlot = "hands"
	SlotFeet  EquipSlot = "feet"
	SlotWield EquipSlot = "wield"
)

// Character carries the stats and carried state shared by players and NPCs.
// A player Character has a non-nil Session; an NPC never does.
type Character struct {
	StorageID int64
	Name      string
	Account   string
	Gender    string

	HP    int
	MaxHP int
	MP    int
	MaxMP int
	Attrs Attributes

	Hit    int
	Evade  int
	Damage map[string]DamageRange
	Absorb map[string]int

	Inventory []*ItemInstance
	Equipped  map[EquipSlot]*ItemInstance

	Permissions Perm
	Channels    map[Channel]bool

	// Battle bookkeeping. ActionPoints only accrue with elapsed rounds and
	// are spent by actions; an action runs only when ActionPoints >= cost.
	ActionPoints float64
	NextAction   *BattleAction
	Battle       *Battle

	Session *Session
	room    *Room

	// savedArea and savedRoom hold the persisted location until the
	// character is placed back into the live world on login.
	savedArea string
	savedRoom int
}

// baseStat is the starting value of each attribute before allocation.
const baseStat = 5

// NewCharacter builds a character with baseline stats.
func NewCharacter(name string) *Character {
	return &Character{
		Name:   name,
		HP:     20,
		MaxHP:  20,
		MP:     10,
		MaxMP:  10,
		Attrs:  Attributes{Strength: baseStat, Intellect: baseStat, Dexterity: baseStat, Speed: baseStat},
		Hit:    1,
		Evade:  0,
		Damage: map[string]DamageRange{"impact": {Min: 1, Max: 3}},
		Absorb: map[string]int{},
		Equipped: map[EquipSlot]*ItemInstance{
			SlotHead: nil, SlotBody: nil, SlotHands: nil, SlotFeet: nil, SlotWield: nil,
		},
		Channels:    DefaultChannelSettings(),
		Permissions: PermPlayer,
	}
}

// Room returns the room this character currently occupies, if any.
func (c *Character) Room() *Room {
	return c.room
}

// IsNPC reports whether the character has no attached session.
func (c *Character) IsNPC() bool {
	return c.Session == nil
}

// Send delivers a line to the character's session when one is attached.
// NPCs silently drop output.
func (c *Character) Send(msg string) {
	if c.Session != nil {
		c.Session.Send(msg)
	}
}

// Sendf formats and delivers a line to the character's session.
func (c *Character) Sendf(format string, args ...any) {
	if c.Session != nil {
		c.Session.Send(fmt.Sprintf(format, args...))
	}
}

// ChannelEnabled reports whether the character listens on the channel.
// Unconfigured channels default to on.
func (c *Character) ChannelEnabled(channel Channel) bool {
	if c.Channels == nil {
		return true
	}
	enabled, ok := c.Channels[channel]
	if !ok {
		return true
	}
	return enabled
}

// SetChannel toggles a channel preference.
func (c *Character) SetChannel(channel Channel, enabled bool) {
	if c.Channels == nil {
		c.Channels = DefaultChannelSettings()
	}
	c.Channels[channel] = enabled
}

// AttackStats folds equipped item bonuses into the character's base combat
// numbers. The returned maps are copies.
func (c *Character) AttackStats() (hit, evade int, damage map[string]DamageRange, absorb map[string]int) {
	hit = c.Hit
	evade = c.Evade
	damage = make(map[string]DamageRange, len(c.Damage))
	for kind, r := range c.Damage {
		damage[kind] = r
	}
	absorb = make(map[string]int, len(c.Absorb))
	for kind, v := range c.Absorb {
		absorb[kind] = v
	}
	for _, item := range c.Equipped {
		if item == nil || item.Equippable == nil {
			continue
		}
		eq := item.Equippable
		hit += eq.Hit
		evade += eq.Evade
		for kind, r := range eq.Damage {
			base := damage[kind]
			damage[kind] = DamageRange{Min: base.Min + r.Min, Max: base.Max + r.Max}
		}
		for kind, v := range eq.Absorb {
			absorb[kind] += v
		}
	}
	return hit, evade, damage, absorb
}

// CarryItem appends an instance to the character's inventory.
func (c *Character) CarryItem(item *ItemInstance) {
	c.Inventory = append(c.Inventory, item)
}

// RemoveItem takes an instance out of the inventory. It reports whether the
// item was carried.
func (c *Character) RemoveItem(item *ItemInstance) bool {
	for i, carried := range c.Inventory {
		if carried == item {
			c.Inventory = append(c.Inventory[:i], c.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// FindCarried resolves an item in the inventory by keyword or name prefix.
func (c *Character) FindCarried(target string) (*ItemInstance, bool) {
	idx := findInstanceIndex(c.Inventory, target)
	if idx < 0 {
		return nil, false
	}
	return c.Inventory[idx], true
}

// Equip moves a carried equippable item into its slot. The previously
// equipped item, if any, returns to the inventory.
func (c *Character) Equip(item *ItemInstance) error {
	if item.Equippable == nil {
		return fmt.Errorf("you can't wear %s", item.Name)
	}
	if !c.RemoveItem(item) {
		return fmt.Errorf("you aren't carrying %s", item.Name)
	}
	slot := item.Equippable.Slot
	if previous := c.Equipped[slot]; previous != nil {
		c.Inventory = append(c.Inventory, previous)
	}
	c.Equipped[slot] = item
	return nil
}

// Unequip returns an equipped item to the inventory.
func (c *Character) Unequip(item *ItemInstance) error {
	for slot, equipped := range c.Equipped {
		if equipped == item {
			c.Equipped[slot] = nil
			c.Inventory = append(c.Inventory, item)
			return nil
		}
	}
	return fmt.Errorf("you aren't wearing %s", item.Name)
}

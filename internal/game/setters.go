package game

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Attribute setters are an explicit registry per entity kind. The build
// command resolves "set <attribute> <value>" against the table for
// whatever the builder has targeted, so the editable surface of every
// entity is enumerable and typo-checkable.

// RoomSetter mutates one room attribute from player-typed text.
type RoomSetter func(w *World, room *Room, value string) error

// ItemSetter mutates one item prototype attribute.
type ItemSetter func(w *World, item *ItemPrototype, value string) error

// NpcSetter mutates one NPC prototype attribute.
type NpcSetter func(w *World, npc *NpcPrototype, value string) error

// AreaSetter mutates one area attribute.
type AreaSetter func(w *World, area *Area, value string) error

var roomSetters = map[string]RoomSetter{
	"title": func(w *World, room *Room, value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("a room needs a title")
		}
		room.Title = value
		return nil
	},
	"description": func(w *World, room *Room, value string) error {
		room.Description = value
		return nil
	},
}

var itemSetters = map[string]ItemSetter{
	"name": func(w *World, item *ItemPrototype, value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("an item needs a name")
		}
		item.Name = value
		return nil
	},
	"description": func(w *World, item *ItemPrototype, value string) error {
		item.Description = value
		return nil
	},
	"keywords": func(w *World, item *ItemPrototype, value string) error {
		item.Keywords = splitKeywords(value)
		return nil
	},
	"slot": func(w *World, item *ItemPrototype, value string) error {
		slot, err := parseSlot(value)
		if err != nil {
			return err
		}
		if item.Equippable == nil {
			item.Equippable = &EquippableFacet{}
		}
		item.Equippable.Slot = slot
		return nil
	},
	"hit": func(w *World, item *ItemPrototype, value string) error {
		n, err := parseBonus(value)
		if err != nil {
			return err
		}
		if item.Equippable == nil {
			item.Equippable = &EquippableFacet{Slot: SlotWield}
		}
		item.Equippable.Hit = n
		return nil
	},
	"evade": func(w *World, item *ItemPrototype, value string) error {
		n, err := parseBonus(value)
		if err != nil {
			return err
		}
		if item.Equippable == nil {
			item.Equippable = &EquippableFacet{Slot: SlotBody}
		}
		item.Equippable.Evade = n
		return nil
	},
	"damage": func(w *World, item *ItemPrototype, value string) error {
		kind, r, err := parseDamageSpec(value)
		if err != nil {
			return err
		}
		if item.Equippable == nil {
			item.Equippable = &EquippableFacet{Slot: SlotWield}
		}
		if item.Equippable.Damage == nil {
			item.Equippable.Damage = make(map[string]DamageRange)
		}
		item.Equippable.Damage[kind] = r
		return nil
	},
	"nourishment": func(w *World, item *ItemPrototype, value string) error {
		n, err := parseBonus(value)
		if err != nil {
			return err
		}
		if item.Food == nil {
			item.Food = &FoodFacet{}
		}
		item.Food.Nourishment = n
		return nil
	},
	"capacity": func(w *World, item *ItemPrototype, value string) error {
		n, err := parseBonus(value)
		if err != nil {
			return err
		}
		if item.Container == nil {
			item.Container = &ContainerFacet{}
		}
		item.Container.Capacity = n
		return nil
	},
	"seats": func(w *World, item *ItemPrototype, value string) error {
		n, err := parseBonus(value)
		if err != nil {
			return err
		}
		if item.Furniture == nil {
			item.Furniture = &FurnitureFacet{}
		}
		item.Furniture.Capacity = n
		return nil
	},
	"portal": func(w *World, item *ItemPrototype, value string) error {
		areaName, roomID, err := RoomRef(value)
		if err != nil {
			return err
		}
		if _, ok := w.FindRoom(areaName, roomID); !ok {
			return fmt.Errorf("no room %s:%d", areaName, roomID)
		}
		if item.Portal == nil {
			item.Portal = &PortalFacet{}
		}
		item.Portal.ToArea = strings.ToLower(areaName)
		item.Portal.ToRoom = roomID
		return nil
	},
}

var npcSetters = map[string]NpcSetter{
	"name": func(w *World, npc *NpcPrototype, value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("an npc needs a name")
		}
		npc.Name = value
		return nil
	},
	"description": func(w *World, npc *NpcPrototype, value string) error {
		npc.Description = value
		return nil
	},
	"keywords": func(w *World, npc *NpcPrototype, value string) error {
		npc.Keywords = splitKeywords(value)
		return nil
	},
	"hp": func(w *World, npc *NpcPrototype, value string) error {
		n, err := parsePositive(value)
		if err != nil {
			return err
		}
		npc.MaxHP = n
		return nil
	},
	"mp": func(w *World, npc *NpcPrototype, value string) error {
		n, err := parseBonus(value)
		if err != nil {
			return err
		}
		npc.MaxMP = n
		return nil
	},
	"hit": func(w *World, npc *NpcPrototype, value string) error {
		n, err := parseBonus(value)
		if err != nil {
			return err
		}
		npc.Hit = n
		return nil
	},
	"evade": func(w *World, npc *NpcPrototype, value string) error {
		n, err := parseBonus(value)
		if err != nil {
			return err
		}
		npc.Evade = n
		return nil
	},
	"damage": func(w *World, npc *NpcPrototype, value string) error {
		kind, r, err := parseDamageSpec(value)
		if err != nil {
			return err
		}
		if npc.Damage == nil {
			npc.Damage = make(map[string]DamageRange)
		}
		npc.Damage[kind] = r
		return nil
	},
	"wander": func(w *World, npc *NpcPrototype, value string) error {
		on, err := parseToggle(value)
		if err != nil {
			return err
		}
		npc.Wander = on
		return nil
	},
	"script": func(w *World, npc *NpcPrototype, value string) error {
		id, err := parsePositive(value)
		if err != nil {
			return err
		}
		area, ok := w.Areas[npc.AreaName]
		if !ok {
			return fmt.Errorf("no area %s", npc.AreaName)
		}
		if _, ok := area.Scripts[id]; !ok {
			return fmt.Errorf("no script %d in %s", id, npc.AreaName)
		}
		npc.ScriptID = id
		return nil
	},
}

var areaSetters = map[string]AreaSetter{
	"title": func(w *World, area *Area, value string) error {
		area.Title = value
		return nil
	},
}

// SetRoomAttr applies a registered room setter.
func SetRoomAttr(w *World, room *Room, attr, value string) error {
	setter, ok := roomSetters[strings.ToLower(attr)]
	if !ok {
		return unknownAttr("room", attr, roomSetterNames())
	}
	return setter(w, room, value)
}

// SetItemAttr applies a registered item setter.
func SetItemAttr(w *World, item *ItemPrototype, attr, value string) error {
	setter, ok := itemSetters[strings.ToLower(attr)]
	if !ok {
		return unknownAttr("item", attr, setterNames(itemSetters))
	}
	return setter(w, item, value)
}

// SetNpcAttr applies a registered NPC setter.
func SetNpcAttr(w *World, npc *NpcPrototype, attr, value string) error {
	setter, ok := npcSetters[strings.ToLower(attr)]
	if !ok {
		return unknownAttr("npc", attr, setterNames(npcSetters))
	}
	return setter(w, npc, value)
}

// SetAreaAttr applies a registered area setter.
func SetAreaAttr(w *World, area *Area, attr, value string) error {
	setter, ok := areaSetters[strings.ToLower(attr)]
	if !ok {
		return unknownAttr("area", attr, setterNames(areaSetters))
	}
	return setter(w, area, value)
}

func unknownAttr(kind, attr string, known []string) error {
	return fmt.Errorf("%s has no attribute %q; choose from %s", kind, attr, strings.Join(known, ", "))
}

func roomSetterNames() []string {
	return setterNames(roomSetters)
}

func setterNames[T any](table map[string]T) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func splitKeywords(value string) []string {
	parts := strings.Fields(strings.ToLower(value))
	if len(parts) == 0 {
		return nil
	}
	return parts
}

func parseSlot(value string) (EquipSlot, error) {
	slot := EquipSlot(strings.ToLower(strings.TrimSpace(value)))
	switch slot {
	case SlotHead, SlotBody, SlotHands, SlotFeet, SlotWield:
		return slot, nil
	}
	return "", fmt.Errorf("unknown slot %q", value)
}

func parseBonus(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", value)
	}
	return n, nil
}

func parsePositive(value string) (int, error) {
	n, err := parseBonus(value)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("value must be positive")
	}
	return n, nil
}

func parseToggle(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("say on or off")
}

// parseDamageSpec reads "kind min-max", e.g. "slash 2-5".
func parseDamageSpec(value string) (string, DamageRange, error) {
	fields := strings.Fields(strings.ToLower(value))
	if len(fields) != 2 {
		return "", DamageRange{}, fmt.Errorf("damage takes '<kind> <min>-<max>'")
	}
	bounds := strings.SplitN(fields[1], "-", 2)
	if len(bounds) != 2 {
		return "", DamageRange{}, fmt.Errorf("damage takes '<kind> <min>-<max>'")
	}
	low, err1 := strconv.Atoi(bounds[0])
	high, err2 := strconv.Atoi(bounds[1])
	if err1 != nil || err2 != nil || low < 0 || high < low {
		return "", DamageRange{}, fmt.Errorf("bad damage range %q", fields[1])
	}
	return fields[0], DamageRange{Min: low, Max: high}, nil
}

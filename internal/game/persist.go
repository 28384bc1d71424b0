package game

import (
	"encoding/json"
	"fmt"
	"strings"

	"CinderMUD/internal/store"
)

// Area persistence into the row store. Complex fields (exits, spawns,
// facets, stats) are JSON-encoded into TEXT columns; simple fields get
// their own columns so builders can be queried by name.

type npcStatsColumn struct {
	MaxHP  int                    `json:"max_hp,omitempty"`
	MaxMP  int                    `json:"max_mp,omitempty"`
	Attrs  Attributes             `json:"attrs,omitempty"`
	Hit    int                    `json:"hit,omitempty"`
	Evade  int                    `json:"evade,omitempty"`
	Damage map[string]DamageRange `json:"damage,omitempty"`
	Absorb map[string]int         `json:"absorb,omitempty"`
	Wander bool                   `json:"wander,omitempty"`
}

type itemFacetsColumn struct {
	Keywords   []string         `json:"keywords,omitempty"`
	Equippable *EquippableFacet `json:"equippable,omitempty"`
	Food       *FoodFacet       `json:"food,omitempty"`
	Container  *ContainerFacet  `json:"container,omitempty"`
	Furniture  *FurnitureFacet  `json:"furniture,omitempty"`
	Portal     *PortalFacet     `json:"portal,omitempty"`
}

// SaveArea writes the area and all of its content to the store, replacing
// any previous rows for the same area name.
func (w *World) SaveArea(area *Area) error {
	if w.store == nil {
		return fmt.Errorf("no store configured")
	}
	builders := make([]string, 0, len(area.Builders))
	for name := range area.Builders {
		builders = append(builders, name)
	}
	buildersJSON, _ := json.Marshal(builders)

	existing, err := w.store.Select("areas", store.Row{"name": area.Name})
	if err != nil {
		return fmt.Errorf("area lookup: %w", err)
	}
	fields := store.Row{"name": area.Name, "title": area.Title, "builders": string(buildersJSON)}
	if len(existing) > 0 {
		if _, err := w.store.Update("areas", rowID(existing[0]), fields); err != nil {
			return fmt.Errorf("update area: %w", err)
		}
	} else if _, err := w.store.Insert("areas", fields); err != nil {
		return fmt.Errorf("insert area: %w", err)
	}

	for _, table := range []string{"rooms", "items", "npcs", "scripts"} {
		if _, err := w.store.Delete(table, store.Row{"area": area.Name}); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, room := range sortedRooms(area.Rooms) {
		exits := make([]exitRecord, 0, len(room.Exits))
		for _, dir := range AllDirections {
			exit := room.Exits[dir]
			if exit == nil {
				continue
			}
			exits = append(exits, exitRecord{
				Direction: exit.Direction, ToArea: exit.ToArea, ToRoom: exit.ToRoom,
				LinkedExit: exit.LinkedExit, Openable: exit.Openable,
				Closed: exit.Closed, Locked: exit.Locked,
				KeyArea: exit.KeyArea, KeyID: exit.KeyID,
			})
		}
		exitsJSON, _ := json.Marshal(exits)
		spawnsJSON, _ := json.Marshal(room.Spawns)
		if _, err := w.store.Insert("rooms", store.Row{
			"area": area.Name, "local_id": int64(room.ID),
			"title": room.Title, "description": room.Description,
			"exits": string(exitsJSON), "spawns": string(spawnsJSON),
		}); err != nil {
			return fmt.Errorf("insert room %d: %w", room.ID, err)
		}
	}

	for id, proto := range area.Items {
		facetsJSON, _ := json.Marshal(itemFacetsColumn{
			Keywords: proto.Keywords, Equippable: proto.Equippable,
			Food: proto.Food, Container: proto.Container,
			Furniture: proto.Furniture, Portal: proto.Portal,
		})
		if _, err := w.store.Insert("items", store.Row{
			"area": area.Name, "local_id": int64(id),
			"name": proto.Name, "description": proto.Description,
			"facets": string(facetsJSON),
		}); err != nil {
			return fmt.Errorf("insert item %d: %w", id, err)
		}
	}

	for id, proto := range area.NPCs {
		statsJSON, _ := json.Marshal(npcStatsColumn{
			MaxHP: proto.MaxHP, MaxMP: proto.MaxMP, Attrs: proto.Attrs,
			Hit: proto.Hit, Evade: proto.Evade,
			Damage: proto.Damage, Absorb: proto.Absorb, Wander: proto.Wander,
		})
		if _, err := w.store.Insert("npcs", store.Row{
			"area": area.Name, "local_id": int64(id),
			"name": proto.Name, "description": proto.Description,
			"stats": string(statsJSON), "script": int64(proto.ScriptID),
		}); err != nil {
			return fmt.Errorf("insert npc %d: %w", id, err)
		}
	}

	for id, script := range area.Scripts {
		if _, err := w.store.Insert("scripts", store.Row{
			"area": area.Name, "local_id": int64(id),
			"name": script.Name, "source": script.Source,
		}); err != nil {
			return fmt.Errorf("insert script %d: %w", id, err)
		}
	}
	return nil
}

// LoadAreas rebuilds every stored area into the live world.
func (w *World) LoadAreas() error {
	if w.store == nil {
		return fmt.Errorf("no store configured")
	}
	areaRows, err := w.store.Select("areas", nil)
	if err != nil {
		return fmt.Errorf("load areas: %w", err)
	}
	for _, row := range areaRows {
		area, err := w.loadAreaRow(row)
		if err != nil {
			return err
		}
		w.Areas[area.Name] = area
	}
	return nil
}

func (w *World) loadAreaRow(row store.Row) (*Area, error) {
	name := strings.ToLower(rowString(row, "name"))
	area := NewArea(name, rowString(row, "title"))
	var builders []string
	if raw := rowString(row, "builders"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &builders)
	}
	for _, builder := range builders {
		area.AddBuilder(builder)
	}

	itemRows, err := w.store.Select("items", store.Row{"area": name})
	if err != nil {
		return nil, fmt.Errorf("load items for %s: %w", name, err)
	}
	for _, r := range itemRows {
		var facets itemFacetsColumn
		_ = json.Unmarshal([]byte(rowString(r, "facets")), &facets)
		id := rowInt(r, "local_id")
		area.Items[id] = &ItemPrototype{
			AreaName: name, ID: id,
			Name:        rowString(r, "name"),
			Description: rowString(r, "description"),
			Keywords:    facets.Keywords,
			Equippable:  facets.Equippable, Food: facets.Food,
			Container: facets.Container, Furniture: facets.Furniture,
			Portal: facets.Portal,
		}
	}

	npcRows, err := w.store.Select("npcs", store.Row{"area": name})
	if err != nil {
		return nil, fmt.Errorf("load npcs for %s: %w", name, err)
	}
	for _, r := range npcRows {
		var stats npcStatsColumn
		_ = json.Unmarshal([]byte(rowString(r, "stats")), &stats)
		id := rowInt(r, "local_id")
		area.NPCs[id] = &NpcPrototype{
			AreaName: name, ID: id,
			Name:        rowString(r, "name"),
			Description: rowString(r, "description"),
			MaxHP:       stats.MaxHP, MaxMP: stats.MaxMP, Attrs: stats.Attrs,
			Hit: stats.Hit, Evade: stats.Evade,
			Damage: stats.Damage, Absorb: stats.Absorb,
			Wander: stats.Wander, ScriptID: rowInt(r, "script"),
		}
	}

	scriptRows, err := w.store.Select("scripts", store.Row{"area": name})
	if err != nil {
		return nil, fmt.Errorf("load scripts for %s: %w", name, err)
	}
	for _, r := range scriptRows {
		id := rowInt(r, "local_id")
		area.Scripts[id] = &Script{
			AreaName: name, ID: id,
			Name:   rowString(r, "name"),
			Source: rowString(r, "source"),
		}
	}

	roomRows, err := w.store.Select("rooms", store.Row{"area": name})
	if err != nil {
		return nil, fmt.Errorf("load rooms for %s: %w", name, err)
	}
	for _, r := range roomRows {
		id := rowInt(r, "local_id")
		room := newRoom(area, id, rowString(r, "title"))
		room.Description = rowString(r, "description")
		var exits []exitRecord
		_ = json.Unmarshal([]byte(rowString(r, "exits")), &exits)
		for _, e := range exits {
			room.Exits[e.Direction] = &Exit{
				Direction: e.Direction, ToArea: e.ToArea, ToRoom: e.ToRoom,
				LinkedExit: e.LinkedExit, Openable: e.Openable,
				Closed: e.Closed, Locked: e.Locked,
				KeyArea: e.KeyArea, KeyID: e.KeyID,
			}
		}
		_ = json.Unmarshal([]byte(rowString(r, "spawns")), &room.Spawns)
		area.Rooms[id] = room
	}

	area.adoptIDs()
	return area, nil
}
